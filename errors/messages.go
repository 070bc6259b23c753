package errors

import (
	"strings"

	"github.com/fatih/color"
	"github.com/mitchellh/go-wordwrap"
	pkgerrors "github.com/pkg/errors"
)

const width = 78

// ReportBugMessage is appended to reports of Unknown errors.
var ReportBugMessage = `

` + color.HiYellowString("REPORTING A BUG:") + `
` + wordwrap.WrapString("Please try troubleshooting before filing a bug. If the suggestions do not help you can file a bug at "+color.HiBlueString("https://github.com/fossas/mkrelease/issues/new")+".", width) + `
` + wordwrap.WrapString("Please attach the debug logs from:", width) + `

  ` + color.HiGreenString("mkrelease --debug <args>")

// Report renders err for the terminal. Errors without troubleshooting text
// render as their message.
func Report(err error) string {
	var e *Error
	if !pkgerrors.As(err, &e) {
		return color.RedString("ERROR ") + err.Error()
	}

	var b strings.Builder
	b.WriteString(color.RedString("ERROR "))
	b.WriteString(err.Error())
	if e.Troubleshooting != "" {
		b.WriteString("\n\n")
		b.WriteString(color.HiYellowString("TROUBLESHOOTING:"))
		b.WriteString("\n")
		b.WriteString(wordwrap.WrapString(e.Troubleshooting, width))
	}
	if e.Type == Unknown {
		b.WriteString(ReportBugMessage)
	}
	return b.String()
}
