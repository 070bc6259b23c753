// Package locations implements `mkrelease locations`.
package locations

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/urfave/cli"

	"github.com/fossas/mkrelease/cmd/mkrelease/flags"
	"github.com/fossas/mkrelease/cmd/mkrelease/setup"
	"github.com/fossas/mkrelease/config"
	"github.com/fossas/mkrelease/location"
)

// Cmd exports the `locations` CLI command.
var Cmd = cli.Command{
	Name:   "locations",
	Usage:  "List known dist-locations",
	Action: Run,
	Flags:  flags.WithGlobalFlags(nil),
}

var _ cli.ActionFunc = Run

func Run(ctx *cli.Context) error {
	err := setup.SetContext(ctx)
	if err != nil {
		return err
	}
	return Print(os.Stdout, config.Resolver())
}

// Print writes the aliases and index servers known to r as a table.
func Print(w io.Writer, r *location.Resolver) error {
	entries := r.List()
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No dist-locations configured.")
		return err
	}

	table := uitable.New()
	table.MaxColWidth = 72
	table.Wrap = true
	table.AddRow("NAME", "KIND", "TARGETS")
	for _, e := range entries {
		targets := strings.Join(e.Targets, " ")
		if e.Kind == "server" {
			targets = "(index server)"
		}
		table.AddRow(e.Name, e.Kind, targets)
	}
	_, err := fmt.Fprintln(w, table)
	return err
}
