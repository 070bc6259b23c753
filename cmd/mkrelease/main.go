package main

import (
	"fmt"
	"os"

	"github.com/fossas/mkrelease/cmd/mkrelease/app"
	"github.com/fossas/mkrelease/cmd/mkrelease/display"
	"github.com/fossas/mkrelease/errors"
)

var App = app.New()

func main() {
	if err := App.Run(os.Args); err != nil {
		display.ClearProgress()
		fmt.Fprintln(os.Stderr, errors.Report(err))
		os.Exit(1)
	}
}
