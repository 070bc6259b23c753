// Package display implements functions for displaying output to users.
package display

import (
	"github.com/apex/log"
)

func init() {
	// Entries below the STDERR level still go to the log file, so filtering
	// happens in Handler instead.
	log.SetLevel(log.DebugLevel)
	log.SetHandler(log.HandlerFunc(Handler))
}
