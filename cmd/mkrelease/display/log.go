package display

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/apex/log"
	"github.com/fatih/color"
)

var (
	file     *os.File
	fileOnce sync.Once
	stderr   io.Writer = os.Stderr
	level              = log.InfoLevel
	debug    bool
)

var levelColors = map[log.Level]*color.Color{
	log.DebugLevel: color.New(color.FgHiBlack),
	log.WarnLevel:  color.New(color.FgYellow),
	log.ErrorLevel: color.New(color.FgRed),
	log.FatalLevel: color.New(color.FgRed, color.Bold),
}

// SetInteractive turns colors and ANSI control characters on or off.
func SetInteractive(interactive bool) {
	// Disable Unicode and ANSI control characters on Windows.
	if runtime.GOOS == "windows" {
		interactive = false
	}

	useSpinner = interactive
	color.NoColor = !interactive
}

// SetDebug turns debug logging to STDERR on or off.
//
// The log file always writes debug-level entries.
func SetDebug(on bool) {
	// This sets the `level` variable rather than calling `log.SetLevel`, because
	// calling `log.SetLevel` filters entries by level _before_ they reach the
	// handler.
	debug = on
	if on {
		level = log.DebugLevel
	} else {
		level = log.InfoLevel
	}
}

// SetFile sets the log file. By default, a temporary file is created when
// the first entry is logged.
func SetFile(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	file = f
	return nil
}

// File returns the log file name, or "" if there is none.
func File() string {
	f := logFile()
	if f == nil {
		return ""
	}
	return f.Name()
}

func logFile() *os.File {
	fileOnce.Do(func() {
		if file != nil {
			return
		}
		if f, err := ioutil.TempFile("", "mkrelease-log-"); err == nil {
			file = f
		} else {
			fmt.Fprintf(stderr, "could not open log file: %s\n", err)
		}
	})
	return file
}

// Handler handles log entries. It multiplexes them into two outputs, writing
// human-readable messages to STDERR and machine-readable entries to a log file.
func Handler(entry *log.Entry) error {
	if entry.Level >= level {
		// The spinner shares STDERR.
		if useSpinner {
			s.Stop()
		}
		fmt.Fprintln(stderr, format(entry))
	}

	f := logFile()
	if f == nil {
		return nil
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	data = append(data, byte('\n'))
	_, err = f.Write(data)
	return err
}

func format(entry *log.Entry) string {
	var b strings.Builder
	if entry.Level != log.InfoLevel {
		label := strings.ToUpper(entry.Level.String())
		if c, ok := levelColors[entry.Level]; ok {
			label = c.Sprint(label)
		}
		b.WriteString(label)
		b.WriteString(" ")
	}
	b.WriteString(entry.Message)
	if debug {
		for _, name := range entry.Fields.Names() {
			fmt.Fprintf(&b, " %s=%v", color.CyanString(name), entry.Fields.Get(name))
		}
	}
	return b.String()
}
