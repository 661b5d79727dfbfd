// Package logging builds the process logger: zerolog to the console for
// interactive runs, to the systemd journal when running as a unit.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/rs/zerolog"
)

// Format selects the log sink.
const (
	FormatAuto    = "auto"    // journal when available, console otherwise
	FormatConsole = "console" // human readable
	FormatJSON    = "json"
	FormatJournal = "journal"
)

type Options struct {
	Level  string
	Format string
	Out    io.Writer // console/json destination; stdout when nil
}

// ParseLevel accepts zerolog's names plus "warning".
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	}
	l, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}

// New returns a logger for opts. An unknown level is an error; an unknown
// format falls back to the console.
func New(opts Options) (zerolog.Logger, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), err
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	zerolog.TimeFieldFormat = time.RFC3339

	var w io.Writer
	switch opts.Format {
	case FormatJSON:
		w = out
	case FormatJournal:
		w = NewJournalWriter("lightstrip")
	case FormatAuto:
		if journal.Enabled() && os.Getenv("INVOCATION_ID") != "" {
			w = NewJournalWriter("lightstrip")
		} else {
			w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
		}
	default:
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
