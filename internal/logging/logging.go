// Package logging builds the JSON line logger shared by every component.
package logging

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// New returns a logger that writes one JSON object per line to w.
// Timestamps are RFC3339Nano in loc. Unknown levels fall back to info.
func New(w io.Writer, loc *time.Location, level string) *log.Logger {
	if loc == nil {
		loc = time.UTC
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Formatter:       log.JSONFormatter,
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		TimeFunction: func(t time.Time) time.Time {
			return t.In(loc)
		},
	})
}

// Component returns a child logger tagged with the component name.
func Component(l *log.Logger, name string) *log.Logger {
	return l.With("component", name)
}
