package journal

import (
	"github.com/cockroachdb/pebble"
	"github.com/rs/zerolog"
)

// pebbleLogger routes pebble's event log through zerolog.
type pebbleLogger struct {
	zl zerolog.Logger
}

var _ pebble.Logger = pebbleLogger{}

func newPebbleLogger(zl zerolog.Logger) pebbleLogger {
	return pebbleLogger{zl: zl.With().Str("component", "pebble").Logger()}
}

func (l pebbleLogger) Infof(format string, args ...any) {
	l.zl.Debug().Msgf(format, args...)
}

// Fatalf exits the process, as pebble expects.
func (l pebbleLogger) Fatalf(format string, args ...any) {
	l.zl.Fatal().Msgf(format, args...)
}
