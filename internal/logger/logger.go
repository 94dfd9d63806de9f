package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"mess-backend/internal/timeutil"
)

// Init configures the global zerolog logger. Development gets a console
// writer, everything else gets JSON on stdout.
func Init(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFunc = timeutil.Now

	var out io.Writer = os.Stdout
	level := zerolog.InfoLevel
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
		level = zerolog.DebugLevel
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(level)
}

// For returns a child logger tagged with a component name.
func For(component string) *zerolog.Logger {
	l := log.With().Str("component", component).Logger()
	return &l
}
