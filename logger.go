package main

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/takeshi-0987/ipatlas/atlaslib"
)

type logger struct {
	lookupLog zerolog.Logger
}

func (l *logger) LookupError(ip string, source string, err error) {
	l.lookupLog.Error().Str("source", source).Str("ip", ip).Err(err).Msg("")
}

func newLogger() atlaslib.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	return &logger{
		lookupLog: zerolog.New(os.Stderr).With().Timestamp().Str("event_name", "lookup").Logger(),
	}
}
