package pg

import (
	"context"

	"herald/internal/platform/logger"
)

// QueryEvent describes one executed statement
type QueryEvent struct {
	SQL       string
	Args      []any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives query events when SQL logging is enabled
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

type zlTracer struct{ log logger.Logger }

// Tracer builds a zerolog-backed QueryTracer
func Tracer(log logger.Logger) QueryTracer { return zlTracer{log: log} }

func (t zlTracer) OnQuery(_ context.Context, ev QueryEvent) {
	evt := t.log.Debug()
	if ev.Err != nil {
		evt = t.log.Error().Err(ev.Err)
	} else if ev.Slow {
		evt = t.log.Warn()
	}
	evt.Str("sql", ev.SQL).Int64("elapsed_us", ev.ElapsedUS).Msg("pg query")
}
