package telemetry

import (
	"log/slog"

	"github.com/Borislavv/go-ash-sim/internal/report"
)

// Logs is a report.Sink writing one structured record per layer on Flush.
type Logs struct {
	logger *slog.Logger
	order  []string
	attrs  map[string][]any
}

var _ report.Sink = (*Logs)(nil)

func NewLogs(logger *slog.Logger) *Logs {
	return &Logs{logger: logger, attrs: make(map[string][]any)}
}

func (l *Logs) Emit(layer, metric string, value float64) {
	if _, ok := l.attrs[layer]; !ok {
		l.order = append(l.order, layer)
	}
	l.attrs[layer] = append(l.attrs[layer], metric, value)
}

func (l *Logs) Flush(ts int64) error {
	for _, layer := range l.order {
		l.logger.Info("report",
			append([]any{"ts", ts, "layer", layer}, l.attrs[layer]...)...,
		)
	}
	l.order = l.order[:0]
	clear(l.attrs)
	return nil
}
