// Package report defines where periodic simulation metrics go.
package report

import (
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
)

// Global is the layer name used for chain-wide metrics.
const Global = "global"

// Sink receives one reporting cycle as a stream of (layer, metric, value)
// triples followed by a Flush carrying the trace timestamp of the cycle.
type Sink interface {
	Emit(layer, metric string, value float64)
	Flush(ts int64) error
}

// Multi fans a cycle out to several sinks.
type Multi []Sink

func (m Multi) Emit(layer, metric string, value float64) {
	for _, s := range m {
		s.Emit(layer, metric, value)
	}
}

func (m Multi) Flush(ts int64) error {
	var errs []error
	for _, s := range m {
		if err := s.Flush(ts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Emit(string, string, float64) {}
func (discard) Flush(int64) error            { return nil }

// Line renders every cycle as one text line:
//
//	<ts>\t| global hit_ratio=0.5 ...\t| hd hit_rate=0.25 ...
type Line struct {
	w     io.Writer
	buf   strings.Builder
	layer string
}

func NewLine(w io.Writer) *Line {
	return &Line{w: w}
}

func (l *Line) Emit(layer, metric string, value float64) {
	if l.buf.Len() == 0 || layer != l.layer {
		l.buf.WriteString("\t| ")
		l.buf.WriteString(layer)
		l.layer = layer
	}
	l.buf.WriteByte(' ')
	l.buf.WriteString(metric)
	l.buf.WriteByte('=')
	l.buf.WriteString(FormatValue(value))
}

func (l *Line) Flush(ts int64) error {
	defer func() {
		l.buf.Reset()
		l.layer = ""
	}()
	_, err := io.WriteString(l.w, strconv.FormatInt(ts, 10)+l.buf.String()+"\n")
	return err
}

// FormatValue prints integral values without a fraction and the rest with four decimals.
func FormatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
