// Package rate paces trace replay in wall-clock time.
package rate

import "go.uber.org/ratelimit"

// Pacer lets at most limit events per second through Take.
// A nil Pacer never blocks.
type Pacer struct {
	l     ratelimit.Limiter
	limit int
}

// NewPacer returns nil for a non-positive limit. Up to 10% of limit may
// pass in a burst after an idle period.
func NewPacer(limit int) *Pacer {
	if limit <= 0 {
		return nil
	}
	slack := max(limit/10, 1)
	return &Pacer{
		l:     ratelimit.New(limit, ratelimit.WithSlack(slack)),
		limit: limit,
	}
}

func (p *Pacer) Take() {
	if p == nil {
		return
	}
	p.l.Take()
}

func (p *Pacer) Limit() int {
	if p == nil {
		return 0
	}
	return p.limit
}
