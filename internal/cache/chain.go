package cache

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Borislavv/go-ash-sim/config"
	"github.com/Borislavv/go-ash-sim/internal/shared/random"
	"github.com/Borislavv/go-ash-sim/model"
)

// Chain is the ordered list of layers, closest to the client first.
type Chain struct {
	layers []*Layer
	logger *slog.Logger
}

// NewChain builds and links one layer per configured layer. Each layer draws
// from its own random stream derived from rnd.
func NewChain(cfg *config.Sim, rnd *random.Source, logger *slog.Logger) (*Chain, error) {
	if len(cfg.Layers) == 0 {
		return nil, config.ErrNoLayers
	}
	c := &Chain{layers: make([]*Layer, 0, len(cfg.Layers)), logger: logger}
	for i, lcfg := range cfg.Layers {
		l, err := NewLayer(lcfg, &cfg.Customers, rnd.Derive(i), logger)
		if err != nil {
			return nil, fmt.Errorf("build layer %q: %w", lcfg.Name, err)
		}
		if i > 0 {
			c.layers[i-1].next = l
		}
		c.layers = append(c.layers, l)
	}
	return c, nil
}

func (c *Chain) Process(ev *model.Event) bool {
	return c.layers[0].Process(ev)
}

func (c *Chain) Head() *Layer     { return c.layers[0] }
func (c *Chain) Layers() []*Layer { return c.layers }

// Flush persists admission state of every layer. Failures are logged and joined.
func (c *Chain) Flush() error {
	var errs []error
	for _, l := range c.layers {
		if err := l.Flush(); err != nil {
			c.logger.Error("flush admission state failed", "layer", l.Name(), "err", err)
			errs = append(errs, fmt.Errorf("layer %q: %w", l.Name(), err))
		}
	}
	return errors.Join(errs...)
}
