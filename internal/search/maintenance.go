package search

import (
	"context"
	"log/slog"
	"time"
)

// Maintainer periodically sweeps expired entries out of the result
// cache. Without it expired entries are only dropped lazily on access,
// so rarely-hit keys would pin memory for the life of the process.
type Maintainer struct {
	engine   *Engine
	interval time.Duration
	logger   *slog.Logger
}

// NewMaintainer creates a cache maintainer. Interval must be positive.
func NewMaintainer(engine *Engine, interval time.Duration, logger *slog.Logger) *Maintainer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Maintainer{engine: engine, interval: interval, logger: logger}
}

// Run sweeps on every tick until the context is canceled.
func (m *Maintainer) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.engine.EvictExpiredResults(); n > 0 {
				m.logger.Debug("evicted expired cache entries", "count", n)
			}
		}
	}
}
