package inbox

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Poller drives the mailbox poll loop on a fixed cadence.
type Poller struct {
	service  *Service
	interval time.Duration
	logger   *zap.Logger
}

// NewPoller constructs the poll loop.
func NewPoller(service *Service, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Poller{service: service, interval: interval, logger: logger}
}

// Run polls until the context is cancelled. A failed cycle is logged and the
// loop keeps going; the next tick retries from the stored watermark.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("inbox poller started", zap.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.service.Poll(ctx); err != nil {
			p.logger.Warn("inbox poll cycle failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			p.logger.Info("inbox poller stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
