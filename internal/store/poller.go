package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Poller keeps a Stash in sync with a backend. It loads once on start, then
// again on every tick and every signal received on Trigger.
type Poller struct {
	Loader   Loader
	Stash    *Stash
	Interval time.Duration
	Trigger  <-chan struct{}
	Log      logrus.FieldLogger
}

func (p *Poller) Sync(ctx context.Context) error {
	snapshot, err := p.Loader.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	changed := p.Stash.Apply(snapshot)
	if p.Log != nil && len(changed) > 0 {
		p.Log.WithFields(logrus.Fields{
			"records": len(snapshot),
			"changed": len(changed),
		}).Debug("record snapshot applied")
	}
	return nil
}

func (p *Poller) Run(ctx context.Context) error {
	if err := p.Sync(ctx); err != nil {
		return err
	}

	var tick <-chan time.Time
	if p.Interval > 0 {
		ticker := time.NewTicker(p.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
		case _, ok := <-p.Trigger:
			if !ok {
				p.Trigger = nil
				continue
			}
		}
		if err := p.Sync(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if p.Log != nil {
				p.Log.WithError(err).Warn("record sync failed")
			}
		}
	}
}
