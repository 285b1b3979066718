// Package sync periodically snapshots every shopping list to backup
// destinations as JSONL.
package sync

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"
)

// Destination is the interface for a backup target.
type Destination interface {
	// Name identifies the destination in logs.
	Name() string
	// Write stores the JSONL snapshot.
	Write(ctx context.Context, data []byte) error
}

// Scheduler runs periodic exports to one or more destinations.
type Scheduler struct {
	source       Source
	destinations []Destination
	interval     time.Duration
	logger       *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that exports from source to the given
// destinations at the specified interval.
func NewScheduler(source Source, destinations []Destination, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		source:       source,
		destinations: destinations,
		interval:     interval,
		logger:       logger,
	}
}

// Start begins periodic export. It runs once immediately, then on each tick.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the scheduler and waits for the current export (if any) to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	s.SyncOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SyncOnce(ctx)
		}
	}
}

// SyncOnce exports once and writes to every destination. A failing
// destination does not stop the others.
func (s *Scheduler) SyncOnce(ctx context.Context) {
	var buf bytes.Buffer
	n, err := ExportJSONL(ctx, s.source, &buf)
	if err != nil {
		s.logger.Error("sync export failed", "err", err)
		return
	}
	data := buf.Bytes()

	failed := 0
	for _, dest := range s.destinations {
		if err := dest.Write(ctx, data); err != nil {
			failed++
			s.logger.Error("sync destination write failed", "destination", dest.Name(), "err", err)
		}
	}

	s.logger.Info("sync completed",
		"items", n,
		"destinations", len(s.destinations),
		"failed", failed,
		"bytes", len(data),
	)
}
