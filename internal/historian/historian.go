// Package historian drains game events from the queue into the history database.
package historian

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/promptwars/internal/game"
)

// Source yields queued events. Pop returns nil, nil when nothing arrived within timeout.
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (*game.Event, error)
}

// Recorder persists a batch atomically.
type Recorder interface {
	RecordEvents(ctx context.Context, events []game.Event) error
}

// Service batches events and flushes them when the batch is full or the flush delay elapsed.
type Service struct {
	src        Source
	rec        Recorder
	batchSize  int
	flushDelay time.Duration
	popTimeout time.Duration
	logger     logrus.FieldLogger

	batch     []game.Event
	lastFlush time.Time
	// failing is set while the recorder rejects writes.
	failing bool
}

func New(src Source, rec Recorder, batchSize int, flushDelay time.Duration, logger logrus.FieldLogger) *Service {
	if batchSize < 1 {
		batchSize = 1
	}
	popTimeout := flushDelay
	if popTimeout < time.Second {
		popTimeout = time.Second
	}
	return &Service{
		src:        src,
		rec:        rec,
		batchSize:  batchSize,
		flushDelay: flushDelay,
		popTimeout: popTimeout,
		logger:     logger,
		batch:      make([]game.Event, 0, batchSize),
	}
}

// Run consumes until ctx is cancelled, then flushes what is left.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("historian started")
	s.lastFlush = time.Now()

	for ctx.Err() == nil {
		// A full batch that cannot be written stays in the queue, not in memory.
		if s.failing && len(s.batch) >= s.batchSize {
			sleep(ctx, s.popTimeout)
			if ctx.Err() == nil {
				s.flush(ctx)
			}
			continue
		}

		ev, err := s.src.Pop(ctx, s.popTimeout)
		if err != nil {
			if ctx.Err() == nil {
				s.logger.WithError(err).Error("failed to pop event")
				sleep(ctx, s.popTimeout)
			}
			continue
		}
		if ev != nil {
			s.batch = append(s.batch, *ev)
		}
		if len(s.batch) >= s.batchSize || time.Since(s.lastFlush) >= s.flushDelay {
			s.flush(ctx)
		}
	}

	// The run context is gone; give the final flush its own deadline.
	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.flush(flushCtx)
	s.logger.Info("historian shutting down")
	return nil
}

// flush keeps the batch on failure so the next flush retries it.
func (s *Service) flush(ctx context.Context) {
	s.lastFlush = time.Now()
	if len(s.batch) == 0 {
		return
	}
	if err := s.rec.RecordEvents(ctx, s.batch); err != nil {
		s.failing = true
		s.logger.WithError(err).WithField("pending", len(s.batch)).Error("failed to flush events")
		return
	}
	s.failing = false
	s.logger.Debugf("flushed %d events", len(s.batch))
	s.batch = s.batch[:0]
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
