// Package xpsync pushes XP awards to the remote store. Pushes are best-effort:
// a failure never reaches the caller, the award is queued and retried on a
// schedule. The remote award function is additive, so out-of-order completion
// of concurrent pushes cannot corrupt the total.
package xpsync

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatsWriter is the slice of the stats repository the pusher needs.
type StatsWriter interface {
	AwardXP(ctx context.Context, userID string, amount int, awardID string) error
	AwardXPForExercise(ctx context.Context, userID, exerciseID string) error
}

type award struct {
	id     string // idempotency key, stable across retries
	userID string
	amount int
}

type Pusher struct {
	stats     StatsWriter
	logger    *zap.Logger
	scheduler *gocron.Scheduler

	mu      sync.Mutex
	pending []award
}

func New(stats StatsWriter, logger *zap.Logger) *Pusher {
	return &Pusher{
		stats:     stats,
		logger:    logger,
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

// Push sends an XP delta to the remote store. On failure the award is queued
// for retry; the caller never sees an error.
func (p *Pusher) Push(ctx context.Context, userID string, amount int) {
	if amount <= 0 {
		return
	}

	a := award{id: uuid.NewString(), userID: userID, amount: amount}
	if err := p.stats.AwardXP(ctx, a.userID, a.amount, a.id); err != nil {
		p.logger.Warn("xp push failed, queued for retry",
			zap.String("award_id", a.id),
			zap.Int("amount", a.amount),
			zap.Error(err),
		)

		p.mu.Lock()
		p.pending = append(p.pending, a)
		p.mu.Unlock()
	}
}

// PushForExercise awards the exercise's server-side reward. The reward amount
// lives remotely, so a failed call is only logged — there is no local delta
// to queue.
func (p *Pusher) PushForExercise(ctx context.Context, userID, exerciseID string) {
	if err := p.stats.AwardXPForExercise(ctx, userID, exerciseID); err != nil {
		p.logger.Warn("exercise xp push failed",
			zap.String("exercise_id", exerciseID),
			zap.Error(err),
		)
	}
}

// Flush retries every queued award. Awards that fail again stay queued.
func (p *Pusher) Flush(ctx context.Context) {
	p.mu.Lock()
	queued := p.pending
	p.pending = nil
	p.mu.Unlock()

	if len(queued) == 0 {
		return
	}

	var failed []award
	for _, a := range queued {
		if err := p.stats.AwardXP(ctx, a.userID, a.amount, a.id); err != nil {
			failed = append(failed, a)
			continue
		}
		p.logger.Info("queued xp push delivered",
			zap.String("award_id", a.id),
			zap.Int("amount", a.amount),
		)
	}

	if len(failed) > 0 {
		p.mu.Lock()
		p.pending = append(failed, p.pending...)
		p.mu.Unlock()
	}
}

// PendingCount reports how many awards await retry.
func (p *Pusher) PendingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// StartRetryLoop flushes the queue on a fixed interval in the background.
func (p *Pusher) StartRetryLoop(ctx context.Context, interval time.Duration) error {
	_, err := p.scheduler.Every(interval).Do(func() {
		p.Flush(ctx)
	})
	if err != nil {
		return err
	}

	p.scheduler.StartAsync()
	return nil
}

// Stop terminates the retry loop.
func (p *Pusher) Stop() {
	p.scheduler.Stop()
}
