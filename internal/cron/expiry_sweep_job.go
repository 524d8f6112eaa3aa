package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/evolvespaces/evolve-backend/internal/subscriptions"
	"github.com/evolvespaces/evolve-backend/pkg/logger"
)

// ExpirySweepJobParams configure the subscription expiry sweep.
type ExpirySweepJobParams struct {
	Logger  *logger.Logger
	Sweeper expirySweeper
}

type expirySweeper interface {
	SweepExpired(ctx context.Context, now time.Time) (subscriptions.SweepResult, error)
}

// NewExpirySweepJob builds the job that marks lapsed subscriptions expired
// and frees their seats. The same sweep also runs lazily on reads, so this
// job just bounds how stale a quiet system can get.
func NewExpirySweepJob(params ExpirySweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sweeper == nil {
		return nil, fmt.Errorf("sweeper required")
	}
	return &expirySweepJob{
		logg:    params.Logger,
		sweeper: params.Sweeper,
		now:     time.Now,
	}, nil
}

type expirySweepJob struct {
	logg    *logger.Logger
	sweeper expirySweeper
	now     func() time.Time
}

func (j *expirySweepJob) Name() string { return "subscription-expiry-sweep" }

func (j *expirySweepJob) Run(ctx context.Context) error {
	result, err := j.sweeper.SweepExpired(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("expiry sweep: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"subscriptions_expired": result.Expired,
		"seats_freed":           result.SeatsFreed,
	})
	j.logg.Info(logCtx, "expiry sweep complete")
	return nil
}
