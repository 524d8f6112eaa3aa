package cron

import (
	"context"
	"fmt"

	"github.com/evolvespaces/evolve-backend/internal/notifications"
	"github.com/evolvespaces/evolve-backend/pkg/logger"
)

// NotificationGenerateJobParams configure the scheduled generation pass.
type NotificationGenerateJobParams struct {
	Logger    *logger.Logger
	Generator notificationGenerator
}

type notificationGenerator interface {
	GenerateAll(ctx context.Context) (notifications.GenerateResult, error)
}

// NewNotificationGenerateJob builds the job that runs the notification
// generator on schedule. Generation is also triggerable through the API;
// dedup makes the overlap harmless.
func NewNotificationGenerateJob(params NotificationGenerateJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Generator == nil {
		return nil, fmt.Errorf("generator required")
	}
	return &notificationGenerateJob{
		logg:      params.Logger,
		generator: params.Generator,
	}, nil
}

type notificationGenerateJob struct {
	logg      *logger.Logger
	generator notificationGenerator
}

func (j *notificationGenerateJob) Name() string { return "notification-generate" }

func (j *notificationGenerateJob) Run(ctx context.Context) error {
	result, err := j.generator.GenerateAll(ctx)
	if err != nil {
		return fmt.Errorf("notification generation: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"created": result.Created,
		"skipped": result.Skipped,
	})
	j.logg.Info(logCtx, "notification generation complete")
	return nil
}
