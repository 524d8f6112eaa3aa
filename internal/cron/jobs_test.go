package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evolvespaces/evolve-backend/internal/notifications"
	"github.com/evolvespaces/evolve-backend/internal/subscriptions"
	"github.com/evolvespaces/evolve-backend/pkg/logger"
	"gorm.io/gorm"
)

type fakeSweeper struct {
	result subscriptions.SweepResult
	err    error
	calls  int
	lastAt time.Time
}

func (f *fakeSweeper) SweepExpired(_ context.Context, now time.Time) (subscriptions.SweepResult, error) {
	f.calls++
	f.lastAt = now
	return f.result, f.err
}

func TestExpirySweepJobRunsSweep(t *testing.T) {
	now := time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC)
	sweeper := &fakeSweeper{result: subscriptions.SweepResult{Expired: 3, SeatsFreed: 2}}
	jobIface, err := NewExpirySweepJob(ExpirySweepJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Sweeper: sweeper,
	})
	if err != nil {
		t.Fatalf("NewExpirySweepJob: %v", err)
	}
	job := jobIface.(*expirySweepJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sweeper.calls != 1 || !sweeper.lastAt.Equal(now) {
		t.Fatalf("expected one sweep at %s, got %d at %s", now, sweeper.calls, sweeper.lastAt)
	}
}

func TestExpirySweepJobPropagatesErrors(t *testing.T) {
	jobIface, err := NewExpirySweepJob(ExpirySweepJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Sweeper: &fakeSweeper{err: errors.New("boom")},
	})
	if err != nil {
		t.Fatalf("NewExpirySweepJob: %v", err)
	}
	if err := jobIface.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type fakeGenerator struct {
	result notifications.GenerateResult
	err    error
	calls  int
}

func (f *fakeGenerator) GenerateAll(context.Context) (notifications.GenerateResult, error) {
	f.calls++
	return f.result, f.err
}

func TestNotificationGenerateJobRunsGenerator(t *testing.T) {
	generator := &fakeGenerator{result: notifications.GenerateResult{Created: 5, Skipped: 1}}
	job, err := NewNotificationGenerateJob(NotificationGenerateJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Generator: generator,
	})
	if err != nil {
		t.Fatalf("NewNotificationGenerateJob: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if generator.calls != 1 {
		t.Fatalf("expected generator called once, got %d", generator.calls)
	}
}

func TestNotificationCleanupJobDeletesOldNotifications(t *testing.T) {
	now := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	repo := &fakeNotificationRepo{deletedRows: 42}
	jobIface, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         fakeTxRunner{},
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewNotificationCleanupJob: %v", err)
	}
	job := jobIface.(*notificationCleanupJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	expectedCutoff := now.UTC().Add(-notificationRetentionDays * 24 * time.Hour)
	if !repo.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s, got %s", expectedCutoff, repo.lastCutoff)
	}
	if repo.called != 1 {
		t.Fatalf("expected repo called once, got %d", repo.called)
	}
}

func TestNotificationCleanupJobPropagatesErrors(t *testing.T) {
	repo := &fakeNotificationRepo{err: errors.New("boom")}
	job, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         fakeTxRunner{},
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewNotificationCleanupJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type fakeNotificationRepo struct {
	lastCutoff  time.Time
	deletedRows int64
	err         error
	called      int
}

func (f *fakeNotificationRepo) DeleteOlderThan(_ context.Context, _ *gorm.DB, cutoff time.Time) (int64, error) {
	f.called++
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return f.deletedRows, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
