// Package scheduler runs the recurring background jobs: monthly payroll
// processing and refresh token cleanup.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/campusly/campusly/internal/pkg/helpers"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// TokenCleanupSchedule runs nightly at 03:30
const TokenCleanupSchedule = "30 3 * * *"

const jobTimeout = 10 * time.Minute

// PeriodProcessor processes payroll for every payable employee in a period
type PeriodProcessor interface {
	ProcessPeriod(ctx context.Context, period string, campusID *int64, processedBy *int64) (*dto.BulkProcessResult, error)
}

// TokenPurger removes refresh tokens that expired before a cutoff
type TokenPurger interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Config controls which jobs are registered
type Config struct {
	PayrollAutoProcess bool
	PayrollSchedule    string
}

// Scheduler wraps a cron runner
type Scheduler struct {
	cron    *cron.Cron
	payroll PeriodProcessor
	tokens  TokenPurger
	logger  zerolog.Logger
	now     func() time.Time
}

// New registers the jobs enabled in cfg
func New(cfg Config, payroll PeriodProcessor, tokens TokenPurger, logger zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger{logger}))),
		payroll: payroll,
		tokens:  tokens,
		logger:  logger.With().Str("component", "scheduler").Logger(),
		now:     time.Now,
	}

	if cfg.PayrollAutoProcess {
		if _, err := s.cron.AddFunc(cfg.PayrollSchedule, s.runPayroll); err != nil {
			return nil, fmt.Errorf("invalid payroll schedule %q: %w", cfg.PayrollSchedule, err)
		}
		s.logger.Info().Str("schedule", cfg.PayrollSchedule).Msg("Payroll auto-processing enabled")
	}
	if _, err := s.cron.AddFunc(TokenCleanupSchedule, s.runTokenCleanup); err != nil {
		return nil, fmt.Errorf("invalid token cleanup schedule: %w", err)
	}

	return s, nil
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs or ctx, whichever ends first
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn().Msg("Scheduler stop timed out with jobs still running")
	}
}

// JobCount reports the number of registered jobs
func (s *Scheduler) JobCount() int {
	return len(s.cron.Entries())
}

// ProcessPreviousPeriod processes payroll for the month before now
func (s *Scheduler) ProcessPreviousPeriod(ctx context.Context) (*dto.BulkProcessResult, error) {
	period := helpers.PreviousPeriod(s.now())
	result, err := s.payroll.ProcessPeriod(ctx, period, nil, nil)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("period", period).
		Int("processed", len(result.Processed)).
		Int("skipped", len(result.Skipped)).
		Int("failed", len(result.Failed)).
		Msg("Scheduled payroll run finished")
	return result, nil
}

// PurgeExpiredTokens deletes refresh tokens that have already expired
func (s *Scheduler) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	removed, err := s.tokens.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int64("removed", removed).Msg("Expired refresh tokens purged")
	return removed, nil
}

func (s *Scheduler) runPayroll() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := s.ProcessPreviousPeriod(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Scheduled payroll run failed")
	}
}

func (s *Scheduler) runTokenCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if _, err := s.PurgeExpiredTokens(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Refresh token cleanup failed")
	}
}

// cronLogger adapts zerolog to cron.Logger
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
