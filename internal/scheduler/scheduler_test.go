package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campusly/campusly/internal/app/models"
	"github.com/campusly/campusly/internal/app/models/dto"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProcessor struct {
	mock.Mock
}

func (m *mockProcessor) ProcessPeriod(ctx context.Context, period string, campusID *int64, processedBy *int64) (*dto.BulkProcessResult, error) {
	args := m.Called(ctx, period, campusID, processedBy)
	r, _ := args.Get(0).(*dto.BulkProcessResult)
	return r, args.Error(1)
}

type mockPurger struct {
	mock.Mock
}

func (m *mockPurger) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func TestNewRegistersJobs(t *testing.T) {
	s, err := New(Config{PayrollAutoProcess: true, PayrollSchedule: "0 2 1 * *"}, new(mockProcessor), new(mockPurger), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 2, s.JobCount())

	s, err = New(Config{}, new(mockProcessor), new(mockPurger), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, s.JobCount())
}

func TestNewRejectsBadSchedule(t *testing.T) {
	_, err := New(Config{PayrollAutoProcess: true, PayrollSchedule: "every month"}, new(mockProcessor), new(mockPurger), zerolog.Nop())
	assert.Error(t, err)
}

func TestProcessPreviousPeriod(t *testing.T) {
	payroll := new(mockProcessor)
	s, err := New(Config{}, payroll, new(mockPurger), zerolog.Nop())
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2025, time.January, 1, 2, 0, 0, 0, time.UTC) }

	result := &dto.BulkProcessResult{Period: "2024-12", Processed: []*models.Payroll{{ID: 1}}}
	payroll.On("ProcessPeriod", mock.Anything, "2024-12", (*int64)(nil), (*int64)(nil)).Return(result, nil).Once()

	got, err := s.ProcessPreviousPeriod(context.Background())
	require.NoError(t, err)
	assert.Len(t, got.Processed, 1)
	payroll.AssertExpectations(t)
}

func TestProcessPreviousPeriodError(t *testing.T) {
	payroll := new(mockProcessor)
	s, err := New(Config{}, payroll, new(mockPurger), zerolog.Nop())
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2025, time.March, 1, 2, 0, 0, 0, time.UTC) }

	payroll.On("ProcessPeriod", mock.Anything, "2025-02", (*int64)(nil), (*int64)(nil)).Return(nil, errors.New("db down")).Once()

	_, err = s.ProcessPreviousPeriod(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestPurgeExpiredTokens(t *testing.T) {
	tokens := new(mockPurger)
	s, err := New(Config{}, new(mockProcessor), tokens, zerolog.Nop())
	require.NoError(t, err)
	now := time.Date(2025, time.May, 4, 3, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	tokens.On("DeleteExpired", mock.Anything, now).Return(int64(12), nil).Once()

	removed, err := s.PurgeExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), removed)
	tokens.AssertExpectations(t)
}

func TestStartStop(t *testing.T) {
	s, err := New(Config{}, new(mockProcessor), new(mockPurger), zerolog.Nop())
	require.NoError(t, err)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
