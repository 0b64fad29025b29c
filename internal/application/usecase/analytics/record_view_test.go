package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/portli/internal/domain/analytics"
	"github.com/khoahotran/portli/pkg/apperror"
	"github.com/khoahotran/portli/pkg/logger"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) IncrementDaily(ctx context.Context, username string, day time.Time) error {
	return m.Called(ctx, username, day).Error(0)
}

func (m *mockRepo) ListDaily(ctx context.Context, username string, since time.Time) ([]analytics.DailyViews, error) {
	args := m.Called(ctx, username, since)
	rows, _ := args.Get(0).([]analytics.DailyViews)
	return rows, args.Error(1)
}

type mockCounter struct {
	mock.Mock
}

func (m *mockCounter) Increment(ctx context.Context, username string) error {
	return m.Called(ctx, username).Error(0)
}

func (m *mockCounter) Total(ctx context.Context, username string) (int64, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(int64), args.Error(1)
}

func TestRecordView_TruncatesToDay(t *testing.T) {
	repo, counter := &mockRepo{}, &mockCounter{}
	viewed := time.Date(2026, 4, 2, 23, 59, 0, 0, time.FixedZone("ICT", 7*3600))
	repo.On("IncrementDaily", mock.Anything, "abc", time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)).Return(nil)
	counter.On("Increment", mock.Anything, "abc").Return(nil)

	err := NewRecordViewUseCase(repo, counter, logger.NewNopLogger()).Execute(context.Background(), analytics.ViewEvent{Username: "abc", ViewedAt: viewed})
	require.NoError(t, err)
	repo.AssertExpectations(t)
	counter.AssertExpectations(t)
}

func TestRecordView_RejectsIncompleteEvents(t *testing.T) {
	uc := NewRecordViewUseCase(&mockRepo{}, &mockCounter{}, logger.NewNopLogger())

	assert.ErrorIs(t, uc.Execute(context.Background(), analytics.ViewEvent{ViewedAt: time.Now()}), apperror.ErrInvalidInput)
	assert.ErrorIs(t, uc.Execute(context.Background(), analytics.ViewEvent{Username: "abc"}), apperror.ErrInvalidInput)
}

func TestRecordView_RepoFailureSkipsCounter(t *testing.T) {
	repo, counter := &mockRepo{}, &mockCounter{}
	repo.On("IncrementDaily", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("db down"))

	err := NewRecordViewUseCase(repo, counter, logger.NewNopLogger()).Execute(context.Background(), analytics.ViewEvent{Username: "abc", ViewedAt: time.Now()})
	assert.Error(t, err)
	counter.AssertNotCalled(t, "Increment", mock.Anything, mock.Anything)
}

func TestRecordView_WithoutCounter(t *testing.T) {
	repo := &mockRepo{}
	repo.On("IncrementDaily", mock.Anything, "abc", mock.Anything).Return(nil)

	err := NewRecordViewUseCase(repo, nil, logger.NewNopLogger()).Execute(context.Background(), analytics.ViewEvent{Username: "abc", ViewedAt: time.Now()})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
