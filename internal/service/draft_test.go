package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"doodle-academy/internal/domain"
	"doodle-academy/internal/repository"
	"doodle-academy/internal/repository/mocks"
	"doodle-academy/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newDraftFixture(t *testing.T) (*mocks.DraftRepository, *mocks.StateRepository, *service.DraftService) {
	drafts := mocks.NewDraftRepository(t)
	state := mocks.NewStateRepository(t)
	return drafts, state, service.NewDraftService(drafts, state)
}

func TestCalculateDraftInterval(t *testing.T) {
	assert.Equal(t, 30*time.Second, service.CalculateDraftInterval(101))
	assert.Equal(t, 2*time.Minute, service.CalculateDraftInterval(100))
	assert.Equal(t, 2*time.Minute, service.CalculateDraftInterval(21))
	assert.Equal(t, 10*time.Minute, service.CalculateDraftInterval(20))
	assert.Equal(t, 10*time.Minute, service.CalculateDraftInterval(0))
}

func TestDraftService_GetDraftForClient_CacheHit(t *testing.T) {
	_, state, svc := newDraftFixture(t)
	ctx := context.Background()
	cached := &domain.Draft{UserID: 1, Version: 12}
	require.NoError(t, cached.SetDrawing(sampleDrawing()))

	state.On("GetDraftCache", ctx, uint(1)).Return(cached, nil).Once()

	draft, drawing, err := svc.GetDraftForClient(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(12), draft.Version)
	assert.Equal(t, 1, drawing.Len())
}

func TestDraftService_GetDraftForClient_FallsBackToDatabase(t *testing.T) {
	drafts, state, svc := newDraftFixture(t)
	ctx := context.Background()
	stored := &domain.Draft{ID: 3, UserID: 1, Version: 4}
	require.NoError(t, stored.SetDrawing(sampleDrawing()))

	state.On("GetDraftCache", ctx, uint(1)).Return(nil, repository.ErrNotFound).Once()
	drafts.On("GetLatest", ctx, uint(1)).Return(stored, nil).Once()
	warmed := make(chan struct{})
	state.On("SetDraftCache", mock.Anything, uint(1), stored, mock.Anything).
		Run(func(mock.Arguments) { close(warmed) }).
		Return(nil).Once()

	draft, drawing, err := svc.GetDraftForClient(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(4), draft.Version)
	assert.Equal(t, 1, drawing.Len())

	select {
	case <-warmed:
	case <-time.After(time.Second):
		t.Fatal("缓存没有被回填")
	}
}

func TestDraftService_GetDraftForClient_Empty(t *testing.T) {
	drafts, state, svc := newDraftFixture(t)
	ctx := context.Background()

	state.On("GetDraftCache", ctx, uint(1)).Return(nil, repository.ErrNotFound).Once()
	drafts.On("GetLatest", ctx, uint(1)).Return(nil, repository.ErrNotFound).Once()

	draft, drawing, err := svc.GetDraftForClient(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, draft.Version)
	assert.Zero(t, drawing.Len())
}

func TestDraftService_GetDraftForClient_DatabaseError(t *testing.T) {
	drafts, state, svc := newDraftFixture(t)
	ctx := context.Background()

	state.On("GetDraftCache", ctx, uint(1)).Return(nil, errors.New("redis down")).Once()
	drafts.On("GetLatest", ctx, uint(1)).Return(nil, errors.New("db down")).Once()

	_, _, err := svc.GetDraftForClient(ctx, 1)
	assert.ErrorIs(t, err, service.ErrInternalServer)
}

func TestDraftService_CheckAndSaveDraft_WaitsForInterval(t *testing.T) {
	_, state, svc := newDraftFixture(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return now })
	last := now.Add(-90 * time.Second)

	// 50 次操作对应 2 分钟间隔，90 秒时还不该保存
	state.On("GetOpCount", ctx, uint(1)).Return(int64(50), nil).Once()

	got, err := svc.CheckAndSaveDraft(ctx, 1, sampleDrawing(), 9, last)
	require.NoError(t, err)
	assert.Equal(t, last, got)
}

func TestDraftService_CheckAndSaveDraft_Saves(t *testing.T) {
	drafts, state, svc := newDraftFixture(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return now })
	last := now.Add(-31 * time.Second)

	state.On("GetOpCount", ctx, uint(1)).Return(int64(150), nil).Once()
	drafts.On("Save", ctx, mock.MatchedBy(func(d *domain.Draft) bool {
		drawing, err := d.ParseDrawing()
		return err == nil && d.UserID == 1 && d.Version == 9 && drawing.Len() == 1
	})).Return(nil).Once()
	state.On("SetDraftCache", mock.Anything, uint(1), mock.Anything, mock.Anything).Return(nil).Maybe()
	state.On("ResetOpCount", ctx, uint(1)).Return(nil).Once()

	got, err := svc.CheckAndSaveDraft(ctx, 1, sampleDrawing(), 9, last)
	require.NoError(t, err)
	assert.Equal(t, now, got)
}

func TestDraftService_CheckAndSaveDraft_NoOpsNoSave(t *testing.T) {
	_, state, svc := newDraftFixture(t)
	ctx := context.Background()

	state.On("GetOpCount", ctx, uint(1)).Return(int64(0), nil).Once()

	got, err := svc.CheckAndSaveDraft(ctx, 1, sampleDrawing(), 1, time.Time{})
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestDraftService_CheckAndSaveDraft_SaveFailureKeepsLastTime(t *testing.T) {
	drafts, state, svc := newDraftFixture(t)
	ctx := context.Background()

	state.On("GetOpCount", ctx, uint(1)).Return(int64(5), nil).Once()
	drafts.On("Save", ctx, mock.Anything).Return(errors.New("db down")).Once()

	got, err := svc.CheckAndSaveDraft(ctx, 1, sampleDrawing(), 1, time.Time{})
	assert.ErrorIs(t, err, service.ErrInternalServer)
	assert.True(t, got.IsZero())
	state.AssertNotCalled(t, "ResetOpCount", mock.Anything, mock.Anything)
}

func TestDraftService_Checkpoint_StoresLastTime(t *testing.T) {
	drafts, state, svc := newDraftFixture(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return now })

	state.On("GetLastDraftTime", ctx, uint(2)).Return(time.Time{}, nil).Once()
	state.On("GetOpCount", ctx, uint(2)).Return(int64(3), nil).Once()
	drafts.On("Save", ctx, mock.Anything).Return(nil).Once()
	state.On("SetDraftCache", mock.Anything, uint(2), mock.Anything, mock.Anything).Return(nil).Maybe()
	state.On("ResetOpCount", ctx, uint(2)).Return(nil).Once()
	state.On("SetLastDraftTime", ctx, uint(2), now, mock.Anything).Return(nil).Once()

	saved, err := svc.Checkpoint(ctx, 2, sampleDrawing(), 3)
	require.NoError(t, err)
	assert.True(t, saved)
}

func TestDraftService_Flush_SavesWithoutOpCount(t *testing.T) {
	drafts, state, svc := newDraftFixture(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return now })

	// 操作计数还没写进 Redis 时，关闭会话也必须保存
	state.On("GetDraftCache", ctx, uint(5)).Return(&domain.Draft{UserID: 5, Version: 1}, nil).Once()
	drafts.On("Save", ctx, mock.MatchedBy(func(d *domain.Draft) bool {
		return d.UserID == 5 && d.Version == 2
	})).Return(nil).Once()
	state.On("SetDraftCache", mock.Anything, uint(5), mock.Anything, mock.Anything).Return(nil).Maybe()
	state.On("ResetOpCount", ctx, uint(5)).Return(nil).Once()
	state.On("SetLastDraftTime", ctx, uint(5), now, mock.Anything).Return(nil).Once()

	assert.NoError(t, svc.Flush(ctx, 5, sampleDrawing(), 2))
	state.AssertNotCalled(t, "GetOpCount", mock.Anything, mock.Anything)
}

func TestDraftService_Flush_CacheErrorStillSaves(t *testing.T) {
	drafts, state, svc := newDraftFixture(t)
	ctx := context.Background()

	state.On("GetDraftCache", ctx, uint(5)).Return(nil, errors.New("redis down")).Once()
	drafts.On("Save", ctx, mock.Anything).Return(nil).Once()
	state.On("SetDraftCache", mock.Anything, uint(5), mock.Anything, mock.Anything).Return(nil).Maybe()
	state.On("ResetOpCount", ctx, uint(5)).Return(errors.New("redis down")).Once()
	state.On("SetLastDraftTime", ctx, uint(5), mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

	assert.NoError(t, svc.Flush(ctx, 5, sampleDrawing(), 3))
}

func TestDraftService_Flush_AlreadySaved(t *testing.T) {
	drafts, state, svc := newDraftFixture(t)
	ctx := context.Background()

	state.On("GetDraftCache", ctx, uint(5)).Return(&domain.Draft{UserID: 5, Version: 2}, nil).Once()

	assert.NoError(t, svc.Flush(ctx, 5, sampleDrawing(), 2))
	drafts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestDraftService_Flush_SaveFailure(t *testing.T) {
	drafts, state, svc := newDraftFixture(t)
	ctx := context.Background()

	state.On("GetDraftCache", ctx, uint(5)).Return(nil, repository.ErrNotFound).Once()
	drafts.On("Save", ctx, mock.Anything).Return(errors.New("db down")).Once()

	assert.ErrorIs(t, svc.Flush(ctx, 5, sampleDrawing(), 1), service.ErrInternalServer)
	state.AssertNotCalled(t, "SetLastDraftTime", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
