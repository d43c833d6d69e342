package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallStore_Success(t *testing.T) {
	t.Parallel()
	calls := 0
	v, err := callStore(context.Background(), time.Second, func(ctx context.Context) (int, error) {
		calls++
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
}

func TestCallStore_RetriesTransientOnce(t *testing.T) {
	t.Parallel()
	calls := 0
	v, err := callStore(context.Background(), time.Second, func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", driver.ErrBadConn
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, calls)
}

func TestCallStore_TwoTransientFailures(t *testing.T) {
	t.Parallel()
	calls := 0
	_, err := callStore(context.Background(), time.Second, func(ctx context.Context) (int, error) {
		calls++
		return 0, context.DeadlineExceeded
	})
	require.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, common.ErrSessionNotFound)
	assert.Equal(t, 2, calls)
}

func TestCallStore_PermanentErrorNotRetried(t *testing.T) {
	t.Parallel()
	calls := 0
	boom := errors.New("boom")
	err := execStore(context.Background(), time.Second, func(ctx context.Context) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestCallStore_TimeoutApplies(t *testing.T) {
	t.Parallel()
	err := execStore(context.Background(), 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	require.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestCallStore_CallerCancelledStopsRetry(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := execStore(ctx, time.Second, func(ctx context.Context) error {
		calls++
		cancel()
		return driver.ErrBadConn
	})
	require.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.Equal(t, 1, calls)
}

func TestCallStoreOnce_TransientNotRetried(t *testing.T) {
	t.Parallel()
	calls := 0
	_, err := callStoreOnce(context.Background(), 10*time.Millisecond, func(ctx context.Context) (int, error) {
		calls++
		<-ctx.Done()
		return 0, ctx.Err()
	})
	require.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.Equal(t, 1, calls)
}

func TestExecStoreOnce_PermanentErrorPassesThrough(t *testing.T) {
	t.Parallel()
	err := execStoreOnce(context.Background(), time.Second, func(ctx context.Context) error {
		return common.ErrorAlreadyExists
	})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
	assert.NotErrorIs(t, err, common.ErrStoreUnavailable)
}
