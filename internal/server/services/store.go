package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/dmitrijs2005/tasklist/internal/dbx"
	"github.com/sethvargo/go-retry"
)

// DefaultStoreTimeout bounds a single store call.
const DefaultStoreTimeout = 3 * time.Second

const (
	storeRetries    = 1
	storeRetryDelay = 10 * time.Millisecond
)

// callStore runs fn under timeout and retries it once on a transient failure.
// A transient failure on the last attempt is reported as ErrStoreUnavailable.
func callStore[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	return storeCall(ctx, timeout, storeRetries, fn)
}

// callStoreOnce is callStore without the retry, for writes whose lost reply
// may hide a committed insert.
func callStoreOnce[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	return storeCall(ctx, timeout, 0, fn)
}

// execStore is callStore for calls that only return an error.
func execStore(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	_, err := callStore(ctx, timeout, discardValue(fn))
	return err
}

// execStoreOnce is callStoreOnce for calls that only return an error.
func execStoreOnce(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	_, err := callStoreOnce(ctx, timeout, discardValue(fn))
	return err
}

func discardValue(fn func(ctx context.Context) error) func(ctx context.Context) (struct{}, error) {
	return func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}
}

func storeCall[T any](ctx context.Context, timeout time.Duration, retries uint64, fn func(ctx context.Context) (T, error)) (T, error) {
	var (
		v    T
		last error
	)

	backoff := retry.WithMaxRetries(retries, retry.NewConstant(storeRetryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		cctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		v, last = fn(cctx)
		if dbx.IsTransient(last) {
			return retry.RetryableError(last)
		}
		return last
	})
	if err == nil {
		return v, nil
	}

	var zero T
	if dbx.IsTransient(last) {
		return zero, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, last)
	}
	if last != nil {
		return v, last
	}
	return zero, err
}
