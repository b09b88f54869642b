package redis

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"telegram-registration-bridge/internal/infra/metrics"
)

const releaseTimeout = 2 * time.Second

// RunWithLease runs fn while this process holds key. The lease is refreshed
// every ttl/3; if a refresh fails fn's context is canceled and the lease is
// requested again. RunWithLease returns when ctx is done or when fn returns
// while the lease is still held.
func RunWithLease(ctx context.Context, locker Locker, key string, ttl time.Duration, logger *zerolog.Logger, fn func(ctx context.Context) error) error {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	interval := ttl / 3
	waiting := false

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		token, ok, err := locker.TryLock(ctx, key, ttl)
		switch {
		case err != nil:
			logger.Warn().Err(err).Str("key", key).Msg("lease acquire failed")
		case !ok:
			if !waiting {
				logger.Info().Str("key", key).Msg("lease held by another process, waiting")
				waiting = true
			}
		default:
			waiting = false
			lost, err := holdLease(ctx, locker, key, token, ttl, logger, fn)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !lost {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

func holdLease(ctx context.Context, locker Locker, key, token string, ttl time.Duration, logger *zerolog.Logger, fn func(ctx context.Context) error) (bool, error) {
	leaseCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	metrics.SetPollerLeaseHeld(true)
	defer metrics.SetPollerLeaseHeld(false)
	logger.Info().Str("key", key).Dur("ttl", ttl).Msg("lease acquired")

	var lost atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		t := time.NewTicker(ttl / 3)
		defer t.Stop()
		for {
			select {
			case <-leaseCtx.Done():
				return
			case <-t.C:
				ok, err := locker.Refresh(leaseCtx, key, token, ttl)
				if leaseCtx.Err() != nil {
					return
				}
				if err != nil || !ok {
					lost.Store(true)
					metrics.IncPollerLeaseLost()
					logger.Warn().Err(err).Str("key", key).Msg("lease lost, stopping")
					cancel()
					return
				}
			}
		}
	}()

	err := fn(leaseCtx)
	cancel()
	<-done

	if lost.Load() {
		return true, err
	}
	releaseCtx, rc := context.WithTimeout(context.Background(), releaseTimeout)
	defer rc()
	if uerr := locker.Unlock(releaseCtx, key, token); uerr != nil {
		logger.Warn().Err(uerr).Str("key", key).Msg("lease release failed")
	} else {
		logger.Info().Str("key", key).Msg("lease released")
	}
	return false, err
}
