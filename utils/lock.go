package utils

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/shop_backend/config"
)

var ErrLockNotObtained = errors.New("could not obtain entity lock")

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

var entityLocks = &keyedMutex{locks: map[string]*refMutex{}}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	m := k.locks[key]
	if m == nil {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// LedgerLockKey builds the lock key for one ledger, e.g. LedgerLockKey("stock", 12) -> "ledger:stock:12".
func LedgerLockKey(ledger string, id int) string {
	return fmt.Sprintf("ledger:%s:%d", ledger, id)
}

// WithEntityLock runs fn while holding the lock for key.
// Callers in this process are serialized by a keyed mutex; when Redis is connected
// the lock is also taken in Redis so other instances wait too.
func WithEntityLock(ctx context.Context, key string, moduleName string, functionName string, fn func() error) error {
	unlock := entityLocks.lock(key)
	defer unlock()

	locker := config.GetRedisLock()
	if locker == nil {
		return fn()
	}

	ttl := config.LedgerLockTTL()
	lock, err := locker.Obtain(ctx, key, ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(25*time.Millisecond), int(ttl/(25*time.Millisecond))),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		config.LogError(config.GetLogger(), moduleName, functionName, "Could not obtain lock", key, err)
		return fmt.Errorf("%w: %s", ErrLockNotObtained, key)
	} else if err != nil {
		config.LogError(config.GetLogger(), moduleName, functionName, "Error obtaining lock", key, err)
		return err
	}
	defer func() {
		if releaseErr := lock.Release(context.Background()); releaseErr != nil && !errors.Is(releaseErr, redislock.ErrLockNotHeld) {
			config.LogError(config.GetLogger(), moduleName, functionName, "Release lock", key, releaseErr)
		}
	}()

	return fn()
}
