package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another holder owns the lock
var ErrLockHeld = errors.New("lock is held by another run")

// Locker hands out best-effort distributed locks (SET NX PX + owner-checked release)
type Locker struct {
	client *Client
	prefix string
}

// Lock is an acquired lock. Release is safe to call more than once.
type Lock struct {
	locker *Locker
	key    string
	token  string
}

// NewLocker creates a locker. With Redis disabled every Acquire succeeds.
func NewLocker(client *Client, prefix string) *Locker {
	return &Locker{client: client, prefix: prefix}
}

var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// Acquire takes the named lock for ttl or returns ErrLockHeld
func (l *Locker) Acquire(ctx context.Context, name string, ttl time.Duration) (*Lock, error) {
	key := fmt.Sprintf("%s:lock:%s", l.prefix, name)
	lock := &Lock{locker: l, key: key, token: uuid.NewString()}

	if !l.client.Enabled() {
		return lock, nil
	}

	ok, err := l.client.Redis().SetNX(ctx, key, lock.token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("lock acquire failed: %w", err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	return lock, nil
}

// Release deletes the lock if this holder still owns it
func (lk *Lock) Release(ctx context.Context) error {
	if lk == nil || !lk.locker.client.Enabled() {
		return nil
	}

	if err := releaseScript.Run(ctx, lk.locker.client.Redis(), []string{lk.key}, lk.token).Err(); err != nil {
		return fmt.Errorf("lock release failed: %w", err)
	}
	return nil
}
