package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// JobLock guards against two analysis jobs running for one call
type JobLock interface {
	Acquire(ctx context.Context, callID, owner string) (bool, error)
	Release(ctx context.Context, callID, owner string) error
}

type jobLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewJobLock creates a Redis backed job lock
func NewJobLock(client *redis.Client, ttl time.Duration) JobLock {
	return &jobLock{
		client: client,
		ttl:    ttl,
	}
}

func jobLockKey(callID string) string {
	return fmt.Sprintf("analysis:lock:%s", callID)
}

// releaseScript deletes the lock only when it is still held by owner.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *jobLock) Acquire(ctx context.Context, callID, owner string) (bool, error) {
	return l.client.SetNX(ctx, jobLockKey(callID), owner, l.ttl).Result()
}

func (l *jobLock) Release(ctx context.Context, callID, owner string) error {
	return releaseScript.Run(ctx, l.client, []string{jobLockKey(callID)}, owner).Err()
}
