package reply

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "reply:session:"

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore shares sessions between service instances. Updates for one id
// are serialized with a short-lived lock key.
type RedisStore struct {
	rdb     redis.UniversalClient
	ttl     time.Duration
	lockTTL time.Duration
	backoff time.Duration
}

func NewRedisStore(rdb redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{
		rdb:     rdb,
		ttl:     ttl,
		lockTTL: 15 * time.Second,
		backoff: 20 * time.Millisecond,
	}
}

func sessionKey(id string) string { return keyPrefix + id }
func lockKey(id string) string    { return keyPrefix + id + ":lock" }

func (r *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	return r.load(ctx, id)
}

func (r *RedisStore) Update(ctx context.Context, id string, fn func(*Session) error) error {
	token := uuid.NewString()
	if err := r.lock(ctx, id, token); err != nil {
		return err
	}
	defer func() {
		// release even if the request context is already gone
		_ = unlockScript.Run(context.WithoutCancel(ctx), r.rdb, []string{lockKey(id)}, token).Err()
	}()

	s, err := r.load(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(&s); err != nil {
		return err
	}
	return r.save(ctx, id, s)
}

func (r *RedisStore) lock(ctx context.Context, id, token string) error {
	for {
		ok, err := r.rdb.SetNX(ctx, lockKey(id), token, r.lockTTL).Result()
		if err != nil {
			return fmt.Errorf("lock reply session: %w", err)
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("reply session %q is busy: %w", id, ctx.Err())
		case <-time.After(r.backoff):
		}
	}
}

func (r *RedisStore) load(ctx context.Context, id string) (Session, error) {
	b, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("load reply session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return Session{}, fmt.Errorf("decode reply session: %w", err)
	}
	return s, nil
}

func (r *RedisStore) save(ctx context.Context, id string, s Session) error {
	if s.State() == StateIdle {
		return r.rdb.Del(ctx, sessionKey(id)).Err()
	}

	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, sessionKey(id), b, r.ttl).Err()
}
