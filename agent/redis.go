package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "bookingagent:session:"

// RedisStateReadWriter persists session state in Redis so sessions
// survive process restarts. The stored layout is the State JSON keyed by
// session id.
type RedisStateReadWriter struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisOption func(*RedisStateReadWriter)

// WithSessionTTL sets an expiry on stored sessions; abandoned sessions
// then age out without an explicit Remove. Zero means no expiry.
func WithSessionTTL(ttl time.Duration) RedisOption {
	return func(r *RedisStateReadWriter) {
		r.ttl = ttl
	}
}

func NewRedisStateReadWriter(client *redis.Client, opts ...RedisOption) *RedisStateReadWriter {
	r := &RedisStateReadWriter{
		client: client,
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisStateReadWriter) key(ctx context.Context) string {
	return redisKeyPrefix + sessionIDOrDefault(ctx)
}

func (r *RedisStateReadWriter) InitState(ctx context.Context) *State {
	return NewSession(sessionIDOrDefault(ctx)).State()
}

func (r *RedisStateReadWriter) Read(ctx context.Context) (*State, error) {
	data, err := r.client.Get(ctx, r.key(ctx)).Bytes()
	if errors.Is(err, redis.Nil) {
		return r.InitState(ctx), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session state: %w", err)
	}
	var state State
	if err := sonic.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode session state: %w", err)
	}
	return &state, nil
}

func (r *RedisStateReadWriter) Write(ctx context.Context, state *State) error {
	state.UpdatedAt = time.Now()
	data, err := sonic.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}
	if err := r.client.Set(ctx, r.key(ctx), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("write session state: %w", err)
	}
	return nil
}

func (r *RedisStateReadWriter) Remove(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key(ctx)).Err(); err != nil {
		return fmt.Errorf("remove session state: %w", err)
	}
	return nil
}

var _ StateReadWriter = (*RedisStateReadWriter)(nil)
