package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultSinkKey is the Redis list RedisSink appends to.
const DefaultSinkKey = "uploads:results"

// RedisLister is the subset of redis.Cmdable RedisSink needs.
type RedisLister interface {
	RPush(ctx context.Context, key string, values ...any) *redis.IntCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
}

// RedisSink appends every upload result as JSON to a Redis list.
type RedisSink struct {
	client RedisLister
	key    string
	maxLen int64
	now    func() time.Time
}

// RedisSinkOption configures a RedisSink.
type RedisSinkOption func(*RedisSink)

// WithSinkKey sets the list key. Defaults to DefaultSinkKey.
func WithSinkKey(key string) RedisSinkOption {
	return func(s *RedisSink) {
		if key != "" {
			s.key = key
		}
	}
}

// WithSinkMaxLen keeps only the newest n results. Zero keeps everything.
func WithSinkMaxLen(n int64) RedisSinkOption {
	return func(s *RedisSink) {
		if n >= 0 {
			s.maxLen = n
		}
	}
}

// NewRedisSink returns a sink writing to client.
func NewRedisSink(client RedisLister, opts ...RedisSinkOption) *RedisSink {
	s := &RedisSink{
		client: client,
		key:    DefaultSinkKey,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SinkRecord is the JSON document stored per upload.
type SinkRecord struct {
	ID         string    `json:"id"`
	RecordedAt time.Time `json:"recorded_at"`
	Result
}

// Record implements Sink.
func (s *RedisSink) Record(ctx context.Context, info Result) error {
	payload, err := json.Marshal(SinkRecord{
		ID:         uuid.NewString(),
		RecordedAt: s.now().UTC(),
		Result:     info,
	})
	if err != nil {
		return fmt.Errorf("failed to encode upload result: %w", err)
	}

	if err := s.client.RPush(ctx, s.key, payload).Err(); err != nil {
		return fmt.Errorf("failed to push upload result: %w", err)
	}
	if s.maxLen > 0 {
		if err := s.client.LTrim(ctx, s.key, -s.maxLen, -1).Err(); err != nil {
			return fmt.Errorf("failed to trim upload results: %w", err)
		}
	}
	return nil
}
