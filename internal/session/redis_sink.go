package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/playmatatu/tablesim/internal/game"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// EventsChannel is the Redis pub/sub channel carrying TableEvent JSON.
const EventsChannel = "table_events"

// defaultCacheEvery is how many ticks pass between two cached frames.
const defaultCacheEvery = 15

func frameKey(token string) string {
	return "table:" + token + ":frame"
}

// RedisSink caches recent frames in Redis and publishes table events.
// A nil sink or a sink without a client does nothing.
type RedisSink struct {
	rdb        *redis.Client
	frameTTL   time.Duration
	cacheEvery uint64
}

func NewRedisSink(rdb *redis.Client, frameTTL time.Duration) *RedisSink {
	if frameTTL <= 0 {
		frameTTL = 10 * time.Second
	}
	return &RedisSink{rdb: rdb, frameTTL: frameTTL, cacheEvery: defaultCacheEvery}
}

// EncodeFrame packs a frame for the cache and for binary websocket messages.
func EncodeFrame(f *game.Frame) ([]byte, error) {
	return msgpack.Marshal(f)
}

// DecodeFrame is the inverse of EncodeFrame.
func DecodeFrame(data []byte) (*game.Frame, error) {
	var f game.Frame
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// cacheWriteTimeout bounds a frame cache write made on the table goroutine.
const cacheWriteTimeout = 250 * time.Millisecond

// PublishFrame caches every cacheEvery-th frame. The write is synchronous so
// that it can never land after the Del issued when the table closes.
func (s *RedisSink) PublishFrame(token string, f *game.Frame) {
	if s == nil || s.rdb == nil {
		return
	}
	if s.cacheEvery > 1 && f.Tick%s.cacheEvery != 0 {
		return
	}

	data, err := EncodeFrame(f)
	if err != nil {
		log.Printf("[REDIS] encode frame %s@%d: %v", token, f.Tick, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
	defer cancel()
	if err := s.rdb.SetEx(ctx, frameKey(token), data, s.frameTTL).Err(); err != nil {
		log.Printf("[REDIS] cache frame %s@%d: %v", token, f.Tick, err)
	}
}

// CachedFrame loads the last cached frame for a table.
func (s *RedisSink) CachedFrame(ctx context.Context, token string) (*game.Frame, error) {
	if s == nil || s.rdb == nil {
		return nil, ErrTableNotFound
	}
	data, err := s.rdb.Get(ctx, frameKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load cached frame: %w", err)
	}
	return DecodeFrame(data)
}

// PublishEvent broadcasts an event to every process subscribed to
// EventsChannel. Closing a table also drops its cached frame.
func (s *RedisSink) PublishEvent(ctx context.Context, event TableEvent) {
	if s == nil || s.rdb == nil {
		return
	}

	b, err := json.Marshal(event)
	if err != nil {
		log.Printf("[REDIS] encode event %s: %v", event.Type, err)
		return
	}
	if n, err := s.rdb.Publish(ctx, EventsChannel, b).Result(); err != nil {
		log.Printf("[REDIS] publish %s for %s failed: %v", event.Type, event.Table, err)
	} else {
		log.Printf("[REDIS] published %s for %s subscribers=%d", event.Type, event.Table, n)
	}

	if event.Type == EventClosed {
		if err := s.rdb.Del(ctx, frameKey(event.Table)).Err(); err != nil {
			log.Printf("[REDIS] drop cached frame %s: %v", event.Table, err)
		}
	}
}
