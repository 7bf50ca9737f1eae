package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists entries to a Redis hash per mailbox. Use it when
// several processes feed one logical mailbox and its pending entries
// must survive any single process.
//
// Each mailbox maps to the hash "mailbox:<box>"; each entry is one
// field holding a JSON-encoded record.
type RedisStore struct {
	client *redis.Client
	owned  bool
	mu     sync.Mutex
	closed bool
}

// redisRecord is the wire form of a Record in a hash field.
type redisRecord struct {
	SentAt  time.Time `json:"sent_at"`
	Payload []byte    `json:"payload"`
}

// NewRedisStore creates a store backed by the Redis server at addr.
// The connection is verified with a short ping; a ping failure is
// returned so the caller can decide whether to run without a mirror.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}

	return &RedisStore{client: client, owned: true}, nil
}

// NewRedisStoreFromClient wraps an existing client. The caller keeps
// ownership of the client; Close does not close it.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func hashKey(box string) string { return "mailbox:" + box }

func (r *RedisStore) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Save implements Store.
func (r *RedisStore) Save(ctx context.Context, box string, rec Record) error {
	if box == "" {
		return ErrEmptyBox
	}
	if r.isClosed() {
		return ErrClosed
	}

	data, err := json.Marshal(redisRecord{SentAt: rec.SentAt, Payload: rec.Payload})
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	if err := r.client.HSet(ctx, hashKey(box), rec.Key, data).Err(); err != nil {
		return fmt.Errorf("save entry: %w", err)
	}
	return nil
}

// Delete implements Store.
func (r *RedisStore) Delete(ctx context.Context, box, key string) error {
	if r.isClosed() {
		return ErrClosed
	}

	if err := r.client.HDel(ctx, hashKey(box), key).Err(); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// Clear implements Store.
func (r *RedisStore) Clear(ctx context.Context, box string) error {
	if r.isClosed() {
		return ErrClosed
	}

	if err := r.client.Del(ctx, hashKey(box)).Err(); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	return nil
}

// LoadAll implements Store.
func (r *RedisStore) LoadAll(ctx context.Context, box string) ([]Record, error) {
	if r.isClosed() {
		return nil, ErrClosed
	}

	fields, err := r.client.HGetAll(ctx, hashKey(box)).Result()
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}

	records := make([]Record, 0, len(fields))
	for key, raw := range fields {
		var wire redisRecord
		if err := json.Unmarshal([]byte(raw), &wire); err != nil {
			return nil, fmt.Errorf("decode entry %q: %w", key, err)
		}
		records = append(records, Record{
			Key:     key,
			Payload: wire.Payload,
			SentAt:  wire.SentAt,
		})
	}
	return records, nil
}

// Close implements Store. The underlying client is closed only if this
// store created it.
func (r *RedisStore) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	if r.owned {
		return r.client.Close()
	}
	return nil
}
