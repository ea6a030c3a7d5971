package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vladimiradmaev/macro-tracker/internal/config"
	"github.com/vladimiradmaev/macro-tracker/internal/domain"
)

// RedisStore keeps sessions in Redis. Each item lives in its own hash field
// so concurrent lookups never overwrite each other.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

type sessionMeta struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Count     int           `json:"count"`
	Image     *domain.Image `json:"image,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// updateItem writes the field only while the session metadata still exists
var updateItem = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
redis.call("HSET", KEYS[2], ARGV[1], ARGV[2])
return 1
`)

// NewRedisStore creates a new Redis-based session store
func NewRedisStore(cfg config.RedisConfig, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func metaKey(sessionID string) string  { return fmt.Sprintf("identify:session:%s", sessionID) }
func itemsKey(sessionID string) string { return fmt.Sprintf("identify:session:%s:items", sessionID) }
func currentKey(userID string) string  { return fmt.Sprintf("user:%s:identify", userID) }

func (r *RedisStore) Create(ctx context.Context, s *Session) error {
	meta, err := json.Marshal(sessionMeta{
		ID:        s.ID,
		UserID:    s.UserID,
		Count:     len(s.Items),
		Image:     s.Image,
		CreatedAt: s.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	fields := make(map[string]interface{}, len(s.Items))
	for _, it := range s.Items {
		data, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("marshal item: %w", err)
		}
		fields[strconv.Itoa(it.Index)] = data
	}

	previous, err := r.client.Get(ctx, currentKey(s.UserID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("read current session: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if previous != "" {
			pipe.Del(ctx, metaKey(previous), itemsKey(previous))
		}
		pipe.Set(ctx, metaKey(s.ID), meta, r.ttl)
		if len(fields) > 0 {
			pipe.HSet(ctx, itemsKey(s.ID), fields)
			pipe.Expire(ctx, itemsKey(s.ID), r.ttl)
		}
		pipe.Set(ctx, currentKey(s.UserID), s.ID, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (r *RedisStore) Current(ctx context.Context, userID string) (*Session, error) {
	id, err := r.client.Get(ctx, currentKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("read current session: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *RedisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	raw, err := r.client.Get(ctx, metaKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var meta sessionMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	fields, err := r.client.HGetAll(ctx, itemsKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read session items: %w", err)
	}

	s := &Session{
		ID:        meta.ID,
		UserID:    meta.UserID,
		Image:     meta.Image,
		CreatedAt: meta.CreatedAt,
		Items:     make([]ItemState, meta.Count),
	}
	for field, value := range fields {
		idx, err := strconv.Atoi(field)
		if err != nil || idx < 0 || idx >= meta.Count {
			continue
		}
		if err := json.Unmarshal([]byte(value), &s.Items[idx]); err != nil {
			return nil, fmt.Errorf("decode item %d: %w", idx, err)
		}
	}
	return s, nil
}

func (r *RedisStore) UpdateItem(ctx context.Context, sessionID string, item ItemState) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	written, err := updateItem.Run(ctx, r.client,
		[]string{metaKey(sessionID), itemsKey(sessionID)},
		strconv.Itoa(item.Index), data,
	).Int()
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if written == 0 {
		return ErrNoSession
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, userID string) error {
	id, err := r.client.Get(ctx, currentKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read current session: %w", err)
	}
	if err := r.client.Del(ctx, currentKey(userID), metaKey(id), itemsKey(id)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}
