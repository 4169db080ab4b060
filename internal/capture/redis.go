package capture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/careprep/careprep-backend/internal/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// stateTTL bounds how long abandoned working state lingers in Redis. Longer
// than any plausible session; submission clears keys explicitly.
const stateTTL = 48 * time.Hour

// RedisStore is the production Store backed by Redis hashes and keys.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a RedisStore.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) SaveStart(ctx context.Context, sessionID uuid.UUID, start time.Time) error {
	key := config.CacheKey.SessionStartKey(sessionID.String())
	if err := s.rdb.Set(ctx, key, start.Unix(), stateTTL).Err(); err != nil {
		return fmt.Errorf("save start: %w", err)
	}
	return nil
}

func (s *RedisStore) Start(ctx context.Context, sessionID uuid.UUID) (time.Time, error) {
	key := config.CacheKey.SessionStartKey(sessionID.String())
	val, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get start: %w", err)
	}
	unix, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start format in cache: %w", err)
	}
	return time.Unix(unix, 0), nil
}

func (s *RedisStore) SaveOrder(ctx context.Context, sessionID uuid.UUID, questionIDs []uuid.UUID) error {
	raw, err := json.Marshal(questionIDs)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	key := config.CacheKey.SessionOrderKey(sessionID.String())
	if err := s.rdb.Set(ctx, key, raw, stateTTL).Err(); err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	return nil
}

func (s *RedisStore) Order(ctx context.Context, sessionID uuid.UUID) ([]uuid.UUID, error) {
	key := config.CacheKey.SessionOrderKey(sessionID.String())
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	var ids []uuid.UUID
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return ids, nil
}

func (s *RedisStore) SetAnswer(ctx context.Context, sessionID, questionID uuid.UUID, label string) error {
	key := config.CacheKey.SessionAnswersKey(sessionID.String())
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, questionID.String(), label)
	pipe.Expire(ctx, key, stateTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set answer: %w", err)
	}
	return nil
}

func (s *RedisStore) ToggleFlag(ctx context.Context, sessionID, questionID uuid.UUID) (bool, error) {
	key := config.CacheKey.SessionFlagsKey(sessionID.String())
	field := questionID.String()

	exists, err := s.rdb.HExists(ctx, key, field).Result()
	if err != nil {
		return false, fmt.Errorf("check flag: %w", err)
	}

	if exists {
		if err := s.rdb.HDel(ctx, key, field).Err(); err != nil {
			return false, fmt.Errorf("clear flag: %w", err)
		}
		return false, nil
	}

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, field, "1")
	pipe.Expire(ctx, key, stateTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("set flag: %w", err)
	}
	return true, nil
}

func (s *RedisStore) Snapshot(ctx context.Context, sessionID uuid.UUID) (map[string]string, error) {
	key := config.CacheKey.SessionAnswersKey(sessionID.String())
	snap, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return snap, nil
}

func (s *RedisStore) Flags(ctx context.Context, sessionID uuid.UUID) (map[string]bool, error) {
	key := config.CacheKey.SessionFlagsKey(sessionID.String())
	raw, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	flags := make(map[string]bool, len(raw))
	for field := range raw {
		flags[field] = true
	}
	return flags, nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID uuid.UUID) error {
	id := sessionID.String()
	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, config.CacheKey.SessionStartKey(id))
	pipe.Del(ctx, config.CacheKey.SessionOrderKey(id))
	pipe.Del(ctx, config.CacheKey.SessionAnswersKey(id))
	pipe.Del(ctx, config.CacheKey.SessionFlagsKey(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("clear session state: %w", err)
	}
	return nil
}
