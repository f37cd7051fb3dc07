package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/novaframes/content-admin/internal/records/domain"
)

const (
	recordKeyPrefix     = "content:rec:" // Record body: content:rec:{collection}:{id}
	collectionKeyPrefix = "content:col:" // Sorted set of ids by creation time: content:col:{collection}

	maxWatchAttempts = 5
)

// RedisStore keeps each record as a JSON string and indexes collection
// membership in a sorted set so List preserves creation order.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (r *RedisStore) List(ctx context.Context, c domain.Collection) ([]domain.Record, error) {
	ids, err := r.client.ZRange(ctx, r.collectionKey(c), 0, -1).Result()
	if err != nil {
		return nil, unavailable("failed to list collection", err)
	}
	if len(ids) == 0 {
		return []domain.Record{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.recordKey(c, id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, unavailable("failed to load records", err)
	}

	out := make([]domain.Record, 0, len(ids))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// index entry outlived its record
			continue
		}
		rec, err := decodeBody(ids[i], []byte(s))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *RedisStore) Get(ctx context.Context, c domain.Collection, id string) (domain.Record, error) {
	data, err := r.client.Get(ctx, r.recordKey(c, id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("failed to get record", err)
	}
	return decodeBody(id, []byte(data))
}

func (r *RedisStore) Create(ctx context.Context, c domain.Collection, body domain.Record) (string, error) {
	_, data, err := encodeBody(body)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	if err := r.insert(ctx, c, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (r *RedisStore) Update(ctx context.Context, c domain.Collection, id string, body domain.Record) error {
	clean, _, err := encodeBody(body)
	if err != nil {
		return err
	}

	key := r.recordKey(c, id)
	return r.watch(ctx, key, func(tx *redis.Tx) error {
		existing, err := r.getTx(ctx, tx, key, id)
		if err != nil {
			return err
		}
		data, err := json.Marshal(mergeInto(existing.Body(), clean))
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrWriteRejected, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	})
}

func (r *RedisStore) Set(ctx context.Context, c domain.Collection, id string, body domain.Record, merge bool) error {
	clean, data, err := encodeBody(body)
	if err != nil {
		return err
	}

	key := r.recordKey(c, id)
	return r.watch(ctx, key, func(tx *redis.Tx) error {
		existing, err := r.getTx(ctx, tx, key, id)
		created := errors.Is(err, domain.ErrNotFound)
		if err != nil && !created {
			return err
		}

		next := data
		if merge && !created {
			next, err = json.Marshal(mergeInto(existing.Body(), clean))
			if err != nil {
				return fmt.Errorf("%w: %w", domain.ErrWriteRejected, err)
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			if created {
				pipe.ZAdd(ctx, r.collectionKey(c), redis.Z{Score: float64(r.now().UnixNano()), Member: id})
			}
			return nil
		})
		return err
	})
}

func (r *RedisStore) Remove(ctx context.Context, c domain.Collection, id string) error {
	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, r.recordKey(c, id))
	pipe.ZRem(ctx, r.collectionKey(c), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return unavailable("failed to delete record", err)
	}
	if del.Val() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return unavailable("redis ping failed", err)
	}
	return nil
}

func (r *RedisStore) insert(ctx context.Context, c domain.Collection, id string, data []byte) error {
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.recordKey(c, id), data, 0)
	pipe.ZAdd(ctx, r.collectionKey(c), redis.Z{Score: float64(r.now().UnixNano()), Member: id})
	if _, err := pipe.Exec(ctx); err != nil {
		return unavailable("failed to write record", err)
	}
	return nil
}

// watch runs fn as an optimistic transaction on key. A conflicting write
// from another client aborts the EXEC and fn runs again against the new
// state, so a record removed mid-update is reported as missing instead of
// being written back.
func (r *RedisStore) watch(ctx context.Context, key string, fn func(tx *redis.Tx) error) error {
	for attempt := 0; attempt < maxWatchAttempts; attempt++ {
		err := r.client.Watch(ctx, fn, key)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrWriteRejected), errors.Is(err, domain.ErrRemoteUnavailable):
			return err
		default:
			return unavailable("failed to write record", err)
		}
	}
	return fmt.Errorf("%w: record %s kept changing during write", domain.ErrWriteRejected, key)
}

func (r *RedisStore) getTx(ctx context.Context, tx *redis.Tx, key, id string) (domain.Record, error) {
	data, err := tx.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("failed to get record", err)
	}
	return decodeBody(id, []byte(data))
}

func (r *RedisStore) recordKey(c domain.Collection, id string) string {
	return fmt.Sprintf("%s%s:%s", recordKeyPrefix, c, id)
}

func (r *RedisStore) collectionKey(c domain.Collection) string {
	return fmt.Sprintf("%s%s", collectionKeyPrefix, c)
}

func unavailable(msg string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%s: %w: %w", msg, domain.ErrRemoteUnavailable, err)
}
