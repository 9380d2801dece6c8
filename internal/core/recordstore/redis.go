package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

const redisKeyPrefix = "dockload"

// RedisStore implements Store on Redis. Each record is a JSON string under
// dockload:<collection>:<id>; a sorted set dockload:<collection>:ids keeps
// insertion order, scored by a per-collection sequence.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis record store.
// The redisURL should be in the format: redis://[:password@]host[:port][/database]
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	return &RedisStore{client: redis.NewClient(opts)}, nil
}

func recordKey(collection, id string) string {
	return fmt.Sprintf("%s:%s:%s", redisKeyPrefix, collection, id)
}

func indexKey(collection string) string {
	return fmt.Sprintf("%s:%s:ids", redisKeyPrefix, collection)
}

func seqKey(collection string) string {
	return fmt.Sprintf("%s:%s:seq", redisKeyPrefix, collection)
}

// Insert stores the record and appends its id to the collection index.
func (r *RedisStore) Insert(ctx context.Context, collection string, record Record) (string, error) {
	clone, err := record.Clone()
	if err != nil {
		return "", Rejection("insert", collection, "INVALID_RECORD", err.Error())
	}
	id := clone.String(IDField)
	if id == "" {
		id = uuid.NewString()
		clone[IDField] = id
	}

	data, err := json.Marshal(clone)
	if err != nil {
		return "", Rejection("insert", collection, "INVALID_RECORD", err.Error())
	}

	created, err := r.client.SetNX(ctx, recordKey(collection, id), data, 0).Result()
	if err != nil {
		return "", r.classify("insert", collection, err)
	}
	if !created {
		return "", Rejection("insert", collection, CodeDuplicateID, "record "+id+" already exists")
	}

	seq, err := r.client.Incr(ctx, seqKey(collection)).Result()
	if err != nil {
		return "", r.classify("insert", collection, err)
	}
	if err := r.client.ZAdd(ctx, indexKey(collection), redis.Z{Score: float64(seq), Member: id}).Err(); err != nil {
		return "", r.classify("insert", collection, err)
	}
	return id, nil
}

// Update rewrites every matching record with the patch applied.
func (r *RedisStore) Update(ctx context.Context, collection string, filter Filter, patch Record) (int, error) {
	records, err := r.load(ctx, "update", collection)
	if err != nil {
		return 0, err
	}
	clonedPatch, err := patch.Clone()
	if err != nil {
		return 0, Rejection("update", collection, "INVALID_RECORD", err.Error())
	}

	pipe := r.client.TxPipeline()
	count := 0
	for _, rec := range records {
		if !Matches(rec, filter) {
			continue
		}
		Apply(rec, clonedPatch)
		data, err := json.Marshal(rec)
		if err != nil {
			return 0, Rejection("update", collection, "INVALID_RECORD", err.Error())
		}
		pipe.Set(ctx, recordKey(collection, rec.String(IDField)), data, 0)
		count++
	}
	if count == 0 {
		return 0, nil
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, r.classify("update", collection, err)
	}
	return count, nil
}

// Select loads the collection and filters it client side.
func (r *RedisStore) Select(ctx context.Context, collection string, filter Filter, order Order) ([]Record, error) {
	records, err := r.load(ctx, "select", collection)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if Matches(rec, filter) {
			out = append(out, rec)
		}
	}
	SortRecords(out, order)
	return out, nil
}

// Delete removes the matching records and their index entries.
func (r *RedisStore) Delete(ctx context.Context, collection string, filter Filter) (int, error) {
	records, err := r.load(ctx, "delete", collection)
	if err != nil {
		return 0, err
	}

	pipe := r.client.TxPipeline()
	count := 0
	for _, rec := range records {
		if !Matches(rec, filter) {
			continue
		}
		id := rec.String(IDField)
		pipe.Del(ctx, recordKey(collection, id))
		pipe.ZRem(ctx, indexKey(collection), id)
		count++
	}
	if count == 0 {
		return 0, nil
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, r.classify("delete", collection, err)
	}
	return count, nil
}

// load reads every record of a collection in insertion order.
func (r *RedisStore) load(ctx context.Context, op, collection string) ([]Record, error) {
	ids, err := r.client.ZRange(ctx, indexKey(collection), 0, -1).Result()
	if err != nil {
		return nil, r.classify(op, collection, err)
	}
	if len(ids) == 0 {
		return []Record{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recordKey(collection, id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, r.classify(op, collection, err)
	}

	records := make([]Record, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a record; skipped until the next delete cleans it.
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, Rejection(op, collection, "CORRUPT_RECORD", err.Error())
		}
		records = append(records, rec)
	}
	return records, nil
}

// classify maps go-redis errors onto the remote error taxonomy. Server replies
// (redis.Error) are rejections coded by their prefix, e.g. WRONGTYPE.
func (r *RedisStore) classify(op, collection string, err error) error {
	var redisErr redis.Error
	if errors.As(err, &redisErr) && !errors.Is(err, redis.Nil) {
		msg := redisErr.Error()
		code := msg
		if i := strings.IndexByte(msg, ' '); i > 0 {
			code = msg[:i]
		}
		return Rejection(op, collection, code, msg)
	}
	return Classify(op, collection, err)
}

// Ping checks if Redis is reachable.
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return r.classify("ping", "", fmt.Errorf("redis ping failed: %w", err))
	}
	return nil
}

// Close closes the Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
