package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"weekend-planner/internal/common/database"
	"weekend-planner/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores each record as JSON under <prefix>:record:<id> and
// indexes ids in the sorted set <prefix>:by_timestamp scored by unix millis.
type RedisBackend struct {
	rdb *database.RedisClient
}

func NewRedisBackend(rdb *database.RedisClient) *RedisBackend {
	return &RedisBackend{rdb: rdb}
}

func (b *RedisBackend) Name() string { return "redis" }

func (b *RedisBackend) indexKey() string { return b.rdb.Key("by_timestamp") }

func (b *RedisBackend) recordKey(id string) string { return b.rdb.Key("record", id) }

func (b *RedisBackend) Add(ctx context.Context, record *models.RecommendationRecord) (string, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}

	if err := b.rdb.Client.Set(ctx, b.recordKey(record.ID), data, 0).Err(); err != nil {
		return "", fmt.Errorf("set record %s: %w", record.ID, err)
	}
	member := redis.Z{Score: float64(record.Timestamp.UnixMilli()), Member: record.ID}
	if err := b.rdb.Client.ZAdd(ctx, b.indexKey(), member).Err(); err != nil {
		return "", fmt.Errorf("index record %s: %w", record.ID, err)
	}
	return record.ID, nil
}

func (b *RedisBackend) Since(ctx context.Context, cutoff time.Time) ([]*models.RecommendationRecord, error) {
	ids, err := b.rdb.Client.ZRevRangeByScore(ctx, b.indexKey(), &redis.ZRangeBy{
		Min: strconv.FormatInt(cutoff.UnixMilli(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("range %s: %w", b.indexKey(), err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = b.recordKey(id)
	}
	values, err := b.rdb.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	records := make([]*models.RecommendationRecord, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// index entry without a record body
			continue
		}
		var record models.RecommendationRecord
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, fmt.Errorf("decode record %s: %w", ids[i], err)
		}
		records = append(records, &record)
	}
	return records, nil
}
