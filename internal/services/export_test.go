package services

import (
	"context"
	"fmt"
)

func PurgeRedis(ctx context.Context, s *RedisService) error { return s.purge(ctx) }

// SetRedisRow overwrites the stored document for a sequence row.
func SetRedisRow(ctx context.Context, s *RedisService, seq int64, value string) error {
	return s.client.Set(ctx, fmt.Sprintf(KeyGamePlay, s.prefix, fmt.Sprintf("%020d", seq)), value, 0).Err()
}

// DeleteRedisRow removes the document for a sequence row, leaving its index entry.
func DeleteRedisRow(ctx context.Context, s *RedisService, seq int64) error {
	return s.client.Del(ctx, fmt.Sprintf(KeyGamePlay, s.prefix, fmt.Sprintf("%020d", seq))).Err()
}

func DropMongo(ctx context.Context, s *MongoHistoryStore) error { return s.drop(ctx) }
