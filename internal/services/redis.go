package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/models"
)

// RedisService keeps play history in Redis. Each record gets its own row
// key from a sequence, so resubmitting a play appends a second row the same
// way the document store does. The index is a sorted set scored by the
// play's unix millis; rows are zero padded so equal scores still come back
// in insertion order.
type RedisService struct {
	client *redis.Client
	prefix string
}

func NewRedisService(ctx context.Context, url, prefix string) (*RedisService, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisServiceFromClient(client, prefix), nil
}

func NewRedisServiceFromClient(client *redis.Client, prefix string) *RedisService {
	return &RedisService{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisService) RecordPlay(ctx context.Context, play *models.GamePlay) error {
	data, err := json.Marshal(play)
	if err != nil {
		return fmt.Errorf("failed to marshal game play: %w", err)
	}

	seq, err := s.client.Incr(ctx, fmt.Sprintf(KeyPlaySeq, s.prefix)).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate play row: %w", err)
	}
	row := fmt.Sprintf("%020d", seq)

	statsKey := fmt.Sprintf(KeyPlayStats, s.prefix)
	tx := s.client.TxPipeline()
	tx.Set(ctx, fmt.Sprintf(KeyGamePlay, s.prefix, row), data, 0)
	tx.ZAdd(ctx, fmt.Sprintf(KeyPlayIndex, s.prefix), redis.Z{
		Score:  float64(play.Timestamp.UnixMilli()),
		Member: row,
	})
	tx.HIncrBy(ctx, statsKey, statsFieldPlays, 1)
	tx.HIncrByFloat(ctx, statsKey, statsFieldPayouts, play.Payout)
	if play.IsJackpot {
		tx.HIncrBy(ctx, statsKey, statsFieldJackpots, 1)
	}

	if _, err := tx.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save game play: %w", err)
	}
	return nil
}

func (s *RedisService) ListRecent(ctx context.Context, limit int64) ([]*models.GamePlay, error) {
	if limit <= 0 {
		return []*models.GamePlay{}, nil
	}

	rows, err := s.client.ZRevRange(ctx, fmt.Sprintf(KeyPlayIndex, s.prefix), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get play index: %w", err)
	}
	if len(rows) == 0 {
		return []*models.GamePlay{}, nil
	}

	keys := make([]string, len(rows))
	for i, row := range rows {
		keys[i] = fmt.Sprintf(KeyGamePlay, s.prefix, row)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get game plays: %w", err)
	}

	plays := make([]*models.GamePlay, 0, len(values))
	for i, v := range values {
		data, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("play row %s is indexed but missing", rows[i])
		}

		var play models.GamePlay
		if err := json.Unmarshal([]byte(data), &play); err != nil {
			return nil, fmt.Errorf("corrupt play row %s: %w", rows[i], err)
		}
		plays = append(plays, &play)
	}

	return plays, nil
}

func (s *RedisService) AggregateStats(ctx context.Context) (*models.PlayTotals, error) {
	fields, err := s.client.HGetAll(ctx, fmt.Sprintf(KeyPlayStats, s.prefix)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get play stats: %w", err)
	}

	totals := &models.PlayTotals{}
	if v, ok := fields[statsFieldPlays]; ok {
		if totals.TotalPlays, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("corrupt %s counter: %w", statsFieldPlays, err)
		}
	}
	if v, ok := fields[statsFieldPayouts]; ok {
		if totals.TotalPayouts, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("corrupt %s counter: %w", statsFieldPayouts, err)
		}
	}
	if v, ok := fields[statsFieldJackpots]; ok {
		if totals.JackpotWins, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("corrupt %s counter: %w", statsFieldJackpots, err)
		}
	}

	return totals, nil
}

func (s *RedisService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisService) Close(ctx context.Context) error {
	return s.client.Close()
}

// purge removes every key under the prefix. Only tests call it.
func (s *RedisService) purge(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
