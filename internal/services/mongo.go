package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Divido5555/Pulse-Plinko-Jackpot/internal/models"
)

const PlaysCollection = "game_plays"

type MongoHistoryStore struct {
	client *mongo.Client
	plays  *mongo.Collection
}

func NewMongoHistoryStore(ctx context.Context, uri, dbName string) (*MongoHistoryStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	return &MongoHistoryStore{
		client: client,
		plays:  client.Database(dbName).Collection(PlaysCollection),
	}, nil
}

func (s *MongoHistoryStore) RecordPlay(ctx context.Context, play *models.GamePlay) error {
	if _, err := s.plays.InsertOne(ctx, play); err != nil {
		return fmt.Errorf("failed to insert game play: %w", err)
	}
	return nil
}

// storedPlay accepts both BSON dates and the ISO-8601 strings written by
// earlier deployments.
type storedPlay struct {
	ID            string      `bson:"id"`
	PlayerAddress string      `bson:"player_address"`
	Slot          int         `bson:"slot"`
	Payout        float64     `bson:"payout"`
	IsJackpot     bool        `bson:"is_jackpot"`
	Timestamp     interface{} `bson:"timestamp"`
}

func (p storedPlay) toModel() (*models.GamePlay, error) {
	play := &models.GamePlay{
		ID:            p.ID,
		PlayerAddress: p.PlayerAddress,
		Slot:          p.Slot,
		Payout:        p.Payout,
		IsJackpot:     p.IsJackpot,
	}

	switch ts := p.Timestamp.(type) {
	case primitive.DateTime:
		play.Timestamp = ts.Time().UTC()
	case time.Time:
		play.Timestamp = ts.UTC()
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("play %s: bad timestamp %q: %w", p.ID, ts, err)
		}
		play.Timestamp = parsed.UTC()
	case nil:
	default:
		return nil, fmt.Errorf("play %s: unsupported timestamp type %T", p.ID, ts)
	}
	return play, nil
}

func (s *MongoHistoryStore) ListRecent(ctx context.Context, limit int64) ([]*models.GamePlay, error) {
	if limit <= 0 {
		return []*models.GamePlay{}, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit).
		SetProjection(bson.D{{Key: "_id", Value: 0}})

	cursor, err := s.plays.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query game plays: %w", err)
	}

	var docs []storedPlay
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode game plays: %w", err)
	}

	plays := make([]*models.GamePlay, 0, len(docs))
	for _, doc := range docs {
		play, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		plays = append(plays, play)
	}
	return plays, nil
}

func (s *MongoHistoryStore) AggregateStats(ctx context.Context) (*models.PlayTotals, error) {
	total, err := s.plays.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to count game plays: %w", err)
	}

	jackpots, err := s.plays.CountDocuments(ctx, bson.D{{Key: "is_jackpot", Value: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to count jackpot plays: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$payout"}}},
		}}},
	}
	cursor, err := s.plays.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to sum payouts: %w", err)
	}

	var sums []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &sums); err != nil {
		return nil, fmt.Errorf("failed to decode payout sum: %w", err)
	}

	totals := &models.PlayTotals{
		TotalPlays:  total,
		JackpotWins: jackpots,
	}
	if len(sums) > 0 {
		totals.TotalPayouts = sums[0].Total
	}
	return totals, nil
}

func (s *MongoHistoryStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoHistoryStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// drop empties the plays collection. Only tests call it.
func (s *MongoHistoryStore) drop(ctx context.Context) error {
	return s.plays.Drop(ctx)
}
