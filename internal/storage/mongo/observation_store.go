package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"crypto-price-lab/internal/domain"
	"crypto-price-lab/internal/storage"
)

// ObservationStore implements storage.ObservationStore on the price
// collection.
type ObservationStore struct {
	conn *Conn
}

// NewObservationStore creates a new ObservationStore.
func NewObservationStore(conn *Conn) *ObservationStore {
	return &ObservationStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ObservationStore = (*ObservationStore)(nil)

// priceDoc mirrors the document shape the trading agent writes:
// {token_name, trader_name, price_point: {timestamp, price}}.
type priceDoc struct {
	TokenName  string `bson:"token_name"`
	TraderName string `bson:"trader_name"`
	PricePoint struct {
		Timestamp float64 `bson:"timestamp"` // Unix seconds
		Price     float64 `bson:"price"`
	} `bson:"price_point"`
}

// GetByTraderSince retrieves observations for trader with timestamp >= since,
// ordered by timestamp ASC. Returns ErrNoData when nothing matches.
func (s *ObservationStore) GetByTraderSince(ctx context.Context, trader string, since time.Time) ([]*domain.PriceObservation, error) {
	filter := bson.M{
		"trader_name":           trader,
		"price_point.timestamp": bson.M{"$gte": float64(since.Unix())},
	}
	opts := options.Find().SetSort(bson.D{{Key: "price_point.timestamp", Value: 1}})

	cursor, err := s.conn.db.Collection(priceCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query price collection: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []priceDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode price documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, storage.ErrNoData
	}

	obs := make([]*domain.PriceObservation, len(docs))
	for i, d := range docs {
		sec := int64(d.PricePoint.Timestamp)
		nsec := int64((d.PricePoint.Timestamp - float64(sec)) * float64(time.Second))
		obs[i] = &domain.PriceObservation{
			Token:     d.TokenName,
			Trader:    d.TraderName,
			Timestamp: time.Unix(sec, nsec).UTC(),
			Price:     d.PricePoint.Price,
		}
	}
	return obs, nil
}

// InsertBulk adds multiple observations. Only backfill tooling writes here.
func (s *ObservationStore) InsertBulk(ctx context.Context, obs []*domain.PriceObservation) error {
	if len(obs) == 0 {
		return nil
	}

	docs := make([]interface{}, len(obs))
	for i, o := range obs {
		if o == nil || o.Token == "" || o.Trader == "" {
			return storage.ErrInvalidInput
		}
		var d priceDoc
		d.TokenName = o.Token
		d.TraderName = o.Trader
		d.PricePoint.Timestamp = float64(o.Timestamp.UnixNano()) / float64(time.Second)
		d.PricePoint.Price = o.Price
		docs[i] = d
	}

	if _, err := s.conn.db.Collection(priceCollection).InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert price documents: %w", err)
	}
	return nil
}
