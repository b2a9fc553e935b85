package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/atongani/market-client/internal/core/domain"
	"github.com/atongani/market-client/internal/core/ports"
)

const collectionTransitions = "order_status_events"

// TransitionRepository implements ports.TransitionRepository using MongoDB.
type TransitionRepository struct {
	col *mongo.Collection
}

// NewTransitionRepository creates a new TransitionRepository.
func NewTransitionRepository(db *mongo.Database) *TransitionRepository {
	return &TransitionRepository{col: db.Collection(collectionTransitions)}
}

var _ ports.TransitionRepository = (*TransitionRepository)(nil)

type transitionDoc struct {
	OrderID         int64     `bson:"order_id"`
	From            string    `bson:"from"`
	To              string    `bson:"to"`
	RejectionReason string    `bson:"rejection_reason,omitempty"`
	ObservedAt      time.Time `bson:"observed_at"`
	RecordedAt      time.Time `bson:"recorded_at"`
}

// InsertTransition appends an observed status change to the audit collection.
func (r *TransitionRepository) InsertTransition(ctx context.Context, t domain.OrderTransition) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := transitionDoc{
		OrderID:         t.OrderID,
		From:            string(t.From),
		To:              string(t.To),
		RejectionReason: t.RejectionReason,
		ObservedAt:      t.ObservedAt.UTC(),
		RecordedAt:      time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert transition: %w", err)
	}
	return nil
}

// History returns the recorded transitions of one order, oldest first.
func (r *TransitionRepository) History(ctx context.Context, orderID int64) ([]domain.OrderTransition, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"order_id": orderID},
		options.Find().SetSort(bson.D{{Key: "observed_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find transitions: %w", err)
	}
	defer cur.Close(ctx)

	var docs []transitionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode transitions: %w", err)
	}

	out := make([]domain.OrderTransition, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.OrderTransition{
			OrderID:         d.OrderID,
			From:            domain.OrderStatus(d.From),
			To:              domain.OrderStatus(d.To),
			RejectionReason: d.RejectionReason,
			ObservedAt:      d.ObservedAt,
		})
	}
	return out, nil
}

// EnsureIndexes creates the indexes used by History.
func (r *TransitionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "order_id", Value: 1}, {Key: "observed_at", Value: 1}},
	})
	return err
}
