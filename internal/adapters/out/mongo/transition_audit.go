// Package mongo keeps an append-only audit trail of order transitions.
package mongo

import (
	"context"
	"time"

	"ecolocker/internal/core/domain/model/order"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const TransitionsCollection = "order_transitions"

type TransitionRecord struct {
	ID         string    `bson:"_id"`
	OrderID    string    `bson:"order_id"`
	LockerID   string    `bson:"locker_id"`
	BuyerID    string    `bson:"buyer_id"`
	SellerID   string    `bson:"seller_id"`
	From       string    `bson:"from"`
	To         string    `bson:"to"`
	Reason     string    `bson:"reason,omitempty"`
	OccurredAt time.Time `bson:"occurred_at"`
}

type TransitionAudit struct {
	coll *mongo.Collection
}

func NewTransitionAudit(db *mongo.Database) *TransitionAudit {
	return &TransitionAudit{coll: db.Collection(TransitionsCollection)}
}

// EnsureIndexes creates the per-order history index.
func (a *TransitionAudit) EnsureIndexes(ctx context.Context) error {
	_, err := a.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "order_id", Value: 1}, {Key: "occurred_at", Value: 1}},
	})
	return err
}

// Publish appends one record per event.
func (a *TransitionAudit) Publish(ctx context.Context, events []order.StatusChanged) error {
	if len(events) == 0 {
		return nil
	}
	docs := make([]any, 0, len(events))
	for _, r := range records(events) {
		docs = append(docs, r)
	}
	_, err := a.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return err
}

// History returns an order's transitions, oldest first.
func (a *TransitionAudit) History(ctx context.Context, orderID string) ([]TransitionRecord, error) {
	cur, err := a.coll.Find(ctx, bson.M{"order_id": orderID},
		options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []TransitionRecord
	if err = cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func records(events []order.StatusChanged) []TransitionRecord {
	out := make([]TransitionRecord, 0, len(events))
	for _, e := range events {
		out = append(out, TransitionRecord{
			ID:         uuid.NewString(),
			OrderID:    e.OrderID.String(),
			LockerID:   e.LockerID.String(),
			BuyerID:    e.BuyerID.String(),
			SellerID:   e.SellerID.String(),
			From:       e.From.String(),
			To:         e.To.String(),
			Reason:     e.Reason,
			OccurredAt: e.OccurredAt.UTC(),
		})
	}
	return out
}
