package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/passlineclub/passline/internal/order"
)

type OrderItemRepo struct {
	collection *mongo.Collection
}

func NewOrderItemRepo(db *mongo.Database) *OrderItemRepo {
	return &OrderItemRepo{
		collection: db.Collection("order_items"),
	}
}

func (r *OrderItemRepo) EnsureIndexes(ctx context.Context) error {
	idx := mongo.IndexModel{
		Keys: bson.D{{Key: "order_id", Value: 1}},
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, idx); err != nil {
		return fmt.Errorf("cannot create order item index: %w", err)
	}
	return nil
}

func (r *OrderItemRepo) Create(ctx context.Context, item *order.OrderItem) error {
	if item == nil {
		return fmt.Errorf("order item is nil")
	}

	if _, err := r.collection.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("cannot create order item: %w", err)
	}
	return nil
}

func (r *OrderItemRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*order.OrderItem, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"order_id": orderID})
	if err != nil {
		return nil, fmt.Errorf("cannot list order items: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*order.OrderItem
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode order items: %w", err)
	}
	return result, nil
}

// BulkSetStatusByType advances an order's items of one type in a single
// guarded write. The from filter keeps items that are already at or past
// the target status untouched.
func (r *OrderItemRepo) BulkSetStatusByType(ctx context.Context, orderID uuid.UUID, itemType string, from []string, to string) error {
	if len(from) == 0 {
		return nil
	}

	_, err := r.collection.UpdateMany(ctx,
		bson.M{
			"order_id":  orderID,
			"item_type": itemType,
			"status":    bson.M{"$in": from},
		},
		bson.M{"$set": bson.M{
			"status":     to,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("cannot bulk update order items: %w", err)
	}
	return nil
}
