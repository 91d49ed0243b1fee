package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/passlineclub/passline/internal/order"
)

type OrderRepo struct {
	collection *mongo.Collection
}

func NewOrderRepo(db *mongo.Database) *OrderRepo {
	return &OrderRepo{
		collection: db.Collection("orders"),
	}
}

func (r *OrderRepo) EnsureIndexes(ctx context.Context) error {
	idx := mongo.IndexModel{
		Keys: bson.D{{Key: "business_unit_id", Value: 1}, {Key: "order_number", Value: 1}},
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, idx); err != nil {
		return fmt.Errorf("cannot create order index: %w", err)
	}
	return nil
}

func (r *OrderRepo) Create(ctx context.Context, ord *order.Order) error {
	if ord == nil {
		return fmt.Errorf("order is nil")
	}

	if _, err := r.collection.InsertOne(ctx, ord); err != nil {
		return fmt.Errorf("cannot create order: %w", err)
	}
	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var ord order.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ord)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get order: %w", err)
	}
	return &ord, nil
}

func (r *OrderRepo) GetByNumber(ctx context.Context, businessUnitID uuid.UUID, number string) (*order.Order, error) {
	var ord order.Order
	err := r.collection.FindOne(ctx, bson.M{
		"business_unit_id": businessUnitID,
		"order_number":     number,
	}).Decode(&ord)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get order by number: %w", err)
	}
	return &ord, nil
}

func (r *OrderRepo) ListByBusinessUnit(ctx context.Context, businessUnitID uuid.UUID) ([]*order.Order, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"business_unit_id": businessUnitID})
	if err != nil {
		return nil, fmt.Errorf("cannot list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*order.Order
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode orders: %w", err)
	}
	return result, nil
}

func (r *OrderRepo) Save(ctx context.Context, ord *order.Order) error {
	if ord == nil {
		return fmt.Errorf("order is nil")
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": ord.ID}, bson.M{"$set": ord})
	if err != nil {
		return fmt.Errorf("cannot save order: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("order not found")
	}
	return nil
}
