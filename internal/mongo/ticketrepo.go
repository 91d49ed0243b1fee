package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/passlineclub/passline/internal/enums/ticketstatus"
	"github.com/passlineclub/passline/internal/station"
)

type TicketRepo struct {
	collection *mongo.Collection
}

func NewTicketRepo(db *mongo.Database) *TicketRepo {
	return &TicketRepo{
		collection: db.Collection("station_tickets"),
	}
}

// EnsureIndexes creates the lookup indexes the station board queries rely
// on. Called once at startup after the connection is up.
func (r *TicketRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "business_unit_id", Value: 1}, {Key: "station", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "order_id", Value: 1}}},
	}
	for _, idx := range indexes {
		if _, err := r.collection.Indexes().CreateOne(ctx, idx); err != nil {
			return fmt.Errorf("cannot create ticket index: %w", err)
		}
	}
	return nil
}

func (r *TicketRepo) Create(ctx context.Context, t *station.Ticket) error {
	if t == nil {
		return fmt.Errorf("ticket is nil")
	}

	if _, err := r.collection.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("cannot insert ticket: %w", err)
	}
	return nil
}

func (r *TicketRepo) Update(ctx context.Context, t *station.Ticket) error {
	t.BeforeUpdate()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": t.ID}, bson.M{"$set": t})
	if err != nil {
		return fmt.Errorf("cannot update ticket: %w", err)
	}
	if result.MatchedCount == 0 {
		return station.ErrTicketNotFound
	}
	return nil
}

func (r *TicketRepo) FindByID(ctx context.Context, id uuid.UUID) (*station.Ticket, error) {
	var ticket station.Ticket
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ticket)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, station.ErrTicketNotFound
		}
		return nil, fmt.Errorf("cannot find ticket: %w", err)
	}
	return &ticket, nil
}

func (r *TicketRepo) List(ctx context.Context, filter station.TicketFilter) ([]station.Ticket, error) {
	query := bson.M{}

	if filter.BusinessUnitID != nil {
		query["business_unit_id"] = *filter.BusinessUnitID
	}
	if filter.Station != nil {
		query["station"] = *filter.Station
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": filter.Statuses}
	}
	if filter.OrderID != nil {
		query["order_id"] = *filter.OrderID
	}
	if len(filter.OrderNumbers) > 0 {
		query["order_number"] = bson.M{"$in": filter.OrderNumbers}
	}
	if filter.CreatedAfter != nil {
		query["created_at"] = bson.M{"$gte": *filter.CreatedAfter}
	}

	opts := findOptions(filter)
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot find tickets: %w", err)
	}
	defer cursor.Close(ctx)

	var tickets []station.Ticket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, fmt.Errorf("cannot decode tickets: %w", err)
	}
	return tickets, nil
}

func findOptions(filter station.TicketFilter) *options.FindOptions {
	opts := options.Find().
		SetSort(bson.D{{Key: "priority", Value: -1}, {Key: "created_at", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}
	return opts
}

// UpdateStatus applies a status change with conditional timestamps in one
// write: each stamp is set through $ifNull, so an already-recorded time
// survives replays and concurrent calls.
func (r *TicketRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, at time.Time, stamps station.TransitionStamps) error {
	set := bson.M{
		"status":     status,
		"updated_at": at,
	}
	if stamps.SetStarted {
		set["started_at"] = bson.M{"$ifNull": bson.A{"$started_at", at}}
	}
	if stamps.SetCompleted {
		set["completed_at"] = bson.M{"$ifNull": bson.A{"$completed_at", at}}
	}
	if stamps.SetPickedUp {
		set["picked_up_at"] = bson.M{"$ifNull": bson.A{"$picked_up_at", at}}
	}

	update := mongo.Pipeline{
		bson.D{{Key: "$set", Value: set}},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("cannot update ticket status: %w", err)
	}
	if result.MatchedCount == 0 {
		return station.ErrTicketNotFound
	}
	return nil
}

func (r *TicketRepo) DeleteServedBefore(ctx context.Context, stationName string, cutoff time.Time) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{
		"station":    stationName,
		"status":     ticketstatus.Statuses.Served.Code(),
		"created_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, fmt.Errorf("cannot delete served tickets: %w", err)
	}
	return result.DeletedCount, nil
}
