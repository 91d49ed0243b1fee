package station

import (
	"context"
	"fmt"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/seed"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/passlineclub/passline/internal/enums/station"
	"github.com/passlineclub/passline/internal/enums/ticketstatus"
	"github.com/passlineclub/passline/internal/order"
)

const demoSeedApplication = "passline_demo"

var demoBusinessUnitID = uuid.MustParse("6f1c2a4e-0000-4000-8000-000000000001")

// ApplyDemoSeeds runs the demo seeding on service startup when
// seed.demo.enabled is set.
func ApplyDemoSeeds(ctx context.Context, config *apt.Config, db *mongo.Database, logger apt.Logger) error {
	enabled, _ := config.GetString("seed.demo.enabled")
	if enabled != "true" {
		return nil
	}
	return SeedDemo(ctx, db, logger)
}

// SeedDemo creates a demo order with food and drink items plus the
// matching kitchen and bar tickets, so a fresh environment has something
// on the station boards. Applied once; the seed tracker skips reruns.
func SeedDemo(ctx context.Context, db *mongo.Database, logger apt.Logger) error {
	if db == nil {
		return fmt.Errorf("database is required for demo seeding")
	}

	logger.Info("Applying demo fulfillment seeds")
	tracker := seed.NewMongoTracker(db)
	seeds := []seed.Seed{
		{
			ID:          "demo_fulfillment_v1",
			Description: "Create a demo order with kitchen and bar tickets",
			Run: func(ctx context.Context) error {
				return seedDemoFulfillment(ctx, db)
			},
		},
	}

	if err := seed.Apply(ctx, tracker, seeds, demoSeedApplication); err != nil {
		return fmt.Errorf("demo seed failed: %w", err)
	}

	logger.Info("Demo fulfillment seeds applied successfully")
	return nil
}

func seedDemoFulfillment(ctx context.Context, db *mongo.Database) error {
	now := time.Now()
	orderID := uuid.MustParse("6f1c2a4e-0000-4000-8000-000000000010")
	orderNumber := "ORD-DEMO0001"

	demoOrder := bson.M{
		"_id":              orderID,
		"business_unit_id": demoBusinessUnitID,
		"order_number":     orderNumber,
		"table_number":     "12",
		"status":           order.StatusPending,
		"customer_count":   2,
		"waiter_name":      "Dana",
		"created_at":       now,
		"updated_at":       now,
		"created_by":       "demo-seed",
		"updated_by":       "demo-seed",
	}
	if err := upsert(ctx, db.Collection("orders"), orderID, demoOrder); err != nil {
		return fmt.Errorf("cannot seed demo order: %w", err)
	}

	items := []struct {
		id       uuid.UUID
		name     string
		itemType string
		quantity int
		prepTime int
	}{
		{uuid.MustParse("6f1c2a4e-0000-4000-8000-000000000011"), "Margherita", order.ItemTypeFood, 1, 15},
		{uuid.MustParse("6f1c2a4e-0000-4000-8000-000000000012"), "Carbonara", order.ItemTypeFood, 1, 12},
		{uuid.MustParse("6f1c2a4e-0000-4000-8000-000000000013"), "Negroni", order.ItemTypeDrink, 2, 4},
	}

	ticketItems := map[string][]bson.M{}
	for _, it := range items {
		doc := bson.M{
			"_id":          it.id,
			"order_id":     orderID,
			"menu_item_id": uuid.New(),
			"name":         it.name,
			"item_type":    it.itemType,
			"quantity":     it.quantity,
			"status":       order.StatusPending,
			"prep_time":    it.prepTime,
			"created_at":   now,
			"updated_at":   now,
			"created_by":   "demo-seed",
			"updated_by":   "demo-seed",
		}
		if err := upsert(ctx, db.Collection("order_items"), it.id, doc); err != nil {
			return fmt.Errorf("cannot seed demo item %s: %w", it.name, err)
		}

		st := station.ForItemType(it.itemType)
		ticketItems[st.Code()] = append(ticketItems[st.Code()], bson.M{
			"_id":       it.id,
			"name":      it.name,
			"quantity":  it.quantity,
			"prep_time": it.prepTime,
		})
	}

	ticketIDs := map[string]uuid.UUID{
		station.Stations.Kitchen.Code(): uuid.MustParse("6f1c2a4e-0000-4000-8000-000000000021"),
		station.Stations.Bar.Code():     uuid.MustParse("6f1c2a4e-0000-4000-8000-000000000022"),
	}

	for code, snapshot := range ticketItems {
		ticketID := ticketIDs[code]
		doc := bson.M{
			"_id":              ticketID,
			"business_unit_id": demoBusinessUnitID,
			"order_id":         orderID,
			"order_number":     orderNumber,
			"additional":       false,
			"station":          code,
			"table_number":     "12",
			"waiter_name":      "Dana",
			"items":            snapshot,
			"status":           ticketstatus.Statuses.Pending.Code(),
			"priority":         0,
			"created_at":       now,
			"updated_at":       now,
			"created_by":       "demo-seed",
			"updated_by":       "demo-seed",
		}
		if err := upsert(ctx, db.Collection("station_tickets"), ticketID, doc); err != nil {
			return fmt.Errorf("cannot seed demo %s ticket: %w", code, err)
		}
	}

	return nil
}

// ClearDemo removes the demo records and the seed marker so SeedDemo can
// run again. Everything the seed writes carries created_by "demo-seed";
// live data is never matched.
func ClearDemo(ctx context.Context, db *mongo.Database, logger apt.Logger) error {
	if db == nil {
		return fmt.Errorf("database is required for demo cleanup")
	}

	for _, name := range []string{"station_tickets", "order_items", "orders"} {
		result, err := db.Collection(name).DeleteMany(ctx, bson.M{"created_by": "demo-seed"})
		if err != nil {
			return fmt.Errorf("cannot delete demo records from %s: %w", name, err)
		}
		logger.Info("deleted demo records", "collection", name, "count", result.DeletedCount)
	}

	if _, err := db.Collection("_seeds").DeleteOne(ctx, bson.M{"_id": "demo_fulfillment_v1"}); err != nil {
		return fmt.Errorf("cannot clear seed tracker: %w", err)
	}

	return nil
}

func upsert(ctx context.Context, coll *mongo.Collection, id uuid.UUID, doc bson.M) error {
	_, err := coll.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	return err
}
