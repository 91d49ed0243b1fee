package station

import (
	"context"
	"testing"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/passlineclub/passline/internal/audit"
	"github.com/passlineclub/passline/internal/identity"
	"github.com/passlineclub/passline/internal/order"
)

func authedContext() context.Context {
	actor := &identity.Actor{
		ID:           uuid.New(),
		Name:         "Sam",
		Capabilities: identity.ResolveCapabilities([]string{"waiter"}),
	}
	return identity.WithActor(context.Background(), actor)
}

type testFixture struct {
	service *Service
	tickets *MockTicketRepository
	orders  *MockOrderRepo
	items   *MockOrderItemRepo
	pub     *MockPublisher
}

func newFixture() *testFixture {
	tickets := NewMockTicketRepository()
	orders := NewMockOrderRepo()
	items := NewMockOrderItemRepo()
	pub := NewMockPublisher()

	service := NewService(ServiceDeps{
		Tickets:   tickets,
		Orders:    orders,
		Items:     items,
		Audit:     audit.NewEventRecorder(pub, apt.NewNoopLogger()),
		Publisher: pub,
	}, apt.NewNoopLogger())

	return &testFixture{
		service: service,
		tickets: tickets,
		orders:  orders,
		items:   items,
		pub:     pub,
	}
}

func (f *testFixture) addOrder(t *testing.T, items ...*order.OrderItem) *order.Order {
	t.Helper()
	ord := order.NewOrder()
	ord.BusinessUnitID = uuid.New()
	ord.OrderNumber = "ORD-100"
	ord.BeforeCreate()
	if err := f.orders.Create(context.Background(), ord); err != nil {
		t.Fatalf("cannot create order: %v", err)
	}
	for _, item := range items {
		item.OrderID = ord.ID
		if err := f.items.Create(context.Background(), item); err != nil {
			t.Fatalf("cannot create item: %v", err)
		}
	}
	return ord
}

func (f *testFixture) addTicket(t *testing.T, ord *order.Order, stationName, status string) *Ticket {
	t.Helper()
	ticket := NewTicket()
	ticket.BusinessUnitID = ord.BusinessUnitID
	ticket.OrderID = ord.ID
	ticket.OrderNumber = ord.OrderNumber
	ticket.Station = stationName
	ticket.Status = status
	ticket.BeforeCreate()
	if err := f.tickets.Create(context.Background(), ticket); err != nil {
		t.Fatalf("cannot create ticket: %v", err)
	}
	return ticket
}

func newItem(itemType string) *order.OrderItem {
	item := order.NewOrderItem()
	item.Name = itemType + " item"
	item.ItemType = itemType
	item.Quantity = 1
	item.BeforeCreate()
	return item
}

func TestStartPreparing(t *testing.T) {
	f := newFixture()
	ord := f.addOrder(t, newItem(order.ItemTypeFood))
	ticket := f.addTicket(t, ord, "kitchen", "pending")

	result := f.service.StartPreparing(authedContext(), ticket.ID)
	if !result.Success {
		t.Fatalf("StartPreparing() failed: %s", result.Error)
	}

	got, _ := f.tickets.FindByID(context.Background(), ticket.ID)
	if got.Status != "preparing" {
		t.Errorf("status = %q, want %q", got.Status, "preparing")
	}
	if got.StartedAt == nil {
		t.Error("StartedAt should be set on entry to preparing")
	}
	if got.CompletedAt != nil {
		t.Error("CompletedAt should not be set yet")
	}
}

func TestTransitionUnauthorized(t *testing.T) {
	f := newFixture()
	ord := f.addOrder(t, newItem(order.ItemTypeFood))
	ticket := f.addTicket(t, ord, "kitchen", "pending")

	result := f.service.StartPreparing(context.Background(), ticket.ID)
	if result.Success {
		t.Fatal("StartPreparing() should fail without an actor")
	}
	if result.Error != "unauthorized" {
		t.Errorf("error = %q, want %q", result.Error, "unauthorized")
	}

	got, _ := f.tickets.FindByID(context.Background(), ticket.ID)
	if got.Status != "pending" {
		t.Errorf("unauthorized call mutated ticket: status = %q", got.Status)
	}
}

func TestTransitionTicketNotFound(t *testing.T) {
	f := newFixture()

	result := f.service.MarkReady(authedContext(), uuid.New())
	if result.Success {
		t.Fatal("MarkReady() should fail for a missing ticket")
	}
	if result.Error != "ticket not found" {
		t.Errorf("error = %q, want %q", result.Error, "ticket not found")
	}
}

func TestForwardOnly(t *testing.T) {
	f := newFixture()
	ord := f.addOrder(t, newItem(order.ItemTypeFood))
	ticket := f.addTicket(t, ord, "kitchen", "pending")
	ctx := authedContext()

	if res := f.service.MarkReady(ctx, ticket.ID); !res.Success {
		t.Fatalf("MarkReady() failed: %s", res.Error)
	}

	// A later StartPreparing must not revert the ticket.
	res := f.service.StartPreparing(ctx, ticket.ID)
	if !res.Success {
		t.Fatalf("StartPreparing() on a ready ticket should be a no-op success, got: %s", res.Error)
	}

	got, _ := f.tickets.FindByID(context.Background(), ticket.ID)
	if got.Status != "ready" {
		t.Errorf("status = %q, want %q (no backward transition)", got.Status, "ready")
	}
}

func TestIdempotentTimestamps(t *testing.T) {
	f := newFixture()
	ord := f.addOrder(t, newItem(order.ItemTypeFood))
	ticket := f.addTicket(t, ord, "kitchen", "preparing")
	ctx := authedContext()

	if res := f.service.MarkReady(ctx, ticket.ID); !res.Success {
		t.Fatalf("MarkReady() failed: %s", res.Error)
	}
	first, _ := f.tickets.FindByID(context.Background(), ticket.ID)
	if first.CompletedAt == nil {
		t.Fatal("CompletedAt should be set on entry to ready")
	}
	completedAt := *first.CompletedAt

	time.Sleep(5 * time.Millisecond)

	if res := f.service.MarkReady(ctx, ticket.ID); !res.Success {
		t.Fatalf("second MarkReady() failed: %s", res.Error)
	}
	second, _ := f.tickets.FindByID(context.Background(), ticket.ID)
	if !second.CompletedAt.Equal(completedAt) {
		t.Errorf("second MarkReady() changed CompletedAt from %v to %v", completedAt, second.CompletedAt)
	}
}

func TestStartPreparingAlreadyPreparing(t *testing.T) {
	f := newFixture()
	ord := f.addOrder(t, newItem(order.ItemTypeFood))
	ticket := f.addTicket(t, ord, "kitchen", "preparing")

	res := f.service.StartPreparing(authedContext(), ticket.ID)
	if !res.Success {
		t.Fatalf("StartPreparing() on a preparing ticket should succeed as a no-op, got: %s", res.Error)
	}

	got, _ := f.tickets.FindByID(context.Background(), ticket.ID)
	if got.Status != "preparing" {
		t.Errorf("status = %q, want %q", got.Status, "preparing")
	}
	if got.StartedAt != nil {
		t.Error("no-op call should not have applied timestamps")
	}
}

func TestMarkServedKitchenSetsPickedUpAt(t *testing.T) {
	f := newFixture()
	ord := f.addOrder(t, newItem(order.ItemTypeFood))
	ticket := f.addTicket(t, ord, "kitchen", "ready")

	if res := f.service.MarkServed(authedContext(), ticket.ID); !res.Success {
		t.Fatalf("MarkServed() failed: %s", res.Error)
	}

	got, _ := f.tickets.FindByID(context.Background(), ticket.ID)
	if got.Status != "served" {
		t.Errorf("status = %q, want %q", got.Status, "served")
	}
	if got.PickedUpAt == nil {
		t.Error("PickedUpAt should be set for a served kitchen ticket")
	}
}

func TestMarkServedBarHasNoPickedUpAt(t *testing.T) {
	f := newFixture()
	ord := f.addOrder(t, newItem(order.ItemTypeDrink))
	ticket := f.addTicket(t, ord, "bar", "ready")

	if res := f.service.MarkServed(authedContext(), ticket.ID); !res.Success {
		t.Fatalf("MarkServed() failed: %s", res.Error)
	}

	got, _ := f.tickets.FindByID(context.Background(), ticket.ID)
	if got.PickedUpAt != nil {
		t.Error("bar tickets should not record PickedUpAt")
	}
}

func TestTransitionPublishesEvents(t *testing.T) {
	f := newFixture()
	ord := f.addOrder(t, newItem(order.ItemTypeFood))
	ticket := f.addTicket(t, ord, "kitchen", "pending")

	if res := f.service.StartPreparing(authedContext(), ticket.ID); !res.Success {
		t.Fatalf("StartPreparing() failed: %s", res.Error)
	}

	topics := map[string]int{}
	for _, msg := range f.pub.Published {
		topics[msg.Topic]++
	}
	if topics["station.tickets"] == 0 {
		t.Error("expected a status change event on station.tickets")
	}
	if topics["audit.records"] == 0 {
		t.Error("expected an audit record on audit.records")
	}
}

func TestAuditFailureDoesNotFailTransition(t *testing.T) {
	f := newFixture()
	ord := f.addOrder(t, newItem(order.ItemTypeFood))
	ticket := f.addTicket(t, ord, "kitchen", "pending")

	f.pub.PublishFunc = func(ctx context.Context, topic string, msg []byte) error {
		return context.DeadlineExceeded
	}

	res := f.service.StartPreparing(authedContext(), ticket.ID)
	if !res.Success {
		t.Fatalf("publish failure should not fail the transition, got: %s", res.Error)
	}

	got, _ := f.tickets.FindByID(context.Background(), ticket.ID)
	if got.Status != "preparing" {
		t.Errorf("status = %q, want %q", got.Status, "preparing")
	}
}
