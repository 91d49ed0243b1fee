package station

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/passlineclub/passline/internal/order"
)

// MockPublisher is a mock implementation of events.Publisher for testing
type MockPublisher struct {
	mu          sync.Mutex
	Published   []PublishedMessage
	PublishFunc func(ctx context.Context, topic string, msg []byte) error
}

type PublishedMessage struct {
	Topic string
	Msg   []byte
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, PublishedMessage{Topic: topic, Msg: msg})
	return nil
}

// MockTicketRepository is a map-backed mock of TicketRepository
type MockTicketRepository struct {
	mu      sync.RWMutex
	tickets map[uuid.UUID]*Ticket

	CreateFunc             func(ctx context.Context, t *Ticket) error
	FindByIDFunc           func(ctx context.Context, id uuid.UUID) (*Ticket, error)
	ListFunc               func(ctx context.Context, filter TicketFilter) ([]Ticket, error)
	UpdateStatusFunc       func(ctx context.Context, id uuid.UUID, status string, at time.Time, stamps TransitionStamps) error
	DeleteServedBeforeFunc func(ctx context.Context, stationName string, cutoff time.Time) (int64, error)
}

func NewMockTicketRepository() *MockTicketRepository {
	return &MockTicketRepository{
		tickets: make(map[uuid.UUID]*Ticket),
	}
}

func (m *MockTicketRepository) Create(ctx context.Context, t *Ticket) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *t
	m.tickets[t.ID] = &copied
	return nil
}

func (m *MockTicketRepository) Update(ctx context.Context, t *Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[t.ID]; !ok {
		return ErrTicketNotFound
	}
	copied := *t
	m.tickets[t.ID] = &copied
	return nil
}

func (m *MockTicketRepository) FindByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, ErrTicketNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *MockTicketRepository) List(ctx context.Context, filter TicketFilter) ([]Ticket, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []Ticket
	for _, t := range m.tickets {
		if filter.BusinessUnitID != nil && t.BusinessUnitID != *filter.BusinessUnitID {
			continue
		}
		if filter.Station != nil && t.Station != *filter.Station {
			continue
		}
		if len(filter.Statuses) > 0 && !containsString(filter.Statuses, t.Status) {
			continue
		}
		if filter.OrderID != nil && t.OrderID != *filter.OrderID {
			continue
		}
		if len(filter.OrderNumbers) > 0 && !containsString(filter.OrderNumbers, t.OrderNumber) {
			continue
		}
		if filter.CreatedAfter != nil && t.CreatedAt.Before(*filter.CreatedAfter) {
			continue
		}
		result = append(result, *t)
	}
	return result, nil
}

func (m *MockTicketRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, at time.Time, stamps TransitionStamps) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, at, stamps)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return ErrTicketNotFound
	}
	t.Status = status
	t.UpdatedAt = at
	if stamps.SetStarted && t.StartedAt == nil {
		stamp := at
		t.StartedAt = &stamp
	}
	if stamps.SetCompleted && t.CompletedAt == nil {
		stamp := at
		t.CompletedAt = &stamp
	}
	if stamps.SetPickedUp && t.PickedUpAt == nil {
		stamp := at
		t.PickedUpAt = &stamp
	}
	return nil
}

func (m *MockTicketRepository) DeleteServedBefore(ctx context.Context, stationName string, cutoff time.Time) (int64, error) {
	if m.DeleteServedBeforeFunc != nil {
		return m.DeleteServedBeforeFunc(ctx, stationName, cutoff)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for id, t := range m.tickets {
		if t.Station == stationName && t.Status == "served" && t.CreatedAt.Before(cutoff) {
			delete(m.tickets, id)
			deleted++
		}
	}
	return deleted, nil
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// MockOrderRepo is a map-backed mock of order.OrderRepo
type MockOrderRepo struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*order.Order

	GetFunc  func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	SaveFunc func(ctx context.Context, ord *order.Order) error
}

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{
		orders: make(map[uuid.UUID]*order.Order),
	}
}

func (m *MockOrderRepo) Create(ctx context.Context, ord *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *ord
	m.orders[ord.ID] = &copied
	return nil
}

func (m *MockOrderRepo) Get(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ord, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	copied := *ord
	return &copied, nil
}

func (m *MockOrderRepo) GetByNumber(ctx context.Context, businessUnitID uuid.UUID, number string) (*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ord := range m.orders {
		if ord.BusinessUnitID == businessUnitID && ord.OrderNumber == number {
			copied := *ord
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockOrderRepo) ListByBusinessUnit(ctx context.Context, businessUnitID uuid.UUID) ([]*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*order.Order
	for _, ord := range m.orders {
		if ord.BusinessUnitID == businessUnitID {
			copied := *ord
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *MockOrderRepo) Save(ctx context.Context, ord *order.Order) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, ord)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[ord.ID]; !ok {
		return fmt.Errorf("order not found")
	}
	copied := *ord
	m.orders[ord.ID] = &copied
	return nil
}

// Delete removes an order from the store. Only tests use it, to
// simulate a dangling ticket whose parent order is gone.
func (m *MockOrderRepo) Delete(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, id)
}

// MockOrderItemRepo is a map-backed mock of order.OrderItemRepo
type MockOrderItemRepo struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*order.OrderItem

	BulkSetStatusByTypeFunc func(ctx context.Context, orderID uuid.UUID, itemType string, from []string, to string) error
	ListByOrderFunc         func(ctx context.Context, orderID uuid.UUID) ([]*order.OrderItem, error)
}

func NewMockOrderItemRepo() *MockOrderItemRepo {
	return &MockOrderItemRepo{
		items: make(map[uuid.UUID]*order.OrderItem),
	}
}

func (m *MockOrderItemRepo) Create(ctx context.Context, item *order.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *item
	m.items[item.ID] = &copied
	return nil
}

// Get is a test helper for inspecting an item after a reconcile pass.
func (m *MockOrderItemRepo) Get(ctx context.Context, id uuid.UUID) (*order.OrderItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (m *MockOrderItemRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*order.OrderItem, error) {
	if m.ListByOrderFunc != nil {
		return m.ListByOrderFunc(ctx, orderID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*order.OrderItem
	for _, item := range m.items {
		if item.OrderID == orderID {
			copied := *item
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *MockOrderItemRepo) BulkSetStatusByType(ctx context.Context, orderID uuid.UUID, itemType string, from []string, to string) error {
	if m.BulkSetStatusByTypeFunc != nil {
		return m.BulkSetStatusByTypeFunc(ctx, orderID, itemType, from, to)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.OrderID != orderID || item.ItemType != itemType {
			continue
		}
		if containsString(from, item.Status) {
			item.Status = to
			item.UpdatedAt = time.Now()
		}
	}
	return nil
}
