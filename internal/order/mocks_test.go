package order

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MockOrderRepo is a map-backed mock of OrderRepo
type MockOrderRepo struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*Order

	CreateFunc func(ctx context.Context, ord *Order) error
	GetFunc    func(ctx context.Context, id uuid.UUID) (*Order, error)
}

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{orders: make(map[uuid.UUID]*Order)}
}

func (m *MockOrderRepo) Create(ctx context.Context, ord *Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ord)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *ord
	m.orders[ord.ID] = &copied
	return nil
}

func (m *MockOrderRepo) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
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

func (m *MockOrderRepo) GetByNumber(ctx context.Context, businessUnitID uuid.UUID, number string) (*Order, error) {
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

func (m *MockOrderRepo) ListByBusinessUnit(ctx context.Context, businessUnitID uuid.UUID) ([]*Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Order
	for _, ord := range m.orders {
		if ord.BusinessUnitID == businessUnitID {
			copied := *ord
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *MockOrderRepo) Save(ctx context.Context, ord *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[ord.ID]; !ok {
		return fmt.Errorf("order not found")
	}
	copied := *ord
	m.orders[ord.ID] = &copied
	return nil
}

// MockOrderItemRepo is a map-backed mock of OrderItemRepo
type MockOrderItemRepo struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*OrderItem

	CreateFunc      func(ctx context.Context, item *OrderItem) error
	ListByOrderFunc func(ctx context.Context, orderID uuid.UUID) ([]*OrderItem, error)
}

func NewMockOrderItemRepo() *MockOrderItemRepo {
	return &MockOrderItemRepo{items: make(map[uuid.UUID]*OrderItem)}
}

func (m *MockOrderItemRepo) Create(ctx context.Context, item *OrderItem) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *item
	m.items[item.ID] = &copied
	return nil
}

func (m *MockOrderItemRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*OrderItem, error) {
	if m.ListByOrderFunc != nil {
		return m.ListByOrderFunc(ctx, orderID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*OrderItem
	for _, item := range m.items {
		if item.OrderID == orderID {
			copied := *item
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *MockOrderItemRepo) BulkSetStatusByType(ctx context.Context, orderID uuid.UUID, itemType string, from []string, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.OrderID != orderID || item.ItemType != itemType {
			continue
		}
		for _, f := range from {
			if item.Status == f {
				item.Status = to
				break
			}
		}
	}
	return nil
}

// MockFanOut records fan-out calls from the handler.
type MockFanOut struct {
	mu    sync.Mutex
	Calls []FanOutCall

	CreateStationTicketsFunc func(ctx context.Context, ord *Order, items []*OrderItem, additional bool, priority int) error
}

type FanOutCall struct {
	Order      *Order
	Items      []*OrderItem
	Additional bool
	Priority   int
}

func NewMockFanOut() *MockFanOut {
	return &MockFanOut{}
}

func (m *MockFanOut) CreateStationTickets(ctx context.Context, ord *Order, items []*OrderItem, additional bool, priority int) error {
	if m.CreateStationTicketsFunc != nil {
		return m.CreateStationTicketsFunc(ctx, ord, items, additional, priority)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, FanOutCall{Order: ord, Items: items, Additional: additional, Priority: priority})
	return nil
}
