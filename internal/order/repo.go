package order

import (
	"context"

	"github.com/google/uuid"
)

type OrderRepo interface {
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	GetByNumber(ctx context.Context, businessUnitID uuid.UUID, number string) (*Order, error)
	ListByBusinessUnit(ctx context.Context, businessUnitID uuid.UUID) ([]*Order, error)
	Save(ctx context.Context, order *Order) error
}

type OrderItemRepo interface {
	Create(ctx context.Context, item *OrderItem) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*OrderItem, error)

	// BulkSetStatusByType sets status to the given value for the order's
	// items of one type whose current status is in from. The from guard is
	// what keeps the reconciler from downgrading items a faster station
	// already pushed past the target.
	BulkSetStatusByType(ctx context.Context, orderID uuid.UUID, itemType string, from []string, to string) error
}
