package order

import (
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

const (
	ItemTypeFood  = "food"
	ItemTypeDrink = "drink"
)

// itemStatusRank orders the item lifecycle. The reconciler only ever
// advances an item; a bulk update must never move an item backwards.
var itemStatusRank = map[string]int{
	StatusPending:   0,
	StatusConfirmed: 1,
	StatusPreparing: 2,
	StatusReady:     3,
	StatusServed:    4,
}

// ItemStatusesBelow lists the non-terminal statuses ranked strictly below
// the given one. Cancelled items are excluded: they never advance.
func ItemStatusesBelow(status string) []string {
	limit, ok := itemStatusRank[status]
	if !ok {
		return nil
	}
	var below []string
	for s, rank := range itemStatusRank {
		if rank < limit {
			below = append(below, s)
		}
	}
	return below
}

// OrderItem is one line of an order. ItemType is a snapshot of the menu
// item's type taken at order time; later menu edits do not change it.
type OrderItem struct {
	ID         uuid.UUID `json:"id" bson:"_id"`
	OrderID    uuid.UUID `json:"order_id" bson:"order_id"`
	MenuItemID uuid.UUID `json:"menu_item_id" bson:"menu_item_id"`
	Name       string    `json:"name" bson:"name"`
	ItemType   string    `json:"item_type" bson:"item_type"`
	Quantity   int       `json:"quantity" bson:"quantity"`
	Status     string    `json:"status" bson:"status"`
	Notes      string    `json:"notes,omitempty" bson:"notes,omitempty"`
	PrepTime   int       `json:"prep_time,omitempty" bson:"prep_time,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	CreatedBy  string    `json:"created_by" bson:"created_by"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
	UpdatedBy  string    `json:"updated_by" bson:"updated_by"`
}

func (oi *OrderItem) GetID() uuid.UUID {
	return oi.ID
}

func (oi *OrderItem) ResourceType() string {
	return "order-item"
}

func (oi *OrderItem) SetID(id uuid.UUID) {
	oi.ID = id
}

func NewOrderItem() *OrderItem {
	return &OrderItem{
		ID:     apt.GenerateNewID(),
		Status: StatusPending,
	}
}

func (oi *OrderItem) EnsureID() {
	if oi.ID == uuid.Nil {
		oi.ID = apt.GenerateNewID()
	}
}

func (oi *OrderItem) BeforeCreate() {
	oi.EnsureID()
	oi.CreatedAt = time.Now()
	oi.UpdatedAt = time.Now()
}

func (oi *OrderItem) BeforeUpdate() {
	oi.UpdatedAt = time.Now()
}

func (oi *OrderItem) MarkAsPreparing() {
	oi.Status = StatusPreparing
	oi.UpdatedAt = time.Now()
}

func (oi *OrderItem) MarkAsReady() {
	oi.Status = StatusReady
	oi.UpdatedAt = time.Now()
}

func (oi *OrderItem) MarkAsServed() {
	oi.Status = StatusServed
	oi.UpdatedAt = time.Now()
}

func (oi *OrderItem) Cancel() {
	oi.Status = StatusCancelled
	oi.UpdatedAt = time.Now()
}

// Settled reports whether the item no longer blocks the order from
// reaching ready: it is ready or already served.
func (oi *OrderItem) Settled() bool {
	return oi.Status == StatusReady || oi.Status == StatusServed
}
