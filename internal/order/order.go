package order

import (
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusServed    = "served"
	StatusCancelled = "cancelled"
)

// Order is the customer-facing unit of work for one table visit. Its
// status is an aggregate derived from the items; it never reports ready
// while any item is still in flight.
type Order struct {
	ID             uuid.UUID  `json:"id" bson:"_id"`
	BusinessUnitID uuid.UUID  `json:"business_unit_id" bson:"business_unit_id"`
	OrderNumber    string     `json:"order_number" bson:"order_number"`
	TableNumber    string     `json:"table_number" bson:"table_number"`
	Status         string     `json:"status" bson:"status"`
	CustomerCount  int        `json:"customer_count" bson:"customer_count"`
	WaiterName     string     `json:"waiter_name,omitempty" bson:"waiter_name,omitempty"`
	Notes          string     `json:"notes,omitempty" bson:"notes,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
	CreatedBy      string     `json:"created_by" bson:"created_by"`
	UpdatedAt      time.Time  `json:"updated_at" bson:"updated_at"`
	UpdatedBy      string     `json:"updated_by" bson:"updated_by"`
}

func (o *Order) GetID() uuid.UUID {
	return o.ID
}

func (o *Order) ResourceType() string {
	return "order"
}

func (o *Order) SetID(id uuid.UUID) {
	o.ID = id
}

func NewOrder() *Order {
	return &Order{
		ID:     apt.GenerateNewID(),
		Status: StatusPending,
	}
}

func (o *Order) EnsureID() {
	if o.ID == uuid.Nil {
		o.ID = apt.GenerateNewID()
	}
}

func (o *Order) BeforeCreate() {
	o.EnsureID()
	o.CreatedAt = time.Now()
	o.UpdatedAt = time.Now()
}

func (o *Order) BeforeUpdate() {
	o.UpdatedAt = time.Now()
}

func (o *Order) MarkAsPreparing() {
	o.Status = StatusPreparing
	o.UpdatedAt = time.Now()
}

func (o *Order) MarkAsReady() {
	o.Status = StatusReady
	o.UpdatedAt = time.Now()
}

func (o *Order) MarkAsServed() {
	now := time.Now()
	o.Status = StatusServed
	o.CompletedAt = &now
	o.UpdatedAt = now
}

func (o *Order) Cancel() {
	o.Status = StatusCancelled
	o.UpdatedAt = time.Now()
}
