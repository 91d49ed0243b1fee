package station

import (
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/passlineclub/passline/internal/enums/ticketstatus"
)

// TicketItem is one line of the snapshot a station works from. The
// snapshot is copied from the order items at ticket-creation time and is
// immutable afterwards: station staff keep seeing what was sent even if
// the order or the menu is edited later.
type TicketItem struct {
	ID       uuid.UUID `json:"id" bson:"_id"`
	Name     string    `json:"name" bson:"name"`
	Quantity int       `json:"quantity" bson:"quantity"`
	Notes    string    `json:"notes,omitempty" bson:"notes,omitempty"`
	PrepTime int       `json:"prep_time,omitempty" bson:"prep_time,omitempty"`
}

// Ticket is the station-scoped work item derived from one order (or one
// additional-items batch). OrderID links it to the parent order; the
// display OrderNumber carries the "-ADD" suffix for additional batches.
// Only Status, the timestamps and Notes mutate after creation.
type Ticket struct {
	ID             uuid.UUID    `json:"id" bson:"_id"`
	BusinessUnitID uuid.UUID    `json:"business_unit_id" bson:"business_unit_id"`
	OrderID        uuid.UUID    `json:"order_id" bson:"order_id"`
	OrderNumber    string       `json:"order_number" bson:"order_number"`
	Additional     bool         `json:"additional" bson:"additional"`
	Station        string       `json:"station" bson:"station"`
	TableNumber    string       `json:"table_number" bson:"table_number"`
	WaiterName     string       `json:"waiter_name,omitempty" bson:"waiter_name,omitempty"`
	Items          []TicketItem `json:"items" bson:"items"`
	Status         string       `json:"status" bson:"status"`
	Priority       int          `json:"priority" bson:"priority"`
	EstimatedTime  int          `json:"estimated_time,omitempty" bson:"estimated_time,omitempty"`
	Notes          string       `json:"notes,omitempty" bson:"notes,omitempty"`

	StartedAt   *time.Time `json:"started_at,omitempty" bson:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	// PickedUpAt is kitchen-only: the moment a waiter collected the plates
	// from the pass. Bar tickets go straight to served.
	PickedUpAt *time.Time `json:"picked_up_at,omitempty" bson:"picked_up_at,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	CreatedBy string    `json:"created_by" bson:"created_by"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	UpdatedBy string    `json:"updated_by" bson:"updated_by"`
}

func (t *Ticket) GetID() uuid.UUID {
	return t.ID
}

func (t *Ticket) ResourceType() string {
	return "station-ticket"
}

func NewTicket() *Ticket {
	return &Ticket{
		ID:     apt.GenerateNewID(),
		Status: ticketstatus.Statuses.Pending.Code(),
	}
}

func (t *Ticket) EnsureID() {
	if t.ID == uuid.Nil {
		t.ID = apt.GenerateNewID()
	}
}

func (t *Ticket) BeforeCreate() {
	t.EnsureID()
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
}

func (t *Ticket) BeforeUpdate() {
	t.UpdatedAt = time.Now()
}
