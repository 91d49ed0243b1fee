package station

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrTicketNotFound is returned by repositories when a ticket id does not
// resolve to a stored ticket.
var ErrTicketNotFound = errors.New("ticket not found")

type TicketFilter struct {
	BusinessUnitID *uuid.UUID
	Station        *string
	Statuses       []string
	OrderID        *uuid.UUID
	OrderNumbers   []string
	CreatedAfter   *time.Time
	Limit          int
	Offset         int
}

// TransitionStamps tells the store which lifecycle timestamps a status
// change may set. Each one is written conditionally, only when currently
// unset, so replays and racing calls cannot overwrite a recorded time.
type TransitionStamps struct {
	SetStarted   bool
	SetCompleted bool
	SetPickedUp  bool
}

type TicketRepository interface {
	Create(ctx context.Context, t *Ticket) error
	Update(ctx context.Context, t *Ticket) error
	FindByID(ctx context.Context, id uuid.UUID) (*Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]Ticket, error)

	// UpdateStatus sets the ticket's status and updated_at, and applies
	// the requested stamps at the given time. Returns ErrTicketNotFound
	// when the id does not match a ticket.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, at time.Time, stamps TransitionStamps) error

	// DeleteServedBefore removes a station's served tickets created before
	// the cutoff. It must only ever match tickets that are already served,
	// so it commutes with in-flight transitions.
	DeleteServedBefore(ctx context.Context, stationName string, cutoff time.Time) (int64, error)
}
