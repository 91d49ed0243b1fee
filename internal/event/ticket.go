package event

import "time"

const (
	StationTicketsTopic     = "station.tickets"
	EventTicketCreated      = "station.ticket.created"
	EventTicketStatusChange = "station.ticket.status_changed"
)

type TicketEventMetadata struct {
	EventType      string    `json:"event_type"`
	OccurredAt     time.Time `json:"occurred_at"`
	TicketID       string    `json:"ticket_id"`
	OrderID        string    `json:"order_id"`
	OrderNumber    string    `json:"order_number"`
	Station        string    `json:"station"`
	BusinessUnitID string    `json:"business_unit_id"`

	// Denormalized data for display (station boards, print sink)
	TableNumber string `json:"table_number,omitempty"`
	WaiterName  string `json:"waiter_name,omitempty"`
}

type TicketCreatedEvent struct {
	TicketEventMetadata
	Status    string `json:"status"`
	ItemCount int    `json:"item_count"`
	Notes     string `json:"notes,omitempty"`
}

type TicketStatusChangedEvent struct {
	TicketEventMetadata
	NewStatus      string     `json:"new_status"`
	PreviousStatus string     `json:"previous_status"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	PickedUpAt     *time.Time `json:"picked_up_at,omitempty"`
}
