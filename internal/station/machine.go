package station

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"

	"github.com/passlineclub/passline/internal/audit"
	"github.com/passlineclub/passline/internal/enums/station"
	"github.com/passlineclub/passline/internal/enums/ticketstatus"
	"github.com/passlineclub/passline/internal/event"
	"github.com/passlineclub/passline/internal/identity"
	"github.com/passlineclub/passline/internal/order"
)

// Result is what every public ticket operation reports back to its
// caller. Failures never propagate as errors past this boundary; the UI
// surfaces Error as a transient notice and staff retry manually.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func ok() Result {
	return Result{Success: true}
}

func fail(msg string) Result {
	return Result{Success: false, Error: msg}
}

type ServiceDeps struct {
	Tickets   TicketRepository
	Orders    order.OrderRepo
	Items     order.OrderItemRepo
	Audit     audit.Recorder
	Publisher events.Publisher
}

// Service owns the ticket lifecycle: fan-out at order placement, the
// forward-only status machine, and the fan-in reconciliation of station
// progress back into order and item status.
type Service struct {
	tickets   TicketRepository
	orders    order.OrderRepo
	items     order.OrderItemRepo
	audit     audit.Recorder
	publisher events.Publisher
	logger    apt.Logger
}

func NewService(deps ServiceDeps, logger apt.Logger) *Service {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	auditRec := deps.Audit
	if auditRec == nil {
		auditRec = audit.Noop{}
	}
	return &Service{
		tickets:   deps.Tickets,
		orders:    deps.Orders,
		items:     deps.Items,
		audit:     auditRec,
		publisher: deps.Publisher,
		logger:    logger,
	}
}

// StartPreparing moves a pending ticket onto the board's in-progress
// column. Calling it on a ticket at or past preparing is a no-op.
func (s *Service) StartPreparing(ctx context.Context, ticketID uuid.UUID) Result {
	return s.transition(ctx, ticketID, ticketstatus.Statuses.Preparing.Code())
}

// MarkReady moves a preparing ticket to the pass.
func (s *Service) MarkReady(ctx context.Context, ticketID uuid.UUID) Result {
	return s.transition(ctx, ticketID, ticketstatus.Statuses.Ready.Code())
}

// MarkServed closes the ticket. Kitchen UI copy calls this "picked up";
// for kitchen tickets the pickup time is recorded as well.
func (s *Service) MarkServed(ctx context.Context, ticketID uuid.UUID) Result {
	return s.transition(ctx, ticketID, ticketstatus.Statuses.Served.Code())
}

// transition validates and applies one status change. The lifecycle is
// monotone: a target at or behind the current status is an idempotent
// no-op, any forward target applies directly. Jumping a state is allowed
// (a rushed ticket can go straight from pending to ready); a skipped
// state's timestamp is simply never recorded.
func (s *Service) transition(ctx context.Context, ticketID uuid.UUID, targetCode string) Result {
	actor := identity.FromContext(ctx)
	if !actor.Can(identity.CapTransitionTickets) {
		return fail("unauthorized")
	}

	target := ticketstatus.ByName(targetCode)
	if target == nil {
		return fail("unknown ticket status")
	}

	ticket, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			return fail("ticket not found")
		}
		s.logger.Errorf("cannot load ticket %s: %v", ticketID, err)
		return fail("could not complete, try again")
	}

	current := ticketstatus.ByName(ticket.Status)
	if current == nil {
		s.logger.Errorf("ticket %s has unknown status %q", ticketID, ticket.Status)
		return fail("could not complete, try again")
	}

	if target.Rank() <= current.Rank() {
		// A ready or served retry still repeats the reconciliation; that
		// is the repair path when an earlier fan-in pass failed after the
		// ticket write.
		switch target.Code() {
		case ticketstatus.Statuses.Ready.Code(), ticketstatus.Statuses.Served.Code():
			if err := s.reconcile(ctx, ticket, target.Code()); err != nil {
				s.logger.Errorf("order reconciliation failed for ticket %s (order %s): %v",
					ticket.ID, ticket.OrderID, err)
			}
		}
		return ok()
	}

	now := time.Now()
	stamps := TransitionStamps{
		SetStarted:   target.Code() == ticketstatus.Statuses.Preparing.Code(),
		SetCompleted: target.Code() == ticketstatus.Statuses.Ready.Code(),
		SetPickedUp: target.Code() == ticketstatus.Statuses.Served.Code() &&
			ticket.Station == station.Stations.Kitchen.Code(),
	}

	if err := s.tickets.UpdateStatus(ctx, ticketID, target.Code(), now, stamps); err != nil {
		if errors.Is(err, ErrTicketNotFound) {
			return fail("ticket not found")
		}
		s.logger.Errorf("cannot update ticket %s: %v", ticketID, err)
		return fail("could not complete, try again")
	}

	previous := ticket.Status
	ticket.Status = target.Code()
	ticket.UpdatedAt = now
	if stamps.SetStarted && ticket.StartedAt == nil {
		ticket.StartedAt = &now
	}
	if stamps.SetCompleted && ticket.CompletedAt == nil {
		ticket.CompletedAt = &now
	}
	if stamps.SetPickedUp && ticket.PickedUpAt == nil {
		ticket.PickedUpAt = &now
	}

	// The ticket write above is committed on its own; a reconcile failure
	// leaves order/item status stale until the next transition or a manual
	// retry repeats it. The ticket keeps its new status either way.
	switch target.Code() {
	case ticketstatus.Statuses.Ready.Code(), ticketstatus.Statuses.Served.Code():
		if err := s.reconcile(ctx, ticket, target.Code()); err != nil {
			s.logger.Errorf("order reconciliation failed for ticket %s (order %s): %v",
				ticket.ID, ticket.OrderID, err)
		}
	}

	s.recordTransitionAudit(ctx, actor, ticket, previous)
	s.publishStatusChange(ctx, ticket, previous)

	return ok()
}

func (s *Service) recordTransitionAudit(ctx context.Context, actor *identity.Actor, t *Ticket, previous string) {
	entry := audit.Entry{
		BusinessUnitID: t.BusinessUnitID,
		TableName:      "station_tickets",
		RecordID:       t.ID.String(),
		Action:         "status_change",
		OldValues:      map[string]interface{}{"status": previous},
		NewValues:      map[string]interface{}{"status": t.Status},
	}
	if actor != nil {
		entry.UserID = actor.ID.String()
		entry.UserName = actor.Name
	}
	s.audit.Record(ctx, entry)
}

func (s *Service) publishStatusChange(ctx context.Context, t *Ticket, previous string) {
	if s.publisher == nil {
		return
	}

	evt := event.TicketStatusChangedEvent{
		TicketEventMetadata: event.TicketEventMetadata{
			EventType:      event.EventTicketStatusChange,
			OccurredAt:     time.Now(),
			TicketID:       t.ID.String(),
			OrderID:        t.OrderID.String(),
			OrderNumber:    t.OrderNumber,
			Station:        t.Station,
			BusinessUnitID: t.BusinessUnitID.String(),
			TableNumber:    t.TableNumber,
			WaiterName:     t.WaiterName,
		},
		NewStatus:      t.Status,
		PreviousStatus: previous,
		StartedAt:      t.StartedAt,
		CompletedAt:    t.CompletedAt,
		PickedUpAt:     t.PickedUpAt,
	}

	msg, _ := json.Marshal(evt)
	if err := s.publisher.Publish(ctx, event.StationTicketsTopic, msg); err != nil {
		s.logger.Errorf("cannot publish status_changed event for ticket %s: %v", t.ID, err)
	}
}
