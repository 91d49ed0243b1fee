package station

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"

	"github.com/passlineclub/passline/internal/event"
)

// TicketPrintSubscriber feeds the station printers. It listens for
// ticket-created events and renders each one as a slip; the actual
// printer integration consumes the rendered output from the log stream.
type TicketPrintSubscriber struct {
	subscriber events.Subscriber
	tickets    TicketRepository
	logger     apt.Logger
}

func NewTicketPrintSubscriber(sub events.Subscriber, tickets TicketRepository, logger apt.Logger) *TicketPrintSubscriber {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &TicketPrintSubscriber{
		subscriber: sub,
		tickets:    tickets,
		logger:     logger,
	}
}

func (s *TicketPrintSubscriber) Start(ctx context.Context) error {
	s.logger.Info("starting ticket print subscriber", "topic", event.StationTicketsTopic)
	if s.subscriber == nil {
		return fmt.Errorf("ticket print subscriber not configured")
	}
	return s.subscriber.Subscribe(ctx, event.StationTicketsTopic, s.handleEvent)
}

func (s *TicketPrintSubscriber) handleEvent(ctx context.Context, msg []byte) error {
	var metadata event.TicketEventMetadata
	if err := json.Unmarshal(msg, &metadata); err != nil {
		s.logger.Info("invalid station ticket event", "error", err)
		return nil
	}

	// Status changes are board updates, nothing to print.
	if metadata.EventType != event.EventTicketCreated {
		return nil
	}

	return s.printTicket(ctx, metadata)
}

func (s *TicketPrintSubscriber) printTicket(ctx context.Context, metadata event.TicketEventMetadata) error {
	ticketID, err := uuid.Parse(metadata.TicketID)
	if err != nil {
		s.logger.Info("invalid ticket_id in event", "ticket_id", metadata.TicketID)
		return nil
	}

	ticket, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		s.logger.Info("cannot load ticket for printing", "ticket_id", metadata.TicketID, "error", err)
		return nil
	}

	s.logger.Info("print ticket",
		"station", ticket.Station,
		"slip", renderSlip(ticket),
	)
	return nil
}

// renderSlip formats a ticket the way the thermal printers expect it:
// header with the display number and table, one line per item.
func renderSlip(t *Ticket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s | table %s", t.OrderNumber, t.TableNumber)
	if t.Priority > 0 {
		b.WriteString(" | RUSH")
	}
	for _, item := range t.Items {
		fmt.Fprintf(&b, "\n%dx %s", item.Quantity, item.Name)
		if item.Notes != "" {
			fmt.Fprintf(&b, " (%s)", item.Notes)
		}
	}
	if t.Notes != "" {
		fmt.Fprintf(&b, "\nnote: %s", t.Notes)
	}
	return b.String()
}
