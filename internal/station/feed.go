package station

import (
	"context"
	"sort"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/passlineclub/passline/internal/enums/ticketstatus"
	"github.com/passlineclub/passline/internal/ordernum"
)

// completedLookback bounds the history view; served tickets older than
// this are not interesting to station staff.
const completedLookback = 24 * time.Hour

// Feed is the read side of a station display. Store errors yield an empty
// board rather than an error: the display keeps rendering and the client
// shows its own "failed to load" notice.
type Feed struct {
	tickets TicketRepository
	logger  apt.Logger
}

func NewFeed(tickets TicketRepository, logger apt.Logger) *Feed {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Feed{tickets: tickets, logger: logger}
}

// ListActive returns a station's open tickets, highest priority first and
// oldest-first within a priority band, so equal-priority tickets are
// worked first-in-first-served.
func (f *Feed) ListActive(ctx context.Context, businessUnitID uuid.UUID, stationName string) []Ticket {
	filter := TicketFilter{
		BusinessUnitID: &businessUnitID,
		Station:        &stationName,
		Statuses:       ticketstatus.Active(),
	}

	tickets, err := f.tickets.List(ctx, filter)
	if err != nil {
		f.logger.Errorf("cannot list active %s tickets: %v", stationName, err)
		return []Ticket{}
	}

	sortBoard(tickets)
	return tickets
}

// ListForOrder narrows the active board to a single order's tickets,
// matching both the base number and its additional batch. Callers may
// pass either form of the number.
func (f *Feed) ListForOrder(ctx context.Context, businessUnitID uuid.UUID, stationName, number string) []Ticket {
	if ordernum.IsAdditional(number) {
		number = ordernum.Parent(number)
	}
	filter := TicketFilter{
		BusinessUnitID: &businessUnitID,
		Station:        &stationName,
		Statuses:       ticketstatus.Active(),
		OrderNumbers:   ordernum.WorkingSet([]string{number}),
	}

	tickets, err := f.tickets.List(ctx, filter)
	if err != nil {
		f.logger.Errorf("cannot list %s tickets for order %s: %v", stationName, number, err)
		return []Ticket{}
	}

	sortBoard(tickets)
	return tickets
}

func sortBoard(tickets []Ticket) {
	sort.SliceStable(tickets, func(i, j int) bool {
		if tickets[i].Priority != tickets[j].Priority {
			return tickets[i].Priority > tickets[j].Priority
		}
		return tickets[i].CreatedAt.Before(tickets[j].CreatedAt)
	})
}

// ListCompleted returns a station's served tickets from the lookback
// window, most recently completed first. History view only; nothing
// operational reads it.
func (f *Feed) ListCompleted(ctx context.Context, businessUnitID uuid.UUID, stationName string) []Ticket {
	since := time.Now().Add(-completedLookback)
	filter := TicketFilter{
		BusinessUnitID: &businessUnitID,
		Station:        &stationName,
		Statuses:       []string{ticketstatus.Statuses.Served.Code()},
		CreatedAfter:   &since,
	}

	tickets, err := f.tickets.List(ctx, filter)
	if err != nil {
		f.logger.Errorf("cannot list completed %s tickets: %v", stationName, err)
		return []Ticket{}
	}

	sort.SliceStable(tickets, func(i, j int) bool {
		ci, cj := tickets[i].CompletedAt, tickets[j].CompletedAt
		switch {
		case ci == nil:
			return false
		case cj == nil:
			return true
		default:
			return ci.After(*cj)
		}
	})
	return tickets
}
