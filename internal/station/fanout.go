package station

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/passlineclub/passline/internal/enums/station"
	"github.com/passlineclub/passline/internal/event"
	"github.com/passlineclub/passline/internal/order"
	"github.com/passlineclub/passline/internal/ordernum"
)

// CreateStationTickets fans an order (or an additional-items batch) out
// into per-station tickets: one kitchen ticket when the batch has food
// items, one bar ticket when it has drink items. A batch with items for
// only one station produces a single ticket. Each ticket carries an
// immutable snapshot of its items and the parent order's id; additional
// batches get the "-ADD" display number.
func (s *Service) CreateStationTickets(ctx context.Context, ord *order.Order, items []*order.OrderItem, additional bool, priority int) error {
	byStation := map[string][]TicketItem{}
	prepTime := map[string]int{}

	for _, item := range items {
		st := station.ForItemType(item.ItemType)
		if st == nil {
			s.logger.Debug("skipping item with unknown type", "item_id", item.ID, "item_type", item.ItemType)
			continue
		}
		code := st.Code()
		byStation[code] = append(byStation[code], TicketItem{
			ID:       item.ID,
			Name:     item.Name,
			Quantity: item.Quantity,
			Notes:    item.Notes,
			PrepTime: item.PrepTime,
		})
		if item.PrepTime > prepTime[code] {
			prepTime[code] = item.PrepTime
		}
	}

	number := ord.OrderNumber
	if additional {
		number = ordernum.Additional(ord.OrderNumber)
	}

	for _, st := range station.All {
		snapshot := byStation[st.Code()]
		if len(snapshot) == 0 {
			continue
		}

		ticket := NewTicket()
		ticket.BusinessUnitID = ord.BusinessUnitID
		ticket.OrderID = ord.ID
		ticket.OrderNumber = number
		ticket.Additional = additional
		ticket.Station = st.Code()
		ticket.TableNumber = ord.TableNumber
		ticket.WaiterName = ord.WaiterName
		ticket.Items = snapshot
		ticket.Priority = priority
		ticket.EstimatedTime = prepTime[st.Code()]
		ticket.Notes = ord.Notes
		ticket.BeforeCreate()

		if err := s.tickets.Create(ctx, ticket); err != nil {
			return fmt.Errorf("cannot create %s ticket for order %s: %w", st.Code(), number, err)
		}

		s.publishCreated(ctx, ticket)
	}

	return nil
}

func (s *Service) publishCreated(ctx context.Context, t *Ticket) {
	if s.publisher == nil {
		return
	}

	evt := event.TicketCreatedEvent{
		TicketEventMetadata: event.TicketEventMetadata{
			EventType:      event.EventTicketCreated,
			OccurredAt:     time.Now(),
			TicketID:       t.ID.String(),
			OrderID:        t.OrderID.String(),
			OrderNumber:    t.OrderNumber,
			Station:        t.Station,
			BusinessUnitID: t.BusinessUnitID.String(),
			TableNumber:    t.TableNumber,
			WaiterName:     t.WaiterName,
		},
		Status:    t.Status,
		ItemCount: len(t.Items),
		Notes:     t.Notes,
	}

	msg, _ := json.Marshal(evt)
	if err := s.publisher.Publish(ctx, event.StationTicketsTopic, msg); err != nil {
		s.logger.Errorf("cannot publish created event for ticket %s: %v", t.ID, err)
	}
}
