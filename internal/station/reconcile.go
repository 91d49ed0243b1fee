package station

import (
	"context"
	"fmt"

	"github.com/passlineclub/passline/internal/enums/station"
	"github.com/passlineclub/passline/internal/enums/ticketstatus"
	"github.com/passlineclub/passline/internal/order"
)

// reconcile folds a station ticket's completion back into the parent
// order. It runs synchronously inside the transition that triggered it.
//
// On ready: the order's items of the ticket's type are advanced to ready
// (guarded so a served item is never downgraded), then all items are
// re-read; only when every item is ready or served does the order itself
// advance to ready. Because each call re-reads before deciding, kitchen
// and bar reaching ready concurrently is safe in either arrival order.
//
// On served: matching items are advanced to served. The order status is
// not advanced further here; order-level pickup completion is a separate
// workflow.
func (s *Service) reconcile(ctx context.Context, t *Ticket, targetCode string) error {
	parent, err := s.orders.Get(ctx, t.OrderID)
	if err != nil {
		return fmt.Errorf("cannot load parent order: %w", err)
	}
	if parent == nil {
		return fmt.Errorf("parent order %s not found", t.OrderID)
	}

	st := station.ByName(t.Station)
	if st == nil {
		return fmt.Errorf("ticket %s has unknown station %q", t.ID, t.Station)
	}
	itemType := st.ItemType()

	switch targetCode {
	case ticketstatus.Statuses.Ready.Code():
		return s.reconcileReady(ctx, parent, itemType)
	case ticketstatus.Statuses.Served.Code():
		return s.reconcileServed(ctx, parent, itemType)
	default:
		return nil
	}
}

func (s *Service) reconcileReady(ctx context.Context, parent *order.Order, itemType string) error {
	from := order.ItemStatusesBelow(order.StatusReady)
	if err := s.items.BulkSetStatusByType(ctx, parent.ID, itemType, from, order.StatusReady); err != nil {
		return fmt.Errorf("cannot advance %s items to ready: %w", itemType, err)
	}

	items, err := s.items.ListByOrder(ctx, parent.ID)
	if err != nil {
		return fmt.Errorf("cannot re-read order items: %w", err)
	}

	// A ticket for an order with no items of its type should not exist,
	// but when it does the order's aggregate status is left alone.
	matching := 0
	for _, item := range items {
		if item.ItemType == itemType {
			matching++
		}
	}
	if matching == 0 {
		return nil
	}

	for _, item := range items {
		if !item.Settled() {
			return nil
		}
	}

	if parent.Status == order.StatusReady {
		return nil
	}

	parent.MarkAsReady()
	if err := s.orders.Save(ctx, parent); err != nil {
		return fmt.Errorf("cannot advance order %s to ready: %w", parent.ID, err)
	}

	s.logger.Info("order ready", "order_number", parent.OrderNumber, "order_id", parent.ID)
	return nil
}

func (s *Service) reconcileServed(ctx context.Context, parent *order.Order, itemType string) error {
	from := order.ItemStatusesBelow(order.StatusServed)
	if err := s.items.BulkSetStatusByType(ctx, parent.ID, itemType, from, order.StatusServed); err != nil {
		return fmt.Errorf("cannot advance %s items to served: %w", itemType, err)
	}
	return nil
}
