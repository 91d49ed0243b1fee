package order

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/passlineclub/passline/internal/identity"
	"github.com/passlineclub/passline/internal/ordernum"
)

const MaxBodyBytes = 1 << 20

// HeaderBusinessUnit carries the gateway-resolved business unit scope.
const HeaderBusinessUnit = "X-Business-Unit"

// TicketFanOut spawns the per-station tickets for a placed batch of
// items. Satisfied by the station service.
type TicketFanOut interface {
	CreateStationTickets(ctx context.Context, ord *Order, items []*OrderItem, additional bool, priority int) error
}

type Handler struct {
	orders OrderRepo
	items  OrderItemRepo
	fanout TicketFanOut
	config *apt.Config
	logger apt.Logger
	tlm    *telemetry.HTTP
}

type HandlerDeps struct {
	Orders OrderRepo
	Items  OrderItemRepo
	FanOut TicketFanOut
}

func NewHandler(deps HandlerDeps, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		orders: deps.Orders,
		items:  deps.Items,
		fanout: deps.FanOut,
		config: config,
		logger: logger,
		tlm:    telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/", h.ListOrders)
		r.Get("/{id}", h.GetOrder)
		r.Get("/{id}/items", h.ListOrderItems)
		r.Post("/{id}/additions", h.AddItems)
	})
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", apt.RequestIDFrom(r.Context()))
}

type itemPayload struct {
	MenuItemID string `json:"menu_item_id"`
	Name       string `json:"name"`
	ItemType   string `json:"item_type"`
	Quantity   int    `json:"quantity"`
	Notes      string `json:"notes"`
	PrepTime   int    `json:"prep_time"`
}

type createOrderPayload struct {
	TableNumber   string        `json:"table_number"`
	CustomerCount int           `json:"customer_count"`
	Notes         string        `json:"notes"`
	Priority      int           `json:"priority"`
	Items         []itemPayload `json:"items"`
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateOrder")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	actor := identity.FromContext(ctx)
	if !actor.Can(identity.CapPlaceOrders) {
		apt.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	buID, err := uuid.Parse(r.Header.Get(HeaderBusinessUnit))
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Missing business unit")
		return
	}

	payload, okReq := h.decodeCreatePayload(w, r)
	if !okReq {
		return
	}
	if len(payload.Items) == 0 {
		apt.RespondError(w, http.StatusBadRequest, "Order needs at least one item")
		return
	}

	ord := NewOrder()
	ord.BusinessUnitID = buID
	ord.OrderNumber = ordernum.Generate()
	ord.TableNumber = payload.TableNumber
	ord.CustomerCount = payload.CustomerCount
	ord.WaiterName = actor.Name
	ord.Notes = payload.Notes
	ord.CreatedBy = actor.Name
	ord.UpdatedBy = actor.Name
	ord.BeforeCreate()

	if err := h.orders.Create(ctx, ord); err != nil {
		log.Errorf("cannot create order: %v", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not create order")
		return
	}

	items, okReq := h.createItems(w, r, ord, payload.Items, actor.Name)
	if !okReq {
		return
	}

	if err := h.fanout.CreateStationTickets(ctx, ord, items, false, payload.Priority); err != nil {
		log.Errorf("cannot fan out tickets for order %s: %v", ord.OrderNumber, err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not dispatch order to stations")
		return
	}

	apt.Respond(w, http.StatusCreated, map[string]interface{}{
		"order": ord,
		"items": items,
	}, nil)
}

type addItemsPayload struct {
	Notes    string        `json:"notes"`
	Priority int           `json:"priority"`
	Items    []itemPayload `json:"items"`
}

// AddItems appends a batch of items to an order that was already sent to
// the stations. The batch fans out into fresh tickets labelled with the
// "-ADD" display number; the original tickets are untouched.
func (h *Handler) AddItems(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AddItems")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	actor := identity.FromContext(ctx)
	if !actor.Can(identity.CapPlaceOrders) {
		apt.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	ord, err := h.orders.Get(ctx, id)
	if err != nil {
		log.Errorf("cannot load order %s: %v", id, err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not load order")
		return
	}
	if ord == nil {
		apt.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return
	}

	var payload addItemsPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if len(payload.Items) == 0 {
		apt.RespondError(w, http.StatusBadRequest, "Addition needs at least one item")
		return
	}

	items, okReq := h.createItems(w, r, ord, payload.Items, actor.Name)
	if !okReq {
		return
	}

	if err := h.fanout.CreateStationTickets(ctx, ord, items, true, payload.Priority); err != nil {
		log.Errorf("cannot fan out additional tickets for order %s: %v", ord.OrderNumber, err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not dispatch addition to stations")
		return
	}

	apt.Respond(w, http.StatusCreated, map[string]interface{}{
		"order": ord,
		"items": items,
	}, nil)
}

// ListOrders returns every order in the caller's business unit; that
// overview is a management view and requires the admin capability. With
// the number query parameter it instead looks up a single order by its
// display number, which is what the floor staff have in hand and is open
// to any authenticated actor.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOrders")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	buID, err := uuid.Parse(r.Header.Get(HeaderBusinessUnit))
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Missing business unit")
		return
	}

	if number := r.URL.Query().Get("number"); number != "" {
		ord, err := h.orders.GetByNumber(ctx, buID, ordernum.Parent(number))
		if err != nil {
			log.Errorf("cannot look up order %s: %v", number, err)
			apt.RespondError(w, http.StatusInternalServerError, "Could not look up order")
			return
		}
		if ord == nil {
			apt.RespondError(w, http.StatusNotFound, "Order not found")
			return
		}
		apt.Respond(w, http.StatusOK, map[string]interface{}{
			"orders": []*Order{ord},
		}, nil)
		return
	}

	if !identity.FromContext(ctx).Can(identity.CapAdmin) {
		apt.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	orders, err := h.orders.ListByBusinessUnit(ctx, buID)
	if err != nil {
		log.Errorf("cannot list orders: %v", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not list orders")
		return
	}
	if orders == nil {
		orders = []*Order{}
	}

	apt.Respond(w, http.StatusOK, map[string]interface{}{
		"orders": orders,
	}, nil)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetOrder")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	ord, err := h.orders.Get(ctx, id)
	if err != nil {
		log.Errorf("cannot load order %s: %v", id, err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not load order")
		return
	}
	if ord == nil {
		apt.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	apt.Respond(w, http.StatusOK, ord, nil)
}

func (h *Handler) ListOrderItems(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOrderItems")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	items, err := h.items.ListByOrder(ctx, id)
	if err != nil {
		log.Errorf("cannot list items for order %s: %v", id, err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not list order items")
		return
	}

	apt.Respond(w, http.StatusOK, map[string]interface{}{
		"items": items,
	}, nil)
}

func (h *Handler) decodeCreatePayload(w http.ResponseWriter, r *http.Request) (*createOrderPayload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return nil, false
	}

	var payload createOrderPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return nil, false
	}
	return &payload, true
}

func (h *Handler) createItems(w http.ResponseWriter, r *http.Request, ord *Order, payloads []itemPayload, createdBy string) ([]*OrderItem, bool) {
	log := h.log(r)
	ctx := r.Context()

	items := make([]*OrderItem, 0, len(payloads))
	for _, p := range payloads {
		if p.ItemType != ItemTypeFood && p.ItemType != ItemTypeDrink {
			apt.RespondError(w, http.StatusBadRequest, "Unknown item type: "+p.ItemType)
			return nil, false
		}

		menuItemID, err := uuid.Parse(p.MenuItemID)
		if err != nil {
			apt.RespondError(w, http.StatusBadRequest, "Invalid menu item ID")
			return nil, false
		}

		quantity := p.Quantity
		if quantity <= 0 {
			quantity = 1
		}

		item := NewOrderItem()
		item.OrderID = ord.ID
		item.MenuItemID = menuItemID
		item.Name = p.Name
		item.ItemType = p.ItemType
		item.Quantity = quantity
		item.Notes = p.Notes
		item.PrepTime = p.PrepTime
		item.CreatedBy = createdBy
		item.UpdatedBy = createdBy
		item.BeforeCreate()

		if err := h.items.Create(ctx, item); err != nil {
			log.Errorf("cannot create order item %s: %v", item.Name, err)
			apt.RespondError(w, http.StatusInternalServerError, "Could not create order items")
			return nil, false
		}
		items = append(items, item)
	}

	return items, true
}
