package station

import (
	"context"
	"net/http"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/passlineclub/passline/internal/enums/station"
)

// HeaderBusinessUnit carries the gateway-resolved business unit scope.
const HeaderBusinessUnit = "X-Business-Unit"

type Handler struct {
	feed    *Feed
	service *Service
	config  *apt.Config
	logger  apt.Logger
	tlm     *telemetry.HTTP
}

type HandlerDeps struct {
	Feed    *Feed
	Service *Service
}

func NewHandler(deps HandlerDeps, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		feed:    deps.Feed,
		service: deps.Service,
		config:  config,
		logger:  logger,
		tlm:     telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/stations/{station}", func(r chi.Router) {
		r.Get("/tickets", h.ListActiveTickets)
		r.Get("/tickets/completed", h.ListCompletedTickets)
	})

	r.Route("/tickets", func(r chi.Router) {
		r.Patch("/{id}/start", h.StartPreparing)
		r.Patch("/{id}/ready", h.MarkReady)
		r.Patch("/{id}/serve", h.MarkServed)
	})
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", apt.RequestIDFrom(r.Context()))
}

func (h *Handler) ListActiveTickets(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListActiveTickets")
	defer finish()
	ctx := r.Context()

	st, buID, okReq := h.requireScope(w, r)
	if !okReq {
		return
	}

	var tickets []Ticket
	if number := r.URL.Query().Get("order"); number != "" {
		tickets = h.feed.ListForOrder(ctx, buID, st.Code(), number)
	} else {
		tickets = h.feed.ListActive(ctx, buID, st.Code())
	}
	apt.Respond(w, http.StatusOK, map[string]interface{}{
		"tickets": tickets,
	}, nil)
}

func (h *Handler) ListCompletedTickets(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListCompletedTickets")
	defer finish()
	ctx := r.Context()

	st, buID, okReq := h.requireScope(w, r)
	if !okReq {
		return
	}

	tickets := h.feed.ListCompleted(ctx, buID, st.Code())
	apt.Respond(w, http.StatusOK, map[string]interface{}{
		"tickets": tickets,
	}, nil)
}

func (h *Handler) StartPreparing(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Handler.StartPreparing", h.service.StartPreparing)
}

func (h *Handler) MarkReady(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Handler.MarkReady", h.service.MarkReady)
}

func (h *Handler) MarkServed(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Handler.MarkServed", h.service.MarkServed)
}

// transition runs one state-machine operation and returns its Result as
// the body. The operation itself never errors; callers branch on the
// success flag and surface the message as a notice.
func (h *Handler) transition(w http.ResponseWriter, r *http.Request, name string, op func(ctx context.Context, id uuid.UUID) Result) {
	w, r, finish := h.tlm.Start(w, r, name)
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid ticket ID")
		return
	}

	result := op(ctx, id)
	if !result.Success {
		log.Info("ticket transition rejected", "ticket_id", id, "reason", result.Error)
	}

	apt.Respond(w, http.StatusOK, result, nil)
}

func (h *Handler) requireScope(w http.ResponseWriter, r *http.Request) (*station.Station, uuid.UUID, bool) {
	st := station.ByName(chi.URLParam(r, "station"))
	if st == nil {
		apt.RespondError(w, http.StatusBadRequest, "Unknown station")
		return nil, uuid.Nil, false
	}

	buID, err := uuid.Parse(r.Header.Get(HeaderBusinessUnit))
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Missing business unit")
		return nil, uuid.Nil, false
	}

	return st, buID, true
}
