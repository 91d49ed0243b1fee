// Package identity resolves the acting user for a request. The service sits
// behind an internal gateway that authenticates sessions and forwards the
// user as headers; capabilities are normalized from role names once, here,
// so no other package compares role strings.
package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	HeaderUserID   = "X-User-Id"
	HeaderUserName = "X-User-Name"
	HeaderRoles    = "X-User-Roles"
)

const (
	CapTransitionTickets = "tickets.transition"
	CapPlaceOrders       = "orders.place"
	CapAdmin             = "admin"
)

type Actor struct {
	ID           uuid.UUID
	Name         string
	Capabilities map[string]bool
}

func (a *Actor) Can(capability string) bool {
	if a == nil {
		return false
	}
	return a.Capabilities[capability]
}

// ResolveCapabilities maps role names to a capability set. Role names are
// matched case-insensitively; every authenticated role may work tickets
// and place orders, admins and managers additionally get the unit-wide
// management views.
func ResolveCapabilities(roles []string) map[string]bool {
	caps := map[string]bool{
		CapTransitionTickets: true,
		CapPlaceOrders:       true,
	}
	for _, r := range roles {
		switch strings.ToLower(strings.TrimSpace(r)) {
		case "admin", "manager":
			caps[CapAdmin] = true
		}
	}
	return caps
}

type ctxKey struct{}

// WithActor returns a context carrying the actor.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, actor)
}

// FromContext returns the actor for the request, or nil when the request
// was not authenticated.
func FromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(ctxKey{}).(*Actor)
	return actor
}

// Middleware extracts the gateway-forwarded user headers into an Actor.
// Requests without a parseable user id pass through unauthenticated;
// mutating operations reject them downstream.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idStr := r.Header.Get(HeaderUserID)
			id, err := uuid.Parse(idStr)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			var roles []string
			if raw := r.Header.Get(HeaderRoles); raw != "" {
				roles = strings.Split(raw, ",")
			}

			actor := &Actor{
				ID:           id,
				Name:         r.Header.Get(HeaderUserName),
				Capabilities: ResolveCapabilities(roles),
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}
