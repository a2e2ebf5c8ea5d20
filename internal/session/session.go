// Package session holds per-browser state: login flags and the shopping
// cart, keyed by a token issued in a cookie and backed by Redis. Handlers get
// an explicit *Session from the request context; nothing session-scoped lives
// in process globals.
package session

import (
	"context"

	"github.com/anantafoods/storefront/internal/orders"
)

type Session struct {
	Token    string
	LoggedIn bool
	Username string
	Email    string
	Role     string
	Cart     []orders.CartLine

	dirty bool
}

// Login marks the session authenticated. The token is not rotated, so a cart
// built before login carries over.
func (s *Session) Login(username, email string) {
	s.LoggedIn = true
	s.Username = username
	s.Email = email
	s.dirty = true
}

// AddLine appends a cart line. Duplicate product/weight pairs are kept as
// separate lines, matching what the cart page displays.
func (s *Session) AddLine(l orders.CartLine) {
	s.Cart = append(s.Cart, l)
	s.dirty = true
}

// ClearCart drops every line. Called only after a successful checkout.
func (s *Session) ClearCart() {
	s.Cart = nil
	s.dirty = true
}

// Dirty reports whether the session needs to be written back.
func (s *Session) Dirty() bool { return s.dirty }

type ctxKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the request's session. A nil return means the session
// middleware is not installed on the route.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
