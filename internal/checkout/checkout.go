// Package checkout runs the order-placement workflow: validate the submitted
// form and cart, persist the order, notify the buyer, report back so the
// handler can clear the cart. Persistence is the one step whose failure must
// abort the user-visible success; notification is best-effort because the
// order record, not the email, is the source of truth.
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/anantafoods/storefront/internal/orders"
)

// Messages shown on the checkout form, one per violated rule.
const (
	MsgFieldsRequired = "All fields are required."
	MsgBadPhone       = "Phone number must be exactly 10 digits."
	MsgBadCartData    = "Invalid cart data format."
	MsgEmptyCart      = "Your cart is empty."
	MsgSaveFailed     = "Failed to save order. Please try again later."
	MsgSuccess        = "Your order has been placed successfully!"
)

type Ledger interface {
	Save(ctx context.Context, o *orders.Order) error
}

type Notifier interface {
	OrderPlaced(ctx context.Context, o *orders.Order, recipient string)
}

// Form carries the raw POST fields. CartData and TotalAmount arrive as the
// serialized cart the page submits alongside the address fields.
type Form struct {
	Name        string
	Address     string
	Phone       string
	Payment     string
	CartData    string
	TotalAmount string
}

type Result struct {
	State   orders.CheckoutState
	OrderID string
	Message string
}

type Service struct {
	Ledger   Ledger
	Notifier Notifier
	Log      zerolog.Logger
}

// Place runs the workflow for one submission. Rejected and Failed results
// carry the message to re-render the form with; Cleared means the order is
// committed and the caller should empty the session cart.
func (s *Service) Place(ctx context.Context, f Form, account, recipient string) Result {
	st := step(orders.StateIdle, orders.StateValidating)

	f.Name = strings.TrimSpace(f.Name)
	f.Address = strings.TrimSpace(f.Address)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Payment = strings.TrimSpace(f.Payment)

	if f.Name == "" || f.Address == "" || f.Phone == "" || f.Payment == "" {
		return Result{State: step(st, orders.StateRejected), Message: MsgFieldsRequired}
	}
	if !tenDigits(f.Phone) {
		return Result{State: step(st, orders.StateRejected), Message: MsgBadPhone}
	}

	var items []orders.CartLine
	if err := json.Unmarshal([]byte(f.CartData), &items); err != nil {
		return Result{State: step(st, orders.StateRejected), Message: MsgBadCartData}
	}
	total, err := strconv.ParseFloat(strings.TrimSpace(f.TotalAmount), 64)
	if err != nil {
		return Result{State: step(st, orders.StateRejected), Message: MsgBadCartData}
	}
	if len(items) == 0 {
		return Result{State: step(st, orders.StateRejected), Message: MsgEmptyCart}
	}

	if account == "" {
		account = "Guest"
	}
	o := &orders.Order{
		ID:            uuid.NewString(),
		Account:       account,
		Name:          f.Name,
		Address:       f.Address,
		Phone:         f.Phone,
		Items:         items,
		Total:         total,
		PaymentMethod: f.Payment,
		CreatedAt:     time.Now().UTC(),
	}

	st = step(st, orders.StatePersisting)
	if err := s.Ledger.Save(ctx, o); err != nil {
		s.Log.Error().Err(err).Str("order_id", o.ID).Msg("order save failed")
		return Result{State: step(st, orders.StateFailed), Message: MsgSaveFailed}
	}

	st = step(st, orders.StateNotifying)
	if s.Notifier != nil {
		s.Notifier.OrderPlaced(ctx, o, recipient)
	}

	return Result{State: step(st, orders.StateCleared), OrderID: o.ID, Message: MsgSuccess}
}

// step advances the workflow, panicking on a move the transition table
// forbids. The table and this code change together; a panic here is a bug.
func step(from, to orders.CheckoutState) orders.CheckoutState {
	if !orders.CanTransition(from, to) {
		panic(fmt.Sprintf("checkout: illegal transition %s -> %s", from, to))
	}
	return to
}

func tenDigits(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
