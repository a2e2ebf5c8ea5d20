// Package notify sends post-purchase communications: a confirmation email and
// an optional topic publish. Both run after the order is committed and both
// are best-effort — a lost email is recoverable from the order ledger, so
// failures here are logged and swallowed, never surfaced to the buyer.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
	"gopkg.in/gomail.v2"

	kafkax "github.com/anantafoods/storefront/internal/kafka"
	"github.com/anantafoods/storefront/internal/orders"
)

type Mailer interface {
	Send(to, subject, body string) error
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// SMTPMailer sends plain-text mail through a relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	return &SMTPMailer{dialer: gomail.NewDialer(host, port, user, password), from: from}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}

// Dispatcher fans a placed order out to whichever channels are configured.
// A nil Mailer or Producer simply disables that channel.
type Dispatcher struct {
	Mailer   Mailer
	Producer Publisher
	Service  string
	Log      zerolog.Logger
}

func (d *Dispatcher) OrderPlaced(ctx context.Context, o *orders.Order, recipient string) {
	if d.Mailer != nil && recipient != "" {
		subject := fmt.Sprintf("Order confirmation %s", o.ID)
		if err := d.Mailer.Send(recipient, subject, ConfirmationBody(o)); err != nil {
			d.Log.Warn().Err(err).Str("order_id", o.ID).Msg("confirmation email failed")
		}
	}

	if d.Producer != nil {
		ev := orders.Envelope{
			EventID:       uuid.NewString(),
			EventType:     orders.EventOrderPlaced,
			EventVersion:  1,
			OccurredAt:    time.Now().UTC(),
			Producer:      d.Service,
			CorrelationID: o.ID,
			Payload: kafkax.MustMarshal(orders.OrderPlacedPayload{
				OrderID:       o.ID,
				Account:       o.Account,
				Items:         o.Items,
				Total:         o.Total,
				PaymentMethod: o.PaymentMethod,
				PlacedAt:      o.CreatedAt,
			}),
		}
		d.Producer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPlaced)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}
}

// ConfirmationBody renders the itemized plain-text email.
func ConfirmationBody(o *orders.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nYour order %s has been placed successfully!\n\n", o.Name, o.ID)
	b.WriteString("Items:\n")
	for _, it := range o.Items {
		fmt.Fprintf(&b, "  - %s (%sg) x %d @ %d\n", it.Name, it.Weight, it.Quantity, it.Price)
	}
	fmt.Fprintf(&b, "\nTotal: %.2f\nPayment: %s\n\nDelivery address:\n%s\nPhone: %s\n", o.Total, o.PaymentMethod, o.Address, o.Phone)
	return b.String()
}
