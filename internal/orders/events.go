package orders

import (
	"encoding/json"
	"time"
)

const EventOrderPlaced = "OrderPlaced"

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type OrderPlacedPayload struct {
	OrderID       string     `json:"order_id"`
	Account       string     `json:"account"`
	Items         []CartLine `json:"items"`
	Total         float64    `json:"total"`
	PaymentMethod string     `json:"payment_method"`
	PlacedAt      time.Time  `json:"placed_at"`
}
