package orders

import "time"

// CartLine is one entry in a session cart. Orders keep a snapshot of these;
// the json tags match the form payload the storefront pages submit.
type CartLine struct {
	ProductID string `json:"id"`
	Name      string `json:"name"`
	Weight    string `json:"weight"`
	Price     int    `json:"price"`
	Quantity  int    `json:"quantity"`
}

// Order is written exactly once at checkout and never updated. Items and
// Total are a point-in-time copy of the cart at submission; later catalog
// price changes do not touch stored orders.
type Order struct {
	ID            string
	Account       string // account email, or "Guest"
	Name          string
	Address       string
	Phone         string
	Items         []CartLine
	Total         float64
	PaymentMethod string
	CreatedAt     time.Time
}
