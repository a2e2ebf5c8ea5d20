package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("order not found")

// Ledger persists finalized orders. Records are insert-only.
type Ledger struct{ DB *pgxpool.Pool }

func (l *Ledger) Save(ctx context.Context, o *Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	_, err = l.DB.Exec(ctx, `
		INSERT INTO orders(id, account, name, address, phone, items, total, payment_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, o.ID, o.Account, o.Name, o.Address, o.Phone, items, o.Total, o.PaymentMethod, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (l *Ledger) Get(ctx context.Context, id string) (*Order, error) {
	var (
		o     Order
		items []byte
	)
	err := l.DB.QueryRow(ctx, `
		SELECT id, account, name, address, phone, items, total, payment_method, created_at
		FROM orders WHERE id = $1
	`, id).Scan(&o.ID, &o.Account, &o.Name, &o.Address, &o.Phone, &items, &o.Total, &o.PaymentMethod, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	return &o, nil
}
