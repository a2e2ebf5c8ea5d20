package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anantafoods/storefront/internal/orders"
	"github.com/anantafoods/storefront/internal/redisx"
)

// record is the JSON shape of the sess:{token} key. The cart lives under its
// own key so a big cart does not ride along on every login-state write.
type record struct {
	LoggedIn bool   `json:"logged_in"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
}

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Load fetches the session for a token. An unknown or expired token yields a
// fresh anonymous session under the same token.
func (st *Store) Load(ctx context.Context, token string) (*Session, error) {
	s := &Session{Token: token}

	data, err := st.rdb.Get(ctx, fmt.Sprintf(redisx.KeySession, token)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		// fresh session
	case err != nil:
		return nil, fmt.Errorf("redis get session: %w", err)
	default:
		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal session: %w", err)
		}
		s.LoggedIn = rec.LoggedIn
		s.Username = rec.Username
		s.Email = rec.Email
		s.Role = rec.Role
	}

	cart, err := st.rdb.Get(ctx, fmt.Sprintf(redisx.KeyCart, token)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return nil, fmt.Errorf("redis get cart: %w", err)
	default:
		var lines []orders.CartLine
		if err := json.Unmarshal(cart, &lines); err != nil {
			return nil, fmt.Errorf("unmarshal cart: %w", err)
		}
		s.Cart = lines
	}

	return s, nil
}

// Save writes the session back and refreshes both TTLs. Last write wins when
// concurrent requests race on the same token.
func (st *Store) Save(ctx context.Context, s *Session) error {
	rec, err := json.Marshal(record{
		LoggedIn: s.LoggedIn,
		Username: s.Username,
		Email:    s.Email,
		Role:     s.Role,
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := st.rdb.Set(ctx, fmt.Sprintf(redisx.KeySession, s.Token), rec, st.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}

	cart, err := json.Marshal(s.Cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := st.rdb.Set(ctx, fmt.Sprintf(redisx.KeyCart, s.Token), cart, st.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	s.dirty = false
	return nil
}

// Destroy removes all state for a token. Used by logout; the cart goes with
// the session.
func (st *Store) Destroy(ctx context.Context, token string) error {
	keys := []string{
		fmt.Sprintf(redisx.KeySession, token),
		fmt.Sprintf(redisx.KeyCart, token),
	}
	if err := st.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}
