package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists carts in Redis keyed by org and customer, with a TTL so
// abandoned selections age out.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a Redis-backed cart store.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if client == nil {
		panic("cart: redis client required")
	}
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

func cartKey(orgID, customerID string) string {
	return fmt.Sprintf("cart:%s:%s", orgID, customerID)
}

// Get loads the stored cart. Returns ErrCartNotFound when none exists.
func (s *Store) Get(ctx context.Context, orgID, customerID string) (*Cart, error) {
	raw, err := s.client.Get(ctx, cartKey(orgID, customerID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cart: load: %w", err)
	}
	var c Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("cart: decode stored cart: %w", err)
	}
	return &c, nil
}

// Save stores the cart and refreshes its TTL.
func (s *Store) Save(ctx context.Context, orgID, customerID string, c *Cart) error {
	c.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("cart: encode cart: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(orgID, customerID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("cart: save: %w", err)
	}
	return nil
}

// Clear removes the stored cart, typically after a successful order.
func (s *Store) Clear(ctx context.Context, orgID, customerID string) error {
	if err := s.client.Del(ctx, cartKey(orgID, customerID)).Err(); err != nil {
		return fmt.Errorf("cart: clear: %w", err)
	}
	return nil
}
