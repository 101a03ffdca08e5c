package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/coreforge/storefront/internal/domain"
)

// keyPrefix gives every session cart a stable storage key.
const keyPrefix = "cart:"

// CartStore implements repository.CartStore using Redis. The stored value is
// the JSON-encoded line-item array, mirroring the durable client-side cart
// storage the storefront relies on.
type CartStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartStore creates a Redis-backed cart store.
func NewCartStore(client *redis.Client, ttl time.Duration) *CartStore {
	return &CartStore{client: client, ttl: ttl}
}

// Load retrieves the cart for a session. An absent key is an empty cart.
func (s *CartStore) Load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	data, err := s.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return &domain.Cart{}, nil
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var items []domain.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}

	return &domain.Cart{Items: items}, nil
}

// Save persists the full line-item collection under the session key.
func (s *CartStore) Save(ctx context.Context, sessionID string, cart *domain.Cart) error {
	items := cart.Items
	if items == nil {
		items = []domain.LineItem{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+sessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}

// Delete removes the stored cart for a session.
func (s *CartStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}
