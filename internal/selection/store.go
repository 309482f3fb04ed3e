// Package selection persists the shopper's checkout choices between
// widget sessions: the shipping method picked inside the provider
// widget and the provider order id of an in-flight checkout. The
// assembler only reads the shipping selection; writes happen when the
// storefront reports a widget event.
package selection

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	shippingMethodKey = "shipping_method"
	orderIDKey        = "id"
)

// Store keeps checkout selections in Redis, namespaced per store view.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore constructs a selection store. Entries expire after ttl so a
// stale selection cannot outlive the checkout session for long.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// keyPrefix mirrors the storefront's storage target naming: the store
// code prefixes the kco namespace when present.
func keyPrefix(storeCode string) string {
	if storeCode == "" {
		return "kco"
	}
	return storeCode + "-kco"
}

func (s *Store) key(storeCode, name string) string {
	return keyPrefix(storeCode) + "/" + name
}

// ShippingMethodID returns the persisted shipping-method identifier,
// or "" when none is stored. Implements kco.SelectionReader.
func (s *Store) ShippingMethodID(ctx context.Context, storeCode string) (string, error) {
	return s.get(ctx, s.key(storeCode, shippingMethodKey))
}

// SetShippingMethodID records the shipping method chosen in the
// provider widget.
func (s *Store) SetShippingMethodID(ctx context.Context, storeCode, id string) error {
	return s.set(ctx, s.key(storeCode, shippingMethodKey), id)
}

// OrderID returns the provider order id of the in-flight checkout.
func (s *Store) OrderID(ctx context.Context, storeCode string) (string, error) {
	return s.get(ctx, s.key(storeCode, orderIDKey))
}

// SetOrderID records the provider order id after a successful create.
func (s *Store) SetOrderID(ctx context.Context, storeCode, id string) error {
	return s.set(ctx, s.key(storeCode, orderIDKey), id)
}

// ClearOrderID drops the stored order id, e.g. after confirmation.
func (s *Store) ClearOrderID(ctx context.Context, storeCode string) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Del(ctx, s.key(storeCode, orderIDKey)).Err()
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	if s == nil || s.client == nil {
		return "", nil
	}
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Set(ctx, key, value, s.ttl).Err()
}
