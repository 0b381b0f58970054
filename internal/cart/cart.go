// Package cart holds pre-checkout shopping carts keyed by an opaque token.
// Carts are ephemeral; they never touch the relational store.
package cart

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Item is one product line in a cart. Price is resolved at checkout,
// not stored here, so catalog edits never leave stale prices behind.
type Item struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// Cart is the full contents for one token.
type Cart struct {
	Token string `json:"token"`
	Items []Item `json:"items"`
}

// Store keeps carts by token. Get on an unknown token returns an empty
// cart rather than an error, so a fresh browser just sees nothing.
type Store interface {
	NewToken() string
	Get(ctx context.Context, token string) (Cart, error)
	SetItem(ctx context.Context, token string, productID, quantity int) (Cart, error)
	Clear(ctx context.Context, token string) error
}

// MemoryStore is the in-process backend used in tests and the demo setup.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]Item
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]Item)}
}

func (s *MemoryStore) NewToken() string {
	return uuid.NewString()
}

func (s *MemoryStore) Get(_ context.Context, token string) (Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]Item, len(s.carts[token]))
	copy(items, s.carts[token])
	return Cart{Token: token, Items: items}, nil
}

func (s *MemoryStore) SetItem(_ context.Context, token string, productID, quantity int) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[token] = setItem(s.carts[token], productID, quantity)
	items := make([]Item, len(s.carts[token]))
	copy(items, s.carts[token])
	return Cart{Token: token, Items: items}, nil
}

func (s *MemoryStore) Clear(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, token)
	return nil
}

const redisKeyPrefix = "cart:"

// RedisStore keeps carts in Redis with a sliding TTL, so abandoned
// carts clean themselves up.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(addr, password string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		ttl: ttl,
	}
}

// NewRedisStoreWithClient is used by tests to inject a prepared client.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) NewToken() string {
	return uuid.NewString()
}

func (s *RedisStore) Get(ctx context.Context, token string) (Cart, error) {
	items, err := s.load(ctx, token)
	if err != nil {
		return Cart{}, err
	}
	return Cart{Token: token, Items: items}, nil
}

func (s *RedisStore) SetItem(ctx context.Context, token string, productID, quantity int) (Cart, error) {
	items, err := s.load(ctx, token)
	if err != nil {
		return Cart{}, err
	}
	items = setItem(items, productID, quantity)
	if err := s.save(ctx, token, items); err != nil {
		return Cart{}, err
	}
	return Cart{Token: token, Items: items}, nil
}

func (s *RedisStore) Clear(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+token).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) load(ctx context.Context, token string) ([]Item, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+token).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *RedisStore) save(ctx context.Context, token string, items []Item) error {
	if len(items) == 0 {
		return s.Clear(ctx, token)
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKeyPrefix+token, raw, s.ttl).Err()
}

// setItem upserts a line; quantity <= 0 removes it.
func setItem(items []Item, productID, quantity int) []Item {
	for i, it := range items {
		if it.ProductID != productID {
			continue
		}
		if quantity <= 0 {
			return append(items[:i], items[i+1:]...)
		}
		items[i].Quantity = quantity
		return items
	}
	if quantity <= 0 {
		return items
	}
	return append(items, Item{ProductID: productID, Quantity: quantity})
}
