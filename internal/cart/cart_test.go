package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStoreWithClient(client, time.Hour),
	}
}

func TestCartLifecycle(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			token := s.NewToken()
			if token == "" {
				t.Fatalf("empty token")
			}

			c, err := s.Get(ctx, token)
			if err != nil {
				t.Fatalf("get fresh cart: %v", err)
			}
			if len(c.Items) != 0 {
				t.Fatalf("fresh cart not empty: %+v", c.Items)
			}

			if _, err := s.SetItem(ctx, token, 1, 2); err != nil {
				t.Fatalf("set item: %v", err)
			}
			c, err = s.SetItem(ctx, token, 2, 1)
			if err != nil {
				t.Fatalf("set item: %v", err)
			}
			if len(c.Items) != 2 {
				t.Fatalf("items = %+v, want 2 lines", c.Items)
			}

			// Upsert replaces the quantity, it does not add a line.
			c, err = s.SetItem(ctx, token, 1, 5)
			if err != nil {
				t.Fatalf("set item: %v", err)
			}
			if len(c.Items) != 2 || c.Items[0].Quantity != 5 {
				t.Fatalf("upsert failed: %+v", c.Items)
			}

			// Zero quantity removes the line.
			c, err = s.SetItem(ctx, token, 1, 0)
			if err != nil {
				t.Fatalf("remove item: %v", err)
			}
			if len(c.Items) != 1 || c.Items[0].ProductID != 2 {
				t.Fatalf("remove failed: %+v", c.Items)
			}

			if err := s.Clear(ctx, token); err != nil {
				t.Fatalf("clear: %v", err)
			}
			c, err = s.Get(ctx, token)
			if err != nil {
				t.Fatalf("get after clear: %v", err)
			}
			if len(c.Items) != 0 {
				t.Fatalf("cart not cleared: %+v", c.Items)
			}
		})
	}
}

func TestCartsAreIsolatedByToken(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			a, b := s.NewToken(), s.NewToken()
			if a == b {
				t.Fatalf("tokens collide")
			}
			if _, err := s.SetItem(ctx, a, 1, 1); err != nil {
				t.Fatalf("set item: %v", err)
			}
			c, err := s.Get(ctx, b)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if len(c.Items) != 0 {
				t.Fatalf("cart b sees cart a items: %+v", c.Items)
			}
		})
	}
}

func TestRedisCartExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	s := NewRedisStoreWithClient(client, time.Minute)

	ctx := context.Background()
	token := s.NewToken()
	if _, err := s.SetItem(ctx, token, 1, 1); err != nil {
		t.Fatalf("set item: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	c, err := s.Get(ctx, token)
	if err != nil {
		t.Fatalf("get after expiry: %v", err)
	}
	if len(c.Items) != 0 {
		t.Fatalf("expired cart still has items: %+v", c.Items)
	}
}
