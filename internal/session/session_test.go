package session

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestJWTStoreRoundTrip(t *testing.T) {
	s := NewJWTStore("test-secret", time.Hour)

	token, err := s.NewSession(42)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	id, ok, err := s.UserIDByToken(token)
	if err != nil {
		t.Fatalf("resolve token: %v", err)
	}
	if !ok || id != 42 {
		t.Fatalf("got id=%d ok=%v, want 42 true", id, ok)
	}
}

func TestJWTStoreRejectsTamperedAndExpired(t *testing.T) {
	s := NewJWTStore("test-secret", time.Hour)
	token, err := s.NewSession(7)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	if _, ok, err := s.UserIDByToken(token + "x"); err != nil || ok {
		t.Fatalf("tampered token accepted: ok=%v err=%v", ok, err)
	}

	other := NewJWTStore("different-secret", time.Hour)
	if _, ok, err := other.UserIDByToken(token); err != nil || ok {
		t.Fatalf("wrong secret accepted: ok=%v err=%v", ok, err)
	}

	expired := NewJWTStore("test-secret", -time.Minute)
	token, err = expired.NewSession(7)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, ok, err := expired.UserIDByToken(token); err != nil || ok {
		t.Fatalf("expired token accepted: ok=%v err=%v", ok, err)
	}
}

func newMiniredisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStoreWithClient(client, ttl), mr
}

func TestRedisStoreRoundTripAndLogout(t *testing.T) {
	s, _ := newMiniredisStore(t, time.Hour)

	token, err := s.NewSession(9)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	id, ok, err := s.UserIDByToken(token)
	if err != nil {
		t.Fatalf("resolve token: %v", err)
	}
	if !ok || id != 9 {
		t.Fatalf("got id=%d ok=%v, want 9 true", id, ok)
	}

	if err := s.DeleteSession(token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, ok, err := s.UserIDByToken(token); err != nil || ok {
		t.Fatalf("deleted token still resolves: ok=%v err=%v", ok, err)
	}
}

func TestRedisStoreTokensExpire(t *testing.T) {
	s, mr := newMiniredisStore(t, time.Minute)

	token, err := s.NewSession(3)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, ok, err := s.UserIDByToken(token); err != nil || ok {
		t.Fatalf("expired token still resolves: ok=%v err=%v", ok, err)
	}
}

func TestRedisStoreUnknownTokenIsNotAnError(t *testing.T) {
	s, _ := newMiniredisStore(t, time.Minute)

	if _, ok, err := s.UserIDByToken("no-such-token"); err != nil || ok {
		t.Fatalf("unknown token: ok=%v err=%v", ok, err)
	}
	if err := s.DeleteSession("no-such-token"); err != nil {
		t.Fatalf("deleting unknown token: %v", err)
	}
}
