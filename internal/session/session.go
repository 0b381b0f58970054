// Package session issues and resolves login tokens for storefront users.
package session

import (
	"context"
	"strconv"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"tidewear/internal/util"
)

// Store maps session tokens to user ids. Absence of a token is reported
// as false, not as an error.
type Store interface {
	NewSession(userID int) (string, error)
	UserIDByToken(token string) (int, bool, error)
	DeleteSession(token string) error
}

const jwtIssuer = "tidewear"

// JWTStore issues stateless HS256 tokens. DeleteSession is a no-op;
// tokens simply expire.
type JWTStore struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTStore(secret string, ttl time.Duration) *JWTStore {
	return &JWTStore{secret: []byte(secret), ttl: ttl}
}

func (s *JWTStore) NewSession(userID int) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		Issuer:    jwtIssuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        util.NewID(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *JWTStore) UserIDByToken(token string) (int, bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, false, nil
	}
	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(jwtIssuer),
		jwt.WithIssuedAt(),
	)
	if err != nil || !parsed.Valid {
		// Expired or tampered tokens behave like missing sessions.
		return 0, false, nil
	}
	id, convErr := strconv.Atoi(claims.Subject)
	if convErr != nil || id <= 0 {
		return 0, false, nil
	}
	return id, true, nil
}

func (s *JWTStore) DeleteSession(_ string) error {
	return nil
}

const redisKeyPrefix = "session:"

// RedisStore keeps opaque tokens in Redis with a TTL, so logout
// invalidates the token immediately.
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

func (s *RedisStore) NewSession(userID int) (string, error) {
	token := util.NewID()
	ctx, cancel := opContext()
	defer cancel()
	if err := s.client.Set(ctx, redisKeyPrefix+token, strconv.Itoa(userID), s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisStore) UserIDByToken(token string) (int, bool, error) {
	ctx, cancel := opContext()
	defer cancel()
	val, err := s.client.Get(ctx, redisKeyPrefix+token).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, convErr := strconv.Atoi(val)
	if convErr != nil || id <= 0 {
		return 0, false, nil
	}
	return id, true, nil
}

func (s *RedisStore) DeleteSession(token string) error {
	ctx, cancel := opContext()
	defer cancel()
	if err := s.client.Del(ctx, redisKeyPrefix+token).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 3*time.Second)
}
