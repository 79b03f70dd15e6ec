// Package session keeps the short-lived identity state that does not
// belong in Postgres: revoked token ids and one-time password-reset
// tokens. All reads and writes are request-scoped; nothing here runs in
// the background.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrTokenNotFound = errors.New("token not found")

type Store struct {
	client *redis.Client
}

func NewStore(url string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return &Store{client: redis.NewClient(opts)}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// RevokeToken blacklists a token id until its natural expiry.
func (s *Store) RevokeToken(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revokedKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *Store) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, err := s.client.Get(ctx, revokedKey(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return true, nil
}

// SetResetToken stores a one-time password-reset token for an account.
func (s *Store) SetResetToken(ctx context.Context, token, accountID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, resetKey(token), accountID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

// ConsumeResetToken returns the account id for a reset token and deletes
// it, so the token cannot be replayed.
func (s *Store) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	accountID, err := s.client.GetDel(ctx, resetKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to consume reset token: %w", err)
	}
	return accountID, nil
}

func revokedKey(tokenID string) string {
	return "careflow:revoked:" + tokenID
}

func resetKey(token string) string {
	return "careflow:reset:" + token
}
