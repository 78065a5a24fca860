package cartstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cncraft/internal/cart"

	"go.uber.org/zap"
)

const (
	// CookieName is the client-held persistent cart cookie.
	CookieName = "persistent_cart"
	// CookieMaxAge is the persistent cookie's lifetime.
	CookieMaxAge = 30 * 24 * time.Hour
)

// Store keeps the two cart replicas consistent: the authoritative
// server-side session cart and the client-held persistent cookie. Reads
// prefer the session; the cookie is consulted only when the session is
// empty. Every save writes both.
type Store struct {
	sessions SessionBackend
	ttl      time.Duration
	log      *zap.Logger
}

func New(sessions SessionBackend, log *zap.Logger) *Store {
	return &Store{
		sessions: sessions,
		ttl:      CookieMaxAge,
		log:      log,
	}
}

// Load returns the working cart for a request. The session replica wins
// when non-empty; otherwise the cookie value is parsed, with any malformed
// payload degrading to an empty cart rather than an error.
func (s *Store) Load(ctx context.Context, sessionID, cookieValue string) (cart.Cart, error) {
	raw, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session cart read: %w", err)
	}
	if c := cart.Parse([]byte(raw)); !c.IsEmpty() {
		return c, nil
	}
	return cart.Parse([]byte(cookieValue)), nil
}

// Save writes the canonical cart to both replicas and returns the value to
// set on the persistent cookie. Callers must set the cookie on the
// response; skipping it would let the replicas drift.
func (s *Store) Save(ctx context.Context, sessionID string, c cart.Cart) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("serialize cart: %w", err)
	}
	if err := s.sessions.Set(ctx, sessionID, string(data), s.ttl); err != nil {
		return "", fmt.Errorf("session cart write: %w", err)
	}
	return string(data), nil
}

// Clear drops both replicas. The returned cookie value is the cleared
// cookie payload (callers expire the cookie alongside).
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("session cart delete: %w", err)
	}
	return nil
}

// MergeOnLogin unions the session cart with the cookie cart (session wins
// on collisions), persists the result to the session and tells the caller
// to drop the cookie: after login the cart lives server-side only.
func (s *Store) MergeOnLogin(ctx context.Context, sessionID, cookieValue string) (cart.Cart, error) {
	raw, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session cart read: %w", err)
	}
	sessionCart := cart.Parse([]byte(raw))
	cookieCart := cart.Parse([]byte(cookieValue))

	merged := cart.Merge(sessionCart, cookieCart)

	data, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("serialize cart: %w", err)
	}
	if err := s.sessions.Set(ctx, sessionID, string(data), s.ttl); err != nil {
		return nil, fmt.Errorf("session cart write: %w", err)
	}

	s.log.Debug("merged guest cookie cart into session",
		zap.Int("session_lines", len(sessionCart)),
		zap.Int("cookie_lines", len(cookieCart)),
		zap.Int("merged_lines", len(merged)),
	)
	return merged, nil
}
