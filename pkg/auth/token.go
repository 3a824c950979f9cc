package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// DefaultSessionTTL is how long a login token stays valid.
const DefaultSessionTTL = 24 * time.Hour

// Session is one issued bearer token.
type Session struct {
	Token     string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// TokenManager issues and validates bearer session tokens. Tokens live in
// memory only; a restart logs everyone out.
type TokenManager struct {
	sessions map[string]*Session
	ttl      time.Duration
	mu       sync.RWMutex
}

// NewTokenManager creates a token manager with the given session TTL.
func NewTokenManager(ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &TokenManager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Issue creates a new session token for the username.
func (tm *TokenManager) Issue(username string) (*Session, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return nil, fmt.Errorf("failed to generate random token: %w", err)
	}

	session := &Session{
		Token:     hex.EncodeToString(bytes),
		Username:  username,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(tm.ttl),
	}

	tm.mu.Lock()
	tm.sessions[session.Token] = session
	tm.mu.Unlock()

	return session, nil
}

// Validate resolves a bearer token to its username.
func (tm *TokenManager) Validate(token string) (string, error) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	session, exists := tm.sessions[token]
	if !exists {
		return "", fmt.Errorf("invalid token")
	}
	if time.Now().After(session.ExpiresAt) {
		return "", fmt.Errorf("token expired")
	}
	return session.Username, nil
}

// Revoke invalidates one token.
func (tm *TokenManager) Revoke(token string) {
	tm.mu.Lock()
	delete(tm.sessions, token)
	tm.mu.Unlock()
}

// RevokeUser invalidates every session the user holds, e.g. after a
// password change.
func (tm *TokenManager) RevokeUser(username string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	for token, session := range tm.sessions {
		if session.Username == username {
			delete(tm.sessions, token)
		}
	}
}

// CleanupExpired removes expired sessions.
func (tm *TokenManager) CleanupExpired() {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	now := time.Now()
	for token, session := range tm.sessions {
		if now.After(session.ExpiresAt) {
			delete(tm.sessions, token)
		}
	}
}
