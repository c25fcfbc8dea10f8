package devlicense

// Package devlicense implements a local stand-in for the remote
// identity/license service so the portal can run without the production
// backend. It serves the same /api/portal contract the proxy consumes.

import (
	"context"
	"sync"
	"time"
)

// IssuedCode is a pending one-time login code for an email address.
type IssuedCode struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Session is a bearer token issued after a successful code verification.
type Session struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CodeStore persists pending one-time codes keyed by email.
type CodeStore interface {
	SaveCode(ctx context.Context, code IssuedCode) error
	GetCode(ctx context.Context, email string) (IssuedCode, error)
	DeleteCode(ctx context.Context, email string) error
}

// SessionStore persists issued sessions keyed by bearer token.
type SessionStore interface {
	SaveSession(ctx context.Context, sess Session) error
	GetSession(ctx context.Context, token string) (Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// ErrNotFound is returned when a code or session does not exist or expired.
type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

var ErrNotFound error = notFoundError{}

// MemoryStore is an in-process CodeStore and SessionStore. It is the default
// backend and the one tests use; expiry is enforced on read.
type MemoryStore struct {
	mu       sync.Mutex
	codes    map[string]IssuedCode
	sessions map[string]Session
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		codes:    make(map[string]IssuedCode),
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

func (m *MemoryStore) SaveCode(_ context.Context, code IssuedCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[code.Email] = code
	return nil
}

func (m *MemoryStore) GetCode(_ context.Context, email string) (IssuedCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	code, ok := m.codes[email]
	if !ok {
		return IssuedCode{}, ErrNotFound
	}
	if m.now().After(code.ExpiresAt) {
		delete(m.codes, email)
		return IssuedCode{}, ErrNotFound
	}
	return code, nil
}

func (m *MemoryStore) DeleteCode(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.codes, email)
	return nil
}

func (m *MemoryStore) SaveSession(_ context.Context, sess Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.Token] = sess
	return nil
}

func (m *MemoryStore) GetSession(_ context.Context, token string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	if m.now().After(sess.ExpiresAt) {
		delete(m.sessions, token)
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemoryStore) DeleteSession(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}
