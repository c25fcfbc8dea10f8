package devlicense

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCodes(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.GetCode(ctx, "u@x.com")
	assert.True(t, errors.Is(err, ErrNotFound))

	issued := IssuedCode{
		Email:     "u@x.com",
		Code:      "123456",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
	require.NoError(t, store.SaveCode(ctx, issued))

	got, err := store.GetCode(ctx, "u@x.com")
	require.NoError(t, err)
	assert.Equal(t, issued, got)

	require.NoError(t, store.DeleteCode(ctx, "u@x.com"))
	_, err = store.GetCode(ctx, "u@x.com")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStoreCodeExpiry(t *testing.T) {
	store := NewMemoryStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.SaveCode(ctx, IssuedCode{
		Email:     "u@x.com",
		Code:      "123456",
		ExpiresAt: base.Add(10 * time.Minute),
	}))

	now = base.Add(11 * time.Minute)
	_, err := store.GetCode(ctx, "u@x.com")
	assert.True(t, errors.Is(err, ErrNotFound), "expired codes read as missing")
}

func TestMemoryStoreSessions(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := Session{
		Token:     "tok-1",
		Email:     "u@x.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.SaveSession(ctx, sess))

	got, err := store.GetSession(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	_, err = store.GetSession(ctx, "tok-2")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, store.DeleteSession(ctx, "tok-1"))
	_, err = store.GetSession(ctx, "tok-1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStoreSessionExpiry(t *testing.T) {
	store := NewMemoryStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, Session{
		Token:     "tok-1",
		Email:     "u@x.com",
		ExpiresAt: base.Add(time.Hour),
	}))

	now = base.Add(2 * time.Hour)
	_, err := store.GetSession(ctx, "tok-1")
	assert.True(t, errors.Is(err, ErrNotFound))
}
