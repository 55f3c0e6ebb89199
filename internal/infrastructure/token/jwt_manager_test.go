package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManagerRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, "catalog")
	tok, err := m.Generate("user-1")
	require.NoError(t, err)

	userID, err := m.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestJWTManagerRejects(t *testing.T) {
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewJWTManager("secret", time.Hour, "catalog")
	m.nowFunc = func() time.Time { return issued }
	tok, err := m.Generate("user-1")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := NewJWTManager("secret", time.Hour, "catalog")
		later.nowFunc = func() time.Time { return issued.Add(2 * time.Hour) }
		_, err := later.Validate(tok)
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("other", time.Hour, "catalog")
		other.nowFunc = m.nowFunc
		_, err := other.Validate(tok)
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTManager("secret", time.Hour, "elsewhere")
		other.nowFunc = m.nowFunc
		_, err := other.Validate(tok)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Validate("not.a.jwt")
		assert.Error(t, err)
	})
}

func TestJWTManagerIssuesDistinctTokens(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, "catalog")
	fixed := time.Now()
	m.nowFunc = func() time.Time { return fixed }

	a, err := m.Generate("user-1")
	require.NoError(t, err)
	b, err := m.Generate("user-1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	_, err = m.Generate("")
	assert.Error(t, err)
}
