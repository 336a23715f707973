package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m, err := NewManager("s3cret", "idgen-service")
	require.NoError(t, err)

	token, err := m.GenerateToken("ops", []string{"admin"}, time.Minute)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.True(t, claims.HasRole("admin"))
	assert.False(t, claims.HasRole("viewer"))
}

func TestValidateRejects(t *testing.T) {
	m, err := NewManager("s3cret", "idgen-service")
	require.NoError(t, err)

	expired, err := m.GenerateToken("ops", nil, -time.Minute)
	require.NoError(t, err)
	_, err = m.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrExpiredToken)

	other, err := NewManager("other", "idgen-service")
	require.NoError(t, err)
	forged, err := other.GenerateToken("ops", []string{"admin"}, time.Minute)
	require.NoError(t, err)
	_, err = m.ValidateToken(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer, err := NewManager("s3cret", "someone-else")
	require.NoError(t, err)
	token, err := wrongIssuer.GenerateToken("ops", nil, time.Minute)
	require.NoError(t, err)
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ValidateToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager("", "x")
	assert.ErrorIs(t, err, ErrEmptySecret)
}
