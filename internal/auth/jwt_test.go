package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJWTManager(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	t.Run("RoundTrip", func(t *testing.T) {
		token, err := manager.GenerateToken(42, "user@example.com")
		require.NoError(t, err)

		claims, err := manager.ParseToken(token)
		require.NoError(t, err)
		require.Equal(t, int64(42), claims.UserID)
		require.Equal(t, "user@example.com", claims.Email)
	})

	t.Run("RejectsGarbage", func(t *testing.T) {
		_, err := manager.ParseToken("not-a-token")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("RejectsWrongSecret", func(t *testing.T) {
		other := NewJWTManager("other-secret", time.Hour)
		token, err := other.GenerateToken(42, "user@example.com")
		require.NoError(t, err)

		_, err = manager.ParseToken(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("RejectsExpired", func(t *testing.T) {
		expired := NewJWTManager("test-secret", -time.Minute)
		token, err := expired.GenerateToken(42, "user@example.com")
		require.NoError(t, err)

		_, err = manager.ParseToken(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}
