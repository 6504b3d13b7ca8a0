package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickjob/quickjob/internal/models"
)

func Test_TokenManager(t *testing.T) {
	t.Parallel()

	testUser := models.User{
		ID:    uuid.New(),
		Email: "user@example.com",
		Role:  models.RoleClient,
	}

	t.Run("new defaults", func(t *testing.T) {
		m, err := NewTokenManager("secret", 0)
		require.NoError(t, err)

		require.Equal(t, "secret", m.key)
		require.Equal(t, defaultAccessTokenTTL, m.accessTTL, "default access token TTL should be set")
		require.Equal(t, signingMethod, m.alg.Alg())
	})

	t.Run("fail on empty secret", func(t *testing.T) {
		_, err := NewTokenManager("", time.Minute)

		require.Error(t, err)
	})

	t.Run("generate and parse", func(t *testing.T) {
		m, err := NewTokenManager("test-secret-key", 15*time.Minute)
		require.NoError(t, err)

		signed, err := m.Generate(testUser)
		require.NoError(t, err)
		require.NotEmpty(t, signed)

		claims, err := m.Parse(signed)

		require.NoError(t, err)
		assert.Equal(t, testUser.ID, claims.UserID, "user ID in token should match")
		assert.NotEmpty(t, claims.ID, "token has to carry jti")
		assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, time.Second)
	})

	t.Run("fail parse with wrong key", func(t *testing.T) {
		m, err := NewTokenManager("test-secret-key", 15*time.Minute)
		require.NoError(t, err)
		other, err := NewTokenManager("other-key", 15*time.Minute)
		require.NoError(t, err)

		signed, err := m.Generate(testUser)
		require.NoError(t, err)

		_, err = other.Parse(signed)

		require.Error(t, err)
	})

	t.Run("fail parse expired token", func(t *testing.T) {
		m, err := NewTokenManager("test-secret-key", time.Minute)
		require.NoError(t, err)

		past := time.Now().Add(-time.Hour)
		token := jwt.NewWithClaims(m.alg, AccessTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(past),
				ExpiresAt: jwt.NewNumericDate(past.Add(time.Minute)),
			},
			UserID: testUser.ID,
		})
		signed, err := token.SignedString([]byte("test-secret-key"))
		require.NoError(t, err)

		_, err = m.Parse(signed)

		require.Error(t, err)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("fail parse unsigned token", func(t *testing.T) {
		m, err := NewTokenManager("test-secret-key", time.Minute)
		require.NoError(t, err)

		token := jwt.NewWithClaims(jwt.SigningMethodNone, AccessTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
			UserID: testUser.ID,
		})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = m.Parse(signed)

		require.Error(t, err, "alg=none must be rejected")
	})
}
