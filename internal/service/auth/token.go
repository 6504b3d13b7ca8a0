package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/quickjob/quickjob/internal/models"
)

const (
	defaultAccessTokenTTL = 15 * time.Minute
	signingMethod         = "HS256"
)

type AccessTokenClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"uid"`
}

// TokenManager issues and parses signed access tokens. The token carries the
// user id only; role is re-read from the database on every request so the
// authoritative role is always current.
type TokenManager struct {
	key       string
	alg       jwt.SigningMethod
	accessTTL time.Duration
}

func NewTokenManager(secretKey string, accessTTL time.Duration) (*TokenManager, error) {
	if secretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}
	if accessTTL == 0 {
		accessTTL = defaultAccessTokenTTL
	}

	return &TokenManager{
		key:       secretKey,
		alg:       jwt.GetSigningMethod(signingMethod),
		accessTTL: accessTTL,
	}, nil
}

func (m *TokenManager) Generate(user models.User) (string, error) {
	now := time.Now().Truncate(time.Second)

	token := jwt.NewWithClaims(
		m.alg,
		AccessTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			},
			UserID: user.ID,
		},
	)

	signed, err := token.SignedString([]byte(m.key))
	if err != nil {
		return "", fmt.Errorf("error while signing access token. Err: %w", err)
	}

	return signed, nil
}

func (m *TokenManager) Parse(tokenString string) (AccessTokenClaims, error) {
	var claims AccessTokenClaims

	_, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(t *jwt.Token) (any, error) { return []byte(m.key), nil },
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return claims, fmt.Errorf("invalid access token. Err: %w", err)
	}

	return claims, nil
}
