package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/quickjob/quickjob/internal/apperrors"
	"github.com/quickjob/quickjob/internal/models"
	"github.com/quickjob/quickjob/internal/repository"
)

type Config struct {
	// Secret key to sign user access tokens
	SecretKey string

	// Hasher to use during registration or login
	// Default bcrypt hasher is used when not set
	Hasher PasswordHasher

	AccessTokenTTL time.Duration
}

type RegisterParams struct {
	Email    string
	Password string
	FullName string
	Role     string
}

// AuthService registers and logs in users and resolves the caller of a
// request from its bearer token.
type AuthService struct {
	token   *TokenManager
	hasher  PasswordHasher
	storage repository.Storage
}

func NewService(cfg Config, storage repository.Storage) (*AuthService, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{}
	}

	tokenManager, err := NewTokenManager(cfg.SecretKey, cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	return &AuthService{
		token:   tokenManager,
		hasher:  hasher,
		storage: storage,
	}, nil
}

// Register creates the user with its wallet provisioned in the same unit of
// work and returns a fresh access token.
func (s *AuthService) Register(ctx context.Context, arg RegisterParams) (models.User, string, error) {
	role := arg.Role
	if role != models.RoleClient && role != models.RoleWorker {
		// Admin accounts are provisioned out of band, never via register
		role = models.RoleClient
	}

	hash, err := s.hasher.Hash(arg.Password)
	if err != nil {
		return models.User{}, "", fmt.Errorf("can't use this as password, Err: %w", err)
	}

	var user models.User
	err = s.storage.InTx(ctx, func(store repository.Storage) error {
		user, err = store.User().CreateUser(ctx, repository.CreateUserParams{
			Email:          arg.Email,
			HashedPassword: hash,
			FullName:       arg.FullName,
			Role:           role,
		})
		if err != nil {
			return err
		}

		_, err = store.Wallet().CreateWallet(ctx, user.ID)
		return err
	})
	if err != nil {
		return models.User{}, "", err
	}

	token, err := s.token.Generate(user)
	if err != nil {
		return models.User{}, "", err
	}

	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (models.User, string, error) {
	user, err := s.storage.User().GetUserByEmail(ctx, email)
	if err != nil {
		return models.User{}, "", apperrors.ErrUserNotFound
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.User{}, "", apperrors.ErrUserNotFound
	}

	token, err := s.token.Generate(user)
	if err != nil {
		return models.User{}, "", err
	}

	return user, token, nil
}

// Auth resolves the request caller from the Authorization header.
// The user row is loaded fresh so the role is authoritative.
func (s *AuthService) Auth(ctx context.Context, r *http.Request) (models.User, error) {
	header := r.Header.Get("Authorization")
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenString == "" {
		return models.User{}, fmt.Errorf("missing bearer token: %w", apperrors.ErrForbidden)
	}

	claims, err := s.token.Parse(tokenString)
	if err != nil {
		return models.User{}, err
	}

	return s.storage.User().GetUserByID(ctx, claims.UserID)
}
