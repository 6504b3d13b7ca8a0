package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickjob/quickjob/internal/apperrors"
	"github.com/quickjob/quickjob/internal/models"
	"github.com/quickjob/quickjob/internal/repository"
	"github.com/quickjob/quickjob/internal/repository/postgres"
	"github.com/quickjob/quickjob/internal/testutil"
)

func Test_AuthService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	newService := func(t *testing.T, storage repository.Storage) *AuthService {
		t.Helper()
		s, err := NewService(Config{SecretKey: "test-secret-key"}, storage)
		require.NoError(t, err)
		return s
	}

	t.Run("register creates user with wallet", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			s := newService(t, storage)

			user, token, err := s.Register(t.Context(), RegisterParams{
				Email:    "worker@example.com",
				Password: "password123",
				FullName: "Worker One",
				Role:     models.RoleWorker,
			})

			require.NoError(t, err)
			assert.Equal(t, "worker@example.com", user.Email)
			assert.Equal(t, models.RoleWorker, user.Role)
			assert.NotEmpty(t, token)
			assert.NotEqual(t, "password123", user.HashedPassword, "password must be stored hashed")

			wallet, err := storage.Wallet().GetWalletByUserID(t.Context(), user.ID)
			require.NoError(t, err, "wallet must be provisioned together with the user")
			assert.True(t, wallet.Available.IsZero())
		})
	})

	t.Run("register never grants admin", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := newService(t, postgres.NewStorage(tx))

			user, _, err := s.Register(t.Context(), RegisterParams{
				Email:    "sneaky@example.com",
				Password: "password123",
				Role:     models.RoleAdmin,
			})

			require.NoError(t, err)
			assert.Equal(t, models.RoleClient, user.Role, "requested admin role must fall back to client")
		})
	})

	t.Run("register duplicate email", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := newService(t, postgres.NewStorage(tx))
			arg := RegisterParams{Email: "dup@example.com", Password: "password123", Role: models.RoleClient}

			_, _, err := s.Register(t.Context(), arg)
			require.NoError(t, err)

			_, _, err = s.Register(t.Context(), arg)

			assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})
	})

	t.Run("login ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := newService(t, postgres.NewStorage(tx))
			registered, _, err := s.Register(t.Context(), RegisterParams{
				Email:    "login@example.com",
				Password: "password123",
				Role:     models.RoleClient,
			})
			require.NoError(t, err)

			user, token, err := s.Login(t.Context(), "login@example.com", "password123")

			require.NoError(t, err)
			assert.Equal(t, registered.ID, user.ID)
			assert.NotEmpty(t, token)
		})
	})

	t.Run("login wrong password", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := newService(t, postgres.NewStorage(tx))
			_, _, err := s.Register(t.Context(), RegisterParams{
				Email:    "wrongpass@example.com",
				Password: "password123",
				Role:     models.RoleClient,
			})
			require.NoError(t, err)

			_, _, err = s.Login(t.Context(), "wrongpass@example.com", "not-the-password")

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound, "wrong password must look like unknown user")
		})
	})

	t.Run("login unknown email", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := newService(t, postgres.NewStorage(tx))

			_, _, err := s.Login(t.Context(), "nobody@example.com", "password123")

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("auth resolves the request caller", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := newService(t, postgres.NewStorage(tx))
			registered, token, err := s.Register(t.Context(), RegisterParams{
				Email:    "caller@example.com",
				Password: "password123",
				Role:     models.RoleWorker,
			})
			require.NoError(t, err)

			r := httptest.NewRequest("GET", "/api/auth/me", nil)
			r.Header.Set("Authorization", "Bearer "+token)

			user, err := s.Auth(t.Context(), r)

			require.NoError(t, err)
			assert.Equal(t, registered.ID, user.ID)
			assert.Equal(t, models.RoleWorker, user.Role, "role comes fresh from the database")
		})
	})

	t.Run("auth fails without bearer token", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := newService(t, postgres.NewStorage(tx))

			r := httptest.NewRequest("GET", "/api/auth/me", nil)

			_, err := s.Auth(t.Context(), r)

			assert.ErrorIs(t, err, apperrors.ErrForbidden)
		})
	})

	t.Run("auth fails on garbage token", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := newService(t, postgres.NewStorage(tx))

			r := httptest.NewRequest("GET", "/api/auth/me", nil)
			r.Header.Set("Authorization", "Bearer not-a-jwt")

			_, err := s.Auth(t.Context(), r)

			require.Error(t, err)
		})
	})
}
