package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/quickjob/quickjob/internal/apperrors"
	"github.com/quickjob/quickjob/internal/models"
)

type WalletRepo struct {
	DB DBTX
}

// Create wallet with zero balances
// If the user already has a wallet return it as is
const createWallet = `-- name: CreateWallet
WITH insert_wallet AS (
	INSERT INTO wallets (user_id)
	VALUES ($1)
	ON CONFLICT (user_id) DO NOTHING
	RETURNING id, user_id, available, frozen, created_at
)
SELECT * FROM insert_wallet
UNION
SELECT id, user_id, available, frozen, created_at FROM wallets WHERE user_id = $1
`

func (r *WalletRepo) CreateWallet(ctx context.Context, userID uuid.UUID) (models.Wallet, error) {
	rows, _ := r.DB.Query(ctx, createWallet, userID)
	wallet, err := pgx.CollectOneRow(rows, rowToWallet)
	if err != nil {
		return wallet, fmt.Errorf("db error: %w", err)
	}

	return wallet, nil
}

const getWallet = `-- name: GetWallet
SELECT id, user_id, available, frozen, created_at FROM wallets
WHERE id = $1
`

func (r *WalletRepo) GetWallet(ctx context.Context, walletID uuid.UUID) (models.Wallet, error) {
	rows, _ := r.DB.Query(ctx, getWallet, walletID)
	return collectWallet(rows)
}

const getWalletByUserID = `-- name: GetWalletByUserID
SELECT id, user_id, available, frozen, created_at FROM wallets
WHERE user_id = $1
`

func (r *WalletRepo) GetWalletByUserID(ctx context.Context, userID uuid.UUID) (models.Wallet, error) {
	rows, _ := r.DB.Query(ctx, getWalletByUserID, userID)
	return collectWallet(rows)
}

// Locking read. Blocks concurrent locking reads of the same row until the
// surrounding transaction commits or rolls back, so a balance sufficiency
// check stays valid for the write that follows it.
const getWalletForUpdate = `-- name: GetWalletForUpdate
SELECT id, user_id, available, frozen, created_at FROM wallets
WHERE id = $1
FOR UPDATE
`

func (r *WalletRepo) GetWalletForUpdate(ctx context.Context, walletID uuid.UUID) (models.Wallet, error) {
	rows, _ := r.DB.Query(ctx, getWalletForUpdate, walletID)
	return collectWallet(rows)
}

const updateBalances = `-- name: UpdateBalances
UPDATE wallets
SET available = available + $2, frozen = frozen + $3
WHERE id = $1
RETURNING id, user_id, available, frozen, created_at
`

func (r *WalletRepo) UpdateBalances(ctx context.Context, walletID uuid.UUID, availableDelta, frozenDelta decimal.Decimal) (models.Wallet, error) {
	rows, _ := r.DB.Query(ctx, updateBalances, walletID, availableDelta, frozenDelta)
	wallet, err := pgx.CollectOneRow(rows, rowToWallet)

	switch {
	case err == nil:
		return wallet, nil
	case errors.Is(err, pgx.ErrNoRows):
		return wallet, apperrors.ErrWalletNotFound
	default:
		// The non negative balance CHECKs are the last line of defence:
		// hitting one means a guard upstream was raced or skipped.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation {
			return wallet, fmt.Errorf("balance update on wallet %s: %w", walletID, apperrors.ErrInvariantViolation)
		}
		return wallet, fmt.Errorf("db error: %w", err)
	}
}

func collectWallet(rows pgx.Rows) (models.Wallet, error) {
	wallet, err := pgx.CollectOneRow(rows, rowToWallet)

	switch {
	case err == nil:
		return wallet, nil
	case errors.Is(err, pgx.ErrNoRows):
		return wallet, apperrors.ErrWalletNotFound
	default:
		return wallet, fmt.Errorf("db error: %w", err)
	}
}

func rowToWallet(row pgx.CollectableRow) (models.Wallet, error) {
	var w models.Wallet
	err := row.Scan(&w.ID, &w.UserID, &w.Available, &w.Frozen, &w.CreatedAt)
	return w, err
}
