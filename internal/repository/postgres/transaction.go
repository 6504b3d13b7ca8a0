package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/quickjob/quickjob/internal/apperrors"
	"github.com/quickjob/quickjob/internal/models"
	"github.com/quickjob/quickjob/internal/repository"
)

type TransactionRepo struct {
	DB DBTX
}

const createTransaction = `-- name: CreateTransaction
INSERT INTO transactions (wallet_id, type, amount, milestone_id, reference_note)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at, wallet_id, type, amount, milestone_id, reference_note
`

func (r *TransactionRepo) CreateTransaction(ctx context.Context, arg repository.CreateTransactionParams) (models.Transaction, error) {
	rows, _ := r.DB.Query(ctx, createTransaction, arg.WalletID, arg.Type, arg.Amount, arg.MilestoneID, arg.ReferenceNote)
	t, err := pgx.CollectOneRow(rows, rowToTransaction)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation {
			return t, fmt.Errorf("ledger row for wallet %s: %w", arg.WalletID, apperrors.ErrInvariantViolation)
		}
		return t, fmt.Errorf("db error: %w", err)
	}

	return t, nil
}

const listTransactionsByWallet = `-- name: ListByWallet
SELECT id, created_at, wallet_id, type, amount, milestone_id, reference_note FROM transactions
WHERE wallet_id = $1
ORDER BY created_at DESC, id
`

func (r *TransactionRepo) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]models.Transaction, error) {
	rows, _ := r.DB.Query(ctx, listTransactionsByWallet, walletID)
	transactions, err := pgx.CollectRows(rows, rowToTransaction)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return transactions, nil
}

func rowToTransaction(row pgx.CollectableRow) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.CreatedAt, &t.WalletID, &t.Type, &t.Amount, &t.MilestoneID, &t.ReferenceNote)
	return t, err
}
