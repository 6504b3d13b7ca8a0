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

type ProposalRepo struct {
	DB DBTX
}

const createProposal = `-- name: CreateProposal
INSERT INTO proposals (job_id, worker_id, proposed_amount, cover_letter)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, job_id, worker_id, proposed_amount, cover_letter, status
`

func (r *ProposalRepo) CreateProposal(ctx context.Context, arg repository.CreateProposalParams) (models.Proposal, error) {
	rows, _ := r.DB.Query(ctx, createProposal, arg.JobID, arg.WorkerID, arg.ProposedAmount, arg.CoverLetter)
	proposal, err := pgx.CollectOneRow(rows, rowToProposal)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return proposal, apperrors.ErrProposalExists
		}
		return proposal, fmt.Errorf("db error: %w", err)
	}

	return proposal, nil
}

const getProposal = `-- name: GetProposal
SELECT id, created_at, job_id, worker_id, proposed_amount, cover_letter, status FROM proposals
WHERE id = $1
`

func (r *ProposalRepo) GetProposal(ctx context.Context, proposalID uuid.UUID) (models.Proposal, error) {
	rows, _ := r.DB.Query(ctx, getProposal, proposalID)
	proposal, err := pgx.CollectOneRow(rows, rowToProposal)

	switch {
	case err == nil:
		return proposal, nil
	case errors.Is(err, pgx.ErrNoRows):
		return proposal, apperrors.ErrProposalNotFound
	default:
		return proposal, fmt.Errorf("db error: %w", err)
	}
}

const listProposalsByJob = `-- name: ListByJob
SELECT id, created_at, job_id, worker_id, proposed_amount, cover_letter, status FROM proposals
WHERE job_id = $1
ORDER BY created_at DESC
`

func (r *ProposalRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Proposal, error) {
	rows, _ := r.DB.Query(ctx, listProposalsByJob, jobID)
	proposals, err := pgx.CollectRows(rows, rowToProposal)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return proposals, nil
}

const listProposalsByWorker = `-- name: ListByWorker
SELECT id, created_at, job_id, worker_id, proposed_amount, cover_letter, status FROM proposals
WHERE worker_id = $1
ORDER BY created_at DESC
`

func (r *ProposalRepo) ListByWorker(ctx context.Context, workerID uuid.UUID) ([]models.Proposal, error) {
	rows, _ := r.DB.Query(ctx, listProposalsByWorker, workerID)
	proposals, err := pgx.CollectRows(rows, rowToProposal)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return proposals, nil
}

const updateProposalStatus = `-- name: UpdateProposalStatus
UPDATE proposals
SET status = $2
WHERE id = $1
RETURNING id, created_at, job_id, worker_id, proposed_amount, cover_letter, status
`

func (r *ProposalRepo) UpdateStatus(ctx context.Context, proposalID uuid.UUID, status string) (models.Proposal, error) {
	rows, _ := r.DB.Query(ctx, updateProposalStatus, proposalID, status)
	proposal, err := pgx.CollectOneRow(rows, rowToProposal)

	switch {
	case err == nil:
		return proposal, nil
	case errors.Is(err, pgx.ErrNoRows):
		return proposal, apperrors.ErrProposalNotFound
	default:
		return proposal, fmt.Errorf("db error: %w", err)
	}
}

const rejectOtherPending = `-- name: RejectOtherPending
UPDATE proposals
SET status = 'REJECTED'
WHERE job_id = $1 AND id != $2 AND status = 'PENDING'
`

func (r *ProposalRepo) RejectOtherPending(ctx context.Context, jobID uuid.UUID, acceptedID uuid.UUID) error {
	_, err := r.DB.Exec(ctx, rejectOtherPending, jobID, acceptedID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func rowToProposal(row pgx.CollectableRow) (models.Proposal, error) {
	var p models.Proposal
	err := row.Scan(&p.ID, &p.CreatedAt, &p.JobID, &p.WorkerID, &p.ProposedAmount, &p.CoverLetter, &p.Status)
	return p, err
}
