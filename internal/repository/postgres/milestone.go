package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/quickjob/quickjob/internal/apperrors"
	"github.com/quickjob/quickjob/internal/models"
)

type MilestoneRepo struct {
	DB DBTX
}

// Milestone joined with its parent job in a single read.
// FOR UPDATE OF m locks only the milestone row: the job row may be read by
// concurrent transactions on sibling milestones of the same job.
const getMilestoneWithJob = `-- name: GetMilestoneWithJob
SELECT
	m.id, m.job_id, m.title, m.amount, m.sort_order, m.status,
	j.id, j.created_at, j.client_id, j.worker_id, j.title, j.description, j.category, j.total_budget, j.status
FROM milestones m
JOIN jobs j ON j.id = m.job_id
WHERE m.id = $1
`

const getMilestoneWithJobForUpdate = getMilestoneWithJob + `FOR UPDATE OF m
`

func (r *MilestoneRepo) GetMilestoneWithJob(ctx context.Context, milestoneID uuid.UUID, forUpdate bool) (models.Milestone, models.Job, error) {
	query := getMilestoneWithJob
	if forUpdate {
		query = getMilestoneWithJobForUpdate
	}

	var m models.Milestone
	var j models.Job
	err := r.DB.QueryRow(ctx, query, milestoneID).Scan(
		&m.ID, &m.JobID, &m.Title, &m.Amount, &m.SortOrder, &m.Status,
		&j.ID, &j.CreatedAt, &j.ClientID, &j.WorkerID, &j.Title, &j.Description, &j.Category, &j.TotalBudget, &j.Status,
	)

	switch {
	case err == nil:
		return m, j, nil
	case errors.Is(err, pgx.ErrNoRows):
		return m, j, apperrors.ErrMilestoneNotFound
	default:
		return m, j, fmt.Errorf("db error: %w", err)
	}
}

const listMilestonesByJob = `-- name: ListByJob
SELECT id, job_id, title, amount, sort_order, status FROM milestones
WHERE job_id = $1
ORDER BY sort_order
`

func (r *MilestoneRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Milestone, error) {
	rows, _ := r.DB.Query(ctx, listMilestonesByJob, jobID)
	milestones, err := pgx.CollectRows(rows, rowToMilestone)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return milestones, nil
}

const updateMilestoneStatus = `-- name: UpdateMilestoneStatus
UPDATE milestones
SET status = $2
WHERE id = $1
RETURNING id, job_id, title, amount, sort_order, status
`

func (r *MilestoneRepo) UpdateStatus(ctx context.Context, milestoneID uuid.UUID, status string) (models.Milestone, error) {
	rows, _ := r.DB.Query(ctx, updateMilestoneStatus, milestoneID, status)
	milestone, err := pgx.CollectOneRow(rows, rowToMilestone)

	switch {
	case err == nil:
		return milestone, nil
	case errors.Is(err, pgx.ErrNoRows):
		return milestone, apperrors.ErrMilestoneNotFound
	default:
		return milestone, fmt.Errorf("db error: %w", err)
	}
}

const countUnfinishedByJob = `-- name: CountUnfinishedByJob
SELECT count(*) FROM milestones
WHERE job_id = $1 AND status != 'COMPLETED'
`

func (r *MilestoneRepo) CountUnfinishedByJob(ctx context.Context, jobID uuid.UUID) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx, countUnfinishedByJob, jobID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return count, nil
}

func rowToMilestone(row pgx.CollectableRow) (models.Milestone, error) {
	var m models.Milestone
	err := row.Scan(&m.ID, &m.JobID, &m.Title, &m.Amount, &m.SortOrder, &m.Status)
	return m, err
}
