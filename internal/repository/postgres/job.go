package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/quickjob/quickjob/internal/apperrors"
	"github.com/quickjob/quickjob/internal/models"
	"github.com/quickjob/quickjob/internal/repository"
)

type JobRepo struct {
	DB DBTX
}

const createJob = `-- name: CreateJob
INSERT INTO jobs (client_id, title, description, category, total_budget)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at, client_id, worker_id, title, description, category, total_budget, status
`

const createJobMilestone = `-- name: CreateJobMilestone
INSERT INTO milestones (job_id, title, amount, sort_order)
VALUES ($1, $2, $3, $4)
RETURNING id, job_id, title, amount, sort_order, status
`

func (r *JobRepo) CreateJob(ctx context.Context, arg repository.CreateJobParams) (models.Job, []models.Milestone, error) {
	rows, _ := r.DB.Query(ctx, createJob, arg.ClientID, arg.Title, arg.Description, arg.Category, arg.TotalBudget)
	job, err := pgx.CollectOneRow(rows, rowToJob)
	if err != nil {
		return job, nil, fmt.Errorf("db error: %w", err)
	}

	milestones := make([]models.Milestone, 0, len(arg.Milestones))
	for _, m := range arg.Milestones {
		rows, _ := r.DB.Query(ctx, createJobMilestone, job.ID, m.Title, m.Amount, m.SortOrder)
		milestone, err := pgx.CollectOneRow(rows, rowToMilestone)
		if err != nil {
			return job, nil, fmt.Errorf("db error: %w", err)
		}
		milestones = append(milestones, milestone)
	}

	return job, milestones, nil
}

const getJob = `-- name: GetJob
SELECT id, created_at, client_id, worker_id, title, description, category, total_budget, status FROM jobs
WHERE id = $1
`

func (r *JobRepo) GetJob(ctx context.Context, jobID uuid.UUID) (models.Job, error) {
	rows, _ := r.DB.Query(ctx, getJob, jobID)
	return collectJob(rows)
}

const listOpenJobs = `-- name: ListOpen
SELECT id, created_at, client_id, worker_id, title, description, category, total_budget, status FROM jobs
WHERE status = 'OPEN'
ORDER BY created_at DESC
`

func (r *JobRepo) ListOpen(ctx context.Context) ([]models.Job, error) {
	rows, _ := r.DB.Query(ctx, listOpenJobs)
	jobs, err := pgx.CollectRows(rows, rowToJob)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return jobs, nil
}

const updateJobStatus = `-- name: UpdateJobStatus
UPDATE jobs
SET status = $2
WHERE id = $1
RETURNING id, created_at, client_id, worker_id, title, description, category, total_budget, status
`

func (r *JobRepo) UpdateStatus(ctx context.Context, jobID uuid.UUID, status string) (models.Job, error) {
	rows, _ := r.DB.Query(ctx, updateJobStatus, jobID, status)
	return collectJob(rows)
}

// Worker assignment happens exactly once, so worker_id must still be NULL
const assignWorker = `-- name: AssignWorker
UPDATE jobs
SET worker_id = $2, status = $3
WHERE id = $1 AND worker_id IS NULL
RETURNING id, created_at, client_id, worker_id, title, description, category, total_budget, status
`

func (r *JobRepo) AssignWorker(ctx context.Context, jobID uuid.UUID, workerID uuid.UUID, status string) (models.Job, error) {
	rows, _ := r.DB.Query(ctx, assignWorker, jobID, workerID, status)
	job, err := pgx.CollectOneRow(rows, rowToJob)

	switch {
	case err == nil:
		return job, nil
	case errors.Is(err, pgx.ErrNoRows):
		return job, &apperrors.StateError{Entity: "Job", Current: "assigned", Required: "unassigned"}
	default:
		return job, fmt.Errorf("db error: %w", err)
	}
}

func collectJob(rows pgx.Rows) (models.Job, error) {
	job, err := pgx.CollectOneRow(rows, rowToJob)

	switch {
	case err == nil:
		return job, nil
	case errors.Is(err, pgx.ErrNoRows):
		return job, apperrors.ErrJobNotFound
	default:
		return job, fmt.Errorf("db error: %w", err)
	}
}

func rowToJob(row pgx.CollectableRow) (models.Job, error) {
	var j models.Job
	err := row.Scan(&j.ID, &j.CreatedAt, &j.ClientID, &j.WorkerID, &j.Title, &j.Description, &j.Category, &j.TotalBudget, &j.Status)
	return j, err
}
