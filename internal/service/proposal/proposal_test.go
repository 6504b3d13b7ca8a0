package proposal

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickjob/quickjob/internal/apperrors"
	"github.com/quickjob/quickjob/internal/models"
	"github.com/quickjob/quickjob/internal/repository"
	"github.com/quickjob/quickjob/internal/repository/postgres"
	"github.com/quickjob/quickjob/internal/testutil"
)

type testWorld struct {
	storage repository.Storage
	svc     *ProposalService
	client  models.User
	worker  models.User
	job     models.Job
}

func newTestWorld(t *testing.T, tx pgx.Tx) *testWorld {
	t.Helper()
	ctx := t.Context()
	storage := postgres.NewStorage(tx)

	newUser := func(role string) models.User {
		u, err := storage.User().CreateUser(ctx, repository.CreateUserParams{
			Email:          fmt.Sprintf("%s@example.com", uuid.NewString()),
			HashedPassword: "hashed",
			Role:           role,
		})
		require.NoError(t, err)
		return u
	}

	client := newUser(models.RoleClient)
	worker := newUser(models.RoleWorker)

	job, _, err := storage.Job().CreateJob(ctx, repository.CreateJobParams{
		ClientID:    client.ID,
		Title:       "Test job",
		Description: "desc",
		Category:    "test",
		TotalBudget: decimal.RequireFromString("100.00"),
		Milestones: []repository.CreateMilestoneParams{
			{Title: "All of it", Amount: decimal.RequireFromString("100.00"), SortOrder: 1},
		},
	})
	require.NoError(t, err)

	return &testWorld{
		storage: storage,
		svc:     NewService(storage),
		client:  client,
		worker:  worker,
		job:     job,
	}
}

func (w *testWorld) propose(t *testing.T, workerID uuid.UUID) models.Proposal {
	t.Helper()
	p, err := w.svc.Create(t.Context(), workerID, w.job.ID, decimal.RequireFromString("90.00"), "I can do this")
	require.NoError(t, err)
	return p
}

func Test_ProposalService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create proposal ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			w := newTestWorld(t, tx)

			p := w.propose(t, w.worker.ID)

			assert.Equal(t, w.job.ID, p.JobID)
			assert.Equal(t, w.worker.ID, p.WorkerID)
			assert.Equal(t, models.ProposalPending, p.Status)
		})
	})

	t.Run("create fails on non positive amount", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			w := newTestWorld(t, tx)

			_, err := w.svc.Create(t.Context(), w.worker.ID, w.job.ID, decimal.Zero, "")

			assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
		})
	})

	t.Run("cannot bid on own job", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			w := newTestWorld(t, tx)

			_, err := w.svc.Create(t.Context(), w.client.ID, w.job.ID, decimal.RequireFromString("90.00"), "")

			assert.ErrorIs(t, err, apperrors.ErrForbidden)
		})
	})

	t.Run("cannot bid on a non open job", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			w := newTestWorld(t, tx)
			_, err := w.storage.Job().UpdateStatus(t.Context(), w.job.ID, models.JobCancelled)
			require.NoError(t, err)

			_, err = w.svc.Create(t.Context(), w.worker.ID, w.job.ID, decimal.RequireFromString("90.00"), "")

			assert.ErrorIs(t, err, apperrors.ErrInvalidState)
		})
	})

	t.Run("accept assigns the worker and rejects the rest", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			w := newTestWorld(t, tx)
			other, err := w.storage.User().CreateUser(t.Context(), repository.CreateUserParams{
				Email:          fmt.Sprintf("%s@example.com", uuid.NewString()),
				HashedPassword: "hashed",
				Role:           models.RoleWorker,
			})
			require.NoError(t, err)

			winner := w.propose(t, w.worker.ID)
			loser := w.propose(t, other.ID)

			accepted, err := w.svc.Accept(t.Context(), w.client.ID, winner.ID)

			require.NoError(t, err)
			assert.Equal(t, models.ProposalAccepted, accepted.Status)

			job, err := w.storage.Job().GetJob(t.Context(), w.job.ID)
			require.NoError(t, err)
			require.NotNil(t, job.WorkerID)
			assert.Equal(t, w.worker.ID, *job.WorkerID)
			assert.Equal(t, models.JobAssigned, job.Status)

			rejected, err := w.storage.Proposal().GetProposal(t.Context(), loser.ID)
			require.NoError(t, err)
			assert.Equal(t, models.ProposalRejected, rejected.Status)
		})
	})

	t.Run("accept is client only", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			w := newTestWorld(t, tx)
			p := w.propose(t, w.worker.ID)

			_, err := w.svc.Accept(t.Context(), w.worker.ID, p.ID)

			assert.ErrorIs(t, err, apperrors.ErrForbidden)
		})
	})

	t.Run("accept fails when job is no longer open", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			w := newTestWorld(t, tx)
			p := w.propose(t, w.worker.ID)
			_, err := w.svc.Accept(t.Context(), w.client.ID, p.ID)
			require.NoError(t, err)

			// A second accept has to fail, the job is ASSIGNED now
			_, err = w.svc.Accept(t.Context(), w.client.ID, p.ID)

			assert.ErrorIs(t, err, apperrors.ErrInvalidState)
		})
	})

	t.Run("reject proposal", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			w := newTestWorld(t, tx)
			p := w.propose(t, w.worker.ID)

			rejected, err := w.svc.Reject(t.Context(), w.client.ID, p.ID)

			require.NoError(t, err)
			assert.Equal(t, models.ProposalRejected, rejected.Status)

			// Rejecting twice fails on the status guard
			_, err = w.svc.Reject(t.Context(), w.client.ID, p.ID)
			assert.ErrorIs(t, err, apperrors.ErrInvalidState)
		})
	})

	t.Run("list by job is client only", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			w := newTestWorld(t, tx)
			w.propose(t, w.worker.ID)

			got, err := w.svc.ListByJob(t.Context(), w.client.ID, w.job.ID)
			require.NoError(t, err)
			assert.Len(t, got, 1)

			_, err = w.svc.ListByJob(t.Context(), w.worker.ID, w.job.ID)
			assert.ErrorIs(t, err, apperrors.ErrForbidden)
		})
	})

	t.Run("list mine", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			w := newTestWorld(t, tx)
			p := w.propose(t, w.worker.ID)

			got, err := w.svc.ListMine(t.Context(), w.worker.ID)

			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, p.ID, got[0].ID)
		})
	})
}
