package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickjob/quickjob/internal/apperrors"
	"github.com/quickjob/quickjob/internal/models"
	"github.com/quickjob/quickjob/internal/testutil"
)

func Test_MilestoneRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("get milestone with job", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := MilestoneRepo{DB: tx}
			client := createTestUser(t, tx, models.RoleClient)
			job, milestones := createTestJob(t, tx, client.ID, "100.00", "200.00")
			require.Len(t, milestones, 2)

			m, j, err := r.GetMilestoneWithJob(t.Context(), milestones[0].ID, false)

			require.NoError(t, err)
			assert.Equal(t, milestones[0].ID, m.ID)
			assert.Equal(t, job.ID, m.JobID)
			assert.True(t, m.Amount.Equal(decimal.RequireFromString("100.00")), "amount=%s", m.Amount)
			assert.Equal(t, models.MilestonePending, m.Status)
			assert.Equal(t, job.ID, j.ID, "parent job must be returned in the same read")
			assert.Equal(t, client.ID, j.ClientID)
			assert.Equal(t, models.JobOpen, j.Status)
		})
	})

	t.Run("get milestone with job for update", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := MilestoneRepo{DB: tx}
			client := createTestUser(t, tx, models.RoleClient)
			_, milestones := createTestJob(t, tx, client.ID, "50.00")

			m, _, err := r.GetMilestoneWithJob(t.Context(), milestones[0].ID, true)

			require.NoError(t, err)
			assert.Equal(t, milestones[0].ID, m.ID)
		})
	})

	t.Run("get milestone not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := MilestoneRepo{DB: tx}

			_, _, err := r.GetMilestoneWithJob(t.Context(), uuid.New(), false)

			assert.ErrorIs(t, err, apperrors.ErrMilestoneNotFound)
		})
	})

	t.Run("list by job ordered by sort order", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := MilestoneRepo{DB: tx}
			client := createTestUser(t, tx, models.RoleClient)
			job, _ := createTestJob(t, tx, client.ID, "10.00", "20.00", "30.00")

			got, err := r.ListByJob(t.Context(), job.ID)

			require.NoError(t, err)
			require.Len(t, got, 3)
			assert.Equal(t, 1, got[0].SortOrder)
			assert.Equal(t, 2, got[1].SortOrder)
			assert.Equal(t, 3, got[2].SortOrder)
		})
	})

	t.Run("update status", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := MilestoneRepo{DB: tx}
			client := createTestUser(t, tx, models.RoleClient)
			_, milestones := createTestJob(t, tx, client.ID, "100.00")

			got, err := r.UpdateStatus(t.Context(), milestones[0].ID, models.MilestoneFunded)

			require.NoError(t, err)
			assert.Equal(t, models.MilestoneFunded, got.Status)
		})
	})

	t.Run("update status not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := MilestoneRepo{DB: tx}

			_, err := r.UpdateStatus(t.Context(), uuid.New(), models.MilestoneFunded)

			assert.ErrorIs(t, err, apperrors.ErrMilestoneNotFound)
		})
	})

	t.Run("count unfinished by job", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := MilestoneRepo{DB: tx}
			client := createTestUser(t, tx, models.RoleClient)
			job, milestones := createTestJob(t, tx, client.ID, "10.00", "20.00")

			count, err := r.CountUnfinishedByJob(t.Context(), job.ID)
			require.NoError(t, err)
			assert.Equal(t, 2, count)

			_, err = r.UpdateStatus(t.Context(), milestones[0].ID, models.MilestoneCompleted)
			require.NoError(t, err)

			count, err = r.CountUnfinishedByJob(t.Context(), job.ID)
			require.NoError(t, err)
			assert.Equal(t, 1, count, "completed milestones must not be counted")

			// Disputed still counts as unfinished
			_, err = r.UpdateStatus(t.Context(), milestones[1].ID, models.MilestoneDisputed)
			require.NoError(t, err)

			count, err = r.CountUnfinishedByJob(t.Context(), job.ID)
			require.NoError(t, err)
			assert.Equal(t, 1, count)
		})
	})
}
