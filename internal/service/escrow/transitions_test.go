package escrow

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickjob/quickjob/internal/apperrors"
	"github.com/quickjob/quickjob/internal/models"
)

func Test_RequireMilestoneStatus(t *testing.T) {
	t.Parallel()

	t.Run("status matches", func(t *testing.T) {
		m := models.Milestone{Status: models.MilestoneFunded}

		err := requireMilestoneStatus(m, models.MilestoneFunded)

		require.NoError(t, err)
	})

	t.Run("status differs", func(t *testing.T) {
		m := models.Milestone{Status: models.MilestonePending}

		err := requireMilestoneStatus(m, models.MilestoneFunded)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidState, "should match the sentinel via errors.Is")
		assert.Contains(t, err.Error(), "PENDING", "message should name the current status")
		assert.Contains(t, err.Error(), "FUNDED", "message should name the required status")
	})
}

func Test_RequireDisputable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status  string
		wantErr bool
	}{
		{status: models.MilestoneFunded, wantErr: false},
		{status: models.MilestoneReview, wantErr: false},
		{status: models.MilestonePending, wantErr: true},
		{status: models.MilestoneCompleted, wantErr: true},
		{status: models.MilestoneDisputed, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			err := requireDisputable(models.Milestone{Status: tt.status})

			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidState)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_RequireAssignedWorker(t *testing.T) {
	t.Parallel()

	t.Run("worker assigned", func(t *testing.T) {
		workerID := uuid.New()

		err := requireAssignedWorker(models.Job{WorkerID: &workerID})

		require.NoError(t, err)
	})

	t.Run("no worker", func(t *testing.T) {
		err := requireAssignedWorker(models.Job{})

		assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	})
}

func Test_FundingJobStatus(t *testing.T) {
	t.Parallel()

	t.Run("assigned job promoted", func(t *testing.T) {
		status, promoted := fundingJobStatus(models.Job{Status: models.JobAssigned})

		assert.Equal(t, models.JobInProgress, status)
		assert.True(t, promoted)
	})

	t.Run("in progress job kept", func(t *testing.T) {
		status, promoted := fundingJobStatus(models.Job{Status: models.JobInProgress})

		assert.Equal(t, models.JobInProgress, status)
		assert.False(t, promoted)
	})
}
