package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickjob/quickjob/internal/apperrors"
	"github.com/quickjob/quickjob/internal/models"
)

func Test_JobGuards(t *testing.T) {
	t.Parallel()

	clientID := uuid.New()
	workerID := uuid.New()
	strangerID := uuid.New()

	assigned := models.Job{ClientID: clientID, WorkerID: &workerID}
	unassigned := models.Job{ClientID: clientID}

	t.Run("AssertJobClient", func(t *testing.T) {
		require.NoError(t, AssertJobClient(clientID, assigned))

		assert.ErrorIs(t, AssertJobClient(workerID, assigned), apperrors.ErrForbidden)
		assert.ErrorIs(t, AssertJobClient(strangerID, assigned), apperrors.ErrForbidden)
	})

	t.Run("AssertJobWorker", func(t *testing.T) {
		require.NoError(t, AssertJobWorker(workerID, assigned))

		assert.ErrorIs(t, AssertJobWorker(clientID, assigned), apperrors.ErrForbidden)
		assert.ErrorIs(t, AssertJobWorker(workerID, unassigned), apperrors.ErrForbidden, "no worker assigned means nobody passes the worker guard")
	})

	t.Run("AssertJobParty", func(t *testing.T) {
		require.NoError(t, AssertJobParty(clientID, assigned))
		require.NoError(t, AssertJobParty(workerID, assigned))
		require.NoError(t, AssertJobParty(clientID, unassigned))

		assert.ErrorIs(t, AssertJobParty(strangerID, assigned), apperrors.ErrForbidden)
		assert.ErrorIs(t, AssertJobParty(workerID, unassigned), apperrors.ErrForbidden)
	})
}

func Test_AssertAdmin(t *testing.T) {
	t.Parallel()

	require.NoError(t, AssertAdmin(models.User{Role: models.RoleAdmin}))

	assert.ErrorIs(t, AssertAdmin(models.User{Role: models.RoleClient}), apperrors.ErrForbidden)
	assert.ErrorIs(t, AssertAdmin(models.User{Role: models.RoleWorker}), apperrors.ErrForbidden)
	assert.ErrorIs(t, AssertAdmin(models.User{}), apperrors.ErrForbidden)
}
