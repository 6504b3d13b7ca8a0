// Package access holds the ownership and role guards used before any state
// mutation. Guards are pure functions over already loaded data: identity and
// role resolution happened upstream and is trusted here.
package access

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/quickjob/quickjob/internal/apperrors"
	"github.com/quickjob/quickjob/internal/models"
)

// AssertJobClient fails unless the caller owns the job as its client.
func AssertJobClient(callerID uuid.UUID, job models.Job) error {
	if callerID != job.ClientID {
		return fmt.Errorf("only the job client may do this: %w", apperrors.ErrForbidden)
	}
	return nil
}

// AssertJobWorker fails unless the caller is the job's assigned worker.
func AssertJobWorker(callerID uuid.UUID, job models.Job) error {
	if job.WorkerID == nil || callerID != *job.WorkerID {
		return fmt.Errorf("only the assigned worker may do this: %w", apperrors.ErrForbidden)
	}
	return nil
}

// AssertJobParty fails unless the caller is the client or the assigned worker.
func AssertJobParty(callerID uuid.UUID, job models.Job) error {
	if callerID == job.ClientID {
		return nil
	}
	if job.WorkerID != nil && callerID == *job.WorkerID {
		return nil
	}
	return fmt.Errorf("only a party of the job may do this: %w", apperrors.ErrForbidden)
}

// AssertAdmin fails unless the caller carries the platform admin role.
func AssertAdmin(caller models.User) error {
	if caller.Role != models.RoleAdmin {
		return fmt.Errorf("admin access required: %w", apperrors.ErrForbidden)
	}
	return nil
}
