package escrow

import (
	"fmt"

	"github.com/quickjob/quickjob/internal/apperrors"
	"github.com/quickjob/quickjob/internal/models"
)

// Milestone lifecycle
//
//	PENDING -> FUNDED -> REVIEW -> COMPLETED
//	FUNDED|REVIEW -> DISPUTED -> PENDING (refund) | COMPLETED (release)
//
// Every transition is guarded inside the same transaction that performs the
// mutation, so of two racing transitions exactly one succeeds and the loser
// sees a StateError.

// requireMilestoneStatus guards a transition that is legal from one status only.
func requireMilestoneStatus(m models.Milestone, required string) error {
	if m.Status != required {
		return &apperrors.StateError{Entity: "Milestone", Current: m.Status, Required: required}
	}
	return nil
}

// requireDisputable guards the dispute side branch. Only funded or submitted
// work can be disputed: there is nothing at stake before funding and nothing
// left to contest after completion.
func requireDisputable(m models.Milestone) error {
	switch m.Status {
	case models.MilestoneFunded, models.MilestoneReview:
		return nil
	default:
		return &apperrors.StateError{Entity: "Milestone", Current: m.Status, Required: "FUNDED or REVIEW"}
	}
}

// requireAssignedWorker guards release and dispute paths against jobs whose
// worker was never assigned.
func requireAssignedWorker(job models.Job) error {
	if job.WorkerID == nil {
		return fmt.Errorf("job has no assigned worker: %w", apperrors.ErrInvalidState)
	}
	return nil
}

// fundingJobStatus derives the job status after a milestone is funded.
// An ASSIGNED job is promoted to IN_PROGRESS; any other status is kept.
func fundingJobStatus(job models.Job) (status string, promoted bool) {
	if job.Status == models.JobAssigned {
		return models.JobInProgress, true
	}
	return job.Status, false
}
