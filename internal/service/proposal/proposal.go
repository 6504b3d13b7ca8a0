package proposal

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quickjob/quickjob/internal/apperrors"
	"github.com/quickjob/quickjob/internal/models"
	"github.com/quickjob/quickjob/internal/repository"
	"github.com/quickjob/quickjob/internal/service/access"
)

// ProposalService lets workers bid on open jobs and clients pick the winner.
// Accepting a proposal is the one moment a worker gets assigned to a job.
type ProposalService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *ProposalService {
	return &ProposalService{storage: storage}
}

func (s *ProposalService) Create(ctx context.Context, workerID uuid.UUID, jobID uuid.UUID, amount decimal.Decimal, coverLetter string) (models.Proposal, error) {
	if !amount.IsPositive() {
		return models.Proposal{}, apperrors.ErrInvalidAmount
	}

	job, err := s.storage.Job().GetJob(ctx, jobID)
	if err != nil {
		return models.Proposal{}, err
	}

	if job.Status != models.JobOpen {
		return models.Proposal{}, &apperrors.StateError{Entity: "Job", Current: job.Status, Required: models.JobOpen}
	}
	if job.ClientID == workerID {
		return models.Proposal{}, fmt.Errorf("you cannot bid on your own job: %w", apperrors.ErrForbidden)
	}

	return s.storage.Proposal().CreateProposal(ctx, repository.CreateProposalParams{
		JobID:          jobID,
		WorkerID:       workerID,
		ProposedAmount: amount,
		CoverLetter:    coverLetter,
	})
}

// Accept assigns the proposal's worker to the job, marks the job ASSIGNED and
// rejects every other pending proposal, all in one unit of work.
func (s *ProposalService) Accept(ctx context.Context, clientID uuid.UUID, proposalID uuid.UUID) (models.Proposal, error) {
	var accepted models.Proposal

	err := s.storage.InTx(ctx, func(store repository.Storage) error {
		proposal, err := store.Proposal().GetProposal(ctx, proposalID)
		if err != nil {
			return err
		}

		job, err := store.Job().GetJob(ctx, proposal.JobID)
		if err != nil {
			return err
		}

		if err := access.AssertJobClient(clientID, job); err != nil {
			return err
		}
		if job.Status != models.JobOpen {
			return &apperrors.StateError{Entity: "Job", Current: job.Status, Required: models.JobOpen}
		}
		if proposal.Status != models.ProposalPending {
			return &apperrors.StateError{Entity: "Proposal", Current: proposal.Status, Required: models.ProposalPending}
		}

		accepted, err = store.Proposal().UpdateStatus(ctx, proposalID, models.ProposalAccepted)
		if err != nil {
			return err
		}

		if _, err := store.Job().AssignWorker(ctx, job.ID, proposal.WorkerID, models.JobAssigned); err != nil {
			return err
		}

		return store.Proposal().RejectOtherPending(ctx, job.ID, proposalID)
	})

	return accepted, err
}

func (s *ProposalService) Reject(ctx context.Context, clientID uuid.UUID, proposalID uuid.UUID) (models.Proposal, error) {
	proposal, err := s.storage.Proposal().GetProposal(ctx, proposalID)
	if err != nil {
		return proposal, err
	}

	job, err := s.storage.Job().GetJob(ctx, proposal.JobID)
	if err != nil {
		return proposal, err
	}

	if err := access.AssertJobClient(clientID, job); err != nil {
		return proposal, err
	}
	if proposal.Status != models.ProposalPending {
		return proposal, &apperrors.StateError{Entity: "Proposal", Current: proposal.Status, Required: models.ProposalPending}
	}

	return s.storage.Proposal().UpdateStatus(ctx, proposalID, models.ProposalRejected)
}

// ListByJob is restricted to the job owner
func (s *ProposalService) ListByJob(ctx context.Context, callerID uuid.UUID, jobID uuid.UUID) ([]models.Proposal, error) {
	job, err := s.storage.Job().GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if err := access.AssertJobClient(callerID, job); err != nil {
		return nil, err
	}

	return s.storage.Proposal().ListByJob(ctx, jobID)
}

func (s *ProposalService) ListMine(ctx context.Context, workerID uuid.UUID) ([]models.Proposal, error) {
	return s.storage.Proposal().ListByWorker(ctx, workerID)
}
