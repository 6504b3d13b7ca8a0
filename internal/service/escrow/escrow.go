// Package escrow is the single entry point for moving milestone money.
// Each operation runs in one unit of work: the status guard, the balance
// movement and the ledger rows commit together or not at all.
package escrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quickjob/quickjob/internal/apperrors"
	"github.com/quickjob/quickjob/internal/logger"
	"github.com/quickjob/quickjob/internal/models"
	"github.com/quickjob/quickjob/internal/repository"
	"github.com/quickjob/quickjob/internal/service/access"
	"github.com/quickjob/quickjob/internal/service/wallet"
)

// Every unit of work is bounded; on deadline the transaction rolls back whole.
const opTimeout = 20 * time.Second

type Config struct {
	// Wallet that accumulates platform fees. Pre provisioned, supplied at
	// process startup.
	PlatformWalletID uuid.UUID

	// Fee rate retained from every released milestone, e.g. 0.05
	FeeRate decimal.Decimal
}

type Service struct {
	storage repository.Storage
	wallets *wallet.Service
	cfg     Config
	log     logger.Logger
}

func NewService(cfg Config, storage repository.Storage, wallets *wallet.Service, log logger.Logger) (*Service, error) {
	if cfg.PlatformWalletID == uuid.Nil {
		return nil, errors.New("platform wallet id must be set")
	}
	if cfg.FeeRate.IsNegative() || cfg.FeeRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("fee rate %s out of range [0, 1)", cfg.FeeRate)
	}
	if log == nil {
		log = logger.NewNoOp()
	}

	return &Service{
		storage: storage,
		wallets: wallets,
		cfg:     cfg,
		log:     log,
	}, nil
}

type LockResult struct {
	MilestoneID  uuid.UUID
	AmountLocked decimal.Decimal
	Status       string
	JobStatus    string
}

type SubmitResult struct {
	MilestoneID uuid.UUID
	Status      string
}

type DisputeResult struct {
	MilestoneID uuid.UUID
	Status      string
}

type RefundResult struct {
	MilestoneID uuid.UUID
	Refunded    decimal.Decimal
	Status      string
}

type ReleaseResult struct {
	MilestoneID    uuid.UUID
	Released       decimal.Decimal
	PlatformFee    decimal.Decimal
	WorkerReceived decimal.Decimal
	Status         string
	JobCompleted   bool
}

// LockFunds freezes the milestone amount on the client wallet and marks the
// milestone FUNDED. Funding the first milestone of an ASSIGNED job promotes
// the job to IN_PROGRESS.
func (s *Service) LockFunds(ctx context.Context, clientID, milestoneID uuid.UUID) (LockResult, error) {
	var res LockResult

	err := s.inTx(ctx, func(ctx context.Context, store repository.Storage) error {
		milestone, job, err := store.Milestone().GetMilestoneWithJob(ctx, milestoneID, true)
		if err != nil {
			return err
		}

		if err := access.AssertJobClient(clientID, job); err != nil {
			return err
		}
		if err := requireMilestoneStatus(milestone, models.MilestonePending); err != nil {
			return err
		}

		clientWallet, err := store.Wallet().GetWalletByUserID(ctx, job.ClientID)
		if err != nil {
			return err
		}

		if err := s.wallets.Freeze(ctx, store, clientWallet.ID, milestone.Amount, milestone.ID); err != nil {
			return err
		}

		if _, err := store.Milestone().UpdateStatus(ctx, milestone.ID, models.MilestoneFunded); err != nil {
			return err
		}

		jobStatus, promoted := fundingJobStatus(job)
		if promoted {
			if _, err := store.Job().UpdateStatus(ctx, job.ID, jobStatus); err != nil {
				return err
			}
		}

		res = LockResult{
			MilestoneID:  milestone.ID,
			AmountLocked: milestone.Amount,
			Status:       models.MilestoneFunded,
			JobStatus:    jobStatus,
		}
		return nil
	})

	return res, err
}

// Submit moves a funded milestone to REVIEW. Worker only; no money moves.
func (s *Service) Submit(ctx context.Context, workerID, milestoneID uuid.UUID) (SubmitResult, error) {
	var res SubmitResult

	err := s.inTx(ctx, func(ctx context.Context, store repository.Storage) error {
		milestone, job, err := store.Milestone().GetMilestoneWithJob(ctx, milestoneID, true)
		if err != nil {
			return err
		}

		if err := access.AssertJobWorker(workerID, job); err != nil {
			return err
		}
		if err := requireMilestoneStatus(milestone, models.MilestoneFunded); err != nil {
			return err
		}

		if _, err := store.Milestone().UpdateStatus(ctx, milestone.ID, models.MilestoneReview); err != nil {
			return err
		}

		res = SubmitResult{MilestoneID: milestone.ID, Status: models.MilestoneReview}
		return nil
	})

	return res, err
}

// Release pays out a milestone under client review: client frozen balance is
// reduced by the full amount, the worker receives the amount minus the
// platform fee, the platform wallet receives the fee. Completing the last
// unfinished milestone completes the job.
func (s *Service) Release(ctx context.Context, clientID, milestoneID uuid.UUID) (ReleaseResult, error) {
	var res ReleaseResult

	err := s.inTx(ctx, func(ctx context.Context, store repository.Storage) error {
		milestone, job, err := store.Milestone().GetMilestoneWithJob(ctx, milestoneID, true)
		if err != nil {
			return err
		}

		if err := access.AssertJobClient(clientID, job); err != nil {
			return err
		}
		if err := requireMilestoneStatus(milestone, models.MilestoneReview); err != nil {
			return err
		}

		res, err = s.releaseInTx(ctx, store, milestone, job)
		return err
	})

	return res, err
}

// Dispute freezes the workflow: the milestone stays DISPUTED and the money
// stays frozen until an admin resolves it. Either party of the job may raise it.
func (s *Service) Dispute(ctx context.Context, callerID, milestoneID uuid.UUID) (DisputeResult, error) {
	var res DisputeResult

	err := s.inTx(ctx, func(ctx context.Context, store repository.Storage) error {
		milestone, job, err := store.Milestone().GetMilestoneWithJob(ctx, milestoneID, true)
		if err != nil {
			return err
		}

		if err := access.AssertJobParty(callerID, job); err != nil {
			return err
		}
		if err := requireAssignedWorker(job); err != nil {
			return err
		}
		if err := requireDisputable(milestone); err != nil {
			return err
		}

		if _, err := store.Milestone().UpdateStatus(ctx, milestone.ID, models.MilestoneDisputed); err != nil {
			return err
		}

		res = DisputeResult{MilestoneID: milestone.ID, Status: models.MilestoneDisputed}
		return nil
	})

	return res, err
}

// ResolveRefund settles a dispute in the client's favour: the frozen amount
// moves back to available and the milestone returns to PENDING, ready to be
// funded again.
func (s *Service) ResolveRefund(ctx context.Context, caller models.User, milestoneID uuid.UUID) (RefundResult, error) {
	var res RefundResult

	err := s.inTx(ctx, func(ctx context.Context, store repository.Storage) error {
		if err := access.AssertAdmin(caller); err != nil {
			return err
		}

		milestone, job, err := store.Milestone().GetMilestoneWithJob(ctx, milestoneID, true)
		if err != nil {
			return err
		}

		if err := requireMilestoneStatus(milestone, models.MilestoneDisputed); err != nil {
			return err
		}

		clientWallet, err := store.Wallet().GetWalletByUserID(ctx, job.ClientID)
		if err != nil {
			return err
		}

		if err := s.wallets.Refund(ctx, store, clientWallet.ID, milestone.Amount, milestone.ID); err != nil {
			return err
		}

		if _, err := store.Milestone().UpdateStatus(ctx, milestone.ID, models.MilestonePending); err != nil {
			return err
		}

		res = RefundResult{
			MilestoneID: milestone.ID,
			Refunded:    milestone.Amount,
			Status:      models.MilestonePending,
		}
		return nil
	})

	return res, err
}

// ResolveRelease settles a dispute in the worker's favour. Same split math as
// Release, from DISPUTED instead of REVIEW.
func (s *Service) ResolveRelease(ctx context.Context, caller models.User, milestoneID uuid.UUID) (ReleaseResult, error) {
	var res ReleaseResult

	err := s.inTx(ctx, func(ctx context.Context, store repository.Storage) error {
		if err := access.AssertAdmin(caller); err != nil {
			return err
		}

		milestone, job, err := store.Milestone().GetMilestoneWithJob(ctx, milestoneID, true)
		if err != nil {
			return err
		}

		if err := requireMilestoneStatus(milestone, models.MilestoneDisputed); err != nil {
			return err
		}

		res, err = s.releaseInTx(ctx, store, milestone, job)
		return err
	})

	return res, err
}

// releaseInTx performs the payout shared by Release and ResolveRelease.
// Caller has already verified authorization and milestone status.
func (s *Service) releaseInTx(ctx context.Context, store repository.Storage, milestone models.Milestone, job models.Job) (ReleaseResult, error) {
	var res ReleaseResult

	if err := requireAssignedWorker(job); err != nil {
		return res, err
	}

	fee, workerAmount := wallet.Split(milestone.Amount, s.cfg.FeeRate)

	clientWallet, err := store.Wallet().GetWalletByUserID(ctx, job.ClientID)
	if err != nil {
		return res, err
	}
	workerWallet, err := store.Wallet().GetWalletByUserID(ctx, *job.WorkerID)
	if err != nil {
		return res, err
	}

	err = s.wallets.Release(ctx, store,
		clientWallet.ID, workerWallet.ID, s.cfg.PlatformWalletID,
		milestone.Amount, fee, workerAmount,
		milestone.ID,
	)
	if err != nil {
		return res, err
	}

	if _, err := store.Milestone().UpdateStatus(ctx, milestone.ID, models.MilestoneCompleted); err != nil {
		return res, err
	}

	unfinished, err := store.Milestone().CountUnfinishedByJob(ctx, job.ID)
	if err != nil {
		return res, err
	}

	jobCompleted := unfinished == 0
	if jobCompleted {
		if _, err := store.Job().UpdateStatus(ctx, job.ID, models.JobCompleted); err != nil {
			return res, err
		}
	}

	return ReleaseResult{
		MilestoneID:    milestone.ID,
		Released:       milestone.Amount,
		PlatformFee:    fee,
		WorkerReceived: workerAmount,
		Status:         models.MilestoneCompleted,
		JobCompleted:   jobCompleted,
	}, nil
}

// inTx runs fn in one bounded unit of work. The deadlined context is handed
// to fn so every statement inside the transaction honors the bound, not only
// begin and commit. Invariant violations are logged loudly here; business
// rule failures pass through silently, they are expected outcomes.
func (s *Service) inTx(ctx context.Context, fn func(context.Context, repository.Storage) error) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := s.storage.InTx(ctx, func(store repository.Storage) error {
		return fn(ctx, store)
	})
	if errors.Is(err, apperrors.ErrInvariantViolation) {
		s.log.Error("ledger invariant violated, unit of work rolled back", "error", err)
	}

	return err
}
