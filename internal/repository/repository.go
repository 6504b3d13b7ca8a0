package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quickjob/quickjob/internal/models"
)

// Storage bundles every repository behind one unit of work boundary.
// InTx runs fn against a transaction-bound Storage: all reads and writes
// inside are committed together or rolled back together.
type Storage interface {
	User() UserRepo
	Wallet() WalletRepo
	Transaction() TransactionRepo
	Job() JobRepo
	Milestone() MilestoneRepo
	Proposal() ProposalRepo

	InTx(ctx context.Context, fn func(Storage) error) error
}

type UserRepo interface {
	// Create user
	// If user with email exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

type CreateUserParams struct {
	Email          string
	HashedPassword string
	FullName       string
	Role           string
}

type WalletRepo interface {
	// Create wallet with zero balances
	// One wallet per user; a second create returns the existing wallet untouched
	CreateWallet(ctx context.Context, userID uuid.UUID) (models.Wallet, error)

	// Get wallet; apperrors.ErrWalletNotFound if absent
	GetWallet(ctx context.Context, walletID uuid.UUID) (models.Wallet, error)
	GetWalletByUserID(ctx context.Context, userID uuid.UUID) (models.Wallet, error)

	// Locking read (SELECT FOR UPDATE). Serializes every check-then-write
	// on the wallet row for the rest of the transaction. Call inside InTx only.
	GetWalletForUpdate(ctx context.Context, walletID uuid.UUID) (models.Wallet, error)

	// Apply balance deltas. Must return apperrors.ErrInvariantViolation if
	// either balance would go negative.
	UpdateBalances(ctx context.Context, walletID uuid.UUID, availableDelta, frozenDelta decimal.Decimal) (models.Wallet, error)
}

type TransactionRepo interface {
	// Append one immutable ledger row. There is deliberately no update or
	// delete counterpart.
	CreateTransaction(ctx context.Context, arg CreateTransactionParams) (models.Transaction, error)

	ListByWallet(ctx context.Context, walletID uuid.UUID) ([]models.Transaction, error)
}

type CreateTransactionParams struct {
	WalletID      uuid.UUID
	Type          string
	Amount        decimal.Decimal
	MilestoneID   *uuid.UUID
	ReferenceNote string
}

type JobRepo interface {
	// Create job with its milestones in one statement batch
	CreateJob(ctx context.Context, arg CreateJobParams) (models.Job, []models.Milestone, error)

	// Get job; apperrors.ErrJobNotFound if absent
	GetJob(ctx context.Context, jobID uuid.UUID) (models.Job, error)

	ListOpen(ctx context.Context) ([]models.Job, error)

	UpdateStatus(ctx context.Context, jobID uuid.UUID, status string) (models.Job, error)

	// Set worker exactly once (worker_id must be NULL before)
	AssignWorker(ctx context.Context, jobID uuid.UUID, workerID uuid.UUID, status string) (models.Job, error)
}

type CreateJobParams struct {
	ClientID    uuid.UUID
	Title       string
	Description string
	Category    string
	TotalBudget decimal.Decimal
	Milestones  []CreateMilestoneParams
}

type CreateMilestoneParams struct {
	Title     string
	Amount    decimal.Decimal
	SortOrder int
}

type MilestoneRepo interface {
	// Get milestone joined with its parent job in one read.
	// forUpdate locks the milestone row so a concurrent status transition
	// on the same milestone blocks until this transaction finishes.
	GetMilestoneWithJob(ctx context.Context, milestoneID uuid.UUID, forUpdate bool) (models.Milestone, models.Job, error)

	ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Milestone, error)

	UpdateStatus(ctx context.Context, milestoneID uuid.UUID, status string) (models.Milestone, error)

	// Count milestones of the job not yet in COMPLETED status
	CountUnfinishedByJob(ctx context.Context, jobID uuid.UUID) (int, error)
}

type ProposalRepo interface {
	// Create proposal
	// One per worker per job; duplicate must return apperrors.ErrProposalExists
	CreateProposal(ctx context.Context, arg CreateProposalParams) (models.Proposal, error)

	// Get proposal; apperrors.ErrProposalNotFound if absent
	GetProposal(ctx context.Context, proposalID uuid.UUID) (models.Proposal, error)

	ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Proposal, error)
	ListByWorker(ctx context.Context, workerID uuid.UUID) ([]models.Proposal, error)

	UpdateStatus(ctx context.Context, proposalID uuid.UUID, status string) (models.Proposal, error)

	// Reject every other PENDING proposal of the job
	RejectOtherPending(ctx context.Context, jobID uuid.UUID, acceptedID uuid.UUID) error
}

type CreateProposalParams struct {
	JobID          uuid.UUID
	WorkerID       uuid.UUID
	ProposedAmount decimal.Decimal
	CoverLetter    string
}
