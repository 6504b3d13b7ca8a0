package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quickjob/quickjob/internal/handlers/middleware"
	"github.com/quickjob/quickjob/internal/logger"
	"github.com/quickjob/quickjob/internal/models"
	"github.com/quickjob/quickjob/internal/service/auth"
	"github.com/quickjob/quickjob/internal/service/escrow"
	"github.com/quickjob/quickjob/internal/service/job"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	walletService walletService,
	jobService jobService,
	proposalService proposalService,
	escrowService escrowService,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(authService)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	api := http.NewServeMux()

	api.Handle("POST /auth/register", handleRegister(authService, logger))
	api.Handle("POST /auth/login", handleLogin(authService, logger))
	api.Handle("GET /auth/me", withAuth(handleMe()))

	api.Handle("GET /wallets/balance", withAuth(handleWalletBalance(walletService, logger)))
	api.Handle("GET /wallets/transactions", withAuth(handleWalletTransactions(walletService, logger)))
	api.Handle("POST /wallets/{userID}/deposit", withAuth(handleDeposit(walletService, logger)))

	api.Handle("POST /jobs", withAuth(handleCreateJob(jobService, logger)))
	api.Handle("GET /jobs", handleListJobs(jobService, logger))
	api.Handle("GET /jobs/{jobID}", handleGetJob(jobService, logger))

	api.Handle("POST /jobs/{jobID}/proposals", withAuth(handleCreateProposal(proposalService, logger)))
	api.Handle("GET /jobs/{jobID}/proposals", withAuth(handleListJobProposals(proposalService, logger)))
	api.Handle("GET /proposals", withAuth(handleListMyProposals(proposalService, logger)))
	api.Handle("POST /proposals/{proposalID}/accept", withAuth(handleAcceptProposal(proposalService, logger)))
	api.Handle("POST /proposals/{proposalID}/reject", withAuth(handleRejectProposal(proposalService, logger)))

	api.Handle("POST /escrow/milestones/{milestoneID}/lock", withAuth(handleLockFunds(escrowService, logger)))
	api.Handle("POST /escrow/milestones/{milestoneID}/submit", withAuth(handleSubmitMilestone(escrowService, logger)))
	api.Handle("POST /escrow/milestones/{milestoneID}/release", withAuth(handleReleaseMilestone(escrowService, logger)))
	api.Handle("POST /escrow/milestones/{milestoneID}/dispute", withAuth(handleDisputeMilestone(escrowService, logger)))
	api.Handle("POST /escrow/milestones/{milestoneID}/resolve-refund", withAuth(handleResolveRefund(escrowService, logger)))
	api.Handle("POST /escrow/milestones/{milestoneID}/resolve-release", withAuth(handleResolveRelease(escrowService, logger)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type authService interface {
	// Register user with its wallet provisioned
	// Has to return apperrors.ErrUserAlreadyExists if email is taken
	Register(ctx context.Context, arg auth.RegisterParams) (models.User, string, error)

	// Login user with email and password
	// Has to return apperrors.ErrUserNotFound on bad credentials
	Login(ctx context.Context, email string, password string) (models.User, string, error)

	// Resolve authenticated user from request or fail
	Auth(ctx context.Context, r *http.Request) (models.User, error)
}

type walletService interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (models.Wallet, error)
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error)
	Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, referenceNote string) (models.Wallet, error)
}

type jobService interface {
	Create(ctx context.Context, clientID uuid.UUID, arg job.CreateParams) (models.Job, []models.Milestone, error)
	Get(ctx context.Context, jobID uuid.UUID) (models.Job, []models.Milestone, error)
	ListOpen(ctx context.Context) ([]models.Job, error)
}

type proposalService interface {
	Create(ctx context.Context, workerID uuid.UUID, jobID uuid.UUID, amount decimal.Decimal, coverLetter string) (models.Proposal, error)
	Accept(ctx context.Context, clientID uuid.UUID, proposalID uuid.UUID) (models.Proposal, error)
	Reject(ctx context.Context, clientID uuid.UUID, proposalID uuid.UUID) (models.Proposal, error)
	ListByJob(ctx context.Context, callerID uuid.UUID, jobID uuid.UUID) ([]models.Proposal, error)
	ListMine(ctx context.Context, workerID uuid.UUID) ([]models.Proposal, error)
}

type escrowReleaseResult = escrow.ReleaseResult

type escrowService interface {
	LockFunds(ctx context.Context, clientID, milestoneID uuid.UUID) (escrow.LockResult, error)
	Submit(ctx context.Context, workerID, milestoneID uuid.UUID) (escrow.SubmitResult, error)
	Release(ctx context.Context, clientID, milestoneID uuid.UUID) (escrow.ReleaseResult, error)
	Dispute(ctx context.Context, callerID, milestoneID uuid.UUID) (escrow.DisputeResult, error)
	ResolveRefund(ctx context.Context, caller models.User, milestoneID uuid.UUID) (escrow.RefundResult, error)
	ResolveRelease(ctx context.Context, caller models.User, milestoneID uuid.UUID) (escrow.ReleaseResult, error)
}
