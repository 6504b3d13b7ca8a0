package job

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quickjob/quickjob/internal/apperrors"
	"github.com/quickjob/quickjob/internal/models"
	"github.com/quickjob/quickjob/internal/repository"
)

// JobService creates and lists jobs. Milestone content is written once at
// creation; afterwards only the escrow service touches milestone state.
type JobService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *JobService {
	return &JobService{storage: storage}
}

type CreateParams struct {
	Title       string
	Description string
	Category    string
	TotalBudget decimal.Decimal
	Milestones  []MilestoneParams
}

type MilestoneParams struct {
	Title     string
	Amount    decimal.Decimal
	SortOrder int
}

// Create inserts the job with its milestones in one unit of work.
// The total budget must equal the milestone amounts exactly; the escrow
// invariants later rely on this precondition.
func (s *JobService) Create(ctx context.Context, clientID uuid.UUID, arg CreateParams) (models.Job, []models.Milestone, error) {
	if len(arg.Milestones) == 0 {
		return models.Job{}, nil, fmt.Errorf("job needs at least one milestone: %w", apperrors.ErrInvalidAmount)
	}

	sum := decimal.Zero
	seenOrders := make(map[int]bool, len(arg.Milestones))
	milestones := make([]repository.CreateMilestoneParams, 0, len(arg.Milestones))
	for _, m := range arg.Milestones {
		if !m.Amount.IsPositive() {
			return models.Job{}, nil, fmt.Errorf("milestone %q: %w", m.Title, apperrors.ErrInvalidAmount)
		}
		if m.SortOrder <= 0 || seenOrders[m.SortOrder] {
			return models.Job{}, nil, fmt.Errorf("milestone %q: order must be positive and unique within the job: %w", m.Title, apperrors.ErrInvalidJob)
		}
		seenOrders[m.SortOrder] = true
		sum = sum.Add(m.Amount)
		milestones = append(milestones, repository.CreateMilestoneParams{
			Title:     m.Title,
			Amount:    m.Amount,
			SortOrder: m.SortOrder,
		})
	}

	if !sum.Equal(arg.TotalBudget) {
		return models.Job{}, nil, fmt.Errorf("total budget %s does not match milestone sum %s: %w", arg.TotalBudget, sum, apperrors.ErrInvalidJob)
	}

	var job models.Job
	var created []models.Milestone
	err := s.storage.InTx(ctx, func(store repository.Storage) error {
		var err error
		job, created, err = store.Job().CreateJob(ctx, repository.CreateJobParams{
			ClientID:    clientID,
			Title:       arg.Title,
			Description: arg.Description,
			Category:    arg.Category,
			TotalBudget: arg.TotalBudget,
			Milestones:  milestones,
		})
		return err
	})

	return job, created, err
}

func (s *JobService) Get(ctx context.Context, jobID uuid.UUID) (models.Job, []models.Milestone, error) {
	job, err := s.storage.Job().GetJob(ctx, jobID)
	if err != nil {
		return job, nil, err
	}

	milestones, err := s.storage.Milestone().ListByJob(ctx, jobID)
	return job, milestones, err
}

func (s *JobService) ListOpen(ctx context.Context) ([]models.Job, error) {
	return s.storage.Job().ListOpen(ctx)
}
