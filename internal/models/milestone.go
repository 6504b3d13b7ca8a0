package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MilestonePending   = "PENDING"
	MilestoneFunded    = "FUNDED"
	MilestoneReview    = "REVIEW"
	MilestoneCompleted = "COMPLETED"
	MilestoneDisputed  = "DISPUTED"
)

type Milestone struct {
	ID        uuid.UUID
	JobID     uuid.UUID
	Title     string
	Amount    decimal.Decimal
	SortOrder int
	Status    string
}
