package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ProposalPending   = "PENDING"
	ProposalAccepted  = "ACCEPTED"
	ProposalRejected  = "REJECTED"
	ProposalWithdrawn = "WITHDRAWN"
)

type Proposal struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	JobID          uuid.UUID
	WorkerID       uuid.UUID
	ProposedAmount decimal.Decimal
	CoverLetter    string
	Status         string
}
