package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	JobOpen       = "OPEN"
	JobAssigned   = "ASSIGNED"
	JobInProgress = "IN_PROGRESS"
	JobCompleted  = "COMPLETED"
	JobDisputed   = "DISPUTED"
	JobCancelled  = "CANCELLED"
)

type Job struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	ClientID    uuid.UUID
	WorkerID    *uuid.UUID
	Title       string
	Description string
	Category    string
	TotalBudget decimal.Decimal
	Status      string
}
