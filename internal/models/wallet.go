package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TransactionTypeDeposit     = "DEPOSIT"
	TransactionTypeEscrowLock  = "ESCROW_LOCK"
	TransactionTypeRelease     = "RELEASE"
	TransactionTypePlatformFee = "PLATFORM_FEE"
	TransactionTypeRefund      = "REFUND"
	TransactionTypeWithdrawal  = "WITHDRAWAL"
)

// Wallet keeps two balances per user: funds free to spend and funds locked
// in escrow. Both are exact decimals and never negative.
type Wallet struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Available decimal.Decimal
	Frozen    decimal.Decimal
	CreatedAt time.Time
}

// Transaction is one immutable ledger row. Every balance mutation is paired
// with exactly one such row, so wallet history is reconstructible.
type Transaction struct {
	ID            uuid.UUID
	WalletID      uuid.UUID
	Type          string
	Amount        decimal.Decimal
	MilestoneID   *uuid.UUID
	ReferenceNote string
	CreatedAt     time.Time
}
