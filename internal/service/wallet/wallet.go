package wallet

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quickjob/quickjob/internal/apperrors"
	"github.com/quickjob/quickjob/internal/models"
	"github.com/quickjob/quickjob/internal/repository"
)

// Service exposes the four money movement primitives plus wallet queries.
//
// Freeze, Release and Refund are single atomic steps inside a caller supplied
// unit of work: they take the transaction bound Storage as a parameter so the
// escrow orchestrator composes them with status transitions in one commit.
// Deposit runs its own unit of work and may be called directly.
type Service struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *Service {
	return &Service{storage: storage}
}

// Freeze moves amount from available to frozen on the wallet and appends one
// ESCROW_LOCK ledger row. The wallet row is locked before the sufficiency
// check so concurrent freezes on the same wallet serialize.
func (s *Service) Freeze(ctx context.Context, store repository.Storage, walletID uuid.UUID, amount decimal.Decimal, milestoneID uuid.UUID) error {
	if !amount.IsPositive() {
		return apperrors.ErrInvalidAmount
	}

	w, err := store.Wallet().GetWalletForUpdate(ctx, walletID)
	if err != nil {
		return err
	}

	if w.Available.LessThan(amount) {
		return &apperrors.InsufficientFundsError{Available: w.Available, Required: amount}
	}

	if _, err := store.Wallet().UpdateBalances(ctx, walletID, amount.Neg(), amount); err != nil {
		return err
	}

	_, err = store.Transaction().CreateTransaction(ctx, repository.CreateTransactionParams{
		WalletID:      walletID,
		Type:          models.TransactionTypeEscrowLock,
		Amount:        amount,
		MilestoneID:   &milestoneID,
		ReferenceNote: fmt.Sprintf("Escrow lock for milestone %s", milestoneID),
	})

	return err
}

// Release distributes a frozen amount: client frozen -= amount, worker
// available += workerAmount, platform available += fee. Three ledger rows are
// appended so each wallet's history alone explains its balance. Wallets are
// locked in ascending id order, the same order every concurrent release uses.
func (s *Service) Release(
	ctx context.Context,
	store repository.Storage,
	clientWalletID, workerWalletID, platformWalletID uuid.UUID,
	amount, fee, workerAmount decimal.Decimal,
	milestoneID uuid.UUID,
) error {
	if !fee.Add(workerAmount).Equal(amount) {
		return fmt.Errorf("release split %s + %s != %s: %w", fee, workerAmount, amount, apperrors.ErrInvariantViolation)
	}

	ids := []uuid.UUID{clientWalletID, workerWalletID, platformWalletID}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	for _, id := range ids {
		if _, err := store.Wallet().GetWalletForUpdate(ctx, id); err != nil {
			return err
		}
	}

	if _, err := store.Wallet().UpdateBalances(ctx, clientWalletID, decimal.Zero, amount.Neg()); err != nil {
		return err
	}
	if _, err := store.Wallet().UpdateBalances(ctx, workerWalletID, workerAmount, decimal.Zero); err != nil {
		return err
	}
	if _, err := store.Wallet().UpdateBalances(ctx, platformWalletID, fee, decimal.Zero); err != nil {
		return err
	}

	entries := []repository.CreateTransactionParams{
		{
			WalletID:      clientWalletID,
			Type:          models.TransactionTypeRelease,
			Amount:        amount,
			MilestoneID:   &milestoneID,
			ReferenceNote: fmt.Sprintf("Release for milestone %s", milestoneID),
		},
		{
			WalletID:      workerWalletID,
			Type:          models.TransactionTypeRelease,
			Amount:        workerAmount,
			MilestoneID:   &milestoneID,
			ReferenceNote: fmt.Sprintf("Payout for milestone %s", milestoneID),
		},
		{
			WalletID:      platformWalletID,
			Type:          models.TransactionTypePlatformFee,
			Amount:        fee,
			MilestoneID:   &milestoneID,
			ReferenceNote: fmt.Sprintf("Platform fee on milestone %s", milestoneID),
		},
	}
	for _, entry := range entries {
		if _, err := store.Transaction().CreateTransaction(ctx, entry); err != nil {
			return err
		}
	}

	return nil
}

// Refund moves a frozen amount back to available on the wallet and appends
// one REFUND ledger row.
func (s *Service) Refund(ctx context.Context, store repository.Storage, walletID uuid.UUID, amount decimal.Decimal, milestoneID uuid.UUID) error {
	if !amount.IsPositive() {
		return apperrors.ErrInvalidAmount
	}

	if _, err := store.Wallet().GetWalletForUpdate(ctx, walletID); err != nil {
		return err
	}

	if _, err := store.Wallet().UpdateBalances(ctx, walletID, amount, amount.Neg()); err != nil {
		return err
	}

	_, err := store.Transaction().CreateTransaction(ctx, repository.CreateTransactionParams{
		WalletID:      walletID,
		Type:          models.TransactionTypeRefund,
		Amount:        amount,
		MilestoneID:   &milestoneID,
		ReferenceNote: fmt.Sprintf("Refund for disputed milestone %s", milestoneID),
	})

	return err
}

// Deposit credits the user's available balance in its own unit of work.
// The wallet is created lazily on first deposit.
func (s *Service) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, referenceNote string) (models.Wallet, error) {
	if !amount.IsPositive() {
		return models.Wallet{}, apperrors.ErrInvalidAmount
	}

	var wallet models.Wallet
	err := s.storage.InTx(ctx, func(store repository.Storage) error {
		w, err := store.Wallet().CreateWallet(ctx, userID)
		if err != nil {
			return err
		}

		if _, err := store.Wallet().GetWalletForUpdate(ctx, w.ID); err != nil {
			return err
		}

		wallet, err = store.Wallet().UpdateBalances(ctx, w.ID, amount, decimal.Zero)
		if err != nil {
			return err
		}

		_, err = store.Transaction().CreateTransaction(ctx, repository.CreateTransactionParams{
			WalletID:      w.ID,
			Type:          models.TransactionTypeDeposit,
			Amount:        amount,
			ReferenceNote: referenceNote,
		})
		return err
	})

	return wallet, err
}

// ProvisionWallet creates an empty wallet for the user if it not exists yet
func (s *Service) ProvisionWallet(ctx context.Context, userID uuid.UUID) (models.Wallet, error) {
	return s.storage.Wallet().CreateWallet(ctx, userID)
}

func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (models.Wallet, error) {
	return s.storage.Wallet().GetWalletByUserID(ctx, userID)
}

func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	wallet, err := s.storage.Wallet().GetWalletByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.storage.Transaction().ListByWallet(ctx, wallet.ID)
}
