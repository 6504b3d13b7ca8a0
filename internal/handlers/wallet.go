package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quickjob/quickjob/internal/handlers/render"
	"github.com/quickjob/quickjob/internal/handlers/userctx"
	"github.com/quickjob/quickjob/internal/logger"
	"github.com/quickjob/quickjob/internal/service/access"
)

func handleWalletBalance(walletService walletService, l logger.Logger) http.Handler {
	type response struct {
		Available string `json:"available"`
		Frozen    string `json:"frozen"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		wallet, err := walletService.GetBalance(r.Context(), user.ID)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, response{
			Available: wallet.Available.StringFixed(2),
			Frozen:    wallet.Frozen.StringFixed(2),
		})
	})
}

func handleWalletTransactions(walletService walletService, l logger.Logger) http.Handler {
	type entry struct {
		ID            string    `json:"id"`
		Type          string    `json:"type"`
		Amount        string    `json:"amount"`
		MilestoneID   *string   `json:"milestone_id,omitempty"`
		ReferenceNote string    `json:"reference_note,omitempty"`
		CreatedAt     time.Time `json:"created_at"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		transactions, err := walletService.ListTransactions(r.Context(), user.ID)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		entries := make([]entry, 0, len(transactions))
		for _, t := range transactions {
			e := entry{
				ID:            t.ID.String(),
				Type:          t.Type,
				Amount:        t.Amount.StringFixed(2),
				ReferenceNote: t.ReferenceNote,
				CreatedAt:     t.CreatedAt,
			}
			if t.MilestoneID != nil {
				id := t.MilestoneID.String()
				e.MilestoneID = &id
			}
			entries = append(entries, e)
		}
		render.JSON(w, entries)
	})
}

// Admin only: credit a user's balance after verifying an external transfer
func handleDeposit(walletService walletService, l logger.Logger) http.Handler {
	type request struct {
		Amount        decimal.Decimal `json:"amount" validate:"required"`
		ReferenceNote string          `json:"reference_note" validate:"required"`
	}

	type response struct {
		WalletID  string `json:"wallet_id"`
		Available string `json:"available"`
		Frozen    string `json:"frozen"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if err := access.AssertAdmin(caller); err != nil {
			serviceError(w, l, err)
			return
		}

		userID, err := uuid.Parse(r.PathValue("userID"))
		if err != nil {
			render.ServiceError(w, "Invalid user id", http.StatusBadRequest)
			return
		}

		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		wallet, err := walletService.Deposit(r.Context(), userID, req.Amount, req.ReferenceNote)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, response{
			WalletID:  wallet.ID.String(),
			Available: wallet.Available.StringFixed(2),
			Frozen:    wallet.Frozen.StringFixed(2),
		})
	})
}
