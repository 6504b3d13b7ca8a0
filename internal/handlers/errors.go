package handlers

import (
	"errors"
	"net/http"

	"github.com/quickjob/quickjob/internal/apperrors"
	"github.com/quickjob/quickjob/internal/handlers/render"
	"github.com/quickjob/quickjob/internal/logger"
)

// serviceError maps business failures to transport codes. Messages of known
// errors are written for callers and safe to expose; anything unknown is a
// system error that gets logged and hidden.
func serviceError(w http.ResponseWriter, l logger.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrWalletNotFound),
		errors.Is(err, apperrors.ErrJobNotFound),
		errors.Is(err, apperrors.ErrMilestoneNotFound),
		errors.Is(err, apperrors.ErrProposalNotFound):
		render.ServiceError(w, err.Error(), http.StatusNotFound)

	case errors.Is(err, apperrors.ErrForbidden):
		render.ServiceError(w, err.Error(), http.StatusForbidden)

	case errors.Is(err, apperrors.ErrInsufficientFunds):
		render.ServiceError(w, err.Error(), http.StatusPaymentRequired)

	case errors.Is(err, apperrors.ErrInvalidState),
		errors.Is(err, apperrors.ErrInvalidAmount),
		errors.Is(err, apperrors.ErrInvalidJob):
		render.ServiceError(w, err.Error(), http.StatusBadRequest)

	case errors.Is(err, apperrors.ErrUserAlreadyExists),
		errors.Is(err, apperrors.ErrProposalExists):
		render.ServiceError(w, err.Error(), http.StatusConflict)

	default:
		l.Error("Unhandled service error", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}
