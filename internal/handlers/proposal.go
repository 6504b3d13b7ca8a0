package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quickjob/quickjob/internal/handlers/render"
	"github.com/quickjob/quickjob/internal/handlers/userctx"
	"github.com/quickjob/quickjob/internal/logger"
	"github.com/quickjob/quickjob/internal/models"
)

type proposalResponse struct {
	ID             string    `json:"id"`
	JobID          string    `json:"job_id"`
	WorkerID       string    `json:"worker_id"`
	ProposedAmount string    `json:"proposed_amount"`
	CoverLetter    string    `json:"cover_letter,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func toProposalResponse(p models.Proposal) proposalResponse {
	return proposalResponse{
		ID:             p.ID.String(),
		JobID:          p.JobID.String(),
		WorkerID:       p.WorkerID.String(),
		ProposedAmount: p.ProposedAmount.StringFixed(2),
		CoverLetter:    p.CoverLetter,
		Status:         p.Status,
		CreatedAt:      p.CreatedAt,
	}
}

func handleCreateProposal(proposalService proposalService, l logger.Logger) http.Handler {
	type request struct {
		ProposedAmount decimal.Decimal `json:"proposed_amount" validate:"required"`
		CoverLetter    string          `json:"cover_letter"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		jobID, err := uuid.Parse(r.PathValue("jobID"))
		if err != nil {
			render.ServiceError(w, "Invalid job id", http.StatusBadRequest)
			return
		}

		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		proposal, err := proposalService.Create(r.Context(), user.ID, jobID, req.ProposedAmount, req.CoverLetter)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSONWithStatus(w, toProposalResponse(proposal), http.StatusCreated)
	})
}

func handleListJobProposals(proposalService proposalService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		jobID, err := uuid.Parse(r.PathValue("jobID"))
		if err != nil {
			render.ServiceError(w, "Invalid job id", http.StatusBadRequest)
			return
		}

		proposals, err := proposalService.ListByJob(r.Context(), user.ID, jobID)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		responses := make([]proposalResponse, 0, len(proposals))
		for _, p := range proposals {
			responses = append(responses, toProposalResponse(p))
		}
		render.JSON(w, responses)
	})
}

func handleListMyProposals(proposalService proposalService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		proposals, err := proposalService.ListMine(r.Context(), user.ID)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		responses := make([]proposalResponse, 0, len(proposals))
		for _, p := range proposals {
			responses = append(responses, toProposalResponse(p))
		}
		render.JSON(w, responses)
	})
}

func handleAcceptProposal(proposalService proposalService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		proposalID, err := uuid.Parse(r.PathValue("proposalID"))
		if err != nil {
			render.ServiceError(w, "Invalid proposal id", http.StatusBadRequest)
			return
		}

		proposal, err := proposalService.Accept(r.Context(), user.ID, proposalID)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, toProposalResponse(proposal))
	})
}

func handleRejectProposal(proposalService proposalService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		proposalID, err := uuid.Parse(r.PathValue("proposalID"))
		if err != nil {
			render.ServiceError(w, "Invalid proposal id", http.StatusBadRequest)
			return
		}

		proposal, err := proposalService.Reject(r.Context(), user.ID, proposalID)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, toProposalResponse(proposal))
	})
}
