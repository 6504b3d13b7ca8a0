package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quickjob/quickjob/internal/handlers/render"
	"github.com/quickjob/quickjob/internal/handlers/userctx"
	"github.com/quickjob/quickjob/internal/logger"
	"github.com/quickjob/quickjob/internal/models"
	"github.com/quickjob/quickjob/internal/service/job"
)

type jobResponse struct {
	ID          string              `json:"id"`
	ClientID    string              `json:"client_id"`
	WorkerID    *string             `json:"worker_id,omitempty"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	TotalBudget string              `json:"total_budget"`
	Status      string              `json:"status"`
	Milestones  []milestoneResponse `json:"milestones,omitempty"`
}

type milestoneResponse struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Amount string `json:"amount"`
	Order  int    `json:"order"`
	Status string `json:"status"`
}

func toJobResponse(j models.Job, milestones []models.Milestone) jobResponse {
	resp := jobResponse{
		ID:          j.ID.String(),
		ClientID:    j.ClientID.String(),
		Title:       j.Title,
		Description: j.Description,
		Category:    j.Category,
		TotalBudget: j.TotalBudget.StringFixed(2),
		Status:      j.Status,
	}
	if j.WorkerID != nil {
		id := j.WorkerID.String()
		resp.WorkerID = &id
	}
	for _, m := range milestones {
		resp.Milestones = append(resp.Milestones, milestoneResponse{
			ID:     m.ID.String(),
			Title:  m.Title,
			Amount: m.Amount.StringFixed(2),
			Order:  m.SortOrder,
			Status: m.Status,
		})
	}
	return resp
}

func handleCreateJob(jobService jobService, l logger.Logger) http.Handler {
	type milestoneRequest struct {
		Title  string          `json:"title" validate:"required"`
		Amount decimal.Decimal `json:"amount" validate:"required"`
		Order  int             `json:"order" validate:"required,min=1"`
	}

	type request struct {
		Title       string             `json:"title" validate:"required"`
		Description string             `json:"description"`
		Category    string             `json:"category"`
		TotalBudget decimal.Decimal    `json:"total_budget" validate:"required"`
		Milestones  []milestoneRequest `json:"milestones" validate:"required,min=1,dive"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		params := job.CreateParams{
			Title:       req.Title,
			Description: req.Description,
			Category:    req.Category,
			TotalBudget: req.TotalBudget,
		}
		for _, m := range req.Milestones {
			params.Milestones = append(params.Milestones, job.MilestoneParams{
				Title:     m.Title,
				Amount:    m.Amount,
				SortOrder: m.Order,
			})
		}

		created, milestones, err := jobService.Create(r.Context(), user.ID, params)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSONWithStatus(w, toJobResponse(created, milestones), http.StatusCreated)
	})
}

func handleListJobs(jobService jobService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jobs, err := jobService.ListOpen(r.Context())
		if err != nil {
			serviceError(w, l, err)
			return
		}

		responses := make([]jobResponse, 0, len(jobs))
		for _, j := range jobs {
			responses = append(responses, toJobResponse(j, nil))
		}
		render.JSON(w, responses)
	})
}

func handleGetJob(jobService jobService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jobID, err := uuid.Parse(r.PathValue("jobID"))
		if err != nil {
			render.ServiceError(w, "Invalid job id", http.StatusBadRequest)
			return
		}

		j, milestones, err := jobService.Get(r.Context(), jobID)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, toJobResponse(j, milestones))
	})
}
