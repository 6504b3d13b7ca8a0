package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/quickjob/quickjob/internal/handlers/render"
	"github.com/quickjob/quickjob/internal/handlers/userctx"
	"github.com/quickjob/quickjob/internal/logger"
	"github.com/quickjob/quickjob/internal/models"
)

// milestoneID parses the path parameter shared by every escrow route
func milestoneID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("milestoneID"))
	if err != nil {
		render.ServiceError(w, "Invalid milestone id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func caller(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
	return user, ok
}

func handleLockFunds(escrowService escrowService, l logger.Logger) http.Handler {
	type response struct {
		MilestoneID  string `json:"milestone_id"`
		AmountLocked string `json:"amount_locked"`
		Status       string `json:"status"`
		JobStatus    string `json:"job_status"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := caller(w, r)
		if !ok {
			return
		}
		id, ok := milestoneID(w, r)
		if !ok {
			return
		}

		res, err := escrowService.LockFunds(r.Context(), user.ID, id)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, response{
			MilestoneID:  res.MilestoneID.String(),
			AmountLocked: res.AmountLocked.StringFixed(2),
			Status:       res.Status,
			JobStatus:    res.JobStatus,
		})
	})
}

func handleSubmitMilestone(escrowService escrowService, l logger.Logger) http.Handler {
	type response struct {
		MilestoneID string `json:"milestone_id"`
		Status      string `json:"status"`
		Message     string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := caller(w, r)
		if !ok {
			return
		}
		id, ok := milestoneID(w, r)
		if !ok {
			return
		}

		res, err := escrowService.Submit(r.Context(), user.ID, id)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, response{
			MilestoneID: res.MilestoneID.String(),
			Status:      res.Status,
			Message:     "Work submitted for client review",
		})
	})
}

func handleReleaseMilestone(escrowService escrowService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := caller(w, r)
		if !ok {
			return
		}
		id, ok := milestoneID(w, r)
		if !ok {
			return
		}

		res, err := escrowService.Release(r.Context(), user.ID, id)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, toReleaseResponse(res))
	})
}

func handleDisputeMilestone(escrowService escrowService, l logger.Logger) http.Handler {
	type response struct {
		MilestoneID string `json:"milestone_id"`
		Status      string `json:"status"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := caller(w, r)
		if !ok {
			return
		}
		id, ok := milestoneID(w, r)
		if !ok {
			return
		}

		res, err := escrowService.Dispute(r.Context(), user.ID, id)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, response{
			MilestoneID: res.MilestoneID.String(),
			Status:      res.Status,
		})
	})
}

func handleResolveRefund(escrowService escrowService, l logger.Logger) http.Handler {
	type response struct {
		MilestoneID string `json:"milestone_id"`
		Refunded    string `json:"refunded"`
		Status      string `json:"status"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := caller(w, r)
		if !ok {
			return
		}
		id, ok := milestoneID(w, r)
		if !ok {
			return
		}

		res, err := escrowService.ResolveRefund(r.Context(), user, id)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, response{
			MilestoneID: res.MilestoneID.String(),
			Refunded:    res.Refunded.StringFixed(2),
			Status:      res.Status,
		})
	})
}

func handleResolveRelease(escrowService escrowService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := caller(w, r)
		if !ok {
			return
		}
		id, ok := milestoneID(w, r)
		if !ok {
			return
		}

		res, err := escrowService.ResolveRelease(r.Context(), user, id)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, toReleaseResponse(res))
	})
}

type releaseResponse struct {
	MilestoneID    string `json:"milestone_id"`
	Released       string `json:"released"`
	PlatformFee    string `json:"platform_fee"`
	WorkerReceived string `json:"worker_received"`
	Status         string `json:"status"`
	JobCompleted   bool   `json:"job_completed"`
}

func toReleaseResponse(res escrowReleaseResult) releaseResponse {
	return releaseResponse{
		MilestoneID:    res.MilestoneID.String(),
		Released:       res.Released.StringFixed(2),
		PlatformFee:    res.PlatformFee.StringFixed(2),
		WorkerReceived: res.WorkerReceived.StringFixed(2),
		Status:         res.Status,
		JobCompleted:   res.JobCompleted,
	}
}
