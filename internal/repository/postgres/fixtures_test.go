package postgres

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/quickjob/quickjob/internal/models"
	"github.com/quickjob/quickjob/internal/repository"
)

// Shared row fixtures for repo tests. Each helper creates the minimum rows
// the foreign keys require and fails the test on any error.

func createTestUser(t *testing.T, db DBTX, role string) models.User {
	t.Helper()

	r := UserRepo{DB: db}
	user, err := r.CreateUser(t.Context(), repository.CreateUserParams{
		Email:          fmt.Sprintf("%s@example.com", uuid.NewString()),
		HashedPassword: "hashed-password",
		FullName:       "Test User",
		Role:           role,
	})
	require.NoError(t, err, "fixture user should be created without errors")

	return user
}

func createTestJob(t *testing.T, db DBTX, clientID uuid.UUID, amounts ...string) (models.Job, []models.Milestone) {
	t.Helper()

	milestones := make([]repository.CreateMilestoneParams, 0, len(amounts))
	total := decimal.Zero
	for i, amount := range amounts {
		d := decimal.RequireFromString(amount)
		total = total.Add(d)
		milestones = append(milestones, repository.CreateMilestoneParams{
			Title:     fmt.Sprintf("Milestone %d", i+1),
			Amount:    d,
			SortOrder: i + 1,
		})
	}

	r := JobRepo{DB: db}
	job, created, err := r.CreateJob(t.Context(), repository.CreateJobParams{
		ClientID:    clientID,
		Title:       "Build a landing page",
		Description: "One page site with a contact form",
		Category:    "web",
		TotalBudget: total,
		Milestones:  milestones,
	})
	require.NoError(t, err, "fixture job should be created without errors")

	return job, created
}
