package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleClient = "CLIENT"
	RoleWorker = "WORKER"
	RoleAdmin  = "ADMIN"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Email          string
	HashedPassword string
	FullName       string
	Role           string
}
