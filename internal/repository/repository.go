package repository

import (
	"context"
	"database/sql"
	"time"

	"campus_parking/internal/models"
)

// Authorization stores operator accounts for the admin console.
type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.AdminAccount, error)
}

// EventRepo is the append-only diagnostics log of gateway fallbacks.
type EventRepo interface {
	Append(ctx context.Context, e models.GatewayEvent) error
	List(ctx context.Context, from, to time.Time, op string) ([]models.GatewayEvent, error)
}

type Repository struct {
	EventRepo EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		EventRepo: NewEventSQLite(db),
		Auth:      NewAdminRepository(db),
	}
}
