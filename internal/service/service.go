package service

import (
	"context"
	"time"

	"campus_parking/internal/gateway"
	"campus_parking/internal/logger"
	"campus_parking/internal/models"
	"campus_parking/internal/repository"
)

// SessionState is the single mounted top-level screen.
type SessionState string

const (
	StateLoggedOut             SessionState = "LOGGED_OUT"
	StateSchedulingPreferences SessionState = "SCHEDULING_PREFERENCES"
	StateViewingDashboard      SessionState = "VIEWING_DASHBOARD"
	StateAdminConsole          SessionState = "ADMIN_CONSOLE"
)

// Session governs the legal screen transitions and holds the authenticated
// user for the lifetime of the session.
type Session interface {
	LoginSucceeded(u models.User) error
	AdminEntered() error
	ScheduleCompleted() error
	Logout() error
	Current() (SessionState, *models.User)
}

// Board is the live spot occupancy view: an owned polling loop that replaces
// its snapshot wholesale on every successful fetch.
type Board interface {
	Activate(user models.User)
	Deactivate()
	Refresh(ctx context.Context) error
	Snapshot() []models.ParkingSpot
	Levels() []int
	SpotsOnLevel(level int) ([]models.ParkingSpot, error)
	Select(spotID int) (models.ParkingSpot, bool)
}

// SlotStatus is one row of the booking grid.
type SlotStatus struct {
	Window   models.SlotWindow `json:"window"`
	Occupied bool              `json:"occupied"`
	InFlight bool              `json:"in_flight"`
}

// Booking drives the reservation modal for one selected spot.
type Booking interface {
	Open(ctx context.Context, spot models.ParkingSpot, date string) error
	Slots() ([]SlotStatus, error)
	Reserve(ctx context.Context, user models.User, start string) (models.ReservationReceipt, error)
	Close()
}

// Schedule is the time-slot preference screen shown after login.
type Schedule interface {
	Toggle(label string) error
	Replace(labels []string) error
	Selected() []string
	Save(ctx context.Context, userID string) error
}

// Stats exposes the operator console aggregate.
type Stats interface {
	Overview(ctx context.Context) (models.AdminStats, error)
}

// EventLog exposes the gateway fallback diagnostics with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.GatewayEvent, error)
}

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// LogFilter supports diagnostics filtering by time range and operation.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Op   string    // "", "LOGIN", "LIST_SPOTS", "LIST_RESERVATIONS", "CREATE_RESERVATION", "SAVE_SCHEDULE"
}

// Config carries the service-level tuning knobs loaded from config.yml.
type Config struct {
	PollInterval time.Duration
	SigningKey   string
	TokenTTL     time.Duration
}

// Service aggregates all sub-services behind one wiring point.
type Service struct {
	Session
	Board
	Booking
	Schedule
	Stats
	EventLog
	Authorization
}

// NewService wires the gateway and repository layers into concrete services.
// Booking completions trigger an immediate board refresh, mirroring the
// dashboard's onReservationComplete callback.
func NewService(repos *repository.Repository, gw gateway.Gateway, log *logger.Logger, cfg Config) *Service {
	board := NewBoardService(gw, log, cfg.PollInterval)
	booking := NewBookingService(gw, log, func() {
		if err := board.Refresh(context.Background()); err != nil {
			log.Infow("board_refresh_after_booking_failed", "err", err)
		}
	})
	return &Service{
		Session:       NewSessionManager(),
		Board:         board,
		Booking:       booking,
		Schedule:      NewScheduleService(gw, log),
		Stats:         NewStatsService(gw),
		EventLog:      NewEventLogService(repos.EventRepo),
		Authorization: NewAuthService(repos.Auth, cfg.SigningKey, cfg.TokenTTL),
	}
}
