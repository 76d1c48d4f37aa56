package gateway

import (
	"context"
	"time"

	"campus_parking/internal/models"
)

// Gateway is the sole boundary between the application and the remote
// reservation service. Every operation translates transport, protocol and
// shape failures into a deterministic per-operation fallback so the UI layer
// never strands in a loading or error state.
type Gateway interface {
	// Login asserts an identity. In demo mode it never fails: on any backend
	// failure it returns a locally built User with an offline sentinel ID.
	Login(ctx context.Context, studentID, displayName string, needsAccessibleSpot bool) (models.User, error)

	// ListSpots returns the spots whose accessibility flag equals
	// accessibleOnly. A failed or empty inventory degrades to the built-in
	// mock inventory, filtered the same way; the result is never empty
	// unless the filter itself matches nothing.
	ListSpots(ctx context.Context, accessibleOnly bool) ([]models.ParkingSpot, error)

	// ListReservations returns the reservations for one spot and day.
	// Any failure degrades to an empty list ("nothing booked").
	ListReservations(ctx context.Context, spotID int, date string) ([]models.Reservation, error)

	// CreateReservation submits a booking. In demo mode a backend failure is
	// replaced by a fabricated success receipt with a generated ID.
	CreateReservation(ctx context.Context, userID string, spotID int, startTime, endTime string) (models.ReservationReceipt, error)

	// SaveSchedule fires one write per slot, concurrently. Partial failures
	// are logged, never surfaced.
	SaveSchedule(ctx context.Context, userID string, slots []string) error

	// AdminStats synthesizes operator figures from the current inventory
	// plus randomized environmental readings. It has no failure path.
	AdminStats(ctx context.Context) (models.AdminStats, error)
}

// Config tunes the gateway client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Strict disables the fabricated-success demo policy: Login and
	// CreateReservation propagate backend failures to the caller instead of
	// inventing offline results. Read paths keep their fallbacks either way.
	Strict bool
}

// Fallback operation tags recorded on diagnostics events.
const (
	OpLogin             = "LOGIN"
	OpListSpots         = "LIST_SPOTS"
	OpListReservations  = "LIST_RESERVATIONS"
	OpCreateReservation = "CREATE_RESERVATION"
	OpSaveSchedule      = "SAVE_SCHEDULE"
)

// Fallback reasons, per the error taxonomy: transport failure, non-2xx
// status, undecodable body shape, or a well-formed but empty result.
const (
	ReasonTransport = "TRANSPORT"
	ReasonStatus    = "STATUS"
	ReasonShape     = "SHAPE"
	ReasonEmpty     = "EMPTY"
)
