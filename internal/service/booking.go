package service

import (
	"context"
	"errors"
	"sync"

	"campus_parking/internal/gateway"
	"campus_parking/internal/logger"
	"campus_parking/internal/models"
)

var (
	ErrBookingClosed = errors.New("booking flow is not open")
	ErrUnknownSlot   = errors.New("start time does not match a catalog slot")
	ErrSlotOccupied  = errors.New("slot is already reserved")
	ErrSlotInFlight  = errors.New("slot submission already in flight")
)

// BookingService drives the reservation modal: opened for one spot and one
// day, it fetches the existing reservations and offers the fixed eight-slot
// grid. Closing discards all local state so a reopen always re-fetches.
type BookingService struct {
	gw         gateway.Gateway
	log        *logger.Logger
	onComplete func()

	mu           sync.Mutex
	open         bool
	spot         models.ParkingSpot
	date         string // "YYYY-MM-DD"
	reservations []models.Reservation
	inFlight     map[string]bool // keyed by slot start "HH:MM"
}

func NewBookingService(gw gateway.Gateway, log *logger.Logger, onComplete func()) *BookingService {
	return &BookingService{gw: gw, log: log, onComplete: onComplete}
}

var _ Booking = (*BookingService)(nil)

// Open fetches the reservations for the target spot and day. Opening over an
// already open flow replaces it.
func (s *BookingService) Open(ctx context.Context, spot models.ParkingSpot, date string) error {
	reservations, err := s.gw.ListReservations(ctx, spot.SpotID, date)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
	s.spot = spot
	s.date = date
	s.reservations = reservations
	s.inFlight = make(map[string]bool)
	return nil
}

// Slots reports, for each catalog window, whether it is occupied (exact
// match of the slot start against any reservation's start) or has a
// submission in flight.
func (s *BookingService) Slots() ([]SlotStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil, ErrBookingClosed
	}

	catalog := models.SlotCatalog()
	out := make([]SlotStatus, 0, len(catalog))
	for _, w := range catalog {
		out = append(out, SlotStatus{
			Window:   w,
			Occupied: s.occupiedLocked(w.Start),
			InFlight: s.inFlight[w.Start],
		})
	}
	return out, nil
}

func (s *BookingService) occupiedLocked(start string) bool {
	for _, r := range s.reservations {
		if r.StartClock() == start {
			return true
		}
	}
	return false
}

// Reserve submits the given free slot. Only that slot is latched while the
// request is in flight; the rest of the grid stays actionable. On completion
// — success or failure alike, per the gateway's never-fail contract — the
// parent is notified to refresh the board and the flow closes itself.
func (s *BookingService) Reserve(ctx context.Context, user models.User, start string) (models.ReservationReceipt, error) {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return models.ReservationReceipt{}, ErrBookingClosed
	}
	window, ok := windowFor(start)
	if !ok {
		s.mu.Unlock()
		return models.ReservationReceipt{}, ErrUnknownSlot
	}
	if s.occupiedLocked(start) {
		s.mu.Unlock()
		return models.ReservationReceipt{}, ErrSlotOccupied
	}
	if s.inFlight[start] {
		s.mu.Unlock()
		return models.ReservationReceipt{}, ErrSlotInFlight
	}
	s.inFlight[start] = true
	spot, date := s.spot, s.date
	s.mu.Unlock()

	startTime := date + " " + window.Start + ":00"
	endTime := date + " " + window.End + ":00"
	receipt, err := s.gw.CreateReservation(ctx, user.UserID, spot.SpotID, startTime, endTime)

	s.mu.Lock()
	delete(s.inFlight, start)
	s.mu.Unlock()

	if s.onComplete != nil {
		s.onComplete()
	}
	s.Close()

	if err != nil {
		return models.ReservationReceipt{}, err
	}
	if s.log != nil {
		s.log.Infow("reservation_created",
			"spot_id", spot.SpotID, "start", startTime, "reservation_id", receipt.ReservationID)
	}
	return receipt, nil
}

// Close discards the local reservation list so a reopen always re-fetches.
func (s *BookingService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	s.spot = models.ParkingSpot{}
	s.date = ""
	s.reservations = nil
	s.inFlight = nil
}

func windowFor(start string) (models.SlotWindow, bool) {
	for _, w := range models.SlotCatalog() {
		if w.Start == start {
			return w, true
		}
	}
	return models.SlotWindow{}, false
}
