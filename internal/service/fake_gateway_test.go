package service

import (
	"context"
	"sync"

	"campus_parking/internal/models"
)

type createCall struct {
	userID    string
	spotID    int
	startTime string
	endTime   string
}

// fakeGateway records calls and serves canned data. When gate is non-nil,
// ListSpots blocks until the channel is closed, which lets tests race a
// deactivation against an in-flight poll.
type fakeGateway struct {
	mu sync.Mutex

	spots     []models.ParkingSpot
	listCalls int
	lastFlag  bool
	gate      chan struct{}

	reservations []models.Reservation

	receipt     models.ReservationReceipt
	createErr   error
	createCalls []createCall

	scheduleCalls [][]string

	stats models.AdminStats
}

func (f *fakeGateway) Login(ctx context.Context, studentID, displayName string, needsAccessibleSpot bool) (models.User, error) {
	return models.User{
		UserID:              "u-1",
		DisplayName:         displayName,
		StudentID:           studentID,
		NeedsAccessibleSpot: needsAccessibleSpot,
	}, nil
}

func (f *fakeGateway) ListSpots(ctx context.Context, accessibleOnly bool) ([]models.ParkingSpot, error) {
	// Snapshot the gate under the lock; tests swap it between polls.
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.lastFlag = accessibleOnly
	out := make([]models.ParkingSpot, len(f.spots))
	copy(out, f.spots)
	return out, nil
}

func (f *fakeGateway) ListReservations(ctx context.Context, spotID int, date string) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Reservation, len(f.reservations))
	copy(out, f.reservations)
	return out, nil
}

func (f *fakeGateway) CreateReservation(ctx context.Context, userID string, spotID int, startTime, endTime string) (models.ReservationReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls = append(f.createCalls, createCall{userID, spotID, startTime, endTime})
	return f.receipt, f.createErr
}

func (f *fakeGateway) SaveSchedule(ctx context.Context, userID string, slots []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduleCalls = append(f.scheduleCalls, append([]string(nil), slots...))
	return nil
}

func (f *fakeGateway) AdminStats(ctx context.Context) (models.AdminStats, error) {
	return f.stats, nil
}

func (f *fakeGateway) listCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func demoSpots() []models.ParkingSpot {
	return []models.ParkingSpot{
		{SpotID: 1, SpotNumber: "A1", LevelID: 1, IsAvailable: true},
		{SpotID: 2, SpotNumber: "A2", LevelID: 1, IsAvailable: false},
		{SpotID: 3, SpotNumber: "A3", LevelID: 1, IsAvailable: true},
		{SpotID: 4, SpotNumber: "B1", LevelID: 1, IsAvailable: false},
		{SpotID: 5, SpotNumber: "B2", LevelID: 2, IsAvailable: true},
		{SpotID: 6, SpotNumber: "B3", LevelID: 2, IsAvailable: false},
		{SpotID: 7, SpotNumber: "D1", LevelID: 2, IsAvailable: true, IsAccessible: true},
		{SpotID: 8, SpotNumber: "D2", LevelID: 2, IsAvailable: false, IsAccessible: true},
	}
}
