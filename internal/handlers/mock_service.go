package handlers

import (
	"context"
	"net/http"
	"time"

	"campus_parking/internal/models"
	"campus_parking/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockSession struct {
	state service.SessionState
	user  *models.User

	loginErr    error
	adminErr    error
	scheduleErr error
	logoutErr   error

	loginCalls    int
	scheduleCalls int
	logoutCalls   int
	lastLoginUser models.User
}

func (m *mockSession) LoginSucceeded(u models.User) error {
	m.loginCalls++
	m.lastLoginUser = u
	if m.loginErr == nil {
		m.state = service.StateSchedulingPreferences
		m.user = &u
	}
	return m.loginErr
}
func (m *mockSession) AdminEntered() error { return m.adminErr }
func (m *mockSession) ScheduleCompleted() error {
	m.scheduleCalls++
	if m.scheduleErr == nil {
		m.state = service.StateViewingDashboard
	}
	return m.scheduleErr
}
func (m *mockSession) Logout() error {
	m.logoutCalls++
	if m.logoutErr == nil {
		m.state = service.StateLoggedOut
		m.user = nil
	}
	return m.logoutErr
}
func (m *mockSession) Current() (service.SessionState, *models.User) {
	return m.state, m.user
}

type mockBoard struct {
	spots     []models.ParkingSpot
	levels    []int
	levelErr  error
	levelResp []models.ParkingSpot

	activateCalls   int
	deactivateCalls int
	lastActivated   models.User
	lastLevel       int
}

func (m *mockBoard) Activate(u models.User) {
	m.activateCalls++
	m.lastActivated = u
}
func (m *mockBoard) Deactivate()                       { m.deactivateCalls++ }
func (m *mockBoard) Refresh(ctx context.Context) error { return nil }
func (m *mockBoard) Snapshot() []models.ParkingSpot    { return m.spots }
func (m *mockBoard) Levels() []int                     { return m.levels }
func (m *mockBoard) SpotsOnLevel(level int) ([]models.ParkingSpot, error) {
	m.lastLevel = level
	if m.levelErr != nil {
		return nil, m.levelErr
	}
	return m.levelResp, nil
}
func (m *mockBoard) Select(spotID int) (models.ParkingSpot, bool) {
	for _, s := range m.spots {
		if s.SpotID == spotID {
			return s, true
		}
	}
	return models.ParkingSpot{}, false
}

type mockBooking struct {
	openErr    error
	slots      []service.SlotStatus
	slotsErr   error
	receipt    models.ReservationReceipt
	reserveErr error

	openCalls    int
	reserveCalls int
	closeCalls   int
	lastSpot     models.ParkingSpot
	lastDate     string
	lastStart    string
}

func (m *mockBooking) Open(ctx context.Context, spot models.ParkingSpot, date string) error {
	m.openCalls++
	m.lastSpot = spot
	m.lastDate = date
	return m.openErr
}
func (m *mockBooking) Slots() ([]service.SlotStatus, error) { return m.slots, m.slotsErr }
func (m *mockBooking) Reserve(ctx context.Context, user models.User, start string) (models.ReservationReceipt, error) {
	m.reserveCalls++
	m.lastStart = start
	return m.receipt, m.reserveErr
}
func (m *mockBooking) Close() { m.closeCalls++ }

type mockSchedule struct {
	replaceErr error
	saveErr    error

	lastReplaced []string
	saveCalls    int
	lastUserID   string
}

func (m *mockSchedule) Toggle(label string) error { return nil }
func (m *mockSchedule) Replace(labels []string) error {
	m.lastReplaced = labels
	return m.replaceErr
}
func (m *mockSchedule) Selected() []string { return m.lastReplaced }
func (m *mockSchedule) Save(ctx context.Context, userID string) error {
	m.saveCalls++
	m.lastUserID = userID
	return m.saveErr
}

type mockStats struct {
	stats models.AdminStats
	err   error
}

func (m *mockStats) Overview(ctx context.Context) (models.AdminStats, error) {
	return m.stats, m.err
}

type mockEventLog struct {
	resp     []models.GatewayEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastOp   string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.GatewayEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastOp = f.Op
	return m.resp, m.err
}

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

// ---- Gateway Mock ----

type mockGateway struct {
	user     models.User
	loginErr error

	lastStudentID string
	lastFlag      bool
}

func (m *mockGateway) Login(ctx context.Context, studentID, displayName string, needsAccessibleSpot bool) (models.User, error) {
	m.lastStudentID = studentID
	m.lastFlag = needsAccessibleSpot
	return m.user, m.loginErr
}
func (m *mockGateway) ListSpots(ctx context.Context, accessibleOnly bool) ([]models.ParkingSpot, error) {
	return nil, nil
}
func (m *mockGateway) ListReservations(ctx context.Context, spotID int, date string) ([]models.Reservation, error) {
	return nil, nil
}
func (m *mockGateway) CreateReservation(ctx context.Context, userID string, spotID int, startTime, endTime string) (models.ReservationReceipt, error) {
	return models.ReservationReceipt{}, nil
}
func (m *mockGateway) SaveSchedule(ctx context.Context, userID string, slots []string) error {
	return nil
}
func (m *mockGateway) AdminStats(ctx context.Context) (models.AdminStats, error) {
	return models.AdminStats{}, nil
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service, gw *mockGateway) *gin.Engine {
	if gw == nil {
		gw = &mockGateway{}
	}
	h := NewHandler(s, gw, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
