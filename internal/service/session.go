package service

import (
	"fmt"
	"sync"

	"campus_parking/internal/models"
)

// ErrIllegalTransition is returned when a view change is requested that the
// transition table does not permit.
var ErrIllegalTransition = fmt.Errorf("illegal view transition")

// SessionManager holds the authenticated user and the current screen.
// Exactly one top-level screen is mounted at a time:
//
//	LoggedOut --login success--> SchedulingPreferences (carries the User)
//	LoggedOut --admin entry----> AdminConsole          (no User required)
//	SchedulingPreferences --save or skip--> ViewingDashboard
//	ViewingDashboard --logout--> LoggedOut
//	AdminConsole     --logout--> LoggedOut
//
// Logout always clears the held identity before the state flips back, so no
// state can be re-entered with a stale User.
type SessionManager struct {
	mu    sync.Mutex
	state SessionState
	user  *models.User
}

func NewSessionManager() *SessionManager {
	return &SessionManager{state: StateLoggedOut}
}

var _ Session = (*SessionManager)(nil)

func (m *SessionManager) LoginSucceeded(u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateLoggedOut {
		return transitionErr(m.state, StateSchedulingPreferences)
	}
	m.user = &u
	m.state = StateSchedulingPreferences
	return nil
}

func (m *SessionManager) AdminEntered() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateLoggedOut {
		return transitionErr(m.state, StateAdminConsole)
	}
	m.state = StateAdminConsole
	return nil
}

func (m *SessionManager) ScheduleCompleted() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateSchedulingPreferences {
		return transitionErr(m.state, StateViewingDashboard)
	}
	m.state = StateViewingDashboard
	return nil
}

func (m *SessionManager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateViewingDashboard && m.state != StateAdminConsole {
		return transitionErr(m.state, StateLoggedOut)
	}
	m.user = nil
	m.state = StateLoggedOut
	return nil
}

// Current returns the mounted state and a copy of the session user, if any.
func (m *SessionManager) Current() (SessionState, *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return m.state, nil
	}
	u := *m.user
	return m.state, &u
}

func transitionErr(from, to SessionState) error {
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
}
