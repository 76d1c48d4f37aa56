package handlers

import (
	"net/http"

	"campus_parking/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errLoginFailed     = "login failed"
	errNoActiveSession = "no active session"
	errSaveSchedule    = "failed to save schedule"
)

// LoginRequest is the session login payload.
type LoginRequest struct {
	// Student matricula, e.g. A00123456
	StudentID string `json:"student_id" binding:"required" example:"A00123456"`
	// Display name shown on the dashboard
	DisplayName string `json:"display_name" example:"Juan Perez"`
	// Restricts the whole session to accessible spots
	NeedsAccessibleSpot bool `json:"needs_accessible_spot" example:"false"`
}

// ScheduleRequest carries the arrival-slot preferences collected after login.
type ScheduleRequest struct {
	// Selected slot labels, e.g. "7:00 AM - 9:00 AM"
	Slots []string `json:"slots"`
	// Skip discards the selection and goes straight to the dashboard
	Skip bool `json:"skip" example:"false"`
}

// @Summary      Log in and start a session
// @Description  Authenticates against the remote backend (falling back to an offline user when it is unreachable) and moves the session to SCHEDULING_PREFERENCES.
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body  LoginRequest  true  "Login payload"
// @Success      200  {object}  map[string]interface{}  "user, state"
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /session/login [post]
func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	ctx := c.Request.Context()
	user, err := h.gateway.Login(ctx, req.StudentID, req.DisplayName, req.NeedsAccessibleSpot)
	if err != nil {
		// Only reachable in strict mode; demo mode always yields a user.
		h.logAndJSONError(c, http.StatusBadGateway, errLoginFailed, "session_login_failed", err, "student_id", req.StudentID)
		return
	}

	if err := h.services.LoginSucceeded(user); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"state": service.StateSchedulingPreferences,
	})
}

// @Summary      Save schedule preferences
// @Description  Persists the selected arrival slots (or skips them) and moves the session to VIEWING_DASHBOARD, which starts the board poller.
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body  ScheduleRequest  true  "Slot selection"
// @Success      200  {object}  map[string]interface{}  "state, saved_slots"
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /session/schedule [post]
func (h *Handler) schedule(c *gin.Context) {
	var req ScheduleRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	_, user := h.services.Current()
	if user == nil {
		c.JSON(http.StatusConflict, gin.H{"error": errNoActiveSession})
		return
	}

	saved := 0
	if !req.Skip && len(req.Slots) > 0 {
		if err := h.services.Schedule.Replace(req.Slots); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := h.services.Schedule.Save(c.Request.Context(), user.UserID); err != nil {
			h.logAndJSONError(c, http.StatusInternalServerError, errSaveSchedule, "session_schedule_save_failed", err)
			return
		}
		saved = len(req.Slots)
	}

	if err := h.services.ScheduleCompleted(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	h.services.Board.Activate(*user)

	c.JSON(http.StatusOK, gin.H{
		"state":       service.StateViewingDashboard,
		"saved_slots": saved,
	})
}

// @Summary      Log out
// @Description  Stops the board poller, discards any booking in progress and returns the session to LOGGED_OUT.
// @Tags         session
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /session/logout [post]
func (h *Handler) logout(c *gin.Context) {
	h.services.Booking.Close()
	h.services.Board.Deactivate()

	if err := h.services.Logout(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": string(service.StateLoggedOut)})
}
