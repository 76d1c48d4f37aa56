package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"campus_parking/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	errInvalidLevel  = "invalid 'level' value"
	errInvalidSpotID = "invalid spot id"
	errUnknownSpot   = "unknown spot"
	errLoadSlots     = "failed to load slot availability"

	layoutDay = "2006-01-02"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// ReserveRequest is the booking submission payload.
type ReserveRequest struct {
	// Slot start in HH:MM 24h form, e.g. "07:00"
	StartTime string `json:"start_time" binding:"required" example:"07:00"`
	// Day of the reservation; defaults to today
	Date string `json:"date" example:"2026-08-31"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Current board snapshot
// @Description  Returns the polled spot snapshot. With ?level= the response is restricted to that board level; accessible sessions only expose level 1.
// @Tags         board
// @Produce      json
// @Param        level  query  int  false  "Board level (1-based)"
// @Success      200  {object}  map[string]interface{}  "spots, levels"
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/board [get]
func (h *Handler) getBoard(c *gin.Context) {
	if qs := c.Query("level"); qs != "" {
		level, err := strconv.Atoi(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidLevel})
			return
		}
		spots, err := h.services.Board.SpotsOnLevel(level)
		if err != nil {
			if errors.Is(err, service.ErrLevelHidden) {
				c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"level": level, "spots": spots})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"spots":  h.services.Board.Snapshot(),
		"levels": h.services.Board.Levels(),
	})
}

// @Summary      Slot availability for one spot
// @Description  Opens the booking grid for the spot: the eight fixed two-hour windows with their occupancy for the requested day.
// @Tags         board
// @Produce      json
// @Param        id    path   int     true   "Spot ID"
// @Param        date  query  string  false  "Day (YYYY-MM-DD), defaults to today"
// @Success      200  {object}  map[string]interface{}  "spot, date, slots"
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/board/spots/{id}/slots [get]
func (h *Handler) getSpotSlots(c *gin.Context) {
	spotID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidSpotID})
		return
	}
	spot, ok := h.services.Board.Select(spotID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errUnknownSpot})
		return
	}

	date := c.Query("date")
	if date == "" {
		date = time.Now().Format(layoutDay)
	}

	ctx := c.Request.Context()
	if err := h.services.Booking.Open(ctx, spot, date); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadSlots, "booking_open_failed", err, "spot_id", spotID)
		return
	}
	slots, err := h.services.Booking.Slots()
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadSlots, "booking_slots_failed", err, "spot_id", spotID)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"spot":  spot,
		"date":  date,
		"slots": slots,
	})
}

// @Summary      Reserve a slot
// @Description  Submits a reservation for one of the fixed two-hour windows on the selected spot. Occupied or in-flight slots are rejected.
// @Tags         board
// @Accept       json
// @Produce      json
// @Param        id    path  int             true  "Spot ID"
// @Param        body  body  ReserveRequest  true  "Reservation payload"
// @Success      200  {object}  map[string]string  "status, reservation_id"
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/board/spots/{id}/reserve [post]
func (h *Handler) reserveSpot(c *gin.Context) {
	spotID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidSpotID})
		return
	}

	var req ReserveRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	_, user := h.services.Current()
	if user == nil {
		c.JSON(http.StatusConflict, gin.H{"error": errNoActiveSession})
		return
	}

	spot, ok := h.services.Board.Select(spotID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errUnknownSpot})
		return
	}

	date := req.Date
	if date == "" {
		date = time.Now().Format(layoutDay)
	}

	ctx := c.Request.Context()
	if err := h.services.Booking.Open(ctx, spot, date); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadSlots, "booking_open_failed", err, "spot_id", spotID)
		return
	}

	receipt, err := h.services.Booking.Reserve(ctx, *user, req.StartTime)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrUnknownSlot):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrSlotOccupied), errors.Is(err, service.ErrSlotInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	default:
		h.logAndJSONError(c, http.StatusBadGateway, "reservation failed", "booking_reserve_failed", err, "spot_id", spotID, "start", req.StartTime)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         receipt.Status,
		"reservation_id": receipt.ReservationID,
	})
}
