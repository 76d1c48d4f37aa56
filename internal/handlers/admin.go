package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"campus_parking/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"
	errLoadStats   = "failed to load stats"
	errLoadLogs    = "failed to load logs"

	layoutDateTime = "2006-01-02 15:04:05"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      Operator dashboard aggregate
// @Description  Occupancy counts from the current inventory plus environment and traffic series for the console charts.
// @Tags         admin
// @Produce      json
// @Success      200  {object}  models.AdminStats
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/admin/stats [get]
// @Security     BearerAuth
func (h *Handler) adminStats(c *gin.Context) {
	stats, err := h.services.Stats.Overview(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadStats, "admin_stats_failed", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary      List gateway diagnostics
// @Description  Filter fallback events by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). If 'to' is date-only, it is treated as end-of-day inclusive.
// @Tags         admin
// @Produce      json
// @Param        from  query   string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"  example(2026-08-01)
// @Param        to    query   string  false  "End of range; date-only treated as end of day"  example(2026-08-31)
// @Param        op    query   string  false  "Gateway operation"  Enums(LOGIN,LIST_SPOTS,LIST_RESERVATIONS,CREATE_RESERVATION,SAVE_SCHEDULE)
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		from time.Time
		to   time.Time
		op   = strings.ToUpper(strings.TrimSpace(c.Query("op")))
		err  error
	)
	if qs := c.Query("from"); qs != "" {
		from, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	// If only a date is provided, treat "to" as the end of that day.
	if qs := c.Query("to"); qs != "" {
		to, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
		return
	}

	events, err := h.services.EventLog.List(ctx, service.LogFilter{
		From: from,
		To:   to,
		Op:   op,
	})
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadLogs, "logs_list_failed", err, "from", from, "to", to, "op", op)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDay} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2026-08-27T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
