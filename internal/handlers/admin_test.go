package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus_parking/internal/models"
	"campus_parking/internal/service"
)

func getAuthed(r http.Handler, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, vv := range authHeader(token) {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAdminStatsHandler(t *testing.T) {
	stats := &mockStats{stats: models.AdminStats{
		Temperature:    24.5,
		TotalSpots:     8,
		OccupiedSpots:  3,
		AvailableSpots: 5,
	}}
	s := &service.Service{Authorization: &mockAuth{parseID: 7}, Stats: stats}
	r := newTestRouter(s, nil)

	// No token → 401
	if w := getAuthed(r, "/api/v1/admin/stats", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	w := getAuthed(r, "/api/v1/admin/stats", "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("stats status=%d, body=%s", w.Code, w.Body.String())
	}
	var out models.AdminStats
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.TotalSpots != 8 || out.OccupiedSpots != 3 {
		t.Fatalf("unexpected stats: %+v", out)
	}
}

func TestLogsHandler_ListAndValidation(t *testing.T) {
	auth := &mockAuth{parseID: 99}
	now := time.Now().UTC().Truncate(time.Second)
	events := []models.GatewayEvent{
		{EventID: "e1", OccurredAt: now, Op: "LOGIN", Reason: "TRANSPORT", Description: "returning offline user"},
		{EventID: "e2", OccurredAt: now.Add(1 * time.Second), Op: "LIST_SPOTS", Reason: "EMPTY", Description: "serving mock inventory"},
	}
	logs := &mockEventLog{resp: events}
	s := &service.Service{
		Authorization: auth,
		EventLog:      logs,
	}
	r := newTestRouter(s, nil)

	// Invalid 'from' → 400
	if w := getAuthed(r, "/api/v1/logs?from=notatime", "valid"); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid 'from', got %d", w.Code)
	}

	// Inverted range → 400
	if w := getAuthed(r, "/api/v1/logs?from=2026-08-31&to=2026-08-01", "valid"); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted range, got %d", w.Code)
	}

	// Valid range and op (lowercase op is normalized upper before the service call)
	q := "/api/v1/logs?from=" + now.Format(time.RFC3339) + "&to=" + now.Add(2*time.Second).Format(time.RFC3339) + "&op=list_spots"
	w := getAuthed(r, q, "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("logs status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count  int                   `json:"count"`
		Events []models.GatewayEvent `json:"events"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 2 || len(out.Events) != 2 {
		t.Fatalf("unexpected response: %+v", out)
	}
	if logs.lastOp != "LIST_SPOTS" {
		t.Fatalf("expected lastOp LIST_SPOTS, got %q", logs.lastOp)
	}

	// Date-only 'to' becomes end-of-day inclusive
	day := now.Format("2006-01-02")
	w = getAuthed(r, "/api/v1/logs?to="+day, "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("logs status=%d, body=%s", w.Code, w.Body.String())
	}
	if logs.lastTo.Hour() != 23 || logs.lastTo.Minute() != 59 {
		t.Fatalf("date-only 'to' must extend to end of day, got %v", logs.lastTo)
	}
}
