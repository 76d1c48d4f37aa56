package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"campus_parking/internal/models"
)

type recordingEvents struct {
	mu     sync.Mutex
	events []models.GatewayEvent
}

func (r *recordingEvents) Append(ctx context.Context, e models.GatewayEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingEvents) List(ctx context.Context, from, to time.Time, op string) ([]models.GatewayEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.GatewayEvent(nil), r.events...), nil
}

func (r *recordingEvents) ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Op)
	}
	return out
}

func newClient(t *testing.T, handler http.Handler, strict bool) (*Client, *recordingEvents) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	events := &recordingEvents{}
	c := New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second, Strict: strict}, nil, events)
	return c, events
}

// deadClient points at a closed listener to force transport failures.
func deadClient(t *testing.T, strict bool) (*Client, *recordingEvents) {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	events := &recordingEvents{}
	return New(Config{BaseURL: srv.URL, Timeout: time.Second, Strict: strict}, nil, events), events
}

// ---------- login ----------

func TestLogin_LivePath(t *testing.T) {
	c, events := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["matricula"] != "A00123456" || body["tiene_discapacidad"] != float64(1) {
			t.Errorf("unexpected login body: %v", body)
		}
		_, _ = w.Write([]byte(`{"user_id": 42, "nombre": "Juan", "matricula": "A00123456"}`))
	}), false)

	u, err := c.Login(context.Background(), "A00123456", "Juan", true)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.UserID != "42" || u.DisplayName != "Juan" || u.StudentID != "A00123456" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if !u.NeedsAccessibleSpot {
		t.Fatalf("accessibility flag must match the caller's request")
	}
	if len(events.ops()) != 0 {
		t.Fatalf("live login must not record a fallback event")
	}
}

func TestLogin_UnwrapsItemsEnvelopeAndUserArray(t *testing.T) {
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": [{"user_id": "7", "nombre": "Ana"}]}`))
	}), false)

	u, err := c.Login(context.Background(), "A001", "Ana", false)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.UserID != "7" || u.DisplayName != "Ana" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestLogin_NeverRaises_FallsBackToOfflineUser(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"non-2xx": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		"unparseable body": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>nope</html>`))
		},
		"empty user array": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			c, events := newClient(t, handler, false)
			u, err := c.Login(context.Background(), "A001", "Juan", true)
			if err != nil {
				t.Fatalf("demo-mode login must never raise, got %v", err)
			}
			if !strings.HasPrefix(u.UserID, offlineUserPrefix) {
				t.Fatalf("expected offline sentinel user id, got %q", u.UserID)
			}
			if u.DisplayName != "Juan" || u.StudentID != "A001" || !u.NeedsAccessibleSpot {
				t.Fatalf("offline user must echo caller fields: %+v", u)
			}
			if ops := events.ops(); len(ops) != 1 || ops[0] != OpLogin {
				t.Fatalf("expected one LOGIN fallback event, got %v", ops)
			}
		})
	}
}

func TestLogin_StrictModePropagatesFailure(t *testing.T) {
	c, _ := deadClient(t, true)
	if _, err := c.Login(context.Background(), "A001", "Juan", false); err == nil {
		t.Fatalf("strict login must surface the transport failure")
	}
}

// ---------- spots ----------

func spotsHandler(payload string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/spots" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(payload))
	}
}

func TestListSpots_FiltersByAccessibilityFlag(t *testing.T) {
	payload := `[
		{"spot_id": 1, "spot_number": "A1", "available": 1, "is_disability_spot": false},
		{"spot_id": 2, "spot_number": "D1", "available": 1, "is_disability_spot": true},
		{"spot_id": 3, "spot_number": "A2", "available": 0, "is_disability_spot": false}
	]`
	for _, accessibleOnly := range []bool{true, false} {
		c, _ := newClient(t, spotsHandler(payload), false)
		spots, err := c.ListSpots(context.Background(), accessibleOnly)
		if err != nil {
			t.Fatalf("list spots: %v", err)
		}
		if len(spots) == 0 {
			t.Fatalf("filtered inventory unexpectedly empty")
		}
		for _, s := range spots {
			if s.IsAccessible != accessibleOnly {
				t.Fatalf("flag %v returned spot %+v", accessibleOnly, s)
			}
		}
	}
}

func TestListSpots_LegacySchemaAndLevelDerivation(t *testing.T) {
	// Old revision: inverted occupancy field, no level_id, accessibility
	// only by identifier convention.
	payload := `[
		{"spot_id": 5, "spot_number": "B2", "is_occupied_now": 0},
		{"spot_id": 1, "spot_number": "A1", "is_occupied_now": 1},
		{"spot_id": 3, "spot_number": "A3", "is_occupied_now": 0},
		{"spot_id": 2, "spot_number": "A2", "is_occupied_now": 1},
		{"spot_id": 4, "spot_number": "B1", "is_occupied_now": 0},
		{"spot_id": 6, "spot_number": "D1", "is_occupied_now": 0}
	]`
	c, _ := newClient(t, spotsHandler(payload), false)

	spots, err := c.ListSpots(context.Background(), false)
	if err != nil {
		t.Fatalf("list spots: %v", err)
	}
	if len(spots) != 5 {
		t.Fatalf("expected 5 standard spots (D1 filtered out by prefix), got %d", len(spots))
	}
	// Sorted by spot_id; first four on level 1, the fifth on level 2.
	for i, want := range []struct {
		id        int
		level     int
		available bool
	}{
		{1, 1, false}, {2, 1, false}, {3, 1, true}, {4, 1, true}, {5, 2, true},
	} {
		got := spots[i]
		if got.SpotID != want.id || got.LevelID != want.level || got.IsAvailable != want.available {
			t.Fatalf("spot[%d] = %+v, want %+v", i, got, want)
		}
	}
}

func TestListSpots_NeverEmpty(t *testing.T) {
	cases := map[string]func(t *testing.T) (*Client, *recordingEvents){
		"unreachable backend": func(t *testing.T) (*Client, *recordingEvents) {
			return deadClient(t, false)
		},
		"empty inventory": func(t *testing.T) (*Client, *recordingEvents) {
			return newClient(t, spotsHandler(`[]`), false)
		},
		"non-array body": func(t *testing.T) (*Client, *recordingEvents) {
			return newClient(t, spotsHandler(`{"oops": true}`), false)
		},
	}

	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			c, events := build(t)

			standard, err := c.ListSpots(context.Background(), false)
			if err != nil {
				t.Fatalf("list spots: %v", err)
			}
			if len(standard) != 6 {
				t.Fatalf("expected the 6 standard mock spots, got %d", len(standard))
			}

			accessible, err := c.ListSpots(context.Background(), true)
			if err != nil {
				t.Fatalf("list spots: %v", err)
			}
			if len(accessible) != 2 {
				t.Fatalf("expected the 2 accessible mock spots, got %d", len(accessible))
			}
			for _, s := range accessible {
				if !s.IsAccessible {
					t.Fatalf("non-accessible spot in accessible view: %+v", s)
				}
			}

			if ops := events.ops(); len(ops) != 2 || ops[0] != OpListSpots {
				t.Fatalf("expected LIST_SPOTS fallback events, got %v", ops)
			}
		})
	}
}

// ---------- reservations ----------

func TestListReservations_EmptyOnFailure(t *testing.T) {
	c, events := deadClient(t, false)
	got, err := c.ListReservations(context.Background(), 4, "2026-08-31")
	if err != nil {
		t.Fatalf("list reservations: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", got)
	}
	if ops := events.ops(); len(ops) != 1 || ops[0] != OpListReservations {
		t.Fatalf("expected LIST_RESERVATIONS fallback event, got %v", ops)
	}
}

func TestListReservations_LivePathWithQuery(t *testing.T) {
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("spot_id") != "4" || r.URL.Query().Get("date") != "2026-08-31" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"items": [{"start_time": "09:00", "end_time": "11:00"}]}`))
	}), false)

	got, err := c.ListReservations(context.Background(), 4, "2026-08-31")
	if err != nil {
		t.Fatalf("list reservations: %v", err)
	}
	if len(got) != 1 || got[0].StartTime != "09:00" {
		t.Fatalf("unexpected reservations: %+v", got)
	}
}

func TestCreateReservation_AlwaysSucceedsInDemoMode(t *testing.T) {
	c, events := deadClient(t, false)
	receipt, err := c.CreateReservation(context.Background(), "u-1", 4, "2026-08-31 07:00:00", "2026-08-31 09:00:00")
	if err != nil {
		t.Fatalf("demo-mode create must not fail: %v", err)
	}
	if receipt.Status != "success" || receipt.ReservationID == "" {
		t.Fatalf("expected fabricated success receipt, got %+v", receipt)
	}
	if ops := events.ops(); len(ops) != 1 || ops[0] != OpCreateReservation {
		t.Fatalf("expected CREATE_RESERVATION fallback event, got %v", ops)
	}
}

func TestCreateReservation_LiveAndStrictPaths(t *testing.T) {
	t.Run("live", func(t *testing.T) {
		c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status": "success", "reservation_id": 981}`))
		}), false)
		receipt, err := c.CreateReservation(context.Background(), "u-1", 4, "s", "e")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if receipt.ReservationID != "981" {
			t.Fatalf("unexpected receipt: %+v", receipt)
		}
	})

	t.Run("strict", func(t *testing.T) {
		c, _ := deadClient(t, true)
		if _, err := c.CreateReservation(context.Background(), "u-1", 4, "s", "e"); err == nil {
			t.Fatalf("strict create must surface the failure")
		}
	})
}

// ---------- schedule ----------

func TestSaveSchedule_OneWritePerSlot(t *testing.T) {
	var mu sync.Mutex
	var slots []string
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserID   string `json:"user_id"`
			TimeSlot string `json:"time_slot"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		slots = append(slots, body.TimeSlot)
		mu.Unlock()
	}), false)

	want := []string{"7:00 AM - 9:00 AM", "1:00 PM - 3:00 PM", "9:00 PM - 11:00 PM"}
	if err := c.SaveSchedule(context.Background(), "u-1", want); err != nil {
		t.Fatalf("save schedule: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(slots) != len(want) {
		t.Fatalf("expected %d slot writes, got %d", len(want), len(slots))
	}
	seen := map[string]bool{}
	for _, s := range slots {
		seen[s] = true
	}
	for _, s := range want {
		if !seen[s] {
			t.Fatalf("slot %q never written", s)
		}
	}
}

func TestSaveSchedule_SwallowsPartialFailures(t *testing.T) {
	c, events := deadClient(t, false)
	if err := c.SaveSchedule(context.Background(), "u-1", []string{"7:00 AM - 9:00 AM", "9:00 AM - 11:00 AM"}); err != nil {
		t.Fatalf("save schedule must not surface failures: %v", err)
	}
	if got := len(events.ops()); got != 2 {
		t.Fatalf("expected 2 SAVE_SCHEDULE fallback events, got %d", got)
	}
}

// ---------- admin stats ----------

func TestAdminStats_InvariantAndNoFailurePath(t *testing.T) {
	t.Run("live inventory", func(t *testing.T) {
		c, _ := newClient(t, spotsHandler(`[
			{"spot_id": 1, "available": 1}, {"spot_id": 2, "available": 0}, {"spot_id": 3, "available": 0}
		]`), false)
		stats, err := c.AdminStats(context.Background())
		if err != nil {
			t.Fatalf("admin stats: %v", err)
		}
		if stats.TotalSpots != 3 || stats.OccupiedSpots != 2 || stats.AvailableSpots != 1 {
			t.Fatalf("unexpected counts: %+v", stats)
		}
	})

	t.Run("dead backend", func(t *testing.T) {
		c, _ := deadClient(t, false)
		stats, err := c.AdminStats(context.Background())
		if err != nil {
			t.Fatalf("admin stats has no failure path: %v", err)
		}
		if stats.TotalSpots != 8 {
			t.Fatalf("expected mock inventory counts, got %+v", stats)
		}
		if stats.OccupiedSpots+stats.AvailableSpots != stats.TotalSpots {
			t.Fatalf("count invariant violated: %+v", stats)
		}
		if len(stats.TrafficFlow) != 24 || len(stats.DailyOccupancy) != 7 {
			t.Fatalf("unexpected series lengths: %d %d", len(stats.TrafficFlow), len(stats.DailyOccupancy))
		}
	})
}
