package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"campus_parking/internal/logger"
	"campus_parking/internal/models"
	"campus_parking/internal/repository"

	"github.com/google/uuid"
)

const (
	defaultTimeout     = 8 * time.Second
	defaultDisplayName = "Usuario Tec"
	offlineUserPrefix  = "offline-"

	// Revisions without an explicit level_id split the (already filtered and
	// sorted) inventory into fixed groups of four per level.
	spotsPerLevel = 4
)

// Client implements Gateway over the remote REST service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
	events     repository.EventRepo // nil-safe; best-effort diagnostics sink
	strict     bool
}

var _ Gateway = (*Client)(nil)

// New builds a gateway client. events may be nil to disable the diagnostics
// event log; fallbacks are still logged.
func New(cfg Config, log *logger.Logger, events repository.EventRepo) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
		events:     events,
		strict:     cfg.Strict,
	}
}

// ---------- wire records ----------

// userRecord tolerates both numeric and string IDs and the legacy Spanish
// field names used by the backend.
type userRecord struct {
	UserID            json.Number `json:"user_id"`
	Nombre            string      `json:"nombre"`
	Matricula         string      `json:"matricula"`
	TieneDiscapacidad json.Number `json:"tiene_discapacidad"`
}

// spotRecord covers every spot shape seen across backend revisions:
// `available` vs the older inverted `is_occupied_now`, optional `level_id`,
// optional accessibility flag. Translation to the canonical ParkingSpot
// happens here and nowhere else.
type spotRecord struct {
	SpotID        int    `json:"spot_id"`
	SpotNumber    string `json:"spot_number"`
	LevelID       *int   `json:"level_id"`
	Available     *int   `json:"available"`
	IsOccupiedNow *int   `json:"is_occupied_now"`
	IsDisability  *bool  `json:"is_disability_spot"`
	DateUpdate    string `json:"date_update"`
}

type receiptRecord struct {
	Status        string      `json:"status"`
	ReservationID json.Number `json:"reservation_id"`
}

// ---------- operations ----------

func (c *Client) Login(ctx context.Context, studentID, displayName string, needsAccessibleSpot bool) (models.User, error) {
	body := map[string]any{
		"matricula":          studentID,
		"nombre":             displayName,
		"tiene_discapacidad": boolToInt(needsAccessibleSpot),
	}

	var raw json.RawMessage
	err := c.postJSON(ctx, "/login", body, &raw)
	if err == nil {
		if rec, perr := decodeUser(raw); perr == nil {
			return c.canonicalUser(rec, studentID, displayName, needsAccessibleSpot), nil
		} else {
			err = failure{ReasonShape, perr}
		}
	}

	if c.strict {
		return models.User{}, fmt.Errorf("login: %w", errOf(err))
	}
	c.recordFallback(ctx, OpLogin, err, "returning offline user")
	return models.User{
		UserID:              offlineUserPrefix + uuid.NewString(),
		DisplayName:         orDefault(displayName, defaultDisplayName),
		StudentID:           studentID,
		NeedsAccessibleSpot: needsAccessibleSpot,
	}, nil
}

func (c *Client) ListSpots(ctx context.Context, accessibleOnly bool) ([]models.ParkingSpot, error) {
	var records []spotRecord
	err := c.getJSON(ctx, "/spots", nil, &records)
	if err == nil && len(records) == 0 {
		err = failure{ReasonEmpty, fmt.Errorf("spot inventory is empty")}
	}
	if err != nil {
		c.recordFallback(ctx, OpListSpots, err, "serving mock inventory")
		records = mockSpotRecords()
	}
	return canonicalSpots(records, accessibleOnly), nil
}

func (c *Client) ListReservations(ctx context.Context, spotID int, date string) ([]models.Reservation, error) {
	q := url.Values{}
	q.Set("spot_id", fmt.Sprint(spotID))
	q.Set("date", date)

	var out []models.Reservation
	if err := c.getJSON(ctx, "/reservations", q, &out); err != nil {
		// Absence of reservations is a safe, meaningful default.
		c.recordFallback(ctx, OpListReservations, err, "returning empty list")
		return []models.Reservation{}, nil
	}
	if out == nil {
		out = []models.Reservation{}
	}
	return out, nil
}

func (c *Client) CreateReservation(ctx context.Context, userID string, spotID int, startTime, endTime string) (models.ReservationReceipt, error) {
	body := map[string]any{
		"user_id":    userID,
		"spot_id":    spotID,
		"start_time": startTime,
		"end_time":   endTime,
	}

	var rec receiptRecord
	err := c.postJSON(ctx, "/reservations", body, &rec)
	if err == nil {
		return models.ReservationReceipt{
			Status:        orDefault(rec.Status, "success"),
			ReservationID: rec.ReservationID.String(),
		}, nil
	}

	if c.strict {
		return models.ReservationReceipt{}, fmt.Errorf("create reservation: %w", errOf(err))
	}
	// Demo-mode policy: the booking flow always advances past the modal.
	c.recordFallback(ctx, OpCreateReservation, err, "fabricating success receipt")
	return models.ReservationReceipt{
		Status:        "success",
		ReservationID: uuid.NewString(),
	}, nil
}

func (c *Client) SaveSchedule(ctx context.Context, userID string, slots []string) error {
	var wg sync.WaitGroup
	for _, slot := range slots {
		wg.Add(1)
		go func(slot string) {
			defer wg.Done()
			body := map[string]any{"user_id": userID, "time_slot": slot}
			if err := c.postJSON(ctx, "/schedule", body, nil); err != nil {
				c.recordFallback(ctx, OpSaveSchedule, err, "dropping slot write "+slot)
			}
		}(slot)
	}
	wg.Wait()
	return nil
}

func (c *Client) AdminStats(ctx context.Context) (models.AdminStats, error) {
	// Counts come from the live inventory when reachable, otherwise from the
	// mock set; either way there is a value to render.
	var records []spotRecord
	if err := c.getJSON(ctx, "/spots", nil, &records); err != nil || len(records) == 0 {
		records = mockSpotRecords()
	}

	spots := canonicalInventory(records)
	occupied := 0
	for _, s := range spots {
		if !s.IsAvailable {
			occupied++
		}
	}
	stats := randomizedEnvironment()
	stats.TotalSpots = len(spots)
	stats.OccupiedSpots = occupied
	stats.AvailableSpots = len(spots) - occupied
	return stats, nil
}

// ---------- canonical mapping ----------

func decodeUser(raw json.RawMessage) (userRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var recs []userRecord
		if err := json.Unmarshal(trimmed, &recs); err != nil {
			return userRecord{}, err
		}
		if len(recs) == 0 {
			return userRecord{}, fmt.Errorf("empty user array")
		}
		return recs[0], nil
	}
	var rec userRecord
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return userRecord{}, err
	}
	return rec, nil
}

// canonicalUser echoes the caller-supplied fields; the backend response only
// contributes the user ID and, when present, a cleaned display name. The
// accessibility flag is always the caller's: a session captures it once.
func (c *Client) canonicalUser(rec userRecord, studentID, displayName string, needsAccessibleSpot bool) models.User {
	id := rec.UserID.String()
	if id == "" || id == "0" {
		id = offlineUserPrefix + uuid.NewString()
	}
	name := orDefault(rec.Nombre, orDefault(displayName, defaultDisplayName))
	return models.User{
		UserID:              id,
		DisplayName:         name,
		StudentID:           orDefault(rec.Matricula, studentID),
		NeedsAccessibleSpot: needsAccessibleSpot,
	}
}

// canonicalSpots filters by the accessibility flag, sorts by spot ID and
// assigns levels (explicit level_id wins, otherwise fixed groups of four).
func canonicalSpots(records []spotRecord, accessibleOnly bool) []models.ParkingSpot {
	filtered := make([]spotRecord, 0, len(records))
	for _, r := range records {
		if r.accessible() == accessibleOnly {
			filtered = append(filtered, r)
		}
	}
	return levelled(filtered)
}

// canonicalInventory maps the full unfiltered inventory.
func canonicalInventory(records []spotRecord) []models.ParkingSpot {
	return levelled(append([]spotRecord(nil), records...))
}

func levelled(records []spotRecord) []models.ParkingSpot {
	sort.Slice(records, func(i, j int) bool { return records[i].SpotID < records[j].SpotID })
	out := make([]models.ParkingSpot, 0, len(records))
	for i, r := range records {
		level := i/spotsPerLevel + 1
		if r.LevelID != nil {
			level = *r.LevelID
		}
		out = append(out, models.ParkingSpot{
			SpotID:       r.SpotID,
			SpotNumber:   r.SpotNumber,
			LevelID:      level,
			IsAvailable:  r.available(),
			IsAccessible: r.accessible(),
			LastUpdated:  parseUpdateStamp(r.DateUpdate),
		})
	}
	return out
}

func (r spotRecord) available() bool {
	if r.Available != nil {
		return *r.Available == 1
	}
	if r.IsOccupiedNow != nil {
		return *r.IsOccupiedNow == 0
	}
	// No occupancy signal at all: don't offer the spot.
	return false
}

func (r spotRecord) accessible() bool {
	if r.IsDisability != nil {
		return *r.IsDisability
	}
	// Identifier-convention fallback, not the primary signal.
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(r.SpotNumber)), "D")
}

func parseUpdateStamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// ---------- transport ----------

// failure pairs a fallback reason with the underlying cause.
type failure struct {
	reason string
	cause  error
}

func (f failure) Error() string { return f.reason + ": " + f.cause.Error() }
func (f failure) Unwrap() error { return f.cause }

func errOf(err error) error {
	if f, ok := err.(failure); ok {
		return f.cause
	}
	return err
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return failure{ReasonTransport, err}
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return failure{ReasonShape, err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return failure{ReasonTransport, err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failure{ReasonTransport, err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		return failure{ReasonStatus, fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure{ReasonTransport, err}
	}
	if err := json.Unmarshal(unwrapEnvelope(b), out); err != nil {
		return failure{ReasonShape, err}
	}
	return nil
}

// unwrapEnvelope applies the response convention: if the JSON body is an
// object with an `items` field, the payload is that field; otherwise the
// body is used as-is.
func unwrapEnvelope(b []byte) []byte {
	var env struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(b, &env); err == nil && len(env.Items) > 0 {
		return env.Items
	}
	return b
}

// recordFallback logs the degradation and appends a diagnostics event.
// Failures here are invisible to the caller's control flow.
func (c *Client) recordFallback(ctx context.Context, op string, err error, action string) {
	reason := ReasonTransport
	var cause error = err
	if f, ok := err.(failure); ok {
		reason = f.reason
		cause = f.cause
	}
	if c.log != nil {
		c.log.Infow("gateway_fallback", "op", op, "reason", reason, "action", action, "err", cause)
	}
	if c.events == nil {
		return
	}
	ev := models.GatewayEvent{
		Op:          op,
		Reason:      reason,
		Description: action,
	}
	if cause != nil {
		ev.Metadata = map[string]any{"cause": cause.Error()}
	}
	if aerr := c.events.Append(ctx, ev); aerr != nil && c.log != nil {
		c.log.Infow("gateway_event_append_failed", "err", aerr)
	}
}

// ---------- small helpers ----------

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
