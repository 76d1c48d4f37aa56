package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"campus_parking/internal/models"

	"github.com/google/uuid"
)

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

var _ EventRepo = (*EventSQLite)(nil)

const (
	insertEventSQL = `
		INSERT INTO gateway_events (id, occurred_at, op, reason, message, meta)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	selectEventsSQL = `SELECT id, occurred_at, op, reason, message, meta FROM gateway_events`

	sqliteTimestampLayout = "2006-01-02 15:04:05"
)

// Append inserts a new event. Empty EventID or zero OccurredAt are filled in.
func (r *EventSQLite) Append(ctx context.Context, e models.GatewayEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	var metaPtr *string
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			s := string(b)
			metaPtr = &s
		}
	}

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		e.OccurredAt.Format(sqliteTimestampLayout),
		strings.ToUpper(strings.TrimSpace(e.Op)),
		strings.ToUpper(strings.TrimSpace(e.Reason)),
		e.Description,
		metaPtr,
	)
	return err
}

// List returns events filtered by [from, to] (inclusive) and/or operation,
// ordered ascending by occurrence.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, op string) ([]models.GatewayEvent, error) {
	var (
		conds []string
		args  []any
	)

	// Range args must use the same text layout Append stores, or the
	// comparison degrades to lexicographic across mismatched formats.
	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC().Format(sqliteTimestampLayout))
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC().Format(sqliteTimestampLayout))
	}
	if op = strings.ToUpper(strings.TrimSpace(op)); op != "" {
		conds = append(conds, "op = ?")
		args = append(args, op)
	}

	q := selectEventsSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.GatewayEvent, 0, 64)
	for rows.Next() {
		var ev models.GatewayEvent
		var metaStr sql.NullString
		if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.Op, &ev.Reason, &ev.Description, &metaStr); err != nil {
			return nil, err
		}
		ev.OccurredAt = ev.OccurredAt.UTC()

		if metaStr.Valid && metaStr.String != "" {
			var v any
			if err := json.Unmarshal([]byte(metaStr.String), &v); err == nil {
				ev.Metadata = v
			} else {
				ev.Metadata = metaStr.String // keep raw if malformed
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
