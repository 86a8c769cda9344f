package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"stationwatch/internal/models"
)

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

var _ EventRepo = (*EventSQLite)(nil)

// sqliteTimeFormat is the TIMESTAMP layout sqlite sorts lexically.
const sqliteTimeFormat = "2006-01-02 15:04:05"

// Append inserts a transition event. Empty EventID or zero OccurredAt are
// filled in here.
func (r *EventSQLite) Append(ctx context.Context, e models.StationEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	var sensorsPtr *string
	if len(e.Sensors) > 0 {
		if b, err := json.Marshal(e.Sensors); err == nil {
			s := string(b)
			sensorsPtr = &s
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO station_events (id, occurred_at, account, station_id, category, sensors, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		e.EventID,
		e.OccurredAt.Format(sqliteTimeFormat),
		e.Account,
		e.StationID,
		strings.ToUpper(strings.TrimSpace(string(e.Category))),
		sensorsPtr,
		e.Description,
	)
	return err
}

// List returns events filtered by [from, to] (inclusive) and/or category,
// ordered ascending by time.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, category string) ([]models.StationEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC())
	}
	if category = strings.ToUpper(strings.TrimSpace(category)); category != "" {
		conds = append(conds, "category = ?")
		args = append(args, category)
	}

	q := `SELECT id, occurred_at, account, station_id, category, sensors, message FROM station_events`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.StationEvent, 0, 64)
	for rows.Next() {
		var (
			ev         models.StationEvent
			category   string
			sensorsStr sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.Account, &ev.StationID, &category, &sensorsStr, &ev.Description); err != nil {
			return nil, err
		}
		ev.OccurredAt = ev.OccurredAt.UTC()
		ev.Category = models.TransitionCategory(category)

		if sensorsStr.Valid && sensorsStr.String != "" {
			var sensors []string
			if err := json.Unmarshal([]byte(sensorsStr.String), &sensors); err == nil {
				ev.Sensors = sensors
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
