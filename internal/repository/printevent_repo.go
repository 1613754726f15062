package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/encetamasb/TheSpaghettiDetective/internal/models"
)

type PrintEventSQLite struct {
	db *sql.DB
}

func NewPrintEventSQLite(db *sql.DB) *PrintEventSQLite { return &PrintEventSQLite{db: db} }

var _ PrintEventRepo = (*PrintEventSQLite)(nil)

// Append inserts a new audit entry. If EventID or OccurredAt are empty,
// they're set.
func (r *PrintEventSQLite) Append(ctx context.Context, e models.PrintEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO print_events (id, print_id, occurred_at, type)
		VALUES (?, ?, ?, ?)
	`,
		e.EventID,
		e.PrintRecordID,
		e.OccurredAt.Format("2006-01-02 15:04:05"),
		strings.ToUpper(strings.TrimSpace(e.Type)),
	)
	if err != nil {
		return fmt.Errorf("insert print event for %q: %w", e.PrintRecordID, err)
	}
	return nil
}

// List returns audit entries for a print, filtered by [from, to]
// (inclusive) and/or type, ordered ASC.
func (r *PrintEventSQLite) List(ctx context.Context, printID string, from, to time.Time, typ string) ([]models.PrintEvent, error) {
	conds := []string{"print_id = ?"}
	args := []any{printID}

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC())
	}
	if typ = strings.ToUpper(strings.TrimSpace(typ)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}

	q := `SELECT id, print_id, occurred_at, type FROM print_events WHERE ` +
		strings.Join(conds, " AND ") + " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.PrintEvent, 0, 16)
	for rows.Next() {
		var ev models.PrintEvent
		if err := rows.Scan(&ev.EventID, &ev.PrintRecordID, &ev.OccurredAt, &ev.Type); err != nil {
			return nil, err
		}
		ev.OccurredAt = ev.OccurredAt.UTC()
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
