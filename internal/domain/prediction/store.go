package prediction

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// List limits for ListRecent.
const (
	DefaultListLimit = 25
	MaxListLimit     = 100
)

// timeLayout is fixed-width so created_at sorts lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store persists Records in the predictions table.
type Store struct {
	db *sql.DB
}

// NewStore expects db to be migrated already.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Insert writes r. Inserting an existing ID is an error.
func (s *Store) Insert(ctx context.Context, r Record) error {
	retrieved, err := json.Marshal(r.Retrieved)
	if err != nil {
		return fmt.Errorf("prediction store: encode retrieved: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO predictions
			(id, transcript, completion, tier, provider, bleu, rouge1_f, rougel_f,
			 severity, context_used, retrieved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Transcript, r.Completion, r.Tier, r.Provider,
		nullFloat(r.BLEU), nullFloat(r.ROUGE1), nullFloat(r.ROUGEL),
		nullInt(r.Severity), r.ContextUsed, string(retrieved),
		r.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("prediction store: insert %s: %w", r.ID, err)
	}
	return nil
}

// ClampLimit maps a requested page size into [1, MaxListLimit], using
// DefaultListLimit for non-positive values.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

// ListRecent returns up to limit records, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transcript, completion, tier, provider, bleu, rouge1_f, rougel_f,
		       severity, context_used, retrieved, created_at
		FROM predictions
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("prediction store: list: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	out := make([]Record, 0)
	for rows.Next() {
		r, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("prediction store: list: %w", err)
	}
	return out, nil
}

// Count returns the number of stored predictions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM predictions").Scan(&n); err != nil {
		return 0, fmt.Errorf("prediction store: count: %w", err)
	}
	return n, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		r                  Record
		bleu, r1, rl       sql.NullFloat64
		sev                sql.NullInt64
		retrieved, created string
	)
	if err := rows.Scan(&r.ID, &r.Transcript, &r.Completion, &r.Tier, &r.Provider,
		&bleu, &r1, &rl, &sev, &r.ContextUsed, &retrieved, &created); err != nil {
		return Record{}, fmt.Errorf("prediction store: scan: %w", err)
	}
	if err := json.Unmarshal([]byte(retrieved), &r.Retrieved); err != nil {
		return Record{}, fmt.Errorf("prediction store: decode retrieved for %s: %w", r.ID, err)
	}
	ts, err := time.Parse(timeLayout, created)
	if err != nil {
		return Record{}, fmt.Errorf("prediction store: parse created_at for %s: %w", r.ID, err)
	}
	r.CreatedAt = ts
	r.BLEU = floatPtr(bleu)
	r.ROUGE1 = floatPtr(r1)
	r.ROUGEL = floatPtr(rl)
	if sev.Valid {
		v := int(sev.Int64)
		r.Severity = &v
	}
	return r, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
