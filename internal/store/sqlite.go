package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/rshade/ecotrack/internal/carbon"
)

// SQLiteStore persists records in a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database at path and
// ensures the schema exists. ":memory:" opens a private in-memory database.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases from splitting across the pool.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.initialize(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS estimates (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		factor_version TEXT NOT NULL,
		convention TEXT NOT NULL,
		payload TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_estimates_user_created ON estimates(user_id, created_at DESC);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// payload is the JSON column: everything not stored in its own column.
type payload struct {
	Input           carbon.LifestyleInput   `json:"input"`
	Breakdown       carbon.Breakdown        `json:"breakdown"`
	Recommendations []carbon.Recommendation `json:"recommendations"`
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, r Record) error {
	if err := r.validate(); err != nil {
		return err
	}
	body, err := json.Marshal(payload{
		Input:           r.Input,
		Breakdown:       r.Breakdown,
		Recommendations: r.Recommendations,
	})
	if err != nil {
		return fmt.Errorf("encode estimate %s: %w", r.ID, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO estimates (id, user_id, created_at, factor_version, convention, payload)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.CreatedAt.UnixNano(), r.FactorVersion, r.Convention, string(body))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidRecord, r.ID)
		}
		return fmt.Errorf("insert estimate %s: %w", r.ID, err)
	}
	return nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, factor_version, convention, payload
		 FROM estimates WHERE id = ?`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return r, err
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, userID string, limit int) ([]Record, error) {
	if limit <= 0 {
		return []Record{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, created_at, factor_version, convention, payload
		 FROM estimates WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query estimates: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var (
		r       Record
		created int64
		body    string
	)
	if err := sc.Scan(&r.ID, &r.UserID, &created, &r.FactorVersion, &r.Convention, &body); err != nil {
		return Record{}, err
	}
	r.CreatedAt = time.Unix(0, created).UTC()

	var p payload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return Record{}, fmt.Errorf("decode estimate %s: %w", r.ID, err)
	}
	r.Input = p.Input
	r.Breakdown = p.Breakdown
	r.Recommendations = p.Recommendations
	return r, nil
}
