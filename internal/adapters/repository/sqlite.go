package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	_ "modernc.org/sqlite" // driver: sqlite

	"github.com/evalrank/evalrank/internal/domain/ranking"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS evaluations (
	staff_id   TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// sourceSchema validates the persisted payload shape before decoding.
// Anything that fails here is a MalformedSource condition, never fatal.
var sourceSchema = jsonschema.MustCompileString("source-record.json", `{
	"type": "object",
	"required": ["categories"],
	"properties": {
		"name": {"type": "string"},
		"department": {"type": "string"},
		"status": {"type": "string"},
		"categories": {
			"type": "object",
			"additionalProperties": {
				"type": "object",
				"required": ["totalScore", "criteriaCount"],
				"properties": {
					"name": {"type": "string"},
					"totalScore": {"type": "number"},
					"criteriaCount": {"type": "number"},
					"average": {"type": "number"}
				}
			}
		},
		"comments": {
			"type": "object",
			"properties": {
				"strengths": {"type": "string"},
				"improvements": {"type": "string"},
				"goals": {"type": "string"}
			}
		}
	}
}`)

// SQLiteStore implements Store on a single-file SQLite database through
// database/sql with the pure-Go driver.
type SQLiteStore struct {
	db *sql.DB

	mu     sync.RWMutex
	closed bool

	busyTimeout time.Duration
}

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithBusyTimeout sets how long SQLite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *SQLiteStore) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// NewSQLiteStore opens (creating if needed) the snapshot store at path.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{busyTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(s)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", path, s.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init snapshot store schema: %w", err)
	}
	s.db = db
	return s, nil
}

// Load reads every persisted aggregate. A payload that fails schema
// validation or JSON decoding poisons the whole load with
// ErrMalformedSource; callers fall back to the placeholder dataset.
func (s *SQLiteStore) Load(ctx context.Context) (map[string]ranking.SourceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `SELECT staff_id, payload FROM evaluations`)
	if err != nil {
		return nil, fmt.Errorf("load snapshot store: %w", err)
	}
	defer rows.Close()

	out := make(map[string]ranking.SourceRecord)
	for rows.Next() {
		var staffID, payload string
		if err := rows.Scan(&staffID, &payload); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		rec, err := decodeSource(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: staff %s: %v", ErrMalformedSource, staffID, err)
		}
		out[staffID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return out, nil
}

// Save upserts one employee's aggregate.
func (s *SQLiteStore) Save(ctx context.Context, staffID string, rec ranking.SourceRecord) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode aggregate: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluations (staff_id, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(staff_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		staffID, string(payload), time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("save aggregate: %w", err)
	}
	return nil
}

// Revision returns the newest updated_at marker, 0 for an empty store.
func (s *SQLiteStore) Revision(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrStoreClosed
	}

	var rev int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(updated_at), 0) FROM evaluations`).Scan(&rev)
	if err != nil {
		return 0, fmt.Errorf("read snapshot revision: %w", err)
	}
	return rev, nil
}

// Close releases the database handle. Subsequent calls are no-ops.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// decodeSource validates a payload against the source schema, then decodes it.
func decodeSource(payload string) (ranking.SourceRecord, error) {
	var shape interface{}
	if err := json.Unmarshal([]byte(payload), &shape); err != nil {
		return ranking.SourceRecord{}, err
	}
	if err := sourceSchema.Validate(shape); err != nil {
		return ranking.SourceRecord{}, err
	}
	var rec ranking.SourceRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return ranking.SourceRecord{}, err
	}
	return rec, nil
}
