// Package history records translations in a SQLite database so the CLI
// and the HTTP service can show what was translated recently.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/minios-linux/malaykit/grammar"
	"github.com/minios-linux/malaykit/translator"
)

const schema = `
CREATE TABLE IF NOT EXISTS translations (
	seq          INTEGER PRIMARY KEY AUTOINCREMENT,
	id           TEXT NOT NULL UNIQUE,
	input        TEXT NOT NULL,
	translation  TEXT NOT NULL,
	method       TEXT NOT NULL,
	type         TEXT NOT NULL,
	valid        INTEGER NOT NULL,
	structure    TEXT NOT NULL,
	source       TEXT NOT NULL,
	created_at   TEXT NOT NULL
);
`

// Sources recorded with each entry.
const (
	SourceCLI    = "cli"
	SourceShell  = "shell"
	SourceSpeech = "speech"
	SourceHTTP   = "http"
)

// Record is one stored translation.
type Record struct {
	ID          string            `json:"id"`
	Input       string            `json:"input"`
	Translation string            `json:"translation"`
	Method      translator.Method `json:"method"`
	Type        grammar.Type      `json:"type"`
	Valid       bool              `json:"valid"`
	Structure   []string          `json:"structure"`
	Source      string            `json:"source"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Store is a history database. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	log *zap.SugaredLogger
	now func() time.Time
}

// Open opens (creating if needed) the database at path and runs
// migrations. path may be ":memory:".
func Open(path string, log *zap.SugaredLogger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection: a :memory: database is per connection, and SQLite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Debugw("history opened", "path", path)
	return &Store{db: db, log: log, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add stores one translation result and returns the stored record.
func (s *Store) Add(ctx context.Context, res translator.Result, source string) (Record, error) {
	rec := Record{
		ID:          uuid.New().String(),
		Input:       res.Input,
		Translation: res.Translation,
		Method:      res.Method,
		Structure:   []string{},
		Source:      source,
		CreatedAt:   s.now().UTC(),
	}
	if res.Analysis != nil {
		rec.Type = res.Analysis.Type
		rec.Valid = res.Analysis.Valid
		rec.Structure = res.Analysis.Structure
	}

	structure, err := json.Marshal(rec.Structure)
	if err != nil {
		return Record{}, fmt.Errorf("marshal structure: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO translations (id, input, translation, method, type, valid, structure, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Input, rec.Translation, string(rec.Method), rec.Type.String(),
		rec.Valid, string(structure), rec.Source, rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert translation: %w", err)
	}

	s.log.Debugw("history recorded", "id", rec.ID, "method", rec.Method, "source", source)
	return rec, nil
}

// List returns up to limit records, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT id, input, translation, method, type, valid, structure, source, created_at
		FROM translations ORDER BY seq DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list translations: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var (
			rec       Record
			method    string
			typ       string
			structure string
			created   string
		)
		if err := rows.Scan(&rec.ID, &rec.Input, &rec.Translation, &method, &typ,
			&rec.Valid, &structure, &rec.Source, &created); err != nil {
			return nil, fmt.Errorf("scan translation: %w", err)
		}
		rec.Method = translator.Method(method)
		rec.Type = grammar.ParseType(typ)
		if err := json.Unmarshal([]byte(structure), &rec.Structure); err != nil {
			return nil, fmt.Errorf("unmarshal structure of %s: %w", rec.ID, err)
		}
		if rec.Structure == nil {
			rec.Structure = []string{}
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM translations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count translations: %w", err)
	}
	return n, nil
}

// Clear deletes every record and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM translations`)
	if err != nil {
		return 0, fmt.Errorf("clear translations: %w", err)
	}
	n, _ := res.RowsAffected()
	s.log.Infow("history cleared", "removed", n)
	return n, nil
}
