package issues

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/ValorSage/ai-app-builder/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS ai_issues (
    id         TEXT PRIMARY KEY,
    type       TEXT NOT NULL,
    severity   TEXT NOT NULL,
    file       TEXT NOT NULL,
    line       INTEGER NOT NULL,
    col        INTEGER,
    message    TEXT NOT NULL,
    suggestion TEXT,
    seq        INTEGER
);
CREATE INDEX IF NOT EXISTS idx_ai_issues_file ON ai_issues(file);
`

// SQLiteStore persists AI issues in a SQLite database. The database
// serializes concurrent writers, which the plain file store cannot.
// seq is guarded by mu: the single-connection pool serializes the SQL
// but not the Go-level counter.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	seq int64
}

func NewSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate issue store: %w", err)
	}
	s := &SQLiteStore{db: db}
	// resume insertion order after restart
	_ = db.QueryRow(`SELECT COALESCE(MAX(seq),0) FROM ai_issues`).Scan(&s.seq)
	return s, nil
}

func (s *SQLiteStore) List() ([]models.Issue, error) {
	rows, err := s.db.Query(`SELECT id, type, severity, file, line, COALESCE(col,0), message, COALESCE(suggestion,'') FROM ai_issues ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []models.Issue{}
	for rows.Next() {
		var is models.Issue
		var typ, sev string
		if err := rows.Scan(&is.ID, &typ, &sev, &is.File, &is.Line, &is.Column, &is.Message, &is.Suggestion); err != nil {
			return nil, err
		}
		is.Type = models.IssueSource(typ)
		is.Severity = models.Severity(sev)
		list = append(list, is)
	}
	return list, rows.Err()
}

func (s *SQLiteStore) Merge(incoming []models.Issue) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	for _, is := range incoming {
		is.ID = SynthesizeID(is)
		s.seq++
		// OR IGNORE keeps the stored row when ids collide: existing wins.
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO ai_issues(id, type, severity, file, line, col, message, suggestion, seq) VALUES(?,?,?,?,?,?,?,?,?)`,
			is.ID, string(is.Type), string(is.Severity), is.File, is.Line, is.Column, is.Message, is.Suggestion, s.seq,
		); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM ai_issues`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM ai_issues`)
	return err
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
