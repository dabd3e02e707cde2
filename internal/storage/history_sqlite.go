package storage

import (
	"database/sql"
	"fmt"
	"time"

	"pacer/internal/core/model"

	_ "github.com/mattn/go-sqlite3"
)

// History is the bounded finished-session store. The engine only appends;
// retention beyond the configured limit prunes oldest records first.
type History struct {
	db    *sql.DB
	limit int
}

// OpenHistory opens (or creates) the session database at path.
func OpenHistory(path string, limit int) (*History, error) {
	if limit <= 0 {
		limit = 100
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}

	history := &History{db: db, limit: limit}
	if err := history.initTable(); err != nil {
		db.Close()
		return nil, err
	}
	return history, nil
}

func (history *History) initTable() error {
	_, err := history.db.Exec(`
        CREATE TABLE IF NOT EXISTS sessions (
            id TEXT PRIMARY KEY,
            created_at DATETIME NOT NULL,
            duration_seconds INTEGER NOT NULL,
            note TEXT NOT NULL DEFAULT ''
        )
    `)
	if err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

// Append stores one finished session and prunes history past the limit.
func (history *History) Append(record model.SessionRecord) error {
	_, err := history.db.Exec(
		`INSERT INTO sessions (id, created_at, duration_seconds, note) VALUES (?, ?, ?, ?)`,
		record.ID, record.CreatedAt, record.DurationSeconds, record.Note,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return history.prune()
}

// SetLimit updates the retention cap and prunes immediately.
func (history *History) SetLimit(limit int) error {
	if limit <= 0 {
		return nil
	}
	history.limit = limit
	return history.prune()
}

// List returns stored sessions, newest first.
func (history *History) List() ([]model.SessionRecord, error) {
	rows, err := history.db.Query(
		`SELECT id, created_at, duration_seconds, note FROM sessions ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var records []model.SessionRecord
	for rows.Next() {
		var record model.SessionRecord
		var createdAt time.Time
		if err := rows.Scan(&record.ID, &createdAt, &record.DurationSeconds, &record.Note); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		record.CreatedAt = createdAt
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return records, nil
}

// SetNote attaches a free-text note to a stored session.
func (history *History) SetNote(id, note string) error {
	_, err := history.db.Exec(`UPDATE sessions SET note = ? WHERE id = ?`, note, id)
	if err != nil {
		return fmt.Errorf("update session note: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (history *History) Close() error {
	return history.db.Close()
}

func (history *History) prune() error {
	_, err := history.db.Exec(`
        DELETE FROM sessions WHERE id NOT IN (
            SELECT id FROM sessions ORDER BY created_at DESC, id LIMIT ?
        )
    `, history.limit)
	if err != nil {
		return fmt.Errorf("prune sessions: %w", err)
	}
	return nil
}
