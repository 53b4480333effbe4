package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Ledger is the durable record of which conversations reached a terminal
// state. Presence of an entry is sufficient to skip a conversation on a later
// run; there is no in-progress status.
type Ledger struct {
	conn *sql.DB
	Path string
}

// Entry is one checkpointed conversation.
type Entry struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	Status      string `json:"status"` // "approved", "rejected", "skipped"
	CardsAdded  int    `json:"cards_added"`
	CompletedAt string `json:"completed_at"`
}

// OpenLedger opens (or creates) the checkpoint database. WAL keeps the file
// readable mid-write; synchronous=FULL makes MarkDone durable before it
// returns, so a crash immediately after commit never loses the entry.
func OpenLedger(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating ledger dir: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA synchronous=FULL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting synchronous mode: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS checkpoints (
		id           TEXT PRIMARY KEY,
		source       TEXT NOT NULL,
		status       TEXT NOT NULL,
		cards_added  INTEGER NOT NULL DEFAULT 0,
		completed_at TEXT NOT NULL
	)`
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating checkpoint table: %w", err)
	}

	return &Ledger{conn: conn, Path: path}, nil
}

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	return l.conn.Close()
}

// IsDone reports whether the conversation already reached a terminal state.
func (l *Ledger) IsDone(id string) (bool, error) {
	var one int
	err := l.conn.QueryRow("SELECT 1 FROM checkpoints WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying checkpoint %s: %w", id, err)
	}
	return true, nil
}

// MarkDone records a conversation's terminal outcome. The row is durable when
// this returns. Marking an already-done conversation overwrites its entry.
func (l *Ledger) MarkDone(id, source, status string, cardsAdded int) error {
	_, err := l.conn.Exec(
		`INSERT INTO checkpoints (id, source, status, cards_added, completed_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status = excluded.status,
		   cards_added = excluded.cards_added,
		   completed_at = excluded.completed_at`,
		id, source, status, cardsAdded, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("marking %s done: %w", id, err)
	}
	return nil
}

// Done returns every checkpointed conversation, oldest first.
func (l *Ledger) Done() ([]Entry, error) {
	rows, err := l.conn.Query(
		"SELECT id, source, status, cards_added, completed_at FROM checkpoints ORDER BY completed_at, id")
	if err != nil {
		return nil, fmt.Errorf("listing checkpoints: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Source, &e.Status, &e.CardsAdded, &e.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning checkpoint row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Reset deletes every checkpoint entry.
func (l *Ledger) Reset() error {
	if _, err := l.conn.Exec("DELETE FROM checkpoints"); err != nil {
		return fmt.Errorf("resetting ledger: %w", err)
	}
	return nil
}

// ResetID deletes the entry for one conversation so it is re-attempted from
// scratch on the next run. Reports whether an entry existed.
func (l *Ledger) ResetID(id string) (bool, error) {
	res, err := l.conn.Exec("DELETE FROM checkpoints WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("resetting checkpoint %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
