package tally

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"dice-lite/dicegame"

	_ "modernc.org/sqlite"
)

// SQLiteService keeps totals and history in a private in-memory database.
// A single pooled connection keeps the database alive for the process.
type SQLiteService struct {
	db          *sql.DB
	recentLimit int
}

func NewSQLiteService(recentLimit int) (*SQLiteService, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSQLiteTallySchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if recentLimit <= 0 {
		recentLimit = defaultRecentLimit
	}
	return &SQLiteService{db: db, recentLimit: recentLimit}, nil
}

func (s *SQLiteService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteService) RecordWin(ctx context.Context, sessionID string, side dicegame.Side) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("empty session id")
	}
	human, computer := 0, 0
	switch side {
	case dicegame.SideHuman:
		human = 1
	case dicegame.SideComputer:
		computer = 1
	default:
		return fmt.Errorf("unknown side %d", side)
	}

	nowMs := time.Now().UTC().UnixMilli()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO win_tally (session_id, human_wins, computer_wins, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (session_id) DO UPDATE
SET
    human_wins = win_tally.human_wins + excluded.human_wins,
    computer_wins = win_tally.computer_wins + excluded.computer_wins,
    updated_at_ms = excluded.updated_at_ms
`, sessionID, human, computer, nowMs, nowMs)
	if err != nil {
		return fmt.Errorf("record win: %w", err)
	}
	return nil
}

func (s *SQLiteService) RecordMatch(ctx context.Context, rec MatchRecord) error {
	if strings.TrimSpace(rec.SessionID) == "" || rec.MatchNo <= 0 {
		return fmt.Errorf("invalid match record: session=%q match=%d", rec.SessionID, rec.MatchNo)
	}
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now().UTC()
	}
	summary := rec.Summary
	if summary == nil {
		summary = map[string]any{}
	}
	summaryRaw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal match summary: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO match_history (
    session_id, match_no, winner, target, human_score, computer_score,
    tie_break_rounds, turns, summary_json, finished_at_ms
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (session_id, match_no) DO NOTHING
`, rec.SessionID, rec.MatchNo, rec.Winner, rec.Target, rec.HumanScore, rec.ComputerScore,
		rec.TieBreakRounds, rec.Turns, string(summaryRaw), rec.FinishedAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("record match: %w", err)
	}
	return nil
}

func (s *SQLiteService) Totals(ctx context.Context, sessionID string) (Totals, error) {
	out := Totals{SessionID: sessionID}
	var updatedAtMs int64
	err := s.db.QueryRowContext(ctx, `
SELECT human_wins, computer_wins, updated_at_ms
FROM win_tally
WHERE session_id = ?
`, sessionID).Scan(&out.HumanWins, &out.ComputerWins, &updatedAtMs)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// no finished match yet
	case err != nil:
		return Totals{}, fmt.Errorf("query totals: %w", err)
	default:
		out.LastUpdatedAt = time.UnixMilli(updatedAtMs).UTC()
	}
	out.Label = dicegame.Label(out.HumanWins, out.ComputerWins)
	return out, nil
}

func (s *SQLiteService) ListRecent(ctx context.Context, sessionID string, limit int) ([]MatchRecord, error) {
	if limit <= 0 || limit > s.recentLimit {
		limit = s.recentLimit
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT match_no, winner, target, human_score, computer_score, tie_break_rounds, turns, summary_json, finished_at_ms
FROM match_history
WHERE session_id = ?
ORDER BY finished_at_ms DESC, id DESC
LIMIT ?
`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent matches: %w", err)
	}
	defer rows.Close()

	items := make([]MatchRecord, 0, limit)
	for rows.Next() {
		rec := MatchRecord{SessionID: sessionID}
		var summaryRaw string
		var finishedAtMs int64
		if err := rows.Scan(
			&rec.MatchNo,
			&rec.Winner,
			&rec.Target,
			&rec.HumanScore,
			&rec.ComputerScore,
			&rec.TieBreakRounds,
			&rec.Turns,
			&summaryRaw,
			&finishedAtMs,
		); err != nil {
			return nil, err
		}
		rec.FinishedAt = time.UnixMilli(finishedAtMs).UTC()
		rec.Summary = map[string]any{}
		if summaryRaw != "" {
			if err := json.Unmarshal([]byte(summaryRaw), &rec.Summary); err != nil {
				log.Printf("[Tally] decode summary failed: session=%s match=%d err=%v", sessionID, rec.MatchNo, err)
			}
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Forget drops everything stored for a closed session.
func (s *SQLiteService) Forget(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM match_history WHERE session_id = ?`, sessionID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM win_tally WHERE session_id = ?`, sessionID); err != nil {
		return err
	}
	return tx.Commit()
}

func ensureSQLiteTallySchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS win_tally (
    session_id TEXT PRIMARY KEY,
    human_wins INTEGER NOT NULL DEFAULT 0,
    computer_wins INTEGER NOT NULL DEFAULT 0,
    created_at_ms INTEGER NOT NULL,
    updated_at_ms INTEGER NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS match_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    match_no INTEGER NOT NULL,
    winner TEXT NOT NULL,
    target INTEGER NOT NULL,
    human_score INTEGER NOT NULL,
    computer_score INTEGER NOT NULL,
    tie_break_rounds INTEGER NOT NULL DEFAULT 0,
    turns INTEGER NOT NULL,
    summary_json TEXT NOT NULL DEFAULT '{}',
    finished_at_ms INTEGER NOT NULL,
    UNIQUE (session_id, match_no)
)`,
		`CREATE INDEX IF NOT EXISTS idx_match_history_recent ON match_history(session_id, finished_at_ms DESC)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
