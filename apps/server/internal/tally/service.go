package tally

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dice-lite/dicegame"
)

const defaultRecentLimit = 20

var ErrNotFound = errors.New("not found")

// Service stores per-session win totals and finished-match rows. Nothing it
// holds outlives the process.
type Service interface {
	Close() error
	RecordWin(ctx context.Context, sessionID string, side dicegame.Side) error
	RecordMatch(ctx context.Context, rec MatchRecord) error
	Totals(ctx context.Context, sessionID string) (Totals, error)
	ListRecent(ctx context.Context, sessionID string, limit int) ([]MatchRecord, error)
	Forget(ctx context.Context, sessionID string) error
}

type Totals struct {
	SessionID     string    `json:"session_id"`
	HumanWins     int       `json:"human_wins"`
	ComputerWins  int       `json:"computer_wins"`
	Label         string    `json:"label"`
	LastUpdatedAt time.Time `json:"last_updated_at,omitempty"`
}

// MatchRecord is one finished match.
type MatchRecord struct {
	SessionID      string         `json:"session_id"`
	MatchNo        int            `json:"match_no"`
	Winner         string         `json:"winner"`
	Target         int            `json:"target"`
	HumanScore     int            `json:"human_score"`
	ComputerScore  int            `json:"computer_score"`
	TieBreakRounds int            `json:"tie_break_rounds"`
	Turns          int            `json:"turns"`
	FinishedAt     time.Time      `json:"finished_at"`
	Summary        map[string]any `json:"summary"`
}

// RecordFromSnapshot builds the history row for a finished match.
func RecordFromSnapshot(sessionID string, snap dicegame.Snapshot, summary map[string]any) (MatchRecord, error) {
	if !snap.Outcome.Terminal() {
		return MatchRecord{}, fmt.Errorf("match %d not finished: %s", snap.Match, snap.Outcome)
	}
	winner := dicegame.SideHuman
	if snap.Outcome == dicegame.ComputerWon {
		winner = dicegame.SideComputer
	}
	tieBreakRounds := 0
	if lt := snap.LastTurn; lt != nil && lt.TieBreak {
		tieBreakRounds = lt.TieBreakRound + 1
	}
	return MatchRecord{
		SessionID:      sessionID,
		MatchNo:        snap.Match,
		Winner:         winner.String(),
		Target:         snap.TargetScore,
		HumanScore:     snap.Human.Score,
		ComputerScore:  snap.Computer.Score,
		TieBreakRounds: tieBreakRounds,
		Turns:          snap.Turn,
		FinishedAt:     time.Now().UTC(),
		Summary:        summary,
	}, nil
}

type noopService struct{}

func (n *noopService) Close() error { return nil }

func (n *noopService) RecordWin(_ context.Context, _ string, _ dicegame.Side) error { return nil }

func (n *noopService) RecordMatch(_ context.Context, _ MatchRecord) error { return nil }

func (n *noopService) Totals(_ context.Context, sessionID string) (Totals, error) {
	return Totals{SessionID: sessionID, Label: dicegame.Label(0, 0)}, nil
}

func (n *noopService) ListRecent(_ context.Context, _ string, _ int) ([]MatchRecord, error) {
	return []MatchRecord{}, nil
}

func (n *noopService) Forget(_ context.Context, _ string) error { return nil }

// NewService picks the store backing the tally.
func NewService(mode string, recentLimit int) (Service, string, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "sqlite", "memory":
		svc, err := NewSQLiteService(recentLimit)
		if err != nil {
			return nil, "", err
		}
		return svc, "sqlite-memory", nil
	case "none", "noop":
		return &noopService{}, "noop", nil
	default:
		return nil, "", fmt.Errorf("unknown tally store %q", mode)
	}
}
