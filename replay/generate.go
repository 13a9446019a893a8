package replay

import (
	"encoding/base64"
	"errors"
	"fmt"

	"dice-lite/dicegame"
	"dice-lite/die"
)

const (
	tapeVersion    = 1
	defaultMatchID = "replay_local"
)

type tapeBuilder struct {
	matchID string
	seq     uint64
	events  []ReplayEvent
	err     error
}

func newTapeBuilder(matchID string) *tapeBuilder {
	return &tapeBuilder{matchID: matchID}
}

func (b *tapeBuilder) add(eventType string, step int, payload map[string]any) {
	if b.err != nil {
		return
	}
	b.seq++
	raw, err := EncodeEnvelope(eventType, b.seq, payload)
	if err != nil {
		b.err = err
		return
	}
	b.events = append(b.events, ReplayEvent{
		Type:        eventType,
		Seq:         b.seq,
		Step:        int32(step),
		Value:       payload,
		EnvelopeB64: base64.StdEncoding.EncodeToString(raw),
	})
}

// GenerateReplayTape runs spec on a freshly seeded engine and records every
// state change. The same spec always yields the same tape.
func GenerateReplayTape(spec MatchSpec) (*ReplayTape, error) {
	ns, err := normalizeSpec(spec)
	if err != nil {
		return nil, err
	}

	game, err := dicegame.NewGame(dicegame.Config{
		TargetScore: ns.target,
		Source:      die.NewSource(ns.seed),
	})
	if err != nil {
		return nil, &ReplayError{StepIndex: -1, Reason: "engine_init_failed", Message: err.Error()}
	}

	builder := newTapeBuilder(defaultMatchID)
	builder.add(EventSnapshot, -1, SnapshotMap(game.Snapshot()))

	for stepIdx, step := range ns.steps {
		before := game.Snapshot()

		var (
			result *dicegame.TurnResult
			err    error
		)
		switch step.kind {
		case StepThrow:
			result, err = game.ThrowDice(step.hold)
		case StepScore:
			result, err = game.ScoreNow()
		case StepAck:
			game.AcknowledgeMatchEnd()
		case StepStart:
			err = game.StartMatch(step.target)
		}
		if err != nil {
			reason := "action_apply_failed"
			if errors.Is(err, dicegame.ErrIllegalAction) {
				reason = "illegal_action"
			}
			return nil, &ReplayError{
				StepIndex: int32(stepIdx),
				Reason:    reason,
				Message:   fmt.Sprintf("%s: %v", step.kind, err),
				Expected:  expectedFrom(before),
			}
		}

		after := game.Snapshot()
		if result != nil {
			builder.add(EventTurnEnd, stepIdx, TurnResultMap(result))
			if result.EnteredTieBreak {
				builder.add(EventTieBreakStart, stepIdx, map[string]any{
					"human_score":    result.HumanScore,
					"computer_score": result.ComputerScore,
				})
			}
			if winner, ok := result.Winner(); ok {
				builder.add(EventMatchEnd, stepIdx, map[string]any{
					"winner":          winner.String(),
					"human_score":     result.HumanScore,
					"computer_score":  result.ComputerScore,
					"tie_break_round": after.TieBreakRound,
				})
			}
		}
		builder.add(EventSnapshot, stepIdx, SnapshotMap(after))
	}
	if builder.err != nil {
		return nil, &ReplayError{StepIndex: -1, Reason: "encode_failed", Message: builder.err.Error()}
	}

	return &ReplayTape{
		TapeVersion: tapeVersion,
		MatchID:     builder.matchID,
		Seed:        ns.seed,
		Events:      builder.events,
	}, nil
}

func expectedFrom(s dicegame.Snapshot) *ExpectedState {
	return &ExpectedState{
		Outcome:        s.Outcome.String(),
		TieBreak:       s.TieBreak,
		RollsRemaining: s.Human.RollsRemaining,
		CanScore:       !s.Outcome.Terminal() && !s.TieBreak && !s.Human.FirstRoll && s.Human.RollsRemaining > 0,
	}
}
