package replay

import (
	"fmt"

	"dice-lite/dicegame"
	"dice-lite/die"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// SnapshotMap flattens a snapshot into proto-friendly values.
func SnapshotMap(snap dicegame.Snapshot) map[string]any {
	m := map[string]any{
		"match":           snap.Match,
		"turn":            snap.Turn,
		"target":          snap.TargetScore,
		"outcome":         snap.Outcome.String(),
		"tie_break":       snap.TieBreak,
		"tie_break_round": snap.TieBreakRound,
		"human":           playerMap(snap.Human),
		"computer":        playerMap(snap.Computer),
	}
	if snap.LastTurn != nil {
		m["last_turn"] = TurnResultMap(snap.LastTurn)
	}
	return m
}

func playerMap(p dicegame.PlayerSnapshot) map[string]any {
	return map[string]any{
		"side":            p.Side.String(),
		"score":           p.Score,
		"tie_break_score": p.TieBreakScore,
		"dice":            diceList(p.Dice),
		"hold":            holdList(p.Hold),
		"rolls_remaining": p.RollsRemaining,
		"first_roll":      p.FirstRoll,
	}
}

// TurnResultMap flattens a completed turn.
func TurnResultMap(r *dicegame.TurnResult) map[string]any {
	return map[string]any{
		"turn":              r.Turn,
		"tie_break":         r.TieBreak,
		"tie_break_round":   r.TieBreakRound,
		"human_dice":        diceList(r.HumanDice),
		"computer_dice":     diceList(r.ComputerDice),
		"human_sum":         r.HumanSum,
		"computer_sum":      r.ComputerSum,
		"human_score":       r.HumanScore,
		"computer_score":    r.ComputerScore,
		"entered_tie_break": r.EnteredTieBreak,
		"outcome":           r.Outcome.String(),
	}
}

func diceList(s die.Set) []any {
	out := make([]any, die.Count)
	for i, f := range s {
		out[i] = int(f)
	}
	return out
}

func holdList(m die.HoldMask) []any {
	out := make([]any, die.Count)
	for i, h := range m {
		out[i] = h
	}
	return out
}

// EncodeEnvelope wraps payload in a google.protobuf.Struct envelope and
// marshals it deterministically so equal payloads give equal bytes.
func EncodeEnvelope(eventType string, seq uint64, payload map[string]any) ([]byte, error) {
	env, err := structpb.NewStruct(map[string]any{
		"type":    eventType,
		"seq":     seq,
		"payload": payload,
	})
	if err != nil {
		return nil, fmt.Errorf("build envelope: %w", err)
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(env)
}

// DecodeEnvelope is the inverse of EncodeEnvelope. Numbers come back as float64.
func DecodeEnvelope(data []byte) (eventType string, seq uint64, payload map[string]any, err error) {
	var env structpb.Struct
	if err := proto.Unmarshal(data, &env); err != nil {
		return "", 0, nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	fields := env.GetFields()
	eventType = fields["type"].GetStringValue()
	seq = uint64(fields["seq"].GetNumberValue())
	if p := fields["payload"].GetStructValue(); p != nil {
		payload = p.AsMap()
	}
	return eventType, seq, payload, nil
}
