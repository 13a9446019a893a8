package codec

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dice-lite/dicegame"
	"dice-lite/die"
	"dice-lite/replay"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client command types.
const (
	CommandStart = "start"
	CommandThrow = "throw"
	CommandScore = "score"
	CommandAck   = "ack"
	CommandSync  = "sync"
)

// Server envelope types.
const (
	EnvelopeSnapshot = "snapshot"
	EnvelopeTurnEnd  = "turn_end"
	EnvelopeMatchEnd = "match_end"
	EnvelopeError    = "error"
)

// Error codes carried by error envelopes.
const (
	ErrCodeBadRequest    int32 = 400
	ErrCodeIllegalAction int32 = 409
	ErrCodeInvalidConfig int32 = 422
	ErrCodeInternal      int32 = 500
)

var ErrUnknownCommand = errors.New("unknown command")

// ClientCommand is one decoded client message.
type ClientCommand struct {
	Type      string
	ClientSeq uint64
	Hold      die.HoldMask
	Target    int
}

// ServerEnvelope is one outbound message.
type ServerEnvelope struct {
	Type       string
	SessionID  string
	ServerSeq  uint64
	ServerTsMs int64
	Payload    map[string]any
}

// DecodeClient parses a binary (proto) or text (protojson) frame.
func DecodeClient(data []byte, text bool) (ClientCommand, error) {
	var msg structpb.Struct
	if err := unmarshal(data, text, &msg); err != nil {
		return ClientCommand{}, fmt.Errorf("decode client envelope: %w", err)
	}
	fields := msg.GetFields()

	cmd := ClientCommand{
		Type:      strings.ToLower(strings.TrimSpace(fields["type"].GetStringValue())),
		ClientSeq: uint64(fields["client_seq"].GetNumberValue()),
	}
	switch cmd.Type {
	case CommandThrow:
		hold, err := holdFromValue(fields["hold"])
		if err != nil {
			return ClientCommand{}, err
		}
		cmd.Hold = hold
	case CommandStart:
		v, ok := fields["target"]
		if !ok {
			return ClientCommand{}, fmt.Errorf("start: missing target")
		}
		n := v.GetNumberValue()
		if n != float64(int(n)) {
			return ClientCommand{}, fmt.Errorf("start: target must be an integer, got %v", n)
		}
		cmd.Target = int(n)
	case CommandScore, CommandAck, CommandSync:
	default:
		return ClientCommand{}, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
	return cmd, nil
}

// holdFromValue accepts a list of five bools. A missing hold means hold nothing.
func holdFromValue(v *structpb.Value) (die.HoldMask, error) {
	if v == nil {
		return die.NoHold, nil
	}
	list := v.GetListValue()
	if list == nil {
		return die.NoHold, fmt.Errorf("throw: hold must be a list")
	}
	values := list.GetValues()
	if len(values) != die.Count {
		return die.NoHold, fmt.Errorf("throw: hold needs %d entries, got %d", die.Count, len(values))
	}
	bools := make([]bool, die.Count)
	for i, item := range values {
		b, ok := item.GetKind().(*structpb.Value_BoolValue)
		if !ok {
			return die.NoHold, fmt.Errorf("throw: hold[%d] is not a bool", i)
		}
		bools[i] = b.BoolValue
	}
	return die.MaskFromBools(bools)
}

// Marshal encodes a command the way a client sends it.
func (c ClientCommand) Marshal(text bool) ([]byte, error) {
	fields := map[string]any{
		"type":       c.Type,
		"client_seq": c.ClientSeq,
	}
	switch c.Type {
	case CommandThrow:
		hold := make([]any, die.Count)
		for i, h := range c.Hold {
			hold[i] = h
		}
		fields["hold"] = hold
	case CommandStart:
		fields["target"] = c.Target
	}
	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build client envelope: %w", err)
	}
	return marshal(msg, text)
}

// Marshal encodes the envelope as proto (binary) or protojson (text).
func (e ServerEnvelope) Marshal(text bool) ([]byte, error) {
	fields := map[string]any{
		"type":         e.Type,
		"session_id":   e.SessionID,
		"server_seq":   e.ServerSeq,
		"server_ts_ms": e.ServerTsMs,
	}
	if e.Payload != nil {
		fields["payload"] = e.Payload
	}
	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build server envelope: %w", err)
	}
	return marshal(msg, text)
}

// DecodeServer is the client-side inverse of ServerEnvelope.Marshal.
// Payload numbers come back as float64.
func DecodeServer(data []byte, text bool) (ServerEnvelope, error) {
	var msg structpb.Struct
	if err := unmarshal(data, text, &msg); err != nil {
		return ServerEnvelope{}, fmt.Errorf("decode server envelope: %w", err)
	}
	fields := msg.GetFields()
	env := ServerEnvelope{
		Type:       fields["type"].GetStringValue(),
		SessionID:  fields["session_id"].GetStringValue(),
		ServerSeq:  uint64(fields["server_seq"].GetNumberValue()),
		ServerTsMs: int64(fields["server_ts_ms"].GetNumberValue()),
	}
	if p := fields["payload"].GetStructValue(); p != nil {
		env.Payload = p.AsMap()
	}
	return env, nil
}

// WrapServerEnvelope stamps the common fields.
func WrapServerEnvelope(sessionID string, serverSeq uint64, typ string, payload map[string]any) ServerEnvelope {
	return ServerEnvelope{
		Type:       typ,
		SessionID:  sessionID,
		ServerSeq:  serverSeq,
		ServerTsMs: time.Now().UnixMilli(),
		Payload:    payload,
	}
}

// SnapshotPayload is the snapshot plus the session's win label.
func SnapshotPayload(snap dicegame.Snapshot, tallyLabel string) map[string]any {
	m := replay.SnapshotMap(snap)
	m["tally"] = tallyLabel
	m["can_score"] = CanScore(snap)
	return m
}

// TurnEndPayload describes a completed turn or tie-break round.
func TurnEndPayload(res *dicegame.TurnResult) map[string]any {
	return replay.TurnResultMap(res)
}

// MatchEndPayload announces the winner with the updated label.
func MatchEndPayload(snap dicegame.Snapshot, tallyLabel string) map[string]any {
	winner := dicegame.SideHuman
	if snap.Outcome == dicegame.OutcomeComputerWon {
		winner = dicegame.SideComputer
	}
	return map[string]any{
		"match":          snap.Match,
		"winner":         winner.String(),
		"outcome":        snap.Outcome.String(),
		"human_score":    snap.Human.Score,
		"computer_score": snap.Computer.Score,
		"tally":          tallyLabel,
	}
}

func ErrorPayload(code int32, msg string) map[string]any {
	return map[string]any{
		"code":    code,
		"message": msg,
	}
}

// ErrorCode maps an engine or decode error to a wire code.
func ErrorCode(err error) int32 {
	switch {
	case errors.Is(err, dicegame.ErrIllegalAction):
		return ErrCodeIllegalAction
	case errors.Is(err, dicegame.ErrInvalidConfiguration):
		return ErrCodeInvalidConfig
	case errors.Is(err, ErrUnknownCommand):
		return ErrCodeBadRequest
	default:
		return ErrCodeInternal
	}
}

// CanScore mirrors the engine's ScoreNow preconditions for the UI.
func CanScore(snap dicegame.Snapshot) bool {
	return !snap.Outcome.Terminal() &&
		!snap.TieBreak &&
		!snap.Human.FirstRoll &&
		snap.Human.RollsRemaining > 0
}

func marshal(msg proto.Message, text bool) ([]byte, error) {
	if text {
		return protojson.Marshal(msg)
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(msg)
}

func unmarshal(data []byte, text bool, msg proto.Message) error {
	if text {
		return protojson.Unmarshal(data, msg)
	}
	return proto.Unmarshal(data, msg)
}
