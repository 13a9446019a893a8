//go:build js && wasm

package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"syscall/js"

	"dice-lite/replay"
)

type generateRequest struct {
	Spec replay.MatchSpec `json:"spec"`
}

type generateResponse struct {
	OK    bool                   `json:"ok"`
	Tape  *replay.WireReplayTape `json:"tape,omitempty"`
	Error *replay.ReplayError    `json:"error,omitempty"`
}

type decodeResponse struct {
	OK      bool           `json:"ok"`
	Type    string         `json:"type,omitempty"`
	Seq     uint64         `json:"seq,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func main() {
	// __diceReplay(specJSON) -> tape JSON
	js.Global().Set("__diceReplay", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 1 {
			return mustJSON(generateResponse{
				Error: &replay.ReplayError{StepIndex: -1, Reason: "invalid_request", Message: "missing request payload"},
			})
		}
		return mustJSON(handleGenerate(args[0].String()))
	}))
	// __diceReplayDecode(envelopeB64) -> envelope JSON, so the page needs no protobuf runtime.
	js.Global().Set("__diceReplayDecode", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 1 {
			return mustJSON(decodeResponse{Error: "missing envelope"})
		}
		return mustJSON(handleDecode(args[0].String()))
	}))

	select {}
}

func handleGenerate(raw string) generateResponse {
	var req generateRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return generateResponse{
			Error: &replay.ReplayError{StepIndex: -1, Reason: "invalid_json", Message: err.Error()},
		}
	}

	tape, err := replay.GenerateReplayTape(req.Spec)
	if err != nil {
		var replayErr *replay.ReplayError
		if errors.As(err, &replayErr) {
			return generateResponse{Error: replayErr}
		}
		return generateResponse{
			Error: &replay.ReplayError{StepIndex: -1, Reason: "replay_generation_failed", Message: err.Error()},
		}
	}
	return generateResponse{OK: true, Tape: replay.ToWireReplayTape(tape)}
}

func handleDecode(b64 string) decodeResponse {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return decodeResponse{Error: err.Error()}
	}
	typ, seq, payload, err := replay.DecodeEnvelope(raw)
	if err != nil {
		return decodeResponse{Error: err.Error()}
	}
	return decodeResponse{OK: true, Type: typ, Seq: seq, Payload: payload}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(decodeResponse{Error: "marshal failed: " + err.Error()})
	}
	return string(b)
}
