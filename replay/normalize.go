package replay

import (
	"fmt"
	"strings"

	"dice-lite/dicegame"
	"dice-lite/die"
)

const defaultSeed int64 = 1

type normalizedStep struct {
	kind   string
	hold   die.HoldMask
	target int
}

type normalizedSpec struct {
	target int
	seed   int64
	steps  []normalizedStep
}

func normalizeSpec(spec MatchSpec) (normalizedSpec, error) {
	var out normalizedSpec
	out.target = spec.Target
	if out.target == 0 {
		out.target = dicegame.DefaultTargetScore
	}
	if out.target < dicegame.MinTargetScore {
		return out, &ReplayError{
			StepIndex: -1,
			Reason:    "invalid_target",
			Message:   fmt.Sprintf("target must be >= %d", dicegame.MinTargetScore),
		}
	}
	out.seed = seedFromSpec(spec.RNG)

	out.steps = make([]normalizedStep, 0, len(spec.Steps))
	for i, step := range spec.Steps {
		kind := strings.ToLower(strings.TrimSpace(step.Type))
		ns := normalizedStep{kind: kind}
		switch kind {
		case StepThrow:
			hold, err := die.MaskFromIndexes(step.Hold)
			if err != nil {
				return out, &ReplayError{StepIndex: int32(i), Reason: "invalid_hold", Message: err.Error()}
			}
			ns.hold = hold
		case StepScore, StepAck:
			if len(step.Hold) > 0 {
				return out, &ReplayError{StepIndex: int32(i), Reason: "invalid_hold", Message: kind + " does not take hold indexes"}
			}
		case StepStart:
			if step.Target < dicegame.MinTargetScore {
				return out, &ReplayError{
					StepIndex: int32(i),
					Reason:    "invalid_target",
					Message:   fmt.Sprintf("start target must be >= %d", dicegame.MinTargetScore),
				}
			}
			ns.target = step.Target
		default:
			return out, &ReplayError{StepIndex: int32(i), Reason: "invalid_step_type", Message: fmt.Sprintf("unknown step type %q", step.Type)}
		}
		out.steps = append(out.steps, ns)
	}
	return out, nil
}

// seedFromSpec never returns 0 so a replay is never time-seeded.
func seedFromSpec(rng *RNGSpec) int64 {
	if rng == nil || rng.Seed == 0 {
		return defaultSeed
	}
	return rng.Seed
}
