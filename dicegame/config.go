package dicegame

import (
	"fmt"

	"dice-lite/dicegame/npc"
	"dice-lite/die"
)

type Config struct {
	TargetScore int

	// RNG seed (0 => time-based). Ignored when Source is set.
	Seed int64
	// Optional: injected randomness shared by dice and computer decisions.
	Source die.Source
	// Optional: computer strategy (default npc.RuleBrain on Source).
	Brain npc.BrainDecider
	// Optional: win counter notified once per finished match.
	Tally WinTally
}

func validateTarget(target int) error {
	if target < MinTargetScore {
		return fmt.Errorf("%w: target score %d must be >= %d", ErrInvalidConfiguration, target, MinTargetScore)
	}
	return nil
}

func (c Config) validate() error {
	return validateTarget(c.TargetScore)
}
