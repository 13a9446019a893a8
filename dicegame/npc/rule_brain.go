package npc

import "dice-lite/die"

const (
	// RerollChance is the probability of rerolling on a non-opening roll.
	RerollChance = 0.7
	openingRolls = 3
)

// RuleBrain is the fixed probabilistic reroll policy. It never looks at the
// score; holds are independent fair coins per die.
type RuleBrain struct {
	src die.Source
}

// NewRuleBrain draws every decision from src, normally the engine's own source.
func NewRuleBrain(src die.Source) *RuleBrain {
	return &RuleBrain{src: src}
}

func (b *RuleBrain) Name() string { return "rule" }

// Decide implements BrainDecider.
func (b *RuleBrain) Decide(view TurnView) Decision {
	if view.TieBreak {
		return Decision{Action: ActionTieBreak, Dice: die.Roll(b.src), RollsRemaining: 0}
	}
	if view.RollsRemaining >= openingRolls || view.FirstRoll {
		return Decision{Action: ActionOpen, Dice: die.Roll(b.src), RollsRemaining: view.RollsRemaining - 1}
	}
	if view.RollsRemaining <= 0 {
		return Decision{Action: ActionStop, Dice: view.Dice, RollsRemaining: 0}
	}

	if b.src.Float64() >= RerollChance {
		return Decision{Action: ActionStop, Dice: view.Dice, RollsRemaining: 0}
	}

	var hold die.HoldMask
	for i := range hold {
		hold[i] = b.src.Bool()
	}
	return Decision{
		Action:         ActionReroll,
		Dice:           view.Dice.Reroll(b.src, hold),
		Hold:           hold,
		RollsRemaining: view.RollsRemaining - 1,
	}
}
