package npc

import "dice-lite/die"

// TurnView is the part of the computer's turn state a brain may look at.
type TurnView struct {
	Dice           die.Set
	RollsRemaining int
	FirstRoll      bool
	TieBreak       bool
}

// Action 电脑本步动作
type Action byte

const (
	ActionNone     Action = 0
	ActionOpen     Action = 1 // opening roll of a turn, no decision
	ActionReroll   Action = 2
	ActionStop     Action = 3
	ActionTieBreak Action = 4
)

var ActionDictionary = map[Action]string{
	ActionNone:     "NONE",
	ActionOpen:     "OPEN",
	ActionReroll:   "REROLL",
	ActionStop:     "STOP",
	ActionTieBreak: "TIEBREAK",
}

func (a Action) String() string {
	if s, ok := ActionDictionary[a]; ok {
		return s
	}
	return "UNKNOWN"
}

// Decision is what a BrainDecider returns: the computer's new dice and roll budget.
type Decision struct {
	Action         Action
	Dice           die.Set
	Hold           die.HoldMask
	RollsRemaining int
}

// BrainDecider is the interface the engine drives once per human action.
type BrainDecider interface {
	// Decide performs exactly one strategy step.
	Decide(view TurnView) Decision
	// Name returns a human-readable identifier for debugging.
	Name() string
}
