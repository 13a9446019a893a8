package dicegame

import "dice-lite/die"

// TurnState is one player's roll state within the current turn.
type TurnState struct {
	Dice           die.Set
	Hold           die.HoldMask
	RollsRemaining int
	FirstRoll      bool
}

// resetForTurn keeps the last dice on display and restores the roll budget.
func (p *TurnState) resetForTurn(rolls int) {
	p.Hold = die.NoHold
	p.RollsRemaining = rolls
	p.FirstRoll = true
}

// roll performs one human roll. The first roll of a turn ignores hold.
func (p *TurnState) roll(src die.Source, hold die.HoldMask) {
	if p.FirstRoll {
		p.Dice = die.Roll(src)
		p.Hold = die.NoHold
	} else {
		p.Dice = p.Dice.Reroll(src, hold)
		p.Hold = hold
	}
	p.FirstRoll = false
	p.RollsRemaining--
}

func (p *TurnState) mustValid(maxRolls int) {
	if p.RollsRemaining < 0 || p.RollsRemaining > maxRolls {
		panic(ErrInvalidState("rolls remaining out of range"))
	}
	if !p.FirstRoll {
		p.Dice.MustValid()
	}
}
