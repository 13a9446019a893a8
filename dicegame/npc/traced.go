package npc

import "log"

// TracedBrain logs every decision of the wrapped brain. The server wraps the
// engine's brain with it so session logs show what the computer did.
type TracedBrain struct {
	Inner BrainDecider
	Tag   string
}

// NewTracedBrain wraps inner; tag usually names the session.
func NewTracedBrain(inner BrainDecider, tag string) *TracedBrain {
	return &TracedBrain{Inner: inner, Tag: tag}
}

func (t *TracedBrain) Name() string { return t.Inner.Name() }

// Decide implements BrainDecider.
func (t *TracedBrain) Decide(view TurnView) Decision {
	d := t.Inner.Decide(view)
	log.Printf("[NPC %s] %s decides: %v dice=%v hold=%v rolls %d->%d",
		t.Tag, t.Inner.Name(), d.Action, d.Dice, d.Hold.Indexes(), view.RollsRemaining, d.RollsRemaining)
	return d
}
