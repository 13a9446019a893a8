package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"dice-lite/apps/server/internal/codec"
	"dice-lite/apps/server/internal/tally"
	"dice-lite/dicegame"
	"dice-lite/dicegame/npc"
	"dice-lite/die"
)

// Session hosts one player's game behind an actor loop. Every command for the
// session runs on the actor goroutine, one at a time.
type Session struct {
	ID     string
	Config Config

	mu       sync.RWMutex
	game     *dicegame.Game
	recorder *tally.Recorder
	store    tally.Service
	closed   bool
	stopOnce sync.Once

	// Event channel for actor pattern
	events chan Event
	done   chan struct{}

	serverSeq  uint64
	lastActive time.Time

	send func(env codec.ServerEnvelope)
}

type Config struct {
	TargetScore int
	// Seed 0 => time-based.
	Seed     int64
	TraceNPC bool
}

// Event types for the actor message queue
type EventType int

const (
	EventStartMatch EventType = iota
	EventThrow
	EventScore
	EventAcknowledge
	EventSync
	EventClose
)

var EventTypeDictionary = map[EventType]string{
	EventStartMatch:  "start",
	EventThrow:       "throw",
	EventScore:       "score",
	EventAcknowledge: "ack",
	EventSync:        "sync",
	EventClose:       "close",
}

func (t EventType) String() string {
	if s, ok := EventTypeDictionary[t]; ok {
		return s
	}
	return fmt.Sprintf("event(%d)", int(t))
}

// Event is a message to the session actor.
type Event struct {
	Type      EventType
	Hold      die.HoldMask
	Target    int
	Timestamp time.Time
	Response  chan error
}

var ErrSessionClosed = errors.New("session closed")

// New creates the session and starts its actor. sendFn receives every
// outbound envelope and must not block.
func New(id string, cfg Config, store tally.Service, sendFn func(env codec.ServerEnvelope)) (*Session, error) {
	src := die.NewSource(cfg.Seed)
	var brain npc.BrainDecider = npc.NewRuleBrain(src)
	if cfg.TraceNPC {
		brain = npc.NewTracedBrain(brain, id)
	}
	recorder := tally.NewRecorder(id, store)

	game, err := dicegame.NewGame(dicegame.Config{
		TargetScore: cfg.TargetScore,
		Source:      src,
		Brain:       brain,
		Tally:       recorder,
	})
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	if sendFn == nil {
		sendFn = func(codec.ServerEnvelope) {}
	}

	s := &Session{
		ID:         id,
		Config:     cfg,
		game:       game,
		recorder:   recorder,
		store:      store,
		events:     make(chan Event, 64),
		done:       make(chan struct{}),
		lastActive: time.Now(),
		send:       sendFn,
	}
	// Hooks run inside handleEvent, which holds s.mu.
	game.OnChange(s.onChangeLocked)

	go s.run()

	log.Printf("[Session %s] Created (target=%d, seed=%d, brain=%s)", id, cfg.TargetScore, cfg.Seed, brain.Name())
	return s, nil
}

// run is the main actor loop
func (s *Session) run() {
	for {
		select {
		case event := <-s.events:
			err := s.handleEvent(event)
			if event.Response != nil {
				event.Response <- err
			}
		case <-s.done:
			log.Printf("[Session %s] Actor stopped", s.ID)
			return
		}
	}
}

func (s *Session) handleEvent(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed && e.Type != EventClose {
		return ErrSessionClosed
	}
	s.lastActive = e.Timestamp

	switch e.Type {
	case EventStartMatch:
		if err := s.game.StartMatch(e.Target); err != nil {
			return err
		}
		log.Printf("[Session %s] Match started (target=%d)", s.ID, e.Target)
		return nil
	case EventThrow:
		res, err := s.game.ThrowDice(e.Hold)
		if err != nil {
			return err
		}
		s.afterTurnLocked(res)
		return nil
	case EventScore:
		res, err := s.game.ScoreNow()
		if err != nil {
			return err
		}
		s.afterTurnLocked(res)
		return nil
	case EventAcknowledge:
		s.game.AcknowledgeMatchEnd()
		return nil
	case EventSync:
		s.sendSnapshotLocked(s.game.Snapshot())
		return nil
	case EventClose:
		s.stopLocked()
		return nil
	default:
		return fmt.Errorf("unknown event type: %d", e.Type)
	}
}

func (s *Session) onChangeLocked(snap dicegame.Snapshot) {
	s.sendSnapshotLocked(snap)
}

func (s *Session) afterTurnLocked(res *dicegame.TurnResult) {
	if res == nil {
		return
	}
	s.sendLocked(codec.EnvelopeTurnEnd, codec.TurnEndPayload(res))
	if res.EnteredTieBreak {
		log.Printf("[Session %s] Tie-break at %d:%d", s.ID, res.HumanScore, res.ComputerScore)
	}
	if !res.Outcome.Terminal() {
		return
	}

	snap := s.game.Snapshot()
	label := s.recorder.Label()
	log.Printf("[Session %s] Match %d ended: %s (%d:%d) tally=%s",
		s.ID, snap.Match, snap.Outcome, snap.Human.Score, snap.Computer.Score, label)
	s.sendLocked(codec.EnvelopeMatchEnd, codec.MatchEndPayload(snap, label))
	s.persistMatchLocked(snap, res)
}

func (s *Session) persistMatchLocked(snap dicegame.Snapshot, res *dicegame.TurnResult) {
	if s.store == nil {
		return
	}
	rec, err := tally.RecordFromSnapshot(s.ID, snap, codec.TurnEndPayload(res))
	if err != nil {
		log.Printf("[Session %s] build match record failed: %v", s.ID, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.store.RecordMatch(ctx, rec); err != nil {
		log.Printf("[Session %s] persist match failed: %v", s.ID, err)
	}
}

// SubmitEvent sends an event to the actor and waits for it to be handled.
func (s *Session) SubmitEvent(e Event) error {
	e.Timestamp = time.Now()
	if e.Response == nil {
		e.Response = make(chan error, 1)
	}

	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrSessionClosed
	}

	select {
	case s.events <- e:
	case <-s.done:
		return ErrSessionClosed
	}

	select {
	case err := <-e.Response:
		return err
	case <-s.done:
		return ErrSessionClosed
	}
}

// Stop shuts down the session actor
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Session) stopLocked() {
	s.closed = true
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

func (s *Session) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Session) IsIdleFor(ttl time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return true
	}
	return time.Since(s.lastActive) >= ttl
}

// Snapshot returns current game state (thread-safe)
func (s *Session) Snapshot() dicegame.Snapshot {
	return s.game.Snapshot()
}

// TallyLabel renders the session's win totals.
func (s *Session) TallyLabel() string {
	return s.recorder.Label()
}

func (s *Session) nextSeq() uint64 {
	s.serverSeq++
	return s.serverSeq
}

func (s *Session) sendSnapshotLocked(snap dicegame.Snapshot) {
	s.sendLocked(codec.EnvelopeSnapshot, codec.SnapshotPayload(snap, s.recorder.Label()))
}

func (s *Session) sendLocked(typ string, payload map[string]any) {
	s.send(codec.WrapServerEnvelope(s.ID, s.nextSeq(), typ, payload))
}
