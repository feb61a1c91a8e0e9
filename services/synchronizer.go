package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"monadmons-arena/models"
)

type Phase string

const (
	PhaseJoin       Phase = "join"
	PhaseSelectCard Phase = "select_card"
	PhaseWaiting    Phase = "waiting"
	PhaseBattle     Phase = "battle"
	PhaseResult     Phase = "result"
)

// Outcome is the winner seen from this client's seat.
type Outcome string

const (
	OutcomeNone     Outcome = ""
	OutcomeMe       Outcome = "me"
	OutcomeOpponent Outcome = "opponent"
	OutcomeDraw     Outcome = "draw"
)

// LocalState is one client's view of a room.
type LocalState struct {
	Phase  Phase  `json:"phase"`
	RoomID string `json:"room_id"`
	// IsPlayer1 is fixed when the client creates or joins the room and is
	// never re-derived from the record.
	IsPlayer1 bool `json:"is_player1"`

	MyHP           int `json:"my_hp"`
	OpponentHP     int `json:"opponent_hp"`
	MyShield       int `json:"my_shield"`
	OpponentShield int `json:"opponent_shield"`

	MyMoveSubmitted       bool `json:"my_move_submitted"`
	OpponentMoveSubmitted bool `json:"opponent_move_submitted"`
	ResolutionInFlight    bool `json:"resolution_in_flight"`
	// SubmittedAtLog is len(Log) when this client submitted its move. The
	// round is over for this client once its own slot is empty and the room
	// log has grown past it.
	SubmittedAtLog int `json:"submitted_at_log"`

	// LastSeen is the newest updated_at folded in; older snapshots are ignored.
	LastSeen time.Time `json:"last_seen"`

	Outcome Outcome  `json:"outcome,omitempty"`
	Log     []string `json:"log"`
	// Notices is the client-side tail of the local log. Failed store writes
	// (move submission, round resolution, settlement) are appended here as
	// "⚠️ ..." lines and never written to the room, so every client keeps
	// its own. Lines returns Log followed by Notices.
	Notices []string `json:"notices,omitempty"`
}

// Lines is the full local log: the shared battle log followed by this
// client's notices.
func (s LocalState) Lines() []string {
	out := make([]string, 0, len(s.Log)+len(s.Notices))
	out = append(out, s.Log...)
	return append(out, s.Notices...)
}

// Reconcile folds a room snapshot into the local view. It is pure and
// idempotent: feeding the same snapshot twice yields the same state and asks
// for resolution at most once. The bool result tells the caller to resolve the
// round now.
func Reconcile(room models.Room, s LocalState) (LocalState, bool) {
	if s.Phase == PhaseJoin || room.ID != s.RoomID {
		return s, false
	}
	if room.UpdatedAt.Before(s.LastSeen) {
		return s, false
	}
	next := s
	next.LastSeen = room.UpdatedAt
	next.Log = append([]string(nil), room.ActionLog...)
	next.Notices = append([]string(nil), s.Notices...)

	if room.Player1Card != nil && room.Player2Card != nil && room.Status == models.RoomStatusBattle &&
		(s.Phase == PhaseWaiting || s.Phase == PhaseSelectCard) {
		next.Phase = PhaseBattle
	}

	if s.IsPlayer1 {
		next.MyHP, next.OpponentHP = room.Player1HP, room.Player2HP
		next.MyShield, next.OpponentShield = room.Player1Shield, room.Player2Shield
		next.OpponentMoveSubmitted = room.Player2Move != nil
	} else {
		next.MyHP, next.OpponentHP = room.Player2HP, room.Player1HP
		next.MyShield, next.OpponentShield = room.Player2Shield, room.Player1Shield
		next.OpponentMoveSubmitted = room.Player1Move != nil
	}

	if room.Winner != models.WinnerNone {
		next.Outcome = outcomeFor(room.Winner, s.IsPlayer1)
		next.Phase = PhaseResult
	}

	// The round is over for this client once its own slot is empty and the
	// log has grown. The opponent's next move may already be in the snapshot.
	mine := room.Player2Move
	if s.IsPlayer1 {
		mine = room.Player1Move
	}
	if s.MyMoveSubmitted && mine == nil && len(room.ActionLog) > s.SubmittedAtLog {
		next.MyMoveSubmitted = false
		next.ResolutionInFlight = false
		return next, false
	}

	both := room.Player1Move != nil && room.Player2Move != nil
	resolve := false
	if both && s.IsPlayer1 && !s.ResolutionInFlight &&
		room.Winner == models.WinnerNone && room.Status == models.RoomStatusBattle {
		next.ResolutionInFlight = true
		resolve = true
	}
	return next, resolve
}

func outcomeFor(w models.Winner, isPlayer1 bool) Outcome {
	switch w {
	case models.WinnerDraw:
		return OutcomeDraw
	case models.WinnerPlayer1:
		if isPlayer1 {
			return OutcomeMe
		}
		return OutcomeOpponent
	case models.WinnerPlayer2:
		if isPlayer1 {
			return OutcomeOpponent
		}
		return OutcomeMe
	}
	return OutcomeNone
}

// Synchronizer applies room snapshots to one client's LocalState and, on the
// player1 client only, resolves rounds and writes the outcome back.
type Synchronizer struct {
	mu    sync.Mutex
	state LocalState
	store RoomStore
	roll  Roller

	// OnResult runs once each time the client enters the result phase.
	OnResult func(ctx context.Context, room models.Room)
}

func NewSynchronizer(store RoomStore, roll Roller) *Synchronizer {
	if roll == nil {
		roll = DefaultRoller
	}
	return &Synchronizer{store: store, roll: roll, state: LocalState{Phase: PhaseJoin}}
}

// State returns a copy of the current view.
func (s *Synchronizer) State() LocalState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Log = append([]string(nil), s.state.Log...)
	st.Notices = append([]string(nil), s.state.Notices...)
	return st
}

func (s *Synchronizer) mutate(fn func(*LocalState)) LocalState {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	return s.state
}

func (s *Synchronizer) notice(msg string) {
	s.mutate(func(st *LocalState) { st.Notices = append(st.Notices, "⚠️ "+msg) })
}

// Observe handles one delivered snapshot.
func (s *Synchronizer) Observe(ctx context.Context, room models.Room) {
	s.mu.Lock()
	prev := s.state.Phase
	next, resolve := Reconcile(room, s.state)
	s.state = next
	entered := prev != PhaseResult && next.Phase == PhaseResult
	s.mu.Unlock()

	if resolve {
		s.resolve(ctx, room)
	}
	if entered && s.OnResult != nil {
		s.OnResult(ctx, room)
	}
}

func (s *Synchronizer) resolve(ctx context.Context, room models.Room) {
	if room.Player1Card == nil || room.Player2Card == nil {
		s.resolutionFailed(room.ID, fmt.Errorf("room %s is missing a card snapshot", room.ID))
		return
	}
	res := ResolveRound(*room.Player1Card, *room.Player2Card, *room.Player1Move, *room.Player2Move,
		CombatState{P1HP: room.Player1HP, P2HP: room.Player2HP, P1Shield: room.Player1Shield, P2Shield: room.Player2Shield},
		s.roll)

	update := models.RoomUpdate{
		Player1HP:     &res.State.P1HP,
		Player2HP:     &res.State.P2HP,
		Player1Shield: &res.State.P1Shield,
		Player2Shield: &res.State.P2Shield,
		ClearMoves:    true,
		ActionLog:     append(append([]string{}, room.ActionLog...), res.Entries...),
	}
	if res.Winner != models.WinnerNone {
		status := models.RoomStatusFinished
		update.Status = &status
		update.Winner = &res.Winner
	}

	// The write outlives the subscription: leaving mid-resolution must not drop it.
	// The in-flight guard stays set until the cleared slots come back through
	// the feed, so a stale snapshot delivered meanwhile cannot resolve twice.
	if _, err := s.store.UpdateRoom(context.WithoutCancel(ctx), room.ID, update); err != nil {
		s.resolutionFailed(room.ID, err)
		return
	}
	log.Printf("⚔️ [SYNC] Room %s resolved: p1=%d/%d p2=%d/%d winner=%q",
		room.ID, res.State.P1HP, res.State.P1Shield, res.State.P2HP, res.State.P2Shield, res.Winner)
}

func (s *Synchronizer) resolutionFailed(roomID string, err error) {
	log.Printf("❌ [SYNC] Resolution write failed for room %s: %v", roomID, err)
	s.mutate(func(st *LocalState) {
		st.ResolutionInFlight = false
		st.Notices = append(st.Notices, "⚠️ Failed to resolve round: "+err.Error())
	})
}
