package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"monadmons-arena/models"

	"github.com/google/uuid"
)

// Session drives one player through join → select card → waiting/battle →
// result. All room traffic goes through the RoomStore; phase changes caused
// by the other player arrive via the Synchronizer.
type Session struct {
	mu        sync.Mutex
	address   string
	store     RoomStore
	inventory Inventory
	syncer    *Synchronizer
	settler   *Settler
	intn      func(int) int

	card        *models.CardDefinition
	unsubscribe func()
}

// SessionOptions tunes randomness for tests.
type SessionOptions struct {
	Roller Roller
	Intn   func(int) int
}

func NewSession(address string, store RoomStore, inventory Inventory, opts SessionOptions) *Session {
	s := &Session{
		address:   NormalizeAddress(address),
		store:     store,
		inventory: inventory,
		syncer:    NewSynchronizer(store, opts.Roller),
		settler:   NewSettler(store, inventory, address),
		intn:      opts.Intn,
	}
	s.syncer.OnResult = func(ctx context.Context, room models.Room) {
		s.settler.Settle(ctx, room)
	}
	return s
}

func (s *Session) Address() string { return s.address }

// State returns the current view of the match.
func (s *Session) State() LocalState { return s.syncer.State() }

// Card returns the staked card, if any.
func (s *Session) Card() (models.CardDefinition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.card == nil {
		return models.CardDefinition{}, false
	}
	return *s.card, true
}

// EnterRoom picks the room code. An empty code draws a random one. It is also
// how a user starts over after a failed card selection.
func (s *Session) EnterRoom(code string) (string, error) {
	if st := s.syncer.State(); st.Phase != PhaseJoin && st.Phase != PhaseSelectCard {
		return "", fmt.Errorf("enter room in phase %s: %w", st.Phase, ErrInvalidPhase)
	}
	if code == "" {
		code = GenerateRoomCode(s.intn)
	}
	code, err := NormalizeRoomCode(code)
	if err != nil {
		return "", err
	}
	s.syncer.mutate(func(st *LocalState) {
		*st = LocalState{Phase: PhaseSelectCard, RoomID: code}
	})
	return code, nil
}

// SelectCard stakes a card. The first client in the room becomes player1 and
// waits; the second becomes player2 and starts the battle.
func (s *Session) SelectCard(ctx context.Context, card models.CardDefinition) error {
	st := s.syncer.State()
	if st.Phase != PhaseSelectCard {
		return fmt.Errorf("select card in phase %s: %w", st.Phase, ErrInvalidPhase)
	}
	if err := s.checkOwnership(ctx, card.ID); err != nil {
		return s.fail("Card check failed", err)
	}

	room, err := s.store.ReadRoom(ctx, st.RoomID)
	switch {
	case errors.Is(err, ErrRoomNotFound):
		room, err = s.store.CreateRoom(ctx, models.Room{
			ID:             st.RoomID,
			MatchID:        uuid.NewString(),
			Player1Address: s.address,
			Player1Card:    &card,
			Player1HP:      card.MaxHP,
			Status:         models.RoomStatusWaiting,
			ActionLog:      []string{},
		})
		if err != nil {
			return s.fail("Failed to create room", err)
		}
		s.syncer.mutate(func(st *LocalState) {
			st.IsPlayer1 = true
			st.Phase = PhaseWaiting
			st.MyHP = card.MaxHP
		})
		log.Printf("🆕 [SESSION] %s created room %s with %s", s.address, room.ID, card.ID)
	case err != nil:
		return s.fail("Failed to read room", err)
	default:
		if room.Player2Card != nil || room.Status != models.RoomStatusWaiting {
			return s.fail("Cannot join room", ErrRoomFull)
		}
		hp, shield, status := card.MaxHP, 0, models.RoomStatusBattle
		addr := s.address
		room, err = s.store.UpdateRoom(ctx, st.RoomID, models.RoomUpdate{
			Player2Address: &addr,
			Player2Card:    &card,
			Player2HP:      &hp,
			Player2Shield:  &shield,
			Status:         &status,
		})
		if err != nil {
			return s.fail("Failed to join room", err)
		}
		s.syncer.mutate(func(st *LocalState) {
			st.IsPlayer1 = false
			st.Phase = PhaseBattle
			st.MyHP = card.MaxHP
		})
		log.Printf("🤝 [SESSION] %s joined room %s with %s", s.address, room.ID, card.ID)
	}

	s.mu.Lock()
	c := card
	s.card = &c
	s.mu.Unlock()
	return s.subscribe(ctx, room.ID)
}

func (s *Session) checkOwnership(ctx context.Context, cardID string) error {
	owned, err := s.inventory.GetOwnedCards(ctx, s.address)
	if err != nil {
		return err
	}
	for _, oc := range owned {
		if oc.CardID == cardID {
			return nil
		}
	}
	return fmt.Errorf("%s: %w", cardID, ErrCardNotOwned)
}

func (s *Session) subscribe(ctx context.Context, roomID string) error {
	subCtx := context.WithoutCancel(ctx)
	cancel, err := s.store.SubscribeRoom(subCtx, roomID, func(room models.Room) {
		s.syncer.Observe(subCtx, room)
	})
	if err != nil {
		return s.fail("Failed to subscribe to room", err)
	}
	s.mu.Lock()
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.unsubscribe = cancel
	s.mu.Unlock()
	return nil
}

// SubmitMove writes this player's move for the current round. A second
// submission before the round resolves is rejected.
func (s *Session) SubmitMove(ctx context.Context, moveName string) error {
	s.mu.Lock()
	card := s.card
	s.mu.Unlock()

	var (
		move    models.Move
		roomID  string
		isP1    bool
		lockErr error
	)
	s.syncer.mutate(func(st *LocalState) {
		switch {
		case st.Phase != PhaseBattle:
			lockErr = fmt.Errorf("submit move in phase %s: %w", st.Phase, ErrInvalidPhase)
			return
		case st.MyMoveSubmitted:
			lockErr = ErrMoveAlreadySubmitted
			return
		case card == nil:
			lockErr = ErrUnknownMove
			return
		}
		m, ok := card.FindMove(moveName)
		if !ok {
			lockErr = fmt.Errorf("%q: %w", moveName, ErrUnknownMove)
			return
		}
		st.MyMoveSubmitted = true
		st.SubmittedAtLog = len(st.Log)
		move, roomID, isP1 = m, st.RoomID, st.IsPlayer1
	})
	if lockErr != nil {
		return lockErr
	}

	update := models.RoomUpdate{Player2Move: &move}
	if isP1 {
		update = models.RoomUpdate{Player1Move: &move}
	}
	if _, err := s.store.UpdateRoom(ctx, roomID, update); err != nil {
		s.syncer.mutate(func(st *LocalState) { st.MyMoveSubmitted = false })
		return s.fail("Failed to submit move", err)
	}
	return nil
}

// PlayAgain deletes the finished room and returns to the join phase.
func (s *Session) PlayAgain(ctx context.Context) error {
	st := s.syncer.State()
	if st.Phase != PhaseResult {
		return fmt.Errorf("play again in phase %s: %w", st.Phase, ErrInvalidPhase)
	}
	if err := s.store.DeleteRoom(ctx, st.RoomID); err != nil {
		return s.fail("Failed to delete room", err)
	}
	s.Leave()
	s.mu.Lock()
	s.card = nil
	s.mu.Unlock()
	s.syncer.mutate(func(st *LocalState) { *st = LocalState{Phase: PhaseJoin} })
	return nil
}

// Leave stops listening to the room. Writes already in flight still complete.
func (s *Session) Leave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// SettlementDone reports whether the current match has been settled locally.
func (s *Session) SettlementDone(matchID string) bool { return s.settler.Done(matchID) }

func (s *Session) fail(what string, err error) error {
	s.syncer.notice(fmt.Sprintf("%s: %v", what, err))
	log.Printf("❌ [SESSION] %s (%s): %v", what, s.address, err)
	return err
}
