package services

import (
	"context"
	"log"
	"sync"

	"monadmons-arena/models"
)

// RoomStore is the shared record of every match. It offers no versioning or
// compare-and-swap: updates merge and the last writer wins.
type RoomStore interface {
	// CreateRoom inserts a new room; it fails with ErrRoomExists when the code is taken.
	CreateRoom(ctx context.Context, room models.Room) (models.Room, error)
	UpdateRoom(ctx context.Context, id string, update models.RoomUpdate) (models.Room, error)
	// ReadRoom returns ErrRoomNotFound when no room has that code.
	ReadRoom(ctx context.Context, id string) (models.Room, error)
	DeleteRoom(ctx context.Context, id string) error
	// SubscribeRoom delivers snapshots of the room until ctx is cancelled or the
	// returned cancel func is called. Delivery is best-effort and may skip
	// intermediate states, but always converges on the latest one.
	SubscribeRoom(ctx context.Context, id string, onChange func(models.Room)) (func(), error)
}

// mailbox delivers room snapshots to one subscriber on its own goroutine.
// Only the newest undelivered snapshot is kept.
type mailbox struct {
	mu       sync.Mutex
	pending  *models.Room
	signal   chan struct{}
	onChange func(models.Room)
}

func newMailbox(onChange func(models.Room)) *mailbox {
	return &mailbox{signal: make(chan struct{}, 1), onChange: onChange}
}

func (m *mailbox) post(room models.Room) {
	m.mu.Lock()
	r := room.Clone()
	m.pending = &r
	m.mu.Unlock()
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *mailbox) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.signal:
			m.mu.Lock()
			r := m.pending
			m.pending = nil
			m.mu.Unlock()
			if r != nil {
				m.deliver(*r)
			}
		}
	}
}

func (m *mailbox) deliver(room models.Room) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("❌ [ROOM_FEED] subscriber for room %s panicked: %v", room.ID, rec)
		}
	}()
	m.onChange(room)
}
