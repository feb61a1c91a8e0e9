package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"monadmons-arena/models"
)

// MemoryRoomStore keeps rooms in process. It backs tests and the
// STORE_DRIVER=memory dev mode.
type MemoryRoomStore struct {
	mu     sync.Mutex
	rooms  map[string]models.Room
	subs   map[string]map[int]*mailbox
	nextID int
	now    func() time.Time
}

func NewMemoryRoomStore() *MemoryRoomStore {
	return &MemoryRoomStore{
		rooms: make(map[string]models.Room),
		subs:  make(map[string]map[int]*mailbox),
		now:   time.Now,
	}
}

func (s *MemoryRoomStore) CreateRoom(ctx context.Context, room models.Room) (models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.ID]; ok {
		return models.Room{}, fmt.Errorf("create room %s: %w", room.ID, ErrRoomExists)
	}
	now := s.now()
	room = room.Clone()
	room.CreatedAt = now
	room.UpdatedAt = now
	s.rooms[room.ID] = room
	s.publishLocked(room)
	return room.Clone(), nil
}

func (s *MemoryRoomStore) UpdateRoom(ctx context.Context, id string, update models.RoomUpdate) (models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return models.Room{}, fmt.Errorf("update room %s: %w", id, ErrRoomNotFound)
	}
	update.Apply(&room)
	room.UpdatedAt = s.now()
	s.rooms[id] = room
	s.publishLocked(room)
	return room.Clone(), nil
}

func (s *MemoryRoomStore) ReadRoom(ctx context.Context, id string) (models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return models.Room{}, fmt.Errorf("read room %s: %w", id, ErrRoomNotFound)
	}
	return room.Clone(), nil
}

func (s *MemoryRoomStore) DeleteRoom(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	return nil
}

func (s *MemoryRoomStore) SubscribeRoom(ctx context.Context, id string, onChange func(models.Room)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	box := newMailbox(onChange)

	s.mu.Lock()
	s.nextID++
	key := s.nextID
	if s.subs[id] == nil {
		s.subs[id] = make(map[int]*mailbox)
	}
	s.subs[id][key] = box
	if room, ok := s.rooms[id]; ok {
		box.post(room)
	}
	s.mu.Unlock()

	go box.run(ctx)
	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs[id], key)
		if len(s.subs[id]) == 0 {
			delete(s.subs, id)
		}
		s.mu.Unlock()
	}()
	return cancel, nil
}

// ListRooms returns every room last touched before cutoff.
func (s *MemoryRoomStore) ListRooms(ctx context.Context, updatedBefore time.Time) ([]models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Room
	for _, r := range s.rooms {
		if r.UpdatedAt.Before(updatedBefore) {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (s *MemoryRoomStore) publishLocked(room models.Room) {
	for _, box := range s.subs[room.ID] {
		box.post(room)
	}
}
