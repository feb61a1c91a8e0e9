package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"monadmons-arena/models"

	"gorm.io/gorm"
)

// GormRoomStore persists rooms in postgres. Change notifications come from
// polling updated_at, the same cursor approach the SSE feeds use.
type GormRoomStore struct {
	DB           *gorm.DB
	PollInterval time.Duration
}

func NewGormRoomStore(db *gorm.DB, pollInterval time.Duration) *GormRoomStore {
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &GormRoomStore{DB: db, PollInterval: pollInterval}
}

func (s *GormRoomStore) CreateRoom(ctx context.Context, room models.Room) (models.Room, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Room{}).Where("id = ?", room.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrRoomExists
		}
		return tx.Create(&room).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = ErrRoomExists
	}
	if err != nil {
		return models.Room{}, fmt.Errorf("create room %s: %w", room.ID, err)
	}
	return room, nil
}

func (s *GormRoomStore) UpdateRoom(ctx context.Context, id string, update models.RoomUpdate) (models.Room, error) {
	cols := update.Columns()
	if len(cols) > 0 {
		res := s.DB.WithContext(ctx).Model(&models.Room{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return models.Room{}, fmt.Errorf("update room %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return models.Room{}, fmt.Errorf("update room %s: %w", id, ErrRoomNotFound)
		}
	}
	return s.ReadRoom(ctx, id)
}

func (s *GormRoomStore) ReadRoom(ctx context.Context, id string) (models.Room, error) {
	var room models.Room
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Room{}, fmt.Errorf("read room %s: %w", id, ErrRoomNotFound)
		}
		return models.Room{}, fmt.Errorf("read room %s: %w", id, err)
	}
	return room, nil
}

func (s *GormRoomStore) DeleteRoom(ctx context.Context, id string) error {
	if err := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Room{}).Error; err != nil {
		return fmt.Errorf("delete room %s: %w", id, err)
	}
	return nil
}

func (s *GormRoomStore) SubscribeRoom(ctx context.Context, id string, onChange func(models.Room)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	box := newMailbox(onChange)
	go box.run(ctx)
	go s.poll(ctx, id, box)
	return cancel, nil
}

func (s *GormRoomStore) poll(ctx context.Context, id string, box *mailbox) {
	ticker := time.NewTicker(s.PollInterval)
	defer ticker.Stop()

	var lastUpdatedAt time.Time
	check := func() {
		room, err := s.ReadRoom(ctx, id)
		if err != nil {
			if !errors.Is(err, ErrRoomNotFound) && ctx.Err() == nil {
				log.Printf("❌ [ROOM_FEED] poll error for room %s: %v", id, err)
			}
			return
		}
		if room.UpdatedAt.Equal(lastUpdatedAt) {
			return
		}
		lastUpdatedAt = room.UpdatedAt
		box.post(room)
	}

	check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}

// ListRooms returns every room last touched before cutoff.
func (s *GormRoomStore) ListRooms(ctx context.Context, updatedBefore time.Time) ([]models.Room, error) {
	var rooms []models.Room
	if err := s.DB.WithContext(ctx).Where("updated_at < ?", updatedBefore).Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("list stale rooms: %w", err)
	}
	return rooms, nil
}
