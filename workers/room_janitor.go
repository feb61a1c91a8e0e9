package workers

import (
	"context"
	"log"
	"time"

	"monadmons-arena/models"

	"github.com/go-co-op/gocron/v2"
)

// StaleRoomStore is the part of a room store the janitor needs.
type StaleRoomStore interface {
	ListRooms(ctx context.Context, updatedBefore time.Time) ([]models.Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// ArchiveFunc stores a finished room's battle log and returns where it went.
type ArchiveFunc func(ctx context.Context, room models.Room) (string, error)

// RoomJanitor purges rooms nobody has touched for TTL. Finished rooms are
// archived first; a room whose archive fails is kept for the next sweep.
type RoomJanitor struct {
	Store   StaleRoomStore
	Archive ArchiveFunc
	TTL     time.Duration
	now     func() time.Time
}

func NewRoomJanitor(store StaleRoomStore, archive ArchiveFunc, ttl time.Duration) *RoomJanitor {
	return &RoomJanitor{Store: store, Archive: archive, TTL: ttl, now: time.Now}
}

// Start schedules Sweep every interval until ctx is done.
func (j *RoomJanitor) Start(ctx context.Context, interval time.Duration) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := j.Sweep(ctx); err != nil {
				log.Printf("❌ [JANITOR] Sweep failed: %v", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}
	sched.Start()

	go func() {
		<-ctx.Done()
		if err := sched.Shutdown(); err != nil {
			log.Printf("⚠️ [JANITOR] Scheduler shutdown: %v", err)
		}
	}()
	return nil
}

// Sweep deletes stale rooms once and returns how many were removed.
func (j *RoomJanitor) Sweep(ctx context.Context) (int, error) {
	rooms, err := j.Store.ListRooms(ctx, j.now().Add(-j.TTL))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, room := range rooms {
		if room.Status == models.RoomStatusFinished && j.Archive != nil {
			url, err := j.Archive(ctx, room)
			if err != nil {
				log.Printf("❌ [JANITOR] Failed to archive room %s: %v", room.ID, err)
				continue
			}
			if url != "" {
				log.Printf("📦 [JANITOR] Archived room %s → %s", room.ID, url)
			}
		}
		if err := j.Store.DeleteRoom(ctx, room.ID); err != nil {
			log.Printf("❌ [JANITOR] Failed to delete room %s: %v", room.ID, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Printf("🧹 [JANITOR] Removed %d stale room(s)", removed)
	}
	return removed, nil
}
