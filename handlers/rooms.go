// handlers/rooms.go
package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"monadmons-arena/models"
	"monadmons-arena/services"

	"github.com/gofiber/fiber/v2"
)

// StreamKeepAlive is how often an idle room stream sends a comment line.
var StreamKeepAlive = 15 * time.Second

func SetupRoomRoutes(app *fiber.App, store services.RoomStore) {
	rooms := app.Group("/rooms")

	rooms.Post("/", func(c *fiber.Ctx) error {
		var room models.Room
		if err := c.BodyParser(&room); err != nil {
			return badRequest(c, "invalid room body")
		}
		code, err := services.NormalizeRoomCode(room.ID)
		if err != nil {
			return sendError(c, "ROOMS", err)
		}
		room.ID = code
		if room.Status == "" {
			room.Status = models.RoomStatusWaiting
		}
		if room.ActionLog == nil {
			room.ActionLog = []string{}
		}
		created, err := store.CreateRoom(c.UserContext(), room)
		if err != nil {
			return sendError(c, "ROOMS", err)
		}
		log.Printf("🆕 [ROOMS] Room %s created by %s", created.ID, created.Player1Address)
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	rooms.Get("/:id", func(c *fiber.Ctx) error {
		room, err := store.ReadRoom(c.UserContext(), c.Params("id"))
		if err != nil {
			return sendError(c, "ROOMS", err)
		}
		return c.JSON(room)
	})

	rooms.Patch("/:id", func(c *fiber.Ctx) error {
		var update models.RoomUpdate
		if err := c.BodyParser(&update); err != nil {
			return badRequest(c, "invalid room update")
		}
		room, err := store.UpdateRoom(c.UserContext(), c.Params("id"), update)
		if err != nil {
			return sendError(c, "ROOMS", err)
		}
		return c.JSON(room)
	})

	rooms.Delete("/:id", func(c *fiber.Ctx) error {
		if err := store.DeleteRoom(c.UserContext(), c.Params("id")); err != nil {
			return sendError(c, "ROOMS", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	rooms.Get("/:id/stream", func(c *fiber.Ctx) error {
		return streamRoom(c, store, c.Params("id"))
	})
}

// streamRoom sends the room as "event: room" SSE frames until the client
// goes away. Intermediate states may be skipped; the latest is always sent.
func streamRoom(c *fiber.Ctx, store services.RoomStore, id string) error {
	if _, err := store.ReadRoom(c.UserContext(), id); err != nil {
		return sendError(c, "ROOM_STREAM", err)
	}

	updates := make(chan models.Room, 1)
	ctx, cancel := context.WithCancel(context.Background())
	unsubscribe, err := store.SubscribeRoom(ctx, id, func(r models.Room) {
		select {
		case <-updates:
		default:
		}
		updates <- r
	})
	if err != nil {
		cancel()
		return sendError(c, "ROOM_STREAM", err)
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	done := c.Context().Done()
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer unsubscribe()

		keepAlive := time.NewTicker(StreamKeepAlive)
		defer keepAlive.Stop()

		w.WriteString(":\n\n")
		if err := w.Flush(); err != nil {
			return
		}
		for {
			select {
			case room := <-updates:
				payload, err := json.Marshal(room)
				if err != nil {
					log.Printf("❌ [ROOM_STREAM] encode room %s: %v", id, err)
					continue
				}
				fmt.Fprintf(w, "event: room\ndata: %s\n\n", payload)
				if err := w.Flush(); err != nil {
					// Client disconnected
					return
				}
			case <-keepAlive.C:
				w.WriteString(":\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	})
	return nil
}
