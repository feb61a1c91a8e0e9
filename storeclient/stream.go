package storeclient

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"monadmons-arena/models"
	"monadmons-arena/services"
)

// ReconnectDelay is the pause before re-opening a dropped room stream.
var ReconnectDelay = time.Second

// SubscribeRoom follows GET /rooms/:id/stream. Dropped connections are
// re-opened until ctx ends or the room is gone; the server sends the current
// room on every (re)connect, so nothing is lost across a reconnect.
func (c *Client) SubscribeRoom(ctx context.Context, id string, onChange func(models.Room)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	body, err := c.openStream(ctx, id)
	if err != nil {
		cancel()
		return nil, err
	}

	go func() {
		for {
			err := readEvents(body, func(event string, data []byte) {
				if event != "room" {
					return
				}
				var room models.Room
				if err := json.Unmarshal(data, &room); err != nil {
					log.Printf("❌ [ROOM_FEED] bad room event for %s: %v", id, err)
					return
				}
				deliver(onChange, room)
			})
			body.Close()
			if ctx.Err() != nil {
				return
			}
			log.Printf("⚠️ [ROOM_FEED] stream for room %s ended (%v), reconnecting", id, err)

			for {
				select {
				case <-ctx.Done():
					return
				case <-time.After(ReconnectDelay):
				}
				body, err = c.openStream(ctx, id)
				if err == nil {
					break
				}
				if errors.Is(err, services.ErrRoomNotFound) {
					log.Printf("⚠️ [ROOM_FEED] room %s is gone, stopping stream", id)
					return
				}
				if ctx.Err() != nil {
					return
				}
				log.Printf("❌ [ROOM_FEED] reconnect to room %s failed: %v", id, err)
			}
		}
	}()
	return cancel, nil
}

func deliver(onChange func(models.Room), room models.Room) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("❌ [ROOM_FEED] subscriber for room %s panicked: %v", room.ID, rec)
		}
	}()
	onChange(room)
}

func (c *Client) openStream(ctx context.Context, id string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+roomPath(id)+"/stream", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.Stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to open room stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := &statusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
		return nil, mapStatus(err, http.StatusNotFound, services.ErrRoomNotFound)
	}
	return resp.Body, nil
}

// readEvents parses a text/event-stream body and calls fn once per event.
// Comment lines (keep-alives) are skipped; multi-line data is joined with "\n".
func readEvents(r io.Reader, fn func(event string, data []byte)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		event string
		data  []string
	)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if len(data) > 0 {
				if event == "" {
					event = "message"
				}
				fn(event, []byte(strings.Join(data, "\n")))
			}
			event, data = "", nil
		case strings.HasPrefix(line, ":"):
		default:
			field, value, _ := strings.Cut(line, ":")
			value = strings.TrimPrefix(value, " ")
			switch field {
			case "event":
				event = value
			case "data":
				data = append(data, value)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return io.EOF
}
