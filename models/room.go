// models/room.go
package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"
	RoomStatusBattle   RoomStatus = "battle"
	RoomStatusFinished RoomStatus = "finished"
)

// Winner is empty until the room is finished.
type Winner string

const (
	WinnerNone    Winner = ""
	WinnerPlayer1 Winner = "player1"
	WinnerPlayer2 Winner = "player2"
	WinnerDraw    Winner = "draw"
)

// Room is the shared record of one match, keyed by the 4-character room code.
// It is the single source of truth both clients reconcile against.
type Room struct {
	ID      string `gorm:"column:id;primaryKey;type:varchar(8)" json:"id"`
	MatchID string `gorm:"column:match_id;type:uuid;not null;index" json:"match_id"`

	Player1Address string          `gorm:"column:player1_address;type:varchar(128);not null" json:"player1_address"`
	Player2Address string          `gorm:"column:player2_address;type:varchar(128)" json:"player2_address,omitempty"`
	Player1Card    *CardDefinition `gorm:"column:player1_card;type:jsonb;serializer:json" json:"player1_card,omitempty"`
	Player2Card    *CardDefinition `gorm:"column:player2_card;type:jsonb;serializer:json" json:"player2_card,omitempty"`

	Player1HP     int `gorm:"column:player1_hp;not null;default:0" json:"player1_hp"`
	Player2HP     int `gorm:"column:player2_hp;not null;default:0" json:"player2_hp"`
	Player1Shield int `gorm:"column:player1_shield;not null;default:0" json:"player1_shield"`
	Player2Shield int `gorm:"column:player2_shield;not null;default:0" json:"player2_shield"`

	// Pending moves for the current round; nil until submitted, cleared after resolution.
	Player1Move *Move `gorm:"column:player1_move;type:jsonb;serializer:json" json:"player1_move,omitempty"`
	Player2Move *Move `gorm:"column:player2_move;type:jsonb;serializer:json" json:"player2_move,omitempty"`

	ActionLog datatypes.JSONSlice[string] `gorm:"column:action_log;type:jsonb" json:"action_log"`
	Status    RoomStatus                  `gorm:"column:status;type:varchar(16);not null;default:'waiting';index" json:"status"`
	Winner    Winner                      `gorm:"column:winner;type:varchar(16)" json:"winner,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime:nano" json:"updated_at"`
}

func (Room) TableName() string { return "rooms" }

// Clone returns a deep copy so subscribers never share slices with the store.
func (r Room) Clone() Room {
	out := r
	if r.Player1Card != nil {
		c := cloneCard(*r.Player1Card)
		out.Player1Card = &c
	}
	if r.Player2Card != nil {
		c := cloneCard(*r.Player2Card)
		out.Player2Card = &c
	}
	if r.Player1Move != nil {
		m := *r.Player1Move
		out.Player1Move = &m
	}
	if r.Player2Move != nil {
		m := *r.Player2Move
		out.Player2Move = &m
	}
	out.ActionLog = append(datatypes.JSONSlice[string]{}, r.ActionLog...)
	return out
}

func cloneCard(c CardDefinition) CardDefinition {
	c.Moves = append([]Move(nil), c.Moves...)
	return c
}

// RoomUpdate is a partial update. Nil fields are left untouched; ActionLog,
// when non-nil, replaces the stored log. ClearMoves empties both move slots.
type RoomUpdate struct {
	Player2Address *string         `json:"player2_address,omitempty"`
	Player2Card    *CardDefinition `json:"player2_card,omitempty"`
	Player1HP      *int            `json:"player1_hp,omitempty"`
	Player2HP      *int            `json:"player2_hp,omitempty"`
	Player1Shield  *int            `json:"player1_shield,omitempty"`
	Player2Shield  *int            `json:"player2_shield,omitempty"`
	Player1Move    *Move           `json:"player1_move,omitempty"`
	Player2Move    *Move           `json:"player2_move,omitempty"`
	ClearMoves     bool            `json:"clear_moves,omitempty"`
	ActionLog      []string        `json:"action_log,omitempty"`
	Status         *RoomStatus     `json:"status,omitempty"`
	Winner         *Winner         `json:"winner,omitempty"`
}

// Apply merges the update into r.
func (u RoomUpdate) Apply(r *Room) {
	if u.Player2Address != nil {
		r.Player2Address = *u.Player2Address
	}
	if u.Player2Card != nil {
		c := cloneCard(*u.Player2Card)
		r.Player2Card = &c
	}
	if u.Player1HP != nil {
		r.Player1HP = *u.Player1HP
	}
	if u.Player2HP != nil {
		r.Player2HP = *u.Player2HP
	}
	if u.Player1Shield != nil {
		r.Player1Shield = *u.Player1Shield
	}
	if u.Player2Shield != nil {
		r.Player2Shield = *u.Player2Shield
	}
	if u.ClearMoves {
		r.Player1Move = nil
		r.Player2Move = nil
	}
	if u.Player1Move != nil {
		m := *u.Player1Move
		r.Player1Move = &m
	}
	if u.Player2Move != nil {
		m := *u.Player2Move
		r.Player2Move = &m
	}
	if u.ActionLog != nil {
		r.ActionLog = append(datatypes.JSONSlice[string]{}, u.ActionLog...)
	}
	if u.Status != nil {
		r.Status = *u.Status
	}
	if u.Winner != nil {
		r.Winner = *u.Winner
	}
}

// Columns converts the update into the column map gorm's Updates expects.
func (u RoomUpdate) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if u.Player2Address != nil {
		cols["player2_address"] = *u.Player2Address
	}
	if u.Player2Card != nil {
		cols["player2_card"] = jsonColumn(u.Player2Card)
	}
	if u.Player1HP != nil {
		cols["player1_hp"] = *u.Player1HP
	}
	if u.Player2HP != nil {
		cols["player2_hp"] = *u.Player2HP
	}
	if u.Player1Shield != nil {
		cols["player1_shield"] = *u.Player1Shield
	}
	if u.Player2Shield != nil {
		cols["player2_shield"] = *u.Player2Shield
	}
	if u.ClearMoves {
		cols["player1_move"] = nil
		cols["player2_move"] = nil
	}
	if u.Player1Move != nil {
		cols["player1_move"] = jsonColumn(u.Player1Move)
	}
	if u.Player2Move != nil {
		cols["player2_move"] = jsonColumn(u.Player2Move)
	}
	if u.ActionLog != nil {
		cols["action_log"] = datatypes.JSONSlice[string](u.ActionLog)
	}
	if u.Status != nil {
		cols["status"] = string(*u.Status)
	}
	if u.Winner != nil {
		cols["winner"] = string(*u.Winner)
	}
	return cols
}

// jsonColumn encodes a snapshot for a map-based update, which bypasses the
// field serializer.
func jsonColumn(v interface{}) datatypes.JSON {
	b, _ := json.Marshal(v)
	return datatypes.JSON(b)
}
