package models

import "time"

// MatchResult records one settled match. The unique match_id makes it the
// settlement idempotency key: only the first claim for a match may transfer a card.
type MatchResult struct {
	ID            string    `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	MatchID       string    `gorm:"column:match_id;type:uuid;uniqueIndex;not null" json:"match_id"`
	RoomID        string    `gorm:"column:room_id;type:varchar(8);index;not null" json:"room_id"`
	WinnerAddress string    `gorm:"column:winner_address;type:varchar(128);index" json:"winner_address"`
	LoserAddress  string    `gorm:"column:loser_address;type:varchar(128);index" json:"loser_address"`
	CardID        string    `gorm:"column:card_id;type:varchar(64)" json:"card_id"`
	OwnedCardID   string    `gorm:"column:owned_card_id;type:uuid" json:"owned_card_id"`
	Result        string    `gorm:"column:result;type:varchar(16);check:result IN ('win','draw')" json:"result"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (MatchResult) TableName() string { return "match_results" }
