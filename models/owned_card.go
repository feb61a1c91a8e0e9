package models

import "time"

type AcquiredVia string

const (
	AcquiredViaShop       AcquiredVia = "shop"
	AcquiredViaDailyClaim AcquiredVia = "daily_claim"
	AcquiredViaBattleWin  AcquiredVia = "battle_win"
	AcquiredViaStarter    AcquiredVia = "starter"
)

// OwnedCard is one card instance held by a wallet. A battle win moves the
// existing row to the winner, so the ID survives every transfer.
type OwnedCard struct {
	ID           string      `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	CardID       string      `gorm:"column:card_id;type:varchar(64);not null;index" json:"card_id"`
	OwnerAddress string      `gorm:"column:owner_address;type:varchar(128);not null;index" json:"owner_address"`
	AcquiredVia  AcquiredVia `gorm:"column:acquired_via;type:varchar(16);not null" json:"acquired_via"`
	AcquiredAt   time.Time   `gorm:"column:acquired_at;not null;index" json:"acquired_at"`
}

func (OwnedCard) TableName() string { return "player_cards" }
