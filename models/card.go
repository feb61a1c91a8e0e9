// models/card.go
package models

type MoveType string

const (
	MoveTypeAttack  MoveType = "attack"
	MoveTypePower   MoveType = "power"
	MoveTypeDefense MoveType = "defense"
)

type CardTier string

const (
	TierCommon    CardTier = "Common"
	TierUncommon  CardTier = "Uncommon"
	TierRare      CardTier = "Rare"
	TierEpic      CardTier = "Epic"
	TierLegendary CardTier = "Legendary"
)

// Move is the wire shape of a single card move. It travels verbatim through
// the room's move slots and is echoed into the battle log.
type Move struct {
	Name        string   `json:"name" yaml:"name"`
	Type        MoveType `json:"type" yaml:"type"`
	Value       int      `json:"value" yaml:"value"`
	Description string   `json:"description" yaml:"description"`
}

// CardDefinition is a catalog entry. Rooms store a copy of it so catalog
// edits never reach an in-progress match.
type CardDefinition struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Image          string   `json:"image" yaml:"image"`
	Type           string   `json:"type" yaml:"type"`
	Tier           CardTier `json:"tier" yaml:"tier"`
	MaxHP          int      `json:"max_hp" yaml:"max_hp"`
	Moves          []Move   `json:"moves" yaml:"moves"`
	Value          int      `json:"value" yaml:"value"`            // trade value in points
	ShopPrice      float64  `json:"shop_price" yaml:"shop_price"`  // MON, 0 = not buyable
	DailyClaimable bool     `json:"daily_claimable" yaml:"daily_claimable"`
}

// FindMove returns the card's move with the given name.
func (c CardDefinition) FindMove(name string) (Move, bool) {
	for _, m := range c.Moves {
		if m.Name == name {
			return m, true
		}
	}
	return Move{}, false
}
