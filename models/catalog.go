package models

import "github.com/gosimple/slug"

// TierConfig holds the per-tier stat multipliers shown in the collection.
type TierConfig struct {
	HPMultiplier    float64
	ValueMultiplier int
	Badge           string
}

var TierConfigs = map[CardTier]TierConfig{
	TierCommon:    {HPMultiplier: 1.0, ValueMultiplier: 1, Badge: "⭐"},
	TierUncommon:  {HPMultiplier: 1.15, ValueMultiplier: 2, Badge: "⭐⭐"},
	TierRare:      {HPMultiplier: 1.3, ValueMultiplier: 5, Badge: "⭐⭐⭐"},
	TierEpic:      {HPMultiplier: 1.5, ValueMultiplier: 10, Badge: "💎"},
	TierLegendary: {HPMultiplier: 1.8, ValueMultiplier: 25, Badge: "👑"},
}

// StarterCardID is granted to wallets that own nothing yet.
const StarterCardID = "pikachu"

func catalogCard(name, kind string, tier CardTier, maxHP int, moves []Move, value int, price float64, daily bool) CardDefinition {
	id := slug.Make(name)
	return CardDefinition{
		ID:             id,
		Name:           name,
		Image:          "/images/" + id + ".png",
		Type:           kind,
		Tier:           tier,
		MaxHP:          maxHP,
		Moves:          moves,
		Value:          value,
		ShopPrice:      price,
		DailyClaimable: daily,
	}
}

// DefaultCatalog is the built-in card catalog. A YAML file can replace it at boot.
var DefaultCatalog = []CardDefinition{
	catalogCard("Pikachu", "Electric", TierCommon, 160, []Move{
		{Name: "Thunder Shock", Type: MoveTypeAttack, Value: 30, Description: "A basic electric jolt."},
		{Name: "Quick Attack", Type: MoveTypeAttack, Value: 25, Description: "Strikes fast."},
		{Name: "Double Team", Type: MoveTypeDefense, Value: 15, Description: "Raises evasion."},
	}, 100, 0, true),
	catalogCard("Venusaur", "Grass / Poison", TierUncommon, 220, []Move{
		{Name: "Vine Whip", Type: MoveTypeAttack, Value: 25, Description: "Lashes with vines."},
		{Name: "Solar Beam", Type: MoveTypePower, Value: 60, Description: "Harnesses sunlight."},
		{Name: "Synthesis", Type: MoveTypeDefense, Value: 40, Description: "Recovers HP using sunlight."},
	}, 200, 0.05, true),
	catalogCard("Blastoise", "Water", TierRare, 260, []Move{
		{Name: "Water Gun", Type: MoveTypeAttack, Value: 30, Description: "A stream of water."},
		{Name: "Hydro Pump", Type: MoveTypePower, Value: 65, Description: "Fires a massive water blast."},
		{Name: "Shell Smash", Type: MoveTypeDefense, Value: 30, Description: "Raises shield power."},
	}, 500, 0.08, false),
	catalogCard("Charizard", "Fire / Flying", TierEpic, 300, []Move{
		{Name: "Flamethrower", Type: MoveTypeAttack, Value: 40, Description: "A scorching flame attack."},
		{Name: "Fire Blast", Type: MoveTypePower, Value: 75, Description: "An intense blast of fire."},
		{Name: "Smokescreen", Type: MoveTypeDefense, Value: 20, Description: "Lowers accuracy."},
	}, 1000, 0.1, false),
	catalogCard("Mewtwo", "Psychic", TierLegendary, 360, []Move{
		{Name: "Psychic", Type: MoveTypeAttack, Value: 50, Description: "A powerful psychic wave."},
		{Name: "Shadow Ball", Type: MoveTypePower, Value: 85, Description: "Hurls a shadowy blob."},
		{Name: "Barrier", Type: MoveTypeDefense, Value: 35, Description: "Raises an unbreakable wall."},
	}, 2500, 0.15, false),
	catalogCard("Mew", "Psychic", TierLegendary, 340, []Move{
		{Name: "Ancient Power", Type: MoveTypeAttack, Value: 45, Description: "A prehistoric energy blast."},
		{Name: "Aura Sphere", Type: MoveTypePower, Value: 80, Description: "Focused life energy."},
		{Name: "Transform", Type: MoveTypeDefense, Value: 30, Description: "Copies opponent abilities."},
	}, 2500, 0.15, false),
}
