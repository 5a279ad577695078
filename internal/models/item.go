package models

// UnlimitedStock is the sentinel for items that never sell out.
const UnlimitedStock = -1

// Item types.
const (
	ItemTypeTool        = "tool"
	ItemTypeCollectible = "collectible"
	ItemTypePowerup     = "powerup"
	ItemTypeConsumable  = "consumable"
	ItemTypeLootbox     = "lootbox"
)

// Item rarities, least to most rare.
const (
	RarityCommon    = "common"
	RarityUncommon  = "uncommon"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// PassiveEffects apply while the item is owned (or equipped, for win rate).
type PassiveEffects struct {
	WinRateBoost float64 `json:"winRateBoost"`
	CoinsPerHour int64   `json:"coinsPerHour"`
}

// ActiveEffects describe consumable behaviour. Durations in milliseconds.
type ActiveEffects struct {
	UseCooldown int64  `json:"useCooldown"`
	Duration    int64  `json:"duration"`
	Effect      string `json:"effect"`
}

type ItemEffects struct {
	Passive PassiveEffects `json:"passive"`
	Active  ActiveEffects  `json:"active"`
}

// Item is a catalog entry. Items are created at seed time and never deleted
// while referenced by inventories; only stock and currentPrice change.
type Item struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Price        int64       `json:"price"`
	CurrentPrice int64       `json:"currentPrice"`
	Type         string      `json:"type"`
	Rarity       string      `json:"rarity"`
	Effects      ItemEffects `json:"effects"`
	Stock        int64       `json:"stock"`
}

// HasLuckEffect reports whether the item improves rob/game odds when equipped.
func (i *Item) HasLuckEffect() bool {
	return i.Effects.Passive.WinRateBoost > 0 || i.Effects.Active.Effect == "luck_boost"
}
