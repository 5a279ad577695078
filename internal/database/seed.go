package database

import (
	"database/sql"
	"encoding/json"
	"log"

	"github.com/memeconomy/backend/internal/models"
)

// seedItems is the starting shop catalog. Inserts are idempotent; existing
// rows keep their live stock and price.
var seedItems = []models.Item{
	{
		ID:           "fishing-rod",
		Name:         "Fishing Rod",
		Description:  "Passive +50 coins/hour",
		Price:        5000,
		CurrentPrice: 5000,
		Type:         models.ItemTypeTool,
		Rarity:       models.RarityCommon,
		Effects: models.ItemEffects{
			Passive: models.PassiveEffects{CoinsPerHour: 50},
		},
		Stock: models.UnlimitedStock,
	},
	{
		ID:           "stonks-sticker",
		Name:         "Stonks Sticker",
		Description:  "A sticker of the Stonks guy. Purely decorative.",
		Price:        500,
		CurrentPrice: 500,
		Type:         models.ItemTypeCollectible,
		Rarity:       models.RarityCommon,
		Stock:        models.UnlimitedStock,
	},
	{
		ID:           "luck-potion",
		Name:         "Luck Potion",
		Description:  "+15% win rate for 1 hour",
		Price:        2500,
		CurrentPrice: 2500,
		Type:         models.ItemTypePowerup,
		Rarity:       models.RarityUncommon,
		Effects: models.ItemEffects{
			Active: models.ActiveEffects{UseCooldown: 3600000, Duration: 3600000, Effect: "luck_boost"},
		},
		Stock: 50,
	},
	{
		ID:           "rare-pepe",
		Name:         "Rare Pepe",
		Description:  "Legendary collectible meme",
		Price:        25000,
		CurrentPrice: 25000,
		Type:         models.ItemTypeCollectible,
		Rarity:       models.RarityRare,
		Stock:        100,
	},
	{
		ID:           "dank-box",
		Name:         "Dank Box",
		Description:  "Contains 2-5 random items!",
		Price:        10000,
		CurrentPrice: 10000,
		Type:         models.ItemTypeLootbox,
		Rarity:       models.RarityEpic,
		Effects: models.ItemEffects{
			Active: models.ActiveEffects{Effect: "lootbox"},
		},
		Stock: 20,
	},
	{
		ID:           "golden-doge",
		Name:         "Golden Doge",
		Description:  "+10% win rate while equipped. Much wow.",
		Price:        100000,
		CurrentPrice: 100000,
		Type:         models.ItemTypePowerup,
		Rarity:       models.RarityLegendary,
		Effects: models.ItemEffects{
			Passive: models.PassiveEffects{WinRateBoost: 0.10},
		},
		Stock: 5,
	},
}

// SeedCatalog inserts the starting items, skipping any that already exist.
func SeedCatalog(db *sql.DB) error {
	for _, item := range seedItems {
		effects, err := json.Marshal(item.Effects)
		if err != nil {
			return err
		}
		result, err := db.Exec(`
			INSERT INTO items (id, name, description, price, current_price, type, rarity, effects, stock)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO NOTHING`,
			item.ID, item.Name, item.Description, item.Price, item.CurrentPrice,
			item.Type, item.Rarity, effects, item.Stock)
		if err != nil {
			return err
		}
		if rowsAffected, err := result.RowsAffected(); err == nil && rowsAffected > 0 {
			log.Printf("[DB] Seeded catalog item %s", item.ID)
		}
	}
	return nil
}
