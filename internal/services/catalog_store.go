package services

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/memeconomy/backend/internal/models"
)

// CatalogStore reads the item catalog. The catalog is seeded at startup and
// changes rarely; only stock moves under load.
type CatalogStore struct {
	db *sql.DB
}

func NewCatalogStore(db *sql.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

const itemColumns = `id, name, description, price, current_price, type, rarity, effects, stock`

func scanItem(scanner interface{ Scan(...any) error }) (*models.Item, error) {
	var item models.Item
	var effects []byte
	err := scanner.Scan(&item.ID, &item.Name, &item.Description, &item.Price,
		&item.CurrentPrice, &item.Type, &item.Rarity, &effects, &item.Stock)
	if err == sql.ErrNoRows {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(effects, &item.Effects); err != nil {
		return nil, fmt.Errorf("decode effects for %s: %w", item.ID, err)
	}
	return &item, nil
}

func (cs *CatalogStore) GetItem(id string) (*models.Item, error) {
	row := cs.db.QueryRow(`SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
	return scanItem(row)
}

func (cs *CatalogStore) AllItems() ([]models.Item, error) {
	rows, err := cs.db.Query(`SELECT ` + itemColumns + ` FROM items ORDER BY price ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ItemsByRarity returns catalog entries of one rarity tier, used for drop
// rolls.
func (cs *CatalogStore) ItemsByRarity(rarity string) ([]models.Item, error) {
	rows, err := cs.db.Query(`SELECT `+itemColumns+` FROM items WHERE rarity = $1`, rarity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// decrementStockTx reserves qty units of a finite-stock item inside the
// caller's transaction. Unlimited stock always succeeds.
func (cs *CatalogStore) decrementStockTx(tx *sql.Tx, id string, qty int64) error {
	result, err := tx.Exec(`
		UPDATE items SET stock = stock - $1
		WHERE id = $2 AND stock >= $1`, qty, id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected > 0 {
		return nil
	}

	// Nothing updated: the item is either unlimited, missing, or sold out.
	var stock int64
	err = tx.QueryRow(`SELECT stock FROM items WHERE id = $1`, id).Scan(&stock)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if err != nil {
		return err
	}
	if stock == models.UnlimitedStock {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrOutOfStock, id)
}
