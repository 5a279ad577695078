package models

import "time"

// InventoryEntry is a stack of one item in a user's inventory, unique by ItemID.
type InventoryEntry struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
	Equipped bool   `json:"equipped"`
}

// GameStats tracks per-game win/loss counters. Display only, never consulted by
// settlement logic.
type GameStats struct {
	BlackjackWins   int `json:"blackjackWins"`
	BlackjackLosses int `json:"blackjackLosses"`
	SlotsWins       int `json:"slotsWins"`
	SlotsLosses     int `json:"slotsLosses"`
	CoinflipWins    int `json:"coinflipWins"`
	CoinflipLosses  int `json:"coinflipLosses"`
	TriviaWins      int `json:"triviaWins"`
	TriviaLosses    int `json:"triviaLosses"`
	HighlowWins     int `json:"highlowWins"`
	HighlowLosses   int `json:"highlowLosses"`
}

// User is the authoritative ledger row. Coins and Bank are never negative,
// Bank never exceeds BankCapacity, and cooldown timestamps only move forward.
// All mutation happens inside a single locked read-modify-write cycle; the
// Version column backs the optimistic write.
type User struct {
	ID           string           `json:"id"`
	Username     string           `json:"username"`
	Email        string           `json:"email"`
	Coins        int64            `json:"coins"`
	Bank         int64            `json:"bank"`
	BankCapacity int64            `json:"bankCapacity"`
	Level        int              `json:"level"`
	XP           int64            `json:"xp"`
	Inventory    []InventoryEntry `json:"inventory"`
	GameStats    GameStats        `json:"gameStats"`
	// Cooldowns maps an action identifier ("work", "rob", ...) to the time of
	// its last successful invocation. A missing key means never invoked.
	Cooldowns  map[string]time.Time `json:"cooldowns"`
	Banned     bool                 `json:"banned"`
	BanReason  string               `json:"banReason"`
	IsAdmin    bool                 `json:"isAdmin"`
	Version    int                  `json:"-"`
	CreatedAt  time.Time            `json:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt"`
	LastActive time.Time            `json:"lastActive"`
}

// NetWorth is the leaderboard ranking metric.
func (u *User) NetWorth() int64 {
	return u.Coins + u.Bank
}

// FindInventory returns the inventory entry for itemID, or nil.
func (u *User) FindInventory(itemID string) *InventoryEntry {
	for i := range u.Inventory {
		if u.Inventory[i].ItemID == itemID {
			return &u.Inventory[i]
		}
	}
	return nil
}

// AddItem merges quantity into an existing stack or appends a new one.
func (u *User) AddItem(itemID string, quantity int) {
	if entry := u.FindInventory(itemID); entry != nil {
		entry.Quantity += quantity
		return
	}
	u.Inventory = append(u.Inventory, InventoryEntry{ItemID: itemID, Quantity: quantity})
}
