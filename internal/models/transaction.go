package models

import "time"

// Transaction types. Amount always carries the non-negative magnitude; the
// type implies direction.
const (
	TxEarn     = "earn"
	TxSpend    = "spend"
	TxTransfer = "transfer"
	TxRob      = "rob"
	TxFine     = "fine"
	TxFreemium = "freemium"
)

// Transaction is an immutable append-only record of one settled economic event.
type Transaction struct {
	ID          string    `json:"id"`
	User        string    `json:"user"`
	Type        string    `json:"type"`
	Amount      int64     `json:"amount"`
	TargetUser  string    `json:"targetUser,omitempty"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// Notification types.
const (
	NotifyTrade  = "trade"
	NotifyFriend = "friend"
	NotifyEvent  = "event"
	NotifySystem = "system"
	NotifyRob    = "rob"
)

// Notification is delivered to a counterparty as a side effect of transfers
// and robs. Read state flips false to true exactly once.
type Notification struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	Timestamp time.Time `json:"timestamp"`
}
