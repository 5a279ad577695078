package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/memeconomy/backend/internal/models"
)

// LedgerStore owns every read and write against the user ledger. All balance
// mutation flows through WithUser/WithUsers: lock the row(s), validate,
// compute, write under an optimistic version check, commit. Rejected actions
// roll back, so no partial effect ever persists.
type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

const userColumns = `id, username, email, coins, bank, bank_capacity, level, xp, inventory, game_stats, cooldowns, banned, ban_reason, is_admin, version, created_at, last_active`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var inventory, gameStats, cooldowns []byte
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Coins, &u.Bank, &u.BankCapacity,
		&u.Level, &u.XP, &inventory, &gameStats, &cooldowns, &u.Banned, &u.BanReason,
		&u.IsAdmin, &u.Version, &u.CreatedAt, &u.LastActive)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(inventory, &u.Inventory); err != nil {
		return nil, fmt.Errorf("decode inventory for %s: %w", u.Username, err)
	}
	if err := json.Unmarshal(gameStats, &u.GameStats); err != nil {
		return nil, fmt.Errorf("decode game stats for %s: %w", u.Username, err)
	}
	if err := json.Unmarshal(cooldowns, &u.Cooldowns); err != nil {
		return nil, fmt.Errorf("decode cooldowns for %s: %w", u.Username, err)
	}
	return &u, nil
}

func (ls *LedgerStore) lockUserTx(tx *sql.Tx, username string) (*models.User, error) {
	row := tx.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = $1 FOR UPDATE`, username)
	return scanUser(row)
}

// GetUser reads a user without locking. Callers must not mutate balances from
// a snapshot obtained here.
func (ls *LedgerStore) GetUser(username string) (*models.User, error) {
	row := ls.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

func (ls *LedgerStore) saveUserTx(tx *sql.Tx, u *models.User) error {
	inventory, err := json.Marshal(u.Inventory)
	if err != nil {
		return err
	}
	gameStats, err := json.Marshal(u.GameStats)
	if err != nil {
		return err
	}
	cooldowns, err := json.Marshal(u.Cooldowns)
	if err != nil {
		return err
	}

	result, err := tx.Exec(`
		UPDATE users
		SET coins = $1, bank = $2, level = $3, xp = $4, inventory = $5,
			game_stats = $6, cooldowns = $7, banned = $8, ban_reason = $9,
			version = version + 1, updated_at = NOW(), last_active = NOW()
		WHERE id = $10 AND version = $11`,
		u.Coins, u.Bank, u.Level, u.XP, inventory, gameStats, cooldowns,
		u.Banned, u.BanReason, u.ID, u.Version)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: user %s", ErrVersionConflict, u.Username)
	}
	return nil
}

// WithUser runs fn inside one atomic ledger cycle for a single user. fn may
// mutate u and append transactions/notifications on the same tx; everything
// commits or nothing does. Banned users are rejected before fn runs.
func (ls *LedgerStore) WithUser(username string, fn func(tx *sql.Tx, u *models.User) error) error {
	tx, err := ls.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	u, err := ls.lockUserTx(tx, username)
	if err != nil {
		return err
	}
	if u.Banned {
		return fmt.Errorf("%w: %s", ErrBanned, u.BanReason)
	}

	if err := fn(tx, u); err != nil {
		return err
	}

	if err := ls.saveUserTx(tx, u); err != nil {
		return err
	}
	return tx.Commit()
}

// WithUsers runs fn against two locked users. Rows are locked in ascending
// username order regardless of role, so two concurrent transfers between the
// same pair can never deadlock.
func (ls *LedgerStore) WithUsers(usernameA, usernameB string, fn func(tx *sql.Tx, a, b *models.User) error) error {
	tx, err := ls.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	firstLock, secondLock := usernameA, usernameB
	if firstLock > secondLock {
		firstLock, secondLock = secondLock, firstLock
	}

	first, err := ls.lockUserTx(tx, firstLock)
	if err != nil {
		return err
	}
	second, err := ls.lockUserTx(tx, secondLock)
	if err != nil {
		return err
	}

	a, b := first, second
	if firstLock != usernameA {
		a, b = second, first
	}
	if a.Banned {
		return fmt.Errorf("%w: %s", ErrBanned, a.BanReason)
	}

	if err := fn(tx, a, b); err != nil {
		return err
	}

	if err := ls.saveUserTx(tx, a); err != nil {
		return err
	}
	if err := ls.saveUserTx(tx, b); err != nil {
		return err
	}
	return tx.Commit()
}

// appendTransactionTx writes one immutable transaction log entry.
func (ls *LedgerStore) appendTransactionTx(tx *sql.Tx, t models.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}
	_, err := tx.Exec(`
		INSERT INTO transactions (id, username, type, amount, target_user, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.User, t.Type, t.Amount, t.TargetUser, t.Description, t.Timestamp)
	return err
}

// appendNotificationTx writes one counterparty notification.
func (ls *LedgerStore) appendNotificationTx(tx *sql.Tx, n models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}
	_, err := tx.Exec(`
		INSERT INTO notifications (id, username, message, type, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.User, n.Message, n.Type, n.Read, n.Timestamp)
	return err
}
