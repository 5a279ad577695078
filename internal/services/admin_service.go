package services

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/memeconomy/backend/internal/models"
)

// AdminService is the operational console: user listing, ban management, and
// coin grants. It calls the same ledger primitives as the engine, with
// elevated trust.
type AdminService struct {
	db          *sql.DB
	ledger      *LedgerStore
	leaderboard *LeaderboardService
	validation  *ValidationHelper
}

func NewAdminService(db *sql.DB, redisClient *redis.Client) *AdminService {
	return &AdminService{
		db:          db,
		ledger:      NewLedgerStore(db),
		leaderboard: NewLeaderboardService(db, redisClient),
		validation:  NewValidationHelper(),
	}
}

// AdminUser is the listing row shown in the admin console.
type AdminUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Coins     int64     `json:"coins"`
	Bank      int64     `json:"bank"`
	Level     int       `json:"level"`
	Banned    bool      `json:"banned"`
	BanReason string    `json:"banReason"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListUsers returns every account, newest first.
func (s *AdminService) ListUsers() ([]AdminUser, error) {
	rows, err := s.db.Query(`
		SELECT id, username, email, coins, bank, level, banned, ban_reason, created_at
		FROM users
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []AdminUser
	for rows.Next() {
		var u AdminUser
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Coins, &u.Bank, &u.Level,
			&u.Banned, &u.BanReason, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetBanned bans or unbans a user. Banned users are dropped from the
// leaderboard; unbanned users are re-ranked on their next balance change.
func (s *AdminService) SetBanned(username string, banned bool, reason string) error {
	result, err := s.db.Exec(`
		UPDATE users SET banned = $1, ban_reason = $2, version = version + 1, updated_at = NOW()
		WHERE username = $3`, banned, reason, username)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}

	if banned {
		s.leaderboard.Remove(username)
	}
	return nil
}

// AdminCommand is a tagged command: the action selects the variant and the
// remaining fields parameterize it. Replaces free-form command-string
// parsing.
type AdminCommand struct {
	Action   string `json:"action" validate:"required,oneof=give giveAll"`
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Username string `json:"username" validate:"omitempty,min=3,max=20"`
}

// CommandResult reports what a command touched.
type CommandResult struct {
	Success  bool   `json:"success"`
	Affected int    `json:"affected"`
	Message  string `json:"message"`
}

// RunCommand executes an admin command against the ledger.
func (s *AdminService) RunCommand(cmd AdminCommand) (*CommandResult, error) {
	switch cmd.Action {
	case "give":
		if cmd.Username == "" {
			return nil, fmt.Errorf("%w: give requires a username", ErrUserNotFound)
		}
		if err := s.grant(cmd.Username, cmd.Amount); err != nil {
			return nil, err
		}
		return &CommandResult{
			Success:  true,
			Affected: 1,
			Message:  fmt.Sprintf("Gave %d coins to %s", cmd.Amount, cmd.Username),
		}, nil

	case "giveAll":
		usernames, err := s.activeUsernames()
		if err != nil {
			return nil, err
		}
		affected := 0
		for _, username := range usernames {
			if err := s.grant(username, cmd.Amount); err != nil {
				log.Printf("[ADMIN] giveAll skipped %s: %v", username, err)
				continue
			}
			affected++
		}
		return &CommandResult{
			Success:  true,
			Affected: affected,
			Message:  fmt.Sprintf("Gave %d coins to %d users", cmd.Amount, affected),
		}, nil

	default:
		return nil, fmt.Errorf("unknown admin command: %s", cmd.Action)
	}
}

func (s *AdminService) activeUsernames() ([]string, error) {
	rows, err := s.db.Query(`SELECT username FROM users WHERE banned = FALSE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, err
		}
		usernames = append(usernames, username)
	}
	return usernames, rows.Err()
}

// grant credits coins through the normal atomic cycle so the grant shows up
// in the recipient's transaction feed.
func (s *AdminService) grant(username string, amount int64) error {
	var netWorth int64
	err := s.ledger.WithUser(username, func(tx *sql.Tx, u *models.User) error {
		u.Coins += amount
		netWorth = u.NetWorth()
		return s.ledger.appendTransactionTx(tx, models.Transaction{
			User:        username,
			Type:        models.TxEarn,
			Amount:      amount,
			Description: fmt.Sprintf("Admin grant: %d coins", amount),
		})
	})
	if err != nil {
		return err
	}
	s.leaderboard.Publish(username, netWorth)
	return nil
}

// HandleListUsers godoc
// @Summary List all users
// @Tags admin
// @Produce json
// @Success 200 {array} AdminUser
// @Router /admin/users [get]
// @Security BearerAuth
func (s *AdminService) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.ListUsers()
	if err != nil {
		log.Printf("[ADMIN] User listing failed: %v", err)
		SendErrorResponse(w, "Failed to list users", http.StatusInternalServerError, nil)
		return
	}
	if users == nil {
		users = []AdminUser{}
	}
	WriteJSONResponse(w, http.StatusOK, users)
}

type banRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=200"`
}

// HandleBan godoc
// @Summary Ban a user
// @Tags admin
// @Accept json
// @Produce json
// @Param username path string true "Username"
// @Param request body banRequest true "Ban reason"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{username}/ban [post]
// @Security BearerAuth
func (s *AdminService) HandleBan(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var req banRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	reason := req.Reason
	if reason == "" {
		reason = "No reason provided"
	}

	if err := s.SetBanned(username, true, reason); err != nil {
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	log.Printf("[ADMIN] Banned %s: %s", username, reason)
	WriteJSONResponse(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleUnban godoc
// @Summary Unban a user
// @Tags admin
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{username}/unban [post]
// @Security BearerAuth
func (s *AdminService) HandleUnban(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	if err := s.SetBanned(username, false, ""); err != nil {
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	log.Printf("[ADMIN] Unbanned %s", username)
	WriteJSONResponse(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleCommand godoc
// @Summary Run an admin command
// @Description Executes a tagged admin command (give, giveAll)
// @Tags admin
// @Accept json
// @Produce json
// @Param request body AdminCommand true "Command"
// @Success 200 {object} CommandResult
// @Failure 400 {object} ErrorResponse
// @Router /admin/command [post]
// @Security BearerAuth
func (s *AdminService) HandleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd AdminCommand
	if err := DecodeJSONBody(w, r, &cmd); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := s.validation.ValidateStruct(cmd); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result, err := s.RunCommand(cmd)
	if err != nil {
		log.Printf("[ADMIN] Command %s failed: %v", cmd.Action, err)
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	log.Printf("[ADMIN] Command %s: %s", cmd.Action, result.Message)
	WriteJSONResponse(w, http.StatusOK, result)
}
