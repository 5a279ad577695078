package services

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/memeconomy/backend/internal/models"
)

// UserService serves the read-side surfaces: profile, activity feed, and
// notifications.
type UserService struct {
	db     *sql.DB
	ledger *LedgerStore
}

func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db, ledger: NewLedgerStore(db)}
}

// Transactions returns the user's most recent ledger activity.
func (s *UserService) Transactions(username string, limit int) ([]models.Transaction, error) {
	rows, err := s.db.Query(`
		SELECT id, username, type, amount, target_user, description, created_at
		FROM transactions
		WHERE username = $1
		ORDER BY created_at DESC
		LIMIT $2`, username, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.User, &t.Type, &t.Amount, &t.TargetUser, &t.Description, &t.Timestamp); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// Notifications returns the user's most recent notifications, unread first.
func (s *UserService) Notifications(username string) ([]models.Notification, error) {
	rows, err := s.db.Query(`
		SELECT id, username, message, type, read, created_at
		FROM notifications
		WHERE username = $1
		ORDER BY read ASC, created_at DESC
		LIMIT 50`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.User, &n.Message, &n.Type, &n.Read, &n.Timestamp); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead marks one notification as read. The recipient check is
// part of the UPDATE so users cannot touch each other's notifications.
func (s *UserService) MarkNotificationRead(username, id string) error {
	result, err := s.db.Exec(`
		UPDATE notifications SET read = TRUE
		WHERE id = $1 AND username = $2`, id, username)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotificationNotFound, id)
	}
	return nil
}

// HandleProfile godoc
// @Summary Get own profile
// @Tags user
// @Produce json
// @Success 200 {object} models.User
// @Router /user/profile [get]
// @Security BearerAuth
func (s *UserService) HandleProfile(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	u, err := s.ledger.GetUser(username)
	if err != nil {
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	WriteJSONResponse(w, http.StatusOK, u)
}

// HandleTransactions godoc
// @Summary Get own transaction feed
// @Tags user
// @Produce json
// @Param limit query int false "Number of entries (default 20, max 100)"
// @Success 200 {array} models.Transaction
// @Router /user/transactions [get]
// @Security BearerAuth
func (s *UserService) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			SendErrorResponse(w, "Invalid limit", http.StatusBadRequest, nil)
			return
		}
		if parsed > 100 {
			parsed = 100
		}
		limit = parsed
	}

	transactions, err := s.Transactions(username, limit)
	if err != nil {
		log.Printf("[USER] Transaction feed failed for %s: %v", username, err)
		SendErrorResponse(w, "Failed to load transactions", http.StatusInternalServerError, nil)
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	WriteJSONResponse(w, http.StatusOK, transactions)
}

// HandleNotifications godoc
// @Summary Get own notifications
// @Tags user
// @Produce json
// @Success 200 {array} models.Notification
// @Router /user/notifications [get]
// @Security BearerAuth
func (s *UserService) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	notifications, err := s.Notifications(username)
	if err != nil {
		log.Printf("[USER] Notification lookup failed for %s: %v", username, err)
		SendErrorResponse(w, "Failed to load notifications", http.StatusInternalServerError, nil)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	WriteJSONResponse(w, http.StatusOK, notifications)
}

// HandleMarkNotificationRead godoc
// @Summary Mark a notification as read
// @Tags user
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} ErrorResponse
// @Router /user/notifications/{id}/read [post]
// @Security BearerAuth
func (s *UserService) HandleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		SendErrorResponse(w, "Notification ID required", http.StatusBadRequest, nil)
		return
	}

	if err := s.MarkNotificationRead(username, id); err != nil {
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	WriteJSONResponse(w, http.StatusOK, map[string]bool{"success": true})
}
