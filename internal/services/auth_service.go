package services

import (
	"context"
	cryptorand "crypto/rand"
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"golang.org/x/crypto/argon2"
)

// AuthService handles registration, login, logout and the account endpoint.
// New accounts start with the welcome bonus already in the wallet.
type AuthService struct {
	db        *sql.DB
	redis     *redis.Client
	economy   *EconomyService
	validator *validator.Validate
}

// RegisterRequest represents the registration request payload
// @Description Registration request structure
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20,username" example:"memequeen"` // Username
	Email    string `json:"email" validate:"required,email" example:"user@example.com"`            // Email address
	Password string `json:"password" validate:"required,min=8" example:"password123"`              // Password
}

// LoginRequest represents the login request payload
// @Description Login request structure
type LoginRequest struct {
	Username string `json:"username" validate:"required" example:"memequeen"`         // Username
	Password string `json:"password" validate:"required,min=8" example:"password123"` // Password
}

// AuthResponse represents the authentication response
// @Description Authentication response structure
type AuthResponse struct {
	Token    string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."` // JWT token
	Username string `json:"username" example:"memequeen"`                            // Username
	Coins    int64  `json:"coins" example:"500"`                                     // Wallet balance
	Bank     int64  `json:"bank" example:"0"`                                        // Bank balance
	Level    int    `json:"level" example:"1"`                                       // Level
	IsAdmin  bool   `json:"isAdmin" example:"false"`                                 // Admin flag
}

// usernamePattern admits letters, digits and underscores.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func NewAuthService(db *sql.DB, redisClient *redis.Client, economy *EconomyService) *AuthService {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return &AuthService{
		db:        db,
		redis:     redisClient,
		economy:   economy,
		validator: v,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Creates an account with the welcome bonus in the wallet
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration request"
// @Success 200 {object} AuthResponse "Registration successful"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 409 {object} ErrorResponse "Username or email already exists"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (s *AuthService) Register(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Registration attempt from IP: %s", r.RemoteAddr)

	var req RegisterRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		log.Printf("[AUTH] Registration failed - invalid request: %v", err)
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		log.Printf("[AUTH] Registration validation failed: %v", err)
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	username := strings.ToLower(req.Username)
	log.Printf("[AUTH] Registration request for username: %s", username)

	hashedPassword, err := hashPassword(req.Password)
	if err != nil {
		log.Printf("[AUTH] Password hashing failed for %s: %v", username, err)
		SendErrorResponse(w, "An Internal Error Occurred", http.StatusInternalServerError, nil)
		return
	}

	welcome := s.economy.cfg.WelcomeCoins
	capacity := s.economy.cfg.DefaultBankCapacity
	userID := uuid.NewString()

	tx, err := s.db.Begin()
	if err != nil {
		log.Printf("[AUTH] Transaction start failed for %s: %v", username, err)
		SendErrorResponse(w, "Failed to create user", http.StatusInternalServerError, nil)
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO users (id, username, email, password, coins, bank, bank_capacity, level, xp,
			inventory, game_stats, cooldowns, banned, ban_reason, is_admin, version)
		VALUES ($1, $2, $3, $4, $5, 0, $6, 1, 0, '[]', '{}', '{}', FALSE, '', FALSE, 1)`,
		userID, username, strings.ToLower(req.Email), hashedPassword, welcome, capacity)
	if err != nil {
		log.Printf("[AUTH] User creation failed for %s: %v", username, err)
		SendErrorResponse(w, "Username or email already exists", http.StatusConflict, nil)
		return
	}

	_, err = tx.Exec(`
		INSERT INTO transactions (id, username, type, amount, target_user, description, created_at)
		VALUES ($1, $2, 'earn', $3, '', $4, NOW())`,
		uuid.NewString(), username, welcome, fmt.Sprintf("Welcome bonus: %d coins", welcome))
	if err != nil {
		log.Printf("[AUTH] Welcome transaction failed for %s: %v", username, err)
		SendErrorResponse(w, "Failed to create user", http.StatusInternalServerError, nil)
		return
	}

	if err = tx.Commit(); err != nil {
		log.Printf("[AUTH] Transaction commit failed for %s: %v", username, err)
		SendErrorResponse(w, "Failed to create user", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[AUTH] User created successfully - ID: %s, Username: %s", userID, username)

	token, err := generateJWT(userID, username, false)
	if err != nil {
		log.Printf("[AUTH] JWT generation failed for %s: %v", username, err)
		SendErrorResponse(w, "Failed to generate token", http.StatusInternalServerError, nil)
		return
	}

	WriteJSONResponse(w, http.StatusOK, AuthResponse{
		Token:    token,
		Username: username,
		Coins:    welcome,
		Bank:     0,
		Level:    1,
	})
}

// Login handles user authentication
// @Summary Login user
// @Description Authenticates with username and password; applies pending bank interest
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} AuthResponse "Login successful"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 403 {object} ErrorResponse "Account banned"
// @Router /auth/login [post]
func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	log.Printf("[AUTH] Login attempt from IP: %s", r.RemoteAddr)

	var req LoginRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		log.Printf("[AUTH] Login failed - invalid request: %v", err)
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		log.Printf("[AUTH] Login validation failed: %v", err)
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	username := strings.ToLower(req.Username)

	var userID, hashedPassword, banReason string
	var banned, isAdmin bool
	err := s.db.QueryRow(`SELECT id, password, banned, ban_reason, is_admin FROM users WHERE username = $1`,
		username).Scan(&userID, &hashedPassword, &banned, &banReason, &isAdmin)
	if err != nil {
		log.Printf("[AUTH] User not found: %s", username)
		SendErrorResponse(w, "Invalid credentials", http.StatusUnauthorized, nil)
		return
	}

	if !verifyPassword(req.Password, hashedPassword) {
		log.Printf("[AUTH] Invalid password for user: %s", username)
		SendErrorResponse(w, "Invalid credentials", http.StatusUnauthorized, nil)
		return
	}

	if banned {
		log.Printf("[AUTH] Banned user login attempt: %s", username)
		SendErrorResponse(w, fmt.Sprintf("Account banned: %s", banReason), http.StatusForbidden, nil)
		return
	}

	// Interest accrues lazily: settle whatever is pending before the session
	// starts.
	if err := s.economy.ApplyBankInterest(username); err != nil {
		log.Printf("[AUTH] Bank interest application failed for %s: %v", username, err)
	}

	u, err := s.economy.ledger.GetUser(username)
	if err != nil {
		log.Printf("[AUTH] Failed to load user %s after login: %v", username, err)
		SendErrorResponse(w, "Failed to load account", http.StatusInternalServerError, nil)
		return
	}

	token, err := generateJWT(userID, username, isAdmin)
	if err != nil {
		log.Printf("[AUTH] JWT generation failed for %s: %v", username, err)
		SendErrorResponse(w, "Failed to generate token", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[AUTH] Login successful for %s", username)
	WriteJSONResponse(w, http.StatusOK, AuthResponse{
		Token:    token,
		Username: username,
		Coins:    u.Coins,
		Bank:     u.Bank,
		Level:    u.Level,
		IsAdmin:  isAdmin,
	})
}

// Logout handles user logout
// @Summary Logout user
// @Description Blacklists the presented token until it expires
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "Logout successful"
// @Router /auth/logout [post]
func (s *AuthService) Logout(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("Authorization")
	if token != "" && len(token) > 7 {
		token = token[7:] // Remove "Bearer " prefix

		if s.redis != nil {
			ctx := context.Background()
			key := fmt.Sprintf("blacklist:%s", token)
			expiry := time.Duration(viper.GetInt("jwt.expiry_hours")) * time.Hour
			if err := s.redis.Set(ctx, key, "1", expiry).Err(); err != nil {
				log.Printf("[AUTH] Failed to blacklist token: %v", err)
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Logout successful"})
}

// GetUserAccount retrieves the authenticated user's full ledger record
// @Summary Get user account details
// @Tags auth
// @Produce json
// @Success 200 {object} models.User "User account details"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /auth/account [get]
func (s *AuthService) GetUserAccount(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	u, err := s.economy.ledger.GetUser(username)
	if err != nil {
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	WriteJSONResponse(w, http.StatusOK, u)
}

func generateJWT(userID, username string, isAdmin bool) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"admin":    isAdmin,
		"exp":      time.Now().Add(time.Duration(viper.GetInt("jwt.expiry_hours")) * time.Hour).Unix(),
	})

	return token.SignedString([]byte(viper.GetString("jwt.secret_key")))
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, viper.GetInt("argon2.salt_length"))
	if _, err := cryptorand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt,
		uint32(viper.GetInt("argon2.time")),
		uint32(viper.GetInt("argon2.memory")),
		uint8(viper.GetInt("argon2.threads")),
		uint32(viper.GetInt("argon2.key_length")))
	return fmt.Sprintf("%s$%s", base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(hash)), nil
}

func verifyPassword(password, hashedPassword string) bool {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}

	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	computedHash := argon2.IDKey([]byte(password), salt,
		uint32(viper.GetInt("argon2.time")),
		uint32(viper.GetInt("argon2.memory")),
		uint8(viper.GetInt("argon2.threads")),
		uint32(viper.GetInt("argon2.key_length")))
	return subtle.ConstantTimeCompare(hash, computedHash) == 1
}
