package services

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Engine errors. Validation errors reject before any read; state conflicts
// reject after the locked read but before any write. Either way no mutation
// is persisted for a failed action.
var (
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInsufficientFunds    = errors.New("insufficient coins")
	ErrInsufficientBank     = errors.New("insufficient bank balance")
	ErrBankCapacity         = errors.New("bank capacity exceeded")
	ErrSelfTarget           = errors.New("cannot target yourself")
	ErrBelowMinimum         = errors.New("amount below minimum")
	ErrInvalidBet           = errors.New("bet outside allowed bounds")
	ErrBetExceedsMax        = errors.New("bet exceeds maximum")
	ErrTargetNotViable      = errors.New("target doesn't have enough coins to rob")
	ErrUserNotFound         = errors.New("user not found")
	ErrItemNotFound         = errors.New("item not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrInvalidJob           = errors.New("invalid job type")
	ErrInvalidGuess         = errors.New("guess must be higher or lower")
	ErrOutOfStock           = errors.New("item out of stock")
	ErrBanned               = errors.New("account banned")
	ErrVersionConflict      = errors.New("concurrent update detected")
	ErrQRUnavailable        = errors.New("transfer codes unavailable")
)

// CooldownError carries the remaining wait so the client can render a
// countdown.
type CooldownError struct {
	Action    string
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s cooldown: %s remaining", e.Action, e.Remaining.Round(time.Second))
}

// errorStatus maps engine errors to HTTP status codes.
func errorStatus(err error) int {
	var cd *CooldownError
	switch {
	case errors.As(err, &cd):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrItemNotFound),
		errors.Is(err, ErrQuestionNotFound), errors.Is(err, ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBanned):
		return http.StatusForbidden
	case errors.Is(err, ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, ErrQRUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}
