package services

import (
	"time"

	"github.com/memeconomy/backend/internal/models"
)

// checkCooldown is the gate applied to every timed action. A zero last
// timestamp means the action has never run. The gate never mutates state: on
// success the caller stamps `now` as part of the same atomic ledger update
// that applies the action's effects, so a passed check can never desync from
// an unapplied effect.
func checkCooldown(action string, last time.Time, cooldown time.Duration, now time.Time) error {
	if last.IsZero() {
		return nil
	}
	elapsed := now.Sub(last)
	if elapsed >= cooldown {
		return nil
	}
	return &CooldownError{Action: action, Remaining: cooldown - elapsed}
}

// gateAction checks the user's cooldown for action and, on success, stamps it.
// Timestamps are monotonically non-decreasing: an earlier `now` never
// overwrites a later stamp.
func (s *EconomyService) gateAction(u *models.User, action string, now time.Time) error {
	if err := checkCooldown(action, u.Cooldowns[action], s.cfg.Cooldowns[action], now); err != nil {
		return err
	}
	if u.Cooldowns == nil {
		u.Cooldowns = map[string]time.Time{}
	}
	if now.After(u.Cooldowns[action]) {
		u.Cooldowns[action] = now
	}
	return nil
}
