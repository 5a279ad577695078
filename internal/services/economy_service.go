package services

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/memeconomy/backend/internal/config"
	"github.com/memeconomy/backend/internal/models"
)

// EconomyService implements the money-movement primitives (deposit, withdraw,
// transfer, rob) and the earning-action catalog. Every operation runs as one
// atomic ledger cycle: lock, gate, validate, compute, mutate, log, commit.
type EconomyService struct {
	ledger      *LedgerStore
	catalog     *CatalogStore
	leaderboard *LeaderboardService
	cfg         *config.EconomyConfig
	rng         Rand
	validation  *ValidationHelper
	now         func() time.Time
}

func NewEconomyService(db *sql.DB, redisClient *redis.Client, cfg *config.EconomyConfig) *EconomyService {
	return &EconomyService{
		ledger:      NewLedgerStore(db),
		catalog:     NewCatalogStore(db),
		leaderboard: NewLeaderboardService(db, redisClient),
		cfg:         cfg,
		rng:         NewSecureRand(),
		validation:  NewValidationHelper(),
		now:         time.Now,
	}
}

// addXP applies an XP gain with level rollover: each level requires
// level * 1000 XP, and surplus carries into the next level.
func addXP(u *models.User, gain int64) {
	u.XP += gain
	for u.XP >= int64(u.Level)*1000 {
		u.XP -= int64(u.Level) * 1000
		u.Level++
	}
}

// feeOf computes floor(amount * rate).
func feeOf(amount int64, rate float64) int64 {
	return int64(float64(amount) * rate)
}

// BankOpResult is returned by deposit and withdraw.
type BankOpResult struct {
	Success  bool  `json:"success"`
	NewCoins int64 `json:"newCoins"`
	NewBank  int64 `json:"newBank"`
	Fee      int64 `json:"fee,omitempty"`
}

// TransferResult is returned by transfer.
type TransferResult struct {
	Success    bool  `json:"success"`
	Sent       int64 `json:"sent"`
	Fee        int64 `json:"fee"`
	NewBalance int64 `json:"newBalance"`
}

// RobResult is returned by rob attempts, successful or not.
type RobResult struct {
	Success    bool   `json:"success"`
	Stolen     int64  `json:"stolen,omitempty"`
	Lost       int64  `json:"lost,omitempty"`
	NewBalance int64  `json:"newBalance"`
	Message    string `json:"message"`
}

// ActionResult is the shared payload for earning actions.
type ActionResult struct {
	Success    bool         `json:"success"`
	Coins      int64        `json:"coins"`
	XP         int64        `json:"xp,omitempty"`
	NewBalance int64        `json:"newBalance"`
	NewXP      int64        `json:"newXP,omitempty"`
	Level      int          `json:"level,omitempty"`
	Job        string       `json:"job,omitempty"`
	Location   string       `json:"location,omitempty"`
	BonusItem  *models.Item `json:"bonusItem,omitempty"`
	Message    string       `json:"message,omitempty"`
}

// Deposit moves coins from wallet to bank, bounded by bank capacity.
func (s *EconomyService) Deposit(username string, amount int64) (*BankOpResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var result *BankOpResult
	err := s.ledger.WithUser(username, func(tx *sql.Tx, u *models.User) error {
		if u.Coins < amount {
			return ErrInsufficientFunds
		}
		if u.Bank+amount > u.BankCapacity {
			return ErrBankCapacity
		}
		u.Coins -= amount
		u.Bank += amount

		if err := s.ledger.appendTransactionTx(tx, models.Transaction{
			User:        username,
			Type:        models.TxTransfer,
			Amount:      amount,
			Description: fmt.Sprintf("Deposited %d coins to bank", amount),
		}); err != nil {
			return err
		}

		result = &BankOpResult{Success: true, NewCoins: u.Coins, NewBank: u.Bank}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Withdraw moves coins from bank to wallet. The 1% fee is burned, not
// credited anywhere.
func (s *EconomyService) Withdraw(username string, amount int64) (*BankOpResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var result *BankOpResult
	var netWorth int64
	err := s.ledger.WithUser(username, func(tx *sql.Tx, u *models.User) error {
		if u.Bank < amount {
			return ErrInsufficientBank
		}
		fee := feeOf(amount, s.cfg.WithdrawFeeRate)
		u.Bank -= amount
		u.Coins += amount - fee

		if err := s.ledger.appendTransactionTx(tx, models.Transaction{
			User:        username,
			Type:        models.TxTransfer,
			Amount:      amount - fee,
			Description: fmt.Sprintf("Withdrew %d coins from bank (%d fee)", amount, fee),
		}); err != nil {
			return err
		}

		result = &BankOpResult{Success: true, NewCoins: u.Coins, NewBank: u.Bank, Fee: fee}
		netWorth = u.NetWorth()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.leaderboard.Publish(username, netWorth)
	return result, nil
}

// Transfer sends coins to another user. Transfers above the fee threshold pay
// a 5% fee on top of the amount; the recipient always receives the full
// amount and the fee is burned.
func (s *EconomyService) Transfer(username, targetUsername string, amount int64, message string) (*TransferResult, error) {
	if username == targetUsername {
		return nil, ErrSelfTarget
	}
	if amount < s.cfg.TransferMinimum {
		return nil, fmt.Errorf("%w: minimum transfer is %d coins", ErrBelowMinimum, s.cfg.TransferMinimum)
	}

	var result *TransferResult
	var senderWorth, recipientWorth int64
	var recipientBanned bool
	err := s.ledger.WithUsers(username, targetUsername, func(tx *sql.Tx, sender, recipient *models.User) error {
		var fee int64
		if amount > s.cfg.TransferFeeThreshold {
			fee = feeOf(amount, s.cfg.TransferFeeRate)
		}
		totalCost := amount + fee
		if sender.Coins < totalCost {
			return ErrInsufficientFunds
		}
		sender.Coins -= totalCost
		recipient.Coins += amount

		feeNote := ""
		if fee > 0 {
			feeNote = fmt.Sprintf(" (%d fee)", fee)
		}
		if err := s.ledger.appendTransactionTx(tx, models.Transaction{
			User:        username,
			Type:        models.TxTransfer,
			Amount:      totalCost,
			TargetUser:  targetUsername,
			Description: fmt.Sprintf("Sent %d coins to %s%s", amount, targetUsername, feeNote),
		}); err != nil {
			return err
		}
		if err := s.ledger.appendTransactionTx(tx, models.Transaction{
			User:        targetUsername,
			Type:        models.TxEarn,
			Amount:      amount,
			TargetUser:  username,
			Description: fmt.Sprintf("Received %d coins from %s", amount, username),
		}); err != nil {
			return err
		}

		note := fmt.Sprintf("%s sent you %d coins", username, amount)
		if message != "" {
			note += ": " + message
		}
		if err := s.ledger.appendNotificationTx(tx, models.Notification{
			User:    targetUsername,
			Message: note,
			Type:    models.NotifySystem,
		}); err != nil {
			return err
		}

		result = &TransferResult{Success: true, Sent: amount, Fee: fee, NewBalance: sender.Coins}
		senderWorth = sender.NetWorth()
		recipientWorth = recipient.NetWorth()
		recipientBanned = recipient.Banned
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.leaderboard.Publish(username, senderWorth)
	// Banned accounts stay off the ranking even when they receive coins.
	if !recipientBanned {
		s.leaderboard.Publish(targetUsername, recipientWorth)
	}
	return result, nil
}

// Rob attempts to steal from another user's wallet. Success odds scale with
// the level gap and an equipped luck item; a failed attempt costs the bet
// plus a 50% fine, never driving the wallet negative. The victim is notified
// either way.
func (s *EconomyService) Rob(username, targetUsername string, betAmount int64) (*RobResult, error) {
	if username == targetUsername {
		return nil, ErrSelfTarget
	}
	if betAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	luckItems, err := s.luckItemIDs()
	if err != nil {
		return nil, err
	}

	var result *RobResult
	var attackerWorth, victimWorth int64
	var victimBanned bool
	err = s.ledger.WithUsers(username, targetUsername, func(tx *sql.Tx, attacker, victim *models.User) error {
		if err := s.gateAction(attacker, "rob", s.now()); err != nil {
			return err
		}

		maxBet := feeOf(attacker.Coins, s.cfg.RobMaxBetRate)
		if betAmount > maxBet {
			return fmt.Errorf("%w: maximum bet is %d (20%% of your coins)", ErrBetExceedsMax, maxBet)
		}
		if attacker.Coins < betAmount {
			return ErrInsufficientFunds
		}
		if float64(victim.Coins) < float64(betAmount)*0.5 {
			return ErrTargetNotViable
		}

		chance := 0.30 + 0.05*float64(attacker.Level-victim.Level)
		for _, entry := range attacker.Inventory {
			if entry.Equipped && luckItems[entry.ItemID] {
				chance += 0.15
				break
			}
		}
		if chance < 0.10 {
			chance = 0.10
		}
		if chance > 0.80 {
			chance = 0.80
		}

		if s.rng.Float64() < chance {
			stolen := int64(float64(betAmount) * (0.20 + s.rng.Float64()*0.30))
			if stolen > victim.Coins {
				stolen = victim.Coins
			}
			attacker.Coins += stolen
			victim.Coins -= stolen

			if err := s.ledger.appendTransactionTx(tx, models.Transaction{
				User:        username,
				Type:        models.TxRob,
				Amount:      stolen,
				TargetUser:  targetUsername,
				Description: fmt.Sprintf("Successfully robbed %d coins from %s", stolen, targetUsername),
			}); err != nil {
				return err
			}
			if err := s.ledger.appendTransactionTx(tx, models.Transaction{
				User:        targetUsername,
				Type:        models.TxFine,
				Amount:      stolen,
				TargetUser:  username,
				Description: fmt.Sprintf("Robbed by %s for %d coins", username, stolen),
			}); err != nil {
				return err
			}
			if err := s.ledger.appendNotificationTx(tx, models.Notification{
				User:    targetUsername,
				Message: fmt.Sprintf("%s robbed %d coins from you!", username, stolen),
				Type:    models.NotifyRob,
			}); err != nil {
				return err
			}

			result = &RobResult{
				Success:    true,
				Stolen:     stolen,
				NewBalance: attacker.Coins,
				Message:    fmt.Sprintf("Successfully robbed %d coins!", stolen),
			}
		} else {
			fine := feeOf(betAmount, 0.5)
			totalLoss := betAmount + fine
			if totalLoss > attacker.Coins {
				totalLoss = attacker.Coins
			}
			attacker.Coins -= totalLoss

			if err := s.ledger.appendTransactionTx(tx, models.Transaction{
				User:        username,
				Type:        models.TxFine,
				Amount:      totalLoss,
				TargetUser:  targetUsername,
				Description: fmt.Sprintf("Failed rob attempt on %s - lost %d coins", targetUsername, totalLoss),
			}); err != nil {
				return err
			}
			if err := s.ledger.appendNotificationTx(tx, models.Notification{
				User:    targetUsername,
				Message: fmt.Sprintf("%s tried to rob you but failed! They lost %d coins", username, totalLoss),
				Type:    models.NotifyRob,
			}); err != nil {
				return err
			}

			result = &RobResult{
				Success:    false,
				Lost:       totalLoss,
				NewBalance: attacker.Coins,
				Message:    fmt.Sprintf("Rob failed! Lost %d coins (%d bet + %d fine)", totalLoss, betAmount, fine),
			}
		}
		attackerWorth = attacker.NetWorth()
		victimWorth = victim.NetWorth()
		victimBanned = victim.Banned
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.leaderboard.Publish(username, attackerWorth)
	if !victimBanned {
		s.leaderboard.Publish(targetUsername, victimWorth)
	}
	return result, nil
}

// luckItemIDs returns the catalog IDs whose effects improve rob odds.
func (s *EconomyService) luckItemIDs() (map[string]bool, error) {
	items, err := s.catalog.AllItems()
	if err != nil {
		return nil, err
	}
	luck := make(map[string]bool)
	for i := range items {
		if items[i].HasLuckEffect() {
			luck[items[i].ID] = true
		}
	}
	return luck, nil
}

// Daily claims the 24h reward: 200-1000 coins, 50 XP, and a 5% chance of a
// rare item.
func (s *EconomyService) Daily(username string) (*ActionResult, error) {
	var bonusItem *models.Item
	if s.rng.Float64() < 0.05 {
		rares, err := s.catalog.ItemsByRarity(models.RarityRare)
		if err != nil {
			return nil, err
		}
		if len(rares) > 0 {
			bonusItem = &rares[s.rng.Intn(len(rares))]
		}
	}

	var result *ActionResult
	var netWorth int64
	err := s.ledger.WithUser(username, func(tx *sql.Tx, u *models.User) error {
		if err := s.gateAction(u, "daily", s.now()); err != nil {
			return err
		}

		amount := randRange(s.rng, 200, 1000)
		const xpGain = 50
		u.Coins += amount
		addXP(u, xpGain)

		desc := fmt.Sprintf("Daily reward: %d coins, %d XP", amount, xpGain)
		if bonusItem != nil {
			u.AddItem(bonusItem.ID, 1)
			desc += " + " + bonusItem.Name
		}
		if err := s.ledger.appendTransactionTx(tx, models.Transaction{
			User:        username,
			Type:        models.TxEarn,
			Amount:      amount,
			Description: desc,
		}); err != nil {
			return err
		}

		result = &ActionResult{
			Success:    true,
			Coins:      amount,
			XP:         xpGain,
			BonusItem:  bonusItem,
			NewBalance: u.Coins,
			NewXP:      u.XP,
			Level:      u.Level,
		}
		netWorth = u.NetWorth()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.leaderboard.Publish(username, netWorth)
	return result, nil
}

type workJob struct {
	Name string
	Min  int64
	Max  int64
}

var workJobs = map[string]workJob{
	"meme-farmer": {Name: "Meme Farmer", Min: 100, Max: 300},
	"doge-miner":  {Name: "Doge Miner", Min: 50, Max: 500},
	"pepe-trader": {Name: "Pepe Trader", Min: 150, Max: 400},
}

// Work earns a payout from one of the named jobs.
func (s *EconomyService) Work(username, jobType string) (*ActionResult, error) {
	job, ok := workJobs[jobType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidJob, jobType)
	}

	var result *ActionResult
	var netWorth int64
	err := s.ledger.WithUser(username, func(tx *sql.Tx, u *models.User) error {
		if err := s.gateAction(u, "work", s.now()); err != nil {
			return err
		}

		amount := randRange(s.rng, job.Min, job.Max)
		const xpGain = 5
		u.Coins += amount
		addXP(u, xpGain)

		if err := s.ledger.appendTransactionTx(tx, models.Transaction{
			User:        username,
			Type:        models.TxEarn,
			Amount:      amount,
			Description: fmt.Sprintf("Work as %s: %d coins, %d XP", job.Name, amount, xpGain),
		}); err != nil {
			return err
		}

		result = &ActionResult{
			Success:    true,
			Job:        job.Name,
			Coins:      amount,
			XP:         xpGain,
			NewBalance: u.Coins,
			NewXP:      u.XP,
			Level:      u.Level,
		}
		netWorth = u.NetWorth()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.leaderboard.Publish(username, netWorth)
	return result, nil
}

var begFailMessages = []string{
	"A wild Elon appears and ignores you!",
	"The meme gods are not pleased today",
	"Someone threw a banana at you instead of coins",
	"You got distracted by a cute doggo and forgot to beg",
}

// Beg succeeds 70% of the time for 0-150 coins. A failed beg still consumes
// the cooldown but moves no money and writes no transaction.
func (s *EconomyService) Beg(username string) (*ActionResult, error) {
	var result *ActionResult
	var netWorth int64
	err := s.ledger.WithUser(username, func(tx *sql.Tx, u *models.User) error {
		if err := s.gateAction(u, "beg", s.now()); err != nil {
			return err
		}

		if s.rng.Float64() < 0.3 {
			result = &ActionResult{
				Success:    false,
				Coins:      0,
				NewBalance: u.Coins,
				Message:    begFailMessages[s.rng.Intn(len(begFailMessages))],
			}
			netWorth = u.NetWorth()
			return nil
		}

		amount := randRange(s.rng, 0, 150)
		const xpGain = 2
		u.Coins += amount
		addXP(u, xpGain)

		if err := s.ledger.appendTransactionTx(tx, models.Transaction{
			User:        username,
			Type:        models.TxEarn,
			Amount:      amount,
			Description: fmt.Sprintf("Begging: %d coins, %d XP", amount, xpGain),
		}); err != nil {
			return err
		}

		result = &ActionResult{
			Success:    true,
			Coins:      amount,
			XP:         xpGain,
			NewBalance: u.Coins,
			NewXP:      u.XP,
			Level:      u.Level,
			Message:    fmt.Sprintf("Someone took pity on you and gave %d coins!", amount),
		}
		netWorth = u.NetWorth()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.leaderboard.Publish(username, netWorth)
	return result, nil
}

var searchLocations = []string{
	"under the couch",
	"in the meme vault",
	"behind a dumpster",
	"in Pepe's pond",
	"under a rock",
	"in your mom's purse",
}

// Search finds 10-100 coins at a random location, with a 10% chance of a
// common item.
func (s *EconomyService) Search(username string) (*ActionResult, error) {
	var foundItem *models.Item
	if s.rng.Float64() < 0.1 {
		commons, err := s.catalog.ItemsByRarity(models.RarityCommon)
		if err != nil {
			return nil, err
		}
		if len(commons) > 0 {
			foundItem = &commons[s.rng.Intn(len(commons))]
		}
	}

	var result *ActionResult
	var netWorth int64
	err := s.ledger.WithUser(username, func(tx *sql.Tx, u *models.User) error {
		if err := s.gateAction(u, "search", s.now()); err != nil {
			return err
		}

		location := searchLocations[s.rng.Intn(len(searchLocations))]
		amount := randRange(s.rng, 10, 100)
		const xpGain = 2
		u.Coins += amount
		addXP(u, xpGain)

		desc := fmt.Sprintf("Searched %s: %d coins", location, amount)
		message := fmt.Sprintf("You searched %s and found %d coins!", location, amount)
		if foundItem != nil {
			u.AddItem(foundItem.ID, 1)
			desc += " + " + foundItem.Name
			message += fmt.Sprintf(" You also found a %s!", foundItem.Name)
		}
		if err := s.ledger.appendTransactionTx(tx, models.Transaction{
			User:        username,
			Type:        models.TxEarn,
			Amount:      amount,
			Description: desc,
		}); err != nil {
			return err
		}

		result = &ActionResult{
			Success:    true,
			Location:   location,
			Coins:      amount,
			XP:         xpGain,
			BonusItem:  foundItem,
			NewBalance: u.Coins,
			NewXP:      u.XP,
			Level:      u.Level,
			Message:    message,
		}
		netWorth = u.NetWorth()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.leaderboard.Publish(username, netWorth)
	return result, nil
}

// ApplyBankInterest credits 0.5% daily interest for up to 7 days of
// inactivity, bounded by bank capacity. Called on login.
func (s *EconomyService) ApplyBankInterest(username string) error {
	return s.ledger.WithUser(username, func(tx *sql.Tx, u *models.User) error {
		if u.Bank <= 0 {
			return nil
		}
		days := int(s.now().Sub(u.LastActive).Hours() / 24)
		if days < 1 {
			return nil
		}
		if days > s.cfg.InterestMaxDays {
			days = s.cfg.InterestMaxDays
		}
		interest := int64(float64(u.Bank) * s.cfg.InterestDailyRate * float64(days))
		if u.Bank+interest > u.BankCapacity {
			interest = u.BankCapacity - u.Bank
		}
		if interest <= 0 {
			return nil
		}
		u.Bank += interest

		return s.ledger.appendTransactionTx(tx, models.Transaction{
			User:        username,
			Type:        models.TxEarn,
			Amount:      interest,
			Description: fmt.Sprintf("Bank interest: %d coins (%d days)", interest, days),
		})
	})
}

type amountRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// HandleDeposit godoc
// @Summary Deposit coins to bank
// @Description Moves coins from wallet to bank, bounded by bank capacity
// @Tags economy
// @Accept json
// @Produce json
// @Param request body amountRequest true "Deposit amount"
// @Success 200 {object} BankOpResult
// @Failure 400 {object} ErrorResponse
// @Router /economy/deposit [post]
// @Security BearerAuth
func (s *EconomyService) HandleDeposit(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req amountRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := s.validation.ValidateStruct(req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result, err := s.Deposit(username, req.Amount)
	if err != nil {
		log.Printf("[ECONOMY] Deposit failed for %s: %v", username, err)
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	WriteJSONResponse(w, http.StatusOK, result)
}

// HandleWithdraw godoc
// @Summary Withdraw coins from bank
// @Description Moves coins from bank to wallet, minus a 1% fee
// @Tags economy
// @Accept json
// @Produce json
// @Param request body amountRequest true "Withdraw amount"
// @Success 200 {object} BankOpResult
// @Failure 400 {object} ErrorResponse
// @Router /economy/withdraw [post]
// @Security BearerAuth
func (s *EconomyService) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req amountRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := s.validation.ValidateStruct(req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result, err := s.Withdraw(username, req.Amount)
	if err != nil {
		log.Printf("[ECONOMY] Withdraw failed for %s: %v", username, err)
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	WriteJSONResponse(w, http.StatusOK, result)
}

type transferRequest struct {
	TargetUsername string `json:"targetUsername" validate:"required,min=3,max=20"`
	Amount         int64  `json:"amount" validate:"required,gt=0"`
	Message        string `json:"message" validate:"omitempty,max=200"`
}

// HandleTransfer godoc
// @Summary Transfer coins to another user
// @Description Sends coins to another user; transfers above 1000 pay a 5% fee
// @Tags economy
// @Accept json
// @Produce json
// @Param request body transferRequest true "Transfer details"
// @Success 200 {object} TransferResult
// @Failure 400 {object} ErrorResponse
// @Router /economy/transfer [post]
// @Security BearerAuth
func (s *EconomyService) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req transferRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := s.validation.ValidateStruct(req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result, err := s.Transfer(username, req.TargetUsername, req.Amount, req.Message)
	if err != nil {
		log.Printf("[ECONOMY] Transfer from %s to %s failed: %v", username, req.TargetUsername, err)
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	log.Printf("[ECONOMY] %s sent %d coins to %s", username, req.Amount, req.TargetUsername)
	WriteJSONResponse(w, http.StatusOK, result)
}

type robRequest struct {
	TargetUsername string `json:"targetUsername" validate:"required,min=3,max=20"`
	BetAmount      int64  `json:"betAmount" validate:"required,gt=0"`
}

// HandleRob godoc
// @Summary Rob another user
// @Description Attempts to steal coins from another user's wallet
// @Tags economy
// @Accept json
// @Produce json
// @Param request body robRequest true "Rob details"
// @Success 200 {object} RobResult
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /economy/rob [post]
// @Security BearerAuth
func (s *EconomyService) HandleRob(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req robRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := s.validation.ValidateStruct(req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result, err := s.Rob(username, req.TargetUsername, req.BetAmount)
	if err != nil {
		log.Printf("[ECONOMY] Rob by %s on %s rejected: %v", username, req.TargetUsername, err)
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	WriteJSONResponse(w, http.StatusOK, result)
}

// HandleDaily godoc
// @Summary Claim daily reward
// @Tags economy
// @Produce json
// @Success 200 {object} ActionResult
// @Failure 429 {object} ErrorResponse
// @Router /economy/daily [post]
// @Security BearerAuth
func (s *EconomyService) HandleDaily(w http.ResponseWriter, r *http.Request) {
	s.handleSimpleAction(w, r, "daily", s.Daily)
}

type workRequest struct {
	JobType string `json:"jobType" validate:"required"`
}

// HandleWork godoc
// @Summary Work a job
// @Description Earns coins from one of the named jobs
// @Tags economy
// @Accept json
// @Produce json
// @Param request body workRequest true "Job selection"
// @Success 200 {object} ActionResult
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /economy/work [post]
// @Security BearerAuth
func (s *EconomyService) HandleWork(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req workRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := s.validation.ValidateStruct(req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result, err := s.Work(username, req.JobType)
	if err != nil {
		log.Printf("[ECONOMY] Work rejected for %s: %v", username, err)
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	WriteJSONResponse(w, http.StatusOK, result)
}

// HandleBeg godoc
// @Summary Beg for coins
// @Tags economy
// @Produce json
// @Success 200 {object} ActionResult
// @Failure 429 {object} ErrorResponse
// @Router /economy/beg [post]
// @Security BearerAuth
func (s *EconomyService) HandleBeg(w http.ResponseWriter, r *http.Request) {
	s.handleSimpleAction(w, r, "beg", s.Beg)
}

// HandleSearch godoc
// @Summary Search for coins
// @Tags economy
// @Produce json
// @Success 200 {object} ActionResult
// @Failure 429 {object} ErrorResponse
// @Router /economy/search [post]
// @Security BearerAuth
func (s *EconomyService) HandleSearch(w http.ResponseWriter, r *http.Request) {
	s.handleSimpleAction(w, r, "search", s.Search)
}

// handleSimpleAction serves the earning actions that take no payload.
func (s *EconomyService) handleSimpleAction(w http.ResponseWriter, r *http.Request, action string, fn func(string) (*ActionResult, error)) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	result, err := fn(username)
	if err != nil {
		log.Printf("[ECONOMY] %s rejected for %s: %v", action, username, err)
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	WriteJSONResponse(w, http.StatusOK, result)
}
