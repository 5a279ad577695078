package services

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"github.com/memeconomy/backend/internal/models"
)

// outcome is one row of an earning action's reward table. Weights are
// relative, not normalized. A non-empty Rarity additionally grants a random
// catalog item of that tier; if the catalog has none, the draw degrades to
// coins only.
type outcome struct {
	Label    string
	MinCoins int64
	MaxCoins int64
	XP       int64
	Weight   int
	Rarity   string
}

// pickOutcome draws one table row with probability Weight / totalWeight.
func pickOutcome(rng Rand, table []outcome) outcome {
	total := 0
	for _, o := range table {
		total += o.Weight
	}
	draw := rng.Intn(total)
	for _, o := range table {
		if draw < o.Weight {
			return o
		}
		draw -= o.Weight
	}
	return table[len(table)-1]
}

var fishOutcomes = []outcome{
	{Label: "an old boot", MinCoins: 5, MaxCoins: 20, XP: 3, Weight: 40},
	{Label: "a common carp", MinCoins: 20, MaxCoins: 60, XP: 5, Weight: 30},
	{Label: "a shiny salmon", MinCoins: 60, MaxCoins: 120, XP: 8, Weight: 15, Rarity: models.RarityCommon},
	{Label: "a golden koi", MinCoins: 120, MaxCoins: 250, XP: 12, Weight: 10, Rarity: models.RarityUncommon},
	{Label: "the fabled Pepe fish", MinCoins: 250, MaxCoins: 600, XP: 20, Weight: 5, Rarity: models.RarityRare},
}

var mineOutcomes = []outcome{
	{Label: "a pile of pebbles", MinCoins: 5, MaxCoins: 25, XP: 3, Weight: 40},
	{Label: "a chunk of coal", MinCoins: 25, MaxCoins: 70, XP: 5, Weight: 30},
	{Label: "an iron vein", MinCoins: 70, MaxCoins: 150, XP: 8, Weight: 15, Rarity: models.RarityCommon},
	{Label: "a gold nugget", MinCoins: 150, MaxCoins: 300, XP: 12, Weight: 10, Rarity: models.RarityUncommon},
	{Label: "a raw diamond", MinCoins: 300, MaxCoins: 700, XP: 20, Weight: 5, Rarity: models.RarityRare},
}

var huntOutcomes = []outcome{
	{Label: "nothing but mosquito bites", MinCoins: 0, MaxCoins: 15, XP: 3, Weight: 35},
	{Label: "a rabbit", MinCoins: 20, MaxCoins: 60, XP: 5, Weight: 30},
	{Label: "a deer", MinCoins: 60, MaxCoins: 140, XP: 8, Weight: 20, Rarity: models.RarityCommon},
	{Label: "a wild boar", MinCoins: 140, MaxCoins: 280, XP: 12, Weight: 10, Rarity: models.RarityUncommon},
	{Label: "a legendary dire wolf", MinCoins: 280, MaxCoins: 650, XP: 20, Weight: 5, Rarity: models.RarityRare},
}

var digOutcomes = []outcome{
	{Label: "a handful of bottle caps", MinCoins: 5, MaxCoins: 20, XP: 3, Weight: 40},
	{Label: "some loose change", MinCoins: 20, MaxCoins: 55, XP: 5, Weight: 30},
	{Label: "a rusty lockbox", MinCoins: 55, MaxCoins: 130, XP: 8, Weight: 15, Rarity: models.RarityCommon},
	{Label: "a buried stash", MinCoins: 130, MaxCoins: 260, XP: 12, Weight: 10, Rarity: models.RarityUncommon},
	{Label: "a pirate's treasure chest", MinCoins: 260, MaxCoins: 600, XP: 20, Weight: 5, Rarity: models.RarityRare},
}

// actionVerbs maps an action to the verb used in transaction descriptions and
// flavor messages.
var actionVerbs = map[string]string{
	"fish": "Fishing",
	"mine": "Mining",
	"hunt": "Hunting",
	"dig":  "Digging",
}

// runRarityAction is the shared engine behind fish, mine, hunt and dig: one
// weighted draw over a graduated table, an optional item grant matching the
// drawn tier, one atomic ledger cycle.
func (s *EconomyService) runRarityAction(username, action string, table []outcome) (*ActionResult, error) {
	o := pickOutcome(s.rng, table)
	coins := randRange(s.rng, o.MinCoins, o.MaxCoins)

	var item *models.Item
	if o.Rarity != "" {
		matches, err := s.catalog.ItemsByRarity(o.Rarity)
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			item = &matches[s.rng.Intn(len(matches))]
		}
	}

	verb := actionVerbs[action]
	var result *ActionResult
	var netWorth int64
	err := s.ledger.WithUser(username, func(tx *sql.Tx, u *models.User) error {
		if err := s.gateAction(u, action, s.now()); err != nil {
			return err
		}

		u.Coins += coins
		addXP(u, o.XP)

		desc := fmt.Sprintf("%s: found %s, %d coins", verb, o.Label, coins)
		message := fmt.Sprintf("You found %s worth %d coins!", o.Label, coins)
		if item != nil {
			u.AddItem(item.ID, 1)
			desc += " + " + item.Name
			message += fmt.Sprintf(" You also got a %s!", item.Name)
		}
		if err := s.ledger.appendTransactionTx(tx, models.Transaction{
			User:        username,
			Type:        models.TxEarn,
			Amount:      coins,
			Description: desc,
		}); err != nil {
			return err
		}

		result = &ActionResult{
			Success:    true,
			Coins:      coins,
			XP:         o.XP,
			BonusItem:  item,
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

func (s *EconomyService) Fish(username string) (*ActionResult, error) {
	return s.runRarityAction(username, "fish", fishOutcomes)
}

func (s *EconomyService) Mine(username string) (*ActionResult, error) {
	return s.runRarityAction(username, "mine", mineOutcomes)
}

func (s *EconomyService) Hunt(username string) (*ActionResult, error) {
	return s.runRarityAction(username, "hunt", huntOutcomes)
}

func (s *EconomyService) Dig(username string) (*ActionResult, error) {
	return s.runRarityAction(username, "dig", digOutcomes)
}

// Vote rewards supporting the site, once per 12 hours.
func (s *EconomyService) Vote(username string) (*ActionResult, error) {
	var result *ActionResult
	var netWorth int64
	err := s.ledger.WithUser(username, func(tx *sql.Tx, u *models.User) error {
		if err := s.gateAction(u, "vote", s.now()); err != nil {
			return err
		}

		amount := randRange(s.rng, 150, 300)
		const xpGain = 15
		u.Coins += amount
		addXP(u, xpGain)

		if err := s.ledger.appendTransactionTx(tx, models.Transaction{
			User:        username,
			Type:        models.TxEarn,
			Amount:      amount,
			Description: fmt.Sprintf("Vote reward: %d coins, %d XP", amount, xpGain),
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
			Message:    fmt.Sprintf("Thanks for voting! You earned %d coins.", amount),
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

type adventureType struct {
	Name        string
	SuccessProb float64
	MinCoins    int64
	MaxCoins    int64
	XP          int64
	FailMessage string
}

var adventureTypes = []adventureType{
	{Name: "Meme Dungeon", SuccessProb: 0.65, MinCoins: 100, MaxCoins: 300, XP: 15,
		FailMessage: "A horde of normies chased you out of the Meme Dungeon empty-handed."},
	{Name: "Crypto Mines", SuccessProb: 0.55, MinCoins: 150, MaxCoins: 400, XP: 20,
		FailMessage: "The Crypto Mines collapsed. You barely escaped with your life."},
	{Name: "Moon Mission", SuccessProb: 0.40, MinCoins: 300, MaxCoins: 700, XP: 30,
		FailMessage: "Your rocket ran out of fuel halfway to the moon."},
	{Name: "Troll Bridge", SuccessProb: 0.75, MinCoins: 50, MaxCoins: 150, XP: 10,
		FailMessage: "The troll asked a riddle you couldn't answer."},
}

// AdventureResult is returned by adventure attempts.
type AdventureResult struct {
	Success    bool   `json:"success"`
	Adventure  string `json:"adventure"`
	Coins      int64  `json:"coins"`
	XP         int64  `json:"xp,omitempty"`
	NewBalance int64  `json:"newBalance"`
	NewXP      int64  `json:"newXP,omitempty"`
	Level      int    `json:"level,omitempty"`
	Message    string `json:"message"`
}

// Adventure picks a random adventure, rolls its success probability, and pays
// out on success. Failure grants nothing but still consumes the cooldown.
func (s *EconomyService) Adventure(username string) (*AdventureResult, error) {
	adv := adventureTypes[s.rng.Intn(len(adventureTypes))]
	success := s.rng.Float64() < adv.SuccessProb

	var result *AdventureResult
	var netWorth int64
	err := s.ledger.WithUser(username, func(tx *sql.Tx, u *models.User) error {
		if err := s.gateAction(u, "adventure", s.now()); err != nil {
			return err
		}

		if !success {
			if err := s.ledger.appendTransactionTx(tx, models.Transaction{
				User:        username,
				Type:        models.TxEarn,
				Amount:      0,
				Description: fmt.Sprintf("Adventure (%s) failed", adv.Name),
			}); err != nil {
				return err
			}
			result = &AdventureResult{
				Success:    false,
				Adventure:  adv.Name,
				Coins:      0,
				NewBalance: u.Coins,
				Message:    adv.FailMessage,
			}
			netWorth = u.NetWorth()
			return nil
		}

		amount := randRange(s.rng, adv.MinCoins, adv.MaxCoins)
		u.Coins += amount
		addXP(u, adv.XP)

		if err := s.ledger.appendTransactionTx(tx, models.Transaction{
			User:        username,
			Type:        models.TxEarn,
			Amount:      amount,
			Description: fmt.Sprintf("Adventure (%s): %d coins, %d XP", adv.Name, amount, adv.XP),
		}); err != nil {
			return err
		}

		result = &AdventureResult{
			Success:    true,
			Adventure:  adv.Name,
			Coins:      amount,
			XP:         adv.XP,
			NewBalance: u.Coins,
			NewXP:      u.XP,
			Level:      u.Level,
			Message:    fmt.Sprintf("You conquered the %s and earned %d coins!", adv.Name, amount),
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

type crimeType struct {
	Name        string
	SuccessProb float64
	MinCoins    int64
	MaxCoins    int64
	Fine        int64
	XP          int64
}

var crimeTypes = []crimeType{
	{Name: "Meme Piracy", SuccessProb: 0.70, MinCoins: 100, MaxCoins: 250, Fine: 100, XP: 10},
	{Name: "Insider Doge Trading", SuccessProb: 0.55, MinCoins: 200, MaxCoins: 450, Fine: 250, XP: 15},
	{Name: "NFT Forgery", SuccessProb: 0.45, MinCoins: 300, MaxCoins: 650, Fine: 400, XP: 20},
	{Name: "The Great Bank Heist", SuccessProb: 0.25, MinCoins: 600, MaxCoins: 1200, Fine: 800, XP: 30},
}

// CrimeResult is returned by crime attempts.
type CrimeResult struct {
	Success    bool   `json:"success"`
	Crime      string `json:"crime"`
	Coins      int64  `json:"coins,omitempty"`
	Fine       int64  `json:"fine,omitempty"`
	XP         int64  `json:"xp,omitempty"`
	NewBalance int64  `json:"newBalance"`
	NewXP      int64  `json:"newXP,omitempty"`
	Level      int    `json:"level,omitempty"`
	Message    string `json:"message"`
}

// Crime commits a random crime. Failure pays a fine capped at the current
// wallet balance, so the wallet never goes negative.
func (s *EconomyService) Crime(username string) (*CrimeResult, error) {
	crime := crimeTypes[s.rng.Intn(len(crimeTypes))]
	success := s.rng.Float64() < crime.SuccessProb

	var result *CrimeResult
	var netWorth int64
	err := s.ledger.WithUser(username, func(tx *sql.Tx, u *models.User) error {
		if err := s.gateAction(u, "crime", s.now()); err != nil {
			return err
		}

		if !success {
			fine := crime.Fine
			if fine > u.Coins {
				fine = u.Coins
			}
			u.Coins -= fine

			if err := s.ledger.appendTransactionTx(tx, models.Transaction{
				User:        username,
				Type:        models.TxFine,
				Amount:      fine,
				Description: fmt.Sprintf("Caught during %s - fined %d coins", crime.Name, fine),
			}); err != nil {
				return err
			}
			result = &CrimeResult{
				Success:    false,
				Crime:      crime.Name,
				Fine:       fine,
				NewBalance: u.Coins,
				Message:    fmt.Sprintf("You got caught during %s and paid a %d coin fine!", crime.Name, fine),
			}
			netWorth = u.NetWorth()
			return nil
		}

		amount := randRange(s.rng, crime.MinCoins, crime.MaxCoins)
		u.Coins += amount
		addXP(u, crime.XP)

		if err := s.ledger.appendTransactionTx(tx, models.Transaction{
			User:        username,
			Type:        models.TxEarn,
			Amount:      amount,
			Description: fmt.Sprintf("%s: %d coins, %d XP", crime.Name, amount, crime.XP),
		}); err != nil {
			return err
		}

		result = &CrimeResult{
			Success:    true,
			Crime:      crime.Name,
			Coins:      amount,
			XP:         crime.XP,
			NewBalance: u.Coins,
			NewXP:      u.XP,
			Level:      u.Level,
			Message:    fmt.Sprintf("You pulled off %s and got away with %d coins!", crime.Name, amount),
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

// EngagementResult is returned by post-meme and stream: a base payout plus a
// bonus scaled by a random engagement figure, tripled when trending.
type EngagementResult struct {
	Success    bool   `json:"success"`
	Coins      int64  `json:"coins"`
	Engagement int64  `json:"engagement"`
	Trending   bool   `json:"trending"`
	XP         int64  `json:"xp"`
	NewBalance int64  `json:"newBalance"`
	NewXP      int64  `json:"newXP"`
	Level      int    `json:"level,omitempty"`
	Message    string `json:"message"`
}

func (s *EconomyService) runEngagementAction(username, action string, base, bonus int64, engagement int64, trending bool, xp int64, desc, message string) (*EngagementResult, error) {
	total := base + bonus
	if trending {
		total *= 3
	}

	var result *EngagementResult
	var netWorth int64
	err := s.ledger.WithUser(username, func(tx *sql.Tx, u *models.User) error {
		if err := s.gateAction(u, action, s.now()); err != nil {
			return err
		}

		u.Coins += total
		addXP(u, xp)

		if err := s.ledger.appendTransactionTx(tx, models.Transaction{
			User:        username,
			Type:        models.TxEarn,
			Amount:      total,
			Description: desc,
		}); err != nil {
			return err
		}

		result = &EngagementResult{
			Success:    true,
			Coins:      total,
			Engagement: engagement,
			Trending:   trending,
			XP:         xp,
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

// PostMeme pays a base reward plus half the likes the meme attracts. A 5%
// trending roll triples the whole payout.
func (s *EconomyService) PostMeme(username string) (*EngagementResult, error) {
	base := randRange(s.rng, 50, 150)
	likes := int64(s.rng.Intn(1000))
	bonus := likes / 2
	trending := s.rng.Float64() < 0.05

	desc := fmt.Sprintf("Posted a meme: %d likes", likes)
	message := fmt.Sprintf("Your meme got %d likes!", likes)
	if trending {
		desc += " (trending!)"
		message += " It's trending - triple payout!"
	}
	return s.runEngagementAction(username, "postmeme", base, bonus, likes, trending, 8, desc, message)
}

// Stream pays a base reward plus a fifth of the viewers who tune in. A 5%
// raid roll triples the whole payout.
func (s *EconomyService) Stream(username string) (*EngagementResult, error) {
	base := randRange(s.rng, 80, 200)
	viewers := randRange(s.rng, 10, 500)
	bonus := viewers / 5
	raided := s.rng.Float64() < 0.05

	desc := fmt.Sprintf("Streamed to %d viewers", viewers)
	message := fmt.Sprintf("You streamed to %d viewers!", viewers)
	if raided {
		desc += " (raided!)"
		message += " A huge raid tripled your earnings!"
	}
	return s.runEngagementAction(username, "stream", base, bonus, viewers, raided, 10, desc, message)
}

type scratchTier struct {
	Name   string
	Cost   int64
	Prizes []outcome
}

var scratchTiers = []scratchTier{
	{Name: "Bronze", Cost: 50, Prizes: []outcome{
		{Label: "nothing", MinCoins: 0, MaxCoins: 0, Weight: 50},
		{Label: "small win", MinCoins: 25, MaxCoins: 25, Weight: 20},
		{Label: "break even", MinCoins: 50, MaxCoins: 50, Weight: 15},
		{Label: "double", MinCoins: 100, MaxCoins: 100, Weight: 10},
		{Label: "jackpot", MinCoins: 500, MaxCoins: 500, Weight: 5},
	}},
	{Name: "Silver", Cost: 150, Prizes: []outcome{
		{Label: "nothing", MinCoins: 0, MaxCoins: 0, Weight: 50},
		{Label: "small win", MinCoins: 75, MaxCoins: 75, Weight: 20},
		{Label: "break even", MinCoins: 150, MaxCoins: 150, Weight: 15},
		{Label: "double", MinCoins: 300, MaxCoins: 300, Weight: 10},
		{Label: "jackpot", MinCoins: 1500, MaxCoins: 1500, Weight: 5},
	}},
	{Name: "Gold", Cost: 400, Prizes: []outcome{
		{Label: "nothing", MinCoins: 0, MaxCoins: 0, Weight: 50},
		{Label: "small win", MinCoins: 200, MaxCoins: 200, Weight: 20},
		{Label: "break even", MinCoins: 400, MaxCoins: 400, Weight: 15},
		{Label: "double", MinCoins: 800, MaxCoins: 800, Weight: 10},
		{Label: "jackpot", MinCoins: 4000, MaxCoins: 4000, Weight: 5},
	}},
}

// ScratchResult is returned by scratch ticket plays. Net can be negative.
type ScratchResult struct {
	Ticket     string `json:"ticket"`
	Cost       int64  `json:"cost"`
	Prize      int64  `json:"prize"`
	Net        int64  `json:"net"`
	NewBalance int64  `json:"newBalance"`
	Message    string `json:"message"`
}

// Scratch buys a random-tier ticket and settles prize minus cost in one
// step. The wallet must cover the ticket cost upfront.
func (s *EconomyService) Scratch(username string) (*ScratchResult, error) {
	tier := scratchTiers[s.rng.Intn(len(scratchTiers))]
	prize := pickOutcome(s.rng, tier.Prizes).MinCoins

	var result *ScratchResult
	var netWorth int64
	err := s.ledger.WithUser(username, func(tx *sql.Tx, u *models.User) error {
		if err := s.gateAction(u, "scratch", s.now()); err != nil {
			return err
		}
		if u.Coins < tier.Cost {
			return ErrInsufficientFunds
		}

		net := prize - tier.Cost
		u.Coins += net

		txType := models.TxEarn
		logged := net
		if net < 0 {
			txType = models.TxSpend
			logged = -net
		}
		if err := s.ledger.appendTransactionTx(tx, models.Transaction{
			User:        username,
			Type:        txType,
			Amount:      logged,
			Description: fmt.Sprintf("Scratch ticket (%s): cost %d, prize %d", tier.Name, tier.Cost, prize),
		}); err != nil {
			return err
		}

		message := fmt.Sprintf("Your %s ticket won %d coins!", tier.Name, prize)
		if prize == 0 {
			message = fmt.Sprintf("Your %s ticket was a dud. Better luck next time!", tier.Name)
		}
		result = &ScratchResult{
			Ticket:     tier.Name,
			Cost:       tier.Cost,
			Prize:      prize,
			Net:        net,
			NewBalance: u.Coins,
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

const (
	highLowMinBet = 10
	highLowMaxBet = 100000
)

// HighLowResult is returned by high-low plays.
type HighLowResult struct {
	Win        bool   `json:"win"`
	Current    int    `json:"current"`
	Next       int    `json:"next"`
	Amount     int64  `json:"amount"`
	NewBalance int64  `json:"newBalance"`
	Message    string `json:"message"`
}

// HighLow draws two numbers in [1,100] and settles a directional guess:
// floor(bet*1.8) credited against the staked bet on a win, full loss of the
// bet otherwise. Equal draws lose. Unlike the rest of the catalog this action
// has no cooldown gate.
func (s *EconomyService) HighLow(username string, bet int64, guess string) (*HighLowResult, error) {
	if guess != "higher" && guess != "lower" {
		return nil, ErrInvalidGuess
	}
	if bet < highLowMinBet || bet > highLowMaxBet {
		return nil, fmt.Errorf("%w: bet must be between %d and %d", ErrInvalidBet, highLowMinBet, highLowMaxBet)
	}

	current := 1 + s.rng.Intn(100)
	next := 1 + s.rng.Intn(100)
	win := (guess == "higher" && next > current) || (guess == "lower" && next < current)

	var result *HighLowResult
	var netWorth int64
	err := s.ledger.WithUser(username, func(tx *sql.Tx, u *models.User) error {
		if u.Coins < bet {
			return ErrInsufficientFunds
		}

		var amount int64
		if win {
			payout := feeOf(bet, 1.8)
			amount = payout - bet
			u.Coins += amount
			u.GameStats.HighlowWins++
		} else {
			amount = -bet
			u.Coins -= bet
			u.GameStats.HighlowLosses++
		}

		txType := models.TxEarn
		logged := amount
		if amount < 0 {
			txType = models.TxSpend
			logged = -amount
		}
		if err := s.ledger.appendTransactionTx(tx, models.Transaction{
			User:        username,
			Type:        txType,
			Amount:      logged,
			Description: fmt.Sprintf("High-Low (%s, %d vs %d): bet %d", guess, current, next, bet),
		}); err != nil {
			return err
		}

		message := fmt.Sprintf("The next number was %d - you lost %d coins.", next, bet)
		if win {
			message = fmt.Sprintf("The next number was %d - you won %d coins!", next, feeOf(bet, 1.8))
		}
		result = &HighLowResult{
			Win:        win,
			Current:    current,
			Next:       next,
			Amount:     amount,
			NewBalance: u.Coins,
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

// HandleFish godoc
// @Summary Go fishing
// @Tags economy
// @Produce json
// @Success 200 {object} ActionResult
// @Failure 429 {object} ErrorResponse
// @Router /economy/fish [post]
// @Security BearerAuth
func (s *EconomyService) HandleFish(w http.ResponseWriter, r *http.Request) {
	s.handleSimpleAction(w, r, "fish", s.Fish)
}

// HandleMine godoc
// @Summary Go mining
// @Tags economy
// @Produce json
// @Success 200 {object} ActionResult
// @Failure 429 {object} ErrorResponse
// @Router /economy/mine [post]
// @Security BearerAuth
func (s *EconomyService) HandleMine(w http.ResponseWriter, r *http.Request) {
	s.handleSimpleAction(w, r, "mine", s.Mine)
}

// HandleHunt godoc
// @Summary Go hunting
// @Tags economy
// @Produce json
// @Success 200 {object} ActionResult
// @Failure 429 {object} ErrorResponse
// @Router /economy/hunt [post]
// @Security BearerAuth
func (s *EconomyService) HandleHunt(w http.ResponseWriter, r *http.Request) {
	s.handleSimpleAction(w, r, "hunt", s.Hunt)
}

// HandleDig godoc
// @Summary Dig for treasure
// @Tags economy
// @Produce json
// @Success 200 {object} ActionResult
// @Failure 429 {object} ErrorResponse
// @Router /economy/dig [post]
// @Security BearerAuth
func (s *EconomyService) HandleDig(w http.ResponseWriter, r *http.Request) {
	s.handleSimpleAction(w, r, "dig", s.Dig)
}

// HandleVote godoc
// @Summary Claim vote reward
// @Tags economy
// @Produce json
// @Success 200 {object} ActionResult
// @Failure 429 {object} ErrorResponse
// @Router /economy/vote [post]
// @Security BearerAuth
func (s *EconomyService) HandleVote(w http.ResponseWriter, r *http.Request) {
	s.handleSimpleAction(w, r, "vote", s.Vote)
}

// HandleAdventure godoc
// @Summary Go on an adventure
// @Tags economy
// @Produce json
// @Success 200 {object} AdventureResult
// @Failure 429 {object} ErrorResponse
// @Router /economy/adventure [post]
// @Security BearerAuth
func (s *EconomyService) HandleAdventure(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	result, err := s.Adventure(username)
	if err != nil {
		log.Printf("[ECONOMY] adventure rejected for %s: %v", username, err)
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	WriteJSONResponse(w, http.StatusOK, result)
}

// HandleCrime godoc
// @Summary Commit a crime
// @Tags economy
// @Produce json
// @Success 200 {object} CrimeResult
// @Failure 429 {object} ErrorResponse
// @Router /economy/crime [post]
// @Security BearerAuth
func (s *EconomyService) HandleCrime(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	result, err := s.Crime(username)
	if err != nil {
		log.Printf("[ECONOMY] crime rejected for %s: %v", username, err)
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	WriteJSONResponse(w, http.StatusOK, result)
}

// HandlePostMeme godoc
// @Summary Post a meme
// @Tags economy
// @Produce json
// @Success 200 {object} EngagementResult
// @Failure 429 {object} ErrorResponse
// @Router /economy/postmeme [post]
// @Security BearerAuth
func (s *EconomyService) HandlePostMeme(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	result, err := s.PostMeme(username)
	if err != nil {
		log.Printf("[ECONOMY] postmeme rejected for %s: %v", username, err)
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	WriteJSONResponse(w, http.StatusOK, result)
}

// HandleStream godoc
// @Summary Stream to your followers
// @Tags economy
// @Produce json
// @Success 200 {object} EngagementResult
// @Failure 429 {object} ErrorResponse
// @Router /economy/stream [post]
// @Security BearerAuth
func (s *EconomyService) HandleStream(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	result, err := s.Stream(username)
	if err != nil {
		log.Printf("[ECONOMY] stream rejected for %s: %v", username, err)
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	WriteJSONResponse(w, http.StatusOK, result)
}

// HandleScratch godoc
// @Summary Buy a scratch ticket
// @Tags economy
// @Produce json
// @Success 200 {object} ScratchResult
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /economy/scratch [post]
// @Security BearerAuth
func (s *EconomyService) HandleScratch(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	result, err := s.Scratch(username)
	if err != nil {
		log.Printf("[ECONOMY] scratch rejected for %s: %v", username, err)
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	WriteJSONResponse(w, http.StatusOK, result)
}

type highLowRequest struct {
	Bet   int64  `json:"bet" validate:"required,gt=0"`
	Guess string `json:"guess" validate:"required,oneof=higher lower"`
}

// HandleHighLow godoc
// @Summary Play high-low
// @Description Guess whether the next number is higher or lower
// @Tags economy
// @Accept json
// @Produce json
// @Param request body highLowRequest true "Bet and guess"
// @Success 200 {object} HighLowResult
// @Failure 400 {object} ErrorResponse
// @Router /economy/highlow [post]
// @Security BearerAuth
func (s *EconomyService) HandleHighLow(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req highLowRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := s.validation.ValidateStruct(req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result, err := s.HighLow(username, req.Bet, req.Guess)
	if err != nil {
		log.Printf("[ECONOMY] highlow rejected for %s: %v", username, err)
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	WriteJSONResponse(w, http.StatusOK, result)
}
