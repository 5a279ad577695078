package services

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/memeconomy/backend/internal/config"
	"github.com/memeconomy/backend/internal/models"
)

// FreemiumService dispenses the short-cooldown weighted-random reward: coins,
// a catalog item by rarity tier, or a lootbox that resolves into several
// items.
type FreemiumService struct {
	ledger      *LedgerStore
	catalog     *CatalogStore
	leaderboard *LeaderboardService
	cfg         *config.EconomyConfig
	rng         Rand
	now         func() time.Time
}

func NewFreemiumService(db *sql.DB, redisClient *redis.Client, cfg *config.EconomyConfig) *FreemiumService {
	return &FreemiumService{
		ledger:      NewLedgerStore(db),
		catalog:     NewCatalogStore(db),
		leaderboard: NewLeaderboardService(db, redisClient),
		cfg:         cfg,
		rng:         NewSecureRand(),
		now:         time.Now,
	}
}

// freemiumLoot is the top-level reward distribution. Weights are relative.
var freemiumLoot = []struct {
	Category string
	Weight   int
}{
	{"coins", 40},
	{models.RarityCommon, 25},
	{models.RarityUncommon, 15},
	{models.RarityRare, 10},
	{models.RarityEpic, 5},
	{models.RarityLegendary, 5},
}

const (
	freemiumCoinsMin = 100
	freemiumCoinsMax = 500
	freemiumFallback = 250
)

func (s *FreemiumService) drawCategory() string {
	total := 0
	for _, l := range freemiumLoot {
		total += l.Weight
	}
	draw := s.rng.Intn(total)
	for _, l := range freemiumLoot {
		if draw < l.Weight {
			return l.Category
		}
		draw -= l.Weight
	}
	return "coins"
}

// lootboxRarity skews lootbox contents toward common with thin epic and
// legendary tails.
func (s *FreemiumService) lootboxRarity() string {
	draw := s.rng.Float64()
	switch {
	case draw < 0.05:
		return models.RarityLegendary
	case draw < 0.15:
		return models.RarityEpic
	case draw < 0.30:
		return models.RarityRare
	case draw < 0.50:
		return models.RarityUncommon
	default:
		return models.RarityCommon
	}
}

// ClaimResult is returned by a freemium claim.
type ClaimResult struct {
	Type            string        `json:"type"`
	Amount          int64         `json:"amount,omitempty"`
	Item            *models.Item  `json:"item,omitempty"`
	LootboxContents []models.Item `json:"lootboxContents,omitempty"`
	Rarity          string        `json:"rarity,omitempty"`
	NewBalance      int64         `json:"newBalance"`
	Message         string        `json:"message"`
}

// Claim rolls the reward distribution and applies the result in one atomic
// cycle. An empty rarity tier degrades to a fixed coin reward instead of
// failing.
func (s *FreemiumService) Claim(username string) (*ClaimResult, error) {
	category := s.drawCategory()

	var coins int64
	var item *models.Item
	var contents []models.Item
	backup := false

	switch category {
	case "coins":
		coins = randRange(s.rng, freemiumCoinsMin, freemiumCoinsMax)
	default:
		matches, err := s.catalog.ItemsByRarity(category)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			coins = freemiumFallback
			backup = true
			break
		}
		item = &matches[s.rng.Intn(len(matches))]
		if item.Type == models.ItemTypeLootbox {
			contents, err = s.rollLootbox()
			if err != nil {
				return nil, err
			}
		}
	}

	var result *ClaimResult
	var netWorth int64
	err := s.ledger.WithUser(username, func(tx *sql.Tx, u *models.User) error {
		if err := s.gateClaim(u); err != nil {
			return err
		}

		switch {
		case item == nil:
			u.Coins += coins
			desc := fmt.Sprintf("Freemium reward: %d coins", coins)
			message := fmt.Sprintf("You received %d coins!", coins)
			if backup {
				message += " (backup reward)"
			}
			if err := s.ledger.appendTransactionTx(tx, models.Transaction{
				User:        username,
				Type:        models.TxFreemium,
				Amount:      coins,
				Description: desc,
			}); err != nil {
				return err
			}
			result = &ClaimResult{Type: "coins", Amount: coins, NewBalance: u.Coins, Message: message}

		case item.Type == models.ItemTypeLootbox:
			names := make([]string, 0, len(contents))
			for i := range contents {
				u.AddItem(contents[i].ID, 1)
				names = append(names, contents[i].Name)
			}
			if err := s.ledger.appendTransactionTx(tx, models.Transaction{
				User:        username,
				Type:        models.TxFreemium,
				Amount:      0,
				Description: fmt.Sprintf("Freemium reward: %s (%s)", item.Name, item.Rarity),
			}); err != nil {
				return err
			}
			result = &ClaimResult{
				Type:            "lootbox",
				Item:            item,
				LootboxContents: contents,
				NewBalance:      u.Coins,
				Message:         fmt.Sprintf("You received a %s! It contained: %s", item.Name, strings.Join(names, ", ")),
			}

		default:
			u.AddItem(item.ID, 1)
			if err := s.ledger.appendTransactionTx(tx, models.Transaction{
				User:        username,
				Type:        models.TxFreemium,
				Amount:      0,
				Description: fmt.Sprintf("Freemium reward: %s (%s)", item.Name, item.Rarity),
			}); err != nil {
				return err
			}
			result = &ClaimResult{
				Type:       "item",
				Item:       item,
				Rarity:     item.Rarity,
				NewBalance: u.Coins,
				Message:    fmt.Sprintf("You received a %s!", item.Name),
			}
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

// gateClaim mirrors EconomyService.gateAction for the freemium cooldown.
func (s *FreemiumService) gateClaim(u *models.User) error {
	now := s.now()
	if err := checkCooldown("freemium", u.Cooldowns["freemium"], s.cfg.Cooldowns["freemium"], now); err != nil {
		return err
	}
	if u.Cooldowns == nil {
		u.Cooldowns = map[string]time.Time{}
	}
	if now.After(u.Cooldowns["freemium"]) {
		u.Cooldowns["freemium"] = now
	}
	return nil
}

// rollLootbox draws 2-5 non-lootbox items. Empty rarity tiers are skipped,
// so a box can resolve to fewer items than rolled.
func (s *FreemiumService) rollLootbox() ([]models.Item, error) {
	all, err := s.catalog.AllItems()
	if err != nil {
		return nil, err
	}
	byRarity := make(map[string][]models.Item)
	for i := range all {
		if all[i].Type == models.ItemTypeLootbox {
			continue
		}
		byRarity[all[i].Rarity] = append(byRarity[all[i].Rarity], all[i])
	}

	count := 2 + s.rng.Intn(4)
	var contents []models.Item
	for i := 0; i < count; i++ {
		pool := byRarity[s.lootboxRarity()]
		if len(pool) == 0 {
			continue
		}
		contents = append(contents, pool[s.rng.Intn(len(pool))])
	}
	return contents, nil
}

// NextClaim reports the remaining wait before the next claim, zero if ready.
func (s *FreemiumService) NextClaim(username string) (time.Duration, error) {
	u, err := s.ledger.GetUser(username)
	if err != nil {
		return 0, err
	}
	last, ok := u.Cooldowns["freemium"]
	if !ok {
		return 0, nil
	}
	remaining := s.cfg.Cooldowns["freemium"] - s.now().Sub(last)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// HandleClaim godoc
// @Summary Claim the freemium reward
// @Description Rolls the weighted reward table: coins, an item, or a lootbox
// @Tags freemium
// @Produce json
// @Success 200 {object} ClaimResult
// @Failure 429 {object} ErrorResponse
// @Router /freemium/claim [post]
// @Security BearerAuth
func (s *FreemiumService) HandleClaim(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	result, err := s.Claim(username)
	if err != nil {
		log.Printf("[FREEMIUM] Claim rejected for %s: %v", username, err)
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	WriteJSONResponse(w, http.StatusOK, result)
}

// HandleNextClaim godoc
// @Summary Time until next freemium claim
// @Tags freemium
// @Produce json
// @Success 200 {object} map[string]int64
// @Router /freemium/next [get]
// @Security BearerAuth
func (s *FreemiumService) HandleNextClaim(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	remaining, err := s.NextClaim(username)
	if err != nil {
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	WriteJSONResponse(w, http.StatusOK, map[string]int64{"remainingMs": remaining.Milliseconds()})
}
