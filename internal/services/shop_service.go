package services

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/memeconomy/backend/internal/models"
)

// ShopService sells catalog items. Purchases debit the wallet and reserve
// stock inside the same transaction, so a sold-out item can never be
// oversold.
type ShopService struct {
	ledger      *LedgerStore
	catalog     *CatalogStore
	leaderboard *LeaderboardService
	validation  *ValidationHelper
}

func NewShopService(db *sql.DB, redisClient *redis.Client) *ShopService {
	return &ShopService{
		ledger:      NewLedgerStore(db),
		catalog:     NewCatalogStore(db),
		leaderboard: NewLeaderboardService(db, redisClient),
		validation:  NewValidationHelper(),
	}
}

// BuyResult is returned by a successful purchase.
type BuyResult struct {
	Success    bool   `json:"success"`
	Item       string `json:"item"`
	Quantity   int    `json:"quantity"`
	NewBalance int64  `json:"newBalance"`
}

// Buy purchases quantity units of an item at its current price.
func (s *ShopService) Buy(username, itemID string, quantity int) (*BuyResult, error) {
	if quantity < 1 {
		return nil, ErrInvalidAmount
	}
	item, err := s.catalog.GetItem(itemID)
	if err != nil {
		return nil, err
	}

	var result *BuyResult
	var netWorth int64
	err = s.ledger.WithUser(username, func(tx *sql.Tx, u *models.User) error {
		totalCost := item.CurrentPrice * int64(quantity)
		if u.Coins < totalCost {
			return ErrInsufficientFunds
		}
		if err := s.catalog.decrementStockTx(tx, itemID, int64(quantity)); err != nil {
			return err
		}

		u.Coins -= totalCost
		u.AddItem(itemID, quantity)

		if err := s.ledger.appendTransactionTx(tx, models.Transaction{
			User:        username,
			Type:        models.TxSpend,
			Amount:      totalCost,
			Description: fmt.Sprintf("Bought %dx %s for %d coins", quantity, item.Name, totalCost),
		}); err != nil {
			return err
		}

		result = &BuyResult{Success: true, Item: item.Name, Quantity: quantity, NewBalance: u.Coins}
		netWorth = u.NetWorth()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.leaderboard.Publish(username, netWorth)
	return result, nil
}

// EquipResult is returned by equip toggles.
type EquipResult struct {
	Success  bool   `json:"success"`
	ItemID   string `json:"itemId"`
	Equipped bool   `json:"equipped"`
}

// ToggleEquip flips the equipped flag on an owned item.
func (s *ShopService) ToggleEquip(username, itemID string) (*EquipResult, error) {
	var result *EquipResult
	err := s.ledger.WithUser(username, func(tx *sql.Tx, u *models.User) error {
		entry := u.FindInventory(itemID)
		if entry == nil {
			return fmt.Errorf("%w: %s not in inventory", ErrItemNotFound, itemID)
		}
		entry.Equipped = !entry.Equipped
		result = &EquipResult{Success: true, ItemID: itemID, Equipped: entry.Equipped}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// OwnedItem joins an inventory entry with its catalog record.
type OwnedItem struct {
	models.Item
	Quantity int  `json:"quantity"`
	Equipped bool `json:"equipped"`
}

// Inventory returns the user's items with full catalog detail. Entries whose
// catalog record has disappeared are skipped rather than failing the whole
// listing.
func (s *ShopService) Inventory(username string) ([]OwnedItem, error) {
	u, err := s.ledger.GetUser(username)
	if err != nil {
		return nil, err
	}

	items, err := s.catalog.AllItems()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Item, len(items))
	for i := range items {
		byID[items[i].ID] = items[i]
	}

	owned := make([]OwnedItem, 0, len(u.Inventory))
	for _, entry := range u.Inventory {
		item, ok := byID[entry.ItemID]
		if !ok {
			continue
		}
		owned = append(owned, OwnedItem{Item: item, Quantity: entry.Quantity, Equipped: entry.Equipped})
	}
	return owned, nil
}

// HandleListItems godoc
// @Summary List shop items
// @Tags shop
// @Produce json
// @Success 200 {array} models.Item
// @Router /shop/items [get]
// @Security BearerAuth
func (s *ShopService) HandleListItems(w http.ResponseWriter, r *http.Request) {
	if _, ok := requestUsername(r); !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	items, err := s.catalog.AllItems()
	if err != nil {
		log.Printf("[SHOP] Failed to list items: %v", err)
		SendErrorResponse(w, "Failed to load shop", http.StatusInternalServerError, nil)
		return
	}
	if items == nil {
		items = []models.Item{}
	}
	WriteJSONResponse(w, http.StatusOK, items)
}

type buyRequest struct {
	ItemID   string `json:"itemId" validate:"required"`
	Quantity int    `json:"quantity" validate:"omitempty,gte=1,lte=100"`
}

// HandleBuy godoc
// @Summary Buy an item
// @Tags shop
// @Accept json
// @Produce json
// @Param request body buyRequest true "Item and quantity"
// @Success 200 {object} BuyResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /shop/buy [post]
// @Security BearerAuth
func (s *ShopService) HandleBuy(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req buyRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := s.validation.ValidateStruct(req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	result, err := s.Buy(username, req.ItemID, req.Quantity)
	if err != nil {
		log.Printf("[SHOP] Buy rejected for %s: %v", username, err)
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	log.Printf("[SHOP] %s bought %dx %s", username, result.Quantity, result.Item)
	WriteJSONResponse(w, http.StatusOK, result)
}

type equipRequest struct {
	ItemID string `json:"itemId" validate:"required"`
}

// HandleEquip godoc
// @Summary Toggle an item's equipped state
// @Tags shop
// @Accept json
// @Produce json
// @Param request body equipRequest true "Item to toggle"
// @Success 200 {object} EquipResult
// @Failure 404 {object} ErrorResponse
// @Router /shop/equip [post]
// @Security BearerAuth
func (s *ShopService) HandleEquip(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req equipRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := s.validation.ValidateStruct(req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result, err := s.ToggleEquip(username, req.ItemID)
	if err != nil {
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	WriteJSONResponse(w, http.StatusOK, result)
}

// HandleInventory godoc
// @Summary Get own inventory
// @Tags shop
// @Produce json
// @Success 200 {array} OwnedItem
// @Router /user/inventory [get]
// @Security BearerAuth
func (s *ShopService) HandleInventory(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	owned, err := s.Inventory(username)
	if err != nil {
		log.Printf("[SHOP] Inventory lookup failed for %s: %v", username, err)
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	WriteJSONResponse(w, http.StatusOK, owned)
}
