package services

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/memeconomy/backend/internal/config"
	"github.com/memeconomy/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

// stubRand replays scripted draws so outcomes are deterministic.
type stubRand struct {
	ints   []int
	floats []float64
}

func (r *stubRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *stubRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func testUser(username string, coins, bank int64) *models.User {
	return &models.User{
		ID:           "id-" + username,
		Username:     username,
		Email:        username + "@example.com",
		Coins:        coins,
		Bank:         bank,
		BankCapacity: 10000,
		Level:        1,
		Version:      1,
		CreatedAt:    time.Now(),
		LastActive:   time.Now(),
	}
}

func userRows(t *testing.T, users ...*models.User) *sqlmock.Rows {
	t.Helper()
	rows := sqlmock.NewRows([]string{"id", "username", "email", "coins", "bank", "bank_capacity",
		"level", "xp", "inventory", "game_stats", "cooldowns", "banned", "ban_reason",
		"is_admin", "version", "created_at", "last_active"})
	for _, u := range users {
		inventory, err := json.Marshal(u.Inventory)
		assert.NoError(t, err)
		gameStats, err := json.Marshal(u.GameStats)
		assert.NoError(t, err)
		cooldowns, err := json.Marshal(u.Cooldowns)
		assert.NoError(t, err)
		rows.AddRow(u.ID, u.Username, u.Email, u.Coins, u.Bank, u.BankCapacity, u.Level, u.XP,
			inventory, gameStats, cooldowns, u.Banned, u.BanReason, u.IsAdmin, u.Version,
			u.CreatedAt, u.LastActive)
	}
	return rows
}

func seedItem(id, name, rarity string) models.Item {
	return models.Item{
		ID:           id,
		Name:         name,
		Price:        1000,
		CurrentPrice: 1000,
		Type:         models.ItemTypeCollectible,
		Rarity:       rarity,
		Stock:        models.UnlimitedStock,
	}
}

func itemRows(t *testing.T, items ...models.Item) *sqlmock.Rows {
	t.Helper()
	rows := sqlmock.NewRows([]string{"id", "name", "description", "price", "current_price",
		"type", "rarity", "effects", "stock"})
	for _, item := range items {
		effects, err := json.Marshal(item.Effects)
		assert.NoError(t, err)
		rows.AddRow(item.ID, item.Name, item.Description, item.Price, item.CurrentPrice,
			item.Type, item.Rarity, effects, item.Stock)
	}
	return rows
}

func newTestEconomy(t *testing.T) (*EconomyService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	service := NewEconomyService(db, nil, config.LoadEconomyConfig())
	service.rng = &stubRand{}
	return service, mock, func() { db.Close() }
}

func TestAddXP(t *testing.T) {
	t.Run("no rollover below threshold", func(t *testing.T) {
		u := testUser("alice", 0, 0)
		addXP(u, 999)
		assert.Equal(t, 1, u.Level)
		assert.Equal(t, int64(999), u.XP)
	})

	t.Run("surplus carries across levels", func(t *testing.T) {
		u := testUser("alice", 0, 0)
		addXP(u, 2500)
		// 1000 spent on level 1->2, 1500 remain, level 2 needs 2000.
		assert.Equal(t, 2, u.Level)
		assert.Equal(t, int64(1500), u.XP)
	})

	t.Run("exact threshold rolls over to zero", func(t *testing.T) {
		u := testUser("alice", 0, 0)
		addXP(u, 1000)
		assert.Equal(t, 2, u.Level)
		assert.Equal(t, int64(0), u.XP)
	})
}

func TestFeeOf(t *testing.T) {
	assert.Equal(t, int64(75), feeOf(1500, 0.05))
	assert.Equal(t, int64(10), feeOf(1000, 0.01))
	assert.Equal(t, int64(4), feeOf(99, 0.05)) // floors, never rounds up
	assert.Equal(t, int64(0), feeOf(0, 0.05))
}

func TestRandRange(t *testing.T) {
	rng := &stubRand{ints: []int{0, 90, 5}}
	assert.Equal(t, int64(10), randRange(rng, 10, 100))
	assert.Equal(t, int64(100), randRange(rng, 10, 100))
	assert.Equal(t, int64(15), randRange(rng, 10, 100))
	assert.Equal(t, int64(7), randRange(rng, 7, 7))
}

func TestEconomyService_Deposit(t *testing.T) {
	t.Run("moves coins into bank", func(t *testing.T) {
		service, mock, cleanup := newTestEconomy(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs("alice").
			WillReturnRows(userRows(t, testUser("alice", 150, 50)))
		mock.ExpectExec("INSERT INTO transactions").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		result, err := service.Deposit("alice", 100)
		assert.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, int64(50), result.NewCoins)
		assert.Equal(t, int64(150), result.NewBank)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects when wallet is short", func(t *testing.T) {
		service, mock, cleanup := newTestEconomy(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs("alice").
			WillReturnRows(userRows(t, testUser("alice", 10, 0)))
		mock.ExpectRollback()

		_, err := service.Deposit("alice", 100)
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects past bank capacity", func(t *testing.T) {
		service, mock, cleanup := newTestEconomy(t)
		defer cleanup()

		u := testUser("alice", 5000, 9500)
		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs("alice").WillReturnRows(userRows(t, u))
		mock.ExpectRollback()

		_, err := service.Deposit("alice", 1000)
		assert.ErrorIs(t, err, ErrBankCapacity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects non-positive amounts without touching the ledger", func(t *testing.T) {
		service, mock, cleanup := newTestEconomy(t)
		defer cleanup()

		_, err := service.Deposit("alice", 0)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = service.Deposit("alice", -5)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEconomyService_Withdraw(t *testing.T) {
	t.Run("burns the one percent fee", func(t *testing.T) {
		service, mock, cleanup := newTestEconomy(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs("alice").
			WillReturnRows(userRows(t, testUser("alice", 0, 1000)))
		mock.ExpectExec("INSERT INTO transactions").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		result, err := service.Withdraw("alice", 1000)
		assert.NoError(t, err)
		assert.Equal(t, int64(10), result.Fee)
		assert.Equal(t, int64(990), result.NewCoins)
		assert.Equal(t, int64(0), result.NewBank)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects when bank is short", func(t *testing.T) {
		service, mock, cleanup := newTestEconomy(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs("alice").
			WillReturnRows(userRows(t, testUser("alice", 0, 50)))
		mock.ExpectRollback()

		_, err := service.Withdraw("alice", 100)
		assert.ErrorIs(t, err, ErrInsufficientBank)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEconomyService_Transfer(t *testing.T) {
	t.Run("fee is charged on top and burned", func(t *testing.T) {
		service, mock, cleanup := newTestEconomy(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs("alice").
			WillReturnRows(userRows(t, testUser("alice", 2000, 0)))
		mock.ExpectQuery("FOR UPDATE").WithArgs("bob").
			WillReturnRows(userRows(t, testUser("bob", 0, 0)))
		mock.ExpectExec("INSERT INTO transactions").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO transactions").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO notifications").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		result, err := service.Transfer("alice", "bob", 1500, "gg")
		assert.NoError(t, err)
		assert.Equal(t, int64(1500), result.Sent)
		assert.Equal(t, int64(75), result.Fee)
		assert.Equal(t, int64(425), result.NewBalance) // 2000 - 1500 - 75
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no fee at or below the threshold", func(t *testing.T) {
		service, mock, cleanup := newTestEconomy(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs("alice").
			WillReturnRows(userRows(t, testUser("alice", 2000, 0)))
		mock.ExpectQuery("FOR UPDATE").WithArgs("bob").
			WillReturnRows(userRows(t, testUser("bob", 0, 0)))
		mock.ExpectExec("INSERT INTO transactions").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO transactions").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO notifications").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		result, err := service.Transfer("alice", "bob", 1000, "")
		assert.NoError(t, err)
		assert.Equal(t, int64(0), result.Fee)
		assert.Equal(t, int64(1000), result.NewBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects below the minimum before any read", func(t *testing.T) {
		service, mock, cleanup := newTestEconomy(t)
		defer cleanup()

		_, err := service.Transfer("alice", "bob", 5, "")
		assert.ErrorIs(t, err, ErrBelowMinimum)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects self transfers", func(t *testing.T) {
		service, mock, cleanup := newTestEconomy(t)
		defer cleanup()

		_, err := service.Transfer("alice", "alice", 100, "")
		assert.ErrorIs(t, err, ErrSelfTarget)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("banned recipient stays off the leaderboard", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		redisClient, redisMock := redismock.NewClientMock()
		service := NewEconomyService(db, redisClient, config.LoadEconomyConfig())
		service.rng = &stubRand{}

		banned := testUser("bob", 100, 0)
		banned.Banned = true
		banned.BanReason = "botting"

		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs("alice").
			WillReturnRows(userRows(t, testUser("alice", 500, 0)))
		mock.ExpectQuery("FOR UPDATE").WithArgs("bob").
			WillReturnRows(userRows(t, banned))
		mock.ExpectExec("INSERT INTO transactions").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO transactions").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO notifications").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		// Only the sender is re-ranked; a ZAdd for bob would trip the mock
		// and surface in the publish-failure log.
		redisMock.ExpectZAdd(leaderboardKey, &redis.Z{Score: 400, Member: "alice"}).SetVal(1)

		var logs bytes.Buffer
		log.SetOutput(&logs)
		defer log.SetOutput(os.Stderr)

		result, err := service.Transfer("alice", "bob", 100, "")
		assert.NoError(t, err)
		assert.Equal(t, int64(400), result.NewBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.NoError(t, redisMock.ExpectationsWereMet())
		assert.NotContains(t, logs.String(), "publish score for bob")
	})

	t.Run("insufficient total rolls everything back", func(t *testing.T) {
		service, mock, cleanup := newTestEconomy(t)
		defer cleanup()

		// 1500 + 75 fee exceeds the 1550 wallet.
		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs("alice").
			WillReturnRows(userRows(t, testUser("alice", 1550, 0)))
		mock.ExpectQuery("FOR UPDATE").WithArgs("bob").
			WillReturnRows(userRows(t, testUser("bob", 0, 0)))
		mock.ExpectRollback()

		_, err := service.Transfer("alice", "bob", 1500, "")
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEconomyService_Rob(t *testing.T) {
	t.Run("successful rob moves the stolen amount", func(t *testing.T) {
		service, mock, cleanup := newTestEconomy(t)
		defer cleanup()
		// First float wins the 30% roll, second sets the steal fraction at
		// 0.20 + 0.5*0.30 = 0.35 of the bet.
		service.rng = &stubRand{floats: []float64{0.1, 0.5}}

		mock.ExpectQuery("FROM items").WillReturnRows(itemRows(t))
		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs("alice").
			WillReturnRows(userRows(t, testUser("alice", 1000, 0)))
		mock.ExpectQuery("FOR UPDATE").WithArgs("bob").
			WillReturnRows(userRows(t, testUser("bob", 1000, 0)))
		mock.ExpectExec("INSERT INTO transactions").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO transactions").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO notifications").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		result, err := service.Rob("alice", "bob", 200)
		assert.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, int64(70), result.Stolen)
		assert.Equal(t, int64(1070), result.NewBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed rob costs bet plus fine", func(t *testing.T) {
		service, mock, cleanup := newTestEconomy(t)
		defer cleanup()
		service.rng = &stubRand{floats: []float64{0.99}}

		mock.ExpectQuery("FROM items").WillReturnRows(itemRows(t))
		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs("alice").
			WillReturnRows(userRows(t, testUser("alice", 1000, 0)))
		mock.ExpectQuery("FOR UPDATE").WithArgs("bob").
			WillReturnRows(userRows(t, testUser("bob", 1000, 0)))
		mock.ExpectExec("INSERT INTO transactions").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO notifications").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		result, err := service.Rob("alice", "bob", 200)
		assert.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, int64(300), result.Lost) // bet + 50% fine
		assert.Equal(t, int64(700), result.NewBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects bets above 20 percent of the wallet", func(t *testing.T) {
		service, mock, cleanup := newTestEconomy(t)
		defer cleanup()

		mock.ExpectQuery("FROM items").WillReturnRows(itemRows(t))
		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs("alice").
			WillReturnRows(userRows(t, testUser("alice", 1000, 0)))
		mock.ExpectQuery("FOR UPDATE").WithArgs("bob").
			WillReturnRows(userRows(t, testUser("bob", 1000, 0)))
		mock.ExpectRollback()

		_, err := service.Rob("alice", "bob", 500)
		assert.ErrorIs(t, err, ErrBetExceedsMax)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects non-viable victims", func(t *testing.T) {
		service, mock, cleanup := newTestEconomy(t)
		defer cleanup()

		mock.ExpectQuery("FROM items").WillReturnRows(itemRows(t))
		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs("alice").
			WillReturnRows(userRows(t, testUser("alice", 1000, 0)))
		mock.ExpectQuery("FOR UPDATE").WithArgs("bob").
			WillReturnRows(userRows(t, testUser("bob", 50, 0)))
		mock.ExpectRollback()

		_, err := service.Rob("alice", "bob", 200)
		assert.ErrorIs(t, err, ErrTargetNotViable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects robbing yourself", func(t *testing.T) {
		service, mock, cleanup := newTestEconomy(t)
		defer cleanup()

		_, err := service.Rob("alice", "alice", 100)
		assert.ErrorIs(t, err, ErrSelfTarget)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEconomyService_Work(t *testing.T) {
	t.Run("pays within the job's range", func(t *testing.T) {
		service, mock, cleanup := newTestEconomy(t)
		defer cleanup()
		service.rng = &stubRand{ints: []int{0}} // minimum payout

		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs("alice").
			WillReturnRows(userRows(t, testUser("alice", 0, 0)))
		mock.ExpectExec("INSERT INTO transactions").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		result, err := service.Work("alice", "meme-farmer")
		assert.NoError(t, err)
		assert.Equal(t, "Meme Farmer", result.Job)
		assert.Equal(t, int64(100), result.Coins)
		assert.Equal(t, int64(5), result.XP)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects unknown jobs", func(t *testing.T) {
		service, mock, cleanup := newTestEconomy(t)
		defer cleanup()

		_, err := service.Work("alice", "astronaut")
		assert.ErrorIs(t, err, ErrInvalidJob)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEconomyService_Beg(t *testing.T) {
	t.Run("failure stamps the cooldown but writes no transaction", func(t *testing.T) {
		service, mock, cleanup := newTestEconomy(t)
		defer cleanup()
		service.rng = &stubRand{floats: []float64{0.1}} // below 0.3 fails

		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs("alice").
			WillReturnRows(userRows(t, testUser("alice", 100, 0)))
		mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		result, err := service.Beg("alice")
		assert.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, int64(0), result.Coins)
		assert.Equal(t, int64(100), result.NewBalance)
		assert.NotEmpty(t, result.Message)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success pays up to 150 coins", func(t *testing.T) {
		service, mock, cleanup := newTestEconomy(t)
		defer cleanup()
		service.rng = &stubRand{floats: []float64{0.9}, ints: []int{150}}

		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs("alice").
			WillReturnRows(userRows(t, testUser("alice", 100, 0)))
		mock.ExpectExec("INSERT INTO transactions").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		result, err := service.Beg("alice")
		assert.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, int64(150), result.Coins)
		assert.Equal(t, int64(250), result.NewBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEconomyService_ApplyBankInterest(t *testing.T) {
	t.Run("credits daily interest capped at seven days", func(t *testing.T) {
		service, mock, cleanup := newTestEconomy(t)
		defer cleanup()

		now := time.Now()
		service.now = func() time.Time { return now }

		u := testUser("alice", 0, 1000)
		u.LastActive = now.Add(-72 * time.Hour)

		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs("alice").WillReturnRows(userRows(t, u))
		mock.ExpectExec("INSERT INTO transactions").WillReturnResult(sqlmock.NewResult(0, 1))
		// 1000 * 0.005 * 3 days = 15
		mock.ExpectExec("UPDATE users SET").
			WithArgs(int64(0), int64(1015), 1, int64(0), sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), false, "", "id-alice", 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, service.ApplyBankInterest("alice"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no interest within the first day", func(t *testing.T) {
		service, mock, cleanup := newTestEconomy(t)
		defer cleanup()

		u := testUser("alice", 0, 1000)
		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WithArgs("alice").WillReturnRows(userRows(t, u))
		mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, service.ApplyBankInterest("alice"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
