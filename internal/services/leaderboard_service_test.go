package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
)

func TestLeaderboardService_Publish(t *testing.T) {
	t.Run("updates the sorted set", func(t *testing.T) {
		redisClient, redisMock := redismock.NewClientMock()
		service := NewLeaderboardService(nil, redisClient)

		redisMock.ExpectZAdd(leaderboardKey, &redis.Z{Score: 1500, Member: "alice"}).SetVal(1)
		service.Publish("alice", 1500)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("nil client is a no-op", func(t *testing.T) {
		service := NewLeaderboardService(nil, nil)
		service.Publish("alice", 1500)
	})
}

func TestLeaderboardService_Remove(t *testing.T) {
	redisClient, redisMock := redismock.NewClientMock()
	service := NewLeaderboardService(nil, redisClient)

	redisMock.ExpectZRem(leaderboardKey, "alice").SetVal(1)
	service.Remove("alice")
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestLeaderboardService_Top(t *testing.T) {
	t.Run("ranks from redis with levels from SQL", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		redisClient, redisMock := redismock.NewClientMock()
		service := NewLeaderboardService(db, redisClient)

		redisMock.ExpectZRevRangeWithScores(leaderboardKey, 0, 9).SetVal([]redis.Z{
			{Score: 5000, Member: "alice"},
			{Score: 1200, Member: "bob"},
		})
		mock.ExpectQuery("SELECT username, level FROM users").
			WillReturnRows(sqlmock.NewRows([]string{"username", "level"}).
				AddRow("alice", 7).
				AddRow("bob", 3))

		entries, err := service.Top(10)
		assert.NoError(t, err)
		assert.Len(t, entries, 2)
		assert.Equal(t, LeaderboardEntry{Rank: 1, Username: "alice", NetWorth: 5000, Level: 7}, entries[0])
		assert.Equal(t, LeaderboardEntry{Rank: 2, Username: "bob", NetWorth: 1200, Level: 3}, entries[1])
		assert.NoError(t, redisMock.ExpectationsWereMet())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty redis ranking falls back to SQL", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		redisClient, redisMock := redismock.NewClientMock()
		service := NewLeaderboardService(db, redisClient)

		redisMock.ExpectZRevRangeWithScores(leaderboardKey, 0, 9).SetVal([]redis.Z{})
		mock.ExpectQuery("ORDER BY net_worth DESC").WithArgs(10).
			WillReturnRows(sqlmock.NewRows([]string{"username", "net_worth", "level"}).
				AddRow("alice", 5000, 7))

		entries, err := service.Top(10)
		assert.NoError(t, err)
		assert.Len(t, entries, 1)
		assert.Equal(t, "alice", entries[0].Username)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no redis client goes straight to SQL", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		service := NewLeaderboardService(db, nil)

		mock.ExpectQuery("ORDER BY net_worth DESC").WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"username", "net_worth", "level"}).
				AddRow("alice", 5000, 7).
				AddRow("bob", 1200, 3))

		entries, err := service.Top(5)
		assert.NoError(t, err)
		assert.Len(t, entries, 2)
		assert.Equal(t, 2, entries[1].Rank)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
