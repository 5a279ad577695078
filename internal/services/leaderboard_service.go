package services

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/lib/pq"
)

const leaderboardKey = "leaderboard:networth"

// LeaderboardService ranks users by net worth (coins + bank). Rankings live
// in a Redis sorted set refreshed on every balance change; when Redis is
// unavailable the ranking falls back to a direct SQL scan.
type LeaderboardService struct {
	db          *sql.DB
	redisClient *redis.Client
}

func NewLeaderboardService(db *sql.DB, redisClient *redis.Client) *LeaderboardService {
	return &LeaderboardService{db: db, redisClient: redisClient}
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	NetWorth int64  `json:"netWorth"`
	Level    int    `json:"level"`
}

// Publish updates the user's score after a committed balance change. Failures
// are logged, never surfaced: the ledger is the source of truth and the next
// balance change re-publishes.
func (s *LeaderboardService) Publish(username string, netWorth int64) {
	if s.redisClient == nil {
		return
	}
	ctx := context.Background()
	err := s.redisClient.ZAdd(ctx, leaderboardKey, &redis.Z{
		Score:  float64(netWorth),
		Member: username,
	}).Err()
	if err != nil {
		log.Printf("[LEADERBOARD] Failed to publish score for %s: %v", username, err)
	}
}

// Remove drops a user from the ranking, used when an account is banned.
func (s *LeaderboardService) Remove(username string) {
	if s.redisClient == nil {
		return
	}
	ctx := context.Background()
	if err := s.redisClient.ZRem(ctx, leaderboardKey, username).Err(); err != nil {
		log.Printf("[LEADERBOARD] Failed to remove %s: %v", username, err)
	}
}

// Top returns the highest-ranked users.
func (s *LeaderboardService) Top(limit int) ([]LeaderboardEntry, error) {
	if s.redisClient != nil {
		entries, err := s.topFromRedis(limit)
		if err == nil {
			return entries, nil
		}
		log.Printf("[LEADERBOARD] Redis ranking unavailable, falling back to SQL: %v", err)
	}
	return s.topFromSQL(limit)
}

func (s *LeaderboardService) topFromRedis(limit int) ([]LeaderboardEntry, error) {
	ctx := context.Background()
	scores, err := s.redisClient.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, redis.Nil
	}

	usernames := make([]string, 0, len(scores))
	for _, z := range scores {
		usernames = append(usernames, z.Member.(string))
	}
	levels, err := s.levelsFor(usernames)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(scores))
	for i, z := range scores {
		username := z.Member.(string)
		entries = append(entries, LeaderboardEntry{
			Rank:     i + 1,
			Username: username,
			NetWorth: int64(z.Score),
			Level:    levels[username],
		})
	}
	return entries, nil
}

func (s *LeaderboardService) levelsFor(usernames []string) (map[string]int, error) {
	rows, err := s.db.Query(`SELECT username, level FROM users WHERE username = ANY($1)`, pq.Array(usernames))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	levels := make(map[string]int, len(usernames))
	for rows.Next() {
		var username string
		var level int
		if err := rows.Scan(&username, &level); err != nil {
			return nil, err
		}
		levels[username] = level
	}
	return levels, rows.Err()
}

func (s *LeaderboardService) topFromSQL(limit int) ([]LeaderboardEntry, error) {
	rows, err := s.db.Query(`
		SELECT username, coins + bank AS net_worth, level
		FROM users
		WHERE banned = FALSE
		ORDER BY net_worth DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.NetWorth, &e.Level); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// HandleLeaderboard godoc
// @Summary Net worth leaderboard
// @Description Returns the top users ranked by coins + bank, excluding banned accounts
// @Tags leaderboard
// @Produce json
// @Param limit query int false "Number of entries (default 10, max 100)"
// @Success 200 {array} LeaderboardEntry
// @Router /leaderboard [get]
func (s *LeaderboardService) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
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

	entries, err := s.Top(limit)
	if err != nil {
		log.Printf("[LEADERBOARD] Failed to load ranking: %v", err)
		SendErrorResponse(w, "Failed to load leaderboard", http.StatusInternalServerError, nil)
		return
	}
	if entries == nil {
		entries = []LeaderboardEntry{}
	}
	WriteJSONResponse(w, http.StatusOK, entries)
}
