package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func newTestGames(t *testing.T, rng Rand) (*GameService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	service := NewGameService(db, nil)
	service.rng = rng
	return service, mock, func() { db.Close() }
}

func expectSettlement(mock sqlmock.Sqlmock, user *sqlmock.Rows) {
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(user)
	mock.ExpectExec("INSERT INTO transactions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

func TestValidateBet(t *testing.T) {
	assert.ErrorIs(t, validateBet(9), ErrInvalidBet)
	assert.NoError(t, validateBet(10))
	assert.NoError(t, validateBet(10000))
	assert.ErrorIs(t, validateBet(10001), ErrInvalidBet)
}

func TestGameService_Coinflip(t *testing.T) {
	t.Run("correct call pays 95 percent", func(t *testing.T) {
		service, mock, cleanup := newTestGames(t, &stubRand{ints: []int{0}}) // heads
		defer cleanup()

		expectSettlement(mock, userRows(t, testUser("alice", 1000, 0)))

		result, err := service.Coinflip("alice", 100, "heads")
		assert.NoError(t, err)
		assert.True(t, result.Win)
		assert.Equal(t, "heads", result.Result)
		assert.Equal(t, int64(95), result.Amount)
		assert.Equal(t, int64(1095), result.NewBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wrong call loses the full bet", func(t *testing.T) {
		service, mock, cleanup := newTestGames(t, &stubRand{ints: []int{0}}) // heads
		defer cleanup()

		expectSettlement(mock, userRows(t, testUser("alice", 1000, 0)))

		result, err := service.Coinflip("alice", 100, "tails")
		assert.NoError(t, err)
		assert.False(t, result.Win)
		assert.Equal(t, int64(-100), result.Amount)
		assert.Equal(t, int64(900), result.NewBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects an invalid choice", func(t *testing.T) {
		service, mock, cleanup := newTestGames(t, &stubRand{})
		defer cleanup()

		_, err := service.Coinflip("alice", 100, "edge")
		assert.ErrorIs(t, err, ErrInvalidBet)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects when wallet cannot cover the bet", func(t *testing.T) {
		service, mock, cleanup := newTestGames(t, &stubRand{ints: []int{0}})
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WillReturnRows(userRows(t, testUser("alice", 50, 0)))
		mock.ExpectRollback()

		_, err := service.Coinflip("alice", 100, "heads")
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGameService_Slots(t *testing.T) {
	t.Run("three of a kind pays the symbol multiplier", func(t *testing.T) {
		// Index 3 is the money bag, the 50x symbol.
		service, mock, cleanup := newTestGames(t, &stubRand{ints: []int{3, 3, 3}})
		defer cleanup()

		expectSettlement(mock, userRows(t, testUser("alice", 1000, 0)))

		result, err := service.Slots("alice", 100)
		assert.NoError(t, err)
		assert.True(t, result.Win)
		assert.Equal(t, int64(50), result.Multiplier)
		assert.Equal(t, int64(4900), result.Amount) // 100*50 - 100
		assert.Equal(t, int64(5900), result.NewBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("two matching pays double", func(t *testing.T) {
		service, mock, cleanup := newTestGames(t, &stubRand{ints: []int{0, 0, 1}})
		defer cleanup()

		expectSettlement(mock, userRows(t, testUser("alice", 1000, 0)))

		result, err := service.Slots("alice", 100)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), result.Multiplier)
		assert.Equal(t, int64(100), result.Amount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no match loses the bet", func(t *testing.T) {
		service, mock, cleanup := newTestGames(t, &stubRand{ints: []int{0, 1, 2}})
		defer cleanup()

		expectSettlement(mock, userRows(t, testUser("alice", 1000, 0)))

		result, err := service.Slots("alice", 100)
		assert.NoError(t, err)
		assert.False(t, result.Win)
		assert.Equal(t, int64(-100), result.Amount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSlotMultipliers(t *testing.T) {
	// Every reel symbol must have a payout entry.
	for _, symbol := range slotSymbols {
		assert.Contains(t, slotMultipliers, symbol)
	}
	assert.Equal(t, int64(50), slotMultipliers["💰"])
	assert.Equal(t, int64(5), slotMultipliers["🐸"])
}

func TestGameService_Blackjack(t *testing.T) {
	t.Run("outscoring the dealer under 22 wins", func(t *testing.T) {
		// Player 15+6=21, dealer 15+0=15.
		service, mock, cleanup := newTestGames(t, &stubRand{ints: []int{6, 0}})
		defer cleanup()

		expectSettlement(mock, userRows(t, testUser("alice", 1000, 0)))

		result, err := service.Blackjack("alice", 100)
		assert.NoError(t, err)
		assert.True(t, result.Win)
		assert.Equal(t, 21, result.PlayerScore)
		assert.Equal(t, 15, result.DealerScore)
		assert.Equal(t, int64(195), result.Amount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("busting past 21 loses even when higher", func(t *testing.T) {
		// Player 15+10=25, dealer 15+0=15.
		service, mock, cleanup := newTestGames(t, &stubRand{ints: []int{10, 0}})
		defer cleanup()

		expectSettlement(mock, userRows(t, testUser("alice", 1000, 0)))

		result, err := service.Blackjack("alice", 100)
		assert.NoError(t, err)
		assert.False(t, result.Win)
		assert.Equal(t, int64(-100), result.Amount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ties go to the dealer", func(t *testing.T) {
		service, mock, cleanup := newTestGames(t, &stubRand{ints: []int{3, 3}})
		defer cleanup()

		expectSettlement(mock, userRows(t, testUser("alice", 1000, 0)))

		result, err := service.Blackjack("alice", 100)
		assert.NoError(t, err)
		assert.False(t, result.Win)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGameService_Trivia(t *testing.T) {
	t.Run("question payload never leaks the answer index", func(t *testing.T) {
		service, _, cleanup := newTestGames(t, &stubRand{ints: []int{2}})
		defer cleanup()

		q := service.TriviaQuestion()
		assert.Equal(t, 2, q.QuestionID)
		assert.Equal(t, triviaQuestions[2].Question, q.Question)
		assert.Equal(t, triviaQuestions[2].Options, q.Options)
	})

	t.Run("correct answer pays 100 coins and 20 XP", func(t *testing.T) {
		service, mock, cleanup := newTestGames(t, &stubRand{})
		defer cleanup()

		expectSettlement(mock, userRows(t, testUser("alice", 0, 0)))

		result, err := service.SubmitTrivia("alice", 0, triviaQuestions[0].Correct)
		assert.NoError(t, err)
		assert.True(t, result.Win)
		assert.Equal(t, int64(100), result.Amount)
		assert.Equal(t, int64(100), result.NewBalance)
		assert.Equal(t, int64(20), result.NewXP)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wrong answer costs nothing", func(t *testing.T) {
		service, mock, cleanup := newTestGames(t, &stubRand{})
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").WillReturnRows(userRows(t, testUser("alice", 500, 0)))
		mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		wrong := (triviaQuestions[0].Correct + 1) % len(triviaQuestions[0].Options)
		result, err := service.SubmitTrivia("alice", 0, wrong)
		assert.NoError(t, err)
		assert.False(t, result.Win)
		assert.Equal(t, int64(0), result.Amount)
		assert.Equal(t, int64(500), result.NewBalance)
		assert.Equal(t, triviaQuestions[0].Options[triviaQuestions[0].Correct], result.CorrectAnswer)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown question is a 404", func(t *testing.T) {
		service, mock, cleanup := newTestGames(t, &stubRand{})
		defer cleanup()

		_, err := service.SubmitTrivia("alice", len(triviaQuestions), 0)
		assert.ErrorIs(t, err, ErrQuestionNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
