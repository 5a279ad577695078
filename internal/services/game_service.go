package services

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/memeconomy/backend/internal/models"
)

const (
	gameMinBet = 10
	gameMaxBet = 10000
)

// GameService settles mini-game bets (blackjack, slots, coinflip, trivia)
// against the ledger using the same atomic cycle as the economy engine.
type GameService struct {
	ledger      *LedgerStore
	leaderboard *LeaderboardService
	rng         Rand
	validation  *ValidationHelper
}

func NewGameService(db *sql.DB, redisClient *redis.Client) *GameService {
	return &GameService{
		ledger:      NewLedgerStore(db),
		leaderboard: NewLeaderboardService(db, redisClient),
		rng:         NewSecureRand(),
		validation:  NewValidationHelper(),
	}
}

func validateBet(bet int64) error {
	if bet < gameMinBet || bet > gameMaxBet {
		return fmt.Errorf("%w: bet must be between %d and %d coins", ErrInvalidBet, gameMinBet, gameMaxBet)
	}
	return nil
}

// settleWager applies a computed net amount to the wallet, bumps the win/loss
// counter, and writes one transaction per play. The bet must be covered by
// the wallet at settlement time.
func (s *GameService) settleWager(username string, bet, amount int64, win bool, desc string, stat func(*models.GameStats)) (int64, error) {
	var newBalance, netWorth int64
	err := s.ledger.WithUser(username, func(tx *sql.Tx, u *models.User) error {
		if u.Coins < bet {
			return ErrInsufficientFunds
		}
		u.Coins += amount
		stat(&u.GameStats)

		txType := models.TxEarn
		if !win {
			txType = models.TxSpend
		}
		abs := amount
		if abs < 0 {
			abs = -abs
		}
		if err := s.ledger.appendTransactionTx(tx, models.Transaction{
			User:        username,
			Type:        txType,
			Amount:      abs,
			Description: desc,
		}); err != nil {
			return err
		}
		newBalance = u.Coins
		netWorth = u.NetWorth()
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.leaderboard.Publish(username, netWorth)
	return newBalance, nil
}

// BlackjackResult is returned by blackjack plays.
type BlackjackResult struct {
	Win         bool  `json:"win"`
	Amount      int64 `json:"amount"`
	PlayerScore int   `json:"playerScore"`
	DealerScore int   `json:"dealerScore"`
	NewBalance  int64 `json:"newBalance"`
}

// cardScore draws a simplified blackjack hand total in [15, 25].
func (s *GameService) cardScore() int {
	return 15 + s.rng.Intn(11)
}

// Blackjack wins iff the player outscores the dealer without busting 21;
// payout is floor(bet*1.95) for the house edge.
func (s *GameService) Blackjack(username string, bet int64) (*BlackjackResult, error) {
	if err := validateBet(bet); err != nil {
		return nil, err
	}

	playerScore := s.cardScore()
	dealerScore := s.cardScore()
	win := playerScore > dealerScore && playerScore <= 21

	amount := -bet
	if win {
		amount = feeOf(bet, 1.95)
	}

	verdict := "loss"
	if win {
		verdict = "win"
	}
	newBalance, err := s.settleWager(username, bet, amount, win,
		fmt.Sprintf("Blackjack %s: %d vs %d", verdict, playerScore, dealerScore),
		func(gs *models.GameStats) {
			if win {
				gs.BlackjackWins++
			} else {
				gs.BlackjackLosses++
			}
		})
	if err != nil {
		return nil, err
	}

	return &BlackjackResult{
		Win:         win,
		Amount:      amount,
		PlayerScore: playerScore,
		DealerScore: dealerScore,
		NewBalance:  newBalance,
	}, nil
}

var slotSymbols = []string{"🐸", "💎", "🚀", "💰", "🔥"}

var slotMultipliers = map[string]int64{
	"💰": 50,
	"💎": 25,
	"🚀": 15,
	"🔥": 10,
	"🐸": 5,
}

// SlotsResult is returned by slots plays.
type SlotsResult struct {
	Win        bool     `json:"win"`
	Amount     int64    `json:"amount"`
	Reels      []string `json:"reels"`
	Multiplier int64    `json:"multiplier"`
	NewBalance int64    `json:"newBalance"`
}

// Slots draws three independent reels. Three of a kind pays the symbol's
// multiplier, any two matching pays 2x, nothing matching loses the bet.
func (s *GameService) Slots(username string, bet int64) (*SlotsResult, error) {
	if err := validateBet(bet); err != nil {
		return nil, err
	}

	reels := []string{
		slotSymbols[s.rng.Intn(len(slotSymbols))],
		slotSymbols[s.rng.Intn(len(slotSymbols))],
		slotSymbols[s.rng.Intn(len(slotSymbols))],
	}

	var multiplier int64
	switch {
	case reels[0] == reels[1] && reels[1] == reels[2]:
		multiplier = slotMultipliers[reels[0]]
	case reels[0] == reels[1] || reels[1] == reels[2] || reels[0] == reels[2]:
		multiplier = 2
	}

	win := multiplier > 0
	amount := -bet
	if win {
		amount = bet*multiplier - bet
	}

	verdict := "loss"
	if win {
		verdict = "win"
	}
	newBalance, err := s.settleWager(username, bet, amount, win,
		fmt.Sprintf("Slots %s: %s %s %s (%dx)", verdict, reels[0], reels[1], reels[2], multiplier),
		func(gs *models.GameStats) {
			if win {
				gs.SlotsWins++
			} else {
				gs.SlotsLosses++
			}
		})
	if err != nil {
		return nil, err
	}

	return &SlotsResult{
		Win:        win,
		Amount:     amount,
		Reels:      reels,
		Multiplier: multiplier,
		NewBalance: newBalance,
	}, nil
}

// CoinflipResult is returned by coinflip plays.
type CoinflipResult struct {
	Win        bool   `json:"win"`
	Amount     int64  `json:"amount"`
	Result     string `json:"result"`
	Choice     string `json:"choice"`
	NewBalance int64  `json:"newBalance"`
}

// Coinflip pays floor(bet*0.95) on a correct call and loses the full bet
// otherwise.
func (s *GameService) Coinflip(username string, bet int64, choice string) (*CoinflipResult, error) {
	if err := validateBet(bet); err != nil {
		return nil, err
	}
	if choice != "heads" && choice != "tails" {
		return nil, fmt.Errorf("%w: choice must be heads or tails", ErrInvalidBet)
	}

	result := "tails"
	if s.rng.Intn(2) == 0 {
		result = "heads"
	}
	win := choice == result

	amount := -bet
	if win {
		amount = feeOf(bet, 0.95)
	}

	verdict := "loss"
	if win {
		verdict = "win"
	}
	newBalance, err := s.settleWager(username, bet, amount, win,
		fmt.Sprintf("Coinflip %s: %s vs %s", verdict, choice, result),
		func(gs *models.GameStats) {
			if win {
				gs.CoinflipWins++
			} else {
				gs.CoinflipLosses++
			}
		})
	if err != nil {
		return nil, err
	}

	return &CoinflipResult{
		Win:        win,
		Amount:     amount,
		Result:     result,
		Choice:     choice,
		NewBalance: newBalance,
	}, nil
}

type triviaQuestion struct {
	Question string
	Options  []string
	Correct  int
}

var triviaQuestions = []triviaQuestion{
	{
		Question: "Which year did the Doge meme first appear?",
		Options:  []string{"2010", "2013", "2016", "2019"},
		Correct:  1,
	},
	{
		Question: "What animal is Pepe?",
		Options:  []string{"A toad", "A frog", "A lizard", "A newt"},
		Correct:  1,
	},
	{
		Question: "What does HODL originally come from?",
		Options:  []string{"Hold On for Dear Life", "A misspelling of 'hold'", "High Order Decentralized Ledger", "A trading bot"},
		Correct:  1,
	},
	{
		Question: "Which meme features a dog sitting in a burning room?",
		Options:  []string{"Doge", "This Is Fine", "Bad Luck Brian", "Grumpy Cat"},
		Correct:  1,
	},
	{
		Question: "What breed of dog is Doge?",
		Options:  []string{"Akita", "Shiba Inu", "Corgi", "Samoyed"},
		Correct:  1,
	},
	{
		Question: "'Stonks' is a deliberate misspelling of what word?",
		Options:  []string{"Stocks", "Stongs", "Stinks", "Monks"},
		Correct:  0,
	},
	{
		Question: "Which meme coin started as a joke in 2013?",
		Options:  []string{"Bitcoin", "Ethereum", "Dogecoin", "Tether"},
		Correct:  2,
	},
	{
		Question: "What phrase accompanies the Distracted Boyfriend meme?",
		Options:  []string{"One does not simply", "Y u no", "Me / also me", "It varies by caption"},
		Correct:  3,
	},
}

// TriviaQuestionResult is the GET payload: the question without its answer.
type TriviaQuestionResult struct {
	QuestionID int      `json:"questionId"`
	Question   string   `json:"question"`
	Options    []string `json:"options"`
}

// TriviaResult is returned by answer submission.
type TriviaResult struct {
	Win           bool   `json:"win"`
	Amount        int64  `json:"amount"`
	CorrectAnswer string `json:"correctAnswer"`
	NewBalance    int64  `json:"newBalance"`
	NewXP         int64  `json:"newXP"`
}

// TriviaQuestion returns a random question. Fetching costs nothing and
// consumes no cooldown.
func (s *GameService) TriviaQuestion() *TriviaQuestionResult {
	id := s.rng.Intn(len(triviaQuestions))
	q := triviaQuestions[id]
	return &TriviaQuestionResult{
		QuestionID: id,
		Question:   q.Question,
		Options:    q.Options,
	}
}

// SubmitTrivia checks an answer. Correct answers pay 100 coins and 20 XP;
// wrong answers cost nothing. The only game with no house edge.
func (s *GameService) SubmitTrivia(username string, questionID, answer int) (*TriviaResult, error) {
	if questionID < 0 || questionID >= len(triviaQuestions) {
		return nil, ErrQuestionNotFound
	}
	q := triviaQuestions[questionID]
	win := answer == q.Correct

	var result *TriviaResult
	var netWorth int64
	err := s.ledger.WithUser(username, func(tx *sql.Tx, u *models.User) error {
		var amount int64
		if win {
			amount = 100
			u.Coins += amount
			addXP(u, 20)
			u.GameStats.TriviaWins++

			if err := s.ledger.appendTransactionTx(tx, models.Transaction{
				User:        username,
				Type:        models.TxEarn,
				Amount:      amount,
				Description: "Trivia correct answer: +100 coins, +20 XP",
			}); err != nil {
				return err
			}
		} else {
			u.GameStats.TriviaLosses++
		}

		result = &TriviaResult{
			Win:           win,
			Amount:        amount,
			CorrectAnswer: q.Options[q.Correct],
			NewBalance:    u.Coins,
			NewXP:         u.XP,
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

type betRequest struct {
	Bet int64 `json:"bet" validate:"required,gt=0"`
}

// HandleBlackjack godoc
// @Summary Play blackjack
// @Tags games
// @Accept json
// @Produce json
// @Param request body betRequest true "Bet amount"
// @Success 200 {object} BlackjackResult
// @Failure 400 {object} ErrorResponse
// @Router /games/blackjack [post]
// @Security BearerAuth
func (s *GameService) HandleBlackjack(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req betRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := s.validation.ValidateStruct(req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result, err := s.Blackjack(username, req.Bet)
	if err != nil {
		log.Printf("[GAMES] Blackjack rejected for %s: %v", username, err)
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	WriteJSONResponse(w, http.StatusOK, result)
}

// HandleSlots godoc
// @Summary Play slots
// @Tags games
// @Accept json
// @Produce json
// @Param request body betRequest true "Bet amount"
// @Success 200 {object} SlotsResult
// @Failure 400 {object} ErrorResponse
// @Router /games/slots [post]
// @Security BearerAuth
func (s *GameService) HandleSlots(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req betRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := s.validation.ValidateStruct(req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result, err := s.Slots(username, req.Bet)
	if err != nil {
		log.Printf("[GAMES] Slots rejected for %s: %v", username, err)
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	WriteJSONResponse(w, http.StatusOK, result)
}

type coinflipRequest struct {
	Bet    int64  `json:"bet" validate:"required,gt=0"`
	Choice string `json:"choice" validate:"required,oneof=heads tails"`
}

// HandleCoinflip godoc
// @Summary Play coinflip
// @Tags games
// @Accept json
// @Produce json
// @Param request body coinflipRequest true "Bet and choice"
// @Success 200 {object} CoinflipResult
// @Failure 400 {object} ErrorResponse
// @Router /games/coinflip [post]
// @Security BearerAuth
func (s *GameService) HandleCoinflip(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req coinflipRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := s.validation.ValidateStruct(req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result, err := s.Coinflip(username, req.Bet, req.Choice)
	if err != nil {
		log.Printf("[GAMES] Coinflip rejected for %s: %v", username, err)
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	WriteJSONResponse(w, http.StatusOK, result)
}

// HandleTriviaQuestion godoc
// @Summary Get a trivia question
// @Tags games
// @Produce json
// @Success 200 {object} TriviaQuestionResult
// @Router /games/trivia [get]
// @Security BearerAuth
func (s *GameService) HandleTriviaQuestion(w http.ResponseWriter, r *http.Request) {
	if _, ok := requestUsername(r); !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	WriteJSONResponse(w, http.StatusOK, s.TriviaQuestion())
}

type triviaAnswerRequest struct {
	QuestionID *int `json:"questionId" validate:"required"`
	Answer     *int `json:"answer" validate:"required"`
}

// HandleTriviaAnswer godoc
// @Summary Submit a trivia answer
// @Tags games
// @Accept json
// @Produce json
// @Param request body triviaAnswerRequest true "Question and answer index"
// @Success 200 {object} TriviaResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /games/trivia [post]
// @Security BearerAuth
func (s *GameService) HandleTriviaAnswer(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUsername(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req triviaAnswerRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := s.validation.ValidateStruct(req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result, err := s.SubmitTrivia(username, *req.QuestionID, *req.Answer)
	if err != nil {
		log.Printf("[GAMES] Trivia answer rejected for %s: %v", username, err)
		SendErrorResponse(w, err.Error(), errorStatus(err), nil)
		return
	}
	WriteJSONResponse(w, http.StatusOK, result)
}
