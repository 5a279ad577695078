package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/skip2/go-qrcode"
)

// QRService issues shareable transfer-request codes: "send me N coins". A
// scanned code resolves to the requester and amount, which the client feeds
// into the normal transfer endpoint. Codes are single-use and expire after
// five minutes. Codes live in Redis, so the feature reports unavailable when
// the server runs without it.
type QRService struct {
	db    *sql.DB
	redis *redis.Client
}

func NewQRService(db *sql.DB, redis *redis.Client) *QRService {
	return &QRService{
		db:    db,
		redis: redis,
	}
}

// TransferRequest is the payload encoded in a transfer-request code.
type TransferRequest struct {
	Username  string `json:"username"`
	Amount    int64  `json:"amount"`
	Message   string `json:"message,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Nonce     string `json:"nonce"`
}

// GenerateTransferRequest creates a code requesting amount coins for
// username and returns the opaque code plus a base64 PNG rendering.
func (s *QRService) GenerateTransferRequest(ctx context.Context, username string, amount int64, message string) (string, string, error) {
	if s.redis == nil {
		return "", "", ErrQRUnavailable
	}

	request := TransferRequest{
		Username:  username,
		Amount:    amount,
		Message:   message,
		Timestamp: time.Now().Unix(),
		Nonce:     s.generateNonce(),
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", "", err
	}

	code := base64.URLEncoding.EncodeToString(jsonData)

	key := fmt.Sprintf("qr:%s", code)
	if err := s.redis.Set(ctx, key, jsonData, 5*time.Minute).Err(); err != nil {
		return "", "", err
	}

	qr, err := qrcode.New(code, qrcode.Medium)
	if err != nil {
		return "", "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(256)); err != nil {
		return "", "", err
	}

	qrImage := base64.StdEncoding.EncodeToString(buf.Bytes())

	return code, qrImage, nil
}

// ResolveTransferRequest consumes a scanned code. Codes resolve exactly
// once; a second scan fails as expired.
func (s *QRService) ResolveTransferRequest(ctx context.Context, code string) (*TransferRequest, error) {
	if s.redis == nil {
		return nil, ErrQRUnavailable
	}

	key := fmt.Sprintf("qr:%s", code)

	data, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("invalid or expired transfer request")
	}
	if err != nil {
		return nil, err
	}

	var request TransferRequest
	if err := json.Unmarshal(data, &request); err != nil {
		return nil, err
	}

	s.redis.Del(ctx, key)

	return &request, nil
}

func (s *QRService) generateNonce() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
