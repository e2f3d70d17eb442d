package github

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sandevgo/hubgram/internal/core"
)

const defaultStateTTL = 15 * time.Minute

type stateClaims struct {
	MessageID int `json:"mid"`
	jwt.RegisteredClaims
}

// StateCodec packs (user id, message id) into a signed, expiring OAuth
// state parameter.
type StateCodec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewStateCodec(secret string) (*StateCodec, error) {
	if secret == "" {
		return nil, errors.New("state secret is empty")
	}
	return &StateCodec{
		key: []byte(secret),
		ttl: defaultStateTTL,
		now: time.Now,
	}, nil
}

func (s *StateCodec) Encode(userID int64, messageID int) (string, error) {
	now := s.now()
	claims := stateClaims{
		MessageID: messageID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign state: %w", err)
	}
	return token, nil
}

func (s *StateCodec) Decode(state string) (int64, int, error) {
	claims := &stateClaims{}
	_, err := jwt.ParseWithClaims(state, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, 0, errors.Join(core.ErrInvalidState, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad subject %q", core.ErrInvalidState, claims.Subject)
	}
	return userID, claims.MessageID, nil
}
