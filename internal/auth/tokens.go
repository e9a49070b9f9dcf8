package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/thejerf/abtime"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("auth: token is invalid or expired")

// Claims carried by both token types. The token_type claim is what keeps a
// refresh token from being presented as a bearer credential and vice versa.
type Claims struct {
	TokenType string `json:"token_type"`
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// TokenPair is the envelope returned by register and login.
type TokenPair struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

// Issuer creates and verifies HS256-signed tokens with a single secret.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	clock      abtime.AbstractTime
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration, clock abtime.AbstractTime) *Issuer {
	if clock == nil {
		clock = abtime.NewRealTime()
	}
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		clock:      clock,
	}
}

// Pair issues a fresh refresh+access pair bound to the given identity.
func (i *Issuer) Pair(userID int64, email string) (TokenPair, error) {
	refresh, err := i.sign(TypeRefresh, userID, email, i.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	access, err := i.sign(TypeAccess, userID, email, i.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Refresh: refresh, Access: access}, nil
}

// Access issues a lone access token, used by the refresh endpoint.
func (i *Issuer) Access(userID int64, email string) (string, error) {
	return i.sign(TypeAccess, userID, email, i.accessTTL)
}

func (i *Issuer) sign(tokenType string, userID int64, email string, ttl time.Duration) (string, error) {
	if len(i.secret) == 0 {
		return "", errors.New("auth: secret not configured")
	}

	now := i.clock.Now()
	claims := Claims{
		TokenType: tokenType,
		UserID:    userID,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// Verify checks signature, expiry and token type. Expiry is checked against
// the issuer's clock rather than the library's so tests can move time.
func (i *Issuer) Verify(tokenStr, wantType string) (*Claims, error) {
	claims, err := i.parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyAny accepts either token type; the verify endpoint does not care
// which kind it was handed.
func (i *Issuer) VerifyAny(tokenStr string) (*Claims, error) {
	return i.parse(tokenStr)
}

func (i *Issuer) parse(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(i.clock.Now),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.ExpiresAt == nil || !i.clock.Now().Before(claims.ExpiresAt.Time) {
		return nil, ErrInvalidToken
	}
	if claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}
