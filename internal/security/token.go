package security

import (
	"errors"
	"strconv"
	"time"

	"memberhub-backend/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrWrongTokenType = errors.New("wrong token type for this endpoint")
)

type TokenType string

const (
	// TokenTypeAuth is the JWT carried in the auth_token cookie.
	TokenTypeAuth TokenType = "auth"
	// TokenTypeFormGate is the short-lived marker set after invitation
	// code verification, granting access to the registration form.
	TokenTypeFormGate TokenType = "form_gate"
)

// Claims defines the token payload for both token types.
type Claims struct {
	UserID int32       `json:"user_id,omitempty"`
	Email  string      `json:"email,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
	Type   TokenType   `json:"type"`
	Code   string      `json:"code,omitempty"` // invitation code, form_gate only
	jwt.RegisteredClaims
}

type TokenManager interface {
	GenerateAuthToken(userID int32, email string, role domain.Role) (string, error)
	GenerateFormGateToken(code, email string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
	AuthTTL() time.Duration
	GateTTL() time.Duration
}

type tokenManager struct {
	secret  []byte
	authTTL time.Duration
	gateTTL time.Duration
}

func NewTokenManager(secret string, authTTL, gateTTL time.Duration) TokenManager {
	return &tokenManager{
		secret:  []byte(secret),
		authTTL: authTTL,
		gateTTL: gateTTL,
	}
}

func (m *tokenManager) AuthTTL() time.Duration { return m.authTTL }
func (m *tokenManager) GateTTL() time.Duration { return m.gateTTL }

func (m *tokenManager) GenerateAuthToken(userID int32, email string, role domain.Role) (string, error) {
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Type:   TokenTypeAuth,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(userID)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.authTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "memberhub",
			ID:        generateJTI(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) GenerateFormGateToken(code, email string) (string, error) {
	claims := Claims{
		Email: email,
		Type:  TokenTypeFormGate,
		Code:  code,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.gateTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "memberhub",
			ID:        generateJTI(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if claims.UserID == 0 && claims.Subject != "" {
			uid, _ := strconv.Atoi(claims.Subject)
			claims.UserID = int32(uid)
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// Simple unique ID generator
func generateJTI() string {
	return strconv.FormatInt(time.Now().UnixNano(), 16)
}
