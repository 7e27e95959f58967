package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrWrongKind    = errors.New("unexpected token kind")
)

const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

type Claims struct {
	UserID uint   `json:"user_id"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 access/refresh token pairs.
// Refresh tokens carry a uuid jti so they can be revoked server-side.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	RefreshTokenID   string
	RefreshExpiresAt time.Time
}

func (m *TokenManager) Issue(userID uint) (*TokenPair, error) {
	now := time.Now()

	accessClaims := &Claims{
		UserID: userID,
		Kind:   KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(m.secret)

	if err != nil {
		return nil, err
	}

	refreshID := uuid.NewString()
	refreshExpiry := now.Add(m.refreshTTL)

	refreshClaims := &Claims{
		UserID: userID,
		Kind:   KindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        refreshID,
			ExpiresAt: jwt.NewNumericDate(refreshExpiry),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(m.secret)

	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		RefreshTokenID:   refreshID,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}

func (m *TokenManager) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)

	if !ok {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (m *TokenManager) VerifyAccess(tokenString string) (*Claims, error) {
	claims, err := m.parse(tokenString)

	if err != nil {
		return nil, err
	}

	if claims.Kind != KindAccess {
		return nil, ErrWrongKind
	}

	return claims, nil
}

func (m *TokenManager) VerifyRefresh(tokenString string) (*Claims, error) {
	claims, err := m.parse(tokenString)

	if err != nil {
		return nil, err
	}

	if claims.Kind != KindRefresh {
		return nil, ErrWrongKind
	}

	return claims, nil
}
