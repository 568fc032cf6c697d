package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims carried by both access and refresh tokens.
type Claims struct {
	OperatorID int64  `json:"operator_id"`
	Email      string `json:"email"`
	TokenKind  string `json:"kind"`
	jwt.RegisteredClaims
}

const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenGenerator creates and validates operator tokens.
type TokenGenerator interface {
	GenerateAccessToken(operatorID int64, email string) (string, error)
	GenerateRefreshToken(operatorID int64, email string) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}
