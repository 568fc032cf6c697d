package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	internal "github.com/mostafaSataki/LprParkingWeb-sub000/internal"
	operatorDatamodel "github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/datamodel/operator"
)

// dummyPasswordHash is a well-formed bcrypt hash compared against when the
// email is unknown, keeping the work roughly constant either way.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type OperatorRepository interface {
	GetByEmail(email string) (*operatorDatamodel.Operator, error)
	GetByID(id int64) (*operatorDatamodel.Operator, error)
}

type Service struct {
	operators      OperatorRepository
	tokenGenerator TokenGenerator
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(operators OperatorRepository, tokenGen TokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		operators:      operators,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL == 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL == 0 {
		refreshTTL = 24 * 7 * time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

// Authenticate verifies operator credentials and issues a token pair. The
// bcrypt comparison runs even for unknown emails so response timing does not
// leak which addresses exist.
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	op, err := s.operators.GetByEmail(dto.Email)
	if err != nil {
		bcrypt.CompareHashAndPassword([]byte(dummyPasswordHash), []byte(dto.Password))
		s.logger.Warn("login attempt for unknown operator", "email", dto.Email)
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.Warn("login attempt with wrong password", "operator_id", op.ID)
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if !op.IsActive {
		return AuthTokens{}, internal.ErrOperatorInactive
	}

	return s.issueTokens(op.ID, op.Email)
}

// RefreshTokens exchanges a valid refresh token for a new pair. The operator
// is re-checked so a deactivated account cannot keep refreshing.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	op, err := s.operators.GetByID(claims.OperatorID)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidToken
	}
	if !op.IsActive {
		return AuthTokens{}, internal.ErrOperatorInactive
	}

	return s.issueTokens(op.ID, op.Email)
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *Service) issueTokens(operatorID int64, email string) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(operatorID, email)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to generate access token", err)
	}
	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(operatorID, email)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to generate refresh token", err)
	}
	return AuthTokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (j *JWTTokenGenerator) GenerateAccessToken(operatorID int64, email string) (string, error) {
	return j.generate(operatorID, email, TokenKindAccess, j.AccessTokenTTL, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) GenerateRefreshToken(operatorID int64, email string) (string, error) {
	return j.generate(operatorID, email, TokenKindRefresh, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) generate(operatorID int64, email, kind string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := &Claims{
		OperatorID: operatorID,
		Email:      email,
		TokenKind:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(operatorID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (j *JWTTokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, TokenKindAccess, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, TokenKindRefresh, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) validate(tokenString, kind string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenKind != kind {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}
