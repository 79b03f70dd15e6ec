package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/careflowhq/careflow-api/internal/model"
)

// JWTService issues and validates principal tokens. Tokens carry the
// account id and email only; role lives in the store and is resolved per
// request.
type JWTService interface {
	GenerateAccessToken(account *model.Account) (string, *model.TokenClaims, error)
	GenerateRefreshToken(account *model.Account) (string, error)
	ValidateToken(token string) (*model.TokenClaims, error)
	ValidateRefreshToken(token string) (*model.TokenClaims, error)
}

type Config struct {
	Secret        string
	RefreshSecret string
	Expiry        time.Duration
	RefreshExpiry time.Duration
}

type jwtService struct {
	cfg Config
}

func NewJWTService(cfg Config) JWTService {
	return &jwtService{cfg: cfg}
}

func (s *jwtService) GenerateAccessToken(account *model.Account) (string, *model.TokenClaims, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   account.ID.String(),
		"email": account.Email,
		"jti":   uuid.New().String(),
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.Expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, &model.TokenClaims{
		AccountID: account.ID,
		Email:     account.Email,
		TokenID:   claims["jti"].(string),
		ExpiresAt: now.Add(s.cfg.Expiry),
	}, nil
}

func (s *jwtService) GenerateRefreshToken(account *model.Account) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": account.ID.String(),
		"jti": uuid.New().String(),
		"iat": now.Unix(),
		"exp": now.Add(s.cfg.RefreshExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.RefreshSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return signed, nil
}

func (s *jwtService) ValidateToken(tokenString string) (*model.TokenClaims, error) {
	return s.validate(tokenString, s.cfg.Secret)
}

func (s *jwtService) ValidateRefreshToken(tokenString string) (*model.TokenClaims, error) {
	return s.validate(tokenString, s.cfg.RefreshSecret)
}

func (s *jwtService) validate(tokenString, secret string) (*model.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	accountID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("invalid account id in token")
	}

	email, _ := claims["email"].(string)
	jti, _ := claims["jti"].(string)

	var expiresAt time.Time
	if exp, ok := claims["exp"].(float64); ok {
		expiresAt = time.Unix(int64(exp), 0)
	}

	return &model.TokenClaims{
		AccountID: accountID,
		Email:     email,
		TokenID:   jti,
		ExpiresAt: expiresAt,
	}, nil
}
