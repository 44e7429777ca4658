package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"docex/internal/config"
	"docex/internal/domain"
)

const tokenAudience = "docex-api"

// Claims represents the JWT claims of a service token.
type Claims struct {
	jwt.RegisteredClaims
	Client string `json:"client"`
}

// ServiceToken is a signed bearer token for API clients.
type ServiceToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AuthService mints and verifies service tokens.
type AuthService interface {
	IssueToken(client string, ttl time.Duration) (*ServiceToken, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	cfg config.JWTConfig
}

// NewAuthService creates a new AuthService implementation.
func NewAuthService(cfg config.JWTConfig) AuthService {
	return &authService{cfg: cfg}
}

// IssueToken signs an HS256 token for client. A non-positive ttl uses the
// configured token expiry.
func (s *authService) IssueToken(client string, ttl time.Duration) (*ServiceToken, error) {
	if client == "" {
		return nil, fmt.Errorf("issuing token: client name is required")
	}
	if ttl <= 0 {
		ttl = s.cfg.TokenExpiry
	}
	now := time.Now()
	expiry := now.Add(ttl)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   client,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{tokenAudience},
		},
		Client: client,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("signing service token: %w", err)
	}
	return &ServiceToken{AccessToken: signed, ExpiresAt: expiry}, nil
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithAudience(tokenAudience),
		jwt.WithIssuer(s.cfg.Issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", domain.ErrUnauthorized)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
