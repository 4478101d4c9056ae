package auth

import (
	"errors"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/iam/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Config struct {
	JWTSecret      string
	Issuer         string
	AccessTokenTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		Issuer:         "talentdesk",
		AccessTokenTTL: 12 * time.Hour,
	}
}

// Claims carried by an access token
type Claims struct {
	Username string   `json:"username"`
	Role     string   `json:"role"`
	ClientID string   `json:"client_id,omitempty"`
	TenantID string   `json:"tenant_id,omitempty"`
	Scopes   []string `json:"scopes"`
	jwt.RegisteredClaims
}

// TokenService issues and validates access tokens
type TokenService interface {
	GenerateAccessToken(u *user.User) (string, *Claims, error)
	ValidateAccessToken(token string) (*Claims, error)
}

type JWTService struct {
	cfg Config
	now func() time.Time
}

func NewJWTService(cfg Config) *JWTService {
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = DefaultConfig().AccessTokenTTL
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultConfig().Issuer
	}
	return &JWTService{cfg: cfg, now: time.Now}
}

func (s *JWTService) GenerateAccessToken(u *user.User) (string, *Claims, error) {
	now := s.now()
	claims := &Claims{
		Username: u.Username,
		Role:     string(u.Role),
		ClientID: string(u.ClientID),
		TenantID: string(u.TenantID),
		Scopes:   ScopesForRole(string(u.Role)),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   string(u.ID),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", nil, ErrRegistry.NewWithCause(CodeTokenIssueFailed, err)
	}
	return signed, claims, nil
}

func (s *JWTService) ValidateAccessToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) {
			return []byte(s.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrInvalidToken().WithDetail("reason", "expired")
		}
		return nil, ErrRegistry.NewWithCause(CodeInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken()
	}
	return claims, nil
}
