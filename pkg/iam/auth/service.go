package auth

import (
	"context"
	"strings"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/errx"
	"github.com/Abraxas-365/talentdesk/pkg/iam/user"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/pkg/logx"
	"github.com/google/uuid"
)

type LoginResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	ExpiresIn   int        `json:"expires_in"`
	User        *user.User `json:"user"`
}

type AuthService struct {
	users       user.Repository
	tokens      TokenService
	revocations RevocationStore
}

func NewAuthService(users user.Repository, tokens TokenService, revocations RevocationStore) *AuthService {
	return &AuthService{users: users, tokens: tokens, revocations: revocations}
}

// Login checks credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials()
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errx.IsCode(err, user.CodeUserNotFound) {
			return nil, ErrInvalidCredentials()
		}
		return nil, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		logx.Warnf("Failed login for %s", username)
		return nil, ErrInvalidCredentials()
	}

	token, claims, err := s.tokens.GenerateAccessToken(u)
	if err != nil {
		return nil, err
	}

	logx.Infof("User %s logged in", u.Username)
	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(time.Until(claims.ExpiresAt.Time).Seconds()),
		User:        u,
	}, nil
}

func (s *AuthService) Me(ctx context.Context, ac *AuthContext) (*user.User, error) {
	if ac == nil || ac.UserID == nil {
		return nil, ErrMissingToken()
	}
	return s.users.GetByID(ctx, *ac.UserID)
}

// Logout revokes the token until its natural expiry
func (s *AuthService) Logout(ctx context.Context, ac *AuthContext) error {
	if ac == nil || ac.TokenID == "" || s.revocations == nil {
		return nil
	}
	return s.revocations.Revoke(ctx, ac.TokenID, ac.ExpiresAt)
}

// SeedUser is an account created at startup when missing
type SeedUser struct {
	Username string
	Password string
	Email    kernel.Email
	FullName string
	Role     user.Role
	ClientID kernel.ClientID
	TenantID kernel.TenantID
}

// EnsureUser creates the seed account unless the username is taken
func (s *AuthService) EnsureUser(ctx context.Context, seed SeedUser) (*user.User, error) {
	if strings.TrimSpace(seed.Username) == "" {
		return nil, user.ErrUsernameRequired()
	}
	existing, err := s.users.GetByUsername(ctx, seed.Username)
	if err == nil {
		return existing, nil
	}
	if !errx.IsCode(err, user.CodeUserNotFound) {
		return nil, err
	}

	u, err := s.CreateUser(ctx, seed)
	if err != nil {
		return nil, err
	}
	logx.Infof("Seeded %s user %s", u.Role, u.Username)
	return u, nil
}

// CreateUser registers a new account and fails when the username is taken
func (s *AuthService) CreateUser(ctx context.Context, seed SeedUser) (*user.User, error) {
	if strings.TrimSpace(seed.Username) == "" {
		return nil, user.ErrUsernameRequired()
	}
	role, ok := user.ParseRole(string(seed.Role))
	if !ok {
		return nil, user.ErrInvalidRole().WithDetail("role", seed.Role)
	}
	hash, err := HashPassword(seed.Password)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		ID:           kernel.UserID(uuid.NewString()),
		Username:     strings.TrimSpace(seed.Username),
		Email:        seed.Email.Normalize(),
		FullName:     seed.FullName,
		Role:         role,
		ClientID:     seed.ClientID,
		TenantID:     seed.TenantID,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
