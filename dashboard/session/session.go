package session

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/Abraxas-365/talentdesk/dashboard/datasource"
	"github.com/Abraxas-365/talentdesk/pkg/errx"
	"github.com/Abraxas-365/talentdesk/pkg/iam/user"
	"github.com/Abraxas-365/talentdesk/pkg/logx"
	"github.com/Abraxas-365/talentdesk/pkg/prefstore"
)

var ErrRegistry = errx.NewRegistry("SESSION")

var (
	CodeNotLoggedIn        = ErrRegistry.Register("NOT_LOGGED_IN", errx.TypeAuthorization, http.StatusUnauthorized, "Not logged in")
	CodeCredentialsMissing = ErrRegistry.Register("CREDENTIALS_MISSING", errx.TypeValidation, http.StatusBadRequest, "Username and password are required")
	CodeTokenNotSaved      = ErrRegistry.Register("TOKEN_NOT_SAVED", errx.TypeInternal, http.StatusInternalServerError, "Failed to save the session token")
)

func ErrNotLoggedIn() *errx.Error {
	return ErrRegistry.New(CodeNotLoggedIn)
}

// Tokens keeps the bearer token in the preference store. It is the
// apiclient.TokenSource, so a 401 anywhere clears it.
type Tokens struct {
	store prefstore.Store
}

func NewTokens(store prefstore.Store) *Tokens {
	return &Tokens{store: store}
}

func (t *Tokens) Token(ctx context.Context) string {
	token, _ := t.store.Get(prefstore.KeyAuthToken)
	return token
}

func (t *Tokens) ClearToken(ctx context.Context) {
	if err := t.store.Delete(prefstore.KeyAuthToken); err != nil {
		logx.Warnf("Failed to clear stored token: %v", err)
	}
}

func (t *Tokens) SetToken(token string) error {
	return t.store.Set(prefstore.KeyAuthToken, token)
}

// Manager is the logged-in operator
type Manager struct {
	tokens *Tokens
	users  datasource.UserSource

	mu      sync.Mutex
	current *user.User
}

func New(tokens *Tokens, users datasource.UserSource) *Manager {
	return &Manager{tokens: tokens, users: users}
}

func (m *Manager) Token(ctx context.Context) string {
	return m.tokens.Token(ctx)
}

func (m *Manager) ClearToken(ctx context.Context) {
	m.tokens.ClearToken(ctx)
	m.forget()
}

// LoggedIn reports whether a token is stored. The token may still be
// rejected by the backend.
func (m *Manager) LoggedIn(ctx context.Context) bool {
	return m.tokens.Token(ctx) != ""
}

// Login exchanges credentials for a token, stores it and loads the profile
func (m *Manager) Login(ctx context.Context, username, password string) (*user.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrRegistry.New(CodeCredentialsMissing)
	}

	token, err := m.users.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := m.tokens.SetToken(token); err != nil {
		return nil, ErrRegistry.NewWithCause(CodeTokenNotSaved, err)
	}
	m.forget()

	return m.Me(ctx)
}

// Logout tells the backend when it can and always drops the local token
func (m *Manager) Logout(ctx context.Context) error {
	if m.LoggedIn(ctx) {
		if err := m.users.Logout(ctx); err != nil {
			logx.Warnf("Logout request failed, clearing local session anyway: %v", err)
		}
	}
	m.ClearToken(ctx)
	return nil
}

// Me returns the operator, asking the backend once per session
func (m *Manager) Me(ctx context.Context) (*user.User, error) {
	if !m.LoggedIn(ctx) {
		m.forget()
		return nil, ErrNotLoggedIn()
	}

	m.mu.Lock()
	cached := m.current
	m.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	u, err := m.users.Me(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.current = u
	m.mu.Unlock()
	return u, nil
}

func (m *Manager) forget() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
}
