package session

import (
	"context"
	"errors"
	"testing"

	"github.com/Abraxas-365/talentdesk/pkg/errx"
	"github.com/Abraxas-365/talentdesk/pkg/iam/user"
	"github.com/Abraxas-365/talentdesk/pkg/prefstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	token     string
	loginErr  error
	logoutErr error
	me        *user.User

	meCalls     int
	logoutCalls int
}

func (f *fakeUsers) Login(ctx context.Context, username, password string) (string, error) {
	return f.token, f.loginErr
}

func (f *fakeUsers) Me(ctx context.Context) (*user.User, error) {
	f.meCalls++
	return f.me, nil
}

func (f *fakeUsers) Logout(ctx context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

func TestLoginStoresTokenAndLoadsProfile(t *testing.T) {
	store := prefstore.NewMemoryStore()
	users := &fakeUsers{token: "jwt-1", me: &user.User{ID: "u1", Username: "ana"}}
	m := New(NewTokens(store), users)

	u, err := m.Login(context.Background(), " ana ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Username)

	stored, ok := store.Get(prefstore.KeyAuthToken)
	assert.True(t, ok)
	assert.Equal(t, "jwt-1", stored)
	assert.Equal(t, "jwt-1", m.Token(context.Background()))

	_, err = m.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, users.meCalls)
}

func TestLoginFailureKeepsNoToken(t *testing.T) {
	store := prefstore.NewMemoryStore()
	m := New(NewTokens(store), &fakeUsers{loginErr: errors.New("401")})

	_, err := m.Login(context.Background(), "ana", "bad")
	require.Error(t, err)
	assert.False(t, m.LoggedIn(context.Background()))
}

func TestLoginRequiresCredentials(t *testing.T) {
	m := New(NewTokens(prefstore.NewMemoryStore()), &fakeUsers{})

	_, err := m.Login(context.Background(), "  ", "x")
	assert.True(t, errx.IsCode(err, CodeCredentialsMissing))
}

func TestLogoutIsBestEffort(t *testing.T) {
	store := prefstore.NewMemoryStore()
	require.NoError(t, store.Set(prefstore.KeyAuthToken, "jwt-1"))
	users := &fakeUsers{logoutErr: errors.New("backend down")}
	m := New(NewTokens(store), users)

	require.NoError(t, m.Logout(context.Background()))
	assert.Equal(t, 1, users.logoutCalls)
	_, ok := store.Get(prefstore.KeyAuthToken)
	assert.False(t, ok)
}

func TestLogoutWithoutTokenSkipsBackend(t *testing.T) {
	users := &fakeUsers{}
	m := New(NewTokens(prefstore.NewMemoryStore()), users)

	require.NoError(t, m.Logout(context.Background()))
	assert.Zero(t, users.logoutCalls)
}

func TestClearedTokenDropsCachedProfile(t *testing.T) {
	store := prefstore.NewMemoryStore()
	users := &fakeUsers{token: "jwt-1", me: &user.User{ID: "u1"}}
	tokens := NewTokens(store)
	m := New(tokens, users)

	_, err := m.Login(context.Background(), "ana", "secret")
	require.NoError(t, err)

	// the api client clears the shared token store on a 401
	tokens.ClearToken(context.Background())

	_, err = m.Me(context.Background())
	assert.True(t, errx.IsCode(err, CodeNotLoggedIn))
}
