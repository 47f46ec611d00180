package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func TestLoginFailureLeavesLoggedOut(t *testing.T) {
	f := &fakeAuth{failing: true}
	s := NewAuthStore(f)

	err := s.Login(context.Background(), domain.LoginRequest{Username: "alice", Password: "wrong"})
	require.Error(t, err)

	st := s.State()
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)
	assert.Equal(t, "Bad credentials", st.Err)
	assert.False(t, st.Loading)
	assert.Empty(t, f.token)
}

func TestLoginSuccessAndLogout(t *testing.T) {
	f := &fakeAuth{}
	s := NewAuthStore(f)
	require.False(t, s.State().IsAuthenticated)

	require.NoError(t, s.Login(context.Background(), domain.LoginRequest{Username: "alice", Password: "Passw0rd!"}))
	st := s.State()
	require.True(t, st.IsAuthenticated)
	assert.Equal(t, "alice", st.User.Username)

	require.NoError(t, s.Logout())
	assert.False(t, s.State().IsAuthenticated)
	assert.Nil(t, s.State().User)
}

func TestLoginRejectsBlankCredentialsLocally(t *testing.T) {
	f := &fakeAuth{}
	s := NewAuthStore(f)
	require.Error(t, s.Login(context.Background(), domain.LoginRequest{Username: "alice"}))
	assert.Zero(t, f.calls)
	assert.NotEmpty(t, s.State().Err)

	s.ClearError()
	assert.Empty(t, s.State().Err)
}

func TestRegisterFallbackMessage(t *testing.T) {
	f := &fakeAuth{}
	s := NewAuthStore(f)
	require.NoError(t, s.Register(context.Background(), domain.RegisterRequest{Username: "bob", Email: "bob@shop.test", Password: "secret1"}))
	assert.False(t, s.State().IsAuthenticated, "register must not log in")

	f.failing = true
	require.Error(t, s.Register(context.Background(), domain.RegisterRequest{Username: "bob", Email: "bob@shop.test", Password: "secret1"}))
	assert.Equal(t, "Error: Username is already taken!", s.State().Err)
}

func TestCheckAuthPicksUpPersistedSession(t *testing.T) {
	f := &fakeAuth{token: "tok", user: &domain.Identity{Username: "admin", Roles: []string{domain.RoleAdmin}}}
	s := NewAuthStore(f)
	st := s.State()
	require.True(t, st.IsAuthenticated)
	assert.True(t, st.User.IsAdmin())
}

func TestSubscribeAndCancel(t *testing.T) {
	s := NewAuthStore(&fakeAuth{})
	var seen []AuthState
	cancel := s.Subscribe(func(st AuthState) { seen = append(seen, st) })

	_ = s.Login(context.Background(), domain.LoginRequest{Username: "alice", Password: "x"})
	require.NotEmpty(t, seen)
	assert.True(t, seen[0].Loading)
	assert.True(t, seen[len(seen)-1].IsAuthenticated)

	n := len(seen)
	cancel()
	s.ClearError()
	assert.Len(t, seen, n)
}
