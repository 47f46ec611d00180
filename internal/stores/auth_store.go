package stores

import (
	"context"

	"storefront/internal/api"
	"storefront/internal/domain"
	"storefront/internal/validate"
)

type AuthAPI interface {
	Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error)
	Register(ctx context.Context, req domain.RegisterRequest) (domain.MessageResponse, error)
	Logout() error
	CurrentUser() (*domain.Identity, error)
	IsAuthenticated() bool
}

type AuthState struct {
	User            *domain.Identity
	IsAuthenticated bool
	Loading         bool
	Err             string
}

type AuthStore struct {
	api AuthAPI
	c   container[AuthState]
}

// NewAuthStore starts from whatever session durable storage holds.
func NewAuthStore(a AuthAPI) *AuthStore {
	s := &AuthStore{api: a}
	s.CheckAuth()
	return s
}

func (s *AuthStore) State() AuthState { return s.c.get() }

func (s *AuthStore) Subscribe(fn func(AuthState)) (cancel func()) { return s.c.subscribe(fn) }

func (s *AuthStore) Login(ctx context.Context, creds domain.LoginRequest) error {
	if err := validate.Credentials(creds.Username, creds.Password); err != nil {
		s.c.set(func(st *AuthState) { st.Err = err.Error() })
		return err
	}
	s.c.set(func(st *AuthState) { st.Loading = true; st.Err = "" })
	resp, err := s.api.Login(ctx, creds)
	if err != nil {
		s.c.set(func(st *AuthState) {
			st.Err = api.Message(err, "Login failed")
			st.Loading = false
		})
		return err
	}
	id := resp.Identity()
	s.c.set(func(st *AuthState) {
		st.User = &id
		st.IsAuthenticated = true
		st.Loading = false
	})
	return nil
}

// Register creates the account; it does not log in.
func (s *AuthStore) Register(ctx context.Context, req domain.RegisterRequest) error {
	var err error
	if req.Username, err = validate.Username(req.Username); err == nil {
		if req.Email, err = validate.Email(req.Email); err == nil {
			err = validate.Password(req.Password)
		}
	}
	if err != nil {
		msg := err.Error()
		s.c.set(func(st *AuthState) { st.Err = msg })
		return err
	}

	s.c.set(func(st *AuthState) { st.Loading = true; st.Err = "" })
	if _, err := s.api.Register(ctx, req); err != nil {
		s.c.set(func(st *AuthState) {
			st.Err = api.Message(err, "Registration failed")
			st.Loading = false
		})
		return err
	}
	s.c.set(func(st *AuthState) { st.Loading = false })
	return nil
}

// Logout resets the store even if clearing durable storage failed.
func (s *AuthStore) Logout() error {
	err := s.api.Logout()
	s.c.set(func(st *AuthState) {
		st.User = nil
		st.IsAuthenticated = false
		st.Err = ""
	})
	return err
}

// CheckAuth re-reads durable storage.
func (s *AuthStore) CheckAuth() {
	u, err := s.api.CurrentUser()
	if err != nil {
		u = nil
	}
	authed := s.api.IsAuthenticated()
	s.c.set(func(st *AuthState) {
		st.User = u
		st.IsAuthenticated = authed
	})
}

func (s *AuthStore) ClearError() { s.c.set(func(st *AuthState) { st.Err = "" }) }
