package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storefront/internal/api"
	"storefront/internal/domain"
	applog "storefront/internal/log"
)

// SessionStore is the durable storage the auth façade writes on login and
// clears on logout.
type SessionStore interface {
	Save(domain.Session) error
	Load() (*domain.Session, error)
	Clear() error
}

type AuthService struct {
	API      *api.Client
	Sessions SessionStore
}

func NewAuthService(c *api.Client, sessions SessionStore) *AuthService {
	return &AuthService{API: c, Sessions: sessions}
}

func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (domain.MessageResponse, error) {
	var out domain.MessageResponse
	err := s.API.Post(ctx, "/api/auth/register", nil, req, &out)
	return out, err
}

// Login persists the token and identity only after the backend accepted
// the credentials.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	var out domain.AuthResponse
	if err := s.API.Post(ctx, "/api/auth/login", nil, req, &out); err != nil {
		return domain.AuthResponse{}, err
	}
	if out.Token == "" {
		return domain.AuthResponse{}, errors.New("login response carried no token")
	}
	if err := s.Sessions.Save(domain.Session{Token: out.Token, Identity: out.Identity()}); err != nil {
		return domain.AuthResponse{}, err
	}
	applog.Audit(nil, "auth.login.success", map[string]any{"username": out.Username})
	return out, nil
}

func (s *AuthService) Logout() error {
	applog.Audit(nil, "auth.logout", nil)
	return s.Sessions.Clear()
}

// CurrentUser returns the persisted identity, nil when logged out.
func (s *AuthService) CurrentUser() (*domain.Identity, error) {
	sess, err := s.Sessions.Load()
	if err != nil || sess == nil {
		return nil, err
	}
	id := sess.Identity
	return &id, nil
}

func (s *AuthService) Token() (string, error) {
	sess, err := s.Sessions.Load()
	if err != nil || sess == nil {
		return "", err
	}
	return sess.Token, nil
}

func (s *AuthService) IsAuthenticated() bool {
	tok, err := s.Token()
	return err == nil && tok != ""
}

func (s *AuthService) HasRole(role string) bool {
	u, err := s.CurrentUser()
	return err == nil && u != nil && u.HasRole(role)
}

func (s *AuthService) IsAdmin() bool { return s.HasRole(domain.RoleAdmin) }

// TokenExpiry reads the exp claim of the persisted token without verifying
// its signature; only the backend can do that. ok is false when there is
// no token or it has no exp claim.
func (s *AuthService) TokenExpiry() (exp time.Time, ok bool) {
	tok, err := s.Token()
	if err != nil || tok == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return time.Time{}, false
	}
	d, err := claims.GetExpirationTime()
	if err != nil || d == nil {
		return time.Time{}, false
	}
	return d.Time, true
}
