package devapi

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/validate"
)

type claims struct {
	UserID int64    `json:"uid"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

func (s *Server) issue(a *account) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: a.ID,
		Roles:  a.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	})
	return tok.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *Server) parse(raw string) (*claims, error) {
	var cl claims
	_, err := jwt.ParseWithClaims(raw, &cl, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return &cl, nil
}

// authenticate accepts a valid bearer token and stores its claims in
// Locals; anything else is a 401.
func (s *Server) authenticate(c *fiber.Ctx) error {
	h := c.Get(fiber.HeaderAuthorization)
	raw, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || raw == "" {
		return errUnauthenticated
	}
	cl, err := s.parse(raw)
	if err != nil {
		applog.SecurityCtx(c, "auth.token.invalid", map[string]any{"err": err.Error()})
		return errUnauthenticated
	}
	c.Locals("claims", cl)
	c.Locals("username", cl.Subject)
	return c.Next()
}

// requireRole must follow authenticate.
func requireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cl, _ := c.Locals("claims").(*claims)
		if cl != nil {
			for _, want := range roles {
				for _, have := range cl.Roles {
					if want == have {
						return c.Next()
					}
				}
			}
		}
		applog.SecurityCtx(c, "access.denied", map[string]any{"need": roles})
		return errForbidden
	}
}

func userID(c *fiber.Ctx) int64 {
	cl, _ := c.Locals("claims").(*claims)
	if cl == nil {
		return 0
	}
	return cl.UserID
}

func (s *Server) login(c *fiber.Ctx) error {
	var req domain.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Malformed JSON request")
	}
	s.st.mu.Lock()
	a := s.st.userByName(strings.TrimSpace(req.Username))
	s.st.mu.Unlock()
	if a == nil || bcrypt.CompareHashAndPassword(a.Hash, []byte(req.Password)) != nil {
		applog.SecurityCtx(c, "auth.login.fail", map[string]any{"username": req.Username})
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid username or password")
	}
	tok, err := s.issue(a)
	if err != nil {
		return err
	}
	applog.AuditCtx(c, "auth.login.success", map[string]any{"user_id": a.ID})
	return c.JSON(domain.AuthResponse{
		Token:    tok,
		Type:     "Bearer",
		ID:       a.ID,
		Username: a.Username,
		Email:    a.Email,
		Roles:    a.Roles,
	})
}

func (s *Server) register(c *fiber.Ctx) error {
	var req domain.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Malformed JSON request")
	}
	username, err := validate.Username(req.Username)
	if err != nil {
		return badRequest("%s", err.Error())
	}
	email, err := validate.Email(req.Email)
	if err != nil {
		return badRequest("%s", err.Error())
	}
	if err := validate.Password(req.Password); err != nil {
		return badRequest("%s", err.Error())
	}

	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if s.st.userByName(username) != nil {
		return conflict("User", "username", username)
	}
	for _, u := range s.st.users {
		if strings.EqualFold(u.Email, email) {
			return conflict("User", "email", email)
		}
	}
	a, err := s.st.addUser(username, email, req.Password, domain.RoleCustomer)
	if err != nil {
		return err
	}
	applog.AuditCtx(c, "auth.register", map[string]any{"user_id": a.ID})
	return c.JSON(domain.MessageResponse{Message: "User registered successfully!"})
}
