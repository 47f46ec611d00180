package devapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/config"
	"storefront/internal/domain"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(config.DevAPI{JWTSecret: "test-secret"}, Options{BcryptCost: bcrypt.MinCost, Quiet: true, LoginLimit: 100})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s
}

// call sends a JSON request and decodes the JSON answer into out when
// out is non-nil. It returns the status code.
func call(t *testing.T, app *fiber.App, method, path, token string, body, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		raw, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode
}

func loginAs(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	var ar domain.AuthResponse
	if code := call(t, app, http.MethodPost, "/api/auth/login", "", domain.LoginRequest{Username: username, Password: SeedPassword}, &ar); code != http.StatusOK {
		t.Fatalf("login %s: status %d", username, code)
	}
	return ar.Token
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
