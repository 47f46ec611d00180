package devapi

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func TestErrorHandlerHidesInternals(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Use(requestid.New())
	app.Get("/err", func(c *fiber.Ctx) error {
		return errors.New("db timeout: secret trace")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/err", nil))
	if err != nil {
		t.Fatalf("test request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	s := string(body)
	if !strings.Contains(s, "An unexpected error occurred") {
		t.Fatalf("generic message missing; body=%s", s)
	}
	if strings.Contains(s, "db timeout") || strings.Contains(s, "secret") {
		t.Fatalf("internal details leaked; body=%s", s)
	}
}

func TestHomeAndHealth(t *testing.T) {
	app := newTestServer(t).App()

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("home: %d %s", resp.StatusCode, body)
	}
	for _, want := range []string{"alice", "ROLE_ADMIN", "Arc Floor Lamp", "$89.99"} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("home page missing %q", want)
		}
	}

	var h map[string]bool
	if code := call(t, app, http.MethodGet, "/healthz", "", nil, &h); code != http.StatusOK || !h["ok"] {
		t.Fatalf("healthz: %d %v", code, h)
	}

	var env envelope
	if code := call(t, app, http.MethodGet, "/api/nope", "", nil, &env); code != http.StatusNotFound {
		t.Fatalf("unknown route: %d", code)
	}
}

func TestLatencyIsApplied(t *testing.T) {
	s := newTestServer(t)
	s.SetLatency(60 * time.Millisecond)

	start := time.Now()
	call(t, s.App(), http.MethodGet, "/api/public/categories", "", nil, nil)
	if time.Since(start) < 60*time.Millisecond {
		t.Fatal("latency not applied")
	}

	s.SetLatency(-time.Second)
	if s.Latency() != 0 {
		t.Fatalf("negative latency kept: %v", s.Latency())
	}
}
