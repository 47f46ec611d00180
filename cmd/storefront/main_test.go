package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/config"
	"storefront/internal/devapi"
	"storefront/internal/domain"
	"storefront/internal/gallery"
)

// backend starts a seeded backend and points the CLI's session store at
// a temp file.
func backend(t *testing.T) string {
	t.Helper()
	srv, err := devapi.New(config.DevAPI{JWTSecret: "cli-test"}, devapi.Options{BcryptCost: bcrypt.MinCost, Quiet: true, LoginLimit: 100})
	require.NoError(t, err)
	ts := httptest.NewServer(adaptor.FiberApp(srv.App()))
	t.Cleanup(ts.Close)
	t.Setenv("STOREFRONT_SESSION_DSN", filepath.Join(t.TempDir(), "session.db"))
	t.Setenv("STOREFRONT_LOG_FILE", "")
	return ts.URL
}

func run(t *testing.T, url string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&app{})
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--api", url}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestShopperSession(t *testing.T) {
	url := backend(t)

	out, err := run(t, url, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")

	_, err = run(t, url, "cart", "show")
	require.ErrorContains(t, err, "not logged in")

	_, err = run(t, url, "login", "-u", "alice", "-p", "nope")
	require.EqualError(t, err, "Invalid username or password")

	out, err = run(t, url, "login", "-u", "alice", "-p", devapi.SeedPassword)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as alice")

	out, err = run(t, url, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "alice <")
	assert.Contains(t, out, "token:   expires")

	out, err = run(t, url, "products", "search", "edison")
	require.NoError(t, err)
	assert.Contains(t, out, "$19.50")
	id := strings.Fields(strings.Split(out, "\n")[1])[0]

	out, err = run(t, url, "cart", "add", id, "-q", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "total $39.00")

	_, err = run(t, url, "cart", "update", id, "0")
	require.EqualError(t, err, "Quantity must be at least 1")

	_, err = run(t, url, "checkout")
	require.EqualError(t, err, "Please enter a shipping address")

	out, err = run(t, url, "checkout", "-a", "9 Pine Rd", "--voucher", "WELCOME10")
	require.NoError(t, err)
	assert.Contains(t, out, "Order placed.")
	assert.Contains(t, out, "Total: $35.10")

	out, err = run(t, url, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty")

	_, err = run(t, url, "checkout", "-a", "9 Pine Rd")
	require.EqualError(t, err, "Your cart is empty")

	out, err = run(t, url, "orders", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "PENDING")
	assert.Contains(t, out, "DELIVERED")

	_, err = run(t, url, "admin", "orders", "list")
	require.ErrorContains(t, err, "admin or staff")

	out, err = run(t, url, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
	out, _ = run(t, url, "whoami")
	assert.Contains(t, out, "Not logged in")
}

func TestProductShowFallsBackToLegacyImage(t *testing.T) {
	url := backend(t)
	out, err := run(t, url, "products", "list", "--size", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Arc Floor Lamp")
	assert.Contains(t, out, "page 1 of 6")

	id := strings.Fields(strings.Split(out, "\n")[1])[0]
	out, err = run(t, url, "products", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "In stock: 12")
	assert.Contains(t, out, "https://img.storefront.test/arc-lamp.jpg")
	assert.Contains(t, out, "No reviews yet")
	assert.Contains(t, out, "*[1] IMAGE")

	_, err = run(t, url, "products", "show", id, "--media", "2")
	require.EqualError(t, err, "no media item 2, the gallery has 1")
}

func TestProductListPageBounds(t *testing.T) {
	url := backend(t)
	out, err := run(t, url, "products", "list", "--size", "1", "--page", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "page 4 of 6")

	_, err = run(t, url, "products", "list", "--size", "1", "--page", "6")
	require.EqualError(t, err, "page 6 is out of range, there are 6 page(s)")
	_, err = run(t, url, "products", "list", "--page", "-1")
	require.EqualError(t, err, "page -1 is out of range, there are 1 page(s)")
	_, err = run(t, url, "products", "list", "--page", "92233720368547758")
	require.Error(t, err)
}

func TestBrowseGallery(t *testing.T) {
	media := []domain.ProductMedia{{ID: 1, URL: "a"}, {ID: 2, URL: "b"}, {ID: 3, URL: "c"}}
	g := gallery.New(domain.Product{}, media)
	require.NoError(t, browse(g, 3, 1))
	assert.Equal(t, 0, g.Index(), "stepping past the end wraps")
	require.NoError(t, browse(g, 0, -1))
	assert.Equal(t, 2, g.Index())
	assert.Equal(t, "3 / 3", g.Counter())
	require.Error(t, browse(g, 4, 0))
}

func TestAdminExportAndStatus(t *testing.T) {
	url := backend(t)
	_, err := run(t, url, "--profile", "admin", "login", "-u", "admin", "-p", devapi.SeedPassword)
	require.NoError(t, err)

	out, err := run(t, url, "--profile", "admin", "admin", "categories", "create", "Garden")
	require.NoError(t, err)
	assert.Contains(t, out, "Created category")

	dest := filepath.Join(t.TempDir(), "catalog.xlsx")
	out, err = run(t, url, "--profile", "admin", "admin", "products", "export", "-o", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 6 product(s)")

	raw, err := os.ReadFile(dest)
	require.NoError(t, err)
	wb, err := xlsx.OpenBinary(raw)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)
	assert.Len(t, wb.Sheets[0].Rows, 7)

	out, err = run(t, url, "--profile", "admin", "admin", "orders", "list")
	require.NoError(t, err)
	id := strings.Fields(strings.Split(out, "\n")[1])[0]
	out, err = run(t, url, "--profile", "admin", "admin", "orders", "status", id, "shipped")
	require.NoError(t, err)
	assert.Contains(t, out, "is now SHIPPED")

	// the default profile is still logged out
	out, _ = run(t, url, "whoami")
	assert.Contains(t, out, "Not logged in")
}
