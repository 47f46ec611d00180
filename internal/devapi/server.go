// Package devapi is an in-memory implementation of the storefront REST
// API. It backs local runs of the CLI and the client's integration tests.
package devapi

import (
	"embed"
	"io/fs"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/config"
	"storefront/internal/domain"
	applog "storefront/internal/log"
)

//go:embed templates/*.html
var templateFS embed.FS

// Options tune a Server beyond its config.
type Options struct {
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// LoginLimit caps login attempts per IP per minute; 0 means 10.
	LoginLimit int
	// Quiet drops fiber's access log.
	Quiet bool
}

type Server struct {
	cfg     config.DevAPI
	opts    Options
	st      *state
	latency atomic.Int64
	app     *fiber.App
}

func New(cfg config.DevAPI, opts Options) (*Server, error) {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.LoginLimit == 0 {
		opts.LoginLimit = 10
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	s := &Server{cfg: cfg, opts: opts, st: newState(opts.BcryptCost)}
	s.SetLatency(cfg.Latency)
	if err := s.st.seed(); err != nil {
		return nil, err
	}
	views, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(views), ".html")
	engine.AddFunc("join", strings.Join)

	s.app = fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: errorHandler,
		BodyLimit:    maxVideoSize + 1<<20,
		// handlers keep query and form strings in state past the request
		Immutable: true,
	})
	s.routes()
	return s, nil
}

func (s *Server) App() *fiber.App { return s.app }

// SetLatency changes the artificial delay added to every API request.
func (s *Server) SetLatency(d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.latency.Store(int64(d))
}

func (s *Server) Latency() time.Duration { return time.Duration(s.latency.Load()) }

func (s *Server) Listen(addr string) error { return s.app.Listen(addr) }

func (s *Server) Shutdown() error { return s.app.Shutdown() }

func (s *Server) delay(c *fiber.Ctx) error {
	if d := s.Latency(); d > 0 {
		select {
		case <-time.After(d):
		case <-c.Context().Done():
		}
	}
	return c.Next()
}

func (s *Server) routes() {
	app := s.app

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	if !s.opts.Quiet {
		app.Use(logger.New())
	}
	app.Use(helmet.New())

	app.Get("/", s.home)
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/media/*", s.mediaFile)

	api := app.Group("/api", s.delay)

	// Auth (login throttled)
	auth := api.Group("/auth")
	auth.Post("/login", limiter.New(limiter.Config{
		Max:        s.opts.LoginLimit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.SecurityCtx(c, "rate.login.hit", nil)
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many login attempts. Please try again later.")
		},
	}), s.login)
	auth.Post("/register", s.register)

	// Public catalog
	pub := api.Group("/public")
	pub.Get("/products", s.products)
	pub.Get("/products/search", s.searchProducts)
	pub.Get("/products/:id", s.product)
	pub.Get("/products/:id/inventory", s.inventory)
	pub.Get("/categories", s.categories)
	pub.Get("/categories/:id", s.category)
	pub.Get("/categories/:id/products", s.categoryProducts)

	// Reviews: reads are public
	api.Get("/reviews/product/:id", s.productReviews)
	api.Get("/reviews/product/:id/rating", s.productRating)
	customer := []fiber.Handler{s.authenticate, requireRole(domain.RoleCustomer)}
	reviews := api.Group("/reviews", customer...)
	reviews.Post("/", s.createReview)
	reviews.Get("/my-reviews", s.myReviews)
	reviews.Delete("/:id", s.deleteReview)

	// Cart & orders
	cart := api.Group("/cart", customer...)
	cart.Get("/", s.cart)
	cart.Delete("/", s.clearCart)
	cart.Post("/items", s.addToCart)
	cart.Put("/items/:productId", s.updateCartItem)
	cart.Delete("/items/:productId", s.removeCartItem)

	orders := api.Group("/orders", customer...)
	orders.Post("/checkout", s.checkout)
	orders.Get("/", s.myOrders)
	orders.Get("/:id", s.order)
	orders.Post("/:id/cancel", s.cancelOrder)

	// Admin
	admin := api.Group("/admin", s.authenticate)
	staff := requireRole(domain.RoleAdmin, domain.RoleStaff)

	products := admin.Group("/products", staff)
	products.Get("/", s.products)
	products.Get("/search", s.searchProducts)
	products.Post("/", s.createProduct)
	products.Get("/:id", s.product)
	products.Put("/:id", s.updateProduct)
	products.Delete("/:id", s.deleteProduct)
	products.Get("/:id/inventory", s.inventory)
	products.Put("/:id/inventory", s.stockChange("set"))
	products.Post("/:id/inventory/add", s.stockChange("add"))
	products.Post("/:id/inventory/remove", s.stockChange("remove"))

	cats := admin.Group("/categories", staff)
	cats.Get("/", s.categories)
	cats.Post("/", s.createCategory)
	cats.Get("/:id", s.category)
	cats.Put("/:id", s.updateCategory)
	cats.Delete("/:id", s.deleteCategory)

	media := admin.Group("/media", staff)
	media.Post("/products/:id/images", s.uploadMedia(imageRule))
	media.Post("/products/:id/videos", s.uploadMedia(videoRule))
	media.Get("/products/:id", s.listMedia)
	media.Put("/:id", s.updateMedia)
	media.Delete("/:id", s.deleteMedia)

	adminOrders := admin.Group("/orders", requireRole(domain.RoleAdmin))
	adminOrders.Get("/", s.allOrders)
	adminOrders.Put("/:id/status", s.updateOrderStatus)

	// 404
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "No handler found for "+c.Method()+" "+c.Path())
	})
}

type homeProduct struct {
	ID       int64
	Name     string
	Category string
	Price    string
	Stock    int
}

// home renders the landing page listing accounts and catalog.
func (s *Server) home(c *fiber.Ctx) error {
	s.st.mu.Lock()
	var accounts []*account
	for _, a := range s.st.users {
		accounts = append(accounts, a)
	}
	var prods []homeProduct
	for _, p := range s.st.products {
		prods = append(prods, homeProduct{ID: p.ID, Name: p.Name, Category: p.CategoryName, Price: p.DisplayPrice(), Stock: s.st.available(p.ID)})
	}
	s.st.mu.Unlock()

	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	sort.Slice(prods, func(i, j int) bool { return prods[i].ID < prods[j].ID })
	return c.Render("index", fiber.Map{
		"BaseURL":  c.BaseURL(),
		"Accounts": accounts,
		"Password": SeedPassword,
		"Products": prods,
	})
}
