package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"storefront/internal/api"
	"storefront/internal/config"
	"storefront/internal/repos"
	"storefront/internal/services"
)

// app is everything a command needs, built once in the root's
// PersistentPreRunE.
type app struct {
	cfg      config.Config
	db       *sqlx.DB
	logFile  *os.File
	sessions *repos.SessionRepo
	client   *api.Client

	auth     *services.AuthService
	products *services.ProductService
	cart     *services.CartService
	orders   *services.OrderService
	reviews  *services.ReviewService
	media    *services.MediaService
}

type rootFlags struct {
	config  string
	profile string
	apiURL  string
	verbose bool
}

func (a *app) open(f rootFlags) error {
	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}
	if f.profile != "" {
		cfg.Profile = f.profile
	}
	if f.apiURL != "" {
		cfg.APIBaseURL = f.apiURL
	}
	a.cfg = cfg

	// log lines never go to stdout
	var sinks []io.Writer
	if cfg.LogFile != "" {
		lf, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[warn] could not open log file %s: %v\n", cfg.LogFile, err)
		} else {
			a.logFile = lf
			sinks = append(sinks, lf)
		}
	}
	if f.verbose {
		sinks = append(sinks, os.Stderr)
	}
	if len(sinks) == 0 {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(io.MultiWriter(sinks...))
	}

	db, err := repos.OpenDB(cfg.SessionDSN)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	a.db = db
	a.sessions = repos.NewSessionRepo(db, cfg.Profile)
	a.client = api.New(cfg.APIBaseURL, a.sessions, api.WithTimeout(cfg.RequestTimeout))

	a.auth = services.NewAuthService(a.client, a.sessions)
	a.products = services.NewProductService(a.client)
	a.cart = services.NewCartService(a.client)
	a.orders = services.NewOrderService(a.client)
	a.reviews = services.NewReviewService(a.client)
	a.media = services.NewMediaService(a.client)
	return nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

func newRootCmd(a *app) *cobra.Command {
	var f rootFlags
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Shop the storefront catalog from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(f)
		},
		PersistentPostRun: func(*cobra.Command, []string) { a.close() },
	}
	pf := root.PersistentFlags()
	pf.StringVar(&f.config, "config", "", "config file (yaml, json or toml)")
	pf.StringVar(&f.profile, "profile", "", "session profile to use")
	pf.StringVar(&f.apiURL, "api", "", "backend base URL")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "also write log lines to stderr")

	root.AddCommand(
		loginCmd(a), logoutCmd(a), registerCmd(a), whoamiCmd(a),
		productsCmd(a), cartCmd(a), checkoutCmd(a), ordersCmd(a), reviewsCmd(a),
		adminCmd(a), dbcheckCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
