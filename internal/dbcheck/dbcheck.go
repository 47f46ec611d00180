// Package dbcheck probes PostgreSQL connection settings: which host and
// user combination actually accepts a password.
package dbcheck

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	applog "storefront/internal/log"
)

type Endpoint struct {
	Host string
	Port int
}

func (e Endpoint) String() string { return net.JoinHostPort(e.Host, strconv.Itoa(e.Port)) }

// DefaultPort is used when an endpoint names only a host.
const DefaultPort = 5432

// ParseEndpoint accepts "host" or "host:port".
func ParseEndpoint(s string) (Endpoint, error) {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		if strings.Contains(s, ":") && !strings.HasPrefix(s, "[") {
			return Endpoint{}, fmt.Errorf("dbcheck: bad endpoint %q: %w", s, err)
		}
		return Endpoint{Host: strings.Trim(s, "[]"), Port: DefaultPort}, nil
	}
	n, err := strconv.Atoi(port)
	if err != nil || n <= 0 || n > 65535 {
		return Endpoint{}, fmt.Errorf("dbcheck: bad port in %q", s)
	}
	return Endpoint{Host: host, Port: n}, nil
}

// Target is every combination ProbeAll should try. Endpoints are tried
// in order, and every user is tried on each endpoint.
type Target struct {
	Endpoints []Endpoint
	Users     []string
	Password  string
	Database  string
	SSLMode   string
	Timeout   time.Duration
}

type Attempt struct {
	Endpoint Endpoint
	User     string
	Version  string
	Err      error
}

func (a Attempt) OK() bool { return a.Err == nil }

// DSN builds a lib/pq URL.
func DSN(e Endpoint, user, password, database, sslmode string, timeout time.Duration) string {
	if sslmode == "" {
		sslmode = "require"
	}
	q := url.Values{}
	q.Set("sslmode", sslmode)
	if timeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(timeout.Seconds()+0.5)))
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     e.String(),
		Path:     "/" + database,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Redact hides the password of a URL-form DSN.
func Redact(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "<unparseable dsn>"
	}
	return u.Redacted()
}

// Probe connects, pings and reports the server version.
func Probe(ctx context.Context, dsn string) (string, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return "", err
	}
	defer db.Close()

	var version string
	if err := db.GetContext(ctx, &version, `SELECT version()`); err != nil {
		return "", err
	}
	return version, nil
}

var probe = Probe

// ProbeAll stops at the first combination that connects. It returns that
// attempt (nil when none worked) and every attempt made.
func ProbeAll(ctx context.Context, t Target) (*Attempt, []Attempt) {
	var attempts []Attempt
	for _, e := range t.Endpoints {
		for _, user := range t.Users {
			if err := ctx.Err(); err != nil {
				return nil, attempts
			}
			dsn := DSN(e, user, t.Password, t.Database, t.SSLMode, t.Timeout)
			v, err := probe(ctx, dsn)
			a := Attempt{Endpoint: e, User: user, Version: v, Err: err}
			attempts = append(attempts, a)
			if err != nil {
				applog.Info(nil, "dbcheck.failed", map[string]any{"dsn": Redact(dsn), "err": err.Error()})
				continue
			}
			applog.Audit(nil, "dbcheck.connected", map[string]any{"dsn": Redact(dsn)})
			return &a, attempts
		}
	}
	return nil, attempts
}

func (a Attempt) String() string {
	if a.Err != nil {
		return fmt.Sprintf("%s as %s: FAILED %v", a.Endpoint, a.User, a.Err)
	}
	return fmt.Sprintf("%s as %s: OK (%s)", a.Endpoint, a.User, a.Version)
}
