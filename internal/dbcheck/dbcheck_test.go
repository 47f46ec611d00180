package dbcheck

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSNAndRedact(t *testing.T) {
	dsn := DSN(Endpoint{Host: "db.example.test", Port: 5432}, "postgres", "s3cr:t", "shop", "", 5*time.Second)
	assert.True(t, strings.HasPrefix(dsn, "postgres://postgres:"))
	assert.Contains(t, dsn, "sslmode=require")
	assert.Contains(t, dsn, "connect_timeout=5")
	assert.Contains(t, dsn, "/shop?")

	r := Redact(dsn)
	assert.NotContains(t, r, "s3cr")
	assert.Contains(t, r, "db.example.test:5432")
}

func TestProbeAllStopsAtFirstSuccess(t *testing.T) {
	var tried []string
	probe = func(_ context.Context, dsn string) (string, error) {
		tried = append(tried, Redact(dsn))
		if strings.Contains(dsn, "pooler") && strings.Contains(dsn, "://admin:") {
			return "PostgreSQL 16.1", nil
		}
		return "", errors.New("password authentication failed")
	}
	t.Cleanup(func() { probe = Probe })

	ok, attempts := ProbeAll(context.Background(), Target{
		Endpoints: []Endpoint{{Host: "direct.example.test", Port: 5432}, {Host: "pooler.example.test", Port: 6543}},
		Users:     []string{"postgres", "admin", "never"},
		Password:  "pw",
		Database:  "postgres",
	})
	require.NotNil(t, ok)
	assert.Equal(t, "admin", ok.User)
	assert.Equal(t, 6543, ok.Endpoint.Port)
	assert.Len(t, attempts, 5)
	assert.Len(t, tried, 5)
	assert.False(t, attempts[0].OK())
	assert.Contains(t, ok.String(), "OK (PostgreSQL 16.1)")
}

func TestProbeAllNothingWorks(t *testing.T) {
	probe = func(context.Context, string) (string, error) { return "", errors.New("refused") }
	t.Cleanup(func() { probe = Probe })

	ok, attempts := ProbeAll(context.Background(), Target{
		Endpoints: []Endpoint{{Host: "a", Port: 1}},
		Users:     []string{"x", "y"},
	})
	assert.Nil(t, ok)
	assert.Len(t, attempts, 2)
}

func TestProbeUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err := Probe(ctx, DSN(Endpoint{Host: "127.0.0.1", Port: 1}, "u", "p", "d", "disable", time.Second))
	assert.Error(t, err)
}

func TestParseEndpoint(t *testing.T) {
	e, err := ParseEndpoint("db.example.test")
	require.NoError(t, err)
	assert.Equal(t, Endpoint{Host: "db.example.test", Port: DefaultPort}, e)

	e, err = ParseEndpoint("10.0.0.5:6543")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5:6543", e.String())

	e, err = ParseEndpoint("[::1]:5433")
	require.NoError(t, err)
	assert.Equal(t, Endpoint{Host: "::1", Port: 5433}, e)

	_, err = ParseEndpoint("db:notaport")
	assert.Error(t, err)
}
