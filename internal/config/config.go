package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DevAPI struct {
	Addr      string        `mapstructure:"addr"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	Latency   time.Duration `mapstructure:"latency"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type Config struct {
	APIBaseURL     string        `mapstructure:"api_base_url"`
	SessionDSN     string        `mapstructure:"session_dsn"`
	Profile        string        `mapstructure:"profile"`
	LogFile        string        `mapstructure:"log_file"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	DevAPI         DevAPI        `mapstructure:"devapi"`
}

func defaultSessionDSN() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "storefront-session.db"
	}
	return filepath.Join(home, ".storefront", "session.db")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api_base_url", "http://localhost:8080")
	v.SetDefault("session_dsn", defaultSessionDSN())
	v.SetDefault("profile", "default")
	v.SetDefault("log_file", "")
	v.SetDefault("request_timeout", "0s") // transport default
	v.SetDefault("devapi.addr", ":8080")
	v.SetDefault("devapi.jwt_secret", "dev-secret")
	v.SetDefault("devapi.latency", "0s")
	v.SetDefault("devapi.token_ttl", "24h")
	return v
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects values no component can run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("api_base_url is required")
	}
	if c.SessionDSN == "" {
		return fmt.Errorf("session_dsn is required")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	if c.DevAPI.Latency < 0 {
		return fmt.Errorf("devapi.latency must not be negative")
	}
	return nil
}

// Load reads .env (if present), STOREFRONT_* environment variables and,
// when file is non-empty, a YAML/JSON/TOML config file.
func Load(file string) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env not loaded: %v", err)
	}

	v := newViper()
	if file == "" {
		file = os.Getenv("STOREFRONT_CONFIG")
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromReader is Load without the environment file lookups; typ is the
// viper config type ("yaml", "json", ...).
func LoadFromReader(r io.Reader, typ string) (Config, error) {
	v := newViper()
	v.SetConfigType(typ)
	if err := v.ReadConfig(r); err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return decode(v)
}

// Watcher reloads a config file on change and notifies subscribers.
type Watcher struct {
	v    *viper.Viper
	mu   sync.RWMutex
	cur  Config
	subs []func(Config)
}

func Watch(file string) (*Watcher, error) {
	v := newViper()
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	w := &Watcher{v: v, cur: cfg}
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Printf("[config] file changed: %s", e.Name)
		next, err := decode(v)
		if err != nil {
			log.Printf("[config] reload rejected: %v", err)
			return
		}
		w.mu.Lock()
		w.cur = next
		subs := make([]func(Config), len(w.subs))
		copy(subs, w.subs)
		w.mu.Unlock()
		for _, fn := range subs {
			fn(next)
		}
	})
	v.WatchConfig()
	return w, nil
}

func (w *Watcher) Current() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cur
}

func (w *Watcher) Subscribe(fn func(Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.subs = append(w.subs, fn)
}
