package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvProduction is the ROLLCALL_ENV value that disables .env loading and dev seeding.
const EnvProduction = "production"

// Env holds process settings read from the environment.
type Env struct {
	Addr            string   `env:"ROLLCALL_ADDR" envDefault:":8080"`
	DBPath          string   `env:"ROLLCALL_DB_PATH" envDefault:"rollcall.db"`
	Environment     string   `env:"ROLLCALL_ENV" envDefault:"development"`
	LogLevel        string   `env:"ROLLCALL_LOG_LEVEL" envDefault:"info"`
	ResendKey       string   `env:"ROLLCALL_RESEND_KEY"`
	AlertFrom       string   `env:"ROLLCALL_ALERT_FROM" envDefault:"Rollcall <noreply@rollcall.local>"`
	AlertTo         []string `env:"ROLLCALL_ALERT_TO" envSeparator:","`
	DashboardConfig string   `env:"ROLLCALL_DASHBOARD_CONFIG"`
	CSRFKey         string   `env:"ROLLCALL_CSRF_KEY"`
	SlowQueryMs     int      `env:"ROLLCALL_SLOW_QUERY_MS" envDefault:"50"`
	SlowRequestMs   int      `env:"ROLLCALL_SLOW_REQUEST_MS" envDefault:"500"`
}

// IsProduction reports whether the process runs in production mode.
func (e Env) IsProduction() bool {
	return e.Environment == EnvProduction
}

// SlowQuery returns the slow query threshold as a duration.
func (e Env) SlowQuery() time.Duration {
	return time.Duration(e.SlowQueryMs) * time.Millisecond
}

// SlowRequest returns the slow request threshold as a duration.
func (e Env) SlowRequest() time.Duration {
	return time.Duration(e.SlowRequestMs) * time.Millisecond
}

// LoadEnv parses process settings. Outside production a .env file in the
// working directory is loaded first; variables already set win.
func LoadEnv() (Env, error) {
	if os.Getenv("ROLLCALL_ENV") != EnvProduction {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			slog.Warn("dotenv_load_failed", "error", err)
		}
	}
	var cfg Env
	if err := env.Parse(&cfg); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SlowQueryMs < 0 || cfg.SlowRequestMs < 0 {
		return Env{}, fmt.Errorf("slow thresholds must not be negative")
	}
	return cfg, nil
}
