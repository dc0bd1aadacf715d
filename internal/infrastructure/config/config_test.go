package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestFromLookuper_Defaults(t *testing.T) {
	cfg, err := FromLookuper(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Env != EnvDevelopment || cfg.Store.Driver != StoreMongo {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Session.TTL != 8*time.Hour || cfg.Session.CookieName != "SESSION" || cfg.Session.BcryptCost != 10 {
		t.Fatalf("unexpected session defaults: %+v", cfg.Session)
	}
	if cfg.Login.MaxAttempts != 5 || cfg.Login.Window != 15*time.Minute {
		t.Fatalf("unexpected login defaults: %+v", cfg.Login)
	}
	if cfg.Redis.Addr != "" || cfg.AMQP.URL != "" {
		t.Fatalf("redis and amqp must be opt-in")
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development profile")
	}
}

func TestFromLookuper_Overrides(t *testing.T) {
	cfg, err := FromLookuper(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":          "9090",
		"ENV":           "production",
		"JWT_SECRET":    "s3cret",
		"STORE_DRIVER":  "sql",
		"SQL_DIALECT":   "postgres",
		"SQL_DSN":       "postgres://localhost/hospital",
		"SESSION_TTL":   "30m",
		"REDIS_ADDR":    "redis:6379",
		"DEMO_FIXTURES": "true",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" || cfg.SQL.Dialect != "postgres" || cfg.Session.TTL != 30*time.Minute {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if !cfg.Store.DemoFixtures || cfg.Redis.Addr != "redis:6379" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.IsDevelopment() {
		t.Fatalf("expected production profile")
	}
}

func TestFromLookuper_CORSOrigins(t *testing.T) {
	cfg, err := FromLookuper(context.Background(), envconfig.MapLookuper(map[string]string{
		"CORS_ORIGINS": "https://portal.example.com,http://localhost:3000",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://localhost:3000" {
		t.Fatalf("unexpected origins: %v", cfg.CORSOrigins)
	}
	if cfg.AMQP.Queue != "hospital.appointments" {
		t.Fatalf("unexpected default queue %q", cfg.AMQP.Queue)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		env  map[string]string
		want string
	}{
		"unknown driver": {
			env:  map[string]string{"STORE_DRIVER": "cassandra"},
			want: "STORE_DRIVER",
		},
		"unknown dialect": {
			env:  map[string]string{"STORE_DRIVER": "sql", "SQL_DIALECT": "oracle"},
			want: "SQL_DIALECT",
		},
		"missing secret in production": {
			env:  map[string]string{"ENV": "production"},
			want: "JWT_SECRET",
		},
		"non-positive limiter": {
			env:  map[string]string{"LOGIN_MAX_ATTEMPTS": "0"},
			want: "LOGIN_MAX_ATTEMPTS",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromLookuper(context.Background(), envconfig.MapLookuper(tc.env))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %s, got %v", tc.want, err)
			}
		})
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "7070" || cfg.Store.Driver != StoreMemory {
		t.Fatalf("environment not applied: %+v", cfg)
	}
}
