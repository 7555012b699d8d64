// README: Smoke and load runner for a deployed placemap API; executes HTTP/DB/Redis checks and prints results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"placemap/internal/config"
)

func main() {
	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	bench := NewRunner(cfg)
	results := bench.RunAll(ctx)

	fmt.Println("\n== Summary ==")
	pass, fail, skipped := 0, 0, 0
	for _, r := range results {
		switch r.Status {
		case statusPass:
			pass++
		case statusFail:
			fail++
		case statusSkip:
			skipped++
		}
	}
	fmt.Printf("PASS=%d FAIL=%d SKIP=%d\n", pass, fail, skipped)

	if fail > 0 || (cfg.Strict && skipped > 0) {
		os.Exit(1)
	}
}

type Config struct {
	BaseURL        string
	DSN            string
	RedisAddr      string
	MigrationsDir  string
	ApplyMigration bool
	Strict         bool
	Timeout        time.Duration
	Concurrency    int
	Duration       time.Duration
}

func loadConfig() Config {
	app, _ := config.Load()

	var cfg Config
	flag.StringVar(&cfg.BaseURL, "base-url", envOrDefault("PLACEMAP_BENCH_BASE_URL", "http://localhost:4000"), "API base URL")
	flag.StringVar(&cfg.DSN, "dsn", app.DB.DSN, "Postgres DSN")
	flag.StringVar(&cfg.RedisAddr, "redis", app.Redis.Addr, "Redis address (empty skips the check)")
	flag.StringVar(&cfg.MigrationsDir, "migrations", "migrations", "Migrations directory")
	flag.BoolVar(&cfg.ApplyMigration, "apply-migration", false, "Apply migrations before the checks")
	flag.BoolVar(&cfg.Strict, "strict", false, "Treat skipped checks as failures")
	flag.DurationVar(&cfg.Timeout, "timeout", 60*time.Second, "Total timeout")
	flag.IntVar(&cfg.Concurrency, "concurrency", 20, "Concurrency for load checks")
	flag.DurationVar(&cfg.Duration, "duration", 10*time.Second, "Duration of each load check")
	flag.Parse()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
