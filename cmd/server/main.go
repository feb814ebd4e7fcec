package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hexwake/server/internal/app"
)

func main() {
	godotenv.Load()

	cfg := app.DefaultConfig()
	flag.StringVar(&cfg.Addr, "addr", envString("HEXWAKE_ADDR", cfg.Addr), "listen address")
	flag.StringVar(&cfg.ClientDir, "client-dir", envString("HEXWAKE_CLIENT_DIR", cfg.ClientDir), "static client directory")
	flag.StringVar(&cfg.LogFile, "log-file", envString("HEXWAKE_LOG_FILE", cfg.LogFile), "rotating log file, empty for console only")
	flag.BoolVar(&cfg.Debug, "debug", envBool("HEXWAKE_DEBUG", cfg.Debug), "enable debug logging")
	flag.IntVar(&cfg.MapRadius, "map-radius", envInt("HEXWAKE_MAP_RADIUS", cfg.MapRadius), "map radius in tiles")
	flag.Float64Var(&cfg.LandChance, "land-chance", envFloat("HEXWAKE_LAND_CHANCE", cfg.LandChance), "per-tile land probability in [0,1]")
	flag.Int64Var(&cfg.Seed, "seed", envInt64("HEXWAKE_SEED", cfg.Seed), "fixed map seed, 0 draws a random one per room")
	flag.DurationVar(&cfg.DirectoryTTL, "directory-ttl", envDuration("HEXWAKE_DIRECTORY_TTL", cfg.DirectoryTTL), "room directory entry lifetime")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg); err != nil {
		log.Fatalf("%v", err)
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}
