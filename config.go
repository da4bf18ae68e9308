package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr            string
	MaxRooms        int
	MaxMessageSize  int64
	RoomIdleTimeout time.Duration
	SweepInterval   time.Duration
	RateLimitPerIP  float64
}

func LoadConfig() *Config {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	return &Config{
		Addr:            ":" + envStr("PORT", "3000"),
		MaxRooms:        envInt("GAME_MAX_ROOMS", 1000),
		MaxMessageSize:  int64(envInt("GAME_MAX_MESSAGE_SIZE", 65536)),
		RoomIdleTimeout: time.Duration(envInt("GAME_ROOM_IDLE_TIMEOUT", 3600)) * time.Second,
		SweepInterval:   time.Duration(envInt("GAME_SWEEP_INTERVAL", 300)) * time.Second,
		RateLimitPerIP:  float64(envInt("GAME_RATE_LIMIT_PER_IP", 20)),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
