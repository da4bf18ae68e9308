package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("GAME_MAX_ROOMS", "")

	cfg := LoadConfig()

	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, 1000, cfg.MaxRooms)
	assert.Equal(t, time.Hour, cfg.RoomIdleTimeout)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("GAME_MAX_ROOMS", "25")
	t.Setenv("GAME_ROOM_IDLE_TIMEOUT", "60")

	cfg := LoadConfig()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 25, cfg.MaxRooms)
	assert.Equal(t, time.Minute, cfg.RoomIdleTimeout)
}

func TestLoadConfig_BadIntFallsBack(t *testing.T) {
	t.Setenv("GAME_MAX_ROOMS", "not-a-number")

	cfg := LoadConfig()
	assert.Equal(t, 1000, cfg.MaxRooms)
}
