package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries every tunable of the table server. Values resolve in three
// layers: compiled defaults, then an optional JSON file, then the runtime
// environment map the host passes in.
type Config struct {
	// MaxSeats is the participant capacity of each table.
	MaxSeats int `json:"max_seats" env:"BLACKJACK_MAX_SEATS"`
	// MaxSessions bounds how many tables may exist at once.
	MaxSessions int `json:"max_sessions" env:"BLACKJACK_MAX_SESSIONS"`
	// StartingBalance is the one-time chip grant for fresh accounts.
	StartingBalance int64 `json:"starting_balance" env:"BLACKJACK_STARTING_BALANCE"`
	// DealerStand is the hand value at which the house hand stops drawing.
	DealerStand int `json:"dealer_stand" env:"BLACKJACK_DEALER_STAND"`
	// DealerPaceTicks spaces out dealer reveal and draw broadcasts so
	// clients can animate them. Zero sends everything on one tick.
	DealerPaceTicks int `json:"dealer_pace_ticks" env:"BLACKJACK_DEALER_PACE_TICKS"`
	// ActionGuardSeconds is how long a stuck command holds a table before
	// another command may steal the slot.
	ActionGuardSeconds int `json:"action_guard_seconds" env:"BLACKJACK_ACTION_GUARD_SECONDS"`
	// ReservationSecret signs seat reservation tokens. Empty disables the
	// reservation RPC.
	ReservationSecret string `json:"reservation_secret" env:"BLACKJACK_RESERVATION_SECRET"`
	// ReservationTTLSeconds is how long a seat reservation token stays valid.
	ReservationTTLSeconds int `json:"reservation_ttl_seconds" env:"BLACKJACK_RESERVATION_TTL_SECONDS"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		MaxSeats:              7,
		MaxSessions:           128,
		StartingBalance:       1000,
		DealerStand:           17,
		DealerPaceTicks:       2,
		ActionGuardSeconds:    5,
		ReservationTTLSeconds: 30,
	}
}

// Load resolves the configuration. path may be empty to skip the file layer;
// environment may be nil to skip the env layer.
func Load(path string, environment map[string]string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if environment != nil {
		if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
			return Config{}, fmt.Errorf("failed to parse config environment: %w", err)
		}
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// GuardTimeout returns the action guard hold limit as a duration.
func (c Config) GuardTimeout() time.Duration {
	return time.Duration(c.ActionGuardSeconds) * time.Second
}

// ReservationTTL returns the reservation token lifetime as a duration.
func (c Config) ReservationTTL() time.Duration {
	return time.Duration(c.ReservationTTLSeconds) * time.Second
}

func (c Config) validate() error {
	if c.MaxSeats < 1 {
		return fmt.Errorf("max_seats must be at least 1, got %d", c.MaxSeats)
	}
	if c.MaxSessions < 1 {
		return fmt.Errorf("max_sessions must be at least 1, got %d", c.MaxSessions)
	}
	if c.StartingBalance < 1 {
		return fmt.Errorf("starting_balance must be positive, got %d", c.StartingBalance)
	}
	if c.DealerStand < 2 || c.DealerStand > 21 {
		return fmt.Errorf("dealer_stand must be between 2 and 21, got %d", c.DealerStand)
	}
	if c.DealerPaceTicks < 0 {
		return fmt.Errorf("dealer_pace_ticks must not be negative, got %d", c.DealerPaceTicks)
	}
	if c.ActionGuardSeconds < 1 {
		return fmt.Errorf("action_guard_seconds must be at least 1, got %d", c.ActionGuardSeconds)
	}
	if c.ReservationTTLSeconds < 1 {
		return fmt.Errorf("reservation_ttl_seconds must be at least 1, got %d", c.ReservationTTLSeconds)
	}
	return nil
}
