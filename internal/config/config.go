package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr string
	// BridgeSecret authorizes the AI-bridge callback; when empty the
	// bridge endpoint rejects everything.
	BridgeSecret string
	// CollaboratorURL is where aiChat prompts are forwarded. Empty
	// means no collaborator is wired up and prompts get a fallback
	// reply.
	CollaboratorURL string
	// RoundDuration is the time budget for each build round.
	RoundDuration time.Duration
	// AIChatCooldown is the per-team window between aiChat requests.
	AIChatCooldown time.Duration
	// TargetsPath overrides the embedded target pattern set.
	TargetsPath string
}

// Load reads configuration from the environment, picking up a .env
// file first when one is present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:            getenv("ADDR", ":8080"),
		BridgeSecret:    os.Getenv("BRIDGE_SECRET"),
		CollaboratorURL: os.Getenv("AI_COLLABORATOR_URL"),
		TargetsPath:     os.Getenv("TARGETS_PATH"),
	}

	var err error
	if cfg.RoundDuration, err = getdur("ROUND_DURATION", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.AIChatCooldown, err = getdur("AI_CHAT_COOLDOWN", 20*time.Second); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getenv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func getdur(name string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: bad %s: %w", name, err)
	}
	return d, nil
}
