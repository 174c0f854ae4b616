// Package config loads application configuration from environment variables.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	DBPath     string

	JobberClientID     string
	JobberClientSecret string
	JobberRefreshToken string
	JobberAccessToken  string
	JobberRedirectURI  string

	OpenPhoneAPIKey string
	MondayAPIToken  string

	AirIQUsername string
	AirIQPassword string
}

// HasJobberCredentials reports whether the field-service OAuth app is fully
// configured. Without it the proxy still runs but every request fails at the
// provider, which the dashboard renders as a panel-level error.
func (c *Config) HasJobberCredentials() bool {
	return c.JobberClientID != "" && c.JobberClientSecret != "" && c.JobberRefreshToken != ""
}

// Load reads configuration from a .env file (if present) and the
// environment. Provider credentials are all optional: a missing credential
// disables only that provider's panel, never startup. Variables with
// defaults: OPSBOARD_LISTEN_ADDR (127.0.0.1:8080), OPSBOARD_DB_PATH
// (opsboard.db).
func Load() (*Config, error) {
	// Load order matches the original deployment: .env values fill gaps but
	// never override the real environment.
	_ = godotenv.Load()

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("OPSBOARD_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "opsboard.db"
	if v, ok := os.LookupEnv("OPSBOARD_DB_PATH"); ok {
		dbPath = v
	}

	return &Config{
		ListenAddr:         listenAddr,
		DBPath:             dbPath,
		JobberClientID:     os.Getenv("OPSBOARD_JOBBER_CLIENT_ID"),
		JobberClientSecret: os.Getenv("OPSBOARD_JOBBER_CLIENT_SECRET"),
		JobberRefreshToken: os.Getenv("OPSBOARD_JOBBER_REFRESH_TOKEN"),
		JobberAccessToken:  os.Getenv("OPSBOARD_JOBBER_ACCESS_TOKEN"),
		JobberRedirectURI:  os.Getenv("OPSBOARD_JOBBER_REDIRECT_URI"),
		OpenPhoneAPIKey:    os.Getenv("OPSBOARD_OPENPHONE_API_KEY"),
		MondayAPIToken:     os.Getenv("OPSBOARD_MONDAY_API_TOKEN"),
		AirIQUsername:      os.Getenv("OPSBOARD_AIRIQ_USERNAME"),
		AirIQPassword:      os.Getenv("OPSBOARD_AIRIQ_PASSWORD"),
	}, nil
}
