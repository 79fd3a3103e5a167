package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where chordsync stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// Secret signs session cookies
	Secret string

	// AI configuration
	AIBaseURL   string // CHORDSYNC_AI_BASE_URL (default: https://api.openai.com/v1)
	AIAPIKey    string // CHORDSYNC_AI_API_KEY
	AIChatModel string // CHORDSYNC_AI_CHAT_MODEL (default: gpt-4o-mini)

	// Catalog (Spotify) configuration
	SpotifyClientID     string // CHORDSYNC_SPOTIFY_CLIENT_ID
	SpotifyClientSecret string // CHORDSYNC_SPOTIFY_CLIENT_SECRET

	// Video lookup configuration
	YouTubeAPIKey string // CHORDSYNC_YOUTUBE_API_KEY

	// Admin configuration.
	// AdminEmails is the comma-separated allow-list for force-regenerate/delete.
	AdminEmails string // CHORDSYNC_ADMIN_EMAILS
	// AdminTokenHash is the bcrypt hash of the admin bootstrap token, used to
	// mint session cookies. Empty disables the session exchange endpoint.
	AdminTokenHash string // CHORDSYNC_ADMIN_TOKEN_HASH
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if a generator backend is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIAPIKey != ""
}

// AdminEmailList splits the configured allow-list into trimmed entries.
func (p *Profile) AdminEmailList() []string {
	if p.AdminEmails == "" {
		return nil
	}
	parts := strings.Split(p.AdminEmails, ",")
	emails := make([]string, 0, len(parts))
	for _, part := range parts {
		if email := strings.TrimSpace(part); email != "" {
			emails = append(emails, email)
		}
	}
	return emails
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from CHORDSYNC_* environment variables.
func (p *Profile) FromEnv() {
	p.AIBaseURL = getEnvOrDefault("CHORDSYNC_AI_BASE_URL", "https://api.openai.com/v1")
	p.AIAPIKey = os.Getenv("CHORDSYNC_AI_API_KEY")
	p.AIChatModel = getEnvOrDefault("CHORDSYNC_AI_CHAT_MODEL", "gpt-4o-mini")

	p.SpotifyClientID = os.Getenv("CHORDSYNC_SPOTIFY_CLIENT_ID")
	p.SpotifyClientSecret = os.Getenv("CHORDSYNC_SPOTIFY_CLIENT_SECRET")

	p.YouTubeAPIKey = os.Getenv("CHORDSYNC_YOUTUBE_API_KEY")

	p.AdminEmails = os.Getenv("CHORDSYNC_ADMIN_EMAILS")
	p.AdminTokenHash = os.Getenv("CHORDSYNC_ADMIN_TOKEN_HASH")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "chordsync")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/chordsync"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("chordsync_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
