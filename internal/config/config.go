package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/taskhive-dev/taskhive/internal/services"
)

type Config struct {
	Port                string
	DatabaseURL         string
	JWTSecret           string
	CookieDomain        string
	MemberRemovalPolicy string
	AllowedOrigins      []string
}

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

// Load reads the environment (and an optional .env file) into a validated
// Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:                getEnv("PORT", "3000"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		CookieDomain:        os.Getenv("DOMAIN"),
		MemberRemovalPolicy: getEnv("MEMBER_REMOVAL_POLICY", services.OrphanPolicyUnassign),
		AllowedOrigins:      loadOrigins(),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	if !services.ValidOrphanPolicy(cfg.MemberRemovalPolicy) {
		return nil, fmt.Errorf("MEMBER_REMOVAL_POLICY must be %q or %q",
			services.OrphanPolicyUnassign, services.OrphanPolicyBlock)
	}

	return cfg, nil
}

func loadOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowed := os.Getenv("ALLOWED_ORIGINS"); allowed != "" {
		for _, origin := range strings.Split(allowed, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
