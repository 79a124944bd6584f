// Package config gathers all externally supplied settings into one explicit
// object handed to the components that need them. Nothing outside this
// package reads the process environment.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config carries every runtime setting of the pipeline.
type Config struct {
	GeminiAPIKey string
	GeminiModel  string
	DatabaseURL  string // empty: use the filesystem store
	TemplateDir  string
	OutputDir    string
	RegistryPath string
}

// Load reads settings from a .env file (when present) and the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, assuming environment variables are set.")
	}
	return Config{
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getenvDefault("GEMINI_MODEL", "gemini-2.0-flash-exp"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		TemplateDir:  getenvDefault("TEMPLATE_DIR", "templates"),
		OutputDir:    getenvDefault("OUTPUT_DIR", "outputs"),
		RegistryPath: getenvDefault("BLOCK_REGISTRY", "config/blocks.yaml"),
	}
}

func getenvDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
