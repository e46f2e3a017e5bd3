package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/steadifi/contract-harness/internal/domain"
)

// loadDotEnv loads .env then .env.local from the project root. Variables
// already present in the process environment are never overridden.
func loadDotEnv(projectRoot string) {
	envFiles := []string{
		filepath.Join(projectRoot, ".env"),
		filepath.Join(projectRoot, ".env.local"),
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
			}
		}
	}
}

// parseToggle reads a TRUE/FALSE switch. An empty value yields def; any
// other spelling is rejected so typos never silently flip behavior.
func parseToggle(name, value string, def bool) (bool, error) {
	switch strings.TrimSpace(value) {
	case "":
		return def, nil
	case "TRUE":
		return true, nil
	case "FALSE":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %s must be TRUE or FALSE, got %q", domain.ErrInvalidConfig, name, value)
	}
}
