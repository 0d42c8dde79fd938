package config

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded when no explicit env file is given.
const DefaultEnvFile = ".env"

// LoadEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set are not overridden. An empty path loads ./.env and
// then <home>/.env, skipping whichever does not exist, so ./.env wins.
func LoadEnv(path string) error {
	if path != "" {
		return godotenv.Load(path)
	}

	candidates := []string{DefaultEnvFile}
	if home := GetEnvFile(); !samePath(home, DefaultEnvFile) {
		candidates = append(candidates, home)
	}
	for _, p := range candidates {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
