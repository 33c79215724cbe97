package config

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/mdxlayout/internal/foundation/errors"
	"github.com/joho/godotenv"
)

// envFiles are loaded in order; earlier files win because existing
// environment variables are never overwritten.
var envFiles = []string{".env.local", ".env"}

// loadEnvFiles loads the .env files present in dir into the process
// environment. Missing files are skipped.
func loadEnvFiles(dir string) error {
	for _, name := range envFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "failed to load environment file").
				WithContext("path", path).
				Build()
		}
	}
	return nil
}
