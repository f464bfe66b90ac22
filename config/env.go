package config

import (
	"os"
	"path/filepath"

	"github.com/grovetools/tabpresence/errors"
	"github.com/joho/godotenv"
)

// ClientIDEnv is the environment variable holding the Discord application id.
const ClientIDEnv = "DISCORD_CLIENT_ID"

// LoadDotEnv loads dir/.env into the process environment if the file
// exists. Variables that are already set are not overridden.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return errors.ConfigInvalid(path, err)
	}
	return nil
}

// ResolveClientID returns the Discord application id from the environment
// or, failing that, from settings.
func (s *Settings) ResolveClientID() (string, error) {
	if id := os.Getenv(ClientIDEnv); id != "" {
		return id, nil
	}
	if s != nil && s.ClientID != "" {
		return s.ClientID, nil
	}
	return "", errors.MissingClientID(ClientIDEnv)
}
