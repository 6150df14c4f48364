// Copyright (c) 2026 BVK Chaitanya

// Package setup implements subcommands that configure service credentials in
// the secrets file and verify them against the live services.
package setup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bvk/pacwatch/server"
)

// loadSecrets reads the secrets file under the data directory, creating the
// data directory when necessary. A missing secrets file yields empty secrets.
func loadSecrets(dir string) (*server.Secrets, string, error) {
	if len(dir) == 0 {
		dir = filepath.Join(os.Getenv("HOME"), ".pacwatch")
	}
	if _, err := os.Stat(dir); err != nil {
		if !os.IsNotExist(err) {
			return nil, "", fmt.Errorf("could not stat data directory %q: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, "", fmt.Errorf("could not create data directory %q: %w", dir, err)
		}
	}
	dataDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("could not determine data-dir %q absolute path: %w", dir, err)
	}
	secretsPath := filepath.Join(dataDir, "secrets.json")
	secrets, err := server.SecretsFromFile(secretsPath)
	if err != nil {
		return nil, "", err
	}
	return secrets, secretsPath, nil
}

func writeSecrets(fpath string, secrets *server.Secrets) error {
	js, err := json.MarshalIndent(secrets, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(fpath, js, os.FileMode(0600))
}
