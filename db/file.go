package db

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// readJSONFile decodes path into v. It reports found=false when the file does
// not exist; any other read failure or a decode failure is returned as err.
func readJSONFile(path string, v any) (found bool, err error) {
	fileData, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(fileData, v); err != nil {
		return true, fmt.Errorf("parsing %s: %w", path, err)
	}
	return true, nil
}

// writeJSONFile rewrites path with the pretty-printed JSON encoding of v.
// The data goes to a temporary file first and is renamed into place, so a
// crash mid-write leaves either the old or the new content. With backup set
// the previous file is kept as path.bak.
func writeJSONFile(path string, v any, backup bool) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", filepath.Base(path), err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	tempFilePath := path + ".tmp"
	backupFilePath := path + ".bak"

	if err := os.WriteFile(tempFilePath, jsonData, 0644); err != nil {
		return fmt.Errorf("writing temporary file '%s': %w", tempFilePath, err)
	}

	if backup {
		if _, err := os.Stat(path); err == nil {
			if err := os.Rename(path, backupFilePath); err != nil {
				log.Warnf("Failed to rename '%s' to '%s' for backup: %v. Proceeding with save.", path, backupFilePath, err)
			} else {
				log.Debugf("Created backup file: %s", backupFilePath)
			}
		} else if !os.IsNotExist(err) {
			log.Warnf("Error checking status of '%s' before backup: %v", path, err)
		}
	}

	if err := os.Rename(tempFilePath, path); err != nil {
		_ = os.Remove(tempFilePath)
		return fmt.Errorf("renaming '%s' to '%s': %w", tempFilePath, path, err)
	}

	log.Debugf("Saved %s", path)
	return nil
}
