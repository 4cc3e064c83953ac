// Package client is the storefront's client-side state layer: catalog copy,
// cart, account and admin session, mirrored to a local key/value file and kept
// in sync with the server's real-time stream.
package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Keys used in the LocalStore.
const (
	KeyCart            = "cart"
	KeyIsAdminLoggedIn = "isAdminLoggedIn"
	KeyAdminToken      = "adminToken"
	KeyCurrentUser     = "currentUser"
	KeyUserToken       = "userToken"
	KeySearchHistory   = "searchHistory"
	KeyProducts        = "products"
)

// LocalStore is a small persistent key/value store holding JSON values,
// the Go counterpart of a browser's localStorage. An empty path keeps
// everything in memory.
type LocalStore struct {
	mu     sync.Mutex
	path   string
	values map[string]json.RawMessage
}

// OpenLocalStore loads path if it exists. An unreadable or corrupt file is
// logged and replaced by an empty store on the next write.
func OpenLocalStore(path string) (*LocalStore, error) {
	s := &LocalStore{path: path, values: make(map[string]json.RawMessage)}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading local store %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		log.WithError(err).WithField("path", path).Warn("Local store is corrupt, starting empty")
		s.values = make(map[string]json.RawMessage)
	}
	return s, nil
}

// Get decodes the value under key into v. It reports false when the key is
// absent or its value cannot be decoded into v.
func (s *LocalStore) Get(key string, v any) bool {
	s.mu.Lock()
	raw, ok := s.values[key]
	s.mu.Unlock()
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		log.WithError(err).WithField("key", key).Warn("Ignoring undecodable local value")
		return false
	}
	return true
}

// Set stores v under key and writes the file.
func (s *LocalStore) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = raw
	return s.flushLocked()
}

// Remove deletes key and writes the file.
func (s *LocalStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.flushLocked()
}

func (s *LocalStore) flushLocked() error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding local store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating local store directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing local store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing local store: %w", err)
	}
	return nil
}
