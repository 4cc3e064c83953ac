package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"storefront/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUsers(t *testing.T) *UserStore {
	t.Helper()
	store, err := NewUserStore(createTestConfig(t))
	require.NoError(t, err, "NewUserStore failed during setup")
	return store
}

func TestUsers_Load_FileNotFound(t *testing.T) {
	cfg := createTestConfig(t)
	store, err := NewUserStore(cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, store.Count())

	data, err := os.ReadFile(cfg.UsersFile)
	require.NoError(t, err, "an empty users file should be written")
	assert.JSONEq(t, `[]`, string(data))
}

func TestUsers_Load_InvalidJSON(t *testing.T) {
	cfg := createTestConfig(t)
	require.NoError(t, os.WriteFile(cfg.UsersFile, []byte(`{not json`), 0644))

	store, err := NewUserStore(cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, store.Count())
	_, err = os.Stat(cfg.UsersFile + ".bak")
	assert.NoError(t, err, "corrupt users file kept as backup")
}

func TestUsers_Register(t *testing.T) {
	cfg := createTestConfig(t)
	store, err := NewUserStore(cfg)
	require.NoError(t, err)
	joined := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return joined }

	user, err := store.Register(" alice ", "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, joined.UnixMilli(), user.ID)
	assert.Equal(t, joined, user.JoinDate)
	assert.NotEqual(t, "secret123", user.PasswordHash, "password is stored hashed")
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotNil(t, user.SearchHistory)

	// Persisted without the plaintext password.
	data, err := os.ReadFile(cfg.UsersFile)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret123")
	var onDisk []models.User
	require.NoError(t, json.Unmarshal(data, &onDisk))
	require.Len(t, onDisk, 1)
	assert.Equal(t, "alice@example.com", onDisk[0].Email)
}

func TestUsers_Register_Conflicts(t *testing.T) {
	store := setupUsers(t)
	_, err := store.Register("alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	_, err = store.Register("Alice", "new@example.com", "secret123")
	assert.True(t, errors.Is(err, ErrConflict), "username compared case-insensitively, got %v", err)
	assert.Contains(t, err.Error(), "username")

	_, err = store.Register("bob", "ALICE@example.com", "secret123")
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Contains(t, err.Error(), "email")

	assert.Equal(t, 1, store.Count(), "conflicts leave the store unchanged")
}

func TestUsers_Register_Invalid(t *testing.T) {
	store := setupUsers(t)

	_, err := store.Register("", "a@example.com", "secret123")
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = store.Register("bob", " ", "secret123")
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = store.Register("bob", "b@example.com", "12345")
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, 0, store.Count())
}

func TestUsers_Authenticate(t *testing.T) {
	store := setupUsers(t)
	registered, err := store.Register("carol", "carol@example.com", "secret123")
	require.NoError(t, err)

	user, err := store.Authenticate("CAROL", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = store.Authenticate("carol", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = store.Authenticate("nobody", "secret123")
	assert.True(t, errors.Is(err, ErrInvalidCredentials), "unknown user and wrong password look the same")
}

func TestUsers_AppendSearch_CapsAtTwenty(t *testing.T) {
	store := setupUsers(t)
	user, err := store.Register("dave", "dave@example.com", "secret123")
	require.NoError(t, err)

	for i := 1; i <= 25; i++ {
		_, err := store.AppendSearch(user.ID, fmt.Sprintf("term-%d", i))
		require.NoError(t, err)
	}

	got, ok := store.Get(user.ID)
	require.True(t, ok)
	require.Len(t, got.SearchHistory, models.MaxSearchHistory)
	assert.Equal(t, "term-25", got.SearchHistory[0].Term, "newest first")
	assert.Equal(t, "term-6", got.SearchHistory[19].Term, "oldest entries dropped")
}

func TestUsers_AppendSearch_Errors(t *testing.T) {
	store := setupUsers(t)
	user, err := store.Register("erin", "erin@example.com", "secret123")
	require.NoError(t, err)

	_, err = store.AppendSearch(user.ID, "   ")
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = store.AppendSearch(12345, "x")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUsers_ClearSearchHistory(t *testing.T) {
	store := setupUsers(t)
	user, err := store.Register("frank", "frank@example.com", "secret123")
	require.NoError(t, err)
	_, err = store.AppendSearch(user.ID, "coffee")
	require.NoError(t, err)

	cleared, err := store.ClearSearchHistory(user.ID)
	require.NoError(t, err)
	assert.NotNil(t, cleared.SearchHistory)
	assert.Empty(t, cleared.SearchHistory)
}

func TestUsers_GetReturnsCopy(t *testing.T) {
	store := setupUsers(t)
	user, err := store.Register("gina", "gina@example.com", "secret123")
	require.NoError(t, err)
	_, err = store.AppendSearch(user.ID, "original")
	require.NoError(t, err)

	got, _ := store.Get(user.ID)
	got.SearchHistory[0].Term = "mutated"

	again, _ := store.Get(user.ID)
	assert.Equal(t, "original", again.SearchHistory[0].Term)
}

func TestUsers_ReloadFromDisk(t *testing.T) {
	cfg := createTestConfig(t)
	store, err := NewUserStore(cfg)
	require.NoError(t, err)
	user, err := store.Register("hank", "hank@example.com", "secret123")
	require.NoError(t, err)
	_, err = store.AppendSearch(user.ID, "lamp")
	require.NoError(t, err)

	reopened, err := NewUserStore(cfg)
	require.NoError(t, err)
	got, ok := reopened.Get(user.ID)
	require.True(t, ok)
	assert.Equal(t, "hank", got.Username)
	require.Len(t, got.SearchHistory, 1)
	assert.Equal(t, "lamp", got.SearchHistory[0].Term)

	_, err = reopened.Authenticate("hank", "secret123")
	assert.NoError(t, err)
}
