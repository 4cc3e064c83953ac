package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var envKeys = []string{
	"LISTEN_ADDRESS", "PORT", "CORS_ORIGINS", "DATA_DIR", "ENABLE_BACKUP",
	"JWT_SECRET", "JWT_SECRET_FILE", "TOKEN_LIFETIME", "BCRYPT_COST",
	"ADMIN_USERNAME", "ADMIN_PASSWORD", "ADMIN_PASSWORD_HASH",
	"AUTH_RATE_PER_MINUTE", "REDIS_URL", "LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv unsets every variable Load reads, prefixed and bare, and restores
// them when the test ends.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		for _, name := range []string{EnvPrefix + "_" + key, key} {
			if old, ok := os.LookupEnv(name); ok {
				name, old := name, old
				t.Cleanup(func() { os.Setenv(name, old) })
			}
			os.Unsetenv(name)
		}
	}
}

// Helper to get absolute path for comparison
func absPath(path string) string {
	abs, _ := filepath.Abs(path)
	return abs
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("STOREFRONT_JWT_SECRET", "test-default-secret")
	t.Setenv("STOREFRONT_ADMIN_PASSWORD", "admin-password")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.ListenAddress)
	assert.Equal(t, "3000", cfg.ListenPort)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, absPath("./data"), cfg.DataDir)
	assert.Equal(t, filepath.Join(absPath("./data"), "products.json"), cfg.ProductsFile)
	assert.Equal(t, filepath.Join(absPath("./data"), "users.json"), cfg.UsersFile)
	assert.False(t, cfg.EnableBackup)
	assert.Equal(t, 24*time.Hour, cfg.TokenLifetime)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, 10, cfg.AuthRatePerMinute)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "test-default-secret", cfg.JwtSecret, "JWT Secret should be loaded from env var")
}

func TestLoad_EnvVars(t *testing.T) {
	clearEnv(t)
	dataDir := t.TempDir()

	t.Setenv("STOREFRONT_LISTEN_ADDRESS", "192.168.1.100")
	t.Setenv("STOREFRONT_PORT", "9000")
	t.Setenv("STOREFRONT_CORS_ORIGINS", "http://a.example,http://b.example")
	t.Setenv("STOREFRONT_DATA_DIR", dataDir)
	t.Setenv("STOREFRONT_ENABLE_BACKUP", "true")
	t.Setenv("STOREFRONT_JWT_SECRET_FILE", "/nonexistent/jwt_env.key") // Falls back to JWT_SECRET
	t.Setenv("STOREFRONT_JWT_SECRET", "env_secret_key_longer_than_32_bytes")
	t.Setenv("STOREFRONT_TOKEN_LIFETIME", "2h")
	t.Setenv("STOREFRONT_BCRYPT_COST", "4")
	t.Setenv("STOREFRONT_ADMIN_USERNAME", "root")
	t.Setenv("STOREFRONT_ADMIN_PASSWORD", "hunter22")
	t.Setenv("STOREFRONT_AUTH_RATE_PER_MINUTE", "0")
	t.Setenv("STOREFRONT_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.100", cfg.ListenAddress)
	assert.Equal(t, "9000", cfg.ListenPort)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.True(t, cfg.EnableBackup)
	assert.Equal(t, "env_secret_key_longer_than_32_bytes", cfg.JwtSecret)
	assert.Equal(t, 2*time.Hour, cfg.TokenLifetime)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, "root", cfg.AdminUsername)
	assert.Equal(t, 0, cfg.AuthRatePerMinute)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(cfg.AdminPasswordHash), []byte("hunter22")),
		"plain admin password should be hashed")
}

func TestLoad_BarePort(t *testing.T) {
	clearEnv(t)
	t.Setenv("STOREFRONT_JWT_SECRET", "prefixed-secret")
	t.Setenv("PORT", "8081")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "8081", cfg.ListenPort)
	assert.Equal(t, "prefixed-secret", cfg.JwtSecret)
}

func TestLoad_OnlyPortReadsBareName(t *testing.T) {
	clearEnv(t)
	t.Setenv("STOREFRONT_JWT_SECRET", "prefixed-secret")
	t.Setenv("STOREFRONT_ADMIN_PASSWORD", "admin-password")
	bareDir := t.TempDir()
	t.Setenv("JWT_SECRET", "bare-secret")
	t.Setenv("DATA_DIR", bareDir)
	t.Setenv("ADMIN_USERNAME", "bare-admin")
	t.Setenv("REDIS_URL", "redis://bare:6379/0")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BCRYPT_COST", "12")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "prefixed-secret", cfg.JwtSecret)
	assert.Equal(t, absPath("./data"), cfg.DataDir)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestLoad_Flags(t *testing.T) {
	clearEnv(t)
	t.Setenv("STOREFRONT_PORT", "9000") // Flags win over env
	dataDir := t.TempDir()
	secretFile := filepath.Join(t.TempDir(), "jwt.key")
	require.NoError(t, os.WriteFile(secretFile, []byte("  file-secret\n"), 0600))

	cfg, err := Load([]string{
		"--address", "127.0.0.1",
		"--port", "8888",
		"--data-dir", dataDir,
		"--enable-backup=true",
		"--jwt-secret-file", secretFile,
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.ListenAddress)
	assert.Equal(t, "8888", cfg.ListenPort)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.True(t, cfg.EnableBackup)
	assert.Equal(t, "file-secret", cfg.JwtSecret, "secret file is trimmed and takes priority")
}

func TestLoad_UnknownFlag(t *testing.T) {
	clearEnv(t)
	_, err := Load([]string{"--no-such-flag"})
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("bad duration", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STOREFRONT_TOKEN_LIFETIME", "soon")
		_, err := Load(nil)
		assert.Error(t, err)
	})

	t.Run("non-positive lifetime", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STOREFRONT_JWT_SECRET", "x")
		t.Setenv("STOREFRONT_TOKEN_LIFETIME", "0s")
		_, err := Load(nil)
		assert.Error(t, err)
	})

	t.Run("bcrypt cost out of range", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STOREFRONT_JWT_SECRET", "x")
		t.Setenv("STOREFRONT_ADMIN_PASSWORD", "pw")
		t.Setenv("STOREFRONT_BCRYPT_COST", "99")
		cfg, err := Load(nil)
		require.NoError(t, err)
		assert.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
	})

	t.Run("admin hash not bcrypt", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STOREFRONT_JWT_SECRET", "x")
		t.Setenv("STOREFRONT_ADMIN_PASSWORD_HASH", "plaintext")
		_, err := Load(nil)
		assert.Error(t, err)
	})

	t.Run("data dir is a file", func(t *testing.T) {
		clearEnv(t)
		file := filepath.Join(t.TempDir(), "data")
		require.NoError(t, os.WriteFile(file, nil, 0644))
		t.Setenv("STOREFRONT_JWT_SECRET", "x")
		t.Setenv("STOREFRONT_ADMIN_PASSWORD", "pw")
		t.Setenv("STOREFRONT_DATA_DIR", file)
		_, err := Load(nil)
		assert.Error(t, err)
	})
}

func TestLoad_AdminPasswordHash(t *testing.T) {
	clearEnv(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	t.Setenv("STOREFRONT_JWT_SECRET", "x")
	t.Setenv("STOREFRONT_ADMIN_PASSWORD_HASH", string(hash))

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, string(hash), cfg.AdminPasswordHash)
}

func TestLoad_GeneratesAdminPassword(t *testing.T) {
	clearEnv(t)
	t.Setenv("STOREFRONT_JWT_SECRET", "x")
	t.Setenv("STOREFRONT_BCRYPT_COST", "4")

	cfg, err := Load(nil)
	require.NoError(t, err)
	_, err = bcrypt.Cost([]byte(cfg.AdminPasswordHash))
	assert.NoError(t, err, "a generated password is stored as a bcrypt hash")
}

func TestLoad_GeneratesJwtSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("STOREFRONT_ADMIN_PASSWORD", "pw")
	t.Setenv("STOREFRONT_BCRYPT_COST", "4")

	_ = os.Remove(defaultJwtKeyFile)
	t.Cleanup(func() { _ = os.Remove(defaultJwtKeyFile) })

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Len(t, cfg.JwtSecret, 64, "32 random bytes, hex encoded")

	saved, err := os.ReadFile(defaultJwtKeyFile)
	require.NoError(t, err, "generated secret should be saved")
	assert.Equal(t, cfg.JwtSecret, string(saved))

	// The saved key is reused on the next start.
	again, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, cfg.JwtSecret, again.JwtSecret)
}

func TestGenerateRandomKey(t *testing.T) {
	key, err := generateRandomKey(16)
	require.NoError(t, err)
	assert.Len(t, key, 32)

	other, err := generateRandomKey(16)
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}
