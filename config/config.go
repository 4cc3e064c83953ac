package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// EnvPrefix is prepended to every environment variable name. PORT is also
// read without it.
const EnvPrefix = "STOREFRONT"

// Config holds all configuration settings for the application.
type Config struct {
	// Server settings
	ListenAddress string
	ListenPort    string
	CORSOrigins   []string

	// Storage settings
	DataDir      string
	ProductsFile string
	UsersFile    string
	EnableBackup bool

	// Authentication settings
	JwtSecret         string // The actual secret key
	JwtSecretFile     string // Path to the file containing the secret
	TokenLifetime     time.Duration
	BcryptCost        int
	AdminUsername     string
	AdminPasswordHash string
	AuthRatePerMinute int

	// Real-time relay
	RedisURL string

	// Logging
	LogLevel  string
	LogFormat string
}

// envSettings is the environment view of Config, decoded by envconfig. Only
// Port carries an envconfig tag, which makes envconfig also accept the bare
// PORT; every other setting is read with the STOREFRONT_ prefix only.
type envSettings struct {
	ListenAddress     string        `split_words:"true" default:"0.0.0.0"`
	Port              string        `envconfig:"PORT" default:"3000"`
	CORSOrigins       []string      `split_words:"true" default:"*"`
	DataDir           string        `split_words:"true" default:"./data"`
	EnableBackup      bool          `split_words:"true" default:"false"`
	JwtSecret         string        `split_words:"true"`
	JwtSecretFile     string        `split_words:"true"`
	TokenLifetime     time.Duration `split_words:"true" default:"24h"`
	BcryptCost        int           `split_words:"true" default:"10"`
	AdminUsername     string        `split_words:"true" default:"admin"`
	AdminPassword     string        `split_words:"true"`
	AdminPasswordHash string        `split_words:"true"`
	AuthRatePerMinute int           `split_words:"true" default:"10"`
	RedisURL          string        `split_words:"true"`
	LogLevel          string        `split_words:"true" default:"info"`
	LogFormat         string        `split_words:"true" default:"text"`
}

const (
	defaultJwtKeyFile   = "./storefront.key" // Used when we have to generate a key
	productsFileName    = "products.json"
	usersFileName       = "users.json"
	generatedPasswordSz = 12
)

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load builds a Config from defaults, a .env file, environment variables and
// the given command-line arguments. Flags take precedence over environment
// variables, which take precedence over defaults.
func Load(args []string) (*Config, error) {
	// A missing .env is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("Failed to read .env file: %v", err)
	}

	var env envSettings
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	cfg := &Config{
		CORSOrigins:       env.CORSOrigins,
		TokenLifetime:     env.TokenLifetime,
		BcryptCost:        env.BcryptCost,
		AdminUsername:     env.AdminUsername,
		AdminPasswordHash: env.AdminPasswordHash,
		AuthRatePerMinute: env.AuthRatePerMinute,
		RedisURL:          env.RedisURL,
		LogLevel:          env.LogLevel,
		LogFormat:         env.LogFormat,
	}

	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.StringVar(&cfg.ListenAddress, "address", env.ListenAddress, "Server listen address (Env: STOREFRONT_LISTEN_ADDRESS)")
	fs.StringVar(&cfg.ListenPort, "port", env.Port, "Server listen port (Env: PORT or STOREFRONT_PORT)")
	fs.StringVar(&cfg.DataDir, "data-dir", env.DataDir, "Directory holding products.json and users.json (Env: STOREFRONT_DATA_DIR)")
	fs.BoolVar(&cfg.EnableBackup, "enable-backup", env.EnableBackup, "Keep a .bak copy of each data file before rewriting it (Env: STOREFRONT_ENABLE_BACKUP)")
	fs.StringVar(&cfg.JwtSecretFile, "jwt-secret-file", env.JwtSecretFile, "Path to file containing JWT secret key (Env: STOREFRONT_JWT_SECRET_FILE)")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		log.Warnf("Invalid bcrypt cost %d. Using default %d.", cfg.BcryptCost, bcrypt.DefaultCost)
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.TokenLifetime <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %s", cfg.TokenLifetime)
	}

	secretSource, err := resolveJwtSecret(cfg, env.JwtSecret)
	if err != nil {
		return nil, err
	}

	if err := resolveAdminCredential(cfg, env.AdminPassword); err != nil {
		return nil, err
	}

	// --- Data Path Validation ---
	absDataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("could not determine absolute path for data-dir '%s': %w", cfg.DataDir, err)
	}
	cfg.DataDir = absDataDir
	if info, err := os.Stat(cfg.DataDir); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("data path '%s' points to a file, not a directory", cfg.DataDir)
	}
	// A missing directory is created by the stores on first write.
	cfg.ProductsFile = filepath.Join(cfg.DataDir, productsFileName)
	cfg.UsersFile = filepath.Join(cfg.DataDir, usersFileName)

	logConfiguration(cfg, secretSource)

	return cfg, nil
}

// resolveJwtSecret fills cfg.JwtSecret.
// Priority: File (flag/env) > Env Var > Default Key File > Generate.
func resolveJwtSecret(cfg *Config, envSecret string) (string, error) {
	if cfg.JwtSecretFile != "" {
		secretBytes, err := os.ReadFile(cfg.JwtSecretFile)
		if err == nil {
			cfg.JwtSecret = strings.TrimSpace(string(secretBytes))
			if cfg.JwtSecret != "" {
				return fmt.Sprintf("File (%s)", cfg.JwtSecretFile), nil
			}
			log.Warnf("Specified JWT secret file '%s' is empty. Ignoring.", cfg.JwtSecretFile)
		} else {
			log.Warnf("Failed to read specified JWT secret file '%s': %v. Checking other sources.", cfg.JwtSecretFile, err)
		}
	}

	if secret := strings.TrimSpace(envSecret); secret != "" {
		cfg.JwtSecret = secret
		return "Environment Variable (STOREFRONT_JWT_SECRET)", nil
	}

	secretBytes, err := os.ReadFile(defaultJwtKeyFile)
	if err == nil {
		cfg.JwtSecret = strings.TrimSpace(string(secretBytes))
		if cfg.JwtSecret != "" {
			return fmt.Sprintf("Default Key File (%s)", defaultJwtKeyFile), nil
		}
		log.Warnf("Default JWT key file '%s' is empty. Will generate a new secret.", defaultJwtKeyFile)
	} else if !os.IsNotExist(err) {
		log.Warnf("Failed to read default JWT key file '%s': %v. Will generate a new secret.", defaultJwtKeyFile, err)
	}

	log.Info("JWT secret not found via file, environment variable, or default key file. Generating a new secret...")
	newSecret, err := generateRandomKey(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	cfg.JwtSecret = newSecret

	if err := os.WriteFile(defaultJwtKeyFile, []byte(newSecret), 0600); err != nil {
		log.Warnf("Failed to save generated JWT secret to '%s': %v. The key is valid for this session only.", defaultJwtKeyFile, err)
		return "Generated (In Memory)", nil
	}
	return fmt.Sprintf("Generated & Saved (%s)", defaultJwtKeyFile), nil
}

// resolveAdminCredential makes sure cfg.AdminPasswordHash holds a bcrypt hash.
// A plain password from the environment is hashed; with neither configured a
// one-time password is generated and printed so the panel is still reachable.
func resolveAdminCredential(cfg *Config, plain string) error {
	if cfg.AdminUsername == "" {
		return errors.New("admin username must not be empty")
	}
	if cfg.AdminPasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(cfg.AdminPasswordHash)); err != nil {
			return fmt.Errorf("STOREFRONT_ADMIN_PASSWORD_HASH is not a bcrypt hash: %w", err)
		}
		return nil
	}

	generated := false
	if plain == "" {
		p, err := generateRandomKey(generatedPasswordSz / 2)
		if err != nil {
			return fmt.Errorf("failed to generate admin password: %w", err)
		}
		plain = p
		generated = true
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	cfg.AdminPasswordHash = string(hash)

	if generated {
		log.Warn("*****************************************************")
		log.Warnf("No admin password configured. Generated one for user '%s': %s", cfg.AdminUsername, plain)
		log.Warn("Set STOREFRONT_ADMIN_PASSWORD_HASH to keep it stable across restarts.")
		log.Warn("*****************************************************")
	}
	return nil
}

// logConfiguration prints the loaded configuration settings.
func logConfiguration(cfg *Config, secretSource string) {
	log.WithFields(log.Fields{
		"address":        cfg.ListenAddress,
		"port":           cfg.ListenPort,
		"data_dir":       cfg.DataDir,
		"backup":         cfg.EnableBackup,
		"jwt_source":     secretSource,
		"token_lifetime": cfg.TokenLifetime.String(),
		"bcrypt_cost":    cfg.BcryptCost,
		"admin_user":     cfg.AdminUsername,
		"cors_origins":   strings.Join(cfg.CORSOrigins, ","),
		"redis_relay":    cfg.RedisURL != "",
	}).Info("Configuration loaded")
}

// generateRandomKey generates a cryptographically secure random key of the specified byte length
// and returns it as a hex-encoded string.
func generateRandomKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
