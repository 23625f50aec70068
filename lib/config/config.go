// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// EnvironmentVariable names the variable Load reads the config path
// from.
const EnvironmentVariable = "FAIRMINT_CONFIG"

// Config is the master configuration for a collection.
type Config struct {
	Environment Environment `yaml:"environment"`

	Collection CollectionConfig `yaml:"collection"`

	// Owner is the admin address (0x-prefixed hex). Admin calls
	// whose token subject is not Owner are rejected.
	Owner string `yaml:"owner"`

	// PassAddress is handed to the claim pass gate.
	PassAddress string `yaml:"pass_address"`

	Admin       AdminConfig       `yaml:"admin"`
	Paths       PathsConfig       `yaml:"paths"`
	Store       StoreConfig       `yaml:"store"`
	Delegations DelegationsConfig `yaml:"delegations"`
	Randomness  RandomnessConfig  `yaml:"randomness"`
	Log         LogConfig         `yaml:"log"`

	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per
// environment.
type ConfigOverrides struct {
	Paths      *PathsConfig      `yaml:"paths,omitempty"`
	Store      *StoreConfig      `yaml:"store,omitempty"`
	Randomness *RandomnessConfig `yaml:"randomness,omitempty"`
	Log        *LogConfig        `yaml:"log,omitempty"`
}

// CollectionConfig describes the collection. Root, locators and the
// pass address only seed a fresh store; once state exists the
// persisted values (which the admin surface may have changed) win.
type CollectionConfig struct {
	Name      string `yaml:"name"`
	MaxSupply uint64 `yaml:"max_supply"`

	// Extension is appended to revealed locators. Default: .json
	Extension string `yaml:"extension"`

	PlaceholderLocator string `yaml:"placeholder_locator"`
	BaseLocator        string `yaml:"base_locator"`

	// CommitmentRoot is the 0x-prefixed 32-byte allowlist root.
	CommitmentRoot string `yaml:"commitment_root"`

	// Hash selects the commitment hash: keccak256 (default) or
	// blake3. It cannot change once state exists.
	Hash string `yaml:"hash"`
}

// AdminConfig configures admin token verification.
type AdminConfig struct {
	// PublicKeyFile is the hex Ed25519 public key that admin tokens
	// must be signed with. Without it every admin action is refused.
	PublicKeyFile string `yaml:"public_key_file"`

	// Audience is the token audience this collection accepts.
	// Default: fairmint
	Audience string `yaml:"audience"`

	// TokenTTL is the lifetime of tokens minted by the CLI.
	// Default: 15m
	TokenTTL string `yaml:"token_ttl"`

	// RevokedTokens lists token IDs the service refuses regardless of
	// signature or expiry.
	RevokedTokens []string `yaml:"revoked_tokens"`
}

// PathsConfig configures file locations.
type PathsConfig struct {
	// Root is the base directory for fairmint data.
	Root string `yaml:"root"`

	// Socket is the service's Unix socket.
	Socket string `yaml:"socket"`

	// State holds the store's files.
	State string `yaml:"state"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	// Kind is memory, sqlite, or file. Default: sqlite
	Kind string `yaml:"kind"`

	// Path overrides the backend's file. Default: a file named after
	// the kind inside paths.state.
	Path string `yaml:"path"`

	// Compression applies to the file kind: none, lz4, or zstd.
	Compression string `yaml:"compression"`
}

// DelegationsConfig points at the delegation registry.
type DelegationsConfig struct {
	// File is a JSONC list of {cold, hot} links. Empty means no
	// delegations.
	File string `yaml:"file"`
}

// RandomnessConfig selects the reveal randomness source.
type RandomnessConfig struct {
	// Source is crypto (default) or fixed.
	Source string `yaml:"source"`

	// Value is the fixed source's decimal or 0x-hex value.
	Value string `yaml:"value"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is debug, info, warn, or error. Default: info
	Level string `yaml:"level"`

	// Format is text or json. Default: text
	Format string `yaml:"format"`
}

// Default returns the default configuration, used as the base before
// the file is applied.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".cache", "fairmint")

	return &Config{
		Environment: Development,
		Collection: CollectionConfig{
			Extension: ".json",
			Hash:      "keccak256",
		},
		Admin: AdminConfig{
			Audience: "fairmint",
			TokenTTL: "15m",
		},
		Paths: PathsConfig{
			Root:   defaultRoot,
			Socket: "${FAIRMINT_ROOT}/fairmint.sock",
			State:  "${FAIRMINT_ROOT}/state",
		},
		Store: StoreConfig{
			Kind:        "sqlite",
			Compression: "none",
		},
		Randomness: RandomnessConfig{
			Source: "crypto",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from the file named by FAIRMINT_CONFIG.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your fairmint.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path: defaults, then the file,
// then the matching environment section, then variable expansion.
// The result is not validated; call Validate.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}

	if overrides.Paths != nil {
		overrideString(&c.Paths.Root, overrides.Paths.Root)
		overrideString(&c.Paths.Socket, overrides.Paths.Socket)
		overrideString(&c.Paths.State, overrides.Paths.State)
	}
	if overrides.Store != nil {
		overrideString(&c.Store.Kind, overrides.Store.Kind)
		overrideString(&c.Store.Path, overrides.Store.Path)
		overrideString(&c.Store.Compression, overrides.Store.Compression)
	}
	if overrides.Randomness != nil {
		overrideString(&c.Randomness.Source, overrides.Randomness.Source)
		overrideString(&c.Randomness.Value, overrides.Randomness.Value)
	}
	if overrides.Log != nil {
		overrideString(&c.Log.Level, overrides.Log.Level)
		overrideString(&c.Log.Format, overrides.Log.Format)
	}
}

func overrideString(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"FAIRMINT_ROOT": c.Paths.Root,
		"HOME":          os.Getenv("HOME"),
	}

	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["FAIRMINT_ROOT"] = c.Paths.Root

	c.Paths.Socket = expandVars(c.Paths.Socket, vars)
	c.Paths.State = expandVars(c.Paths.State, vars)
	c.Store.Path = expandVars(c.Store.Path, vars)
	c.Admin.PublicKeyFile = expandVars(c.Admin.PublicKeyFile, vars)
	c.Delegations.File = expandVars(c.Delegations.File, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default}, preferring vars over
// the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains([]Environment{Development, Staging, Production}, c.Environment) {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Collection.MaxSupply == 0 {
		errs = append(errs, errors.New("collection.max_supply must be positive"))
	}
	if !slices.Contains([]string{"keccak256", "blake3"}, c.Collection.Hash) {
		errs = append(errs, fmt.Errorf("collection.hash must be keccak256 or blake3, got %q", c.Collection.Hash))
	}
	if c.Collection.CommitmentRoot != "" {
		if _, err := c.CommitmentRoot(); err != nil {
			errs = append(errs, err)
		}
	}
	if !common.IsHexAddress(c.Owner) {
		errs = append(errs, fmt.Errorf("owner must be a hex address, got %q", c.Owner))
	}
	if c.PassAddress != "" && !common.IsHexAddress(c.PassAddress) {
		errs = append(errs, fmt.Errorf("pass_address must be a hex address, got %q", c.PassAddress))
	}
	if _, err := time.ParseDuration(c.Admin.TokenTTL); err != nil {
		errs = append(errs, fmt.Errorf("admin.token_ttl: %w", err))
	}

	if c.Paths.Root == "" {
		errs = append(errs, errors.New("paths.root is required"))
	}
	if c.Paths.Socket == "" {
		errs = append(errs, errors.New("paths.socket is required"))
	}

	if !slices.Contains([]string{"memory", "sqlite", "file"}, c.Store.Kind) {
		errs = append(errs, fmt.Errorf("store.kind must be memory, sqlite, or file, got %q", c.Store.Kind))
	}
	if !slices.Contains([]string{"none", "lz4", "zstd"}, c.Store.Compression) {
		errs = append(errs, fmt.Errorf("store.compression must be none, lz4, or zstd, got %q", c.Store.Compression))
	}

	switch c.Randomness.Source {
	case "crypto":
	case "fixed":
		if c.Randomness.Value == "" {
			errs = append(errs, errors.New("randomness.value is required for the fixed source"))
		}
	default:
		errs = append(errs, fmt.Errorf("randomness.source must be crypto or fixed, got %q", c.Randomness.Source))
	}

	if c.Environment == Production {
		if c.Store.Kind == "memory" {
			errs = append(errs, errors.New("store.kind memory is not allowed in production"))
		}
		if c.Randomness.Source == "fixed" {
			errs = append(errs, errors.New("randomness.source fixed is not allowed in production"))
		}
	}

	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// OwnerAddress parses Owner.
func (c *Config) OwnerAddress() common.Address {
	return common.HexToAddress(c.Owner)
}

// PassContract parses PassAddress. Empty yields the zero address.
func (c *Config) PassContract() common.Address {
	if c.PassAddress == "" {
		return common.Address{}
	}
	return common.HexToAddress(c.PassAddress)
}

// CommitmentRoot parses Collection.CommitmentRoot. Empty yields the
// zero hash, which no proof verifies against.
func (c *Config) CommitmentRoot() (common.Hash, error) {
	if c.Collection.CommitmentRoot == "" {
		return common.Hash{}, nil
	}
	decoded, err := hexutil.Decode(c.Collection.CommitmentRoot)
	if err != nil {
		return common.Hash{}, fmt.Errorf("collection.commitment_root: %w", err)
	}
	if len(decoded) != common.HashLength {
		return common.Hash{}, fmt.Errorf("collection.commitment_root has %d bytes, want %d", len(decoded), common.HashLength)
	}
	return common.BytesToHash(decoded), nil
}

// TokenLifetime parses Admin.TokenTTL.
func (c *Config) TokenLifetime() time.Duration {
	ttl, _ := time.ParseDuration(c.Admin.TokenTTL)
	return ttl
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// StorePath returns the backend file: Store.Path if set, otherwise a
// kind-specific file inside Paths.State. Empty for the memory store.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	switch c.Store.Kind {
	case "sqlite":
		return filepath.Join(c.Paths.State, "fairmint.db")
	case "file":
		return filepath.Join(c.Paths.State, "collection.state")
	default:
		return ""
	}
}

// EnsurePaths creates the configured directories.
func (c *Config) EnsurePaths() error {
	paths := []string{
		c.Paths.Root,
		c.Paths.State,
		filepath.Dir(c.Paths.Socket),
	}
	if storePath := c.StorePath(); storePath != "" {
		paths = append(paths, filepath.Dir(storePath))
	}
	for _, path := range paths {
		if path == "" || path == "." {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}
