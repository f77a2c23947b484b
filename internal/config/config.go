package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the full configuration for intake. Everything the core needs is
// validated once at startup and passed in explicitly; no component reads
// the environment or any other ambient state on its own.
type Config struct {
	HostID     string           `toml:"host_id"`
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	ScanRoots  []string         `toml:"scan_roots"`
	ReportPath string           `toml:"report_path"`
	Case       CaseConfig       `toml:"case"`
	Identity   IdentityConfig   `toml:"identity"`
	Database   DatabaseConfig   `toml:"database"`
	Archive    ArchiveConfig    `toml:"archive"`
	Encryption EncryptionConfig `toml:"encryption"`
	Filesystem FilesystemConfig `toml:"filesystem"`
}

// CaseConfig identifies the legal matter documents are scored against.
type CaseConfig struct {
	Surname         string `toml:"surname"`
	SubjectEmail    string `toml:"subject_email"`
	OpposingCounsel string `toml:"opposing_counsel"`
	CaseTag         string `toml:"case_tag"`
	DomainTag       string `toml:"domain_tag"`
}

// IdentityConfig configures the external ID-minting service client.
// The bearer token is injected at startup from the environment by the app
// layer; it is deliberately not a file field so it never lands on disk.
type IdentityConfig struct {
	Endpoint       string `toml:"endpoint"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Token          string `toml:"-"`
}

// DatabaseConfig configures the ledger store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// ArchiveConfig configures the evidence preservation backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
// An empty Type disables archiving.
type ArchiveConfig struct {
	Type    string `toml:"type"` // "", "memory", "s3", or "filesystem"
	Encrypt bool   `toml:"encrypt"`

	// S3-specific fields (only used when Type == "s3"). When the static
	// credentials are empty the standard AWS credential chain applies.
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	// Filesystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`
}

// EncryptionConfig holds paths to the age key pair used for archive encryption.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default) or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// FilesystemConfig holds filesystem-related settings.
type FilesystemConfig struct {
	Ignore []string `toml:"ignore"`
}

// NewConfig creates a Config with the provided values and default paths.
func NewConfig(hostID, baseDir string) *Config {
	return &Config{
		HostID:     hostID,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
		ReportPath: filepath.Join(baseDir, "EVIDENCE_REPORT.md"),
		Case: CaseConfig{
			DomainTag: "LEGAL",
		},
		Identity: IdentityConfig{
			Endpoint:       "https://id.chitty.cc/v1/mint",
			TimeoutSeconds: 10,
		},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Encryption: EncryptionConfig{
			PublicKeyPath:  filepath.Join(baseDir, "keys", "intake.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "intake.key"),
		},
	}
}

// Validate checks the invariants no command can run without. Scans
// additionally require ValidateIdentity. Either failing aborts the whole
// run before any document is touched.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "sqlite":
		if c.Database.DataDir == "" {
			return fmt.Errorf("database.data_dir is required for sqlite")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database type: %q", c.Database.Type)
	}
	if c.Archive.Type == "s3" && c.Archive.S3Bucket == "" {
		return fmt.Errorf("archive.s3_bucket is required for the s3 archive")
	}
	if c.Archive.Type == "filesystem" && c.Archive.FSRoot == "" {
		return fmt.Errorf("archive.fs_root is required for the filesystem archive")
	}
	if c.Archive.Encrypt && c.Archive.Type == "" {
		return fmt.Errorf("archive.encrypt is set but no archive is configured")
	}
	return nil
}

// ValidateIdentity checks that the identity service can be called. The
// token is supplied out-of-band via the environment; without it no
// document can be recorded, so a scan refuses to start.
func (c *Config) ValidateIdentity() error {
	if c.Identity.Endpoint == "" {
		return fmt.Errorf("identity.endpoint is not configured")
	}
	if c.Identity.Token == "" {
		return fmt.Errorf("identity token is not set (export CHITTY_ID_TOKEN)")
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
