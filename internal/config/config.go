// Package config holds the explicit configuration passed to the document
// store, enrichment repository, parser and HTTP server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvStorageAccount    = "RECON_STORAGE_ACCOUNT"
	EnvStorageKey        = "RECON_STORAGE_KEY"
	EnvStorageToken      = "RECON_STORAGE_TOKEN"
	EnvStorageContainer  = "RECON_STORAGE_CONTAINER"
	EnvStorageBaseDir    = "RECON_STORAGE_BASE_DIR"
	EnvServerPort        = "RECON_PORT"
	EnvEnrichmentEnabled = "RECON_ENRICHMENT_ENABLED"
	EnvEnrichmentProject = "RECON_ENRICHMENT_PROJECT"
	EnvEnrichmentDataset = "RECON_ENRICHMENT_DATASET"
	EnvEnrichmentTable   = "RECON_ENRICHMENT_TABLE"
	EnvParserModel       = "RECON_PARSER_MODEL"
	EnvParserResultsDir  = "RECON_PARSER_RESULTS_DIR"
	EnvLogLevel          = "RECON_LOG_LEVEL"
	EnvBatchConcurrency  = "RECON_BATCH_CONCURRENCY"
	defaultPort          = "8080"
	defaultModel         = "gemini-2.5-flash"
	defaultLogLevel      = "info"
	defaultConcurrency   = 8
	defaultEnrichmentSet = "finance"
	defaultEnrichmentTbl = "case_enrichment"
	defaultParserResults = "parsed"
	uploadDir            = "raw"
)

var (
	// ErrNoCredential is returned when neither a key nor a token is configured.
	ErrNoCredential = errors.New("storage credential required: set key or token")
	// ErrConflictingCredential is returned when both a key and a token are configured.
	ErrConflictingCredential = errors.New("storage key and token are mutually exclusive")
)

// Config is the top-level recon.yaml configuration.
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	Server     ServerConfig     `yaml:"server"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Parser     ParserConfig     `yaml:"parser"`
	Log        LogConfig        `yaml:"log"`
	Batch      BatchConfig      `yaml:"batch"`
}

// StorageConfig identifies the object store holding parsing results.
// Key and Token are mutually exclusive.
type StorageConfig struct {
	Account   string `yaml:"account"`   // GCP project id
	Key       string `yaml:"key"`       // service account key file
	Token     string `yaml:"token"`     // OAuth2 access token
	Container string `yaml:"container"` // bucket
	BaseDir   string `yaml:"base_dir"`  // object prefix
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// EnrichmentConfig locates the BigQuery table with per-case enrichment records.
type EnrichmentConfig struct {
	Enabled bool   `yaml:"enabled"`
	Project string `yaml:"project"`
	Dataset string `yaml:"dataset"`
	Table   string `yaml:"table"`
}

// ParserConfig controls the statement parsing agent.
type ParserConfig struct {
	Model      string `yaml:"model"`
	ResultsDir string `yaml:"results_dir"` // relative to Storage.BaseDir
}

// LogConfig sets the zerolog level name.
type LogConfig struct {
	Level string `yaml:"level"`
}

// BatchConfig bounds concurrent reads and mappings.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// Default returns a Config with defaults for everything except storage identity.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: defaultPort},
		Enrichment: EnrichmentConfig{
			Dataset: defaultEnrichmentSet,
			Table:   defaultEnrichmentTbl,
		},
		Parser: ParserConfig{
			Model:      defaultModel,
			ResultsDir: defaultParserResults,
		},
		Log:   LogConfig{Level: defaultLogLevel},
		Batch: BatchConfig{Concurrency: defaultConcurrency},
	}
}

// Load reads a YAML file on top of Default. An empty path skips the file.
// Environment overrides are applied afterwards.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from the environment using lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvStorageAccount:    &c.Storage.Account,
		EnvStorageKey:        &c.Storage.Key,
		EnvStorageToken:      &c.Storage.Token,
		EnvStorageContainer:  &c.Storage.Container,
		EnvStorageBaseDir:    &c.Storage.BaseDir,
		EnvServerPort:        &c.Server.Port,
		EnvEnrichmentProject: &c.Enrichment.Project,
		EnvEnrichmentDataset: &c.Enrichment.Dataset,
		EnvEnrichmentTable:   &c.Enrichment.Table,
		EnvParserModel:       &c.Parser.Model,
		EnvParserResultsDir:  &c.Parser.ResultsDir,
		EnvLogLevel:          &c.Log.Level,
	}
	for name, field := range strs {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			*field = strings.TrimSpace(v)
		}
	}

	if v, ok := lookup(EnvEnrichmentEnabled); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvEnrichmentEnabled, err)
		}
		c.Enrichment.Enabled = enabled
	}
	if v, ok := lookup(EnvBatchConcurrency); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvBatchConcurrency, err)
		}
		c.Batch.Concurrency = n
	}
	return nil
}

// Validate checks the storage settings required to build a document store.
func (s StorageConfig) Validate() error {
	hasKey := strings.TrimSpace(s.Key) != ""
	hasToken := strings.TrimSpace(s.Token) != ""
	switch {
	case hasKey && hasToken:
		return ErrConflictingCredential
	case !hasKey && !hasToken:
		return ErrNoCredential
	}
	if strings.TrimSpace(s.Container) == "" {
		return errors.New("storage container is required")
	}
	return nil
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if c.Enrichment.Enabled && (c.Enrichment.Project == "" || c.Enrichment.Dataset == "" || c.Enrichment.Table == "") {
		return errors.New("enrichment: project, dataset and table are required when enabled")
	}
	if c.Batch.Concurrency < 0 {
		return errors.New("batch: concurrency must not be negative")
	}
	return nil
}

// ResultsPrefix is the object prefix the parser writes envelopes under.
func (c *Config) ResultsPrefix() string {
	return joinPath(c.Storage.BaseDir, c.Parser.ResultsDir)
}

// ListPrefix is the object prefix scanned for parsing results.
func (c *Config) ListPrefix() string {
	if p := joinPath(c.Storage.BaseDir); p != "" {
		return p + "/"
	}
	return ""
}

// UploadPath is the object name an uploaded statement file is stored under.
func (c *Config) UploadPath(filename string) string {
	return joinPath(c.Storage.BaseDir, uploadDir, filename)
}

func joinPath(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}
