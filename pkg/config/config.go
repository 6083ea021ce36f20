package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultSolrURI     = "http://127.0.0.1:8983/solr"
	DefaultHTTPTimeout = 10 * time.Second
)

// Config holds everything the checker and connection factories need.
// It is built once at startup and passed explicitly.
type Config struct {
	SolrURI        string
	DatabaseURI    string
	HTTPTimeout    time.Duration
	Cores          []string
	SchemaVersions map[string]float64
	HistoryPath    string
	Debug          bool
}

// Load reads the configuration from the environment.
// Env:
//
//	SIR_SOLR_URI, SIR_DB_URI, SIR_HTTP_TIMEOUT, SIR_CORES,
//	SIR_SCHEMA_VERSIONS, SIR_HISTORY_DB, SIR_DEBUG
//
// A .env file in the working directory is loaded first if present; real
// environment variables win over it.
func Load() (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := Config{
		SolrURI:     strings.TrimRight(getenv("SIR_SOLR_URI", DefaultSolrURI), "/"),
		DatabaseURI: os.Getenv("SIR_DB_URI"),
		HTTPTimeout: DefaultHTTPTimeout,
		Cores:       SplitList(os.Getenv("SIR_CORES")),
		HistoryPath: os.Getenv("SIR_HISTORY_DB"),
	}
	if v := os.Getenv("SIR_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("SIR_HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTPTimeout = d
	}
	if v := os.Getenv("SIR_DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("SIR_DEBUG: %w", err)
		}
		cfg.Debug = b
	}
	versions, err := ParseVersions(os.Getenv("SIR_SCHEMA_VERSIONS"))
	if err != nil {
		return Config{}, fmt.Errorf("SIR_SCHEMA_VERSIONS: %w", err)
	}
	cfg.SchemaVersions = versions
	return cfg, cfg.Validate()
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.SolrURI == "" {
		return fmt.Errorf("solr uri is required")
	}
	if !strings.HasPrefix(c.SolrURI, "http://") && !strings.HasPrefix(c.SolrURI, "https://") {
		return fmt.Errorf("solr uri %q must be http(s)", c.SolrURI)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http timeout must not be negative")
	}
	return nil
}

// ParseVersions parses "core=version,core=version".
func ParseVersions(s string) (map[string]float64, error) {
	out := map[string]float64{}
	for _, item := range SplitList(s) {
		name, ver, ok := strings.Cut(item, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("bad entry %q, want core=version", item)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(ver), 64)
		if err != nil {
			return nil, fmt.Errorf("bad version for %s: %w", name, err)
		}
		out[name] = f
	}
	return out, nil
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err == nil {
		return godotenv.Load(path)
	}
	return nil
}
