package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/ugd-resolver/internal/reference"
	"gopkg.in/yaml.v3"
)

type ReferenceCfg struct {
	Path      string `yaml:"path" json:"path"`
	Delimiter string `yaml:"delimiter" json:"delimiter"`
	Encoding  string `yaml:"encoding" json:"encoding"`
	HasHeader bool   `yaml:"has_header" json:"has_header"`
	Sheet     string `yaml:"sheet" json:"sheet"`
}

type CacheCfg struct {
	TTLHours int `yaml:"ttl_hours" json:"ttl_hours"`
	L1Size   int `yaml:"l1_size" json:"l1_size"`
}

type SuggestCfg struct {
	Enabled bool    `yaml:"enabled" json:"enabled"`
	Limit   int     `yaml:"limit" json:"limit"`
	Floor   float64 `yaml:"floor" json:"floor"`
}

type BatchCfg struct {
	MaxItems int `yaml:"max_items" json:"max_items"`
	Workers  int `yaml:"workers" json:"workers"`
}

type SearchCfg struct {
	IndexName     string `yaml:"index_name" json:"index_name"`
	MaxCandidates int    `yaml:"max_candidates" json:"max_candidates"`
}

type ResolverCfg struct {
	Reference        ReferenceCfg `yaml:"reference" json:"reference"`
	Cache            CacheCfg     `yaml:"cache" json:"cache"`
	Suggest          SuggestCfg   `yaml:"suggest" json:"suggest"`
	Batch            BatchCfg     `yaml:"batch" json:"batch"`
	Search           SearchCfg    `yaml:"search" json:"search"`
	RequestTimeoutMs int          `yaml:"request_timeout_ms" json:"request_timeout_ms"`
}

// C cấu hình resolver đang dùng
var C = Default()

// Default cấu hình dùng được khi không có file
func Default() ResolverCfg {
	return ResolverCfg{
		Reference: ReferenceCfg{
			Path:      "data/tax_offices.csv",
			Delimiter: ";",
			Encoding:  "utf-8",
			HasHeader: true,
		},
		Cache: CacheCfg{
			TTLHours: 24 * 7,
			L1Size:   10000,
		},
		Suggest: SuggestCfg{
			Enabled: true,
			Limit:   5,
			Floor:   0.82,
		},
		Batch: BatchCfg{
			MaxItems: 10000,
			Workers:  4,
		},
		Search: SearchCfg{
			IndexName:     "tax_offices",
			MaxCandidates: 20,
		},
		RequestTimeoutMs: 1500,
	}
}

// Load đọc file YAML đè lên Default() rồi áp biến môi trường
func Load(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return fmt.Errorf("lỗi parse %s: %w", path, err)
	}
	cfg.ApplyEnv()

	C = cfg
	return nil
}

// ApplyEnv ENV overrides: REFERENCE_PATH, REFERENCE_ENCODING, SUGGEST_DISABLED
func (c *ResolverCfg) ApplyEnv() {
	if v := os.Getenv("REFERENCE_PATH"); v != "" {
		c.Reference.Path = v
	}
	if v := os.Getenv("REFERENCE_ENCODING"); v != "" {
		c.Reference.Encoding = v
	}
	switch os.Getenv("SUGGEST_DISABLED") {
	case "1", "true":
		c.Suggest.Enabled = false
	case "0", "false":
		c.Suggest.Enabled = true
	}
	if v, err := strconv.Atoi(os.Getenv("BATCH_WORKERS")); err == nil && v > 0 {
		c.Batch.Workers = v
	}
}

// Options chuyển sang options của loader
func (r ReferenceCfg) Options() reference.Options {
	opts := reference.DefaultOptions()
	if d, _ := utf8.DecodeRuneInString(r.Delimiter); d != utf8.RuneError {
		opts.Delimiter = d
	}
	if r.Delimiter == `\t` {
		opts.Delimiter = '\t'
	}
	if r.Encoding != "" {
		opts.Encoding = r.Encoding
	}
	opts.HasHeader = r.HasHeader
	opts.Sheet = r.Sheet
	return opts
}

func RequestTimeout() time.Duration {
	if C.RequestTimeoutMs <= 0 {
		return 1500 * time.Millisecond
	}
	return time.Duration(C.RequestTimeoutMs) * time.Millisecond
}

func CacheTTL() time.Duration {
	return time.Duration(C.Cache.TTLHours) * time.Hour
}
