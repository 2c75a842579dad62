package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable the tool reads.
const EnvPrefix = "IOCCC_MIRROR_"

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none are
// named) into the process environment. Variables already set win, and a
// missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv copies IOCCC_MIRROR_* variables into cfg. lookup is normally
// os.LookupEnv. Command-line flags are applied afterwards and win.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("INPUT"); ok {
		cfg.InputDir = NormalizeDirArg(v)
	}
	if v, ok := get("OUTPUT"); ok {
		cfg.OutputDir = NormalizeDirArg(v)
	}
	if v, ok := get("LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := get("RULES"); ok {
		cfg.RulesFile = v
	}
	if v, ok := get("S3_ENDPOINT"); ok {
		cfg.S3.Endpoint = v
	}
	if v, ok := get("S3_BUCKET"); ok {
		cfg.S3.Bucket = v
	}
	if v, ok := get("S3_PREFIX"); ok {
		cfg.S3.Prefix = v
	}
	if v, ok := get("S3_ACCESS_KEY"); ok {
		cfg.S3.AccessKey = v
	}
	if v, ok := get("S3_SECRET_KEY"); ok {
		cfg.S3.SecretKey = v
	}
	if v, ok := get("S3_REGION"); ok {
		cfg.S3.Region = v
	}
	if v, ok := get("S3_SSL"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sS3_SSL must be a boolean (got %q)", EnvPrefix, v)
		}
		cfg.S3.UseSSL = b
	}
	return nil
}

// Load layers the environment over cfg's defaults. Call before binding flags
// so flag defaults show the environment's values.
func Load(cfg *Config) error {
	if err := LoadDotEnv(); err != nil {
		return err
	}
	return ApplyEnv(cfg, os.LookupEnv)
}

// LoadRulesFile loads cfg.RulesFile into cfg.Rules and merges its deny
// patterns ahead of the command-line ones.
func LoadRulesFile(cfg *Config) error {
	if cfg.RulesFile == "" {
		return nil
	}
	r, err := LoadRules(cfg.RulesFile)
	if err != nil {
		return err
	}
	cfg.Rules = r
	cfg.Deny = append(append([]string(nil), r.Deny...), cfg.Deny...)
	return nil
}
