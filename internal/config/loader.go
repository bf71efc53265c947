package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variable names
const EnvPrefix = "TEMPO_"

const maxConfigFileSize = 1024 * 1024 // 1MB

// topLevelKeys are keys whose names contain underscores but no section
var topLevelKeys = map[string]bool{
	"data_dir": true,
}

// DefaultPath returns ~/.config/tempo/config.yaml
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "tempo", "config.yaml")
	}
	return filepath.Join(home, ".config", "tempo", "config.yaml")
}

// Load reads configuration from the YAML file at path, then applies
// TEMPO_ environment variables on top.
//
// Precedence (highest to lowest):
//  1. Environment variables (TEMPO_REMINDER_CHECK_INTERVAL, ...)
//  2. YAML config file
//  3. Defaults
//
// An empty path uses DefaultPath, which may be absent. An explicit path
// must exist.
//
// Environment variables map to keys by splitting on the first underscore
// after the prefix:
//
//	TEMPO_REMINDER_CHECK_INTERVAL -> reminder.check_interval
//	TEMPO_LOG_LEVEL -> log.level
//	TEMPO_DATA_DIR -> data_dir
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	content, err := readConfigFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case err != nil:
		return nil, err
	default:
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// envKey maps TEMPO_SECTION_FIELD_NAME to section.field_name
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if topLevelKeys[lower] {
		return lower
	}
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}
