package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Load decodes the file over the defaults, so absent keys keep their default values.
// The format is chosen by the extension: .toml, .yaml or .yml.
func Load(path string) (*Config, error) {
	cfg := Default()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	return cfg, cfg.Validate()
}

// Validate rejects values no parser could work with.
func (c *Config) Validate() error {
	switch {
	case c.NET.ReadBufferSize <= 0:
		return fmt.Errorf("net.read_buffer_size must be positive, got %d", c.NET.ReadBufferSize)
	case c.Headers.Prealloc < 0:
		return fmt.Errorf("headers.prealloc must not be negative, got %d", c.Headers.Prealloc)
	case c.Form.EntriesPrealloc < 0:
		return fmt.Errorf("form.entries_prealloc must not be negative, got %d", c.Form.EntriesPrealloc)
	case c.Multipart.S3.Bucket == "" && c.Multipart.S3.Prefix != "":
		return fmt.Errorf("multipart.s3.prefix is set while the bucket isn't")
	}

	return nil
}
