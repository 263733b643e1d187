package config

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"
)

var providers = map[string]bool{"openai": true, "anthropic": true}

var bucketPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]*[a-z0-9]$`)

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server address cannot be empty")
	}
	if _, err := net.ResolveTCPAddr("tcp", c.Server.Addr); err != nil {
		return fmt.Errorf("invalid server address: %w", err)
	}
	for name, raw := range map[string]string{"server timeout": c.Server.Timeout, "shutdown timeout": c.Server.ShutdownTimeout} {
		if raw == "" {
			continue
		}
		if _, err := time.ParseDuration(raw); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	if !providers[strings.ToLower(c.LLM.Provider)] {
		return fmt.Errorf("unsupported llm provider: %q", c.LLM.Provider)
	}
	if !c.LLM.MockMode() && c.LLM.Model == "" {
		return errors.New("llm model cannot be empty when an api key is set")
	}
	if c.LLM.MaxTokens < 0 {
		return errors.New("llm max_tokens cannot be negative")
	}

	ttl, err := time.ParseDuration(c.Analysis.CacheTTL)
	if err != nil {
		return fmt.Errorf("invalid cache ttl: %w", err)
	}
	if ttl < 0 {
		return errors.New("cache ttl cannot be negative")
	}
	if c.Analysis.MaxUploadSize <= 0 {
		return errors.New("max upload size must be positive")
	}

	if c.Audit.Enabled && c.Audit.DSN == "" {
		return errors.New("audit dsn cannot be empty when audit is enabled")
	}

	if c.MinIO.Enabled {
		if c.MinIO.Endpoint == "" {
			return errors.New("minio endpoint cannot be empty when minio is enabled")
		}
		if c.MinIO.AccessKey == "" {
			return errors.New("minio access key cannot be empty when minio is enabled")
		}
		if c.MinIO.SecretKey == "" {
			return errors.New("minio secret key cannot be empty when minio is enabled")
		}
		if c.MinIO.DefaultBucket != "" && !isValidBucketName(c.MinIO.DefaultBucket) {
			return fmt.Errorf("invalid minio default bucket name: %s", c.MinIO.DefaultBucket)
		}
	}

	return nil
}

// isValidBucketName checks if a bucket name is valid according to MinIO/S3 rules
func isValidBucketName(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}
	if strings.Contains(name, "..") {
		return false
	}
	return bucketPattern.MatchString(name)
}
