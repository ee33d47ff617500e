// Package config loads agrimsg configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level agrimsg configuration, loaded from agrimsg.yaml.
type Config struct {
	ListenAddr  string       `yaml:"listen_addr"`
	DatabaseURL string       `yaml:"database_url"`
	RedisURL    string       `yaml:"redis_url"`
	Worker      WorkerConfig `yaml:"worker"`
}

// WorkerConfig holds settings for the background worker process.
type WorkerConfig struct {
	Concurrency int `yaml:"concurrency"`
	// Queues maps queue name to weight, e.g. "notifications=3,default=1".
	Queues string `yaml:"queues"`
	// RetentionSchedule is a 5-field cron expression for the notification sweep.
	RetentionSchedule string `yaml:"retention_schedule"`
	// RetentionDays is the minimum age of read notifications before deletion.
	RetentionDays int `yaml:"retention_days"`
}

// Load reads a YAML config file from path and returns a validated Config.
// A missing file is not an error; the config is then built from environment
// variables alone.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		data = nil
	} else if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config. Environment variables
// DB_URL, REDIS_URL and LISTEN_ADDR override file values when set.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse: %w", err)
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("DB_URL")); v != "" {
		c.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		c.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		c.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("WORKER_CONCURRENCY")); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			c.Worker.Concurrency = i
		}
	}
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.Worker.Concurrency == 0 {
		c.Worker.Concurrency = 10
	}
	if c.Worker.Queues == "" {
		c.Worker.Queues = "notifications=3,default=1"
	}
	if c.Worker.RetentionSchedule == "" {
		c.Worker.RetentionSchedule = "0 3 * * *"
	}
	if c.Worker.RetentionDays == 0 {
		c.Worker.RetentionDays = 30
	}
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config: database_url is required (or set DB_URL)")
	}
	if c.Worker.RetentionDays < 0 {
		return fmt.Errorf("config: retention_days must not be negative")
	}
	return nil
}

// QueueWeights parses the Worker.Queues CSV into a name->weight map.
// Malformed entries are skipped; weights default to 1.
func (c *Config) QueueWeights() map[string]int {
	res := make(map[string]int)
	for _, part := range strings.Split(c.Worker.Queues, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		name := strings.TrimSpace(kv[0])
		if name == "" {
			continue
		}
		w := 1
		if len(kv) == 2 {
			if i, err := strconv.Atoi(strings.TrimSpace(kv[1])); err == nil && i > 0 {
				w = i
			}
		}
		res[name] = w
	}
	return res
}
