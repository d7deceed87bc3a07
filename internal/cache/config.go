package cache

import (
	"fmt"
	"time"
)

// Config sizes one namespace. Capacity is split evenly across shards.
type Config struct {
	Name               string
	TTL                time.Duration
	Capacity           int
	NumShards          int
	EvictionPercentage int
	EvictionInterval   time.Duration
}

// ConfigError reports an invalid namespace setting.
type ConfigError struct {
	Namespace string
	Field     string
	Message   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("cache %s: %s %s", e.Namespace, e.Field, e.Message)
}

func (c Config) Validate() error {
	if c.Name == "" {
		return &ConfigError{Namespace: "?", Field: "name", Message: "is required"}
	}
	if c.TTL <= 0 {
		return &ConfigError{Namespace: c.Name, Field: "ttl", Message: "must be positive"}
	}
	if c.Capacity <= 0 {
		return &ConfigError{Namespace: c.Name, Field: "capacity", Message: "must be positive"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Namespace: c.Name, Field: "numShards", Message: "must be positive"}
	}
	if c.NumShards > c.Capacity {
		return &ConfigError{Namespace: c.Name, Field: "numShards", Message: "must not exceed capacity"}
	}
	if c.EvictionPercentage < 0 || c.EvictionPercentage > 100 {
		return &ConfigError{Namespace: c.Name, Field: "evictionPercentage", Message: "must be between 0 and 100"}
	}
	if c.EvictionInterval < 0 {
		return &ConfigError{Namespace: c.Name, Field: "evictionInterval", Message: "must not be negative"}
	}
	return nil
}
