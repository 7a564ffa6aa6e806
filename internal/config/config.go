package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Firestore     FirestoreConfig     `yaml:"firestore"`
	Redis         RedisConfig         `yaml:"redis"`
	Snapshot      SnapshotConfig      `yaml:"snapshot"`
	Search        SearchConfig        `yaml:"search"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type FirestoreConfig struct {
	ProjectID       string        `yaml:"project_id"`
	CredentialsFile string        `yaml:"credentials_file"`
	Collection      string        `yaml:"collection"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
}

type RedisConfig struct {
	Addresses    []string      `yaml:"addresses"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	ResponseTTL  time.Duration `yaml:"response_ttl"`
}

type SnapshotConfig struct {
	TTL            time.Duration        `yaml:"ttl"`
	DefaultSite    string               `yaml:"default_site"`
	DefectiveSite  string               `yaml:"defective_site"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

type CircuitBreakerConfig struct {
	MaxRequests      uint32        `yaml:"max_requests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold uint32        `yaml:"failure_threshold"`
}

type SearchConfig struct {
	DefaultLimit   int             `yaml:"default_limit"`
	MaxLimit       int             `yaml:"max_limit"`
	FuzzyThreshold float64         `yaml:"fuzzy_threshold"`
	MaxFuzzyHits   int             `yaml:"max_fuzzy_hits"`
	SlowQuery      SlowQueryConfig `yaml:"slow_query"`
}

type SlowQueryConfig struct {
	WarningThreshold  time.Duration `yaml:"warning_threshold"`
	CriticalThreshold time.Duration `yaml:"critical_threshold"`
}

type ObservabilityConfig struct {
	TracingEndpoint string `yaml:"tracing_endpoint"`
	LogLevel        string `yaml:"log_level"`
	ServiceName     string `yaml:"service_name"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Firestore: FirestoreConfig{
			Collection:     "products",
			RequestTimeout: 15 * time.Second,
		},
		Redis: RedisConfig{
			Addresses:    []string{"localhost:6379"},
			PoolSize:     50,
			MinIdleConns: 5,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  1 * time.Second,
			WriteTimeout: 1 * time.Second,
			ResponseTTL:  30 * time.Second,
		},
		Snapshot: SnapshotConfig{
			TTL:           30 * time.Second,
			DefaultSite:   "KLC1",
			DefectiveSite: "BROKAS",
			CircuitBreaker: CircuitBreakerConfig{
				MaxRequests:      5,
				Interval:         30 * time.Second,
				Timeout:          30 * time.Second,
				FailureThreshold: 5,
			},
		},
		Search: SearchConfig{
			DefaultLimit:   50,
			MaxLimit:       100,
			FuzzyThreshold: 0.72,
			MaxFuzzyHits:   50,
			SlowQuery: SlowQueryConfig{
				WarningThreshold:  200 * time.Millisecond,
				CriticalThreshold: 500 * time.Millisecond,
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			ServiceName: "stock-query-service",
		},
	}
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Firestore.Collection == "" {
		return fmt.Errorf("firestore collection required")
	}
	if len(c.Redis.Addresses) == 0 {
		return fmt.Errorf("at least one redis address required")
	}
	if c.Snapshot.TTL <= 0 {
		return fmt.Errorf("snapshot ttl must be positive")
	}
	if c.Snapshot.DefaultSite == "" || c.Snapshot.DefectiveSite == "" {
		return fmt.Errorf("default and defective site codes required")
	}
	if c.Search.DefaultLimit <= 0 {
		return fmt.Errorf("default limit must be positive")
	}
	if c.Search.MaxLimit <= 0 || c.Search.MaxLimit > 1000 {
		return fmt.Errorf("max limit must be between 1 and 1000")
	}
	if c.Search.FuzzyThreshold < 0 || c.Search.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzy threshold must be in [0,1]")
	}
	return nil
}
