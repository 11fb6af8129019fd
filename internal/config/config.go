package config

import "time"

// Config holds all application configuration.
type Config struct {
	Engine        Engine        `mapstructure:"engine"`
	Library       Library       `mapstructure:"library"`
	Storage       Storage       `mapstructure:"storage"`
	Scraper       Scraper       `mapstructure:"scraper"`
	Elasticsearch Elasticsearch `mapstructure:"elasticsearch"`
	MCP           MCP           `mapstructure:"mcp"`
	Metrics       Metrics       `mapstructure:"metrics"`
}

// Engine holds similarity engine configuration.
type Engine struct {
	Workers int `mapstructure:"workers"` // 0 means one per CPU
}

// Library holds the local song library configuration.
type Library struct {
	Dirs     []string      `mapstructure:"dirs"`
	Debounce time.Duration `mapstructure:"debounce"` // watch mode quiet period
}

// Storage holds S3/MinIO storage configuration.
type Storage struct {
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Scraper holds song discovery configuration.
type Scraper struct {
	Delay       time.Duration `mapstructure:"delay"`
	MaxDepth    int           `mapstructure:"max_depth"`
	FollowLinks bool          `mapstructure:"follow_links"`
	Timeout     time.Duration `mapstructure:"timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
}

// Elasticsearch holds score export configuration.
type Elasticsearch struct {
	Addresses []string `mapstructure:"addresses"`
	Index     string   `mapstructure:"index"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

// MCP holds MCP server configuration.
type MCP struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// Metrics holds the Prometheus endpoint configuration.
type Metrics struct {
	Addr string `mapstructure:"addr"` // empty disables the endpoint
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Engine: Engine{
			Workers: 0,
		},
		Library: Library{
			Dirs:     []string{"."},
			Debounce: 500 * time.Millisecond,
		},
		Storage: Storage{
			Endpoint:        "localhost:9000",
			Bucket:          "songsim",
			AccessKeyID:     "minioadmin",
			SecretAccessKey: "minioadmin",
			UseSSL:          false,
		},
		Scraper: Scraper{
			Delay:       1 * time.Second,
			MaxDepth:    3,
			FollowLinks: true,
			Timeout:     30 * time.Second,
			UserAgent:   "songsim/1.0",
		},
		Elasticsearch: Elasticsearch{
			Addresses: []string{"http://localhost:9200"},
			Index:     "songsim-scores",
		},
		MCP: MCP{
			Name:    "songsim",
			Version: "1.0.0",
		},
		Metrics: Metrics{
			Addr: "",
		},
	}
}
