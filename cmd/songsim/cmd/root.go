package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfenderov/songsim/internal/config"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
)

// GetConfig returns the loaded configuration.
func GetConfig() config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "songsim",
	Short: "songsim: find similar songs in a SongBeamer library",
	Long: `songsim parses SongBeamer (.sng) song files and scores how similar the
lyrics of every pair of songs are. Scores are distances: 0 means identical
lyrics, values near 1 mean the songs have nothing in common.

Commands:
  compare  Score every pair of songs and print the scores
  diff     Show the line differences between two songs
  fetch    Download songs linked from a web page into S3
  serve    Start the MCP server for song and score lookups
  watch    Keep scores up to date while the library changes`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func initConfig() {
	// Start with defaults
	cfg = config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/songsim")
		viper.AddConfigPath(".")
	}

	// Environment variable overrides
	// SONGSIM_STORAGE_ENDPOINT -> storage.endpoint
	viper.SetEnvPrefix("SONGSIM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Explicitly bind nested env vars
	viper.BindEnv("engine.workers", "SONGSIM_ENGINE_WORKERS")
	viper.BindEnv("library.debounce", "SONGSIM_LIBRARY_DEBOUNCE")
	viper.BindEnv("storage.endpoint", "SONGSIM_STORAGE_ENDPOINT")
	viper.BindEnv("storage.bucket", "SONGSIM_STORAGE_BUCKET")
	viper.BindEnv("storage.access_key_id", "SONGSIM_STORAGE_ACCESS_KEY_ID")
	viper.BindEnv("storage.secret_access_key", "SONGSIM_STORAGE_SECRET_ACCESS_KEY")
	viper.BindEnv("storage.use_ssl", "SONGSIM_STORAGE_USE_SSL")
	viper.BindEnv("scraper.delay", "SONGSIM_SCRAPER_DELAY")
	viper.BindEnv("scraper.max_depth", "SONGSIM_SCRAPER_MAX_DEPTH")
	viper.BindEnv("elasticsearch.index", "SONGSIM_ELASTICSEARCH_INDEX")
	viper.BindEnv("elasticsearch.username", "SONGSIM_ELASTICSEARCH_USERNAME")
	viper.BindEnv("elasticsearch.password", "SONGSIM_ELASTICSEARCH_PASSWORD")
	viper.BindEnv("mcp.name", "SONGSIM_MCP_NAME")
	viper.BindEnv("mcp.version", "SONGSIM_MCP_VERSION")
	viper.BindEnv("metrics.addr", "SONGSIM_METRICS_ADDR")

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file error", "error", err)
		}
		// No config file - use defaults + env vars
	}

	// Unmarshal into struct (merges config file with defaults)
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Warn("failed to parse config", "error", err)
	}

	// Lists arrive as comma-separated strings from env
	if addrs := os.Getenv("SONGSIM_ELASTICSEARCH_ADDRESSES"); addrs != "" {
		cfg.Elasticsearch.Addresses = strings.Split(addrs, ",")
	}
	if dirs := os.Getenv("SONGSIM_LIBRARY_DIRS"); dirs != "" {
		cfg.Library.Dirs = strings.Split(dirs, ",")
	}
}
