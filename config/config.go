package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meysamhadeli/docai/constants/lipgloss"
	"github.com/meysamhadeli/docai/providers"
)

// configCacheEntry holds cached configuration with metadata
type configCacheEntry struct {
	config  *Config
	modTime time.Time
}

// Global cache for configuration files
var (
	configCache = make(map[string]*configCacheEntry)
	cacheMutex  sync.RWMutex
)

// Config represents the structure of the configuration file
type Config struct {
	Version             string                        `mapstructure:"version"`
	Theme               string                        `mapstructure:"theme"`
	TargetFile          string                        `mapstructure:"target_file"`
	EnableCache         bool                          `mapstructure:"enable_cache"`
	LOCEstimator        string                        `mapstructure:"loc_estimator"`
	FixedLOCPerFile     int                           `mapstructure:"fixed_loc_per_file"`
	DocGenBackendConfig *providers.DocGenBackendConfig `mapstructure:"docgen_backend_config"`
}

// DefaultConfig values
var DefaultConfig = Config{
	Version:         "1.0.2",
	Theme:           "dracula",
	TargetFile:      "README.md",
	EnableCache:     true,
	LOCEstimator:    "fixed",
	FixedLOCPerFile: 30,
	DocGenBackendConfig: &providers.DocGenBackendConfig{
		BaseURL:        "http://localhost:5000",
		TimeoutSeconds: 60,
		MaxAttempts:    2,
		BackoffSeconds: 1,
	},
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs initializes the configuration from file, flags, and environment variables, and returns the final config.
func LoadConfigs(rootCmd *cobra.Command, cwd string) *Config {
	var config *Config

	// Set default values using Viper
	setDefaults()

	// Automatically read environment variables
	viper.AutomaticEnv()

	// Explicitly bind environment variables to config keys
	bindEnv()

	// Check if the user provided a config file
	if cfgFile != "" {
		// Use the config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Look for configuration files in the current directory
		viper.SetConfigName("docai-config") // Name of config file (without extension)
		viper.AddConfigPath(cwd)            // Look in the current working directory

		// Support both JSON and YAML formats
		viper.SetConfigType("yaml") // Set default type
		if err := viper.ReadInConfig(); err != nil {
			// If YAML fails, try JSON
			viper.SetConfigType("json")
			if err := viper.ReadInConfig(); err != nil {
				// If both fail, we'll continue with defaults
				fmt.Println(lipgloss.Yellow.Render("No configuration file found, using defaults"))
			}
		}
	}

	// Read the explicitly specified config file (if any)
	if cfgFile != "" {
		if err := viper.ReadInConfig(); err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error reading config file: %v", err)))
			os.Exit(1)
		}
	}

	// Bind CLI flags to override config values
	bindFlags(rootCmd)

	// Unmarshal the configuration into the Config struct
	if err := viper.Unmarshal(&config); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Unable to decode into struct: %v", err)))
		os.Exit(1)
	}

	return config
}

// setDefaults sets all default configuration values
func setDefaults() {
	viper.SetDefault("version", DefaultConfig.Version)
	viper.SetDefault("theme", DefaultConfig.Theme)
	viper.SetDefault("target_file", DefaultConfig.TargetFile)
	viper.SetDefault("enable_cache", DefaultConfig.EnableCache)
	viper.SetDefault("loc_estimator", DefaultConfig.LOCEstimator)
	viper.SetDefault("fixed_loc_per_file", DefaultConfig.FixedLOCPerFile)
	viper.SetDefault("docgen_backend_config.base_url", DefaultConfig.DocGenBackendConfig.BaseURL)
	viper.SetDefault("docgen_backend_config.timeout_seconds", DefaultConfig.DocGenBackendConfig.TimeoutSeconds)
	viper.SetDefault("docgen_backend_config.max_attempts", DefaultConfig.DocGenBackendConfig.MaxAttempts)
	viper.SetDefault("docgen_backend_config.backoff_seconds", DefaultConfig.DocGenBackendConfig.BackoffSeconds)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv() {
	_ = viper.BindEnv("theme", "THEME")
	_ = viper.BindEnv("target_file", "TARGET_FILE")
	_ = viper.BindEnv("enable_cache", "ENABLE_CACHE")
	_ = viper.BindEnv("loc_estimator", "LOC_ESTIMATOR")
	_ = viper.BindEnv("fixed_loc_per_file", "FIXED_LOC_PER_FILE")
	_ = viper.BindEnv("docgen_backend_config.base_url", "BASE_URL")
	_ = viper.BindEnv("docgen_backend_config.timeout_seconds", "TIMEOUT_SECONDS")
	_ = viper.BindEnv("docgen_backend_config.max_attempts", "MAX_ATTEMPTS")
	_ = viper.BindEnv("docgen_backend_config.backoff_seconds", "BACKOFF_SECONDS")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(rootCmd *cobra.Command) {
	_ = viper.BindPFlag("theme", rootCmd.PersistentFlags().Lookup("theme"))
	_ = viper.BindPFlag("target_file", rootCmd.PersistentFlags().Lookup("target_file"))
	_ = viper.BindPFlag("enable_cache", rootCmd.PersistentFlags().Lookup("enable_cache"))
	_ = viper.BindPFlag("loc_estimator", rootCmd.PersistentFlags().Lookup("loc_estimator"))
	_ = viper.BindPFlag("fixed_loc_per_file", rootCmd.PersistentFlags().Lookup("fixed_loc_per_file"))
	_ = viper.BindPFlag("docgen_backend_config.base_url", rootCmd.PersistentFlags().Lookup("base_url"))
	_ = viper.BindPFlag("docgen_backend_config.timeout_seconds", rootCmd.PersistentFlags().Lookup("timeout_seconds"))
	_ = viper.BindPFlag("docgen_backend_config.max_attempts", rootCmd.PersistentFlags().Lookup("max_attempts"))
	_ = viper.BindPFlag("docgen_backend_config.backoff_seconds", rootCmd.PersistentFlags().Lookup("backoff_seconds"))
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	// Use PersistentFlags so that these flags are available in all subcommands
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Specifies the path to a configuration file (JSON or YAML) that contains all the settings for the application.")

	// Theme configuration
	rootCmd.PersistentFlags().String("theme", DefaultConfig.Theme, "Set customize theme for rendering the document preview. (e.g., 'dracula', 'light', 'dark')")

	// Target document configuration
	rootCmd.PersistentFlags().String("target_file", DefaultConfig.TargetFile, "The document file the workflow generates and protects (e.g., 'README.md').")

	// Cache configuration
	rootCmd.PersistentFlags().Bool("enable_cache", DefaultConfig.EnableCache, "Enable or disable file scan caching for improved performance")

	// LOC estimation configuration
	rootCmd.PersistentFlags().String("loc_estimator", DefaultConfig.LOCEstimator, "Strategy for estimating lines of code: 'fixed' (per-file rate) or 'lines' (count real lines).")
	rootCmd.PersistentFlags().Int("fixed_loc_per_file", DefaultConfig.FixedLOCPerFile, "Per-file rate used by the 'fixed' LOC estimator.")

	// Version flag
	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")

	// Document generation backend configuration
	rootCmd.PersistentFlags().String("base_url", DefaultConfig.DocGenBackendConfig.BaseURL, "The base URL of the document generation backend (e.g., default is 'http://localhost:5000').")
	rootCmd.PersistentFlags().Int("timeout_seconds", DefaultConfig.DocGenBackendConfig.TimeoutSeconds, "Per-request timeout for the document generation backend, in seconds.")
	rootCmd.PersistentFlags().Int("max_attempts", DefaultConfig.DocGenBackendConfig.MaxAttempts, "How many times a generation request is attempted before the failure is reported.")
	rootCmd.PersistentFlags().Int("backoff_seconds", DefaultConfig.DocGenBackendConfig.BackoffSeconds, "Fixed delay between generation attempts, in seconds.")
}

// GetConfigFileType returns the type of the configuration file based on its extension
func GetConfigFileType(filename string) string {
	if strings.HasSuffix(filename, ".json") {
		return "json"
	} else if strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml") {
		return "yaml"
	}
	return ""
}

// LoadConfigWithCache loads configuration with caching support
func LoadConfigWithCache(rootCmd *cobra.Command, cwd string) *Config {
	var configFilePath string

	// Determine config file path
	if cfgFile != "" {
		configFilePath = cfgFile
	} else {
		// Check for default config files
		yamlPath := fmt.Sprintf("%s/docai-config.yaml", cwd)
		ymlPath := fmt.Sprintf("%s/docai-config.yml", cwd)
		jsonPath := fmt.Sprintf("%s/docai-config.json", cwd)

		if _, err := os.Stat(yamlPath); err == nil {
			configFilePath = yamlPath
		} else if _, err := os.Stat(ymlPath); err == nil {
			configFilePath = ymlPath
		} else if _, err := os.Stat(jsonPath); err == nil {
			configFilePath = jsonPath
		}
	}

	// If no config file exists, return default configuration loading
	if configFilePath == "" {
		return LoadConfigs(rootCmd, cwd)
	}

	// Check file modification time
	fileInfo, err := os.Stat(configFilePath)
	if err != nil {
		// File doesn't exist or error, fallback to regular loading
		return LoadConfigs(rootCmd, cwd)
	}

	// Check cache first
	cacheMutex.RLock()
	if cached, exists := configCache[configFilePath]; exists {
		// Check if file has been modified since cache
		if fileInfo.ModTime().Equal(cached.modTime) {
			cacheMutex.RUnlock()
			return cached.config
		}
	}
	cacheMutex.RUnlock()

	// Load configuration normally
	config := LoadConfigs(rootCmd, cwd)

	// Update cache
	cacheMutex.Lock()
	configCache[configFilePath] = &configCacheEntry{
		config:  config,
		modTime: fileInfo.ModTime(),
	}
	cacheMutex.Unlock()

	return config
}

// ClearConfigCache clears all cached configuration files
func ClearConfigCache() {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()
	configCache = make(map[string]*configCacheEntry)
}

// InvalidateConfigCache removes a specific config file from cache
func InvalidateConfigCache(configPath string) {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()
	delete(configCache, configPath)
}
