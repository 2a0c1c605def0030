package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ListConfig configures the manifest sub-command
type ListConfig struct {
	Header bool   `yaml:"header"`
	Expr   string `yaml:"expr"`
}

// WarmConfig configures warming the cache with artwork images
type WarmConfig struct {
	ArtworkFile string `yaml:"artworkFile"`
	Concurrency int64  `yaml:"concurrency"`
}

// Configuration represents the totality of configuration knobs and dials for the server.
// Durations are in milliseconds, like the site's own code.
type Configuration struct {
	LogLevel     string     `yaml:"logLevel"`
	LogFile      string     `yaml:"logFile"`
	ConfigFile   string     `yaml:"configFile"`
	SiteUrl      string     `yaml:"siteUrl"`
	ImageBase    string     `yaml:"imageBase"`
	MetadataPath string     `yaml:"metadataPath"`
	ManifestPath string     `yaml:"manifestPath"`
	Format       string     `yaml:"format"`
	PreloadArt   string     `yaml:"preloadArtworks"`
	Port         int64      `yaml:"port"`
	Health       int64      `yaml:"health"`
	Metrics      int64      `yaml:"metrics"`
	Ttl          int64      `yaml:"ttl"`
	FetchTimeout int64      `yaml:"fetchTimeout"`
	ImageTimeout int64      `yaml:"imageTimeout"`
	WatchConfig  bool       `yaml:"watchConfig"`
	WarmConfig   WarmConfig `yaml:"warmConfig"`
	ListConfig   ListConfig `yaml:"listConfig"`
}

// FromCmdLine has a flag for every command-line option. The parsing code
// sets the flag to true if the option was explicitly provided on the command
// line by the user.
type FromCmdLine struct {
	Command      string
	LogLevel     bool
	LogFile      bool
	ConfigFile   bool
	SiteUrl      bool
	ImageBase    bool
	MetadataPath bool
	ManifestPath bool
	Format       bool
	PreloadArt   bool
	Port         bool
	Health       bool
	Metrics      bool
	Ttl          bool
	FetchTimeout bool
	ImageTimeout bool
	WatchConfig  bool
	WarmConfig   bool
	ListConfig   bool
}

var config Configuration

func GetLogLevel() string {
	return config.LogLevel
}

func GetLogFile() string {
	return config.LogFile
}

func GetConfigFile() string {
	return config.ConfigFile
}

func GetSiteUrl() string {
	return config.SiteUrl
}

func GetImageBase() string {
	return config.ImageBase
}

func GetMetadataPath() string {
	return config.MetadataPath
}

func GetManifestPath() string {
	return config.ManifestPath
}

// GetFormat returns the default image format extension
func GetFormat() string {
	return config.Format
}

// GetPreloadArt returns the path of a file of artwork ids to warm when the server starts
func GetPreloadArt() string {
	return config.PreloadArt
}

func GetPort() int64 {
	return config.Port
}

func GetHealth() int64 {
	return config.Health
}

func GetMetrics() int64 {
	return config.Metrics
}

// GetTtl returns the fetch cache time-to-live
func GetTtl() time.Duration {
	return time.Duration(config.Ttl) * time.Millisecond
}

// GetFetchTimeout returns the upstream JSON fetch timeout
func GetFetchTimeout() time.Duration {
	return time.Duration(config.FetchTimeout) * time.Millisecond
}

// GetImageTimeout returns the timeout of one image load attempt
func GetImageTimeout() time.Duration {
	return time.Duration(config.ImageTimeout) * time.Millisecond
}

func GetWatchConfig() bool {
	return config.WatchConfig
}

func GetWarmConfig() WarmConfig {
	return config.WarmConfig
}

func GetListConfig() ListConfig {
	return config.ListConfig
}

// Load loads the passed configuration file into the configuration struct
func Load(configFile string) error {
	if _, err := os.Stat(configFile); err != nil {
		return fmt.Errorf("unable to stat configuration file: %s", configFile)
	}
	if contents, err := os.ReadFile(configFile); err != nil {
		return fmt.Errorf("error reading configuration file: %s", configFile)
	} else if err := SetConfigFromStr(contents); err != nil {
		return fmt.Errorf("error parsing configuration file: %s, the error was: %s", configFile, err)
	}
	return nil
}

// Get gets the current configuration
func Get() Configuration {
	return config
}

// Set replaces the configuration with the passed configuration
func Set(cfg Configuration) {
	config = cfg
}

// SetConfigFromStr parses the yaml input and sets the configuration from it
func SetConfigFromStr(configBytes []byte) error {
	var cfg Configuration
	if err := yaml.Unmarshal(configBytes, &cfg); err != nil {
		return err
	}
	config = cfg
	return nil
}
