package config

import "fmt"

// the most recent Merge args, so a config file reload can re-apply the command line
var (
	cmdLine FromCmdLine
	parsed  Configuration
)

// Merge takes a struct indicating which configuration options have been provided on the command
// line, as well as a configuration struct parsed from the command line which ALSO includes defaults
// that the user didn't specify. For example the default port is 8080 and if you don't specify
// that on the command line - it gets defaulted into the parsed configuration struct. So:
//
//  1. User provided a value: overwrite current config using the user's value
//  2. User did not provide a value, current config is unspecified: use the default in the parsed config
//  3. User did not provide a value, current config is specified: leave the current config untouched
func Merge(fromCmdline FromCmdLine, cfg Configuration) {
	cmdLine, parsed = fromCmdline, cfg
	if fromCmdline.LogLevel || config.LogLevel == "" {
		config.LogLevel = cfg.LogLevel
	}
	if fromCmdline.LogFile || config.LogFile == "" {
		config.LogFile = cfg.LogFile
	}
	if fromCmdline.ConfigFile || config.ConfigFile == "" {
		config.ConfigFile = cfg.ConfigFile
	}
	if fromCmdline.SiteUrl || config.SiteUrl == "" {
		config.SiteUrl = cfg.SiteUrl
	}
	if fromCmdline.ImageBase || config.ImageBase == "" {
		config.ImageBase = cfg.ImageBase
	}
	if fromCmdline.MetadataPath || config.MetadataPath == "" {
		config.MetadataPath = cfg.MetadataPath
	}
	if fromCmdline.ManifestPath || config.ManifestPath == "" {
		config.ManifestPath = cfg.ManifestPath
	}
	if fromCmdline.Format || config.Format == "" {
		config.Format = cfg.Format
	}
	if fromCmdline.PreloadArt || config.PreloadArt == "" {
		config.PreloadArt = cfg.PreloadArt
	}
	if fromCmdline.Port || config.Port == 0 {
		config.Port = cfg.Port
	}
	if fromCmdline.Health || config.Health == 0 {
		config.Health = cfg.Health
	}
	if fromCmdline.Metrics || config.Metrics == 0 {
		config.Metrics = cfg.Metrics
	}
	if fromCmdline.Ttl || config.Ttl == 0 {
		config.Ttl = cfg.Ttl
	}
	if fromCmdline.FetchTimeout || config.FetchTimeout == 0 {
		config.FetchTimeout = cfg.FetchTimeout
	}
	if fromCmdline.ImageTimeout || config.ImageTimeout == 0 {
		config.ImageTimeout = cfg.ImageTimeout
	}
	if fromCmdline.WatchConfig || !config.WatchConfig {
		config.WatchConfig = cfg.WatchConfig
	}
	if fromCmdline.WarmConfig || config.WarmConfig == (WarmConfig{}) {
		config.WarmConfig = mergeWarm(fromCmdline.WarmConfig, config.WarmConfig, cfg.WarmConfig)
	}
	if fromCmdline.ListConfig || config.ListConfig == (ListConfig{}) {
		config.ListConfig = cfg.ListConfig
	}
}

// mergeWarm merges the warm configuration field by field so that - for example - a
// concurrency from the config file survives an artwork file given on the command line.
func mergeWarm(fromCmdline bool, cur WarmConfig, parsed WarmConfig) WarmConfig {
	if cur == (WarmConfig{}) {
		return parsed
	}
	if fromCmdline && parsed.ArtworkFile != "" || cur.ArtworkFile == "" {
		cur.ArtworkFile = parsed.ArtworkFile
	}
	if fromCmdline && parsed.Concurrency != 0 || cur.Concurrency == 0 {
		cur.Concurrency = parsed.Concurrency
	}
	return cur
}

// Reload re-reads the configuration file and then re-applies the command line from the
// most recent Merge so that command line values still take precedence.
func Reload() error {
	configFile := config.ConfigFile
	if configFile == "" {
		return fmt.Errorf("no configuration file to reload")
	}
	if err := Load(configFile); err != nil {
		return err
	}
	Merge(cmdLine, parsed)
	config.ConfigFile = configFile
	return nil
}
