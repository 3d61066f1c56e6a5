package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds the server configuration
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	CatalogFile string `yaml:"catalog_file"`
	SnapshotDir string `yaml:"snapshot_dir"`
	LogLevel    string `yaml:"log_level"`
}

// configResolver defines how to resolve a single configuration value
type configResolver struct {
	flagName    string
	envVarName  string
	description string
	defaultVal  func(file ServerConfig) string
	setter      func(*ServerConfig, string)
}

// loadServerConfig loads server configuration from CLI flags, environment
// variables, and an optional YAML config file, in that priority order.
func loadServerConfig() (ServerConfig, error) {
	resolvers := []configResolver{
		{
			flagName:    "addr",
			envVarName:  "FUSERING_ADDR",
			description: "HTTP listen address (e.g. :8080, 0.0.0.0:8080)",
			defaultVal:  fallback(func(c ServerConfig) string { return c.Addr }, ":8080"),
			setter:      func(c *ServerConfig, v string) { c.Addr = v },
		},
		{
			flagName:    "catalog-file",
			envVarName:  "FUSERING_CATALOG_FILE",
			description: "optional path to a token catalog CSV; empty uses the embedded catalog",
			defaultVal:  fallback(func(c ServerConfig) string { return c.CatalogFile }, ""),
			setter:      func(c *ServerConfig, v string) { c.CatalogFile = v },
		},
		{
			flagName:    "snapshot-dir",
			envVarName:  "FUSERING_SNAPSHOT_DIR",
			description: "directory where game snapshots are stored",
			defaultVal:  fallback(func(c ServerConfig) string { return c.SnapshotDir }, "./data"),
			setter:      func(c *ServerConfig, v string) { c.SnapshotDir = v },
		},
		{
			flagName:    "log-level",
			envVarName:  "FUSERING_LOG_LEVEL",
			description: "log level: debug, info, warn, error",
			defaultVal:  fallback(func(c ServerConfig) string { return c.LogLevel }, "info"),
			setter:      func(c *ServerConfig, v string) { c.LogLevel = v },
		},
	}

	configFile := flag.String("config", "", "optional path to a YAML server config file")
	flagVars := make(map[string]*string)
	for _, resolver := range resolvers {
		flagVars[resolver.flagName] = flag.String(resolver.flagName, "", resolver.description)
	}

	flag.Parse()

	// Values from the YAML file become the defaults for the resolvers.
	var fileCfg ServerConfig
	path := *configFile
	if path == "" {
		path = os.Getenv("FUSERING_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return ServerConfig{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg := ServerConfig{}
	for _, resolver := range resolvers {
		var value string
		if *flagVars[resolver.flagName] != "" {
			value = *flagVars[resolver.flagName]
		} else if envValue := os.Getenv(resolver.envVarName); envValue != "" {
			value = envValue
		} else {
			value = resolver.defaultVal(fileCfg)
		}
		resolver.setter(&cfg, value)
	}

	return cfg, nil
}

// fallback resolves a default: the config file's value if set, otherwise the
// hardcoded one.
func fallback(fromFile func(ServerConfig) string, def string) func(ServerConfig) string {
	return func(c ServerConfig) string {
		if v := fromFile(c); v != "" {
			return v
		}
		return def
	}
}
