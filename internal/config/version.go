package config

import (
	"encoding/json"
	"fmt"
)

// Version is the chatterm release, set at build time with
// -ldflags "-X github.com/riordanpawley/chatterm/internal/config.Version=..."
var Version = "dev"

// CurrentVersion is the current config schema version
const CurrentVersion = 1

// Migration represents a config migration function
type Migration struct {
	FromVersion int
	ToVersion   int
	Migrate     func(data map[string]interface{}) (map[string]interface{}, error)
}

// migrations is the list of migrations in order
var migrations = []Migration{
	// Migration 0 -> 1: legacy files were flat {"ip", "port", "name"}
	{
		FromVersion: 0,
		ToVersion:   1,
		Migrate: func(data map[string]interface{}) (map[string]interface{}, error) {
			server, _ := data["server"].(map[string]interface{})
			if server == nil {
				server = make(map[string]interface{})
			}
			for legacy, key := range map[string]string{"ip": "host", "port": "port", "name": "username"} {
				v, ok := data[legacy]
				if !ok {
					continue
				}
				if _, set := server[key]; !set {
					server[key] = v
				}
				delete(data, legacy)
			}
			if len(server) > 0 {
				data["server"] = server
			}
			data["version"] = 1
			return data, nil
		},
	},
}

// ParseVersionedConfig parses config data over the defaults with version
// migration support
func ParseVersionedConfig(data []byte) (*Config, error) {
	return parseOnto(DefaultConfig(), data)
}

// parseOnto migrates data and decodes it over base. Keys absent from data
// keep base's values.
func parseOnto(base *Config, data []byte) (*Config, error) {
	// First, parse as raw JSON to get version
	var rawConfig map[string]interface{}
	if err := json.Unmarshal(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if rawConfig == nil {
		return nil, fmt.Errorf("config must be a JSON object")
	}

	// Detect version (0 if not present = legacy config)
	version := 0
	if v, ok := rawConfig["version"].(float64); ok {
		version = int(v)
	}

	// Check for future version
	if version > CurrentVersion {
		return nil, fmt.Errorf("config version %d is newer than supported version %d", version, CurrentVersion)
	}

	// Apply migrations if needed
	if version < CurrentVersion {
		var err error
		rawConfig, err = ApplyMigrations(rawConfig, version)
		if err != nil {
			return nil, fmt.Errorf("failed to migrate config: %w", err)
		}
	}
	delete(rawConfig, "version")

	// Re-marshal and unmarshal to get proper types
	migratedData, err := json.Marshal(rawConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal migrated config: %w", err)
	}

	cfg := *base
	cfg.Preview.ImageSuffixes = append([]string(nil), base.Preview.ImageSuffixes...)
	if err := json.Unmarshal(migratedData, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// ApplyMigrations applies all migrations from the given version to CurrentVersion
func ApplyMigrations(data map[string]interface{}, fromVersion int) (map[string]interface{}, error) {
	for _, migration := range migrations {
		if migration.FromVersion == fromVersion {
			var err error
			data, err = migration.Migrate(data)
			if err != nil {
				return nil, fmt.Errorf("migration %d -> %d failed: %w",
					migration.FromVersion, migration.ToVersion, err)
			}
			fromVersion = migration.ToVersion
		}
	}

	if fromVersion < CurrentVersion {
		return nil, fmt.Errorf("no migration path from version %d to %d", fromVersion, CurrentVersion)
	}

	return data, nil
}

// MarshalVersionedConfig serializes a config with version information
func MarshalVersionedConfig(cfg *Config) ([]byte, error) {
	// Marshal config first
	cfgData, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}

	// Parse back as map
	var cfgMap map[string]interface{}
	if err := json.Unmarshal(cfgData, &cfgMap); err != nil {
		return nil, err
	}

	// Add version at the top
	cfgMap["version"] = CurrentVersion

	return json.MarshalIndent(cfgMap, "", "  ")
}
