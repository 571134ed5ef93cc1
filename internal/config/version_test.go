package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersionedConfig_LegacyConfig(t *testing.T) {
	// Legacy config: flat ip/port/name
	legacyJSON := `{
		"ip": "10.0.0.2",
		"port": 4000,
		"name": "alice",
		"popup": {"widthPercent": 70}
	}`

	cfg, err := ParseVersionedConfig([]byte(legacyJSON))
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.2", cfg.Server.Host)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "alice", cfg.Server.Username)
	assert.Equal(t, 70, cfg.Popup.WidthPercent)
	assert.Equal(t, "tcp", cfg.Server.Transport)
}

func TestParseVersionedConfig_LegacyDoesNotOverrideServer(t *testing.T) {
	cfg, err := ParseVersionedConfig([]byte(`{"ip": "old", "server": {"host": "new"}}`))
	require.NoError(t, err)
	assert.Equal(t, "new", cfg.Server.Host)
}

func TestParseVersionedConfig_Version1(t *testing.T) {
	v1JSON := `{
		"version": 1,
		"server": {"host": "example.org", "port": 9000}
	}`

	cfg, err := ParseVersionedConfig([]byte(v1JSON))
	require.NoError(t, err)
	assert.Equal(t, "example.org", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestParseVersionedConfig_FutureVersion(t *testing.T) {
	_, err := ParseVersionedConfig([]byte(`{"version": 99}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")
}

func TestParseVersionedConfig_NotAnObject(t *testing.T) {
	_, err := ParseVersionedConfig([]byte(`null`))
	assert.Error(t, err)

	_, err = ParseVersionedConfig([]byte(`[1,2]`))
	assert.Error(t, err)
}

func TestParseVersionedConfig_DoesNotAliasDefaults(t *testing.T) {
	base := DefaultConfig()
	cfg, err := parseOnto(base, []byte(`{"preview": {"imageSuffixes": [".png"]}}`))
	require.NoError(t, err)

	assert.Equal(t, []string{".png"}, cfg.Preview.ImageSuffixes)
	assert.Equal(t, DefaultConfig().Preview.ImageSuffixes, base.Preview.ImageSuffixes)
}

func TestApplyMigrations_V0ToV1(t *testing.T) {
	data := map[string]interface{}{"ip": "1.2.3.4"}

	migrated, err := ApplyMigrations(data, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, migrated["version"])
	assert.NotContains(t, migrated, "ip")
	server := migrated["server"].(map[string]interface{})
	assert.Equal(t, "1.2.3.4", server["host"])
}

func TestApplyMigrations_NoPath(t *testing.T) {
	_, err := ApplyMigrations(map[string]interface{}{}, -1)
	assert.Error(t, err)
}

func TestMarshalVersionedConfig(t *testing.T) {
	data, err := MarshalVersionedConfig(DefaultConfig())
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, float64(CurrentVersion), raw["version"])
	assert.Contains(t, raw, "server")
	assert.Contains(t, raw, "popup")
}

func TestRoundTrip(t *testing.T) {
	original := DefaultConfig()
	original.Server.Transport = "websocket"
	original.Files.ShowHidden = true
	original.Preview.HighlightCode = false

	data, err := MarshalVersionedConfig(original)
	require.NoError(t, err)

	parsed, err := ParseVersionedConfig(data)
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestCurrentVersion(t *testing.T) {
	assert.GreaterOrEqual(t, CurrentVersion, 1)
	assert.NotEmpty(t, Version)
}
