package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := def()
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "csrf_token", c.CSRFCookie)
	assert.Empty(t, c.DBURL)
}

func TestLoadJSONOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"port":"9090","dbUrl":"postgres://x/y","logDev":true}`), 0o644))

	c, err := loadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, "postgres://x/y", c.DBURL)
	assert.True(t, c.LogDev)
	// untouched keys keep their defaults
	assert.Equal(t, "session", c.SessionCookie)
}

func TestGetenvIgnoresBlankValues(t *testing.T) {
	t.Setenv("SMARTORDER_TEST_KEY", "   ")
	assert.Equal(t, "fallback", getenv("SMARTORDER_TEST_KEY", "fallback"))

	t.Setenv("SMARTORDER_TEST_KEY", "valor")
	assert.Equal(t, "valor", getenv("SMARTORDER_TEST_KEY", "fallback"))
}

func TestFlagsOverrideFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port":"9090"}`), 0o644))

	c := load(path, []string{"-port", "7000", "-log-level", "debug"})
	assert.Equal(t, "7000", c.Port)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestConfigFlagSwitchesFile(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "config.json")
	second := filepath.Join(dir, "otro.json")
	require.NoError(t, os.WriteFile(first, []byte(`{"port":"1111"}`), 0o644))
	require.NoError(t, os.WriteFile(second, []byte(`{"port":"2222","devUser":"ops"}`), 0o644))

	// re-reads the cascade against the file named by the flag; the flags are
	// registered per call, so the re-read must not collide with the first pass
	c := load(first, []string{"-config", second})
	assert.Equal(t, "2222", c.Port)
	assert.Equal(t, "ops", c.DevUser)
}

func TestConfigFlagRepeatedLoadsDoNotCollide(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "otro.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port":"2222"}`), 0o644))

	for i := 0; i < 3; i++ {
		c := load(filepath.Join(dir, "config.json"), []string{"-config", path})
		assert.Equal(t, "2222", c.Port)
	}
}

func TestGetenvBool(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{"1", true}, {"true", true}, {"YES", true},
		{"0", false}, {"false", false}, {"no", false},
		{"banana", true}, // unparseable keeps the fallback
	}
	for _, tc := range cases {
		t.Setenv("SMARTORDER_TEST_BOOL", tc.raw)
		assert.Equal(t, tc.want, getenvBool("SMARTORDER_TEST_BOOL", true), "raw=%q", tc.raw)
	}
}
