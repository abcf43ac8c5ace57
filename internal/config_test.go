package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Point the search path somewhere empty.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig(NewViper(""))
	require.NoError(t, err)

	assert.Empty(t, cfg.Source)
	assert.Empty(t, cfg.Destination)
	assert.Equal(t, DefaultExtensions, cfg.Extensions)
	assert.False(t, cfg.UseExifTool)
	assert.False(t, cfg.FailFast)
	assert.Equal(t, 2*time.Second, cfg.WatchSettle)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photofiler.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
source = "/media/card/DCIM"
destination = "/photos"
extensions = ["JPG", ".heic"]
use_exiftool = true
manifest = true
watch_settle = "500ms"
`), 0644))

	cfg, err := LoadConfig(NewViper(path))
	require.NoError(t, err)

	assert.Equal(t, "/media/card/DCIM", cfg.Source)
	assert.Equal(t, "/photos", cfg.Destination)
	assert.Equal(t, []string{".jpg", ".heic"}, cfg.Extensions)
	assert.True(t, cfg.UseExifTool)
	assert.True(t, cfg.Manifest)
	assert.Equal(t, 500*time.Millisecond, cfg.WatchSettle)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photofiler.toml")
	require.NoError(t, os.WriteFile(path, []byte(`destination = "/photos"`), 0644))
	t.Setenv("PHOTOFILER_DESTINATION", "/elsewhere")
	t.Setenv("PHOTOFILER_FAIL_FAST", "true")

	cfg, err := LoadConfig(NewViper(path))
	require.NoError(t, err)

	assert.Equal(t, "/elsewhere", cfg.Destination)
	assert.True(t, cfg.FailFast)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(NewViper(filepath.Join(t.TempDir(), "nope.toml")))
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	confPath := filepath.Join(dir, "photofiler.toml")
	require.NoError(t, os.WriteFile(envPath, []byte("PHOTOFILER_SOURCE=/from/dotenv\n"), 0644))
	require.NoError(t, os.WriteFile(confPath, []byte(`source = "/from/file"`), 0644))
	// godotenv never overrides a set variable, so start from unset; t.Setenv
	// still restores the original afterwards.
	t.Setenv("PHOTOFILER_SOURCE", "")
	require.NoError(t, os.Unsetenv("PHOTOFILER_SOURCE"))

	require.NoError(t, LoadEnvFile(envPath))
	cfg, err := LoadConfig(NewViper(confPath))
	require.NoError(t, err)
	assert.Equal(t, "/from/dotenv", cfg.Source)

	assert.NoError(t, LoadEnvFile(""))
	assert.Error(t, LoadEnvFile(filepath.Join(dir, "missing.env")))
}

func TestNormalizeExtensions(t *testing.T) {
	assert.Equal(t, []string{".jpg", ".png", ".heic"}, normalizeExtensions([]string{"JPG", " .png ", "", ".HEIC"}))
	assert.Empty(t, normalizeExtensions(nil))
	assert.Empty(t, normalizeExtensions([]string{"jpg", AllExtensions}))
}

func TestLoadConfig_EveryFile(t *testing.T) {
	for name, body := range map[string]string{
		"empty list": `extensions = []`,
		"wildcard":   `extensions = ["*"]`,
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "photofiler.toml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))

			cfg, err := LoadConfig(NewViper(path))
			require.NoError(t, err)
			assert.Empty(t, cfg.Extensions)
		})
	}
}
