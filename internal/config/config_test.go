package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Options{ConfigFile: writeEmpty(t)})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8090, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.BackupBeforeImport)
	assert.Equal(t, []int{7, 28, 60, 90, 365}, cfg.RollingWindows)
	assert.Equal(t, 5, cfg.MaxDisplayedErrors)
	assert.Equal(t, "swa", cfg.DefaultSource)
	assert.Equal(t, filepath.Join(HomeDir(), "logbook.db"), cfg.DBPath)
	assert.Equal(t, "127.0.0.1:8090", cfg.Addr())
}

func writeEmpty(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "empty.yaml")
	writeFile(t, path, "{}\n")
	return path
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "pilotlog.yaml")
	writeFile(t, cfgPath, `
db_path: /tmp/from-file.db
port: 9000
log_level: debug
rolling_windows: [28, 365]
max_displayed_errors: 10
`)

	t.Setenv("PILOTLOG_PORT", "9100")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db", "", "")
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{"--db", "/tmp/from-flag.db"}))

	cfg, err := Load(Options{ConfigFile: cfgPath, Flags: flags})
	require.NoError(t, err)

	assert.Equal(t, cfgPath, cfg.FileUsed)
	assert.Equal(t, "/tmp/from-flag.db", cfg.DBPath)
	assert.Equal(t, 9100, cfg.Port)
	// unchanged flag does not clobber the file value
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []int{28, 365}, cfg.RollingWindows)
	assert.Equal(t, 10, cfg.MaxDisplayedErrors)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	writeFile(t, envPath, "PILOTLOG_HOST=0.0.0.0\nPILOTLOG_BACKUP_BEFORE_IMPORT=false\n")
	t.Cleanup(func() {
		os.Unsetenv("PILOTLOG_HOST")
		os.Unsetenv("PILOTLOG_BACKUP_BEFORE_IMPORT")
	})

	cfg, err := Load(Options{ConfigFile: writeEmpty(t), EnvFile: envPath})
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.False(t, cfg.BackupBeforeImport)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"bad port", "port: 70000\n"},
		{"negative window", "rolling_windows: [7, -1]\n"},
		{"bad yaml", "port: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			writeFile(t, path, tt.content)
			_, err := Load(Options{ConfigFile: path})
			assert.Error(t, err)
		})
	}

	_, err := Load(Options{ConfigFile: filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		DBPath:  filepath.Join(dir, "data", "logbook.db"),
		LogPath: filepath.Join(dir, "logs"),
	}
	require.NoError(t, cfg.EnsureDirectories())

	assert.DirExists(t, filepath.Join(dir, "data"))
	assert.DirExists(t, filepath.Join(dir, "logs"))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x.db"), expandHome("~/x.db"))
	assert.Equal(t, "/abs/x.db", expandHome("/abs/x.db"))
}
