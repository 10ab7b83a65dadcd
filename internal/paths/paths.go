// Package paths resolves the echosign configuration and data directories.
// Each resolver follows a fixed precedence: explicit flag, then config
// value (data dir only), then environment variable, then a default.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user platform directories.
const AppName = "echosign"

// DefaultDataDirName is the CWD-relative data directory used when nothing
// else is configured.
const DefaultDataDirName = ".echosign-db"

// ConfigFileName is the config file looked up inside the config directory.
const ConfigFileName = "config.yaml"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "ECHOSIGN_CONFIG_DIR"
	EnvDataDir   = "ECHOSIGN_DATA_DIR"
)

// platformDir holds platform lookups; tests may replace them.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// platformPath returns $<xdgVar>/echosign on Linux, falling back to
// ~/<linuxFallback...>/echosign, and os.UserConfigDir()/echosign elsewhere.
func platformPath(xdgVar string, linuxFallback ...string) (string, error) {
	if runtime.GOOS != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv(xdgVar); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	parts := append([]string{home}, linuxFallback...)
	return filepath.Join(append(parts, AppName)...), nil
}

// DefaultConfigDir returns the platform configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/echosign (fallback ~/.config/echosign)
// macOS:   ~/Library/Application Support/echosign
// Windows: %APPDATA%/echosign
func DefaultConfigDir() (string, error) {
	return platformPath("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform data directory. It is not part of the
// ResolveDataDir chain; `echosign init --global` uses it.
//
// Linux:   $XDG_DATA_HOME/echosign (fallback ~/.local/share/echosign)
// macOS:   ~/Library/Application Support/echosign
// Windows: %APPDATA%/echosign
func DefaultDataDir() (string, error) {
	return platformPath("XDG_DATA_HOME", ".local", "share")
}

// ResolveConfigDir applies flag > ECHOSIGN_CONFIG_DIR > DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	if dir := firstNonEmpty(flag, os.Getenv(EnvConfigDir)); dir != "" {
		return filepath.Abs(dir)
	}
	return DefaultConfigDir()
}

// ResolveDataDir applies flag > config data_dir > ECHOSIGN_DATA_DIR >
// $(CWD)/.echosign-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	if dir := firstNonEmpty(flag, configValue, os.Getenv(EnvDataDir)); dir != "" {
		return filepath.Abs(dir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
