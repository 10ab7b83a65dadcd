// Config loading for the echosign CLI. config.yaml lives in the resolved
// config directory and is created with defaults on first run. ECHOSIGN_*
// environment variables override individual keys.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/echosign/internal/hostname"
	"github.com/mesh-intelligence/echosign/internal/logging"
	"github.com/mesh-intelligence/echosign/internal/paths"
	"github.com/mesh-intelligence/echosign/internal/reflection"
	"github.com/mesh-intelligence/echosign/internal/server"
	"github.com/mesh-intelligence/echosign/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "ECHOSIGN"

	defaultBackend         = types.BackendSQLite
	defaultCacheBytes      = 8 << 20
	defaultCacheTTL        = 24 * time.Hour
	defaultReflectProvider = reflection.ProviderNone
)

// Settings is the full CLI configuration.
type Settings struct {
	types.Config `yaml:",inline" mapstructure:",squash"`

	Server     server.Config     `yaml:"server" mapstructure:"server"`
	Reflection reflection.Config `yaml:"reflection" mapstructure:"reflection"`
	Log        logging.Config    `yaml:"log" mapstructure:"log"`
}

// defaultSettings is the configuration written to a fresh config.yaml.
func defaultSettings() Settings {
	return Settings{
		Config: types.Config{Backend: defaultBackend},
		Server: server.Config{
			Addr:      server.DefaultAddr,
			DevSuffix: hostname.DefaultDevSuffix,
		},
		Reflection: reflection.Config{
			Provider:   defaultReflectProvider,
			CacheBytes: defaultCacheBytes,
			CacheTTL:   defaultCacheTTL,
		},
		Log: logging.DefaultConfig(),
	}
}

// envKeys lists the keys that ECHOSIGN_* variables may override. data_dir
// is absent: ECHOSIGN_DATA_DIR ranks below config.yaml and is applied by
// paths.ResolveDataDir.
var envKeys = []string{
	"backend",
	"fallback_backend",
	"redis.addr",
	"redis.password",
	"redis.db",
	"redis.prefix",
	"postgres.dsn",
	"server.addr",
	"server.dev_suffix",
	"server.cookie_domain",
	"server.cookie_secure",
	"reflection.provider",
	"reflection.api_key",
	"reflection.model",
	"reflection.base_url",
	"reflection.cache_bytes",
	"reflection.cache_ttl",
	"log.level",
	"log.development",
	"log.output_path",
}

// loadSettings reads config.yaml from configDir using Viper, creating the
// directory and a default file on first run.
func loadSettings(configDir string) (Settings, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return Settings{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := writeConfigIfMissing(filepath.Join(configDir, paths.ConfigFileName)); err != nil {
		return Settings{}, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return Settings{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	return s, nil
}

func setDefaults(v *viper.Viper) {
	d := defaultSettings()
	v.SetDefault("backend", d.Backend)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.dev_suffix", d.Server.DevSuffix)
	v.SetDefault("reflection.provider", d.Reflection.Provider)
	v.SetDefault("reflection.cache_bytes", d.Reflection.CacheBytes)
	v.SetDefault("reflection.cache_ttl", d.Reflection.CacheTTL)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.output_path", d.Log.OutputPath)
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. An existing file is left untouched.
func writeConfigIfMissing(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	d := defaultSettings()
	data, err := yaml.Marshal(&d)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := "# echosign configuration\n# ECHOSIGN_<KEY> environment variables override these values.\n\n"
	return os.WriteFile(path, append([]byte(header), data...), 0o644)
}
