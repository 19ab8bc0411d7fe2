package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var configDir string
var configFilePath string
var credentialsPath string

// Settings is the typed view of the configuration handed to the composition root
type Settings struct {
	BaseURL           string
	Timeout           time.Duration
	WebSocketURL      string
	HeartbeatInterval time.Duration
	CacheStaleTime    time.Duration
	SearchDebounce    time.Duration
	SearchStaleTime   time.Duration
	ResendSeconds     int
	RollbackOnFailure bool
	UserAgent         string
}

// getConfigDir returns platform-specific config directory
func getConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		// Windows: %LOCALAPPDATA%\athlink\cli
		appData := os.Getenv("LOCALAPPDATA")
		if appData == "" {
			appData = os.Getenv("APPDATA")
		}
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = home
		}
		return filepath.Join(appData, "athlink", "cli"), nil
	}

	// Unix-like (macOS, Linux): ~/.config/athlink/cli
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "athlink", "cli"), nil
}

// getSystemConfigPaths returns platform-specific system config paths
func getSystemConfigPaths() []string {
	if runtime.GOOS == "windows" {
		return []string{filepath.Join(os.Getenv("ProgramFiles"), "Athlink", "cli", "config.toml")}
	}

	return []string{
		"/etc/athlink/cli/config.toml",
		"/usr/local/etc/athlink/cli/config.toml",
	}
}

// Init initializes the configuration
func Init(configPath string) error {
	var err error
	if configPath != "" {
		configDir = filepath.Dir(configPath)
		configFilePath = configPath
	} else {
		configDir, err = getConfigDir()
		if err != nil {
			return err
		}
		configFilePath = filepath.Join(configDir, "config.toml")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	credentialsPath = filepath.Join(configDir, "credentials")

	viper.SetConfigType("toml")
	setDefaults()

	// System config is the foundation, first one found wins
	for _, sysConfigPath := range getSystemConfigPaths() {
		if _, err := os.Stat(sysConfigPath); err == nil {
			viper.SetConfigFile(sysConfigPath)
			_ = viper.MergeInConfig()
			break
		}
	}

	// User config overrides system config
	viper.SetConfigFile(configFilePath)
	_ = viper.MergeInConfig()

	// .env in the working directory, then ATHLINK_API_BASE_URL style overrides
	_ = godotenv.Load()
	viper.SetEnvPrefix("ATHLINK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	return nil
}

func setDefaults() {
	viper.SetDefault("api.base_url", "http://localhost:8080")
	viper.SetDefault("api.timeout", 30)
	viper.SetDefault("ws.url", "ws://localhost:8080/api/v1/ws")
	viper.SetDefault("ws.heartbeat_seconds", 30)
	viper.SetDefault("cache.stale_seconds", 0)
	viper.SetDefault("search.debounce_ms", 300)
	viper.SetDefault("search.stale_minutes", 5)
	viper.SetDefault("resend.seconds", 60)
	viper.SetDefault("mutation.rollback_on_failure", false)
	viper.SetDefault("output.format", "text")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", filepath.Join(configDir, "athlink-cli.log"))
	viper.SetDefault("log.max_size_mb", 10)
	viper.SetDefault("log.max_backups", 3)
}

// Load returns the typed settings for the current configuration
func Load() Settings {
	return Settings{
		BaseURL:           GetString("api.base_url"),
		Timeout:           time.Duration(GetInt("api.timeout")) * time.Second,
		WebSocketURL:      GetString("ws.url"),
		HeartbeatInterval: time.Duration(GetInt("ws.heartbeat_seconds")) * time.Second,
		CacheStaleTime:    time.Duration(GetInt("cache.stale_seconds")) * time.Second,
		SearchDebounce:    time.Duration(GetInt("search.debounce_ms")) * time.Millisecond,
		SearchStaleTime:   time.Duration(GetInt("search.stale_minutes")) * time.Minute,
		ResendSeconds:     GetInt("resend.seconds"),
		RollbackOnFailure: GetBool("mutation.rollback_on_failure"),
		UserAgent:         "Athlink-CLI/" + Version,
	}
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetString returns a string configuration value
func GetString(key string) string {
	value := viper.GetString(key)
	if key == "log.file" {
		return expandPath(value)
	}
	return value
}

// GetInt returns an int configuration value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool configuration value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// Set overrides a value for the lifetime of the process without persisting it
func Set(key string, value interface{}) {
	viper.Set(key, value)
}

// SetString sets a string configuration value and writes it to the user config
func SetString(key string, value string) error {
	viper.Set(key, value)
	return viper.WriteConfigAs(configFilePath)
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	return configDir
}

// GetCredentialsPath returns the path to the credentials file
func GetCredentialsPath() string {
	return credentialsPath
}
