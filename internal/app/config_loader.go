package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/yourusername/ytshim/internal/domain"
)

// EnvPrefix prefixes environment overrides, e.g. YTSHIM_YTDLP_BINARY
const EnvPrefix = "YTSHIM"

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	// A .env file in the working directory seeds the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, config)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.ytshim")
		v.AddConfigPath("/etc/ytshim")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults registers every key so environment overrides apply even
// without a config file.
func setDefaults(v *viper.Viper, config *domain.Config) {
	v.SetDefault("ytdlp.binary", config.YTDLP.Binary)
	v.SetDefault("ytdlp.ffmpeg_location", config.YTDLP.FFmpegLocation)
	v.SetDefault("ytdlp.cookie_file", config.YTDLP.CookieFile)
	v.SetDefault("ytdlp.proxy", config.YTDLP.Proxy)
	v.SetDefault("ytdlp.no_check_certificates", config.YTDLP.NoCheckCertificates)
	v.SetDefault("ytdlp.auto_install", config.YTDLP.AutoInstall)
	v.SetDefault("ytdlp.progress_interval", config.YTDLP.ProgressInterval)
	v.SetDefault("download.write_tags", config.Download.WriteTags)
	v.SetDefault("history.enabled", config.History.Enabled)
	v.SetDefault("history.database_path", config.History.DatabasePath)
	v.SetDefault("logging.level", config.Logging.Level)
	v.SetDefault("logging.format", config.Logging.Format)
	v.SetDefault("logging.output_path", config.Logging.OutputPath)
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.YTDLP.Binary = expandPath(config.YTDLP.Binary)
	config.YTDLP.FFmpegLocation = expandPath(config.YTDLP.FFmpegLocation)
	config.YTDLP.CookieFile = expandPath(config.YTDLP.CookieFile)
	config.History.DatabasePath = expandPath(config.History.DatabasePath)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	path = os.ExpandEnv(path)

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return path
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Logging.OutputPath == "stdout" {
		return fmt.Errorf("logging output_path cannot be stdout: it carries the command output")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "warn"
	}

	if config.YTDLP.ProgressInterval < 0 {
		return fmt.Errorf("progress interval cannot be negative")
	}

	if config.History.Enabled && config.History.DatabasePath == "" {
		return fmt.Errorf("history database path not configured")
	}

	return nil
}
