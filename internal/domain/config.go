package domain

import "time"

// Config represents the application configuration
type Config struct {
	YTDLP    YTDLPConfig    `mapstructure:"ytdlp"`
	Download DownloadConfig `mapstructure:"download"`
	History  HistoryConfig  `mapstructure:"history"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// YTDLPConfig contains yt-dlp invocation settings
type YTDLPConfig struct {
	Binary              string        `mapstructure:"binary"` // empty resolves via PATH or the install cache
	FFmpegLocation      string        `mapstructure:"ffmpeg_location"`
	CookieFile          string        `mapstructure:"cookie_file"`
	Proxy               string        `mapstructure:"proxy"`
	NoCheckCertificates bool          `mapstructure:"no_check_certificates"`
	AutoInstall         bool          `mapstructure:"auto_install"`
	ProgressInterval    time.Duration `mapstructure:"progress_interval"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	WriteTags bool `mapstructure:"write_tags"`
}

// HistoryConfig controls the optional download journal
type HistoryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DatabasePath string `mapstructure:"database_path"`
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stderr or file path; stdout carries the line protocol
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		YTDLP: YTDLPConfig{
			Binary:              "",
			NoCheckCertificates: true,
			AutoInstall:         false,
			ProgressInterval:    100 * time.Millisecond,
		},
		Download: DownloadConfig{
			WriteTags: false,
		},
		History: HistoryConfig{
			Enabled:      false,
			DatabasePath: "$HOME/.ytshim/history.db",
		},
		Logging: LoggingConfig{
			Level:      "warn",
			Format:     "console",
			OutputPath: "stderr",
		},
	}
}
