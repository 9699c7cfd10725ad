package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/yourusername/ytshim/internal/app"
	"github.com/yourusername/ytshim/internal/domain"
	"github.com/yourusername/ytshim/internal/infrastructure"
	"github.com/yourusername/ytshim/pkg/logger"
	"go.uber.org/zap"
)

// extractorFactory builds the extractor for one invocation
type extractorFactory func(cmd *cobra.Command, config *domain.YTDLPConfig, log *zap.Logger) (domain.Extractor, error)

// newYTDLPExtractor is the production factory. It provisions yt-dlp first
// when auto install is enabled.
func newYTDLPExtractor(cmd *cobra.Command, config *domain.YTDLPConfig, log *zap.Logger) (domain.Extractor, error) {
	extractor := infrastructure.NewYTDLPExtractor(config, log)
	if err := extractor.EnsureInstalled(cmd.Context()); err != nil {
		return nil, err
	}
	return extractor, nil
}

// session holds everything one subcommand needs
type session struct {
	config    *domain.Config
	logger    *zap.Logger
	extractor domain.Extractor
	repo      domain.DownloadRepository
	tagger    domain.AudioTagger
}

func (r *session) close() {
	if r.repo != nil {
		if err := r.repo.Close(); err != nil {
			r.logger.Warn("Failed to close history database", zap.Error(err))
		}
	}
	_ = r.logger.Sync()
}

func newRootCmd(stdout, stderr io.Writer, factory extractorFactory) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "ytshim",
		Short: "Line-protocol shim around yt-dlp",
		Long: `ytshim looks up video metadata and downloads videos with yt-dlp,
reporting results on standard output in a line-oriented protocol.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("a subcommand is required")
		},
	}
	root.SetOut(stderr)
	root.SetErr(stderr)
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")

	setup := func(cmd *cobra.Command, command string) (*session, error) {
		// Flags are valid from here on; later failures are runtime errors.
		cmd.SilenceUsage = true

		config, err := app.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}

		log, err := logger.New(logger.Config{
			Level:      config.Logging.Level,
			Format:     config.Logging.Format,
			OutputPath: config.Logging.OutputPath,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		log = log.With(
			zap.String("command", command),
			zap.String("run_id", uuid.New().String()))

		rt := &session{config: config, logger: log}

		rt.extractor, err = factory(cmd, &config.YTDLP, log)
		if err != nil {
			rt.close()
			return nil, err
		}

		if config.History.Enabled {
			repo, err := infrastructure.NewSQLiteHistoryRepository(config.History.DatabasePath)
			if err != nil {
				log.Warn("History disabled", zap.Error(err))
			} else {
				rt.repo = repo
			}
		}
		if config.Download.WriteTags {
			rt.tagger = infrastructure.NewID3Tagger()
		}

		return rt, nil
	}

	root.AddCommand(newInfoCmd(stdout, setup), newDownloadCmd(stdout, setup))
	return root
}

type setupFunc func(cmd *cobra.Command, command string) (*session, error)

func newInfoCmd(stdout io.Writer, setup setupFunc) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print video metadata as one JSON line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				return errors.New("--url must not be empty")
			}

			rt, err := setup(cmd, "info")
			if err != nil {
				return err
			}
			defer rt.close()

			handler := app.NewInfoHandler(rt.extractor, &rt.config.YTDLP, stdout, rt.logger)
			return handler.Run(cmd.Context(), url)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Video URL")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func newDownloadCmd(stdout io.Writer, setup setupFunc) *cobra.Command {
	var req app.DownloadRequest
	var quality, format string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download a video, reporting PROGRESS, FINISHED and FILEPATH lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.URL == "" {
				return errors.New("--url must not be empty")
			}
			if req.OutputDir == "" {
				return errors.New("--output must not be empty")
			}
			req.Quality = domain.Quality(quality)
			req.Format = domain.OutputFormat(format)

			rt, err := setup(cmd, "download")
			if err != nil {
				return err
			}
			defer rt.close()

			if !req.Quality.Known() {
				rt.logger.Warn("Unknown quality, using best available", zap.String("quality", quality))
			}
			if !req.Format.Known() {
				rt.logger.Warn("Unknown format, downloading video merged as webm", zap.String("format", format))
			}

			handler := app.NewDownloadHandler(rt.extractor, rt.repo, rt.tagger, &rt.config.YTDLP, stdout, rt.logger)
			_, err = handler.Run(cmd.Context(), req)
			return err
		},
	}

	cmd.Flags().StringVar(&req.URL, "url", "", "Video URL")
	cmd.Flags().StringVar(&req.OutputDir, "output", "", "Output directory")
	cmd.Flags().StringVar(&quality, "quality", "", "Quality: best, uhd_2160, qhd_1440, hd_1080, hd_720, sd_480, sd_360")
	cmd.Flags().StringVar(&format, "format", "", "Format: mp3, mp4, webm")
	for _, name := range []string{"url", "output", "quality", "format"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
