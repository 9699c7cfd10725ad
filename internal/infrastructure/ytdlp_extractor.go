package infrastructure

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lrstanley/go-ytdlp"
	"github.com/yourusername/ytshim/internal/domain"
	"go.uber.org/zap"
)

// infoMarker prefixes the info line yt-dlp prints once the final file is in place
const infoMarker = "ytshim-info "

// afterMoveTemplate prints the full info dict, including the final filepath,
// after every post-processor has run
const afterMoveTemplate = "after_move:" + infoMarker + "%()j"

// YTDLPExtractor implements domain.Extractor on top of the yt-dlp executable
type YTDLPExtractor struct {
	config *domain.YTDLPConfig
	logger *zap.Logger
}

// NewYTDLPExtractor creates a new yt-dlp backed extractor
func NewYTDLPExtractor(config *domain.YTDLPConfig, logger *zap.Logger) *YTDLPExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YTDLPExtractor{config: config, logger: logger}
}

// EnsureInstalled downloads a yt-dlp release when auto install is enabled
// and no explicit binary is configured
func (e *YTDLPExtractor) EnsureInstalled(ctx context.Context) error {
	if !e.config.AutoInstall || e.config.Binary != "" {
		return nil
	}
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to install yt-dlp: %w", err)
	}
	e.logger.Debug("yt-dlp available",
		zap.String("executable", resolved.Executable),
		zap.String("version", resolved.Version))
	return nil
}

// Extract returns metadata for url. Media is fetched too unless
// opts.SkipDownload is set.
func (e *YTDLPExtractor) Extract(ctx context.Context, url string, opts domain.Options) (*domain.Metadata, error) {
	cmd := e.newCommand(opts).PrintJSON()

	result, err := e.run(ctx, cmd, url)
	if err != nil {
		return nil, err
	}

	infos, err := result.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp metadata: %w", err)
	}
	if len(infos) == 0 || infos[len(infos)-1] == nil {
		return nil, errors.New("yt-dlp returned no metadata")
	}
	return metadataFromInfo(infos[len(infos)-1]), nil
}

// Download fetches url according to opts and returns the metadata of the
// final file
func (e *YTDLPExtractor) Download(ctx context.Context, url string, opts domain.Options) (*domain.Metadata, error) {
	cmd := e.newCommand(opts).
		Output(opts.OutputTemplate).
		Print(afterMoveTemplate).
		NoSimulate()

	if opts.Format != "" {
		cmd = cmd.Format(opts.Format)
	}
	if opts.MergeOutputFormat != "" {
		cmd = cmd.MergeOutputFormat(opts.MergeOutputFormat)
	}
	for _, pp := range opts.PostProcessors {
		if pp.Key == domain.PostProcessorExtractAudio {
			cmd = cmd.ExtractAudio().AudioFormat(pp.Codec).AudioQuality(pp.Quality)
		}
	}

	if opts.Progress != nil {
		sink := opts.Progress
		cmd = cmd.Progress().Newline().ProgressFunc(e.config.ProgressInterval, func(update ytdlp.ProgressUpdate) {
			if event, ok := toProgressEvent(update); ok {
				sink(event)
			}
		})
	}

	result, err := e.run(ctx, cmd, url)
	if err != nil {
		return nil, err
	}

	meta, err := findMarkedInfo(result.Stdout)
	if err != nil {
		return nil, err
	}
	return meta, nil
}

func (e *YTDLPExtractor) newCommand(opts domain.Options) *ytdlp.Command {
	cmd := ytdlp.New()

	if e.config.Binary != "" {
		cmd = cmd.SetExecutable(e.config.Binary)
	}
	if opts.NoPlaylist {
		cmd = cmd.NoPlaylist()
	}
	if opts.Quiet {
		cmd = cmd.Quiet()
	}
	if opts.NoWarnings {
		cmd = cmd.NoWarnings()
	}
	if opts.NoCheckCertificates {
		cmd = cmd.NoCheckCertificates()
	}
	if opts.SkipDownload {
		cmd = cmd.SkipDownload()
	}
	if e.config.FFmpegLocation != "" {
		cmd = cmd.FFmpegLocation(e.config.FFmpegLocation)
	}
	if e.config.CookieFile != "" {
		if fileExists(e.config.CookieFile) {
			cmd = cmd.Cookies(e.config.CookieFile)
		} else {
			e.logger.Warn("Cookie file not found, continuing without it",
				zap.String("cookie_file", e.config.CookieFile))
		}
	}
	if e.config.Proxy != "" {
		cmd = cmd.Proxy(e.config.Proxy)
	}

	return cmd
}

func (e *YTDLPExtractor) run(ctx context.Context, cmd *ytdlp.Command, url string) (*ytdlp.Result, error) {
	result, err := cmd.Run(ctx, url)
	if result != nil {
		e.logger.Debug("yt-dlp finished",
			zap.String("command", CommandLine(result.Executable, result.Args...)),
			zap.Int("exit_code", result.ExitCode))
	}
	if err != nil {
		if result != nil {
			if msg := lastErrorLine(result.Stderr); msg != "" {
				return nil, fmt.Errorf("yt-dlp failed: %s: %w", msg, err)
			}
		}
		return nil, fmt.Errorf("yt-dlp failed: %w", err)
	}
	return result, nil
}

// toProgressEvent converts a yt-dlp progress update. Only downloading and
// finished updates are reported.
func toProgressEvent(update ytdlp.ProgressUpdate) (domain.ProgressEvent, bool) {
	switch string(update.Status) {
	case string(domain.ProgressDownloading):
		return domain.ProgressEvent{
			Status:     domain.ProgressDownloading,
			Downloaded: int64(update.DownloadedBytes),
			Total:      int64(update.TotalBytes),
		}, true
	case string(domain.ProgressFinished):
		return domain.ProgressEvent{
			Status:     domain.ProgressFinished,
			Downloaded: int64(update.DownloadedBytes),
			Total:      int64(update.TotalBytes),
		}, true
	default:
		return domain.ProgressEvent{}, false
	}
}

// metadataFromInfo copies the fields this tool reads out of go-ytdlp's
// parsed info dict
func metadataFromInfo(info *ytdlp.ExtractedInfo) *domain.Metadata {
	meta := &domain.Metadata{
		ID:        info.ID,
		Uploader:  info.Uploader,
		Duration:  info.Duration,
		Thumbnail: info.Thumbnail,
	}
	if info.Title != nil {
		meta.Title = *info.Title
	}
	if info.Filename != nil {
		meta.Filename = *info.Filename
	}
	return meta
}

// decodeMetadata parses the info JSON behind an after_move marker. go-ytdlp
// only parses --print-json output, so marked lines are decoded here.
func decodeMetadata(line string) (*domain.Metadata, error) {
	var meta domain.Metadata
	if err := json.Unmarshal([]byte(line), &meta); err != nil {
		return nil, fmt.Errorf("failed to decode yt-dlp metadata: %w", err)
	}
	return &meta, nil
}

// findMarkedInfo decodes the last after_move info line in stdout
func findMarkedInfo(stdout string) (*domain.Metadata, error) {
	var marked string
	scanner := newLineScanner(stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, infoMarker) {
			marked = strings.TrimPrefix(line, infoMarker)
		}
	}
	if marked == "" {
		return nil, errors.New("yt-dlp did not report a downloaded file")
	}
	return decodeMetadata(marked)
}

// lastErrorLine returns yt-dlp's last "ERROR:" line, or the last non-empty line
func lastErrorLine(stderr string) string {
	var lastError, lastLine string
	scanner := newLineScanner(stderr)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lastLine = line
		if strings.HasPrefix(line, "ERROR:") {
			lastError = line
		}
	}
	if lastError != "" {
		return lastError
	}
	return lastLine
}

func newLineScanner(s string) *bufio.Scanner {
	scanner := bufio.NewScanner(strings.NewReader(s))
	// info dicts with full format lists routinely exceed the default 64KB
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	return scanner
}
