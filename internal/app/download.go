package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/yourusername/ytshim/internal/domain"
	"go.uber.org/zap"
)

// DownloadRequest holds the arguments of one download invocation
type DownloadRequest struct {
	URL       string
	OutputDir string
	Quality   domain.Quality
	Format    domain.OutputFormat
}

// DownloadHandler downloads a single video and reports progress on the line protocol
type DownloadHandler struct {
	extractor domain.Extractor
	repo      domain.DownloadRepository // optional journal
	tagger    domain.AudioTagger        // optional, audio-only downloads
	config    *domain.YTDLPConfig
	out       io.Writer
	logger    *zap.Logger
}

// NewDownloadHandler creates a new download handler. repo and tagger may be nil.
func NewDownloadHandler(
	extractor domain.Extractor,
	repo domain.DownloadRepository,
	tagger domain.AudioTagger,
	config *domain.YTDLPConfig,
	out io.Writer,
	logger *zap.Logger,
) *DownloadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DownloadHandler{
		extractor: extractor,
		repo:      repo,
		tagger:    tagger,
		config:    config,
		out:       out,
		logger:    logger,
	}
}

// Options returns the extractor options for req, reporting progress to sink
func (h *DownloadHandler) Options(req DownloadRequest, sink domain.ProgressFunc) domain.Options {
	opts := domain.Options{
		NoPlaylist:          true,
		Quiet:               true,
		NoWarnings:          true,
		NoCheckCertificates: h.config.NoCheckCertificates,
		OutputTemplate:      filepath.Join(req.OutputDir, domain.OutputTemplate),
		Format:              domain.FormatSelector(req.Quality, req.Format),
		MergeOutputFormat:   domain.MergeFormat(req.Format),
		Progress:            sink,
	}

	if req.Format.IsAudioOnly() {
		opts.PostProcessors = []domain.PostProcessor{{
			Key:     domain.PostProcessorExtractAudio,
			Codec:   domain.AudioCodec,
			Quality: domain.AudioBitrate,
		}}
	}

	return opts
}

// Run performs the download and writes PROGRESS, FINISHED and FILEPATH lines
func (h *DownloadHandler) Run(ctx context.Context, req DownloadRequest) (*domain.DownloadResult, error) {
	log := h.logger.With(zap.String("url", req.URL))
	record := h.startRecord(req)

	result, err := h.download(ctx, req, log)
	if err != nil {
		h.finishRecord(record, func(d *domain.Download) { d.MarkFailed(err) })
		log.Error("Download failed", zap.Error(err))
		return nil, err
	}

	h.finishRecord(record, func(d *domain.Download) { d.MarkCompleted(result.FilePath) })
	log.Info("Download completed", zap.String("file", result.FilePath))
	return result, nil
}

func (h *DownloadHandler) download(ctx context.Context, req DownloadRequest, log *zap.Logger) (*domain.DownloadResult, error) {
	writer := NewProtocolWriter(h.out)
	opts := h.Options(req, writer.Progress)

	log.Debug("Starting download",
		zap.String("format", opts.Format),
		zap.String("merge_output_format", opts.MergeOutputFormat),
		zap.String("output_template", opts.OutputTemplate))

	meta, err := h.extractor.Download(ctx, req.URL, opts)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	if meta == nil {
		return nil, errors.New("download failed: no metadata returned")
	}
	if err := writer.Err(); err != nil {
		return nil, err
	}

	path := ResolveFilePath(req, meta)

	if req.Format.IsAudioOnly() && h.tagger != nil {
		if err := h.tagger.Tag(path, meta); err != nil {
			log.Warn("Failed to tag audio file", zap.String("file", path), zap.Error(err))
		}
	}

	if err := writer.FilePath(path); err != nil {
		return nil, err
	}

	return &domain.DownloadResult{FilePath: path}, nil
}

// ResolveFilePath picks the final file path for a finished download: the
// extractor's final path, then its pre-processing filename, then the output
// template rendered locally.
func ResolveFilePath(req DownloadRequest, meta *domain.Metadata) string {
	if meta.Filepath != "" {
		return meta.Filepath
	}
	if meta.Filename != "" {
		if req.Format.IsAudioOnly() {
			return strings.TrimSuffix(meta.Filename, filepath.Ext(meta.Filename)) + "." + domain.AudioCodec
		}
		return meta.Filename
	}
	return domain.PrepareFilename(req.OutputDir, meta, domain.FinalExtension(req.Format, meta.Ext))
}

func (h *DownloadHandler) startRecord(req DownloadRequest) *domain.Download {
	if h.repo == nil {
		return nil
	}
	record := domain.NewDownload(req.URL, req.OutputDir, req.Quality, req.Format)
	if err := h.repo.Create(record); err != nil {
		h.logger.Warn("Failed to record download", zap.Error(err))
		return nil
	}
	return record
}

func (h *DownloadHandler) finishRecord(record *domain.Download, mark func(*domain.Download)) {
	if record == nil {
		return
	}
	mark(record)
	if err := h.repo.Update(record); err != nil {
		h.logger.Warn("Failed to update download record",
			zap.String("id", record.ID),
			zap.Error(err))
	}
}
