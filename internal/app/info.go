package app

import (
	"context"
	"fmt"
	"io"

	"github.com/yourusername/ytshim/internal/domain"
	"go.uber.org/zap"
)

// InfoHandler looks up metadata for a single video
type InfoHandler struct {
	extractor domain.Extractor
	config    *domain.YTDLPConfig
	out       io.Writer
	logger    *zap.Logger
}

// NewInfoHandler creates a new info handler
func NewInfoHandler(extractor domain.Extractor, config *domain.YTDLPConfig, out io.Writer, logger *zap.Logger) *InfoHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InfoHandler{
		extractor: extractor,
		config:    config,
		out:       out,
		logger:    logger,
	}
}

// Options returns the extractor options for a metadata-only lookup
func (h *InfoHandler) Options() domain.Options {
	return domain.Options{
		NoPlaylist:          true,
		Quiet:               true,
		NoWarnings:          true,
		NoCheckCertificates: h.config.NoCheckCertificates,
		SkipDownload:        true,
	}
}

// Run extracts metadata for url and writes it as one JSON line
func (h *InfoHandler) Run(ctx context.Context, url string) error {
	h.logger.Debug("Extracting info", zap.String("url", url))

	meta, err := h.extractor.Extract(ctx, url, h.Options())
	if err != nil {
		return fmt.Errorf("failed to extract info: %w", err)
	}
	if meta == nil {
		return fmt.Errorf("failed to extract info: no metadata returned for %s", url)
	}

	record := domain.NewInfoRecord(meta)
	if err := WriteJSONLine(h.out, record); err != nil {
		return err
	}

	h.logger.Info("Info extracted",
		zap.String("id", record.ID),
		zap.Int64("duration", record.Duration))
	return nil
}
