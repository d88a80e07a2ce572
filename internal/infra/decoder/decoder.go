// Package decoder picks the video decoding backend by name.
package decoder

import (
	"github.com/qwp-look/frame-extractor/internal/domain/port"
	"github.com/qwp-look/frame-extractor/internal/infra/config"
	"github.com/qwp-look/frame-extractor/internal/infra/ffmpeg"
	"github.com/qwp-look/frame-extractor/internal/infra/vidio"
	"go.uber.org/zap"
)

// NewOpener returns the ffmpeg-go backend unless Vidio is asked for by name.
// Vidio installs its own SIGINT/SIGTERM handler that exits the process, so
// cancellation and graceful shutdown only work with the ffmpeg backend.
func NewOpener(name string, logger *zap.Logger) port.VideoOpener {
	if name == config.DecoderVidio {
		logger.Warn("vidio decoder exits the process on SIGINT/SIGTERM, graceful shutdown is disabled")
		return vidio.NewOpener(logger)
	}
	return ffmpeg.NewOpener(logger)
}
