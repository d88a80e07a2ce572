package port

import (
	"context"
	"image"

	"github.com/qwp-look/frame-extractor/internal/domain/entity"
)

// VideoSource is an open, exclusively owned decoder handle.
type VideoSource interface {
	Info() entity.VideoInfo
	// FrameAt decodes the frame located at source index n.
	FrameAt(ctx context.Context, n int) (image.Image, error)
	Close() error
}

type VideoOpener interface {
	Open(ctx context.Context, path string) (VideoSource, error)
}

// FrameEncoder persists a decoded frame. The image format follows the
// extension of path.
type FrameEncoder interface {
	Encode(img image.Image, path string) error
}

type ProgressReporter interface {
	Start(total int)
	Advance(n int)
	Finish()
}
