// Package vidio decodes frames with github.com/AlexEidt/Vidio, which drives
// an ffmpeg process over a pipe.
//
// Vidio registers a SIGINT/SIGTERM handler that calls os.Exit for every
// ffmpeg process it starts, so contexts are only honored between frames.
package vidio

import (
	"context"
	"fmt"
	"image"
	"math"

	vidio "github.com/AlexEidt/Vidio"
	"github.com/qwp-look/frame-extractor/internal/domain/entity"
	"github.com/qwp-look/frame-extractor/internal/domain/port"
	"go.uber.org/zap"
)

// frameReader is the part of *vidio.Video a Source uses.
type frameReader interface {
	SetFrameBuffer(buffer []byte) error
	ReadFrame(n int) error
	Read() bool
	Close()
}

type Opener struct {
	logger *zap.Logger
}

func NewOpener(logger *zap.Logger) *Opener {
	return &Opener{logger: logger}
}

func (o *Opener) Open(ctx context.Context, path string) (port.VideoSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	video, err := vidio.NewVideo(path)
	if err != nil {
		return nil, err
	}

	info := entity.VideoInfo{
		TotalFrames: video.Frames(),
		FPS:         video.FPS(),
		Width:       video.Width(),
		Height:      video.Height(),
	}
	src := newSource(video, info, video.Duration())

	o.logger.Debug("video opened",
		zap.String("video", path),
		zap.String("codec", video.Codec()),
		zap.Int("total_frames", src.info.TotalFrames),
		zap.Float64("fps", info.FPS),
		zap.Bool("sequential", src.sequential),
	)
	return src, nil
}

// newSource seeks by index when the container reports a frame count. Without
// one Vidio refuses every ReadFrame, so the stream is read front to back and
// the frame count is estimated from the duration.
func newSource(video frameReader, info entity.VideoInfo, duration float64) *Source {
	src := &Source{video: video, info: info, pos: -1}
	if info.TotalFrames == 0 {
		src.sequential = true
		if duration > 0 && info.FPS > 0 {
			src.info.TotalFrames = int(math.Floor(duration * info.FPS))
		}
	}
	return src
}

type Source struct {
	video      frameReader
	info       entity.VideoInfo
	sequential bool
	pos        int
}

func (s *Source) Info() entity.VideoInfo { return s.info }

// FrameAt decodes frame n into a fresh RGBA image, so returned frames are
// never overwritten by later reads.
func (s *Source) FrameAt(ctx context.Context, n int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, s.info.Width, s.info.Height))
	if err := s.video.SetFrameBuffer(img.Pix); err != nil {
		return nil, fmt.Errorf("set frame buffer: %w", err)
	}
	if !s.sequential {
		if err := s.video.ReadFrame(n); err != nil {
			return nil, err
		}
		return img, nil
	}

	if n <= s.pos {
		return nil, fmt.Errorf("frame %d already passed, stream is at frame %d", n, s.pos)
	}
	for s.pos < n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !s.video.Read() {
			return nil, fmt.Errorf("stream ended at frame %d before frame %d", s.pos+1, n)
		}
		s.pos++
	}
	return img, nil
}

func (s *Source) Close() error {
	s.video.Close()
	return nil
}
