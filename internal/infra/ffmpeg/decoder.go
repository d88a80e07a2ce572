// Package ffmpeg decodes single frames by running the ffmpeg and ffprobe
// binaries found on PATH.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/qwp-look/frame-extractor/internal/domain/entity"
	"github.com/qwp-look/frame-extractor/internal/domain/port"
	ffmpeggo "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
)

const probeTimeout = 30 * time.Second

type Opener struct {
	logger *zap.Logger
}

// NewOpener also turns off ffmpeg-go's per-command stdlib logging, which is a
// package global.
func NewOpener(logger *zap.Logger) *Opener {
	ffmpeggo.LogCompiledCommand = false
	return &Opener{logger: logger}
}

func (o *Opener) Open(ctx context.Context, path string) (port.VideoSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := ffmpeggo.ProbeWithTimeout(path, probeTimeout, nil)
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}
	info, err := parseProbe([]byte(out))
	if err != nil {
		return nil, err
	}
	if info.FPS <= 0 {
		return nil, fmt.Errorf("ffprobe reported no frame rate for %s", path)
	}

	o.logger.Debug("video probed",
		zap.String("video", path),
		zap.Int("total_frames", info.TotalFrames),
		zap.Float64("fps", info.FPS),
	)
	return &Source{path: path, info: info, ffmpegPath: "ffmpeg"}, nil
}

// Source decodes every frame with its own ffmpeg run, seeking by timestamp.
// Each run is killed when the caller's context ends.
type Source struct {
	path       string
	info       entity.VideoInfo
	ffmpegPath string
}

func (s *Source) Info() entity.VideoInfo { return s.info }

// FrameAt seeks half a frame before frame n so the first frame ffmpeg emits
// is frame n itself, whatever the rounding of its timestamp.
func (s *Source) FrameAt(ctx context.Context, n int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n < 0 || n >= s.info.TotalFrames {
		return nil, fmt.Errorf("frame %d out of range [0, %d)", n, s.info.TotalFrames)
	}

	stdout := bytes.NewBuffer(nil)
	stderr := bytes.NewBuffer(nil)
	err := s.frameCommand(ctx, n).WithOutput(stdout, stderr).Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("ffmpeg frame %d: %w", n, ctxErr)
	}
	if err != nil {
		return nil, fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no frame at index %d", n)
	}

	img, err := imaging.Decode(stdout)
	if err != nil {
		return nil, fmt.Errorf("decode ffmpeg output: %w", err)
	}
	return img, nil
}

func (s *Source) Close() error { return nil }

func (s *Source) frameCommand(ctx context.Context, n int) *ffmpeggo.Stream {
	input := ffmpeggo.Input(s.path, ffmpeggo.KwArgs{"ss": seekOffset(n, s.info.FPS)})
	return ffmpeggo.OutputContext(ctx, []*ffmpeggo.Stream{input}, "pipe:",
		ffmpeggo.KwArgs{"vframes": 1, "format": "image2", "vcodec": "png"}).
		SetFfmpegPath(s.ffmpegPath)
}

func seekOffset(n int, fps float64) string {
	t := (float64(n) - 0.5) / fps
	if t < 0 {
		t = 0
	}
	return fmt.Sprintf("%.6f", t)
}
