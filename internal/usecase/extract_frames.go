package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/qwp-look/frame-extractor/internal/domain/entity"
	"github.com/qwp-look/frame-extractor/internal/domain/port"
	"github.com/qwp-look/frame-extractor/internal/domain/sampling"
	"github.com/qwp-look/frame-extractor/internal/infra/config"
	"github.com/qwp-look/frame-extractor/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// FrameExtractor runs one extraction request.
type FrameExtractor interface {
	Execute(ctx context.Context, req entity.ExtractionRequest) (*entity.ExtractionResult, error)
}

type ExtractFramesUseCase struct {
	opener   port.VideoOpener
	encoder  port.FrameEncoder
	progress port.ProgressReporter
	logger   *zap.Logger
	formats  config.Formats
	frameExt string
}

type ExtractFramesConfig struct {
	FrameExt string
	Formats  config.Formats
}

// NewExtractFramesUseCase fails with entity.ErrUnsupportedFrameExt when the
// frame extension is not in cfg.Formats. progress may be nil.
func NewExtractFramesUseCase(
	opener port.VideoOpener,
	encoder port.FrameEncoder,
	progress port.ProgressReporter,
	logger *zap.Logger,
	cfg ExtractFramesConfig,
) (*ExtractFramesUseCase, error) {
	if err := cfg.Formats.CheckFrame(cfg.FrameExt); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = noProgress{}
	}
	return &ExtractFramesUseCase{
		opener:   opener,
		encoder:  encoder,
		progress: progress,
		logger:   logger,
		formats:  cfg.Formats,
		frameExt: cfg.FrameExt,
	}, nil
}

func (uc *ExtractFramesUseCase) Execute(ctx context.Context, req entity.ExtractionRequest) (*entity.ExtractionResult, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "ExtractFramesUseCase.Execute")
	defer span.End()

	start := time.Now()
	span.SetAttributes(
		attribute.String("video.path", req.VideoPath),
		attribute.Int("frames.requested", req.SampleCount),
	)

	if err := uc.validate(req); err != nil {
		metrics.ExtractionsTotal.WithLabelValues("rejected").Inc()
		span.RecordError(err)
		return nil, err
	}

	video, err := uc.opener.Open(ctx, req.VideoPath)
	if err != nil {
		metrics.ExtractionsTotal.WithLabelValues("failed").Inc()
		span.RecordError(err)
		return nil, fmt.Errorf("%w %s: %w", entity.ErrOpenVideo, req.VideoPath, err)
	}
	defer video.Close()

	result, err := uc.extract(ctx, video, req)
	if err != nil {
		metrics.ExtractionsTotal.WithLabelValues("failed").Inc()
		span.RecordError(err)
		return nil, err
	}

	metrics.ExtractionsTotal.WithLabelValues("completed").Inc()
	metrics.ExtractionDuration.WithLabelValues("extract").Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("frames.written", result.FrameCount()))
	return result, nil
}

// validate runs every check that must pass before anything touches the disk.
func (uc *ExtractFramesUseCase) validate(req entity.ExtractionRequest) error {
	if req.VideoPath == "" {
		return entity.ErrMissingVideoArg
	}
	if err := sampling.ValidateSampleCount(req.SampleCount); err != nil {
		return err
	}
	if err := uc.formats.CheckVideo(req.VideoPath); err != nil {
		return err
	}

	info, err := os.Stat(req.VideoPath)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", entity.ErrVideoNotFound, req.VideoPath)
	}
	if err != nil {
		return fmt.Errorf("stat video: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", entity.ErrVideoNotFound, req.VideoPath)
	}
	return nil
}

func (uc *ExtractFramesUseCase) extract(ctx context.Context, video port.VideoSource, req entity.ExtractionRequest) (*entity.ExtractionResult, error) {
	info := video.Info()
	plan, err := sampling.NewPlan(info.TotalFrames, req.SampleCount)
	if err != nil {
		return nil, err
	}

	outputDir := OutputDir(req.OutputRoot, req.VideoPath)
	framesDir := filepath.Join(outputDir, framesDirName)
	if err := os.MkdirAll(framesDir, 0755); err != nil {
		return nil, fmt.Errorf("create frames dir: %w", err)
	}

	log := uc.logger.With(zap.String("video", req.VideoPath))
	log.Info("extracting frames",
		zap.Int("total_frames", info.TotalFrames),
		zap.Int("samples", plan.Len()),
		zap.Float64("fps", info.FPS),
		zap.Int("width", info.Width),
		zap.Int("height", info.Height),
		zap.String("frames_dir", framesDir),
	)

	result := &entity.ExtractionResult{
		OutputDir:     outputDir,
		FramesDir:     framesDir,
		FramePaths:    make([]string, 0, plan.Len()),
		SourceIndices: make([]int, 0, plan.Len()),
		Video:         info,
	}

	uc.progress.Start(info.TotalFrames)
	defer uc.progress.Finish()

	reached := 0
	for out, src := range plan.All() {
		if err := ctx.Err(); err != nil {
			log.Warn("extraction cancelled", zap.Int("frames_written", out))
			return nil, fmt.Errorf("extraction cancelled after %d frames: %w", out, err)
		}

		path := filepath.Join(framesDir, FrameFileName(out, uc.frameExt))
		if err := uc.writeFrame(ctx, video, src, path); err != nil {
			log.Error("frame extraction failed",
				zap.Int("frame_index", src),
				zap.Int("frames_written", out),
				zap.Error(err),
			)
			return nil, err
		}
		metrics.FramesExtractedTotal.Inc()

		result.FramePaths = append(result.FramePaths, path)
		result.SourceIndices = append(result.SourceIndices, src)

		uc.progress.Advance(src + 1 - reached)
		reached = src + 1
	}

	log.Info("frames extracted",
		zap.Int("count", result.FrameCount()),
		zap.String("output_dir", outputDir),
	)
	return result, nil
}

func (uc *ExtractFramesUseCase) writeFrame(ctx context.Context, video port.VideoSource, index int, path string) error {
	img, err := video.FrameAt(ctx, index)
	if err != nil {
		metrics.DecodeErrorsTotal.Inc()
		return fmt.Errorf("%w %d: %w", entity.ErrDecode, index, err)
	}
	if img == nil {
		metrics.DecodeErrorsTotal.Inc()
		return fmt.Errorf("%w %d: decoder returned no image", entity.ErrDecode, index)
	}
	if err := uc.encoder.Encode(img, path); err != nil {
		return fmt.Errorf("%w %s: %w", entity.ErrEncode, path, err)
	}
	return nil
}

type noProgress struct{}

func (noProgress) Start(int)   {}
func (noProgress) Advance(int) {}
func (noProgress) Finish()     {}
