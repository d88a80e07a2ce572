// Command frame-extractor samples a fixed number of frames evenly across a
// video and writes them as numbered images for flip-book printing.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/qwp-look/frame-extractor/internal/domain/entity"
	"github.com/qwp-look/frame-extractor/internal/domain/port"
	"github.com/qwp-look/frame-extractor/internal/domain/sampling"
	"github.com/qwp-look/frame-extractor/internal/infra/archive"
	"github.com/qwp-look/frame-extractor/internal/infra/config"
	"github.com/qwp-look/frame-extractor/internal/infra/decoder"
	"github.com/qwp-look/frame-extractor/internal/infra/imagecodec"
	"github.com/qwp-look/frame-extractor/internal/infra/metrics"
	"github.com/qwp-look/frame-extractor/internal/infra/progress"
	"github.com/qwp-look/frame-extractor/internal/infra/tracing"
	"github.com/qwp-look/frame-extractor/internal/usecase"
	"github.com/qwp-look/frame-extractor/pkg/logger"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

var errUsage = errors.New("invalid arguments")

type options struct {
	video       string
	outputRoot  string
	frames      int
	frameExt    string
	decoder     string
	zip         bool
	metricsFile string
	quiet       bool
}

func parseArgs(args []string, cfg *config.Config, stderr io.Writer) (options, error) {
	var opts options

	fs := pflag.NewFlagSet("frame-extractor", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.video, "video", "v", "", "video file to sample (.avi or .mp4)")
	fs.StringVarP(&opts.outputRoot, "output-root", "o", cfg.OutputRoot, "root directory for the extracted frames")
	fs.IntVarP(&opts.frames, "frame", "f", entity.ExtractAll, "number of frames to extract, -1 extracts every frame")
	fs.StringVarP(&opts.frameExt, "frame-ext", "e", cfg.FrameExt, "frame file format (.jpg or .png)")
	fs.StringVar(&opts.decoder, "decoder", cfg.Decoder, "video decoder (ffmpeg or vidio)")
	fs.BoolVar(&opts.zip, "zip", false, "also bundle the frames into frames.zip")
	fs.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile when done")
	fs.BoolVarP(&opts.quiet, "quiet", "q", false, "hide the progress bar")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return opts, err
		}
		return opts, fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("%w: unexpected argument %q", errUsage, fs.Arg(0))
	}
	if opts.video == "" {
		return opts, fmt.Errorf("--video: %w", entity.ErrMissingVideoArg)
	}
	if err := sampling.ValidateSampleCount(opts.frames); err != nil {
		return opts, fmt.Errorf("--frame: %w", err)
	}
	if opts.decoder != config.DecoderVidio && opts.decoder != config.DecoderFFmpeg {
		return opts, fmt.Errorf("%w: --decoder must be %s or %s, got %q", errUsage, config.DecoderVidio, config.DecoderFFmpeg, opts.decoder)
	}
	return opts, nil
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage), entity.IsConfigError(err):
		return exitUsage
	default:
		return exitFailed
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "frame-extractor: load config: %v\n", err)
		return exitUsage
	}

	opts, err := parseArgs(args, cfg, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "frame-extractor: %v\n", err)
		return exitCode(err)
	}

	log, err := logger.NewWithFormat(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(stderr, "frame-extractor: init logger: %v\n", err)
		return exitUsage
	}
	defer log.Sync()

	if cfg.OTELEndpoint != "" {
		tp, err := tracing.InitTracer(ctx, cfg.OTELEndpoint, "frame-extractor")
		if err != nil {
			log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
		} else {
			defer tp.Shutdown(context.Background())
		}
	}

	if opts.metricsFile != "" {
		defer func() {
			if err := metrics.WriteTextfile(opts.metricsFile); err != nil {
				log.Warn("metrics textfile not written", zap.Error(err))
			}
		}()
	}

	err = extract(ctx, opts, cfg, stderr, log)
	if err != nil {
		log.Error("extraction failed", zap.String("video", opts.video), zap.Error(err))
	}
	return exitCode(err)
}

func extract(ctx context.Context, opts options, cfg *config.Config, stderr io.Writer, log *zap.Logger) error {
	var bar port.ProgressReporter
	if !opts.quiet {
		bar = progress.NewBar(stderr, "Extracting frames")
	}

	uc, err := usecase.NewExtractFramesUseCase(
		decoder.NewOpener(opts.decoder, log),
		imagecodec.NewEncoder(cfg.JPEGQuality),
		bar,
		log,
		usecase.ExtractFramesConfig{
			FrameExt: opts.frameExt,
			Formats:  config.DefaultFormats(),
		},
	)
	if err != nil {
		return fmt.Errorf("--frame-ext: %w", err)
	}

	result, err := uc.Execute(ctx, entity.ExtractionRequest{
		VideoPath:   opts.video,
		OutputRoot:  opts.outputRoot,
		SampleCount: opts.frames,
	})
	if err != nil {
		return err
	}

	if opts.zip {
		zipPath := filepath.Join(result.OutputDir, "frames.zip")
		if err := archive.NewZipCreator("frames").CreateZip(ctx, result.FramePaths, zipPath); err != nil {
			return fmt.Errorf("create zip: %w", err)
		}
		log.Info("frames archived", zap.String("zip", zipPath))
	}

	log.Info("done",
		zap.Int("frames", result.FrameCount()),
		zap.Int("total_frames", result.Video.TotalFrames),
		zap.Duration("video_duration", result.Video.Duration()),
		zap.String("frames_dir", result.FramesDir),
	)
	return nil
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	code := run(ctx, os.Args[1:], os.Stderr)
	cancel()
	os.Exit(code)
}
