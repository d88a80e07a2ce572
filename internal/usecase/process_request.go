package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/qwp-look/frame-extractor/internal/domain/entity"
	"github.com/qwp-look/frame-extractor/internal/domain/port"
	"github.com/qwp-look/frame-extractor/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ExtractorFactory builds an extractor writing frames with the given
// extension. It fails for unsupported extensions.
type ExtractorFactory func(frameExt string) (FrameExtractor, error)

// RetryableError reports a transient failure of one job attempt. The
// delivery is requeued and the consumer backs off by Attempt.
type RetryableError struct {
	Attempt     int
	MaxAttempts int
	Reason      string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable failure (attempt %d/%d): %s", e.Attempt, e.MaxAttempts, e.Reason)
}

func (e *RetryableError) RetryAttempt() int { return e.Attempt }

// ProcessRequestUseCase handles one queued extraction request: download the
// video, extract frames, zip them and upload the archive.
type ProcessRequestUseCase struct {
	repo         port.JobRepository
	storage      port.VideoStorage
	newExtractor ExtractorFactory
	zipper       port.Zipper
	publisher    port.StatusPublisher
	dlq          port.DLQPublisher
	notifier     port.FailureNotifier
	logger       *zap.Logger
	tempDir      string
	frameExt     string
	maxRetry     int
}

type ProcessRequestConfig struct {
	TempDir         string
	DefaultFrameExt string
	MaxRetries      int
}

func NewProcessRequestUseCase(
	repo port.JobRepository,
	storage port.VideoStorage,
	newExtractor ExtractorFactory,
	zipper port.Zipper,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg ProcessRequestConfig,
) *ProcessRequestUseCase {
	return &ProcessRequestUseCase{
		repo:         repo,
		storage:      storage,
		newExtractor: newExtractor,
		zipper:       zipper,
		publisher:    publisher,
		dlq:          dlq,
		notifier:     notifier,
		logger:       logger,
		tempDir:      cfg.TempDir,
		frameExt:     cfg.DefaultFrameExt,
		maxRetry:     cfg.MaxRetries,
	}
}

// Execute returns an error only for failures worth requeueing. Invalid
// requests and extraction failures are dead-lettered and acknowledged.
func (uc *ProcessRequestUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "ProcessRequestUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	var msg entity.ExtractionRequestMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal message", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		metrics.JobsProcessedTotal.WithLabelValues("dlq").Inc()
		return nil
	}
	if msg.VideoKey == "" {
		uc.logger.Error("message without video key", zap.String("job_id", msg.JobID.String()))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "invalid_message: missing video_key")
		metrics.JobsProcessedTotal.WithLabelValues("dlq").Inc()
		return nil
	}

	if msg.JobID == uuid.Nil {
		uc.logger.Error("message without job id", zap.String("video_key", msg.VideoKey))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "invalid_message: missing job_id")
		metrics.JobsProcessedTotal.WithLabelValues("dlq").Inc()
		return nil
	}

	span.SetAttributes(
		attribute.String("job.id", msg.JobID.String()),
		attribute.String("job.video_key", msg.VideoKey),
		attribute.Int("job.sample_count", msg.SampleCount),
	)

	log := uc.logger.With(zap.String("job_id", msg.JobID.String()), zap.String("video_key", msg.VideoKey))

	job, err := uc.repo.FindByID(ctx, msg.JobID)
	if err != nil {
		job = entity.NewJob(msg.UserID, msg.VideoKey, msg.SampleCount, uc.maxRetry)
		job.ID = msg.JobID
		if err := uc.repo.Create(ctx, job); err != nil {
			log.Error("failed to create job record", zap.Error(err))
			return fmt.Errorf("create job: %w", err)
		}
	}

	if !job.CanRetry() {
		log.Warn("job exhausted retries, sending to DLQ")
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, "max retries exceeded")
	}

	job.MarkProcessing()
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to PROCESSING", zap.Error(err))
		return fmt.Errorf("update job: %w", err)
	}

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	if err := uc.runPipeline(ctx, job, msg, rawMsg, log); err != nil {
		return err
	}

	metrics.ExtractionDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())
	return nil
}

func (uc *ProcessRequestUseCase) runPipeline(
	ctx context.Context,
	job *entity.Job,
	msg entity.ExtractionRequestMessage,
	rawMsg []byte,
	log *zap.Logger,
) error {
	tracer := otel.Tracer("usecase")

	frameExt := msg.FrameExt
	if frameExt == "" {
		frameExt = uc.frameExt
	}
	extractor, err := uc.newExtractor(frameExt)
	if err != nil {
		log.Error("invalid extraction request", zap.Error(err))
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, "invalid_request: "+err.Error())
	}

	workDir := filepath.Join(uc.tempDir, job.ID.String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Download keeps the object's base name so the extension check still applies.
	dlStart := time.Now()
	ctx2, spanDl := tracer.Start(ctx, "download_video")
	videoPath := filepath.Join(workDir, path.Base(msg.VideoKey))
	if err := uc.storage.DownloadVideo(ctx2, msg.VideoKey, videoPath); err != nil {
		spanDl.End()
		log.Error("failed to download video", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "download_video: "+err.Error(), log)
	}
	spanDl.End()
	metrics.ExtractionDuration.WithLabelValues("download").Observe(time.Since(dlStart).Seconds())

	result, err := extractor.Execute(ctx, entity.ExtractionRequest{
		VideoPath:   videoPath,
		OutputRoot:  workDir,
		SampleCount: msg.SampleCount,
	})
	if err != nil {
		log.Error("frame extraction failed", zap.Error(err))
		if errors.Is(err, context.Canceled) {
			return err
		}
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, "extract_frames: "+err.Error())
	}

	zipStart := time.Now()
	ctx3, spanZip := tracer.Start(ctx, "create_zip")
	zipPath := filepath.Join(workDir, "frames.zip")
	if err := uc.zipper.CreateZip(ctx3, result.FramePaths, zipPath); err != nil {
		spanZip.End()
		log.Error("zip creation failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "create_zip: "+err.Error(), log)
	}
	spanZip.End()
	metrics.ExtractionDuration.WithLabelValues("zip").Observe(time.Since(zipStart).Seconds())

	upStart := time.Now()
	ctx4, spanUp := tracer.Start(ctx, "upload_archive")
	archiveKey := fmt.Sprintf("%s/frames_%s.zip", msg.UserID, job.ID.String())
	zipFile, err := os.Open(zipPath)
	if err != nil {
		spanUp.End()
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "open_zip: "+err.Error(), log)
	}
	zipStat, err := zipFile.Stat()
	if err != nil {
		zipFile.Close()
		spanUp.End()
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "stat_zip: "+err.Error(), log)
	}
	if err := uc.storage.UploadArchive(ctx4, archiveKey, zipFile, zipStat.Size()); err != nil {
		zipFile.Close()
		spanUp.End()
		log.Error("archive upload failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "upload_archive: "+err.Error(), log)
	}
	zipFile.Close()
	spanUp.End()
	metrics.ExtractionDuration.WithLabelValues("upload").Observe(time.Since(upStart).Seconds())

	job.MarkCompleted(archiveKey, result)
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to COMPLETED", zap.Error(err))
		return fmt.Errorf("update job completed: %w", err)
	}

	uc.publishStatus(ctx, job, log)
	metrics.JobsProcessedTotal.WithLabelValues("completed").Inc()

	log.Info("job completed successfully",
		zap.Int("frame_count", job.FrameCount),
		zap.Int("total_frames", job.TotalFrames),
		zap.String("archive_key", archiveKey),
	)
	return nil
}

func (uc *ProcessRequestUseCase) handleRetryableFailure(
	ctx context.Context,
	job *entity.Job,
	msg entity.ExtractionRequestMessage,
	rawMsg []byte,
	errMsg string,
	log *zap.Logger,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	if !job.CanRetry() {
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, errMsg)
	}

	metrics.RetryTotal.WithLabelValues(strconv.Itoa(job.Attempt)).Inc()
	uc.publishStatus(ctx, job, log)

	return &RetryableError{Attempt: job.Attempt, MaxAttempts: job.MaxAttempts, Reason: errMsg}
}

func (uc *ProcessRequestUseCase) handlePermanentFailure(
	ctx context.Context,
	job *entity.Job,
	msg entity.ExtractionRequestMessage,
	rawMsg []byte,
	errMsg string,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	_ = uc.dlq.PublishToDLQ(ctx, rawMsg, errMsg)

	uc.publishStatus(ctx, job, uc.logger)

	metrics.JobsProcessedTotal.WithLabelValues("dlq").Inc()

	if msg.UserEmail != "" {
		_ = uc.notifier.NotifyFailure(ctx, msg.UserEmail, job)
	}

	return nil
}

func (uc *ProcessRequestUseCase) publishStatus(ctx context.Context, job *entity.Job, log *zap.Logger) {
	if err := uc.publisher.PublishStatus(ctx, entity.NewStatusMessage(job)); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}
