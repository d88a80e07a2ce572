package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/qwp-look/frame-extractor/internal/infra/archive"
	"github.com/qwp-look/frame-extractor/internal/infra/config"
	"github.com/qwp-look/frame-extractor/internal/infra/decoder"
	"github.com/qwp-look/frame-extractor/internal/infra/email"
	"github.com/qwp-look/frame-extractor/internal/infra/imagecodec"
	"github.com/qwp-look/frame-extractor/internal/infra/metrics"
	miniostorage "github.com/qwp-look/frame-extractor/internal/infra/minio"
	"github.com/qwp-look/frame-extractor/internal/infra/postgres"
	"github.com/qwp-look/frame-extractor/internal/infra/rabbitmq"
	"github.com/qwp-look/frame-extractor/internal/infra/tracing"
	"github.com/qwp-look/frame-extractor/internal/usecase"
	"github.com/qwp-look/frame-extractor/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.NewWithFormat(cfg.LogLevel, cfg.LogFormat)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting frame-extractor worker", zap.String("decoder", cfg.Decoder))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTELEndpoint != "" {
		tp, err := tracing.InitTracer(ctx, cfg.OTELEndpoint, "frame-extractor-worker")
		if err != nil {
			log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
		} else {
			defer tp.Shutdown(context.Background())
		}
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	fatalOnErr(err, "connect to postgres")
	defer pool.Close()

	if err := postgres.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
		log.Warn("migration warning", zap.Error(err))
	}

	storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
		Endpoint:      cfg.MinIOEndpoint,
		AccessKey:     cfg.MinIOAccessKey,
		SecretKey:     cfg.MinIOSecretKey,
		UseSSL:        cfg.MinIOUseSSL,
		VideoBucket:   cfg.MinIOVideoBucket,
		ArchiveBucket: cfg.MinIOArchiveBucket,
	})
	fatalOnErr(err, "create minio storage")
	fatalOnErr(storage.EnsureBuckets(ctx), "ensure minio buckets")

	rmqConn, err := amqp.Dial(cfg.RabbitMQURL)
	fatalOnErr(err, "connect to rabbitmq for publisher")
	defer rmqConn.Close()

	pub, err := rabbitmq.NewPublisher(rmqConn, cfg.RabbitMQExchange)
	fatalOnErr(err, "create rabbitmq publisher")
	defer pub.Close()

	statusPub := rabbitmq.NewStatusPublisher(pub, cfg.RabbitMQStatusQueue)
	dlqPub := rabbitmq.NewDLQPublisher(pub, cfg.RabbitMQDLQ)

	uc := usecase.NewProcessRequestUseCase(
		postgres.NewJobRepository(pool),
		storage,
		extractorFactory(cfg, log),
		archive.NewZipCreator("frames"),
		statusPub, dlqPub,
		email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, log),
		log,
		usecase.ProcessRequestConfig{
			TempDir:         cfg.TempDir,
			DefaultFrameExt: cfg.FrameExt,
			MaxRetries:      cfg.MaxRetries,
		},
	)

	metricsSrv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, map[string]metrics.Check{
		"postgres": pool.Ping,
		"rabbitmq": func(context.Context) error {
			if rmqConn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		},
	}, log)

	consumer, err := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:         cfg.RabbitMQURL,
		Queue:       cfg.RabbitMQExtractQueue,
		Exchange:    cfg.RabbitMQExchange,
		DLQ:         cfg.RabbitMQDLQ,
		StatusQueue: cfg.RabbitMQStatusQueue,
		Prefetch:    cfg.RabbitMQPrefetch,
		WorkerCount: cfg.WorkerCount,
		BaseDelayMs: cfg.RetryBaseDelayMs,
	}, uc.Execute, log)
	fatalOnErr(err, "create consumer")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	log.Info("worker started, consuming extraction requests", zap.String("queue", cfg.RabbitMQExtractQueue))

	if err := consumer.Start(ctx); err != nil {
		log.Error("consumer error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)

	consumer.Close()
	log.Info("worker stopped")
}

// extractorFactory builds a fresh extraction use case per job so each job can
// pick its own frame format. Workers never draw a progress bar.
func extractorFactory(cfg *config.Config, log *zap.Logger) usecase.ExtractorFactory {
	opener := decoder.NewOpener(cfg.Decoder, log)
	encoder := imagecodec.NewEncoder(cfg.JPEGQuality)
	formats := config.DefaultFormats()

	return func(frameExt string) (usecase.FrameExtractor, error) {
		uc, err := usecase.NewExtractFramesUseCase(opener, encoder, nil, log, usecase.ExtractFramesConfig{
			FrameExt: frameExt,
			Formats:  formats,
		})
		if err != nil {
			return nil, err
		}
		return uc, nil
	}
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
