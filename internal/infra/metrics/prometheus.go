package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "frame_extractor_extractions_total",
		Help: "Total number of extraction runs, by result",
	}, []string{"result"})

	ExtractionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "frame_extractor_stage_duration_seconds",
		Help:    "Duration of extraction pipeline stages",
		Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	FramesExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "frame_extractor_frames_written_total",
		Help: "Total number of frame files written",
	})

	DecodeErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "frame_extractor_decode_errors_total",
		Help: "Total number of frames the decoder failed to return",
	})

	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "frame_extractor_jobs_processed_total",
		Help: "Total number of queued jobs processed, by status",
	}, []string{"status"})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "frame_extractor_active_workers",
		Help: "Number of workers currently processing a job",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "frame_extractor_retry_total",
		Help: "Total number of requeued jobs",
	}, []string{"attempt"})
)
