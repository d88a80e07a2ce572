package entity

import "github.com/google/uuid"

// ExtractionRequestMessage is the inbound message from the frames.extract queue.
type ExtractionRequestMessage struct {
	JobID       uuid.UUID `json:"job_id"`
	UserID      string    `json:"user_id"`
	VideoKey    string    `json:"video_key"`
	SampleCount int       `json:"sample_count"`
	FrameExt    string    `json:"frame_ext,omitempty"`
	UserEmail   string    `json:"user_email,omitempty"`
}

// ExtractionStatusMessage is the outbound message published to the frames.status queue.
type ExtractionStatusMessage struct {
	JobID        uuid.UUID `json:"job_id"`
	UserID       string    `json:"user_id"`
	Status       JobStatus `json:"status"`
	VideoKey     string    `json:"video_key"`
	ArchiveKey   string    `json:"archive_key,omitempty"`
	FrameCount   int       `json:"frame_count,omitempty"`
	TotalFrames  int       `json:"total_frames,omitempty"`
	Duration     float64   `json:"duration_seconds,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Attempt      int       `json:"attempt"`
	MaxAttempts  int       `json:"max_attempts"`
}

// NewStatusMessage snapshots a job for publishing.
func NewStatusMessage(job *Job) ExtractionStatusMessage {
	return ExtractionStatusMessage{
		JobID:        job.ID,
		UserID:       job.UserID,
		Status:       job.Status,
		VideoKey:     job.VideoKey,
		ArchiveKey:   job.ArchiveKey,
		FrameCount:   job.FrameCount,
		TotalFrames:  job.TotalFrames,
		Duration:     job.VideoDuration,
		ErrorMessage: job.ErrorMessage,
		Attempt:      job.Attempt,
		MaxAttempts:  job.MaxAttempts,
	}
}
