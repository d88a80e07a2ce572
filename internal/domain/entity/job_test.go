package entity

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobLifecycle(t *testing.T) {
	job := NewJob("user-1", "user-1/cat.mp4", 10, 2)

	assert.NotEqual(t, uuid.Nil, job.ID)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Zero(t, job.Attempt)
	assert.True(t, job.CanRetry())

	job.MarkProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	assert.Equal(t, 1, job.Attempt)
	assert.True(t, job.CanRetry())

	job.MarkFailed("download_video: timeout")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "download_video: timeout", job.ErrorMessage)

	job.MarkProcessing()
	assert.Equal(t, 2, job.Attempt)
	assert.False(t, job.CanRetry())

	job.MarkCompleted("user-1/frames.zip", &ExtractionResult{
		FramePaths: []string{"a", "b", "c"},
		Video:      VideoInfo{TotalFrames: 50, FPS: 25},
	})
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Equal(t, "user-1/frames.zip", job.ArchiveKey)
	assert.Equal(t, 3, job.FrameCount)
	assert.Equal(t, 50, job.TotalFrames)
	assert.InDelta(t, 2.0, job.VideoDuration, 1e-9)
	assert.Empty(t, job.ErrorMessage)
	require.NotNil(t, job.CompletedAt)
}

func TestNewStatusMessage(t *testing.T) {
	job := NewJob("user-1", "user-1/cat.mp4", 4, 3)
	job.MarkProcessing()
	job.MarkFailed("extract_frames: decode frame")

	msg := NewStatusMessage(job)
	assert.Equal(t, job.ID, msg.JobID)
	assert.Equal(t, JobStatusFailed, msg.Status)
	assert.Equal(t, "user-1/cat.mp4", msg.VideoKey)
	assert.Equal(t, "extract_frames: decode frame", msg.ErrorMessage)
	assert.Equal(t, 1, msg.Attempt)
	assert.Equal(t, 3, msg.MaxAttempts)
}

func TestVideoInfoDuration(t *testing.T) {
	assert.Equal(t, 4*time.Second, VideoInfo{TotalFrames: 100, FPS: 25}.Duration())
	assert.Equal(t, 1500*time.Millisecond, VideoInfo{TotalFrames: 3, FPS: 2}.Duration())
	assert.Zero(t, VideoInfo{TotalFrames: 100}.Duration())
}

func TestIsConfigError(t *testing.T) {
	for _, err := range []error{
		ErrMissingVideoArg,
		ErrInvalidSampleCount,
		fmt.Errorf("check: %w", ErrUnsupportedVideoExt),
		fmt.Errorf("--frame-ext: %w", ErrUnsupportedFrameExt),
	} {
		assert.True(t, IsConfigError(err), err.Error())
	}

	for _, err := range []error{
		ErrVideoNotFound,
		ErrEmptyVideo,
		fmt.Errorf("%w: codec", ErrOpenVideo),
		fmt.Errorf("%w 7: %w", ErrDecode, errors.New("eof")),
		ErrEncode,
		errors.New("disk full"),
		nil,
	} {
		assert.False(t, IsConfigError(err))
	}
}
