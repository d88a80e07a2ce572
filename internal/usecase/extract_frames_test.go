package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/qwp-look/frame-extractor/internal/domain/entity"
	"github.com/qwp-look/frame-extractor/internal/domain/port"
	"github.com/qwp-look/frame-extractor/internal/infra/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newExtractor(t *testing.T, opener *fakeOpener, enc *fakeEncoder, progress port.ProgressReporter) *ExtractFramesUseCase {
	t.Helper()
	uc, err := NewExtractFramesUseCase(opener, enc, progress, zap.NewNop(), ExtractFramesConfig{
		FrameExt: ".jpg",
		Formats:  config.DefaultFormats(),
	})
	require.NoError(t, err)
	return uc
}

func TestExtractFramesSamplesEvenly(t *testing.T) {
	opener := newFakeOpener(100)
	enc := &fakeEncoder{}
	progress := &fakeProgress{}
	uc := newExtractor(t, opener, enc, progress)

	root := t.TempDir()
	video := writeVideoFile(t, "clip.mp4")

	result, err := uc.Execute(context.Background(), entity.ExtractionRequest{
		VideoPath:   video,
		OutputRoot:  root,
		SampleCount: 10,
	})
	require.NoError(t, err)

	want := []int{0, 10, 20, 30, 40, 50, 60, 70, 80, 99}
	assert.Equal(t, want, opener.source.decoded)
	assert.Equal(t, want, result.SourceIndices)
	assert.Equal(t, 10, result.FrameCount())
	assert.Equal(t, filepath.Join(root, "output_clip", "frames"), result.FramesDir)
	assert.True(t, opener.source.closed)

	for i, path := range result.FramePaths {
		assert.Equal(t, filepath.Join(result.FramesDir, FrameFileName(i, ".jpg")), path)
		assert.FileExists(t, path)
	}
	entries, err := os.ReadDir(result.FramesDir)
	require.NoError(t, err)
	assert.Len(t, entries, 10)
	assert.Equal(t, "00000000.jpg", entries[0].Name())
	assert.Equal(t, "00000009.jpg", entries[9].Name())

	assert.Equal(t, 100, progress.total)
	assert.Equal(t, 100, progress.advanced)
	assert.True(t, progress.finished)
}

func TestExtractFramesAll(t *testing.T) {
	opener := newFakeOpener(6)
	uc := newExtractor(t, opener, &fakeEncoder{}, nil)

	result, err := uc.Execute(context.Background(), entity.ExtractionRequest{
		VideoPath:   writeVideoFile(t, "walk.avi"),
		OutputRoot:  t.TempDir(),
		SampleCount: entity.ExtractAll,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, result.SourceIndices)
}

func TestExtractFramesRejectsBeforeWork(t *testing.T) {
	tests := []struct {
		name    string
		video   func(t *testing.T) string
		samples int
		wantErr error
	}{
		{
			name:    "zero sample count",
			video:   func(t *testing.T) string { return writeVideoFile(t, "clip.mp4") },
			samples: 0,
			wantErr: entity.ErrInvalidSampleCount,
		},
		{
			name:    "negative sample count",
			video:   func(t *testing.T) string { return writeVideoFile(t, "clip.mp4") },
			samples: -5,
			wantErr: entity.ErrInvalidSampleCount,
		},
		{
			name:    "unsupported video",
			video:   func(t *testing.T) string { return writeVideoFile(t, "clip.mkv") },
			samples: 3,
			wantErr: entity.ErrUnsupportedVideoExt,
		},
		{
			name:    "missing video",
			video:   func(t *testing.T) string { return filepath.Join(t.TempDir(), "gone.mp4") },
			samples: 3,
			wantErr: entity.ErrVideoNotFound,
		},
		{
			name:    "empty path",
			video:   func(t *testing.T) string { return "" },
			samples: 3,
			wantErr: entity.ErrMissingVideoArg,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opener := newFakeOpener(10)
			enc := &fakeEncoder{}
			uc := newExtractor(t, opener, enc, nil)
			root := filepath.Join(t.TempDir(), "out")

			_, err := uc.Execute(context.Background(), entity.ExtractionRequest{
				VideoPath:   tt.video(t),
				OutputRoot:  root,
				SampleCount: tt.samples,
			})
			require.ErrorIs(t, err, tt.wantErr)

			assert.Empty(t, opener.opened)
			assert.Empty(t, enc.paths)
			assert.NoDirExists(t, root)
		})
	}
}

func TestExtractFramesDirectoryIsNotAVideo(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "folder.mp4")
	require.NoError(t, os.Mkdir(dir, 0755))
	uc := newExtractor(t, newFakeOpener(10), &fakeEncoder{}, nil)

	_, err := uc.Execute(context.Background(), entity.ExtractionRequest{VideoPath: dir, OutputRoot: t.TempDir(), SampleCount: 1})
	assert.ErrorIs(t, err, entity.ErrVideoNotFound)
}

func TestNewExtractFramesUseCaseRejectsFrameExt(t *testing.T) {
	_, err := NewExtractFramesUseCase(newFakeOpener(1), &fakeEncoder{}, nil, zap.NewNop(), ExtractFramesConfig{
		FrameExt: ".gif",
		Formats:  config.DefaultFormats(),
	})
	assert.ErrorIs(t, err, entity.ErrUnsupportedFrameExt)
	assert.True(t, entity.IsConfigError(err))
}

func TestExtractFramesOpenFailure(t *testing.T) {
	opener := newFakeOpener(10)
	opener.err = errors.New("moov atom not found")
	uc := newExtractor(t, opener, &fakeEncoder{}, nil)

	_, err := uc.Execute(context.Background(), entity.ExtractionRequest{
		VideoPath:   writeVideoFile(t, "broken.mp4"),
		OutputRoot:  t.TempDir(),
		SampleCount: 2,
	})
	assert.ErrorIs(t, err, entity.ErrOpenVideo)
	assert.ErrorContains(t, err, "moov atom not found")
}

func TestExtractFramesEmptyVideo(t *testing.T) {
	opener := newFakeOpener(0)
	uc := newExtractor(t, opener, &fakeEncoder{}, nil)
	root := filepath.Join(t.TempDir(), "out")

	_, err := uc.Execute(context.Background(), entity.ExtractionRequest{
		VideoPath:   writeVideoFile(t, "empty.mp4"),
		OutputRoot:  root,
		SampleCount: entity.ExtractAll,
	})
	assert.ErrorIs(t, err, entity.ErrEmptyVideo)
	assert.True(t, opener.source.closed)
	assert.NoDirExists(t, root)
}

func TestExtractFramesDecodeFailureIsFatal(t *testing.T) {
	opener := newFakeOpener(10)
	opener.source.failAt = 4
	enc := &fakeEncoder{}
	uc := newExtractor(t, opener, enc, nil)
	root := t.TempDir()
	video := writeVideoFile(t, "clip.mp4")

	_, err := uc.Execute(context.Background(), entity.ExtractionRequest{
		VideoPath:   video,
		OutputRoot:  root,
		SampleCount: entity.ExtractAll,
	})
	require.ErrorIs(t, err, entity.ErrDecode)
	assert.False(t, entity.IsConfigError(err))
	assert.True(t, opener.source.closed)

	// frames written before the failure stay on disk
	assert.Len(t, enc.paths, 4)
	framesDir := filepath.Join(OutputDir(root, video), "frames")
	assert.FileExists(t, filepath.Join(framesDir, "00000003.jpg"))
	assert.NoFileExists(t, filepath.Join(framesDir, "00000004.jpg"))
}

func TestExtractFramesNilFrameIsFatal(t *testing.T) {
	opener := newFakeOpener(10)
	opener.source.nilAt = 0
	enc := &fakeEncoder{}
	uc := newExtractor(t, opener, enc, nil)

	_, err := uc.Execute(context.Background(), entity.ExtractionRequest{
		VideoPath:   writeVideoFile(t, "clip.mp4"),
		OutputRoot:  t.TempDir(),
		SampleCount: 3,
	})
	assert.ErrorIs(t, err, entity.ErrDecode)
	assert.Empty(t, enc.paths)
}

func TestExtractFramesHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opener := newFakeOpener(50)
	enc := &fakeEncoder{onSave: func(n int) {
		if n == 2 {
			cancel()
		}
	}}
	uc := newExtractor(t, opener, enc, nil)

	_, err := uc.Execute(ctx, entity.ExtractionRequest{
		VideoPath:   writeVideoFile(t, "clip.mp4"),
		OutputRoot:  t.TempDir(),
		SampleCount: 10,
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, enc.paths, 2)
	assert.True(t, opener.source.closed)
}

func TestExtractFramesRerunOverwrites(t *testing.T) {
	root := t.TempDir()
	video := writeVideoFile(t, "clip.mp4")

	first, err := newExtractor(t, newFakeOpener(20), &fakeEncoder{}, nil).Execute(context.Background(), entity.ExtractionRequest{
		VideoPath: video, OutputRoot: root, SampleCount: 5,
	})
	require.NoError(t, err)

	second, err := newExtractor(t, newFakeOpener(20), &fakeEncoder{}, nil).Execute(context.Background(), entity.ExtractionRequest{
		VideoPath: video, OutputRoot: root, SampleCount: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, first.FramePaths, second.FramePaths)
	entries, err := os.ReadDir(second.FramesDir)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestOutputLayout(t *testing.T) {
	assert.Equal(t, filepath.Join("extracted_frames", "output_cat"), OutputDir("extracted_frames", "/videos/cat.mp4"))
	assert.Equal(t, filepath.Join("out", "output_my"), OutputDir("out", "my.holiday.clip.avi"))
	assert.Equal(t, "00000000.jpg", FrameFileName(0, ".jpg"))
	assert.Equal(t, "00001234.png", FrameFileName(1234, ".png"))
}
