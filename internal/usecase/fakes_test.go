package usecase

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/qwp-look/frame-extractor/internal/domain/entity"
	"github.com/qwp-look/frame-extractor/internal/domain/port"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	info    entity.VideoInfo
	failAt  int
	nilAt   int
	decoded []int
	closed  bool
}

func (s *fakeSource) Info() entity.VideoInfo { return s.info }

func (s *fakeSource) FrameAt(_ context.Context, n int) (image.Image, error) {
	if n == s.failAt {
		return nil, errors.New("end of stream")
	}
	if n == s.nilAt {
		return nil, nil
	}
	s.decoded = append(s.decoded, n)
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	img.SetGray(0, 0, color.Gray{Y: uint8(n)})
	return img, nil
}

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

type fakeOpener struct {
	source *fakeSource
	err    error
	opened []string
}

func (o *fakeOpener) Open(_ context.Context, path string) (port.VideoSource, error) {
	o.opened = append(o.opened, path)
	if o.err != nil {
		return nil, o.err
	}
	return o.source, nil
}

func newFakeOpener(totalFrames int) *fakeOpener {
	return &fakeOpener{source: &fakeSource{
		info:   entity.VideoInfo{TotalFrames: totalFrames, FPS: 25, Width: 2, Height: 2},
		failAt: -1,
		nilAt:  -1,
	}}
}

// fakeEncoder writes a marker file so tests can inspect the output tree.
type fakeEncoder struct {
	paths  []string
	onSave func(n int)
}

func (e *fakeEncoder) Encode(img image.Image, path string) error {
	e.paths = append(e.paths, path)
	if e.onSave != nil {
		e.onSave(len(e.paths))
	}
	return os.WriteFile(path, []byte{img.(*image.Gray).Pix[0]}, 0644)
}

type fakeProgress struct {
	total    int
	advanced int
	finished bool
}

func (p *fakeProgress) Start(total int) { p.total = total }
func (p *fakeProgress) Advance(n int)   { p.advanced += n }
func (p *fakeProgress) Finish()         { p.finished = true }

// writeVideoFile creates a placeholder video so existence checks pass.
func writeVideoFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("not really a video"), 0644))
	return path
}
