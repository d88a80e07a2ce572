package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/qwp-look/frame-extractor/internal/domain/entity"
)

// Formats is the table of accepted file extensions.
type Formats struct {
	VideoExts []string
	FrameExts []string
}

func DefaultFormats() Formats {
	return Formats{
		VideoExts: []string{".avi", ".mp4"},
		FrameExts: []string{".jpg", ".png"},
	}
}

// CheckVideo validates the extension of a video path.
func (f Formats) CheckVideo(path string) error {
	ext := filepath.Ext(path)
	if !slices.Contains(f.VideoExts, strings.ToLower(ext)) {
		return fmt.Errorf("%w: %q (supported: %s)", entity.ErrUnsupportedVideoExt, ext, strings.Join(f.VideoExts, ", "))
	}
	return nil
}

// CheckFrame validates an output frame extension such as ".png".
func (f Formats) CheckFrame(ext string) error {
	if !slices.Contains(f.FrameExts, strings.ToLower(ext)) {
		return fmt.Errorf("%w: %q (supported: %s)", entity.ErrUnsupportedFrameExt, ext, strings.Join(f.FrameExts, ", "))
	}
	return nil
}
