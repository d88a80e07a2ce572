// Package imagecodec writes decoded frames to disk with
// github.com/disintegration/imaging.
package imagecodec

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

type Encoder struct {
	jpegQuality int
}

func NewEncoder(jpegQuality int) *Encoder {
	return &Encoder{jpegQuality: jpegQuality}
}

// Encode picks the format from the extension of path and replaces any
// existing file.
func (e *Encoder) Encode(img image.Image, path string) error {
	if _, err := imaging.FormatFromFilename(path); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return imaging.Save(img, path, imaging.JPEGQuality(e.jpegQuality))
}
