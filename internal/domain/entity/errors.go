package entity

import "errors"

// Configuration errors are detected before any decoding starts.
var (
	ErrMissingVideoArg     = errors.New("video path is required")
	ErrInvalidSampleCount  = errors.New("sample count must be a positive number or -1")
	ErrUnsupportedVideoExt = errors.New("unsupported video file format")
	ErrUnsupportedFrameExt = errors.New("unsupported frame file format")
)

// Resource errors.
var (
	ErrVideoNotFound = errors.New("video file does not exist")
	ErrOpenVideo     = errors.New("open video")
	ErrEmptyVideo    = errors.New("video has no frames")
)

// Decode errors abort the remaining plan. Frames already written stay on disk.
var (
	ErrDecode = errors.New("decode frame")
	ErrEncode = errors.New("write frame")
)

// IsConfigError reports whether err was caused by invalid user input.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrMissingVideoArg) ||
		errors.Is(err, ErrInvalidSampleCount) ||
		errors.Is(err, ErrUnsupportedVideoExt) ||
		errors.Is(err, ErrUnsupportedFrameExt)
}
