package usecase

import (
	"fmt"
	"path/filepath"
	"strings"
)

const framesDirName = "frames"

// OutputDir is <root>/output_<name>, where name is the video file name up to
// its first dot.
func OutputDir(root, videoPath string) string {
	name, _, _ := strings.Cut(filepath.Base(videoPath), ".")
	return filepath.Join(root, "output_"+name)
}

// FrameFileName is the zero-padded file name of output frame i.
func FrameFileName(i int, ext string) string {
	return fmt.Sprintf("%08d%s", i, ext)
}
