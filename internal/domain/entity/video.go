package entity

import "time"

// VideoInfo describes a decodable video stream.
type VideoInfo struct {
	TotalFrames int
	FPS         float64
	Width       int
	Height      int
}

// Duration is the stream length derived from frame count and frame rate.
func (v VideoInfo) Duration() time.Duration {
	if v.FPS <= 0 {
		return 0
	}
	return time.Duration(float64(v.TotalFrames) / v.FPS * float64(time.Second))
}

// ExtractAll asks for every frame of the source.
const ExtractAll = -1

// ExtractionRequest is one video to sample.
type ExtractionRequest struct {
	VideoPath   string
	OutputRoot  string
	SampleCount int
}

// ExtractionResult lists what an extraction run wrote.
type ExtractionResult struct {
	OutputDir     string
	FramesDir     string
	FramePaths    []string
	SourceIndices []int
	Video         VideoInfo
}

// FrameCount is the number of frame files written.
func (r *ExtractionResult) FrameCount() int {
	return len(r.FramePaths)
}
