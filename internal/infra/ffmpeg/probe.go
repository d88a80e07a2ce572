package ffmpeg

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/qwp-look/frame-extractor/internal/domain/entity"
)

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	NbFrames     string `json:"nb_frames"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	Duration     string `json:"duration"`
}

// parseProbe reads ffprobe's JSON (-show_format -show_streams) for the first
// video stream. Containers that do not store a frame count get one estimated
// from duration and frame rate.
func parseProbe(data []byte) (entity.VideoInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return entity.VideoInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	for _, s := range out.Streams {
		if s.CodecType != "video" {
			continue
		}

		fps, err := parseFrameRate(s.AvgFrameRate)
		if err != nil || fps == 0 {
			fps, err = parseFrameRate(s.RFrameRate)
			if err != nil {
				return entity.VideoInfo{}, err
			}
		}

		info := entity.VideoInfo{FPS: fps, Width: s.Width, Height: s.Height}
		if n, err := strconv.Atoi(s.NbFrames); err == nil && n > 0 {
			info.TotalFrames = n
			return info, nil
		}

		duration := s.Duration
		if _, err := strconv.ParseFloat(duration, 64); err != nil {
			duration = out.Format.Duration
		}
		secs, err := strconv.ParseFloat(strings.TrimSpace(duration), 64)
		if err != nil {
			return entity.VideoInfo{}, fmt.Errorf("no frame count or duration in ffprobe output")
		}
		info.TotalFrames = int(math.Floor(secs * fps))
		return info, nil
	}
	return entity.VideoInfo{}, fmt.Errorf("no video stream found")
}

// parseFrameRate parses ffprobe rates such as "30000/1001" or "25".
func parseFrameRate(s string) (float64, error) {
	num, den, found := strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("parse frame rate %q: %w", s, err)
	}
	if !found {
		return n, nil
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, fmt.Errorf("parse frame rate %q: %w", s, err)
	}
	if d == 0 {
		return 0, nil
	}
	return n / d, nil
}
