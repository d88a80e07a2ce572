// Package progress renders extraction progress on a terminal.
package progress

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Bar counts source frames passed, like a frame counter over the whole video.
type Bar struct {
	w           io.Writer
	description string
	bar         *progressbar.ProgressBar
}

func NewBar(w io.Writer, description string) *Bar {
	return &Bar{w: w, description: description}
}

func (b *Bar) Start(total int) {
	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(b.w),
		progressbar.OptionSetDescription(b.description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetWidth(30),
	)
}

func (b *Bar) Advance(n int) {
	if b.bar == nil || n <= 0 {
		return
	}
	_ = b.bar.Add(n)
}

// Finish leaves the bar at its current count and ends the line.
func (b *Bar) Finish() {
	if b.bar == nil {
		return
	}
	_ = b.bar.Exit()
	io.WriteString(b.w, "\n")
	b.bar = nil
}
