package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBar(t *testing.T) {
	var buf bytes.Buffer
	bar := NewBar(&buf, "Extracting frames")

	bar.Start(100)
	bar.Advance(10)
	bar.Advance(0)
	bar.Advance(90)
	bar.Finish()

	assert.Contains(t, buf.String(), "Extracting frames")
	assert.Nil(t, bar.bar)
}

func TestBarWithoutStart(t *testing.T) {
	bar := NewBar(&bytes.Buffer{}, "idle")
	assert.NotPanics(t, func() {
		bar.Advance(3)
		bar.Finish()
	})
}
