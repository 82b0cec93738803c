package dotplay

import (
	"errors"
)

// ErrNoVideoStream is returned when a source has no decodable video.
var ErrNoVideoStream = errors.New("no video stream")

// Decoder produces grayscale frames one unit at a time.
//
// Decode fills dst with the next unit and returns io.EOF once the source is
// exhausted. Not every unit is a picture: HasFrame reports whether the last
// successful Decode left a renderable frame in dst. PTS and TimeBase describe
// that frame; PTS*TimeBase is its presentation time in seconds.
type Decoder interface {
	Decode(dst *Gray) error
	HasFrame() bool
	PTS() int64
	TimeBase() float64
	Close() error
}

// frameClock tracks presentation timestamps for sources that carry none of
// their own and emit frames at a fixed rate.
type frameClock struct {
	pts      int64
	timeBase float64
	hasFrame bool
}

func newFrameClock(fps float64) frameClock {
	if fps <= 0 {
		fps = 25
	}
	return frameClock{pts: -1, timeBase: 1 / fps}
}

func (c *frameClock) tick() {
	c.pts++
	c.hasFrame = true
}

func (c *frameClock) HasFrame() bool    { return c.hasFrame }
func (c *frameClock) PTS() int64        { return c.pts }
func (c *frameClock) TimeBase() float64 { return c.timeBase }
