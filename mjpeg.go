package dotplay

import (
	"bufio"
	"bytes"
	"fmt"
	"image/jpeg"
	"io"
)

var (
	jpegSOI = []byte{0xff, 0xd8}
	jpegEOI = []byte{0xff, 0xd9}
)

// maxJPEGFrame bounds the bytes buffered while looking for an end marker.
const maxJPEGFrame = 32 << 20

// MJPEGDecoder decodes a stream of concatenated JPEG images, such as the
// output of `ffmpeg -f image2pipe -vcodec mjpeg`, at a fixed frame rate.
type MJPEGDecoder struct {
	frameClock

	r       io.Reader
	scanner *bufio.Scanner
}

// NewMJPEGDecoder returns a decoder reading JPEG frames from r and stamping
// them fps frames per second apart. If r is an io.Closer, Close closes it.
func NewMJPEGDecoder(r io.Reader, fps float64) *MJPEGDecoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), maxJPEGFrame)
	s.Split(splitJPEG)
	return &MJPEGDecoder{
		frameClock: newFrameClock(fps),
		r:          r,
		scanner:    s,
	}
}

// splitJPEG is a bufio.SplitFunc yielding one SOI..EOI image per token.
// Bytes before a start marker are skipped.
func splitJPEG(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := bytes.Index(data, jpegSOI)
	if start < 0 {
		if atEOF {
			return len(data), nil, nil
		}
		// Keep a trailing 0xff that may begin a marker.
		return max(len(data)-1, 0), nil, nil
	}
	end := bytes.Index(data[start+len(jpegSOI):], jpegEOI)
	if end < 0 {
		if atEOF {
			// Truncated image.
			return len(data), nil, nil
		}
		return start, nil, nil
	}
	end += start + len(jpegSOI) + len(jpegEOI)
	return end, data[start:end], nil
}

// Decode decodes the next JPEG image into dst.
func (dec *MJPEGDecoder) Decode(dst *Gray) error {
	dec.hasFrame = false
	if !dec.scanner.Scan() {
		if err := dec.scanner.Err(); err != nil {
			return fmt.Errorf("read mjpeg: %w", err)
		}
		return io.EOF
	}
	img, err := jpeg.Decode(bytes.NewReader(dec.scanner.Bytes()))
	if err != nil {
		return fmt.Errorf("decode frame %d: %w", dec.pts+1, err)
	}
	if err := dst.CopyFrom(img); err != nil {
		return err
	}
	dec.tick()
	return nil
}

func (dec *MJPEGDecoder) Close() error {
	if c, ok := dec.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
