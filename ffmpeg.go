package dotplay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpegDecoder reads raw grayscale frames from an ffmpeg child process.
type FFmpegDecoder struct {
	frameClock

	Width, Height int
	FPS           float64

	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer
	done   bool
}

type probeOutput struct {
	Streams []struct {
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		RFrameRate   string `json:"r_frame_rate"`
	} `json:"streams"`
}

// Probe asks ffprobe for the dimensions and frame rate of the first video
// stream in path.
func Probe(ctx context.Context, path string) (width, height int, fps float64, err error) {
	cmd := exec.CommandContext(ctx,
		"ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,avg_frame_rate,r_frame_rate",
		"-of", "json",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("ffprobe %s: %v: %s", path, err, strings.TrimSpace(stderr.String()))
	}

	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return 0, 0, 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	if len(probe.Streams) == 0 || probe.Streams[0].Width == 0 || probe.Streams[0].Height == 0 {
		return 0, 0, 0, fmt.Errorf("%s: %w", path, ErrNoVideoStream)
	}
	s := probe.Streams[0]
	fps = parseRate(s.AvgFrameRate)
	if fps == 0 {
		fps = parseRate(s.RFrameRate)
	}
	return s.Width, s.Height, fps, nil
}

// parseRate parses an ffmpeg rational such as "30000/1001". It returns 0
// for anything it cannot use.
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil || n <= 0 {
		return 0
	}
	if !ok {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d <= 0 {
		return 0
	}
	return n / d
}

// OpenFFmpeg probes path and starts ffmpeg decoding it to raw 8-bit gray
// frames at the source resolution. Cancelling ctx kills the process.
func OpenFFmpeg(ctx context.Context, path string) (*FFmpegDecoder, error) {
	width, height, fps, err := Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := checkSize(width, height); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	dec := &FFmpegDecoder{
		frameClock: newFrameClock(fps),
		Width:      width,
		Height:     height,
	}
	dec.FPS = 1 / dec.timeBase

	dec.cmd = exec.CommandContext(ctx,
		"ffmpeg",
		"-v", "error",
		"-nostdin",
		"-i", path,
		"-an",
		"-f", "rawvideo",
		"-pix_fmt", "gray",
		"-",
	)
	dec.cmd.Stderr = &dec.stderr
	dec.stdout, err = dec.cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := dec.cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	return dec, nil
}

// Decode reads the next frame into dst. A trailing partial frame is dropped.
func (dec *FFmpegDecoder) Decode(dst *Gray) error {
	dec.hasFrame = false
	if dec.done {
		return io.EOF
	}
	if err := dst.Realloc(dec.Width, dec.Height); err != nil {
		return err
	}
	if _, err := io.ReadFull(dec.stdout, dst.Pix); err != nil {
		if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("read frame: %w", err)
		}
		dec.done = true
		if err := dec.cmd.Wait(); err != nil {
			return fmt.Errorf("ffmpeg: %v: %s", err, strings.TrimSpace(dec.stderr.String()))
		}
		return io.EOF
	}
	dec.tick()
	return nil
}

// Close stops ffmpeg if it is still running.
func (dec *FFmpegDecoder) Close() error {
	if dec.done {
		return nil
	}
	dec.done = true
	dec.stdout.Close()
	if dec.cmd.Process != nil {
		dec.cmd.Process.Kill()
	}
	dec.cmd.Wait()
	return nil
}
