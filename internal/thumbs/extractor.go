package thumbs

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CommandRunner executes external commands and returns stdout bytes.
type CommandRunner func(ctx context.Context, binary string, args ...string) ([]byte, error)

// ErrExtractorUnavailable indicates the frame extractor is not configured.
var ErrExtractorUnavailable = errors.New("frame extractor unavailable")

// captureOffset is how far into the video the poster frame is taken from.
const captureOffset = "1"

// FrameExtractor produces a raster poster frame for a video URL.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, url string) ([]byte, error)
}

// FFmpegExtractor extracts poster frames by shelling out to ffmpeg.
type FFmpegExtractor struct {
	Binary  string
	Run     CommandRunner
	Timeout time.Duration
}

// NewFFmpegExtractor constructs an extractor that shells out to ffmpeg.
func NewFFmpegExtractor(binary string, timeout time.Duration) *FFmpegExtractor {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FFmpegExtractor{
		Binary:  binary,
		Run:     defaultCommandRunner,
		Timeout: timeout,
	}
}

// ExtractFrame seeks one second into the video at url and returns that frame
// as JPEG bytes. The command runs under a deadline so corrupt or unreachable
// media can never hang the caller.
func (e *FFmpegExtractor) ExtractFrame(ctx context.Context, url string) ([]byte, error) {
	if e == nil {
		return nil, ErrExtractorUnavailable
	}
	if e.Run == nil {
		e.Run = defaultCommandRunner
	}

	execCtx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", captureOffset,
		"-i", url,
		"-frames:v", "1",
		"-f", "image2", "-c:v", "mjpeg",
		"pipe:1",
	}

	out, err := e.Run(execCtx, e.Binary, args...)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg frame extraction: %w", err)
	}
	if len(out) == 0 {
		return nil, errors.New("ffmpeg produced no frame")
	}

	return out, nil
}

func defaultCommandRunner(ctx context.Context, binary string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	return cmd.Output()
}
