package service

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// GetDuration runs ffprobe on the file at p and returns its duration in seconds
func GetDuration(ctx context.Context, ffprobe, p string) (d float64, err error) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	zap.L().Debug("Running FFprobe to determine video duration", zap.String("path", p))

	cmd := exec.CommandContext(ctx, ffprobe, "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", "-i", p)

	var stdOut, stdErr bytes.Buffer
	cmd.Stdout = &stdOut
	cmd.Stderr = &stdErr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed, %w (%s)", err, strings.TrimSpace(stdErr.String()))
	}

	d, err = strconv.ParseFloat(strings.TrimSpace(stdOut.String()), 64)
	if err != nil {
		return 0, fmt.Errorf("malformed duration: %w (%s)", err, strings.TrimSpace(stdOut.String()))
	}

	return d, nil
}
