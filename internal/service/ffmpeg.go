// Package service contains the video ingestion pipeline and the media
// tooling it drives
package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"videoshare/video-api/pkg/metrics"
	"videoshare/video-api/pkg/util"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Transcoder converts an input media file into a normalized playable
// artifact and returns the artifact's path. Convert blocks until the
// conversion finishes.
type Transcoder interface {
	Convert(ctx context.Context, input string) (string, error)
}

type FFmpegConfig struct {
	FFmpegPath  string
	FFprobePath string
	Codec       string
	HWAccel     string
	OutputDir   string
	MaxJobs     int64
	Timeout     time.Duration
}

// FFmpeg transcodes videos to H.264 MP4 by shelling out to ffmpeg. The
// number of concurrently running processes is bounded by MaxJobs, excess
// callers wait for a slot.
type FFmpeg struct {
	cfg FFmpegConfig
	sem *semaphore.Weighted
}

func NewFFmpeg(cfg FFmpegConfig) *FFmpeg {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	if cfg.Codec == "" {
		cfg.Codec = "libx264"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "converted"
	}
	if cfg.MaxJobs <= 0 {
		cfg.MaxJobs = 1
	}

	zap.L().Debug("Initializing transcoder",
		zap.String("codec", cfg.Codec),
		zap.Int64("max_jobs", cfg.MaxJobs),
		zap.String("hwaccel", cfg.HWAccel))

	return &FFmpeg{
		cfg: cfg,
		sem: semaphore.NewWeighted(cfg.MaxJobs),
	}
}

// NewFFmpegFromConfig reads the ffmpeg.* and upload.converted_dir keys.
// ffmpeg.hwaccel = "auto" picks a method from the detected GPU vendor.
func NewFFmpegFromConfig() *FFmpeg {
	hwaccel := viper.GetString("ffmpeg.hwaccel")
	if hwaccel == "auto" {
		vendor, err := util.DetectGPU("/")
		if err != nil {
			zap.L().Warn("GPU detection failed, using software decoding", zap.Error(err))
		}
		hwaccel = util.HWAccelFor(vendor)
	}

	return NewFFmpeg(FFmpegConfig{
		FFmpegPath:  viper.GetString("ffmpeg.path"),
		FFprobePath: viper.GetString("ffmpeg.ffprobe_path"),
		Codec:       viper.GetString("ffmpeg.codec"),
		HWAccel:     hwaccel,
		OutputDir:   viper.GetString("upload.converted_dir"),
		MaxJobs:     viper.GetInt64("ffmpeg.max_jobs"),
		Timeout:     viper.GetDuration("ffmpeg.timeout"),
	})
}

func (f *FFmpeg) makeFlags(input, output string) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-y"}

	if f.cfg.HWAccel != "" {
		args = append(args, "-hwaccel", f.cfg.HWAccel)
	}

	args = append(args, "-i", input, "-c:v", f.cfg.Codec)

	switch f.cfg.Codec {
	case "libx264":
		args = append(args, "-preset", "veryfast", "-crf", "23", "-pix_fmt", "yuv420p")
	case "h264_nvenc", "hevc_nvenc":
		args = append(args, "-preset", "p5", "-rc", "vbr", "-cq", "23")
	}

	return append(args,
		"-c:a", "aac",
		"-movflags", "+faststart",
		"-f", "mp4",
		output,
	)
}

func (f *FFmpeg) Convert(ctx context.Context, input string) (_ string, err error) {
	if err := os.MkdirAll(f.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: failed to create output directory, %w", ErrTranscode, err)
	}

	if _, err := os.Stat(input); err != nil {
		return "", fmt.Errorf("%w: input is unreadable, %w", ErrTranscode, err)
	}

	if err := f.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscode, err)
	}
	defer f.sem.Release(1)

	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}

	out := filepath.Join(f.cfg.OutputDir, fmt.Sprintf("%d_%s.mp4", time.Now().UnixNano(), util.RandStr(8)))

	metrics.TranscodesInFlight.Inc()
	start := time.Now()
	defer func() {
		metrics.TranscodesInFlight.Dec()

		status := "success"
		if err != nil {
			status = "error"
			// Partial or unverified output is never handed out
			removeScratch(out)
		}
		metrics.RecordTranscode(status, time.Since(start).Seconds())
	}()

	cmd := exec.CommandContext(ctx, f.cfg.FFmpegPath, f.makeFlags(input, out)...)

	zap.L().Debug("Running FFmpeg command", zap.String("cmd", cmd.String()))

	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	if err := cmd.Run(); err != nil {
		zap.L().Error("FFmpeg failed", zap.Error(err), zap.String("stderr", stderrBuf.String()))
		return "", fmt.Errorf("%w: ffmpeg failed, %w (%s)", ErrTranscode, err, strings.TrimSpace(stderrBuf.String()))
	}

	// A zero exit status doesn't guarantee a playable file
	d, err := GetDuration(ctx, f.cfg.FFprobePath, out)
	if err != nil {
		return "", fmt.Errorf("%w: output verification failed, %w", ErrTranscode, err)
	}
	if d <= 0 {
		return "", fmt.Errorf("%w: output has no duration", ErrTranscode)
	}

	zap.L().Debug("FFmpeg job finished successfully", zap.String("output", out), zap.Float64("duration", d))
	return out, nil
}
