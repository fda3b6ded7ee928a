package service

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFFmpegConvertFailsWithoutBinary(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "converted", "nested")

	input := filepath.Join(dir, "input.mp4")
	require.NoError(t, os.WriteFile(input, []byte("not really a video"), 0o644))

	ff := NewFFmpeg(FFmpegConfig{
		FFmpegPath: filepath.Join(dir, "no-such-ffmpeg"),
		OutputDir:  out,
		MaxJobs:    1,
	})

	_, err := ff.Convert(context.Background(), input)
	assert.ErrorIs(t, err, ErrTranscode)

	// The output directory is ensured even when the conversion fails
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFFmpegConvertMissingInput(t *testing.T) {
	ff := NewFFmpeg(FFmpegConfig{OutputDir: t.TempDir()})

	_, err := ff.Convert(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	assert.ErrorIs(t, err, ErrTranscode)
}

func TestFFmpegFlags(t *testing.T) {
	ff := NewFFmpeg(FFmpegConfig{HWAccel: "cuda"})

	args := ff.makeFlags("in.mov", "out.mp4")

	assert.Equal(t, "out.mp4", args[len(args)-1])
	assert.Subset(t, args, []string{"-hwaccel", "cuda", "-i", "in.mov", "-c:v", "libx264", "-f", "mp4"})

	hw := indexOf(args, "-hwaccel")
	in := indexOf(args, "-i")
	assert.Less(t, hw, in, "hwaccel must come before the input")
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, 200, StatusCode(nil))
	assert.Equal(t, 400, StatusCode(ErrNoFile))
	assert.Equal(t, 403, StatusCode(ErrForbidden))
	assert.Equal(t, 500, StatusCode(ErrTranscode))
	assert.Equal(t, 500, StatusCode(ErrStore))
	assert.Equal(t, 500, StatusCode(ErrMetadata))
	assert.Equal(t, "Video conversion failed", PublicMessage(ErrTranscode))
}

// stubTool writes an executable shell script standing in for ffmpeg or ffprobe
func stubTool(t *testing.T, dir, name, body string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell stubs need a POSIX shell")
	}

	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return p
}

// writes its last argument like ffmpeg writes the output file
const ffmpegWrites = `for last; do :; done
printf 'fake mp4' > "$last"`

func newStubFFmpeg(t *testing.T, ffmpegBody, ffprobeBody string) (*FFmpeg, string, string) {
	t.Helper()

	dir := t.TempDir()
	out := filepath.Join(dir, "converted")

	input := filepath.Join(dir, "input.mov")
	require.NoError(t, os.WriteFile(input, []byte("source"), 0o644))

	ff := NewFFmpeg(FFmpegConfig{
		FFmpegPath:  stubTool(t, dir, "ffmpeg", ffmpegBody),
		FFprobePath: stubTool(t, dir, "ffprobe", ffprobeBody),
		OutputDir:   out,
		MaxJobs:     1,
	})

	return ff, input, out
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFFmpegConvertSuccess(t *testing.T) {
	ff, input, out := newStubFFmpeg(t, ffmpegWrites, "echo 3.5")

	output, err := ff.Convert(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, out, filepath.Dir(output))
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "fake mp4", string(data))
}

func TestFFmpegConvertRemovesPartialOutput(t *testing.T) {
	ff, input, out := newStubFFmpeg(t, ffmpegWrites+"\nexit 1", "echo 3.5")

	output, err := ff.Convert(context.Background(), input)
	assert.ErrorIs(t, err, ErrTranscode)
	assert.Empty(t, output)
	assertEmptyDir(t, out)
}

func TestFFmpegConvertRejectsEmptyDuration(t *testing.T) {
	ff, input, out := newStubFFmpeg(t, ffmpegWrites, "echo 0.000")

	_, err := ff.Convert(context.Background(), input)
	assert.ErrorIs(t, err, ErrTranscode)
	assert.Contains(t, err.Error(), "no duration")
	assertEmptyDir(t, out)
}

func TestFFmpegConvertFFprobeFails(t *testing.T) {
	ff, input, out := newStubFFmpeg(t, ffmpegWrites, "echo 'invalid data' >&2\nexit 1")

	_, err := ff.Convert(context.Background(), input)
	assert.ErrorIs(t, err, ErrTranscode)
	assert.Contains(t, err.Error(), "verification failed")
	assertEmptyDir(t, out)
}

func TestFFmpegConvertMalformedDuration(t *testing.T) {
	ff, input, out := newStubFFmpeg(t, ffmpegWrites, "echo N/A")

	_, err := ff.Convert(context.Background(), input)
	assert.ErrorIs(t, err, ErrTranscode)
	assertEmptyDir(t, out)
}
