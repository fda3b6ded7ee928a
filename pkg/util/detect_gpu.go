package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

var gpuVendors = map[string]string{
	"0x10de": "nvidia",
	"0x8086": "intel",
	"0x1002": "amd",
}

// DetectGPU returns the vendor of the first DRM card found under root
// (normally /). An empty string means no known GPU is present.
func DetectGPU(root string) (string, error) {
	zap.L().Debug("Trying to detect gpu for hardware acceleration")

	files, err := os.ReadDir(filepath.Join(root, "dev", "dri"))
	if err != nil {
		return "", fmt.Errorf("failed to read files in /dev/dri, %w", err)
	}

	for _, f := range files {
		if !strings.HasPrefix(f.Name(), "card") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(root, "sys", "class", "drm", f.Name(), "device", "vendor"))
		if err != nil {
			return "", fmt.Errorf("failed to read vendor file, %w", err)
		}

		if v, ok := gpuVendors[strings.TrimSpace(string(data))]; ok {
			return v, nil
		}
	}

	return "", nil
}

// HWAccelFor maps a GPU vendor to the matching ffmpeg -hwaccel method
func HWAccelFor(vendor string) string {
	switch vendor {
	case "nvidia":
		return "cuda"
	case "intel":
		return "qsv"
	case "amd":
		return "vaapi"
	}

	return ""
}
