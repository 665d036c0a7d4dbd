package imageio

import (
	"fmt"
	"path/filepath"
	"runtime"

	"k8s.io/klog/v2"
)

// ScreenshotName is the file name the engine gives its first high-resolution capture.
const ScreenshotName = "HighresScreenshot00001.png"

// DefaultPlatform returns the editor platform directory for the host OS.
func DefaultPlatform() string {
	switch runtime.GOOS {
	case "darwin":
		return "MacEditor"
	case "windows":
		return "WindowsEditor"
	default:
		return "LinuxEditor"
	}
}

// ScreenshotPath returns <savedDir>/Screenshots/<platform>/HighresScreenshot00001.png.
// An empty platform selects DefaultPlatform.
func ScreenshotPath(savedDir, platform string) string {
	if platform == "" {
		platform = DefaultPlatform()
	}
	return filepath.Join(savedDir, "Screenshots", platform, ScreenshotName)
}

// LoadScreenshot decodes the conventional screenshot under savedDir.
func LoadScreenshot(savedDir, platform string) (*RawPixelBuffer, error) {
	path, err := filepath.Abs(ScreenshotPath(savedDir, platform))
	if err != nil {
		return nil, fmt.Errorf("resolving screenshot path: %w", err)
	}
	klog.V(2).InfoS("Loading screenshot", "path", path)

	px, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	klog.V(2).InfoS("Loaded screenshot", "width", px.Width, "height", px.Height)

	if klogV := klog.V(4); klogV.Enabled() {
		for i := 0; i < 5 && (i+1)*4 <= len(px.Pix); i++ {
			s := px.Pix[i*4 : i*4+4]
			klogV.InfoS("Pixel", "index", i, "r", s[0], "g", s[1], "b", s[2], "a", s[3])
		}
	}
	return px, nil
}
