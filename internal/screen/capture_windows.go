//go:build windows

package screen

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

type windowsBackend struct{ tempDir string }

// captureScript grabs the full virtual screen via GDI CopyFromScreen.
const captureScript = `Add-Type -AssemblyName System.Windows.Forms,System.Drawing;
$b = [System.Windows.Forms.SystemInformation]::VirtualScreen;
$bmp = New-Object System.Drawing.Bitmap $b.Width, $b.Height;
$g = [System.Drawing.Graphics]::FromImage($bmp);
$g.CopyFromScreen($b.Left, $b.Top, 0, 0, $bmp.Size);
$bmp.Save('%s', [System.Drawing.Imaging.ImageFormat]::Png);
$g.Dispose(); $bmp.Dispose()`

func (w *windowsBackend) captureRaw(ctx context.Context) ([]byte, error) {
	tmpFile := filepath.Join(w.tempDir, "frame.png")
	script := fmt.Sprintf(captureScript, strings.ReplaceAll(tmpFile, `\`, `\\`))
	cmd := exec.CommandContext(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("powershell capture: %w (%s)", err, stderr.String())
	}
	data, err := os.ReadFile(tmpFile)
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	os.Remove(tmpFile)
	return data, nil
}

func (w *windowsBackend) cleanup() {}

// New creates a platform-specific screen capturer
func New() Capturer {
	tmpDir, err := os.MkdirTemp("", "screensentry-frame-*")
	if err != nil {
		slog.Error("failed to create temp dir", "error", err)
		tmpDir = os.TempDir()
	}
	return newBase(&windowsBackend{tempDir: tmpDir}, tmpDir)
}
