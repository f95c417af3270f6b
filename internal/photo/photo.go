// Package photo acquires photo references for user records, either by picking
// an existing image from a library directory or by running a capture command.
package photo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrPermissionDenied indicates the library or camera may not be accessed.
// Callers show a notice and leave the current photo unchanged.
var ErrPermissionDenied = errors.New("photo: permission denied")

// Picker acquires a photo reference. ok is false when the user cancelled or
// nothing was available; uri is then empty.
type Picker interface {
	PickFromLibrary(ctx context.Context) (uri string, ok bool, err error)
	CaptureFromCamera(ctx context.Context) (uri string, ok bool, err error)
}

// outputToken in a camera command is replaced by the capture target path.
const outputToken = "{output}"

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".heic": true,
}

var _ Picker = (*DirPicker)(nil)

// DirPicker treats a directory as the photo library. Picking returns the most
// recently modified image in it; capturing runs CameraCommand via sh -c and
// stores the result in the same directory.
type DirPicker struct {
	LibraryDir    string
	CameraCommand string
}

// NewDirPicker creates a DirPicker over libraryDir. An empty cameraCommand
// means no camera is available and captures are denied.
func NewDirPicker(libraryDir, cameraCommand string) *DirPicker {
	return &DirPicker{LibraryDir: libraryDir, CameraCommand: cameraCommand}
}

// PickFromLibrary returns the newest image in the library directory.
func (p *DirPicker) PickFromLibrary(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	entries, err := os.ReadDir(p.LibraryDir)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return "", false, fmt.Errorf("%w: library %s", ErrPermissionDenied, p.LibraryDir)
		}
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("photo: reading library: %w", err)
	}

	var newest string
	var newestTime time.Time
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestTime) {
			newest = e.Name()
			newestTime = info.ModTime()
		}
	}
	if newest == "" {
		return "", false, nil
	}

	path := filepath.Join(p.LibraryDir, newest)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return "", false, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return "", false, fmt.Errorf("photo: opening %s: %w", path, err)
	}
	f.Close()
	return FileURI(path)
}

// CaptureFromCamera runs the camera command with a fresh output path in the
// library directory. A command that exits cleanly without producing the file
// counts as a cancelled capture.
func (p *DirPicker) CaptureFromCamera(ctx context.Context) (string, bool, error) {
	if p.CameraCommand == "" {
		return "", false, fmt.Errorf("%w: no camera configured", ErrPermissionDenied)
	}
	if err := os.MkdirAll(p.LibraryDir, 0o755); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return "", false, fmt.Errorf("%w: library %s", ErrPermissionDenied, p.LibraryDir)
		}
		return "", false, fmt.Errorf("photo: creating library: %w", err)
	}

	out := filepath.Join(p.LibraryDir, "capture-"+uuid.NewString()+".jpg")
	command := p.CameraCommand
	if strings.Contains(command, outputToken) {
		command = strings.ReplaceAll(command, outputToken, shellQuote(out))
	} else {
		command += " " + shellQuote(out)
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return "", false, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return "", false, fmt.Errorf("photo: camera command failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	if _, err := os.Stat(out); err != nil {
		return "", false, nil
	}
	return FileURI(out)
}

// FileURI converts a filesystem path to an absolute file:// URI.
func FileURI(path string) (string, bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false, fmt.Errorf("photo: resolving %s: %w", path, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), true, nil
}

// shellQuote wraps s in single quotes for sh.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
