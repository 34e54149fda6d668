package process

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Tools locates the flash tool (esptool) and the packer (mkspiffs).
// Overrides come from config; otherwise the bundle directory next to the
// executable is searched before PATH.
type Tools struct {
	FlashToolOverride []string
	PackerOverride    string
	BundleDir         string

	lookPath func(string) (string, error)
	stat     func(string) (os.FileInfo, error)
}

// NewTools creates a locator rooted at the executable's directory
func NewTools(flashTool []string, packer string) *Tools {
	return &Tools{
		FlashToolOverride: flashTool,
		PackerOverride:    packer,
		BundleDir:         bundleDir(),
		lookPath:          exec.LookPath,
		stat:              os.Stat,
	}
}

// bundleDir returns the directory holding the running executable, or the
// working directory when that cannot be determined
func bundleDir() string {
	if execPath, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
			execPath = resolved
		}
		return filepath.Dir(execPath)
	}
	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return "."
}

func (t *Tools) exists(path string) bool {
	info, err := t.stat(path)
	return err == nil && !info.IsDir()
}

// FlashTool returns the argv prefix used to invoke esptool
func (t *Tools) FlashTool() ([]string, error) {
	if len(t.FlashToolOverride) > 0 {
		return append([]string(nil), t.FlashToolOverride...), nil
	}

	// Bundled script: run it with whichever python is on PATH
	script := filepath.Join(t.BundleDir, "esptool", "esptool.py")
	if t.exists(script) {
		for _, name := range []string{"python", "python3"} {
			if py, err := t.lookPath(name); err == nil {
				return []string{py, script}, nil
			}
		}
		return nil, fmt.Errorf("%w: python executable not found in PATH", ErrToolNotFound)
	}

	for _, name := range []string{"esptool.py", "esptool"} {
		if path, err := t.lookPath(name); err == nil {
			return []string{path}, nil
		}
	}
	return nil, fmt.Errorf("%w: esptool not bundled and not in PATH", ErrToolNotFound)
}

// Packer returns the path of the mkspiffs binary
func (t *Tools) Packer() (string, error) {
	if t.PackerOverride != "" {
		return t.PackerOverride, nil
	}

	names := []string{"mkspiffs"}
	if runtime.GOOS == "windows" {
		names = []string{"mkspiffs.exe", "mkspiffs"}
	}

	for _, name := range names {
		if bundled := filepath.Join(t.BundleDir, name); t.exists(bundled) {
			return bundled, nil
		}
	}
	for _, name := range names {
		if path, err := t.lookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: mkspiffs not bundled and not in PATH", ErrToolNotFound)
}
