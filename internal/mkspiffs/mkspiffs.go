// Package mkspiffs assembles mkspiffs command lines for packing a directory
// into a SPIFFS image sized for the M5Dial partition table.
package mkspiffs

import (
	"fmt"
	"path/filepath"
	"strconv"
)

// Fixed image geometry.
const (
	BlockSize = 4096
	PageSize  = 256
	ImageSize = 0x160000
)

// DefaultExt is appended to output paths that have no extension.
const DefaultExt = ".bin"

// SizeHex returns the image size in the form mkspiffs is given it.
func SizeHex() string {
	return fmt.Sprintf("0x%X", ImageSize)
}

// BuildArgs returns the arguments for packing dir into the image at out.
func BuildArgs(dir, out string) []string {
	return []string{
		"-c", dir,
		"-b", strconv.Itoa(BlockSize),
		"-p", strconv.Itoa(PageSize),
		"-s", SizeHex(),
		out,
	}
}

// OutputPath appends DefaultExt when path has no extension.
func OutputPath(path string) string {
	if path == "" || filepath.Ext(path) != "" {
		return path
	}
	return path + DefaultExt
}
