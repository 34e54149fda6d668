// Package esptool assembles esptool command lines for the M5Dial (ESP32-S3)
// and parses the text esptool prints back.
package esptool

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Fixed target parameters.
const (
	Chip        = "esp32s3"
	Baud        = 921600
	WriteOffset = 0x00290000
)

// flashSizeMarker precedes the size token in `flash_id` output.
const flashSizeMarker = "Detected flash size:"

var (
	ErrMarkerAbsent = errors.New("flash size not detected")
	ErrBadFlashSize = errors.New("unrecognised flash size")
)

// OffsetHex returns the write offset in the form esptool is given it.
func OffsetHex() string {
	return fmt.Sprintf("0x%08X", WriteOffset)
}

// ProbeArgs returns the arguments for reading the flash chip id on port.
func ProbeArgs(port string) []string {
	return []string{"--chip", Chip, "--port", port, "flash_id"}
}

// WriteArgs returns the arguments for writing image to the SPIFFS partition.
func WriteArgs(port, image string) []string {
	return []string{
		"--chip", Chip,
		"--port", port,
		"--baud", strconv.Itoa(Baud),
		"write_flash", "-z", OffsetHex(), image,
	}
}

// OutcomeKind classifies the result of parsing probe output.
type OutcomeKind int

const (
	FlashSizeDetected OutcomeKind = iota
	MarkerAbsent
	ParseError
)

func (k OutcomeKind) String() string {
	switch k {
	case FlashSizeDetected:
		return "detected"
	case MarkerAbsent:
		return "marker-absent"
	case ParseError:
		return "parse-error"
	default:
		return "unknown"
	}
}

// ProbeOutcome is the typed result of ParseFlashSize.
type ProbeOutcome struct {
	Kind  OutcomeKind
	Bytes int64  // Set when Kind is FlashSizeDetected
	Token string // Raw size token following the marker, if any
}

// Err returns nil for a detected size and a wrapped sentinel otherwise.
func (o ProbeOutcome) Err() error {
	switch o.Kind {
	case FlashSizeDetected:
		return nil
	case MarkerAbsent:
		return ErrMarkerAbsent
	default:
		if o.Token == "" {
			return fmt.Errorf("%w: missing value", ErrBadFlashSize)
		}
		return fmt.Errorf("%w: %q", ErrBadFlashSize, o.Token)
	}
}

var unitMultipliers = map[string]int64{
	"MB": 1024 * 1024,
	"KB": 1024,
}

// ParseFlashSize scans esptool output for "Detected flash size: <N><unit>"
// and converts the value to bytes. Units MB and KB are understood; anything
// after the unit (punctuation, a trailing ellipsis) is ignored.
func ParseFlashSize(output string) ProbeOutcome {
	idx := strings.Index(output, flashSizeMarker)
	if idx < 0 {
		return ProbeOutcome{Kind: MarkerAbsent}
	}

	fields := strings.Fields(output[idx+len(flashSizeMarker):])
	if len(fields) == 0 {
		return ProbeOutcome{Kind: ParseError}
	}
	token := fields[0]

	i := 0
	for i < len(token) && token[i] >= '0' && token[i] <= '9' {
		i++
	}
	j := i
	for j < len(token) && unicode.IsLetter(rune(token[j])) {
		j++
	}

	mult, ok := unitMultipliers[strings.ToUpper(token[i:j])]
	if i == 0 || !ok {
		return ProbeOutcome{Kind: ParseError, Token: token}
	}
	n, err := strconv.ParseInt(token[:i], 10, 64)
	if err != nil || n <= 0 || n > math.MaxInt64/mult {
		return ProbeOutcome{Kind: ParseError, Token: token}
	}
	return ProbeOutcome{Kind: FlashSizeDetected, Bytes: n * mult, Token: token}
}

// FormatSize renders a byte count the way esptool prints flash sizes.
func FormatSize(n int64) string {
	switch {
	case n >= 1024*1024 && n%(1024*1024) == 0:
		return fmt.Sprintf("%dMB", n/(1024*1024))
	case n >= 1024 && n%1024 == 0:
		return fmt.Sprintf("%dKB", n/1024)
	default:
		return fmt.Sprintf("%dB", n)
	}
}
