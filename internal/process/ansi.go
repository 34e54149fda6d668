package process

import (
	"regexp"
	"strings"
)

// ANSI escape code pattern: colors, cursor movement, OSC titles, charset selects
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]|\x1b\][^\x07]*\x07|\x1b[()][AB012]`)

// StripANSI removes ANSI escape codes and carriage-return progress redraws
// from tool output so it can be logged and scraped as plain text
func StripANSI(s string) string {
	result := ansiRegex.ReplaceAllString(s, "")

	// Drop stray escape characters left by truncated sequences
	result = strings.ReplaceAll(result, "\x1b", "")

	// esptool redraws progress lines with \r; keep only the final redraw
	if !strings.Contains(result, "\r") {
		return result
	}
	lines := strings.Split(result, "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if j := strings.LastIndex(line, "\r"); j >= 0 {
			line = line[j+1:]
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
