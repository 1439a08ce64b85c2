package utils

import (
	"strings"
)

// CleanCommitMessage strips comment lines and surrounding blank lines, and
// collapses runs of blank lines. A non-empty result ends with one newline.
func CleanCommitMessage(msg string) string {
	var lines []string
	blank := false
	for _, line := range strings.Split(msg, "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			blank = len(lines) > 0
			continue
		}
		if blank {
			lines = append(lines, "")
			blank = false
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
