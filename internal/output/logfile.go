package output

import (
	"os"
	"path/filepath"
)

// LogFilePath returns the path of the rotated log file.
// GIT_REWRITE_LOG_FILE overrides ~/.git-rewrite/logs/git-rewrite.log.
func LogFilePath() string {
	if customPath := os.Getenv("GIT_REWRITE_LOG_FILE"); customPath != "" {
		return customPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "git-rewrite.log"
	}
	return filepath.Join(homeDir, ".git-rewrite", "logs", "git-rewrite.log")
}
