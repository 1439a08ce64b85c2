package utils

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsInteractive reports whether both stdin and stdout are terminals.
// GIT_REWRITE_NON_INTERACTIVE forces non-interactive mode.
func IsInteractive() bool {
	if os.Getenv("GIT_REWRITE_NON_INTERACTIVE") != "" {
		return false
	}
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
