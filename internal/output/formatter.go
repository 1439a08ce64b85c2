package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// ShortIDLength is the number of hex digits shown for abbreviated commit ids
const ShortIDLength = 7

// ConfigureColor turns styling off when w is not a terminal
func ConfigureColor(w io.Writer) {
	if !IsTerminal(w) || os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// IsTerminal reports whether w is a terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ShortID abbreviates a commit id
func ShortID(hash plumbing.Hash) string {
	return hash.String()[:ShortIDLength]
}

// ColorID styles an abbreviated commit id
func ColorID(hash plumbing.Hash) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("3")).
		Render(ShortID(hash))
}

// ColorDim makes text dim/gray
func ColorDim(text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Render(text)
}

// ColorRef colors a reference name
func ColorRef(name string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("6")).
		Render(name)
}

// Subject returns the first line of a commit message
func Subject(message string) string {
	subject, _, _ := strings.Cut(strings.TrimLeft(message, "\n"), "\n")
	return subject
}

// FormatCommitLine renders "<id> <subject> (<author>)" for log output
func FormatCommitLine(c *object.Commit) string {
	return fmt.Sprintf("%s %s %s", ColorID(c.Hash), Subject(c.Message), ColorDim("("+c.Author.Name+")"))
}

// FormatRewrite renders "<old> -> <new>" for a rewritten commit
func FormatRewrite(old, new plumbing.Hash) string {
	return fmt.Sprintf("%s -> %s", ColorID(old), ColorID(new))
}
