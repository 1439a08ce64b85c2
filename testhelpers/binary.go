package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

// lazyBinary builds a binary on first use and remembers how to remove it
type lazyBinary struct {
	build   func() (string, func(), error)
	once    sync.Once
	path    string
	err     error
	cleanup func()
	mu      sync.Mutex
}

func (b *lazyBinary) get() string {
	b.once.Do(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.path != "" {
			return
		}
		path, cleanup, err := b.build()
		if err != nil {
			b.err = err
			return
		}
		b.path = path
		b.cleanup = cleanup
	})
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.path
}

func (b *lazyBinary) set(path string, cleanup func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.path = path
	b.cleanup = cleanup
}

func (b *lazyBinary) remove() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cleanup != nil {
		b.cleanup()
		b.cleanup = nil
	}
}

var shared = &lazyBinary{build: buildBinary}

// SetSharedBinaryPath sets the shared binary path for tests.
// This is called by TestMain in cli_test package.
func SetSharedBinaryPath(path string) {
	shared.set(path, nil)
}

// GetSharedBinaryPath returns the shared binary path, building it if necessary.
// This function is safe to call from any test package and will build the binary
// lazily on first access if it hasn't been set via SetSharedBinaryPath. A
// lazily built binary is removed by CleanupSharedBinary.
func GetSharedBinaryPath() string {
	return shared.get()
}

// GetBinaryError returns any error that occurred during binary building.
func GetBinaryError() error {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	return shared.err
}

// CleanupSharedBinary removes the shared binary if this package built it.
// Packages that rely on the lazy build should call it from their TestMain.
func CleanupSharedBinary() {
	shared.remove()
}

// buildBinary builds the git-rewrite binary into a temp directory and returns
// its path and a cleanup function.
func buildBinary() (string, func(), error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	moduleRoot := findModuleRoot(wd)
	if moduleRoot == "" {
		return "", nil, fmt.Errorf("could not find module root (go.mod) starting from %s", wd)
	}

	tmpDir, err := os.MkdirTemp("", "git-rewrite-test-binary-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	cleanup := func() {
		_ = os.RemoveAll(tmpDir) // Ignore cleanup errors
	}

	binaryPath := filepath.Join(tmpDir, "git-rewrite")

	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/git-rewrite")
	cmd.Dir = moduleRoot
	output, err := cmd.CombinedOutput()
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to build: %s: %w", string(output), err)
	}

	return binaryPath, cleanup, nil
}

// findModuleRoot walks up the directory tree from startDir to find the module root
// (directory containing go.mod file).
func findModuleRoot(startDir string) string {
	dir := startDir
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// TestMain builds the git-rewrite binary once before the package's tests run.
// Packages can use this by calling testhelpers.TestMain(m, nil) in their own TestMain.
func TestMain(m *testing.M, cleanup func()) {
	binaryPath, binaryCleanup, err := buildBinary()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build git-rewrite binary: %v\n", err)
		os.Exit(1)
	}
	shared.set(binaryPath, binaryCleanup)

	code := m.Run()

	CleanupSharedBinary()
	if cleanup != nil {
		cleanup()
	}
	os.Exit(code)
}
