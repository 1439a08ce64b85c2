// Package errors provides sentinel errors and custom error types for git-rewrite.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrBackend indicates a failure inside the repository backend (object store, refs, config)
	ErrBackend = errors.New("repository backend failure")

	// ErrSign indicates that producing a commit signature failed
	ErrSign = errors.New("signing failed")

	// ErrSignBackendFailed indicates that the signing program failed or produced no signature
	ErrSignBackendFailed = errors.New("signing backend failed")

	// ErrNoSigningKey indicates that signing was requested but no key could be resolved
	ErrNoSigningKey = errors.New("no signing key configured")

	// ErrNoIdentity indicates that neither a name nor an email could be resolved for an identity
	ErrNoIdentity = errors.New("unable to resolve identity")

	// ErrConflicts indicates that a three-way merge produced conflicting paths
	ErrConflicts = errors.New("merge conflicts")

	// ErrNotLinear indicates that a commit sequence is not a contiguous linear chain
	ErrNotLinear = errors.New("commits do not form a linear chain")

	// ErrAmbiguousMainline indicates a merge commit was cherry-picked without a mainline parent
	ErrAmbiguousMainline = errors.New("merge commit requires a mainline parent")

	// ErrInvalidMainline indicates a mainline parent number that does not match the commit
	ErrInvalidMainline = errors.New("invalid mainline parent")

	// ErrEmptyChain indicates that squash was called without commits
	ErrEmptyChain = errors.New("no commits to squash")

	// ErrHookFailed indicates that a hook exited with a non-zero status
	ErrHookFailed = errors.New("hook failed")

	// ErrTransactionAborted indicates that a reference transaction was aborted
	ErrTransactionAborted = errors.New("reference transaction aborted")
)

// BackendError wraps a failure reported by the repository backend.
// The underlying error is passed through verbatim.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Is returns true if the target error is ErrBackend
func (e *BackendError) Is(target error) bool {
	return target == ErrBackend
}

// NewBackendError creates a new BackendError
func NewBackendError(op string, err error) *BackendError {
	return &BackendError{Op: op, Err: err}
}

// SignErrorKind distinguishes signing failures
type SignErrorKind int

const (
	// SignBackendFailed means the signing program failed or returned nothing usable
	SignBackendFailed SignErrorKind = iota
	// SignNoKey means no signing key could be resolved
	SignNoKey
)

func (k SignErrorKind) String() string {
	switch k {
	case SignNoKey:
		return "no key"
	default:
		return "backend failed"
	}
}

// SignError represents a failure to produce a signature
type SignError struct {
	Kind    SignErrorKind
	Program string
	Message string
	Err     error
}

func (e *SignError) Error() string {
	msg := "sign"
	if e.Program != "" {
		msg += fmt.Sprintf(" (%s)", e.Program)
	}
	msg += ": " + e.Kind.String()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *SignError) Unwrap() error {
	return e.Err
}

// Is matches ErrSign and the sentinel for the error's kind
func (e *SignError) Is(target error) bool {
	switch target {
	case ErrSign:
		return true
	case ErrSignBackendFailed:
		return e.Kind == SignBackendFailed
	case ErrNoSigningKey:
		return e.Kind == SignNoKey
	}
	return false
}

// NewSignBackendError creates a SignError for a failed signing program
func NewSignBackendError(program, message string, err error) *SignError {
	return &SignError{Kind: SignBackendFailed, Program: program, Message: message, Err: err}
}

// NewNoKeyError creates a SignError for an unresolvable signing key
func NewNoKeyError(message string) *SignError {
	return &SignError{Kind: SignNoKey, Message: message}
}

// CommitErrorKind distinguishes commit creation failures
type CommitErrorKind int

const (
	// CommitBackend means persisting the commit object failed
	CommitBackend CommitErrorKind = iota
	// CommitSign means the signer failed
	CommitSign
)

// CommitError represents a failure to create a commit object
type CommitError struct {
	Kind CommitErrorKind
	Err  error
}

func (e *CommitError) Error() string {
	if e.Kind == CommitSign {
		return fmt.Sprintf("create commit: %v", e.Err)
	}
	return fmt.Sprintf("create commit: write object: %v", e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// ConflictsError represents a merge that left conflicting paths
type ConflictsError struct {
	Op    string
	Paths []string
}

func (e *ConflictsError) Error() string {
	op := e.Op
	if op == "" {
		op = "merge"
	}
	return fmt.Sprintf("%s conflicts:\n  %s", op, strings.Join(e.Paths, "\n  "))
}

// Is returns true if the target error is ErrConflicts
func (e *ConflictsError) Is(target error) bool {
	return target == ErrConflicts
}

// NewConflictsError creates a new ConflictsError
func NewConflictsError(op string, paths []string) *ConflictsError {
	return &ConflictsError{Op: op, Paths: paths}
}

// HookError represents a hook that exited with a non-zero status or could not be run
type HookError struct {
	Hook     string
	Args     []string
	ExitCode int
	Err      error
}

func (e *HookError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("`%s` hook failed: %v", e.Hook, e.Err)
	}
	return fmt.Sprintf("`%s` hook failed with code %d", e.Hook, e.ExitCode)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

// Is returns true if the target error is ErrHookFailed
func (e *HookError) Is(target error) bool {
	return target == ErrHookFailed
}

// NewHookError creates a new HookError
func NewHookError(hook string, args []string, exitCode int, err error) *HookError {
	return &HookError{Hook: hook, Args: args, ExitCode: exitCode, Err: err}
}

// TransactionAbortedError reports why a reference transaction was aborted.
// No reference was modified when this error is returned.
type TransactionAbortedError struct {
	Cause error
}

func (e *TransactionAbortedError) Error() string {
	return fmt.Sprintf("reference transaction aborted: %v", e.Cause)
}

func (e *TransactionAbortedError) Unwrap() error {
	return e.Cause
}

// Is returns true if the target error is ErrTransactionAborted
func (e *TransactionAbortedError) Is(target error) bool {
	return target == ErrTransactionAborted
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}

// NothingWritten reports whether err is a policy failure detected before any
// object or reference was written.
func NothingWritten(err error) bool {
	for _, target := range []error{
		ErrConflicts,
		ErrNotLinear,
		ErrAmbiguousMainline,
		ErrInvalidMainline,
		ErrEmptyChain,
		ErrHookFailed,
		ErrTransactionAborted,
		ErrSign,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
