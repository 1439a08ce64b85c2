package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	rwerrors "stackit.dev/gitrewrite/internal/errors"
)

func TestSignError(t *testing.T) {
	t.Run("backend failure matches both sign sentinels", func(t *testing.T) {
		err := fmt.Errorf("reword: %w", &rwerrors.CommitError{
			Kind: rwerrors.CommitSign,
			Err:  rwerrors.NewSignBackendError("gpg", "empty signature", nil),
		})
		require.ErrorIs(t, err, rwerrors.ErrSign)
		require.ErrorIs(t, err, rwerrors.ErrSignBackendFailed)
		require.NotErrorIs(t, err, rwerrors.ErrNoSigningKey)
	})

	t.Run("no key does not match backend failure", func(t *testing.T) {
		err := rwerrors.NewNoKeyError("user.signingkey is not set")
		require.ErrorIs(t, err, rwerrors.ErrNoSigningKey)
		require.NotErrorIs(t, err, rwerrors.ErrSignBackendFailed)
		require.Contains(t, err.Error(), "no key")
	})
}

func TestConflictsError(t *testing.T) {
	err := rwerrors.NewConflictsError("cherry-pick", []string{"a.txt", "dir/b.txt"})
	require.ErrorIs(t, err, rwerrors.ErrConflicts)
	require.Equal(t, "cherry-pick conflicts:\n  a.txt\n  dir/b.txt", err.Error())

	var conflicts *rwerrors.ConflictsError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &conflicts))
	require.Equal(t, []string{"a.txt", "dir/b.txt"}, conflicts.Paths)
}

func TestNothingWritten(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "not linear", err: fmt.Errorf("squash: %w", rwerrors.ErrNotLinear), want: true},
		{name: "ambiguous mainline", err: rwerrors.ErrAmbiguousMainline, want: true},
		{name: "conflicts", err: rwerrors.NewConflictsError("", []string{"x"}), want: true},
		{name: "hook", err: rwerrors.NewHookError("pre-commit", nil, 1, nil), want: true},
		{name: "aborted", err: &rwerrors.TransactionAbortedError{Cause: errors.New("boom")}, want: true},
		{name: "backend", err: rwerrors.NewBackendError("write commit", errors.New("disk full")), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, rwerrors.NothingWritten(tt.err))
		})
	}
}

func TestGitCommandError(t *testing.T) {
	inner := errors.New("exit status 128")
	err := rwerrors.NewGitCommandError("git", []string{"merge-tree"}, "", "fatal: bad object", inner)
	require.ErrorIs(t, err, inner)
	require.Contains(t, err.Error(), "stderr: fatal: bad object")
}
