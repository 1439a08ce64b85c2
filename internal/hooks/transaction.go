package hooks

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"

	rwerrors "stackit.dev/gitrewrite/internal/errors"
	"stackit.dev/gitrewrite/internal/git"
)

const referenceTransactionHook = "reference-transaction"

// TxState is the state of a reference transaction
type TxState int

const (
	TxOpen TxState = iota
	TxPrepared
	TxCommitted
	TxAborted
)

// String returns the state name passed to the reference-transaction hook
func (s TxState) String() string {
	switch s {
	case TxPrepared:
		return "prepared"
	case TxCommitted:
		return "committed"
	case TxAborted:
		return "aborted"
	default:
		return "open"
	}
}

// Applier performs the reference updates of a prepared transaction
type Applier func(ctx context.Context, updates []git.RefUpdate) error

// Transaction drives the reference-transaction hook through
// Open -> Prepared -> Committed, or to Aborted from Open or Prepared.
type Transaction struct {
	runner  *Runner
	updates []git.RefUpdate
	state   TxState
}

// NewTransaction starts an open transaction for updates
func (r *Runner) NewTransaction(updates []git.RefUpdate) *Transaction {
	return &Transaction{runner: r, updates: updates}
}

// State returns the current state
func (t *Transaction) State() TxState {
	return t.state
}

// transition moves the transaction to state `to` and runs the hook with the
// state name. Only a failing prepared hook is reported; the terminal states
// log hook failures.
func (t *Transaction) transition(ctx context.Context, to TxState) error {
	switch {
	case t.state == TxOpen && to == TxPrepared:
	case t.state == TxPrepared && to == TxCommitted:
	case (t.state == TxOpen || t.state == TxPrepared) && to == TxAborted:
	default:
		return fmt.Errorf("invalid reference transaction transition from %s to %s", t.state, to)
	}
	t.state = to

	args := []string{to.String()}
	stdin := []byte(git.FormatRefUpdates(t.updates))
	res, err := t.runner.exec(ctx, referenceTransactionHook, args, stdin)
	if res.Skipped {
		return nil
	}
	if err == nil && res.ExitCode == 0 {
		return nil
	}

	hookErr := rwerrors.NewHookError(referenceTransactionHook, args, res.ExitCode, err)
	if to == TxPrepared {
		return hookErr
	}
	t.runner.logger().Warn("hook failed", "hook", referenceTransactionHook, "state", to.String(), "error", hookErr)
	return nil
}

// RunReferenceTransaction prepares updates with the reference-transaction
// hook, applies them and reports the outcome to the hook. A failing prepared
// hook or applier aborts the transaction: no reference is changed and
// *TransactionAbortedError is returned.
func (r *Runner) RunReferenceTransaction(ctx context.Context, updates []git.RefUpdate, apply Applier) (TxState, error) {
	tx := r.NewTransaction(updates)

	if err := tx.transition(ctx, TxPrepared); err != nil {
		return tx.abort(ctx, err)
	}
	if err := apply(ctx, updates); err != nil {
		return tx.abort(ctx, err)
	}
	if err := tx.transition(ctx, TxCommitted); err != nil {
		return tx.State(), err
	}
	r.logger().Debug("updated references", "refs", refNames(updates))
	return TxCommitted, nil
}

func (t *Transaction) abort(ctx context.Context, cause error) (TxState, error) {
	if err := t.transition(ctx, TxAborted); err != nil {
		t.runner.logger().Warn("failed to abort reference transaction", "error", err)
	}
	return TxAborted, &rwerrors.TransactionAbortedError{Cause: cause}
}

// Rewritten pairs a commit with the commit that replaced it
type Rewritten struct {
	Old plumbing.Hash
	New plumbing.Hash
}

// RunPostRewrite runs the post-rewrite hook with command ("amend" or
// "rebase") and one "old new" line per pair, in processing order. The hook
// never fails the caller.
func (r *Runner) RunPostRewrite(ctx context.Context, command string, pairs []Rewritten) Result {
	var sb strings.Builder
	for _, p := range pairs {
		fmt.Fprintf(&sb, "%s %s\n", p.Old, p.New)
	}
	res, _ := r.Run(ctx, "post-rewrite", []string{command}, []byte(sb.String()))
	return res
}

func refNames(updates []git.RefUpdate) string {
	names := make([]string, 0, len(updates))
	for _, u := range updates {
		names = append(names, u.Name.String())
	}
	return strings.Join(names, ",")
}
