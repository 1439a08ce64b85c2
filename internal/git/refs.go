package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"

	rwerrors "stackit.dev/gitrewrite/internal/errors"
)

// RefUpdate describes one reference change. A zero Old means the reference
// must not exist yet; a zero New deletes it.
type RefUpdate struct {
	Name plumbing.ReferenceName
	Old  plumbing.Hash
	New  plumbing.Hash
}

// String formats the update the way git feeds it to hooks: "<old> <new> <ref>"
func (u RefUpdate) String() string {
	return fmt.Sprintf("%s %s %s", u.Old, u.New, u.Name)
}

// FormatRefUpdates renders one line per update, newline terminated
func FormatRefUpdates(updates []RefUpdate) string {
	var sb strings.Builder
	for _, u := range updates {
		sb.WriteString(u.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ReadRef returns the id a reference points at, following symbolic refs.
// The boolean is false when the reference does not exist.
func (r *Repository) ReadRef(name plumbing.ReferenceName) (plumbing.Hash, bool, error) {
	ref, err := r.repo.Reference(name, true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return plumbing.ZeroHash, false, nil
	}
	if err != nil {
		return plumbing.ZeroHash, false, rwerrors.NewBackendError(fmt.Sprintf("read ref %s", name), err)
	}
	return ref.Hash(), true, nil
}

type appliedRef struct {
	name plumbing.ReferenceName
	prev *plumbing.Reference
}

// UpdateRefs applies updates in order, verifying each reference still holds
// its expected old value. When any update fails the ones already applied are
// restored before the error is returned.
func (r *Repository) UpdateRefs(ctx context.Context, updates []RefUpdate) error {
	applied := make([]appliedRef, 0, len(updates))
	for _, u := range updates {
		if err := ctx.Err(); err != nil {
			return errors.Join(err, r.rollback(applied))
		}
		name, prev, err := r.currentRef(u.Name)
		if err == nil {
			err = r.applyRef(name, prev, u)
		}
		if err != nil {
			return errors.Join(rwerrors.NewBackendError(fmt.Sprintf("update ref %s", u.Name), err), r.rollback(applied))
		}
		applied = append(applied, appliedRef{name: name, prev: prev})
	}
	return nil
}

// currentRef resolves symbolic names to the reference they point at and
// returns its current state, nil when absent
func (r *Repository) currentRef(name plumbing.ReferenceName) (plumbing.ReferenceName, *plumbing.Reference, error) {
	ref, err := r.repo.Reference(name, true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		if sym, symErr := r.repo.Storer.Reference(name); symErr == nil && sym.Type() == plumbing.SymbolicReference {
			return sym.Target(), nil, nil
		}
		return name, nil, nil
	}
	if err != nil {
		return name, nil, err
	}
	return ref.Name(), ref, nil
}

func (r *Repository) applyRef(name plumbing.ReferenceName, prev *plumbing.Reference, u RefUpdate) error {
	switch {
	case prev == nil && !u.Old.IsZero():
		return fmt.Errorf("expected %s at %s but it does not exist", name, u.Old)
	case prev != nil && prev.Hash() != u.Old:
		return fmt.Errorf("expected %s at %s but found %s", name, u.Old, prev.Hash())
	}

	if u.New.IsZero() {
		if prev == nil {
			return nil
		}
		return r.repo.Storer.RemoveReference(name)
	}

	ref := plumbing.NewHashReference(name, u.New)
	if prev == nil {
		return r.repo.Storer.SetReference(ref)
	}
	return r.repo.Storer.CheckAndSetReference(ref, prev)
}

func (r *Repository) rollback(applied []appliedRef) error {
	var errs []error
	for i := len(applied) - 1; i >= 0; i-- {
		a := applied[i]
		var err error
		if a.prev == nil {
			err = r.repo.Storer.RemoveReference(a.name)
		} else {
			err = r.repo.Storer.SetReference(a.prev)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", a.name, err))
		}
	}
	return errors.Join(errs...)
}
