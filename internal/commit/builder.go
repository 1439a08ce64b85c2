// Package commit turns trees, parents and messages into commit objects,
// optionally signed.
package commit

import (
	"context"
	"errors"
	"io"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	rwerrors "stackit.dev/gitrewrite/internal/errors"
	"stackit.dev/gitrewrite/internal/identity"
	"stackit.dev/gitrewrite/internal/signing"
)

// ObjectWriter persists commit objects
type ObjectWriter interface {
	WriteCommit(ctx context.Context, c *object.Commit) (plumbing.Hash, error)
}

// IdentityResolver supplies identities for new commits
type IdentityResolver interface {
	ResolveAuthor() (identity.Identity, error)
	ResolveCommitter() (identity.Identity, error)
}

// Descriptor is everything a commit is made of except its signature
type Descriptor struct {
	Tree      plumbing.Hash
	Parents   []plumbing.Hash
	Message   string
	Author    identity.Identity
	Committer identity.Identity
}

// Builder creates commit objects
type Builder struct {
	Objects    ObjectWriter
	Identities IdentityResolver
}

// NewBuilder creates a Builder
func NewBuilder(objects ObjectWriter, identities IdentityResolver) *Builder {
	return &Builder{Objects: objects, Identities: identities}
}

// Build creates a commit authored and committed by the resolved identities
func (b *Builder) Build(ctx context.Context, tree plumbing.Hash, parents []plumbing.Hash, message string, signer signing.Signer) (plumbing.Hash, error) {
	author, err := b.Identities.ResolveAuthor()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	committer, err := b.Identities.ResolveCommitter()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return b.Create(ctx, Descriptor{
		Tree:      tree,
		Parents:   parents,
		Message:   message,
		Author:    author,
		Committer: committer,
	}, signer)
}

// Committer resolves a fresh committer identity
func (b *Builder) Committer() (identity.Identity, error) {
	return b.Identities.ResolveCommitter()
}

// Create persists d, signed by signer when it is not nil. Nothing is written
// when signing fails.
func (b *Builder) Create(ctx context.Context, d Descriptor, signer signing.Signer) (plumbing.Hash, error) {
	c, err := b.Prepare(ctx, d, signer)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return b.Write(ctx, c)
}

// Prepare assembles and signs d without writing it. The signature is
// computed over the serialization without a signature and stored in the
// gpgsig header.
func (b *Builder) Prepare(ctx context.Context, d Descriptor, signer signing.Signer) (*object.Commit, error) {
	c := &object.Commit{
		Author:       d.Author,
		Committer:    d.Committer,
		Message:      d.Message,
		TreeHash:     d.Tree,
		ParentHashes: append([]plumbing.Hash(nil), d.Parents...),
	}
	if signer == nil {
		return c, nil
	}

	buffer, err := Payload(c)
	if err != nil {
		return nil, &rwerrors.CommitError{Kind: rwerrors.CommitBackend, Err: err}
	}
	sig, err := signer.Sign(ctx, buffer, d.Committer)
	if err != nil {
		if !errors.Is(err, rwerrors.ErrSign) {
			err = rwerrors.NewSignBackendError("", "signer failed", err)
		}
		return nil, &rwerrors.CommitError{Kind: rwerrors.CommitSign, Err: err}
	}
	if len(sig) == 0 {
		return nil, &rwerrors.CommitError{
			Kind: rwerrors.CommitSign,
			Err:  rwerrors.NewSignBackendError("", "signer returned an empty signature", nil),
		}
	}
	c.PGPSignature = string(sig)
	return c, nil
}

// Write persists a prepared commit
func (b *Builder) Write(ctx context.Context, c *object.Commit) (plumbing.Hash, error) {
	hash, err := b.Objects.WriteCommit(ctx, c)
	if err != nil {
		return plumbing.ZeroHash, &rwerrors.CommitError{Kind: rwerrors.CommitBackend, Err: err}
	}
	return hash, nil
}

// Hash returns the id c will have once written, signature included
func Hash(c *object.Commit) (plumbing.Hash, error) {
	obj := &plumbing.MemoryObject{}
	if err := c.Encode(obj); err != nil {
		return plumbing.ZeroHash, &rwerrors.CommitError{Kind: rwerrors.CommitBackend, Err: err}
	}
	return obj.Hash(), nil
}

// Payload returns the canonical serialization of c without any signature,
// the bytes a signer signs
func Payload(c *object.Commit) ([]byte, error) {
	obj := &plumbing.MemoryObject{}
	if err := c.EncodeWithoutSignature(obj); err != nil {
		return nil, err
	}
	r, err := obj.Reader()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
