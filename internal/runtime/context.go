package runtime

import (
	"context"
	"fmt"

	"stackit.dev/gitrewrite/internal/commit"
	"stackit.dev/gitrewrite/internal/git"
	"stackit.dev/gitrewrite/internal/hooks"
	"stackit.dev/gitrewrite/internal/identity"
	"stackit.dev/gitrewrite/internal/output"
	"stackit.dev/gitrewrite/internal/rewrite"
	"stackit.dev/gitrewrite/internal/signing"
)

// SignMode selects how commits created by a command are signed
type SignMode int

const (
	// SignFromConfig signs when commit.gpgsign is set
	SignFromConfig SignMode = iota
	// SignAlways signs regardless of commit.gpgsign
	SignAlways
	// SignNever never signs
	SignNever
)

// Context provides access to the repository and services for commands
type Context struct {
	Repo       *git.Repository
	Splog      *output.Splog
	Identities *identity.Resolver
	Builder    *commit.Builder
	Rewriter   *rewrite.Rewriter
	Hooks      *hooks.Runner
}

// NewContext wires the services for repo
func NewContext(repo *git.Repository, splog *output.Splog) *Context {
	if splog == nil {
		splog = output.NewSplog()
	}
	logger := splog.Logger()
	identities := identity.NewResolver(repo)
	builder := commit.NewBuilder(repo, identities)

	return &Context{
		Repo:       repo,
		Splog:      splog,
		Identities: identities,
		Builder:    builder,
		Rewriter:   rewrite.New(repo, builder, logger),
		Hooks:      hooks.FromRepository(repo, logger),
	}
}

// Open opens the repository containing path and creates a context for it
func Open(path string, splog *output.Splog) (*Context, error) {
	repo, err := git.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}
	return NewContext(repo, splog), nil
}

// Signer returns the signer for mode, nil when commits stay unsigned
func (c *Context) Signer(ctx context.Context, mode SignMode) (signing.Signer, error) {
	switch mode {
	case SignNever:
		return nil, nil
	case SignAlways:
		return signing.Require(ctx, c.Repo)
	default:
		return signing.FromConfig(ctx, c.Repo)
	}
}
