// Package identity resolves the author and committer identities stamped on
// new commits.
package identity

import (
	"fmt"
	"os"
	"os/user"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing/object"

	"stackit.dev/gitrewrite/internal/config"
	rwerrors "stackit.dev/gitrewrite/internal/errors"
)

// Identity is a name, an email and a timestamp
type Identity = object.Signature

// Role selects which identity is resolved
type Role string

const (
	RoleAuthor    Role = "author"
	RoleCommitter Role = "committer"
)

// Resolver derives identities from, in order: an explicit override, the
// GIT_<ROLE>_NAME and GIT_<ROLE>_EMAIL environment variables, the
// configuration, and finally the operating system user. Name and email fall
// through independently. Nothing is cached; every call re-reads its inputs.
type Resolver struct {
	Config config.Reader

	// LookupEnv reads environment variables, os.LookupEnv when nil
	LookupEnv func(string) (string, bool)
	// Now is the clock, time.Now when nil
	Now func() time.Time
	// Default supplies the last-resort name and email
	Default func() (name, email string)

	// Author and Committer override resolution when set. Empty fields still
	// fall through to the other sources.
	Author    *Identity
	Committer *Identity
}

// NewResolver creates a Resolver reading the real environment and clock
func NewResolver(cfg config.Reader) *Resolver {
	return &Resolver{Config: cfg}
}

// ResolveAuthor returns the identity for the author field of a new commit
func (r *Resolver) ResolveAuthor() (Identity, error) {
	return r.resolve(RoleAuthor, r.Author)
}

// ResolveCommitter returns the identity for the committer field of a new commit
func (r *Resolver) ResolveCommitter() (Identity, error) {
	return r.resolve(RoleCommitter, r.Committer)
}

func (r *Resolver) resolve(role Role, override *Identity) (Identity, error) {
	var id Identity
	if override != nil {
		id = *override
	}

	prefix := "GIT_" + strings.ToUpper(string(role)) + "_"
	cfgName, cfgEmail := config.GetIdentity(r.Config, string(role))
	defName, defEmail := "", ""
	if id.Name == "" || id.Email == "" {
		defName, defEmail = r.defaults()
	}

	id.Name = firstNonEmpty(id.Name, r.env(prefix+"NAME"), cfgName, defName)
	id.Email = firstNonEmpty(id.Email, r.env(prefix+"EMAIL"), cfgEmail, defEmail)
	if id.Name == "" && id.Email == "" {
		return Identity{}, fmt.Errorf("%s: %w", role, rwerrors.ErrNoIdentity)
	}

	if id.When.IsZero() {
		id.When = r.now()
	}
	id.When = id.When.Truncate(time.Second)
	return id, nil
}

func (r *Resolver) env(key string) string {
	lookup := r.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, _ := lookup(key)
	return strings.TrimSpace(v)
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Resolver) defaults() (string, string) {
	if r.Default != nil {
		return r.Default()
	}
	return SystemDefault()
}

// SystemDefault derives an identity from the current OS user and hostname,
// the way git does when nothing is configured
func SystemDefault() (name, email string) {
	u, err := user.Current()
	if err != nil {
		return "", ""
	}
	name = u.Name
	if name == "" {
		name = u.Username
	}
	if host, err := os.Hostname(); err == nil && u.Username != "" {
		email = u.Username + "@" + host
	}
	return name, email
}

// MapEnv adapts a map to the LookupEnv signature
func MapEnv(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
