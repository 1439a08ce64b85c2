// Package config provides typed access to the git configuration keys that
// git-rewrite consults.
//
// It handles:
//   - Git boolean parsing (true/yes/on/1 and friends)
//   - Commit signing settings (commit.gpgsign, gpg.format, gpg.*.program, user.signingkey)
//   - Hook location (core.hooksPath)
//   - Identity keys (user.*, author.*, committer.*)
package config
