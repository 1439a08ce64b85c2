// Package git is the repository backend used by git-rewrite.
//
// It wraps go-git for:
//   - Object access (read commits and trees, write commits and trees)
//   - Configuration lookup across local, global and system scopes
//   - History walks and revision resolution
//   - Reference updates with compare-and-swap and rollback
//
// Three-way tree merges are delegated to `git merge-tree`, which is the only
// place this package runs the git binary.
package git
