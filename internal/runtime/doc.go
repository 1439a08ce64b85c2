// Package runtime provides the execution context for git-rewrite commands.
//
// It encapsulates shared dependencies needed by commands, such as the
// repository backend, logger, commit builder, rewriter and hook runner.
package runtime
