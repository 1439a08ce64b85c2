package git

import (
	gitconfig "github.com/go-git/go-git/v5/config"
	format "github.com/go-git/go-git/v5/plumbing/format/config"

	"stackit.dev/gitrewrite/internal/config"
)

// ConfigValue looks key up in the repository configuration, then the global
// and system files for repositories opened from disk. Configuration is
// re-read on every call.
func (r *Repository) ConfigValue(key string) (string, bool) {
	section, subsection, name, err := config.SplitKey(key)
	if err != nil {
		return "", false
	}

	if local, err := r.repo.Config(); err == nil && local.Raw != nil {
		if v, ok := lookupRaw(local.Raw, section, subsection, name); ok {
			return v, true
		}
	}
	if !r.userConfig {
		return "", false
	}
	for _, scope := range []gitconfig.Scope{gitconfig.GlobalScope, gitconfig.SystemScope} {
		cfg, err := gitconfig.LoadConfig(scope)
		if err != nil || cfg.Raw == nil {
			continue
		}
		if v, ok := lookupRaw(cfg.Raw, section, subsection, name); ok {
			return v, true
		}
	}
	return "", false
}

// HooksPath returns the directory hooks are loaded from
func (r *Repository) HooksPath() string {
	return config.GetHooksPath(r, r.workDir, r.gitDir)
}

func lookupRaw(raw *format.Config, section, subsection, name string) (string, bool) {
	if !raw.HasSection(section) {
		return "", false
	}
	s := raw.Section(section)
	if subsection == "" {
		if !s.HasOption(name) {
			return "", false
		}
		return s.Option(name), true
	}
	if !s.HasSubsection(subsection) {
		return "", false
	}
	sub := s.Subsection(subsection)
	if !sub.HasOption(name) {
		return "", false
	}
	return sub.Option(name), true
}
