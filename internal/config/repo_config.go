package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Reader looks up a git configuration value by its dotted key, e.g.
// "user.signingkey" or "gpg.ssh.program". The boolean reports whether the key
// is set at all; a key set without a value returns ("", true).
type Reader interface {
	ConfigValue(key string) (string, bool)
}

// MapReader is a Reader backed by a plain map. Section and variable names are
// matched case-insensitively, subsections exactly, like git does.
type MapReader map[string]string

// ConfigValue implements Reader
func (m MapReader) ConfigValue(key string) (string, bool) {
	want := NormalizeKey(key)
	for k, v := range m {
		if NormalizeKey(k) == want {
			return v, true
		}
	}
	return "", false
}

// NormalizeKey lowercases the section and variable parts of a dotted key,
// leaving any subsection untouched.
func NormalizeKey(key string) string {
	first := strings.Index(key, ".")
	last := strings.LastIndex(key, ".")
	if first < 0 {
		return strings.ToLower(key)
	}
	section := strings.ToLower(key[:first])
	name := strings.ToLower(key[last+1:])
	if first == last {
		return section + "." + name
	}
	return section + "." + key[first+1:last] + "." + name
}

// SplitKey splits a dotted key into section, subsection and variable name
func SplitKey(key string) (section, subsection, name string, err error) {
	first := strings.Index(key, ".")
	last := strings.LastIndex(key, ".")
	if first <= 0 || last == len(key)-1 {
		return "", "", "", fmt.Errorf("invalid config key %q", key)
	}
	section = key[:first]
	name = key[last+1:]
	if first != last {
		subsection = key[first+1 : last]
	}
	return section, subsection, name, nil
}

// GetString returns the value for key, or def when the key is unset or empty
func GetString(r Reader, key, def string) string {
	if r == nil {
		return def
	}
	value, ok := r.ConfigValue(key)
	if !ok || strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

// GetBool returns the boolean value for key, or def when the key is unset
func GetBool(r Reader, key string, def bool) (bool, error) {
	if r == nil {
		return def, nil
	}
	value, ok := r.ConfigValue(key)
	if !ok {
		return def, nil
	}
	b, err := ParseBool(value)
	if err != nil {
		return def, fmt.Errorf("bad boolean config value for %s: %w", key, err)
	}
	return b, nil
}

// ParseBool parses a git boolean. A key present without a value is true.
func ParseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", value)
}

// GetHooksPath returns the directory hooks are loaded from. A relative
// core.hooksPath is resolved against the work tree, matching git.
func GetHooksPath(r Reader, workDir, gitDir string) string {
	hooksPath := GetString(r, "core.hooksPath", "")
	if hooksPath == "" {
		return filepath.Join(gitDir, "hooks")
	}
	hooksPath = ExpandHome(hooksPath)
	if !filepath.IsAbs(hooksPath) {
		hooksPath = filepath.Join(workDir, hooksPath)
	}
	return hooksPath
}

// GetIdentity returns the configured name and email for role ("author" or
// "committer"). The role specific keys win over user.name and user.email.
func GetIdentity(r Reader, role string) (name, email string) {
	name = GetString(r, role+".name", GetString(r, "user.name", ""))
	email = GetString(r, role+".email", GetString(r, "user.email", ""))
	return name, email
}
