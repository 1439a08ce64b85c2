package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// minMergeTreeVersion is the first git release whose merge-tree accepts
// tree ids for both sides and --merge-base.
var minMergeTreeVersion = Version{Major: 2, Minor: 44}

// Version is a parsed `git --version`
type Version struct {
	Major int
	Minor int
	Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Less reports whether v is older than other
func (v Version) Less(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	return v.Patch < other.Patch
}

// ParseVersion parses the output of `git --version`. Vendor suffixes such as
// "(Apple Git-146)" or ".windows.1" are tolerated.
func ParseVersion(out string) (Version, bool) {
	s := strings.TrimSpace(out)
	if idx := strings.Index(s, "git version"); idx >= 0 {
		s = strings.TrimSpace(s[idx+len("git version"):])
	}
	start := strings.IndexAny(s, "0123456789")
	if start < 0 {
		return Version{}, false
	}
	s = s[start:]
	end := 0
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	parts := strings.Split(strings.Trim(s[:end], "."), ".")
	if len(parts) < 2 {
		return Version{}, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Version{}, false
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Version{}, false
	}
	v := Version{Major: major, Minor: minor}
	if len(parts) >= 3 {
		if p, err := strconv.Atoi(parts[2]); err == nil {
			v.Patch = p
		}
	}
	return v, true
}

var (
	versionOnce sync.Once
	versionInfo Version
	versionErr  error
)

// InstalledVersion runs `git --version` once per process and caches the result
func InstalledVersion(ctx context.Context) (Version, error) {
	versionOnce.Do(func() {
		out, err := NewCommandRunner("").Run(ctx, "--version")
		if err != nil {
			versionErr = fmt.Errorf("git --version: %w", err)
			return
		}
		v, ok := ParseVersion(out)
		if !ok {
			versionErr = fmt.Errorf("unable to parse git version output: %q", out)
			return
		}
		versionInfo = v
	})
	return versionInfo, versionErr
}

// CheckMergeTreeVersion returns an error when v cannot run the tree merges
// used by CLIMerger
func CheckMergeTreeVersion(v Version) error {
	if v.Less(minMergeTreeVersion) {
		return fmt.Errorf("git %s is too old; three-way tree merges require git >= %s", v, minMergeTreeVersion)
	}
	return nil
}
