// Package version provides the build and version information of abibind. VCS metadata embedded by the go tool is
// used unless the values were set through ldflags.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

var (
	// Version is the semantic version of the build. Generation caches are keyed by it.
	Version = "0.1.0"
	// GitCommit is the git commit hash.
	GitCommit = ""
	// GitCommitTime is the timestamp of the git commit.
	GitCommitTime = ""
	// GitTreeDirty indicates if the git tree was dirty at build time.
	GitTreeDirty = ""
)

// Info contains the version information of the build.
type Info struct {
	Version       string
	GitCommit     string
	GitCommitTime string
	GitTreeDirty  bool
	GoVersion     string
}

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	settings := map[string]*string{
		"vcs.revision": &GitCommit,
		"vcs.time":     &GitCommitTime,
		"vcs.modified": &GitTreeDirty,
	}
	for _, kv := range info.Settings {
		if target, ok := settings[kv.Key]; ok && *target == "" {
			*target = kv.Value
		}
	}
}

// GetInfo returns the version information of the build.
func GetInfo() Info {
	return Info{
		Version:       Version,
		GitCommit:     GitCommit,
		GitCommitTime: GitCommitTime,
		GitTreeDirty:  GitTreeDirty == "true",
		GoVersion:     runtime.Version(),
	}
}

// revision returns the short commit hash, suffixed if the tree was dirty.
func (i Info) revision() string {
	commit := i.GitCommit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if commit != "" && i.GitTreeDirty {
		commit += "-dirty"
	}
	return commit
}

// String returns a multi-line description of the build.
func (i Info) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "abibind version %s\n", i.Version)
	if commit := i.revision(); commit != "" {
		fmt.Fprintf(&sb, "  Commit:     %s\n", commit)
	}
	if i.GitCommitTime != "" {
		built := i.GitCommitTime
		if t, err := time.Parse(time.RFC3339, i.GitCommitTime); err == nil {
			built = t.Format("2006-01-02 15:04:05 MST")
		}
		fmt.Fprintf(&sb, "  Built:      %s\n", built)
	}
	fmt.Fprintf(&sb, "  Go version: %s\n", i.GoVersion)
	return sb.String()
}

// Short returns the single-line version used by --version.
func (i Info) Short() string {
	if commit := i.revision(); commit != "" {
		return i.Version + "+" + commit
	}
	return i.Version
}
