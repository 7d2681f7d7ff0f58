// Package version reports the build identifier of the disassembler.
package version

import (
	"runtime/debug"
	"sync"
)

// Version and Commit are overridden at link time:
//
//	go build -ldflags "-X disassembler/internal/version.Commit=$(git rev-parse --short HEAD)"
var (
	Version = "0.1.0"
	Commit  = ""
)

// FormatVersion is the revision of the bytecode instruction table this build decodes.
const FormatVersion = 1

var current = sync.OnceValue(func() string {
	commit := Commit
	if commit == "" {
		commit = vcsRevision()
	}
	return withCommit(Version, commit)
})

// String returns "<version>-<short commit>", or just the version when the
// commit is unknown. The value is fixed for a given binary.
func String() string {
	return current()
}

func withCommit(version, commit string) string {
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if commit == "" {
		return version
	}
	return version + "-" + commit
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}
