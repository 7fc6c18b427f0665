// Package version reports build information set through ldflags:
//
//	go build -ldflags "-X github.com/teranos/gaffer/version.Version=v0.3.0"
package version

import (
	"fmt"
	"runtime"
)

// dev marks an untagged build.
const dev = "dev"

var (
	// CommitHash is the git commit the binary was built from.
	CommitHash = dev

	// BuildTime is when the binary was built.
	BuildTime = "unknown"

	// Version is the release tag, or dev.
	Version = dev
)

// Info describes the running gaffer build.
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get returns the build information of this binary.
func Get() Info {
	return Info{
		Version:    Version,
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Tagged reports whether this is a release build.
func (i Info) Tagged() bool { return i.Version != "" && i.Version != dev }

func (i Info) String() string {
	name := dev
	if i.Tagged() {
		name = i.Version
	}
	return fmt.Sprintf("gaffer %s (commit %s, built %s)", name, i.CommitHash, i.BuildTime)
}

// Short is the abbreviated commit hash.
func (i Info) Short() string {
	if len(i.CommitHash) >= 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}

// GeneratedBy is the !generated-by header value for files this build
// writes. A release build appends its version to tool so consumers can tell
// which rule set produced a file.
func (i Info) GeneratedBy(tool string) string {
	if tool == "" || !i.Tagged() {
		return tool
	}
	return tool + " " + i.Version
}
