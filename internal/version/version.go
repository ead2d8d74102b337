// Package version exposes build metadata injected with -ldflags.
//
//	go build -ldflags "-X github.com/longkey1/llmchat/internal/version.Version=v1.0.0 \
//	  -X github.com/longkey1/llmchat/internal/version.CommitSHA=$(git rev-parse HEAD) \
//	  -X github.com/longkey1/llmchat/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildTime = "unknown"
)

// Short returns the version number only
func Short() string {
	return Version
}

// Info returns version, commit, build time and toolchain on separate lines
func Info() string {
	commit := CommitSHA
	if len(commit) > 12 {
		commit = commit[:12]
	}
	return fmt.Sprintf("llmchat %s\ncommit: %s\nbuilt: %s\ngo: %s %s/%s",
		Version, commit, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
