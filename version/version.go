// Package version holds build metadata injected at link time.
package version

import "runtime"

// Populated via -ldflags at build time:
//
//	-X github.com/raybanai/raybanai/version.GitRelease=v0.2.0
//	-X github.com/raybanai/raybanai/version.GitCommit=abc1234
//	-X github.com/raybanai/raybanai/version.GitCommitDate=2026-08-29
var (
	GitRelease    = "dev"
	GitCommit     = "unknown"
	GitCommitDate = "unknown"
	GoInfo        = runtime.Version()
)
