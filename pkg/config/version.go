// Package config holds build metadata for syncstat.
package config

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build information. Populated at build time via
//
//	-ldflags "-X github.com/good-yellow-bee/syncstat/pkg/config.Version=v1.2.3 ..."
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildInfo contains all build information.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information. Commit and build time
// fall back to the VCS stamp embedded by the go tool when ldflags are unset.
func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" {
				info.Commit = shortRevision(s.Value)
			}
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

// VersionString returns a formatted version string.
func VersionString() string {
	info := GetBuildInfo()
	commit := info.Commit
	if info.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("syncstat %s (%s) built at %s with %s",
		info.Version, commit, info.BuildTime, info.GoVersion)
}
