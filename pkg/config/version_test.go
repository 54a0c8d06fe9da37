package config

import (
	"runtime"
	"strings"
	"testing"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version != Version {
		t.Errorf("Version = %q, want %q", info.Version, Version)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
	if info.OS != runtime.GOOS || info.Arch != runtime.GOARCH {
		t.Errorf("platform = %s/%s", info.OS, info.Arch)
	}
}

func TestGetBuildInfo_LdflagsWin(t *testing.T) {
	oldCommit, oldTime := Commit, BuildTime
	defer func() { Commit, BuildTime = oldCommit, oldTime }()

	Commit, BuildTime = "abc1234", "2024-01-01T00:00:00Z"
	info := GetBuildInfo()

	if info.Commit != "abc1234" {
		t.Errorf("Commit = %q, want ldflags value", info.Commit)
	}
	if info.BuildTime != "2024-01-01T00:00:00Z" {
		t.Errorf("BuildTime = %q, want ldflags value", info.BuildTime)
	}
}

func TestVersionString(t *testing.T) {
	s := VersionString()
	if !strings.HasPrefix(s, "syncstat "+Version) {
		t.Errorf("VersionString() = %q", s)
	}
}

func TestShortRevision(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0123456789abcdef0123", "0123456789ab"},
		{"abc", "abc"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := shortRevision(tt.in); got != tt.want {
			t.Errorf("shortRevision(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
