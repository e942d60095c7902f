// Package version reports build metadata for the cryptocore binary.
//
// Version, Commit and Date are injected at link time:
//
//	go build -ldflags "-X github.com/mrz1836/cryptocore/internal/version.Version=v1.0.0"
//
// When they are not set, values recorded by the Go toolchain in the binary's
// build info are used instead.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

const (
	devVersion   = "dev"
	unknownValue = "unknown"
	shortCommit  = 7
)

// Link-time overrides.
//
//nolint:gochecknoglobals // set via -ldflags -X
var (
	Version = ""
	Commit  = ""
	Date    = ""
)

// readBuildInfo is replaced in tests.
//
//nolint:gochecknoglobals // test seam
var readBuildInfo = debug.ReadBuildInfo

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the build metadata, filling gaps from the embedded build info.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi, ok := readBuildInfo(); ok {
		if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = s.Value
				}
			case "vcs.time":
				if info.Date == "" {
					info.Date = s.Value
				}
			}
		}
	}

	return info.normalized()
}

func (i Info) normalized() Info {
	if i.Version == "" {
		i.Version = devVersion
	}
	if i.Commit == "" {
		i.Commit = unknownValue
	}
	if len(i.Commit) > shortCommit && isHex(i.Commit) {
		i.Commit = i.Commit[:shortCommit]
	}
	if i.Date == "" {
		i.Date = unknownValue
	}
	return i
}

// String renders the one-line form printed by "cryptocore version".
func (i Info) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, %s %s)", i.Version, i.Commit, i.Date, i.GoVersion, i.Platform)
}

// IsDev reports whether the binary was built without a release version.
func (i Info) IsDev() bool {
	return i.Version == devVersion
}

func isHex(s string) bool {
	return strings.Trim(strings.ToLower(s), "0123456789abcdef") == ""
}
