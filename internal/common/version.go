package common

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Set at build time:
//
//	go build -ldflags "-X github.com/bobmcallan/stockhistory/internal/common.Version=1.2.0"
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// BuildInfo identifies the running binary in the banner and /api/version.
type BuildInfo struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
}

// CurrentBuild returns the build info currently in effect.
func CurrentBuild() BuildInfo {
	return BuildInfo{Version: Version, Build: Build, Commit: GitCommit}
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("stockhistory %s (build: %s, commit: %s)", b.Version, b.Build, b.Commit)
}

// LoadVersionFromFile fills in build info from a .version file deployed next
// to the binary, for builds made without ldflags.
func LoadVersionFromFile() {
	exe, err := os.Executable()
	if err != nil {
		return
	}
	f, err := os.Open(filepath.Join(filepath.Dir(exe), ".version"))
	if err != nil {
		return
	}
	defer f.Close()

	applyVersionFile(f)
}

// applyVersionFile reads "key: value" or "key=value" lines. Only fields still
// at their defaults are overwritten.
func applyVersionFile(r io.Reader) {
	targets := map[string]struct {
		field *string
		unset string
	}{
		"version": {&Version, "dev"},
		"build":   {&Build, "unknown"},
		"commit":  {&GitCommit, "unknown"},
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			if key, val, ok = strings.Cut(line, "="); !ok {
				continue
			}
		}
		t, known := targets[strings.ToLower(strings.TrimSpace(key))]
		if known && *t.field == t.unset {
			*t.field = strings.TrimSpace(val)
		}
	}
}
