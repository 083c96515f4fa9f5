package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetBuildVars(t *testing.T) {
	t.Helper()
	v, b, c := Version, Build, GitCommit
	Version, Build, GitCommit = "dev", "unknown", "unknown"
	t.Cleanup(func() { Version, Build, GitCommit = v, b, c })
}

func TestApplyVersionFile(t *testing.T) {
	resetBuildVars(t)

	applyVersionFile(strings.NewReader(`
# written by the release script
version: 1.4.0
build=2026-10-14T06:00:00Z
Commit: 9f2c1ab
unrelated: value
`))

	assert.Equal(t, BuildInfo{Version: "1.4.0", Build: "2026-10-14T06:00:00Z", Commit: "9f2c1ab"}, CurrentBuild())
	assert.Equal(t, "stockhistory 1.4.0 (build: 2026-10-14T06:00:00Z, commit: 9f2c1ab)", CurrentBuild().String())
}

func TestApplyVersionFile_LdflagsWin(t *testing.T) {
	resetBuildVars(t)
	Version = "2.0.0"

	applyVersionFile(strings.NewReader("version: 1.4.0\ncommit: 9f2c1ab\n"))

	assert.Equal(t, "2.0.0", Version)
	assert.Equal(t, "9f2c1ab", GitCommit)
}
