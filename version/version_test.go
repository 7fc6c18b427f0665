package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.False(t, info.Tagged(), "test binaries are not release builds")
}

func TestString(t *testing.T) {
	info := Info{CommitHash: "0123456789abcdef", BuildTime: "2024-06-01", Version: "dev"}
	assert.Equal(t, "gaffer dev (commit 0123456789abcdef, built 2024-06-01)", info.String())
	assert.Equal(t, "0123456", info.Short())

	info.Version = "v0.3.0"
	assert.Equal(t, "gaffer v0.3.0 (commit 0123456789abcdef, built 2024-06-01)", info.String())

	assert.Equal(t, "abc", Info{CommitHash: "abc"}.Short())
}

func TestGeneratedBy(t *testing.T) {
	tests := []struct {
		version string
		tool    string
		want    string
	}{
		{"dev", "gaffer", "gaffer"},
		{"v0.3.0", "gaffer", "gaffer v0.3.0"},
		{"v0.3.0", "MGI pipeline", "MGI pipeline v0.3.0"},
		{"v0.3.0", "", ""},
		{"", "gaffer", "gaffer"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Info{Version: tt.version}.GeneratedBy(tt.tool), "%s/%s", tt.version, tt.tool)
	}
}
