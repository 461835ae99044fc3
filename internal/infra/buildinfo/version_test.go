package buildinfo

import (
	"runtime"
	"runtime/debug"
	"testing"
)

func stubBuildInfo(t *testing.T, bi *debug.BuildInfo) {
	t.Helper()
	orig := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
	t.Cleanup(func() { readBuildInfo = orig })
}

func setVars(t *testing.T, version, commit, buildTime string) {
	t.Helper()
	v, c, b := Version, Commit, BuildTime
	Version, Commit, BuildTime = version, commit, buildTime
	t.Cleanup(func() { Version, Commit, BuildTime = v, c, b })
}

func vcsInfo(mainVersion string) *debug.BuildInfo {
	return &debug.BuildInfo{
		Main: debug.Module{Version: mainVersion},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2024-01-01T00:00:00Z"},
		},
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		name string
		vars [3]string
		bi   *debug.BuildInfo
		want Info
	}{
		{
			name: "ldflags win",
			vars: [3]string{"v1.2.3", "abc123", "2025-05-05"},
			bi:   vcsInfo("v0.9.0"),
			want: Info{Version: "v1.2.3", Commit: "abc123", BuildTime: "2025-05-05"},
		},
		{
			name: "embedded build info fills the gaps",
			vars: [3]string{"dev", "unknown", "unknown"},
			bi:   vcsInfo("v0.9.0"),
			want: Info{Version: "v0.9.0", Commit: "0123456789ab", BuildTime: "2024-01-01T00:00:00Z"},
		},
		{
			name: "devel build keeps dev",
			vars: [3]string{"dev", "unknown", "unknown"},
			bi:   &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			want: Info{Version: "dev", Commit: "unknown", BuildTime: "unknown"},
		},
		{
			name: "no build info",
			vars: [3]string{"dev", "unknown", "unknown"},
			want: Info{Version: "dev", Commit: "unknown", BuildTime: "unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setVars(t, tt.vars[0], tt.vars[1], tt.vars[2])
			stubBuildInfo(t, tt.bi)

			tt.want.GoVersion = runtime.Version()
			if got := Get(); got != tt.want {
				t.Errorf("Get() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	setVars(t, "v1.0.0", "abc123", "2025-05-05")
	stubBuildInfo(t, nil)

	if got := String(); got != "v1.0.0 (abc123) built at 2025-05-05" {
		t.Errorf("String() = %q", got)
	}
}
