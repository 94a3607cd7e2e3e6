// Package version resolves the version reported by the binary.
package version

import (
	"runtime/debug"
	"strings"
)

// Dev is the version of builds without release ldflags.
const Dev = "dev"

var readBuildInfo = debug.ReadBuildInfo

// Resolve returns ldflags when it was set at build time. Otherwise it falls
// back to the module version recorded by go install, and to Dev.
func Resolve(ldflags string) string {
	if ldflags != "" && ldflags != Dev {
		return ldflags
	}
	info, ok := readBuildInfo()
	if !ok {
		return Dev
	}
	v := info.Main.Version
	if v == "" || v == "(devel)" {
		return Dev
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
