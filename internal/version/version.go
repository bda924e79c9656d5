// Package version carries build metadata stamped into the binaries.
package version

// Overridden at build time:
//
//	go build -ldflags "-X spimex-data/internal/version.Version=$(git describe --tags) \
//	                   -X spimex-data/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X spimex-data/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String formats the full build identity for logs.
func String() string {
	return Version + " (" + Commit + ") built " + BuildTime
}
