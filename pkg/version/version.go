package version

// Version is the release of the build, overridden at link time with
// -ldflags "-X github.com/projectdiscovery/lanscan/pkg/version.Version=vX.Y.Z"
var Version = "v0.1.0"

// GetVersion returns the version string
func GetVersion() string {
	return Version
}
