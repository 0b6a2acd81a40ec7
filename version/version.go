package version

// Version is the buildgen version. Release builds set it with
// -ldflags "-X github.com/buildgen-dev/buildgen/version.Version=v1.2.3".
var Version = "dev"
