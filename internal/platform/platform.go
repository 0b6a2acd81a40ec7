package platform

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/buildgen-dev/buildgen/internal/generator"
)

// ErrBuildNotSupported is returned when a platform cannot build natively on this host.
var ErrBuildNotSupported = errors.New("build not supported")

var aliases = map[string]string{
	"linux":  "ubuntu",
	"win":    "windows",
	"win32":  "windows",
	"win64":  "windows",
	"darwin": "macos",
	"osx":    "macos",
}

// HostPlatform returns the platform name of the machine buildgen runs on.
func HostPlatform() string {
	return Normalize(runtime.GOOS)
}

// Normalize lower-cases a platform name and resolves aliases.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[name]; ok {
		return alias
	}
	return name
}

// CheckBuildSupport returns an error when gen has no native build tool for
// genType or the tool is not installed.
func CheckBuildSupport(gen generator.Generator, genType string) error {
	tool := gen.BuildTool(genType)
	if tool == "" {
		return fmt.Errorf("%w: platform %s has no build tool", ErrBuildNotSupported, gen.Name())
	}
	if _, err := FindTool(tool); err != nil {
		return fmt.Errorf("%w: %v", ErrBuildNotSupported, err)
	}
	return nil
}
