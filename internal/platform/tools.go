package platform

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

var toolMu sync.Mutex

// FindTool looks for an executable in the system PATH and then in the
// user's cache directory (<UserCacheDir>/buildgen/bin).
//
// Returns:
//   - string: The absolute path to the executable.
//   - error: An error if the tool cannot be found.
func FindTool(name string) (string, error) {
	toolMu.Lock()
	defer toolMu.Unlock()

	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	binDir, err := ToolCacheDir()
	if err != nil {
		return "", err
	}
	exeName := name
	if runtime.GOOS == "windows" && filepath.Ext(exeName) == "" {
		exeName += ".exe"
	}
	path := filepath.Join(binDir, exeName)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path, nil
	}

	return "", fmt.Errorf("%s not found in PATH or %s", name, binDir)
}

// ToolCacheDir returns the directory searched for tools after PATH.
func ToolCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("error getting cache dir: %w", err)
	}
	return filepath.Join(cacheDir, "buildgen", "bin"), nil
}

// ToolVersion runs "<path> --version" and returns the first line of its output.
func ToolVersion(path string) (string, error) {
	out, err := exec.Command(path, "--version").Output()
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("unknown version format: %q", out)
	}
	return line, nil
}
