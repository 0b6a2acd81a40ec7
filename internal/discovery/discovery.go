package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/buildgen-dev/buildgen/internal/config"
	"github.com/buildgen-dev/buildgen/internal/pkgfile"
)

// ErrNoPackages is returned when no package file exists below the package roots.
var ErrNoPackages = errors.New("no package files found")

// IgnoreFile is read from the project root in addition to .gitignore.
const IgnoreFile = ".buildgenignore"

var defaultIgnores = []string{
	".git/",
	".svn/",
	"node_modules/",
	".idea/",
	".vscode/",
}

// GetFiles returns the absolute paths of every package file below the package
// roots of the project, sorted.
func GetFiles(cfg *config.Config) ([]string, error) {
	root := cfg.ProjectRoot()
	matcher := newMatcher(cfg)

	var files []string
	for _, pkgRoot := range cfg.Tool.PackageRoots {
		dir := pkgRoot
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("package root %s: %w", pkgRoot, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("package root %s is not a directory", pkgRoot)
		}

		err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(root, path)
			if err != nil || rel == "." {
				return nil
			}

			toMatch := filepath.ToSlash(rel)
			if d.IsDir() {
				toMatch += "/"
			}
			if matcher.MatchesPath(toMatch) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !d.IsDir() && d.Name() == pkgfile.FileName {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	slices.Sort(files)
	files = slices.Compact(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("%w below %s", ErrNoPackages, root)
	}
	return files, nil
}

// newMatcher combines the default ignores, the generated output locations,
// the ignore files at the project root and the configured patterns.
func newMatcher(cfg *config.Config) *ignore.GitIgnore {
	patterns := append([]string{}, defaultIgnores...)
	for _, generated := range []string{cfg.Tool.OutputDir, cfg.Tool.InstallArea} {
		if generated != "" && !filepath.IsAbs(generated) {
			patterns = append(patterns, "/"+strings.TrimSuffix(filepath.ToSlash(generated), "/")+"/")
		}
	}

	for _, name := range []string{".gitignore", IgnoreFile} {
		content, err := os.ReadFile(filepath.Join(cfg.ProjectRoot(), name))
		if err != nil {
			continue
		}
		patterns = append(patterns, strings.Split(string(content), "\n")...)
	}
	patterns = append(patterns, cfg.Tool.Ignore...)

	return ignore.CompileIgnoreLines(patterns...)
}

// IsBelow reports whether path lies inside dir (or is dir).
func IsBelow(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
