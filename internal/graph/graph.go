package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/buildgen-dev/buildgen/internal/pkgfile"
)

// Sentinel errors for programmatic error checking via errors.Is().
var (
	ErrDuplicatePackage  = errors.New("duplicate package")
	ErrUnknownDependency = errors.New("unknown dependency")
	ErrCycle             = errors.New("dependency cycle")
	ErrNotSupported      = errors.New("package not supported")
)

// Package is a resolved node of the dependency graph.
type Package struct {
	Name       string
	Definition *pkgfile.Definition
	// Dependencies are the direct dependencies, sorted by name.
	Dependencies []*Package
	// Supported is false when the package, or one of its dependencies, does
	// not support the graph's platform.
	Supported bool
	// UnsupportedReason explains why Supported is false.
	UnsupportedReason string
}

// Graph is the dependency graph of all packages for one platform.
type Graph struct {
	Platform string

	packages map[string]*Package
	order    []*Package
}

// Resolve builds the dependency graph of defs for platform.
// It fails on duplicate names, unknown dependencies and cycles.
func Resolve(defs []*pkgfile.Definition, platform string) (*Graph, error) {
	g := &Graph{
		Platform: platform,
		packages: make(map[string]*Package, len(defs)),
	}

	for _, def := range defs {
		if existing, ok := g.packages[def.Name]; ok {
			return nil, fmt.Errorf("%w: %q defined in %s and %s", ErrDuplicatePackage, def.Name, existing.Definition.Path, def.Path)
		}
		g.packages[def.Name] = &Package{Name: def.Name, Definition: def}
	}

	for _, name := range g.names() {
		pkg := g.packages[name]
		for _, depName := range pkg.Definition.Dependencies {
			dep, ok := g.packages[depName]
			if !ok {
				return nil, fmt.Errorf("%w: package %q depends on unknown package %q", ErrUnknownDependency, name, depName)
			}
			pkg.Dependencies = append(pkg.Dependencies, dep)
		}
		sort.Slice(pkg.Dependencies, func(i, j int) bool {
			return pkg.Dependencies[i].Name < pkg.Dependencies[j].Name
		})
	}

	if err := g.checkCycles(); err != nil {
		return nil, err
	}
	g.order = g.topoSort()

	for _, pkg := range g.order {
		pkg.Supported = true
		if !pkg.Definition.SupportsPlatform(platform) {
			pkg.Supported = false
			pkg.UnsupportedReason = fmt.Sprintf("not supported on platform %s", platform)
			continue
		}
		for _, dep := range pkg.Dependencies {
			if !dep.Supported {
				pkg.Supported = false
				pkg.UnsupportedReason = fmt.Sprintf("depends on unsupported package %s", dep.Name)
				break
			}
		}
	}

	return g, nil
}

func (g *Graph) names() []string {
	names := make([]string, 0, len(g.packages))
	for name := range g.packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// checkCycles runs a depth first search with coloring.
// Colors: 0 = unvisited, 1 = in progress, 2 = done.
func (g *Graph) checkCycles() error {
	color := make(map[string]int, len(g.packages))
	var path []string

	var dfs func(pkg *Package) error
	dfs = func(pkg *Package) error {
		color[pkg.Name] = 1
		path = append(path, pkg.Name)

		for _, dep := range pkg.Dependencies {
			switch color[dep.Name] {
			case 1:
				start := 0
				for i, n := range path {
					if n == dep.Name {
						start = i
						break
					}
				}
				cycle := append(append([]string{}, path[start:]...), dep.Name)
				return fmt.Errorf("%w: %s", ErrCycle, strings.Join(cycle, " -> "))
			case 0:
				if err := dfs(dep); err != nil {
					return err
				}
			}
		}

		path = path[:len(path)-1]
		color[pkg.Name] = 2
		return nil
	}

	for _, name := range g.names() {
		if color[name] == 0 {
			if err := dfs(g.packages[name]); err != nil {
				return err
			}
		}
	}
	return nil
}

// topoSort orders packages so that dependencies come first. Ties are broken by name.
func (g *Graph) topoSort() []*Package {
	remaining := make(map[string]int, len(g.packages))
	dependents := make(map[string][]*Package, len(g.packages))
	for _, pkg := range g.packages {
		remaining[pkg.Name] = len(pkg.Dependencies)
		for _, dep := range pkg.Dependencies {
			dependents[dep.Name] = append(dependents[dep.Name], pkg)
		}
	}

	var ready []string
	for name, n := range remaining {
		if n == 0 {
			ready = append(ready, name)
		}
	}

	order := make([]*Package, 0, len(g.packages))
	for len(ready) > 0 {
		sort.Strings(ready)
		name := ready[0]
		ready = ready[1:]

		pkg := g.packages[name]
		order = append(order, pkg)
		for _, d := range dependents[name] {
			remaining[d.Name]--
			if remaining[d.Name] == 0 {
				ready = append(ready, d.Name)
			}
		}
	}
	return order
}

// Ordered returns every package, dependencies first.
func (g *Graph) Ordered() []*Package {
	return append([]*Package(nil), g.order...)
}

// Get returns the named package.
func (g *Graph) Get(name string) (*Package, bool) {
	pkg, ok := g.packages[name]
	return pkg, ok
}

// Len returns the number of packages in the graph.
func (g *Graph) Len() int {
	return len(g.packages)
}

// Closure returns the packages accepted by keep together with all of their
// transitive dependencies, dependencies first.
func (g *Graph) Closure(keep func(*Package) bool) []*Package {
	selected := make(map[string]bool)
	var visit func(pkg *Package)
	visit = func(pkg *Package) {
		if selected[pkg.Name] {
			return
		}
		selected[pkg.Name] = true
		for _, dep := range pkg.Dependencies {
			visit(dep)
		}
	}
	for _, pkg := range g.order {
		if keep(pkg) {
			visit(pkg)
		}
	}

	var out []*Package
	for _, pkg := range g.order {
		if selected[pkg.Name] {
			out = append(out, pkg)
		}
	}
	return out
}

// AllDependencies returns the transitive dependencies of pkg, dependencies first.
// It returns nil when pkg is not part of g.
func (g *Graph) AllDependencies(pkg *Package) []*Package {
	deps := g.Closure(func(p *Package) bool { return p == pkg })
	if len(deps) == 0 {
		return nil
	}
	return deps[:len(deps)-1]
}

// RequireSupported returns an error naming the first unsupported package.
func RequireSupported(pkgs []*Package) error {
	for _, pkg := range pkgs {
		if !pkg.Supported {
			return fmt.Errorf("%w: %s %s (use --IgnoreNotSupported to skip it)", ErrNotSupported, pkg.Name, pkg.UnsupportedReason)
		}
	}
	return nil
}

// Supported filters pkgs down to the supported ones, keeping the order.
func Supported(pkgs []*Package) []*Package {
	var out []*Package
	for _, pkg := range pkgs {
		if pkg.Supported {
			out = append(out, pkg)
		}
	}
	return out
}
