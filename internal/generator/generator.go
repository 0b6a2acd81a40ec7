package generator

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/buildgen-dev/buildgen/internal/config"
	"github.com/buildgen-dev/buildgen/internal/graph"
)

// PlatformAll selects every registered platform.
const PlatformAll = "all"

// ErrUnknownPlatform is returned for a platform without a registered generator.
var ErrUnknownPlatform = errors.New("unknown platform")

// OutputFile represents a single generated file.
type OutputFile struct {
	// Path is relative to the platform output directory.
	Path    string
	Content []byte
}

// Context holds everything a generator needs to produce output.
type Context struct {
	Config   *config.Config
	Platform string
	GenType  string
	// Graph is the full dependency graph for the platform.
	Graph *graph.Graph
	// Packages are the supported packages to generate, dependencies first.
	Packages []*graph.Package
	// OutputDir is the absolute platform output directory.
	OutputDir string
	// BuildVariants are the build variants after --variants filtering.
	BuildVariants map[string][]string
}

// Generator is the interface every platform generator plugin implements.
type Generator interface {
	// Name returns the platform name (e.g. "ubuntu", "windows").
	Name() string
	// GenTypes returns the supported generator types, "default" first.
	GenTypes() []string
	// BuildTool returns the native build tool for genType, or "" when the
	// platform cannot build on its own.
	BuildTool(genType string) string
	// BuildVariants returns the build variants the platform adds to the project ones.
	BuildVariants() map[string][]string
	// Generate produces the build files for ctx.Packages.
	Generate(ctx *Context) ([]*OutputFile, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]func() Generator{}
)

// Register adds a generator factory to the registry.
// Typically called from init() in each generator's file.
func Register(name string, factory func() Generator) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if name == PlatformAll {
		panic(fmt.Sprintf("generator name %q is reserved", name))
	}
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("generator %q already registered", name))
	}
	registry[name] = factory
}

// Get returns a new instance of the named generator.
func Get(name string) (Generator, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownPlatform, name, strings.Join(allLocked(), ", "))
	}
	return factory(), nil
}

// All returns the names of all registered generators, sorted.
func All() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return allLocked()
}

func allLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the generators for platform; PlatformAll yields every
// registered generator in name order.
func Resolve(platform string) ([]Generator, error) {
	if platform != PlatformAll {
		g, err := Get(platform)
		if err != nil {
			return nil, err
		}
		return []Generator{g}, nil
	}
	var gens []Generator
	for _, name := range All() {
		g, err := Get(name)
		if err != nil {
			return nil, err
		}
		gens = append(gens, g)
	}
	return gens, nil
}

// ResolveGenType checks that g supports genType. An empty genType selects
// config.DefaultGenType.
func ResolveGenType(g Generator, genType string) (string, error) {
	types := g.GenTypes()
	if genType == "" {
		genType = config.DefaultGenType
	}
	for _, t := range types {
		if t == genType {
			return t, nil
		}
	}
	return "", fmt.Errorf("generator type '%s' is not supported by platform %s (allowed: %s)", genType, g.Name(), strings.Join(types, ", "))
}
