package generator

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/buildgen-dev/buildgen/internal/pkgfile"
	"github.com/buildgen-dev/buildgen/version"
)

// guidNamespace seeds the name based project GUIDs so the same package always
// gets the same GUID.
var guidNamespace = uuid.MustParse("6f1c6f0e-2b8a-4d6e-9a4f-3c1d2b7e5a90")

var sourceExtensions = map[string]bool{".c": true, ".cc": true, ".cpp": true, ".cxx": true}

// packageData is the per-package view the templates render.
type packageData struct {
	Name   string
	Target string
	Type   string
	// Dir is the package source directory relative to the generated package
	// directory, slash separated.
	Dir          string
	HasSources   bool
	IsExecutable bool
	GUID         string
	// ConfigurationType is the MSBuild configuration type.
	ConfigurationType string
	Namespace         string
	// Sources are the source files relative to the generated package
	// directory. Only filled for generators that need explicit file lists.
	Sources         []string
	Dependencies    []*packageData
	AllDependencies []*packageData
	// LinkOrder lists the static libraries an executable links, dependents first.
	LinkOrder []*packageData
}

// configuration is one build configuration of a multi-configuration project.
type configuration struct {
	Config string
	Arch   string
}

// templateData is the data passed to every template.
type templateData struct {
	Version        string
	Platform       string
	ProjectName    string
	DefaultConfig  string
	Packages       []*packageData
	Package        *packageData
	Configurations []configuration
	ABIs           []string
}

// model is the template view of a Context.
type model struct {
	ctx      *Context
	packages []*packageData
	byName   map[string]*packageData
}

func newModel(ctx *Context, withSources bool) (*model, error) {
	m := &model{ctx: ctx, byName: make(map[string]*packageData, len(ctx.Packages))}
	for _, pkg := range ctx.Packages {
		pd, err := m.newPackage(pkg.Definition, withSources)
		if err != nil {
			return nil, err
		}
		m.packages = append(m.packages, pd)
		m.byName[pkg.Name] = pd
	}

	for _, pkg := range ctx.Packages {
		pd := m.byName[pkg.Name]
		for _, dep := range pkg.Dependencies {
			if d, ok := m.byName[dep.Name]; ok {
				pd.Dependencies = append(pd.Dependencies, d)
			}
		}
		for _, dep := range ctx.Graph.AllDependencies(pkg) {
			if d, ok := m.byName[dep.Name]; ok {
				pd.AllDependencies = append(pd.AllDependencies, d)
			}
		}
		if pd.IsExecutable {
			for i := len(pd.AllDependencies) - 1; i >= 0; i-- {
				if d := pd.AllDependencies[i]; d.HasSources && !d.IsExecutable {
					pd.LinkOrder = append(pd.LinkOrder, d)
				}
			}
		}
	}
	return m, nil
}

func (m *model) newPackage(def *pkgfile.Definition, withSources bool) (*packageData, error) {
	genDir := filepath.Join(m.ctx.OutputDir, def.Name)
	rel, err := filepath.Rel(genDir, def.Dir)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", def.Name, err)
	}

	pd := &packageData{
		Name:              def.Name,
		Target:            identifier(def.Name),
		Type:              def.Type,
		Dir:               filepath.ToSlash(rel),
		HasSources:        def.HasSources(),
		IsExecutable:      def.IsExecutable(),
		GUID:              projectGUID(def.Name),
		ConfigurationType: configurationType(def),
		Namespace:         "org.buildgen." + strings.ToLower(identifier(def.Name)),
	}
	if withSources && pd.HasSources {
		sources, err := collectSources(def.Dir, genDir)
		if err != nil {
			return nil, fmt.Errorf("package %s: %w", def.Name, err)
		}
		pd.Sources = sources
	}
	return pd, nil
}

func (m *model) data(pkg *packageData) *templateData {
	name := m.ctx.Config.Tool.ProjectName
	if name == "" {
		name = filepath.Base(m.ctx.Config.ProjectRoot())
	}
	return &templateData{
		Version:       version.Version,
		Platform:      m.ctx.Platform,
		ProjectName:   identifier(name),
		DefaultConfig: defaultConfig(m.ctx.BuildVariants),
		Packages:      m.packages,
		Package:       pkg,
	}
}

// projectGUID returns the deterministic MSBuild project GUID of a package.
func projectGUID(name string) string {
	return "{" + strings.ToUpper(uuid.NewSHA1(guidNamespace, []byte(name)).String()) + "}"
}

func configurationType(def *pkgfile.Definition) string {
	switch def.Type {
	case pkgfile.TypeExecutable:
		return "Application"
	case pkgfile.TypeLibrary:
		return "StaticLibrary"
	default:
		return "Utility"
	}
}

func defaultConfig(buildVariants map[string][]string) string {
	if configs := buildVariants["config"]; len(configs) > 0 {
		return configs[0]
	}
	return "Release"
}

// collectSources lists the source files below <pkgDir>/source relative to
// genDir. A missing source directory yields no sources.
func collectSources(pkgDir, genDir string) ([]string, error) {
	root := filepath.Join(pkgDir, "source")
	var sources []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !sourceExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		rel, err := filepath.Rel(genDir, path)
		if err != nil {
			return err
		}
		sources = append(sources, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(sources)
	return sources, nil
}
