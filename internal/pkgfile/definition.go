package pkgfile

// FileName is the name of a package definition file.
const FileName = "Package.yaml"

// Package types.
const (
	TypeLibrary       = "library"
	TypeExecutable    = "executable"
	TypeHeaderLibrary = "header_library"
	TypeExternal      = "external"
)

// Definition is a package as declared by its Package.yaml.
type Definition struct {
	// Name is the dotted package name (e.g. "Graphics.Demo").
	Name string `yaml:"name"`
	// Type is one of library, executable, header_library or external.
	Type string `yaml:"type"`
	// Version is an optional semantic version.
	Version string `yaml:"version"`
	// Dependencies lists the names of the packages this package depends on.
	Dependencies []string `yaml:"dependencies"`
	// Platforms restricts the platforms the package supports. Empty means all.
	Platforms []Platform `yaml:"platforms"`
	// Variants lists the package variants.
	Variants []Variant `yaml:"variants"`
	// Recipe describes an external native dependency built by the recipe builder.
	Recipe *Recipe `yaml:"recipe"`

	// Path is the file the definition was loaded from.
	Path string `yaml:"-"`
	// Dir is the package directory.
	Dir string `yaml:"-"`
}

// Platform is one entry of a package's platform list.
type Platform struct {
	Name      string `yaml:"name"`
	Supported *bool  `yaml:"supported"`
}

// Variant is a named package variant with its options.
type Variant struct {
	Name    string   `yaml:"name"`
	Options []string `yaml:"options"`
}

// Recipe is an external native dependency build description.
type Recipe struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	// Commands are argv lists run in order. Arguments are text/template strings.
	Commands [][]string `yaml:"commands"`
}

// SupportsPlatform reports whether the package itself declares support for platform.
// Dependencies are not considered.
func (d *Definition) SupportsPlatform(platform string) bool {
	if len(d.Platforms) == 0 {
		return true
	}
	for _, p := range d.Platforms {
		if p.Name == platform {
			return p.Supported == nil || *p.Supported
		}
	}
	return false
}

// IsExecutable reports whether the package produces an executable.
func (d *Definition) IsExecutable() bool {
	return d.Type == TypeExecutable
}

// HasSources reports whether the package compiles sources of its own.
func (d *Definition) HasSources() bool {
	return d.Type == TypeLibrary || d.Type == TypeExecutable
}
