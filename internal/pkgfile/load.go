package pkgfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// Load reads, schema-validates and parses a Package.yaml file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	def, err := Parse(data, path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return def, nil
}

// LoadAll loads every file in paths, in order.
func LoadAll(paths []string) ([]*Definition, error) {
	defs := make([]*Definition, 0, len(paths))
	for _, p := range paths {
		def, err := Load(p)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Parse parses the content of a package definition loaded from path.
func Parse(data []byte, path string) (*Definition, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing package definition: %w", err)
	}
	def.Path = path
	def.Dir = filepath.Dir(path)

	if err := validate(&def); err != nil {
		return nil, err
	}
	return &def, nil
}

// validate performs the checks the schema cannot express.
func validate(def *Definition) error {
	if def.Version != "" {
		if _, err := semver.NewVersion(def.Version); err != nil {
			return fmt.Errorf("package '%s': invalid version '%s': %w", def.Name, def.Version, err)
		}
	}

	seenDeps := make(map[string]bool, len(def.Dependencies))
	for _, dep := range def.Dependencies {
		if dep == def.Name {
			return fmt.Errorf("package '%s' depends on itself", def.Name)
		}
		if seenDeps[dep] {
			return fmt.Errorf("package '%s': duplicate dependency '%s'", def.Name, dep)
		}
		seenDeps[dep] = true
	}

	seenPlatforms := make(map[string]bool, len(def.Platforms))
	for _, p := range def.Platforms {
		if seenPlatforms[p.Name] {
			return fmt.Errorf("package '%s': duplicate platform '%s'", def.Name, p.Name)
		}
		seenPlatforms[p.Name] = true
	}

	seenVariants := make(map[string]bool, len(def.Variants))
	for _, v := range def.Variants {
		if seenVariants[v.Name] {
			return fmt.Errorf("package '%s': duplicate variant '%s'", def.Name, v.Name)
		}
		seenVariants[v.Name] = true
	}

	if def.Recipe != nil {
		if _, err := semver.NewVersion(def.Recipe.Version); err != nil {
			return fmt.Errorf("package '%s': recipe '%s' has invalid version '%s': %w", def.Name, def.Recipe.Name, def.Recipe.Version, err)
		}
	}
	return nil
}
