package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the name of the project configuration file.
const FileName = "buildgen.yaml"

// ToolConfig represents the project configuration parsed from buildgen.yaml.
// Every key can be overridden with a BUILDGEN_<KEY> environment variable.
type ToolConfig struct {
	// ProjectName is a display name for the project.
	ProjectName string `mapstructure:"project_name"`
	// PackageRoots lists the directories, relative to the project root, that are searched for packages.
	PackageRoots []string `mapstructure:"package_roots"`
	// InstallArea is the directory, relative to the project root, where recipes are installed.
	InstallArea string `mapstructure:"install_area"`
	// OutputDir is the directory, relative to the project root, that receives generated build files.
	OutputDir string `mapstructure:"output_dir"`
	// Ignore holds extra gitignore style patterns skipped during package discovery.
	Ignore []string `mapstructure:"ignore"`
	// BuildVariants maps a build variant name to its options (e.g. config: [Debug, Release]).
	BuildVariants map[string][]string `mapstructure:"build_variants"`
	// PackageConfigurations maps a package configuration type to its settings.
	PackageConfigurations map[string]PackageConfiguration `mapstructure:"package_configurations"`
	// Logging contains logging configuration.
	Logging LoggingConfig `mapstructure:"logging"`

	// ProjectRoot is the directory holding buildgen.yaml, or the start directory when none was found.
	ProjectRoot string `mapstructure:"-"`
}

// PackageConfiguration selects what a package configuration type does.
type PackageConfiguration struct {
	// Recipes enables building of recipes for this configuration.
	Recipes bool `mapstructure:"recipes"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `mapstructure:"level"`
	// Path is the log file path.
	Path string `mapstructure:"path"`
}

// FindProjectRoot returns the first directory, starting at dir and walking
// towards the filesystem root, that contains buildgen.yaml.
func FindProjectRoot(dir string) (string, bool) {
	dir = filepath.Clean(dir)
	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Load reads the tool configuration.
// If path is empty the project root is searched for from currentDir; when no
// buildgen.yaml exists the defaults are used with currentDir as project root.
func Load(currentDir string, path string) (*ToolConfig, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("BUILDGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("project_name", "")
	v.SetDefault("package_roots", []string{})
	v.SetDefault("install_area", "")
	v.SetDefault("output_dir", "")
	v.SetDefault("ignore", []string{})
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.path", "")

	root := currentDir
	if path == "" {
		if found, ok := FindProjectRoot(currentDir); ok {
			root = found
			path = filepath.Join(found, FileName)
		}
	} else {
		root = filepath.Dir(path)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	var cfg ToolConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	cfg.ProjectRoot = abs

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for errors, such as empty package roots
// or build variants without options.
func Validate(cfg *ToolConfig) error {
	if len(cfg.PackageRoots) == 0 {
		return errors.New("package_roots must not be empty")
	}
	for _, root := range cfg.PackageRoots {
		if strings.TrimSpace(root) == "" {
			return errors.New("package_roots contains an empty entry")
		}
	}

	for name, options := range cfg.BuildVariants {
		if len(options) == 0 {
			return fmt.Errorf("build variant '%s' has no options", name)
		}
		seen := make(map[string]bool, len(options))
		for _, opt := range options {
			if seen[opt] {
				return fmt.Errorf("build variant '%s': duplicate option '%s'", name, opt)
			}
			seen[opt] = true
		}
	}

	if _, ok := cfg.PackageConfigurations[DefaultPackageConfigurationType]; !ok {
		return fmt.Errorf("package configuration '%s' is missing", DefaultPackageConfigurationType)
	}

	if cfg.Logging.Level != "" {
		switch strings.ToLower(cfg.Logging.Level) {
		case "debug", "info", "warn", "error":
			// ok
		default:
			return fmt.Errorf("invalid logging level: %s (allowed: debug, info, warn, error)", cfg.Logging.Level)
		}
	}

	return nil
}

// ApplyDefaults sets default values for configuration fields that are missing.
func ApplyDefaults(cfg *ToolConfig) {
	if len(cfg.PackageRoots) == 0 {
		cfg.PackageRoots = []string{"."}
	}
	if cfg.InstallArea == "" {
		cfg.InstallArea = filepath.Join(".buildgen", "install")
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "build"
	}
	if cfg.BuildVariants == nil {
		cfg.BuildVariants = map[string][]string{
			"config": {"Debug", "Release"},
		}
	}
	if cfg.PackageConfigurations == nil {
		cfg.PackageConfigurations = make(map[string]PackageConfiguration)
	}
	if _, ok := cfg.PackageConfigurations[DefaultPackageConfigurationType]; !ok {
		cfg.PackageConfigurations[DefaultPackageConfigurationType] = PackageConfiguration{Recipes: true}
	}
	if _, ok := cfg.PackageConfigurations["sdk"]; !ok {
		cfg.PackageConfigurations["sdk"] = PackageConfiguration{Recipes: false}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// PackageConfigurationNames returns the configured package configuration types, sorted.
func (c *ToolConfig) PackageConfigurationNames() []string {
	names := make([]string, 0, len(c.PackageConfigurations))
	for name := range c.PackageConfigurations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
