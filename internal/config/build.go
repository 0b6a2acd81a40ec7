package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Config is the resolved configuration of one generate run.
type Config struct {
	// CurrentDir is the directory the tool was started in.
	CurrentDir string
	// Tool is the project configuration.
	Tool *ToolConfig
	// PackageConfigurationType names the selected package configuration.
	PackageConfigurationType string
	// PackageConfiguration is the selected package configuration.
	PackageConfiguration PackageConfiguration

	// DisableWrite turns every filesystem write into a log message.
	DisableWrite bool
	// IgnoreNotSupported keeps packages that are not supported on the platform instead of failing.
	IgnoreNotSupported bool
	// Graph writes the dependency graph after generation.
	Graph bool
	// GenType selects the generator flavor of the platform plugin.
	GenType string
}

// NewConfig creates the run configuration for the given package configuration type.
func NewConfig(currentDir string, tool *ToolConfig, packageConfigurationType string) (*Config, error) {
	if tool == nil {
		return nil, fmt.Errorf("nil tool config")
	}
	if packageConfigurationType == "" {
		packageConfigurationType = DefaultPackageConfigurationType
	}
	pc, ok := tool.PackageConfigurations[packageConfigurationType]
	if !ok {
		return nil, fmt.Errorf("unknown package configuration type '%s' (allowed: %s)",
			packageConfigurationType, strings.Join(tool.PackageConfigurationNames(), ", "))
	}
	return &Config{
		CurrentDir:               currentDir,
		Tool:                     tool,
		PackageConfigurationType: packageConfigurationType,
		PackageConfiguration:     pc,
		GenType:                  DefaultGenType,
	}, nil
}

// ForceDisableAllWrites turns the run into a dry run.
func (c *Config) ForceDisableAllWrites() {
	c.DisableWrite = true
}

// IsWritable reports whether the run may touch the filesystem.
func (c *Config) IsWritable() bool {
	return !c.DisableWrite
}

// ProjectRoot returns the absolute project root.
func (c *Config) ProjectRoot() string {
	return c.Tool.ProjectRoot
}

// OutputDir returns the directory that receives the build files of platform.
func (c *Config) OutputDir(platform string) string {
	return filepath.Join(c.abs(c.Tool.OutputDir), platform)
}

// InstallArea returns the absolute install area directory.
func (c *Config) InstallArea() string {
	return c.abs(c.Tool.InstallArea)
}

func (c *Config) abs(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Tool.ProjectRoot, p)
}
