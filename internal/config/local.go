package config

const (
	// DefaultGenType is the generator type used when --GenType is not given.
	DefaultGenType = "default"
	// DefaultPackageConfigurationType is the package configuration used when --type is not given.
	DefaultPackageConfigurationType = "default"
)

// LocalToolConfig holds the per-invocation options of the generate command.
// It is created from the command line and consumed once by the flow.
type LocalToolConfig struct {
	DontBuildRecipes         bool
	DryRun                   bool
	ForceClaimInstallArea    bool
	GenType                  string
	Graph                    bool
	IgnoreNotSupported       bool
	ListBuildVariants        bool
	ListVariants             bool
	PackageConfigurationType string
}

// DefaultLocalToolConfig returns the default options. Each call returns a new value.
func DefaultLocalToolConfig() LocalToolConfig {
	return LocalToolConfig{
		GenType:                  DefaultGenType,
		PackageConfigurationType: DefaultPackageConfigurationType,
	}
}

// ListsVariants reports whether the invocation only lists variants.
func (c *LocalToolConfig) ListsVariants() bool {
	return c.ListBuildVariants || c.ListVariants
}
