package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/buildgen-dev/buildgen/internal/config"
	"github.com/buildgen-dev/buildgen/internal/flow"
)

// ToolAppFlowFactory declares the flags of the generate command and creates
// the ToolFlowBuildGen that runs it.
type ToolAppFlowFactory struct {
	local config.LocalToolConfig
}

// NewToolAppFlowFactory returns a factory whose flags default to
// config.DefaultLocalToolConfig().
func NewToolAppFlowFactory() *ToolAppFlowFactory {
	return &ToolAppFlowFactory{local: config.DefaultLocalToolConfig()}
}

// AddCustomArguments registers the generate flags on cmd.
func (f *ToolAppFlowFactory) AddCustomArguments(cmd *cobra.Command) {
	defaults := config.DefaultLocalToolConfig()
	flags := cmd.Flags()
	flags.StringVarP(&f.local.PackageConfigurationType, "type", "t", defaults.PackageConfigurationType, "package configuration type (default, sdk or one from "+config.FileName+")")
	flags.BoolVar(&f.local.Graph, "graph", defaults.Graph, "write the dependency graph (rendered with graphviz dot when available)")
	flags.BoolVar(&f.local.DryRun, "DryRun", defaults.DryRun, "no files will be created")
	flags.BoolVar(&f.local.IgnoreNotSupported, "IgnoreNotSupported", defaults.IgnoreNotSupported, "skip packages that are not supported on the platform")
	flags.StringVar(&f.local.GenType, "GenType", defaults.GenType, "generator type (default, or cmake on ubuntu)")
	flags.BoolVar(&f.local.ListBuildVariants, "ListBuildVariants", defaults.ListBuildVariants, "list the build variants and exit")
	flags.BoolVar(&f.local.ListVariants, "ListVariants", defaults.ListVariants, "list the package variants and exit")
	flags.BoolVar(&f.local.DontBuildRecipes, "DontBuildRecipes", defaults.DontBuildRecipes, "do not build recipes")
	flags.BoolVar(&f.local.ForceClaimInstallArea, "ForceClaimInstallArea", defaults.ForceClaimInstallArea, "take over an install area owned by another project")
}

// Create returns the flow for the current root flags.
func (f *ToolAppFlowFactory) Create(out io.Writer) *flow.ToolFlowBuildGen {
	fl := flow.NewToolFlowBuildGen(platformName, out)
	fl.VariantSelection = variantSelection
	fl.RecipeFilter = recipeFilter
	return fl
}

// Command returns the generate command.
func (f *ToolAppFlowFactory) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate build files for the packages below the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tool, cwd, err := loadToolConfig(cmd)
			if err != nil {
				return err
			}
			return f.Create(cmd.OutOrStdout()).Process(cmd.Context(), cwd, tool, f.local)
		},
	}
	f.AddCustomArguments(cmd)
	return cmd
}

func init() {
	rootCmd.AddCommand(NewToolAppFlowFactory().Command())
}
