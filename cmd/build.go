package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/buildgen-dev/buildgen/internal/config"
	"github.com/buildgen-dev/buildgen/internal/generator"
	"github.com/buildgen-dev/buildgen/internal/platform"
	"github.com/buildgen-dev/buildgen/internal/ui"
	"github.com/buildgen-dev/buildgen/pkg/log"
)

var (
	buildConfig  string
	buildGenType string
)

// buildCmd represents the build command.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build previously generated build files with the platform's native tool",
	Long: `Runs the native build tool of the platform (make, cmake or msbuild) on the
files written by 'buildgen generate'. Platforms without a native build tool,
such as android, cannot be built this way.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tool, cwd, err := loadToolConfig(cmd)
		if err != nil {
			return err
		}
		cfg, err := config.NewConfig(cwd, tool, config.DefaultPackageConfigurationType)
		if err != nil {
			return err
		}
		return runBuild(cmd, cfg, platform.Normalize(platformName))
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVar(&buildConfig, "config-name", "", "build configuration (default: first 'config' build variant)")
	buildCmd.Flags().StringVar(&buildGenType, "GenType", config.DefaultGenType, "generator type used when generating")
}

// runBuild invokes the native build tool in the platform output directory.
func runBuild(cmd *cobra.Command, cfg *config.Config, platformName string) error {
	gen, err := generator.Get(platformName)
	if err != nil {
		return err
	}
	genType, err := generator.ResolveGenType(gen, buildGenType)
	if err != nil {
		return err
	}
	if err := platform.CheckBuildSupport(gen, genType); err != nil {
		return err
	}
	toolPath, err := platform.FindTool(gen.BuildTool(genType))
	if err != nil {
		return err
	}

	outDir := cfg.OutputDir(platformName)
	if _, err := os.Stat(outDir); err != nil {
		return fmt.Errorf("no build files in %s, run 'buildgen generate' first: %w", outDir, err)
	}

	configName := buildConfig
	if configName == "" {
		if configs := cfg.Tool.BuildVariants["config"]; len(configs) > 0 {
			configName = configs[0]
		} else {
			configName = "Release"
		}
	}

	steps, err := buildSteps(gen.BuildTool(genType), toolPath, outDir, configName)
	if err != nil {
		return err
	}

	ui.PrintHeader(fmt.Sprintf("Building %s (%s)", platformName, configName))
	for _, argv := range steps {
		log.Info().Msgf("running %s", filepath.Base(argv[0]))
		c := exec.CommandContext(cmd.Context(), argv[0], argv[1:]...)
		c.Dir = outDir
		c.Stdout = cmd.OutOrStdout()
		c.Stderr = cmd.ErrOrStderr()
		if err := c.Run(); err != nil {
			ui.PrintError("build", "failed")
			return fmt.Errorf("build failed: %w", err)
		}
	}
	ui.PrintSuccess("build", "completed")
	return nil
}

// buildSteps returns the commands that build outDir with the given tool.
func buildSteps(tool, toolPath, outDir, configName string) ([][]string, error) {
	switch tool {
	case "make":
		return [][]string{{toolPath, "-C", outDir, "CONFIG=" + configName}}, nil
	case "cmake":
		buildDir := filepath.Join(outDir, "cmake-build")
		return [][]string{
			{toolPath, "-S", outDir, "-B", buildDir, "-DCMAKE_BUILD_TYPE=" + configName},
			{toolPath, "--build", buildDir, "--config", configName},
		}, nil
	case "msbuild":
		slns, err := filepath.Glob(filepath.Join(outDir, "*.sln"))
		if err != nil || len(slns) == 0 {
			return nil, fmt.Errorf("no solution file in %s", outDir)
		}
		return [][]string{{toolPath, slns[0], "/m", "/p:Configuration=" + configName}}, nil
	default:
		return nil, fmt.Errorf("unknown build tool %s", tool)
	}
}
