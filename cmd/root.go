package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/buildgen-dev/buildgen/internal/config"
	"github.com/buildgen-dev/buildgen/internal/generator"
	"github.com/buildgen-dev/buildgen/internal/platform"
	"github.com/buildgen-dev/buildgen/pkg/log"
	"github.com/buildgen-dev/buildgen/version"
)

var (
	platformName     string
	variantSelection []string
	recipeFilter     []string
	verbose          bool
	logLevel         string
	logFile          string
	configFile       string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "buildgen",
	Short: "Generate native build files for a tree of packages",
	Long: `buildgen discovers Package.yaml files below the current directory, resolves
their dependency graph and writes build files for the selected platform
(Makefiles or CMake on ubuntu, Visual Studio projects on windows, gradle
projects on android). It can also build the external recipes the packages
depend on.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return log.Init(logFile, effectiveLogLevel(logLevel))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		log.Error().Msg(err.Error())
	}
	log.Close()
	if err != nil {
		os.Exit(1)
	}
}

// init initializes the root command and its flags.
func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&platformName, "platform", "p", platform.HostPlatform(), "target platform (ubuntu, windows, android or "+generator.PlatformAll+"); hosts without a generator, such as macos, must set it")
	pf.StringSliceVar(&variantSelection, "variants", nil, "restrict build variants, e.g. config=Release,arch=x64")
	pf.StringSliceVar(&recipeFilter, "recipes", nil, "only build recipes matching these globs")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output (same as --log-level debug)")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&logFile, "log-file", "", "write the log to this file instead of stdout")
	pf.StringVar(&configFile, "config", "", "path to "+config.FileName+" (default: searched upwards from the current directory)")
}

// checkPlatform rejects a host platform that has no generator when --platform
// was left at its default.
func checkPlatform(name string, changed bool) error {
	if changed || name == generator.PlatformAll {
		return nil
	}
	if _, err := generator.Get(name); err != nil {
		return fmt.Errorf("%w: host platform %s has no generator, pass --platform (available: %s)",
			generator.ErrUnknownPlatform, name, strings.Join(generator.All(), ", "))
	}
	return nil
}

func effectiveLogLevel(level string) string {
	if verbose {
		return "debug"
	}
	return level
}

// loadToolConfig loads the tool configuration for the current directory and
// applies its logging section unless the command line overrides it.
func loadToolConfig(cmd *cobra.Command) (*config.ToolConfig, string, error) {
	if err := checkPlatform(platform.Normalize(platformName), cmd.Flags().Changed("platform")); err != nil {
		return nil, "", err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}
	tool, err := config.Load(cwd, configFile)
	if err != nil {
		return nil, "", err
	}

	flags := cmd.Flags()
	if !flags.Changed("log-level") && !verbose && !flags.Changed("log-file") && (tool.Logging.Path != "" || tool.Logging.Level != "info") {
		if err := log.Init(tool.Logging.Path, tool.Logging.Level); err != nil {
			return nil, "", err
		}
	}
	return tool, cwd, nil
}
