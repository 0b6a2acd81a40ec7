package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buildgen-dev/buildgen/internal/config"
	"github.com/buildgen-dev/buildgen/internal/generator"
	"github.com/buildgen-dev/buildgen/internal/platform"
	"github.com/buildgen-dev/buildgen/internal/ui"
)

// doctorCmd represents the doctor command.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check which platforms can be built on this machine",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ui.PrintHeader(fmt.Sprintf("Host platform: %s", platform.HostPlatform()))

		ui.PrintHeader("Build tools")
		for _, name := range generator.All() {
			gen, err := generator.Get(name)
			if err != nil {
				ui.PrintError(name, err.Error())
				continue
			}
			checkPlatformTools(gen)
		}

		ui.PrintHeader("Optional tools")
		checkTool("dot", "needed to render --graph output")
		checkCompiler()
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// checkPlatformTools reports the build tool of every generator type of gen.
func checkPlatformTools(gen generator.Generator) {
	for _, genType := range gen.GenTypes() {
		label := gen.Name()
		if genType != config.DefaultGenType {
			label += "/" + genType
		}
		tool := gen.BuildTool(genType)
		if tool == "" {
			ui.PrintWarning(label, "no native build tool, recipes cannot be built")
			continue
		}
		if err := platform.CheckBuildSupport(gen, genType); err != nil {
			ui.PrintError(label, tool+" not found")
			continue
		}
		checkTool(tool, "")
	}
}

// checkTool reports whether tool can be found and its version.
func checkTool(tool, missingHint string) {
	path, err := platform.FindTool(tool)
	if err != nil {
		detail := "NOT FOUND"
		if missingHint != "" {
			detail += " (" + missingHint + ")"
		}
		ui.PrintWarning(tool, detail)
		return
	}
	detail := path
	if ver, err := platform.ToolVersion(path); err == nil {
		detail = fmt.Sprintf("%s (%s)", path, ver)
	}
	ui.PrintSuccess(tool, detail)
}

// checkCompiler verifies that a C++ compiler (MSVC, g++ or clang++) is available.
func checkCompiler() {
	for _, compiler := range []string{"cl.exe", "g++", "clang++"} {
		if _, err := platform.FindTool(compiler); err == nil {
			checkTool(compiler, "")
			return
		}
	}
	ui.PrintWarning("c++", "NOT FOUND (no C++ compiler, recipes and native builds will fail)")
}
