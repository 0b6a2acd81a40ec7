package flow

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgen-dev/buildgen/internal/config"
	"github.com/buildgen-dev/buildgen/internal/generator"
	"github.com/buildgen-dev/buildgen/internal/graph"
	"github.com/buildgen-dev/buildgen/internal/pkgfile"
	"github.com/buildgen-dev/buildgen/internal/platform"
	"github.com/buildgen-dev/buildgen/pkg/log"
)

var testPackages = map[string]string{
	"Base/Package.yaml": `name: Base
type: library
version: 1.0.0
`,
	"ThirdParty/Zlib/Package.yaml": `name: ThirdParty.Zlib
type: external
version: 1.3.1
recipe:
  name: zlib
  version: 1.3.1
  commands:
    - ["sh", "-c", "echo built >> {{.Install}}/zlib.marker"]
`,
	"App/Package.yaml": `name: App
type: executable
version: 1.0.0
dependencies: [Base, ThirdParty.Zlib]
platforms:
  - name: ubuntu
  - name: windows
variants:
  - name: Renderer
    options: [GLES, Vulkan]
`,
}

func setupProject(t *testing.T) *config.ToolConfig {
	t.Helper()
	root := t.TempDir()
	for name, content := range testPackages {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	tool := &config.ToolConfig{ProjectName: "demo", ProjectRoot: root}
	config.ApplyDefaults(tool)
	require.NoError(t, config.Validate(tool))
	return tool
}

func newTestFlow(platformName string, out *bytes.Buffer) *ToolFlowBuildGen {
	f := NewToolFlowBuildGen(platformName, out)
	f.checkBuildSupport = func(generator.Generator, string) error { return nil }
	return f
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf, "debug")
	t.Cleanup(func() { log.SetOutput(os.Stdout, "info") })
	return &buf
}

func markerPath(tool *config.ToolConfig) string {
	return filepath.Join(tool.ProjectRoot, tool.InstallArea, "ubuntu", "zlib.marker")
}

func TestDefaultLocalToolConfig(t *testing.T) {
	local := config.DefaultLocalToolConfig()
	assert.Equal(t, config.LocalToolConfig{GenType: "default", PackageConfigurationType: "default"}, local)
}

func TestProcessDryRunWritesNothing(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("recipes use sh")
	}
	tool := setupProject(t)
	logs := captureLog(t)

	local := config.DefaultLocalToolConfig()
	local.DryRun = true
	local.Graph = true

	var out bytes.Buffer
	err := newTestFlow("ubuntu", &out).Process(context.Background(), tool.ProjectRoot, tool, local)
	require.NoError(t, err)

	assert.NoDirExists(t, filepath.Join(tool.ProjectRoot, tool.OutputDir))
	assert.NoDirExists(t, filepath.Join(tool.ProjectRoot, tool.InstallArea))
	assert.Contains(t, logs.String(), "would write "+filepath.Join(tool.ProjectRoot, tool.OutputDir, "ubuntu", "Makefile"))
	assert.Contains(t, logs.String(), "would write "+filepath.Join(tool.ProjectRoot, tool.OutputDir, "ubuntu", GraphFileName))
	assert.Contains(t, logs.String(), "would run sh -c echo built")
}

func TestProcessGeneratesAndBuildsRecipes(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("recipes use sh")
	}
	tool := setupProject(t)
	captureLog(t)

	local := config.DefaultLocalToolConfig()
	local.Graph = true

	var out bytes.Buffer
	err := newTestFlow("ubuntu", &out).Process(context.Background(), tool.ProjectRoot, tool, local)
	require.NoError(t, err)

	outDir := filepath.Join(tool.ProjectRoot, tool.OutputDir, "ubuntu")
	assert.FileExists(t, filepath.Join(outDir, "Makefile"))
	assert.FileExists(t, filepath.Join(outDir, "App", "Makefile"))
	assert.FileExists(t, filepath.Join(outDir, GraphFileName))

	data, err := os.ReadFile(markerPath(tool))
	require.NoError(t, err)
	assert.Equal(t, "built\n", string(data))

	// A second run finds the recipe up to date.
	require.NoError(t, newTestFlow("ubuntu", &out).Process(context.Background(), tool.ProjectRoot, tool, local))
	data, err = os.ReadFile(markerPath(tool))
	require.NoError(t, err)
	assert.Equal(t, "built\n", string(data))
}

func TestProcessBuildNotSupported(t *testing.T) {
	tool := setupProject(t)
	logs := captureLog(t)

	local := config.DefaultLocalToolConfig()
	local.IgnoreNotSupported = true

	var out bytes.Buffer
	f := NewToolFlowBuildGen("android", &out)
	err := f.Process(context.Background(), tool.ProjectRoot, tool, local)
	require.NoError(t, err)

	assert.Contains(t, logs.String(), "build not supported on platform android, recipe building disabled")
	assert.Contains(t, logs.String(), "skipping App: not supported on platform android")
	assert.NoDirExists(t, filepath.Join(tool.ProjectRoot, tool.InstallArea))
	assert.FileExists(t, filepath.Join(tool.ProjectRoot, tool.OutputDir, "android", "settings.gradle"))
}

func TestProcessAllPlatforms(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("recipes use sh")
	}
	tool := setupProject(t)
	logs := captureLog(t)

	var out bytes.Buffer
	f := newTestFlow(generator.PlatformAll, &out)
	f.checkBuildSupport = func(gen generator.Generator, _ string) error {
		if gen.Name() != "ubuntu" {
			return platform.ErrBuildNotSupported
		}
		return nil
	}
	require.NoError(t, f.Process(context.Background(), tool.ProjectRoot, tool, config.DefaultLocalToolConfig()))

	assert.Contains(t, logs.String(), "build not supported on platform android, recipe building disabled")
	assert.Contains(t, logs.String(), "build not supported on platform windows, recipe building disabled")
	assert.NotContains(t, logs.String(), "build not supported on platform ubuntu")
	assert.Contains(t, logs.String(), "ubuntu: 1 recipe(s) built, 0 skipped")

	for _, name := range []string{"android", "ubuntu", "windows"} {
		assert.DirExists(t, filepath.Join(tool.ProjectRoot, tool.OutputDir, name))
	}
	assert.FileExists(t, markerPath(tool))
	installed, err := os.ReadDir(filepath.Join(tool.ProjectRoot, tool.InstallArea))
	require.NoError(t, err)
	var platforms []string
	for _, e := range installed {
		if e.IsDir() {
			platforms = append(platforms, e.Name())
		}
	}
	assert.Equal(t, []string{"ubuntu"}, platforms, "only the buildable platform gets recipes")
}

func TestProcessNotSupportedIsAnError(t *testing.T) {
	tool := setupProject(t)
	captureLog(t)

	var out bytes.Buffer
	err := newTestFlow("android", &out).Process(context.Background(), tool.ProjectRoot, tool, config.DefaultLocalToolConfig())
	assert.ErrorIs(t, err, graph.ErrNotSupported)
	assert.ErrorContains(t, err, "use --IgnoreNotSupported")
}

func TestProcessListingDoesNotBuild(t *testing.T) {
	tool := setupProject(t)
	captureLog(t)

	local := config.DefaultLocalToolConfig()
	local.ListVariants = true
	local.ListBuildVariants = true

	var out bytes.Buffer
	err := newTestFlow("ubuntu", &out).Process(context.Background(), tool.ProjectRoot, tool, local)
	require.NoError(t, err)

	listing := out.String()
	assert.Contains(t, listing, "Package variants for ubuntu:")
	assert.Contains(t, listing, "    Renderer: GLES, Vulkan\n")
	assert.Contains(t, listing, "Build variants for ubuntu:\n  config: Debug, Release\n")
	assert.NoFileExists(t, markerPath(tool))
	assert.NoDirExists(t, filepath.Join(tool.ProjectRoot, tool.InstallArea))
}

func TestProcessVariantSelection(t *testing.T) {
	tool := setupProject(t)
	captureLog(t)

	local := config.DefaultLocalToolConfig()
	local.ListBuildVariants = true

	var out bytes.Buffer
	f := newTestFlow("windows", &out)
	f.VariantSelection = []string{"config=Release", "arch=x64"}
	require.NoError(t, f.Process(context.Background(), tool.ProjectRoot, tool, local))
	assert.Equal(t, "Build variants for windows:\n  arch: x64\n  config: Release\n  1 combination(s)\n", out.String())

	f.VariantSelection = []string{"config=Profile"}
	err := f.Process(context.Background(), tool.ProjectRoot, tool, local)
	assert.ErrorContains(t, err, "has no option 'Profile'")
}

func TestProcessPackageConfigurationDisablesRecipes(t *testing.T) {
	tool := setupProject(t)
	logs := captureLog(t)

	local := config.DefaultLocalToolConfig()
	local.PackageConfigurationType = "sdk"

	var out bytes.Buffer
	err := newTestFlow("ubuntu", &out).Process(context.Background(), tool.ProjectRoot, tool, local)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "recipe building disabled by package configuration 'sdk'")
	assert.NoFileExists(t, markerPath(tool))
}

func TestProcessCurrentDirSubset(t *testing.T) {
	tool := setupProject(t)
	captureLog(t)

	local := config.DefaultLocalToolConfig()
	local.DontBuildRecipes = true

	var out bytes.Buffer
	err := newTestFlow("ubuntu", &out).Process(context.Background(), filepath.Join(tool.ProjectRoot, "Base"), tool, local)
	require.NoError(t, err)

	outDir := filepath.Join(tool.ProjectRoot, tool.OutputDir, "ubuntu")
	assert.FileExists(t, filepath.Join(outDir, "Base", "Makefile"))
	assert.NoFileExists(t, filepath.Join(outDir, "App", "Makefile"))
}

func TestGenerateAllPlatforms(t *testing.T) {
	tool := setupProject(t)
	captureLog(t)

	cfg, err := config.NewConfig(tool.ProjectRoot, tool, config.DefaultPackageConfigurationType)
	require.NoError(t, err)
	cfg.ForceDisableAllWrites()

	var defs []*pkgfile.Definition
	for name := range testPackages {
		def, err := pkgfile.Load(filepath.Join(tool.ProjectRoot, filepath.FromSlash(name)))
		require.NoError(t, err)
		defs = append(defs, def)
	}
	gens, err := generator.Resolve(generator.PlatformAll)
	require.NoError(t, err)

	f := newTestFlow(generator.PlatformAll, &bytes.Buffer{})
	f.VariantSelection = []string{"arch=x64"}
	result, err := f.generate(cfg, defs, gens)
	require.NoError(t, err)

	multi, ok := result.(MultiPlatform)
	require.True(t, ok, "expected a MultiPlatform result, got %T", result)
	require.Len(t, multi.Platforms, 3)

	names := func(pkgs []*graph.Package) []string {
		var out []string
		for _, p := range pkgs {
			out = append(out, p.Name)
		}
		return out
	}
	android := multi.Platforms[0]
	assert.Equal(t, "android", android.Platform)
	assert.Equal(t, []string{"Base", "ThirdParty.Zlib"}, names(android.Packages))

	windows := multi.Platforms[2]
	assert.Equal(t, "windows", windows.Platform)
	assert.Equal(t, []string{"Base", "ThirdParty.Zlib", "App"}, names(windows.Packages))
	assert.Equal(t, []string{"x64"}, windows.BuildVariants["arch"])
}
