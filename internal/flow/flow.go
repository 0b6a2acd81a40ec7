package flow

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/buildgen-dev/buildgen/internal/config"
	"github.com/buildgen-dev/buildgen/internal/discovery"
	"github.com/buildgen-dev/buildgen/internal/generator"
	"github.com/buildgen-dev/buildgen/internal/graph"
	"github.com/buildgen-dev/buildgen/internal/pkgfile"
	"github.com/buildgen-dev/buildgen/internal/platform"
	"github.com/buildgen-dev/buildgen/internal/recipe"
	"github.com/buildgen-dev/buildgen/internal/variants"
	"github.com/buildgen-dev/buildgen/pkg/log"
)

// GraphFileName is written to the platform output directory by --graph.
const GraphFileName = "DependencyGraph.dot"

// ToolFlowBuildGen generates build files for a platform and then either lists
// variants or builds the recipes of the generated packages.
type ToolFlowBuildGen struct {
	// Platform is a generator name or generator.PlatformAll.
	Platform string
	// VariantSelection holds the name=option pairs of --variants.
	VariantSelection []string
	// RecipeFilter holds the globs of --recipes.
	RecipeFilter []string
	// Out receives variant listings.
	Out io.Writer

	// checkBuildSupport reports whether recipes can be built for a platform.
	checkBuildSupport func(gen generator.Generator, genType string) error
}

// NewToolFlowBuildGen returns a flow for platformName.
func NewToolFlowBuildGen(platformName string, out io.Writer) *ToolFlowBuildGen {
	return &ToolFlowBuildGen{
		Platform:          platform.Normalize(platformName),
		Out:               out,
		checkBuildSupport: platform.CheckBuildSupport,
	}
}

// Process runs the flow for the project containing currentDirPath.
// Only packages below currentDirPath (and their dependencies) are generated.
func (f *ToolFlowBuildGen) Process(ctx context.Context, currentDirPath string, toolConfig *config.ToolConfig, localToolConfig config.LocalToolConfig) error {
	log.Info().Msgf("generating for platform %s", f.Platform)
	defer log.PushIndent()()

	cfg, err := config.NewConfig(currentDirPath, toolConfig, localToolConfig.PackageConfigurationType)
	if err != nil {
		return err
	}
	if localToolConfig.DryRun {
		cfg.ForceDisableAllWrites()
	}
	if localToolConfig.IgnoreNotSupported {
		cfg.IgnoreNotSupported = true
	}
	if localToolConfig.Graph {
		cfg.Graph = true
	}
	cfg.GenType = localToolConfig.GenType

	files, err := discovery.GetFiles(cfg)
	if err != nil {
		return err
	}
	log.Debug().Int("count", len(files)).Msg("package files found")
	defs, err := pkgfile.LoadAll(files)
	if err != nil {
		return err
	}

	gens, err := generator.Resolve(f.Platform)
	if err != nil {
		return err
	}

	result, err := f.generate(cfg, defs, gens)
	if err != nil {
		return err
	}

	if cfg.Graph {
		for _, sp := range result.Singles() {
			if err := writeGraph(ctx, cfg, sp); err != nil {
				return err
			}
		}
	}

	if !localToolConfig.DontBuildRecipes && !cfg.PackageConfiguration.Recipes {
		log.Info().Msgf("recipe building disabled by package configuration '%s'", cfg.PackageConfigurationType)
		localToolConfig.DontBuildRecipes = true
	}

	buildable := make(map[string]bool)
	if !localToolConfig.DontBuildRecipes {
		for _, sp := range result.Singles() {
			if err := f.checkBuildSupport(sp.Generator, sp.GenType); err != nil {
				log.Warn().Msgf("build not supported on platform %s, recipe building disabled", sp.Platform)
				log.Debug().Err(err).Msg("build support")
				continue
			}
			buildable[sp.Platform] = true
		}
		if len(buildable) == 0 {
			localToolConfig.DontBuildRecipes = true
		}
	}

	if localToolConfig.ListsVariants() {
		for _, sp := range result.Singles() {
			if localToolConfig.ListVariants {
				variants.ListVariants(f.Out, sp.Platform, sp.Packages)
			}
			if localToolConfig.ListBuildVariants {
				variants.ListBuildVariants(f.Out, sp.Platform, sp.BuildVariants)
			}
		}
		return nil
	}

	if localToolConfig.DontBuildRecipes {
		return nil
	}
	return f.buildRecipes(ctx, cfg, result, buildable, localToolConfig.ForceClaimInstallArea)
}

// generate produces the build files of every generator in gens.
func (f *ToolFlowBuildGen) generate(cfg *config.Config, defs []*pkgfile.Definition, gens []generator.Generator) (Result, error) {
	selection, err := variants.ParseSelection(f.VariantSelection)
	if err != nil {
		return nil, err
	}

	if len(gens) == 1 && f.Platform != generator.PlatformAll {
		return f.generatePlatform(cfg, defs, gens[0], selection, false)
	}

	var multi MultiPlatform
	for _, gen := range gens {
		log.Info().Msgf("Generator: %s", gen.Name())
		sp, err := func() (SinglePlatform, error) {
			defer log.PushIndent()()
			return f.generatePlatform(cfg, defs, gen, selection, true)
		}()
		if err != nil {
			return nil, err
		}
		multi.Platforms = append(multi.Platforms, sp)
	}
	return multi, nil
}

// generatePlatform generates the build files of one platform. In a multi
// platform run packages a platform does not support are always skipped, and
// generator types or variant selections the platform does not know are ignored.
func (f *ToolFlowBuildGen) generatePlatform(cfg *config.Config, defs []*pkgfile.Definition, gen generator.Generator, selection map[string]string, multi bool) (SinglePlatform, error) {
	name := gen.Name()
	genType, err := generator.ResolveGenType(gen, cfg.GenType)
	if err != nil {
		if !multi {
			return SinglePlatform{}, err
		}
		log.Debug().Err(err).Msg("using the default generator type")
		genType = config.DefaultGenType
	}

	g, err := graph.Resolve(defs, name)
	if err != nil {
		return SinglePlatform{}, err
	}
	log.Debug().Int("packages", g.Len()).Msgf("resolved graph for %s", name)

	requested := g.Closure(func(p *graph.Package) bool {
		return discovery.IsBelow(p.Definition.Dir, cfg.CurrentDir)
	})
	if len(requested) == 0 {
		log.Warn().Msgf("no packages below %s", cfg.CurrentDir)
	}
	if !cfg.IgnoreNotSupported && !multi {
		if err := graph.RequireSupported(requested); err != nil {
			return SinglePlatform{}, err
		}
	}
	for _, pkg := range requested {
		if !pkg.Supported {
			log.Warn().Msgf("skipping %s: %s", pkg.Name, pkg.UnsupportedReason)
		}
	}
	pkgs := graph.Supported(requested)

	all := variants.Merge(cfg.Tool.BuildVariants, gen.BuildVariants())
	if multi {
		selection = knownSelection(all, selection)
	}
	buildVariants, err := variants.Filter(all, selection)
	if err != nil {
		return SinglePlatform{}, err
	}

	outDir := cfg.OutputDir(name)
	files, err := gen.Generate(&generator.Context{
		Config:        cfg,
		Platform:      name,
		GenType:       genType,
		Graph:         g,
		Packages:      pkgs,
		OutputDir:     outDir,
		BuildVariants: buildVariants,
	})
	if err != nil {
		return SinglePlatform{}, fmt.Errorf("generating %s: %w", name, err)
	}

	written, err := generator.NewWriter(cfg, name).Write(files)
	if err != nil {
		return SinglePlatform{}, err
	}
	log.Info().Msgf("%s: %d package(s), %d of %d file(s) updated in %s", name, len(pkgs), written, len(files), outDir)

	return SinglePlatform{
		Platform:      name,
		Generator:     gen,
		GenType:       genType,
		Graph:         g,
		Packages:      pkgs,
		BuildVariants: buildVariants,
		FilesWritten:  written,
	}, nil
}

func (f *ToolFlowBuildGen) buildRecipes(ctx context.Context, cfg *config.Config, result Result, buildable map[string]bool, forceClaim bool) error {
	opts := recipe.Options{ForceClaimInstallArea: forceClaim, Filter: f.RecipeFilter}

	if sp, ok := result.(SinglePlatform); ok {
		return buildPlatform(ctx, cfg, sp, opts)
	}

	for _, sp := range result.Singles() {
		if len(sp.Packages) == 0 || !buildable[sp.Platform] {
			continue
		}
		log.Info().Msgf("Generator: %s", sp.Platform)
		err := func() error {
			defer log.PushIndent()()
			return buildPlatform(ctx, cfg, sp, opts)
		}()
		if err != nil {
			return err
		}
	}
	return nil
}

func buildPlatform(ctx context.Context, cfg *config.Config, sp SinglePlatform, opts recipe.Options) error {
	summary, err := recipe.BuildPackages(ctx, cfg, sp.Platform, sp.Packages, opts)
	if err != nil {
		return err
	}
	if len(summary.Built)+len(summary.Skipped) > 0 {
		log.Info().Msgf("%s: %d recipe(s) built, %d skipped", sp.Platform, len(summary.Built), len(summary.Skipped))
	}
	return nil
}

// writeGraph writes the dependency graph of sp and renders it to PNG when
// graphviz is available.
func writeGraph(ctx context.Context, cfg *config.Config, sp SinglePlatform) error {
	var buf bytes.Buffer
	if err := graph.WriteDOT(&buf, sp.Platform, sp.Graph.Ordered()); err != nil {
		return err
	}
	if _, err := generator.NewWriter(cfg, sp.Platform).Write([]*generator.OutputFile{
		{Path: GraphFileName, Content: buf.Bytes()},
	}); err != nil {
		return err
	}
	if !cfg.IsWritable() {
		return nil
	}

	dot, err := platform.FindTool("dot")
	if err != nil {
		log.Debug().Err(err).Msg("skipping graph image")
		return nil
	}
	src := filepath.Join(cfg.OutputDir(sp.Platform), GraphFileName)
	png := strings.TrimSuffix(src, filepath.Ext(src)) + ".png"
	out, err := exec.CommandContext(ctx, dot, "-Tpng", "-o", png, src).CombinedOutput()
	if err != nil {
		return fmt.Errorf("dot failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	log.Info().Msgf("dependency graph written to %s", png)
	return nil
}

// knownSelection drops the selected variants that are not in axes.
func knownSelection(axes map[string][]string, selection map[string]string) map[string]string {
	out := make(map[string]string, len(selection))
	for name, opt := range selection {
		if _, ok := axes[name]; ok {
			out[name] = opt
		}
	}
	return out
}

// CurrentDir returns the absolute working directory.
func CurrentDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Abs(dir)
}
