package recipe

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/buildgen-dev/buildgen/internal/config"
	"github.com/buildgen-dev/buildgen/internal/graph"
	"github.com/buildgen-dev/buildgen/internal/pkgfile"
	"github.com/buildgen-dev/buildgen/internal/ui"
	"github.com/buildgen-dev/buildgen/pkg/log"
)

// Options tune a recipe build.
type Options struct {
	// ForceClaimInstallArea takes over an install area owned by another project.
	ForceClaimInstallArea bool
	// Filter holds glob patterns matched against recipe and package names.
	// An empty filter selects every recipe.
	Filter []string
}

// Summary reports what a build did.
type Summary struct {
	Built   []string
	Skipped []string
}

// Dirs are the directories a recipe command can refer to.
type Dirs struct {
	Source   string
	Build    string
	Install  string
	Platform string
	Name     string
	Version  string
}

// BuildPackages builds the recipes of the supported packages in pkgs, in the
// given (dependency) order. A recipe whose definition hash matches the stored
// record is skipped.
func BuildPackages(ctx context.Context, cfg *config.Config, platform string, pkgs []*graph.Package, opts Options) (*Summary, error) {
	var recipes []*graph.Package
	for _, pkg := range graph.Supported(pkgs) {
		if pkg.Definition.Recipe != nil && selected(pkg.Definition, opts.Filter) {
			recipes = append(recipes, pkg)
		}
	}

	summary := &Summary{}
	if len(recipes) == 0 {
		log.Info().Msgf("no recipes to build for %s", platform)
		return summary, nil
	}

	installArea := cfg.InstallArea()
	if !cfg.IsWritable() {
		for _, pkg := range recipes {
			if err := dryRun(cfg, platform, pkg.Definition); err != nil {
				return nil, err
			}
			summary.Skipped = append(summary.Skipped, pkg.Definition.Recipe.Name)
		}
		return summary, nil
	}

	if err := Claim(installArea, cfg.ProjectRoot(), opts.ForceClaimInstallArea); err != nil {
		return nil, err
	}
	store, err := OpenStore(installArea)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	for _, pkg := range recipes {
		r := pkg.Definition.Recipe
		hash := Hash(r)

		rec, err := store.Get(platform, r.Name)
		if err != nil {
			return nil, err
		}
		if rec != nil && rec.Hash == hash {
			log.Info().Msgf("recipe %s %s is up to date", r.Name, r.Version)
			summary.Skipped = append(summary.Skipped, r.Name)
			continue
		}
		// The old record no longer describes the install area once a rebuild starts.
		if rec != nil {
			if err := store.Delete(platform, r.Name); err != nil {
				return nil, err
			}
		}

		if err := build(ctx, cfg, platform, pkg.Definition); err != nil {
			return nil, err
		}
		if err := store.Put(&Record{
			Name:     r.Name,
			Version:  r.Version,
			Hash:     hash,
			Platform: platform,
			Built:    time.Now(),
		}); err != nil {
			return nil, err
		}
		ui.PrintSuccess(r.Name, r.Version)
		summary.Built = append(summary.Built, r.Name)
	}
	return summary, nil
}

// Hash returns the SHA-256 of a recipe definition.
func Hash(r *pkgfile.Recipe) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00", r.Name, r.Version)
	for _, cmd := range r.Commands {
		for _, arg := range cmd {
			fmt.Fprintf(h, "%s\x00", arg)
		}
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// DirsFor returns the directories of the recipe of def on platform.
func DirsFor(cfg *config.Config, platform string, def *pkgfile.Definition) Dirs {
	install := filepath.Join(cfg.InstallArea(), platform)
	return Dirs{
		Source:   def.Dir,
		Build:    filepath.Join(install, "build", def.Recipe.Name),
		Install:  install,
		Platform: platform,
		Name:     def.Recipe.Name,
		Version:  def.Recipe.Version,
	}
}

// ExpandCommand substitutes {{.Source}}, {{.Build}} and friends in every
// argument of cmd.
func ExpandCommand(cmd []string, dirs Dirs) ([]string, error) {
	out := make([]string, len(cmd))
	for i, arg := range cmd {
		if !strings.Contains(arg, "{{") {
			out[i] = arg
			continue
		}
		t, err := template.New("arg").Option("missingkey=error").Parse(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid argument %q: %w", arg, err)
		}
		var buf bytes.Buffer
		if err := t.Execute(&buf, dirs); err != nil {
			return nil, fmt.Errorf("invalid argument %q: %w", arg, err)
		}
		out[i] = buf.String()
	}
	return out, nil
}

func dryRun(cfg *config.Config, platform string, def *pkgfile.Definition) error {
	dirs := DirsFor(cfg, platform, def)
	log.Info().Msgf("would build recipe %s %s", def.Recipe.Name, def.Recipe.Version)
	defer log.PushIndent()()
	for _, cmd := range def.Recipe.Commands {
		if len(cmd) == 0 {
			continue
		}
		argv, err := ExpandCommand(cmd, dirs)
		if err != nil {
			return fmt.Errorf("recipe %s: %w", def.Recipe.Name, err)
		}
		log.Info().Msgf("would run %s", strings.Join(argv, " "))
	}
	return nil
}

func build(ctx context.Context, cfg *config.Config, platform string, def *pkgfile.Definition) error {
	r := def.Recipe
	dirs := DirsFor(cfg, platform, def)
	if err := os.MkdirAll(dirs.Build, 0755); err != nil {
		return fmt.Errorf("recipe %s: %w", r.Name, err)
	}

	log.Info().Msgf("building recipe %s %s", r.Name, r.Version)
	defer log.PushIndent()()

	env := append(os.Environ(),
		"BUILDGEN_PLATFORM="+dirs.Platform,
		"BUILDGEN_SOURCE="+dirs.Source,
		"BUILDGEN_BUILD="+dirs.Build,
		"BUILDGEN_INSTALL="+dirs.Install,
	)

	for _, cmd := range r.Commands {
		if len(cmd) == 0 {
			continue
		}
		argv, err := ExpandCommand(cmd, dirs)
		if err != nil {
			return fmt.Errorf("recipe %s: %w", r.Name, err)
		}
		log.Debug().Strs("argv", argv).Msg("run")

		var out []byte
		err = ui.RunSpinner(fmt.Sprintf("%s: %s", r.Name, argv[0]), func() error {
			c := exec.CommandContext(ctx, argv[0], argv[1:]...)
			c.Dir = def.Dir
			c.Env = env
			var runErr error
			out, runErr = c.CombinedOutput()
			return runErr
		})
		if err != nil {
			return fmt.Errorf("recipe %s: command %s failed: %w: %s", r.Name, argv[0], err, strings.TrimSpace(string(out)))
		}
	}
	return nil
}

func selected(def *pkgfile.Definition, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, pattern := range filter {
		if ok, _ := path.Match(pattern, def.Recipe.Name); ok {
			return true
		}
		if ok, _ := path.Match(pattern, def.Name); ok {
			return true
		}
	}
	return false
}
