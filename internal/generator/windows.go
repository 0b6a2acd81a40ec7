package generator

import (
	"path"

	"github.com/buildgen-dev/buildgen/internal/templates"
	"github.com/buildgen-dev/buildgen/internal/variants"
)

func init() {
	Register("windows", func() Generator { return &windowsGenerator{} })
}

// windowsGenerator emits Visual Studio projects and a solution.
type windowsGenerator struct{}

func (g *windowsGenerator) Name() string { return "windows" }

func (g *windowsGenerator) GenTypes() []string { return []string{"default"} }

func (g *windowsGenerator) BuildTool(string) string { return "msbuild" }

func (g *windowsGenerator) BuildVariants() map[string][]string {
	return map[string][]string{"arch": {"x64", "ARM64"}}
}

func (g *windowsGenerator) Generate(ctx *Context) ([]*OutputFile, error) {
	if _, err := ResolveGenType(g, ctx.GenType); err != nil {
		return nil, err
	}

	m, err := newModel(ctx, true)
	if err != nil {
		return nil, err
	}
	configs := g.configurations(ctx.BuildVariants)

	funcs := GetCommonFuncMap()
	var files []*OutputFile
	for _, pkg := range m.packages {
		data := m.data(pkg)
		data.Configurations = configs
		content, err := templates.Render("vcxproj.tmpl", data, funcs)
		if err != nil {
			return nil, err
		}
		files = append(files, &OutputFile{Path: path.Join(pkg.Name, pkg.Name+".vcxproj"), Content: content})
	}

	data := m.data(nil)
	data.Configurations = configs
	content, err := templates.Render("sln.tmpl", data, funcs)
	if err != nil {
		return nil, err
	}
	files = append(files, &OutputFile{Path: data.ProjectName + ".sln", Content: content})
	return files, nil
}

// configurations expands the config and arch build variants into one
// configuration per combination.
func (g *windowsGenerator) configurations(buildVariants map[string][]string) []configuration {
	axes := map[string][]string{
		"config": buildVariants["config"],
		"arch":   buildVariants["arch"],
	}
	if len(axes["config"]) == 0 {
		axes["config"] = []string{"Debug", "Release"}
	}
	if len(axes["arch"]) == 0 {
		axes["arch"] = g.BuildVariants()["arch"]
	}

	var out []configuration
	for _, c := range variants.Expand(axes) {
		out = append(out, configuration{Config: c.Get("config"), Arch: c.Get("arch")})
	}
	return out
}
