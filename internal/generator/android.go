package generator

import (
	"path"

	"github.com/buildgen-dev/buildgen/internal/templates"
)

func init() {
	Register("android", func() Generator { return &androidGenerator{} })
}

// androidGenerator emits a gradle multi-project build. There is no native
// build tool; the output is meant to be opened with Android Studio.
type androidGenerator struct{}

func (g *androidGenerator) Name() string { return "android" }

func (g *androidGenerator) GenTypes() []string { return []string{"default"} }

func (g *androidGenerator) BuildTool(string) string { return "" }

func (g *androidGenerator) BuildVariants() map[string][]string {
	return map[string][]string{"abi": {"arm64-v8a", "armeabi-v7a", "x86_64"}}
}

func (g *androidGenerator) Generate(ctx *Context) ([]*OutputFile, error) {
	if _, err := ResolveGenType(g, ctx.GenType); err != nil {
		return nil, err
	}

	m, err := newModel(ctx, false)
	if err != nil {
		return nil, err
	}
	abis := ctx.BuildVariants["abi"]
	if len(abis) == 0 {
		abis = g.BuildVariants()["abi"]
	}

	funcs := GetCommonFuncMap()
	var files []*OutputFile
	for _, pkg := range m.packages {
		data := m.data(pkg)
		data.ABIs = abis
		content, err := templates.Render("build.gradle.tmpl", data, funcs)
		if err != nil {
			return nil, err
		}
		files = append(files, &OutputFile{Path: path.Join(pkg.Name, "build.gradle"), Content: content})
	}

	content, err := templates.Render("settings.gradle.tmpl", m.data(nil), funcs)
	if err != nil {
		return nil, err
	}
	files = append(files, &OutputFile{Path: "settings.gradle", Content: content})
	return files, nil
}
