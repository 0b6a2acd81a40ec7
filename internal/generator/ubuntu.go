package generator

import (
	"path"

	"github.com/buildgen-dev/buildgen/internal/templates"
)

// GenTypeCMake selects CMake output on ubuntu.
const GenTypeCMake = "cmake"

func init() {
	Register("ubuntu", func() Generator { return &ubuntuGenerator{} })
}

// ubuntuGenerator emits GNU make or CMake files.
type ubuntuGenerator struct{}

func (g *ubuntuGenerator) Name() string { return "ubuntu" }

func (g *ubuntuGenerator) GenTypes() []string { return []string{"default", GenTypeCMake} }

func (g *ubuntuGenerator) BuildTool(genType string) string {
	if genType == GenTypeCMake {
		return "cmake"
	}
	return "make"
}

func (g *ubuntuGenerator) BuildVariants() map[string][]string { return nil }

func (g *ubuntuGenerator) Generate(ctx *Context) ([]*OutputFile, error) {
	genType, err := ResolveGenType(g, ctx.GenType)
	if err != nil {
		return nil, err
	}

	rootTmpl, pkgTmpl, fileName := "Makefile.root.tmpl", "Makefile.pkg.tmpl", "Makefile"
	if genType == GenTypeCMake {
		rootTmpl, pkgTmpl, fileName = "CMakeLists.root.tmpl", "CMakeLists.pkg.tmpl", "CMakeLists.txt"
	}

	m, err := newModel(ctx, false)
	if err != nil {
		return nil, err
	}

	funcs := GetCommonFuncMap()
	var files []*OutputFile
	for _, pkg := range m.packages {
		content, err := templates.Render(pkgTmpl, m.data(pkg), funcs)
		if err != nil {
			return nil, err
		}
		files = append(files, &OutputFile{Path: path.Join(pkg.Name, fileName), Content: content})
	}

	content, err := templates.Render(rootTmpl, m.data(nil), funcs)
	if err != nil {
		return nil, err
	}
	files = append(files, &OutputFile{Path: fileName, Content: content})
	return files, nil
}
