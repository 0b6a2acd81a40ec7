package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"text/template"
)

//go:embed *.tmpl
var templatesFS embed.FS

// Get returns the content of the specified template file.
func Get(name string) (string, error) {
	content, err := templatesFS.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("template %s not found: %w", name, err)
	}
	return string(content), nil
}

// Names lists the embedded templates.
func Names() []string {
	names, _ := fs.Glob(templatesFS, "*.tmpl")
	return names
}

// Render executes the named template with data.
// funcMap may be nil.
func Render(name string, data interface{}, funcMap template.FuncMap) ([]byte, error) {
	content, err := Get(name)
	if err != nil {
		return nil, err
	}
	if funcMap == nil {
		funcMap = template.FuncMap{}
	}

	t, err := template.New(name).Funcs(funcMap).Option("missingkey=error").Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
