package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/buildgen-dev/buildgen/internal/pkgfile"
	"github.com/buildgen-dev/buildgen/internal/templates"
	"github.com/buildgen-dev/buildgen/internal/ui"
)

var newPackageType string

// newCmd represents the new command.
var newCmd = &cobra.Command{
	Use:   "new <Package.Name>",
	Short: "Create a new package below the current directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		dir, err := runNew(cwd, args[0], newPackageType)
		if err != nil {
			return err
		}
		ui.PrintSuccess("created", dir)
		return nil
	},
}

func init() {
	newCmd.Flags().StringVarP(&newPackageType, "type", "t", pkgfile.TypeExecutable, "package type (executable, library or header_library)")
	rootCmd.AddCommand(newCmd)
}

// runNew scaffolds the package name in a new directory below parent and
// returns that directory. An existing directory is never overwritten.
func runNew(parent, name, pkgType string) (string, error) {
	data := struct {
		Name      string
		Type      string
		Namespace string
	}{name, pkgType, strings.ReplaceAll(name, ".", "::")}

	pkgYAML, err := templates.Render("Package.yaml.tmpl", data, nil)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(parent, name)
	if _, err := pkgfile.Parse(pkgYAML, filepath.Join(dir, pkgfile.FileName)); err != nil {
		return "", fmt.Errorf("invalid package: %w", err)
	}
	if pkgType == pkgfile.TypeExternal {
		return "", fmt.Errorf("external packages are not scaffolded, write %s by hand", pkgfile.FileName)
	}

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		return "", fmt.Errorf("directory %s already exists", dir)
	}

	files := map[string][]byte{pkgfile.FileName: pkgYAML}
	switch pkgType {
	case pkgfile.TypeExecutable:
		content, err := templates.Render("main.cpp.tmpl", data, nil)
		if err != nil {
			return "", err
		}
		files[filepath.Join("source", "main.cpp")] = content
	case pkgfile.TypeLibrary:
		content, err := templates.Render("library.cpp.tmpl", data, nil)
		if err != nil {
			return "", err
		}
		files[filepath.Join("source", strings.ToLower(strings.ReplaceAll(name, ".", "_"))+".cpp")] = content
	}

	if err := os.MkdirAll(filepath.Join(dir, "include"), 0755); err != nil {
		return "", err
	}
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return "", err
		}
		if err := os.WriteFile(path, content, 0644); err != nil {
			return "", err
		}
	}
	return dir, nil
}
