package graph

import (
	"bufio"
	"fmt"
	"io"
)

// WriteDOT writes pkgs and their dependency edges in Graphviz format.
// Unsupported packages are drawn dashed.
func WriteDOT(w io.Writer, platform string, pkgs []*Package) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "digraph %q {\n", platform)
	fmt.Fprintln(bw, "  rankdir=LR;")
	fmt.Fprintln(bw, "  node [shape=box];")
	for _, pkg := range pkgs {
		attrs := fmt.Sprintf(`label="%s\n%s"`, pkg.Name, pkg.Definition.Type)
		if !pkg.Supported {
			attrs += ", style=dashed"
		}
		fmt.Fprintf(bw, "  %q [%s];\n", pkg.Name, attrs)
	}
	for _, pkg := range pkgs {
		for _, dep := range pkg.Dependencies {
			fmt.Fprintf(bw, "  %q -> %q;\n", pkg.Name, dep.Name)
		}
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}
