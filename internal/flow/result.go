package flow

import (
	"github.com/buildgen-dev/buildgen/internal/generator"
	"github.com/buildgen-dev/buildgen/internal/graph"
)

// Result is what generation produced: either a SinglePlatform or a
// MultiPlatform value.
type Result interface {
	// Singles returns the per-platform results in platform name order.
	Singles() []SinglePlatform
	isResult()
}

// SinglePlatform is the generation result of one platform.
type SinglePlatform struct {
	Platform  string
	Generator generator.Generator
	GenType   string
	Graph     *graph.Graph
	// Packages are the generated packages, dependencies first.
	Packages []*graph.Package
	// BuildVariants are the project build variants merged with the
	// generator's, after --variants filtering.
	BuildVariants map[string][]string
	// FilesWritten counts created or updated files (or files that would be
	// written in a dry run).
	FilesWritten int
}

// MultiPlatform is the result of generating for every platform.
type MultiPlatform struct {
	Platforms []SinglePlatform
}

func (r SinglePlatform) Singles() []SinglePlatform { return []SinglePlatform{r} }
func (r MultiPlatform) Singles() []SinglePlatform { return r.Platforms }

func (SinglePlatform) isResult() {}
func (MultiPlatform) isResult() {}
