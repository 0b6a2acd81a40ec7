package variants

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/buildgen-dev/buildgen/internal/graph"
)

// Choice is one selected option of a variant.
type Choice struct {
	Name   string
	Option string
}

// Combination is one point of the cartesian product of a set of variants,
// ordered by variant name.
type Combination []Choice

// Get returns the option chosen for the named variant, or "".
func (c Combination) Get(name string) string {
	for _, ch := range c {
		if ch.Name == name {
			return ch.Option
		}
	}
	return ""
}

func (c Combination) String() string {
	parts := make([]string, len(c))
	for i, ch := range c {
		parts[i] = ch.Name + "=" + ch.Option
	}
	return strings.Join(parts, ",")
}

// Names returns the variant names of axes, sorted.
func Names(axes map[string][]string) []string {
	names := make([]string, 0, len(axes))
	for name := range axes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Expand returns every combination of the options of axes. Variants are
// iterated by name, options in their declared order. An empty set of axes
// expands to a single empty combination.
func Expand(axes map[string][]string) []Combination {
	combos := []Combination{{}}
	for _, name := range Names(axes) {
		var next []Combination
		for _, c := range combos {
			for _, opt := range axes[name] {
				nc := make(Combination, len(c), len(c)+1)
				copy(nc, c)
				next = append(next, append(nc, Choice{Name: name, Option: opt}))
			}
		}
		combos = next
	}
	return combos
}

// Merge combines several variant sets. Options of a variant present in more
// than one set are concatenated without duplicates.
func Merge(sets ...map[string][]string) map[string][]string {
	out := make(map[string][]string)
	for _, set := range sets {
		for name, options := range set {
			for _, opt := range options {
				if !contains(out[name], opt) {
					out[name] = append(out[name], opt)
				}
			}
		}
	}
	return out
}

// ParseSelection parses "name=option" pairs as given to --variants.
func ParseSelection(pairs []string) (map[string]string, error) {
	sel := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, opt, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		opt = strings.TrimSpace(opt)
		if !ok || name == "" || opt == "" {
			return nil, fmt.Errorf("invalid variant selection %q (expected name=option)", p)
		}
		sel[strings.ToLower(name)] = opt
	}
	return sel, nil
}

// Filter restricts axes to the selected options.
// Selecting an unknown variant or option is an error.
func Filter(axes map[string][]string, selection map[string]string) (map[string][]string, error) {
	out := make(map[string][]string, len(axes))
	for name, options := range axes {
		out[name] = options
	}
	for name, opt := range selection {
		options, ok := out[name]
		if !ok {
			return nil, fmt.Errorf("unknown build variant '%s' (allowed: %s)", name, strings.Join(Names(axes), ", "))
		}
		if !contains(options, opt) {
			return nil, fmt.Errorf("build variant '%s' has no option '%s' (allowed: %s)", name, opt, strings.Join(options, ", "))
		}
		out[name] = []string{opt}
	}
	return out, nil
}

// ListBuildVariants prints the build variants of a platform.
func ListBuildVariants(w io.Writer, platform string, axes map[string][]string) {
	fmt.Fprintf(w, "Build variants for %s:\n", platform)
	if len(axes) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, name := range Names(axes) {
		fmt.Fprintf(w, "  %s: %s\n", name, strings.Join(axes[name], ", "))
	}
	fmt.Fprintf(w, "  %d combination(s)\n", len(Expand(axes)))
}

// ListVariants prints the variants of every supported package in pkgs.
func ListVariants(w io.Writer, platform string, pkgs []*graph.Package) {
	fmt.Fprintf(w, "Package variants for %s:\n", platform)
	for _, pkg := range graph.Supported(pkgs) {
		vs := pkg.Definition.Variants
		if len(vs) == 0 {
			fmt.Fprintf(w, "  %s: (none)\n", pkg.Name)
			continue
		}
		axes := make(map[string][]string, len(vs))
		fmt.Fprintf(w, "  %s:\n", pkg.Name)
		for _, v := range vs {
			fmt.Fprintf(w, "    %s: %s\n", v.Name, strings.Join(v.Options, ", "))
			axes[v.Name] = v.Options
		}
		fmt.Fprintf(w, "    %d combination(s)\n", len(Expand(axes)))
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
