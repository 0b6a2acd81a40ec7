package generator

import (
	"strings"
	"text/template"
	"unicode"
)

// identifier turns a package name such as "Base.Core-Utils" into a name that
// is valid as a make, CMake or MSBuild target ("Base_Core_Utils").
func identifier(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return '_'
	}, name)
}

// winpath converts a slash separated relative path to a Windows one.
func winpath(p string) string {
	return strings.ReplaceAll(p, "/", `\`)
}

// GetCommonFuncMap returns the template functions shared by all generators.
func GetCommonFuncMap() template.FuncMap {
	return template.FuncMap{
		"winpath":    winpath,
		"identifier": identifier,
		"Lower":      strings.ToLower,
		"Upper":      strings.ToUpper,
		"join":       strings.Join,
	}
}
