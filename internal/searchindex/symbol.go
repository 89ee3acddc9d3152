package searchindex

import (
	"strings"
)

// Symbol is the code symbol behind an API record, split out of its
// qualified title and anchor.
type Symbol struct {
	Module    string `json:"module,omitempty"`    // "StructuredDecompositions.Decompositions"
	Name      string `json:"name"`                // "adhesionSpans"
	Signature string `json:"signature,omitempty"` // "Tuple{Any, Any}"
	Qualified string `json:"qualified"`           // Module + "." + Name
}

// ParseSymbol splits a qualified title into module and name, and takes the
// method signature from the anchor when the anchor extends the title.
//
//	ParseSymbol("Pkg.Mod.f", "api/#Pkg.Mod.f-Tuple{Any}")
//	  -> {Module: "Pkg.Mod", Name: "f", Signature: "Tuple{Any}"}
//
// A purely numeric suffix ("-2") disambiguates duplicate anchors and is
// not a signature.
func ParseSymbol(title, location string) Symbol {
	title = strings.TrimSpace(title)
	sym := Symbol{Name: title, Qualified: title}

	if dot := moduleSeparator(title); dot > 0 {
		sym.Module = title[:dot]
		sym.Name = title[dot+1:]
	}

	fragment := Fragment(location)
	if rest, ok := strings.CutPrefix(fragment, title); ok {
		if sig, ok := strings.CutPrefix(rest, "-"); ok && sig != "" && !isDigits(sig) {
			sym.Signature = sig
		}
	}

	return sym
}

// moduleSeparator returns the index of the dot between the module path and
// the symbol name, or -1. Operator names such as "Base.:+" or "Mod.∘" keep
// their punctuation.
func moduleSeparator(title string) int {
	if i := strings.LastIndex(title, ".:"); i > 0 {
		return i
	}
	i := strings.LastIndex(title, ".")
	if i == len(title)-1 {
		// Name is the "." operator itself
		i = strings.LastIndex(title[:i], ".")
	}
	return i
}

// Fragment returns the anchor part of a location ("" if there is none).
func Fragment(location string) string {
	_, frag, found := strings.Cut(location, "#")
	if !found {
		return ""
	}
	return frag
}

// PagePath returns the page part of a location, without the anchor.
func PagePath(location string) string {
	path, _, _ := strings.Cut(location, "#")
	return path
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
