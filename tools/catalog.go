package tools

import (
	"sort"

	"github.com/docsearch/documenter-mcp-server/internal/searchindex"
)

// SymbolInfo is one documented symbol of a module
type SymbolInfo struct {
	Name       string   `json:"name"`
	Category   string   `json:"category"`             // type, method or function (first seen)
	Location   string   `json:"location"`             // first anchor for the symbol
	Signatures []string `json:"signatures,omitempty"` // one per documented method
	Docstrings int      `json:"docstrings"`
}

// ModuleInfo groups the symbols documented under a module path
type ModuleInfo struct {
	Module  string       `json:"module"`
	Symbols []SymbolInfo `json:"symbols"`
}

// BuildCatalog groups the API records of a payload by module. Modules are
// sorted by name; symbols keep payload order.
func BuildCatalog(idx *searchindex.Index) []ModuleInfo {
	modules := make(map[string]*ModuleInfo)
	positions := make(map[string]map[string]int)

	for _, rec := range idx.Docs {
		if !rec.Category.IsAPI() {
			continue
		}
		sym := rec.Symbol()

		mod, ok := modules[sym.Module]
		if !ok {
			mod = &ModuleInfo{Module: sym.Module}
			modules[sym.Module] = mod
			positions[sym.Module] = make(map[string]int)
		}

		pos, ok := positions[sym.Module][sym.Name]
		if !ok {
			pos = len(mod.Symbols)
			positions[sym.Module][sym.Name] = pos
			mod.Symbols = append(mod.Symbols, SymbolInfo{
				Name:     sym.Name,
				Category: string(rec.Category),
				Location: rec.Location,
			})
		}

		info := &mod.Symbols[pos]
		info.Docstrings++
		if sym.Signature != "" {
			info.Signatures = append(info.Signatures, sym.Signature)
		}
	}

	catalog := make([]ModuleInfo, 0, len(modules))
	for _, name := range sortedKeys(modules) {
		catalog = append(catalog, *modules[name])
	}
	return catalog
}

// Modules returns the API catalog of the active payload
func (d *DocSearch) Modules() ([]ModuleInfo, error) {
	payload, err := d.Payload()
	if err != nil {
		return nil, err
	}
	return BuildCatalog(payload), nil
}

// FindModule returns the catalog entry for a module path
func FindModule(catalog []ModuleInfo, module string) (ModuleInfo, bool) {
	i := sort.Search(len(catalog), func(i int) bool { return catalog[i].Module >= module })
	if i < len(catalog) && catalog[i].Module == module {
		return catalog[i], true
	}
	return ModuleInfo{}, false
}
