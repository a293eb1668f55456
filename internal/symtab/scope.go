// Package symtab implements the two-level scope described in spec.md
// §3.4/§4.3: a global (module-level) symbol table borrowed by every
// procedure's own scope, plus each procedure's owned local map.
package symtab

import (
	"fmt"
	"sort"

	"golang.org/x/exp/maps"

	"mechc/internal/ast"
)

// Global is the module-level symbol table. Every procedure Scope holds a
// borrowed (shared) pointer to the same Global instance.
type Global struct {
	symbols map[string]ast.Symbol
}

// NewGlobal creates an empty module-level symbol table.
func NewGlobal() *Global {
	return &Global{symbols: make(map[string]ast.Symbol)}
}

// Insert adds sym under its name. It fails if the name already exists.
func (g *Global) Insert(sym ast.Symbol) error {
	name := sym.SymbolName()
	if _, exists := g.symbols[name]; exists {
		return fmt.Errorf("duplicate symbol definition: %q", name)
	}
	g.symbols[name] = sym
	return nil
}

// Replace overwrites (or inserts) a symbol unconditionally; used by
// lowering when installing the synthesised nrn_init/nrn_state/
// nrn_current APIMethods after a name-collision check has already run.
func (g *Global) Replace(sym ast.Symbol) {
	g.symbols[sym.SymbolName()] = sym
}

// Find looks up name in the global table only.
func (g *Global) Find(name string) (ast.Symbol, bool) {
	s, ok := g.symbols[name]
	return s, ok
}

// Names returns every global symbol name, sorted, for deterministic
// iteration in diagnostics and debug tracing.
func (g *Global) Names() []string {
	names := maps.Keys(g.symbols)
	sort.Strings(names)
	return names
}

// Scope is a procedure's own symbol table: an owned local map chained to
// the module's borrowed Global table. It implements ast.ScopeRef.
type Scope struct {
	global *Global
	local  map[string]ast.Symbol
	// localOrder preserves insertion order so LocalNames can walk locals
	// deterministically.
	localOrder []string
}

// NewScope creates a procedure scope chained to global.
func NewScope(global *Global) *Scope {
	return &Scope{global: global, local: make(map[string]ast.Symbol)}
}

// Find searches the local map first, then falls back to global (§3.4).
func (s *Scope) Find(name string) (ast.Symbol, bool) {
	if sym, ok := s.local[name]; ok {
		return sym, true
	}
	return s.global.Find(name)
}

// FindGlobal bypasses the local map (§3.4).
func (s *Scope) FindGlobal(name string) (ast.Symbol, bool) {
	return s.global.Find(name)
}

// FindLocal looks up name in the local map only.
func (s *Scope) FindLocal(name string) (ast.Symbol, bool) {
	sym, ok := s.local[name]
	return sym, ok
}

// ShadowsIndexedVariable reports whether name already denotes an
// IndexedVariable in the global table — used to emit the §4.3 shadow
// warning when a local is added under the same name.
func (s *Scope) ShadowsIndexedVariable(name string) bool {
	g, ok := s.global.Find(name)
	if !ok {
		return false
	}
	_, isIndexed := g.(*ast.IndexedVariable)
	return isIndexed
}

// AddLocal inserts a symbol into the local map. It fails if the name is
// already bound locally (§4.3); shadowing a global is permitted.
func (s *Scope) AddLocal(sym ast.Symbol) error {
	name := sym.SymbolName()
	if _, exists := s.local[name]; exists {
		return fmt.Errorf("attempted to shadow local-scope symbol: %q", name)
	}
	s.local[name] = sym
	s.localOrder = append(s.localOrder, name)
	return nil
}

// Global returns the scope's underlying module-level table.
func (s *Scope) Global() *Global { return s.global }

// LocalNames returns the local symbol names in insertion order.
func (s *Scope) LocalNames() []string {
	out := make([]string, len(s.localOrder))
	copy(out, s.localOrder)
	return out
}
