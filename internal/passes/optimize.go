package passes

import (
	"mechc/internal/ast"
	"mechc/internal/module"
)

// Optimize runs the optional optimisation pass (§4.9) over every user
// PROCEDURE, DERIVATIVE, INITIAL and BREAKPOINT body and every
// synthesised APIMethod in mod: constant-fold each body, then — for a
// point-process module only — retag every local variable appearing in an
// API method's output list as a ghost variable, so a printer can allocate
// it a per-thread scratch slot instead of a single shared one. When
// lowering has not populated mod.APIMethods, only the source block bodies
// are folded and nothing is ghost-tagged.
func Optimize(mod *module.Module) {
	for _, name := range mod.ProcedureOrder {
		FoldBlock(mod.Procedures[name].Body)
	}
	for _, name := range mod.DerivativeOrder {
		FoldBlock(mod.Derivatives[name].Body)
	}
	if mod.Initial != nil {
		FoldBlock(mod.Initial.Body)
	}
	if mod.Breakpoint != nil {
		FoldBlock(mod.Breakpoint.Body)
	}

	isPointProcess := mod.Kind == module.PointProcess

	for _, name := range [...]string{"nrn_init", "nrn_state", "nrn_current"} {
		api, ok := mod.APIMethods[name]
		if !ok || api == nil {
			continue
		}
		FoldBlock(api.Body)
		if !isPointProcess {
			continue
		}
		for _, out := range api.Outputs {
			tagIfLocal(out.Local)
		}
	}
}

// tagIfLocal ghost-tags sym only when it is itself procedure-local (a
// LocalVariable, or a Variable with VisLocal visibility); a module-scope
// global Variable bound directly into an output list — e.g. an ion
// current written straight through without a local alias — is already a
// single shared slot and has nothing to retag.
func tagIfLocal(sym ast.Symbol) {
	switch s := sym.(type) {
	case *ast.LocalVariable:
		TagGhost(s)
	case *ast.Variable:
		if s.Visibility == ast.VisLocal {
			TagGhost(s)
		}
	}
}
