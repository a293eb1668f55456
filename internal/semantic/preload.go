// Package semantic implements module-variable preloading and
// per-procedure semantic analysis (spec.md §4.4, §4.5): scope creation,
// identifier resolution, lvalue and call-arity checks, indexed-variable
// aliasing, and the FUNCTION/INITIAL nesting rules.
package semantic

import (
	"strings"

	"mechc/internal/ast"
	"mechc/internal/diagnostics"
	"mechc/internal/module"
)

// Analyze preloads module-scope symbols and then runs semantic() over
// every procedure, function, and the NET_RECEIVE block, continuing past
// errors in one construct so sibling constructs are still checked
// (§4.10).
func Analyze(mod *module.Module) {
	preload(mod)
	analyzeAll(mod)
}

func insert(mod *module.Module, sym ast.Symbol) {
	if err := mod.Globals.Insert(sym); err != nil {
		mod.Diags.Errorf(diagnostics.ErrE005Duplicate, diagnostics.Location{}, "%s", err)
	}
}

func lookupVariable(mod *module.Module, name string) *ast.Variable {
	sym, ok := mod.Globals.Find(name)
	if !ok {
		return nil
	}
	v, ok := sym.(*ast.Variable)
	if !ok {
		return nil
	}
	return v
}

// preload installs the module-scope symbol set described in §4.5, before
// any procedure body is walked.
func preload(mod *module.Module) {
	preloadCallables(mod)

	t := ast.NewVariable(module.NameT)
	t.Access = ast.AccessRead
	t.Linkage = ast.LinkExtern
	t.Kind = ast.VarReserved
	insert(mod, t)

	dt := ast.NewVariable(module.NameDt)
	dt.Access = ast.AccessRead
	dt.Linkage = ast.LinkExtern
	dt.Kind = ast.VarReserved
	insert(mod, dt)

	g := ast.NewVariable(module.NameG)
	g.Access = ast.AccessReadWrite
	g.RangeKind = ast.Range
	g.Kind = ast.VarReserved
	insert(mod, g)

	insert(mod, ast.NewIndexedVariable(module.NameVecV, module.NameVecV, ast.AccessRead))
	insert(mod, ast.NewIndexedVariable(module.NameVecRHS, module.NameVecRHS, ast.AccessWrite))
	insert(mod, ast.NewIndexedVariable(module.NameVecD, module.NameVecD, ast.AccessWrite))

	if mod.State != nil {
		for _, name := range mod.State.Names {
			v := ast.NewVariable(name)
			v.Access = ast.AccessReadWrite
			v.RangeKind = ast.Range
			v.IsState = true
			v.Kind = ast.VarState
			insert(mod, v)
		}
	}

	if mod.Parameter != nil {
		for _, entry := range mod.Parameter.Entries {
			v := ast.NewVariable(entry.Name)
			v.Access = ast.AccessRead
			v.Kind = ast.VarParameter
			if entry.HasDefault {
				v.HasDefault = true
				v.Default = entry.Default
			}
			switch entry.Name {
			case module.NameV:
				v.RangeKind = ast.Range
				v.Linkage = ast.LinkExtern
			case module.NameCelsius:
				v.Linkage = ast.LinkExtern
			}
			insert(mod, v)
		}
	}

	if mod.Assigned != nil {
		for _, entry := range mod.Assigned.Entries {
			v := ast.NewVariable(entry.Name)
			v.Access = ast.AccessReadWrite
			v.RangeKind = ast.Range
			v.Visibility = ast.VisLocal
			v.Kind = ast.VarAssigned
			insert(mod, v)
		}
	}

	if mod.Neuron != nil {
		preloadIons(mod)
		preloadNonspecificCurrents(mod)

		for _, name := range mod.Neuron.GlobalNames {
			v := lookupVariable(mod, name)
			if v == nil {
				mod.Diags.Errorf(diagnostics.ErrE001Undefined, diagnostics.Location{}, "GLOBAL refers to undeclared variable %q", name)
				continue
			}
			v.Visibility = ast.VisGlobal
		}
		for _, name := range mod.Neuron.RangeNames {
			v := lookupVariable(mod, name)
			if v == nil {
				mod.Diags.Errorf(diagnostics.ErrE001Undefined, diagnostics.Location{}, "RANGE refers to undeclared variable %q", name)
				continue
			}
			v.RangeKind = ast.Range
		}
	}
}

// preloadCallables inserts every PROCEDURE, FUNCTION, and DERIVATIVE block
// into module scope so SOLVE statements and ordinary calls can resolve
// their target by name (§4.4) regardless of declaration order.
func preloadCallables(mod *module.Module) {
	for _, name := range mod.ProcedureOrder {
		insert(mod, mod.Procedures[name])
	}
	for _, name := range mod.FunctionOrder {
		insert(mod, mod.Functions[name])
	}
	for _, name := range mod.DerivativeOrder {
		insert(mod, mod.Derivatives[name])
	}
}

func preloadIons(mod *module.Module) {
	for _, dep := range mod.Neuron.Ions {
		for _, name := range dep.Read {
			v := lookupVariable(mod, name)
			if v == nil {
				mod.Diags.Errorf(diagnostics.ErrE006IonNotDeclared, diagnostics.Location{}, "USEION %s READ refers to undeclared variable %q", dep.Name, name)
				continue
			}
			v.Access = ast.AccessRead
			v.Visibility = ast.VisGlobal
			v.Ion = dep.Kind
			insert(mod, ast.NewIndexedVariable("ion_"+name, "ion_"+name, ast.AccessRead))
		}
		for _, name := range dep.Write {
			v := lookupVariable(mod, name)
			if v == nil {
				mod.Diags.Errorf(diagnostics.ErrE006IonNotDeclared, diagnostics.Location{}, "USEION %s WRITE refers to undeclared variable %q", dep.Name, name)
				continue
			}
			v.Access = ast.AccessWrite
			v.Visibility = ast.VisGlobal
			v.Ion = dep.Kind
			insert(mod, ast.NewIndexedVariable("ion_"+name, "ion_"+name, ast.AccessWrite))
		}
	}
}

func preloadNonspecificCurrents(mod *module.Module) {
	for _, name := range mod.Neuron.NonspecificCurrents {
		if !strings.HasPrefix(name, "i") {
			mod.Diags.Errorf(diagnostics.ErrE007BadNonspecific, diagnostics.Location{}, "NONSPECIFIC_CURRENT name %q must start with 'i'", name)
			continue
		}
		v := lookupVariable(mod, name)
		if v == nil {
			mod.Diags.Errorf(diagnostics.ErrE007BadNonspecific, diagnostics.Location{}, "NONSPECIFIC_CURRENT refers to undeclared variable %q", name)
			continue
		}
		v.Access = ast.AccessReadWrite
		v.Visibility = ast.VisGlobal
		v.Ion = ast.IonNonspecific
	}
}
