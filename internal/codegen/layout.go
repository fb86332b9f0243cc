package codegen

import "github.com/Portfoligno/veltrano-transpiler-sub001/internal/ast"

// layout decides, for every declared function, whether its signature needs
// a synthesized lifetime (spec.md §4.6): has_hidden_bump always does,
// since the inserted bump parameter is "&'a bumpalo::Bump"; otherwise any
// naturally-borrowed parameter or return type does. Data-class lifetime
// need is already available directly from checker.DataClassDef.Borrowed,
// computed during the checker's own pre-scan fixpoint, so there is nothing
// further to precompute for those here.
func (g *Generator) layout(prog *ast.Program) {
	for _, stmt := range prog.Stmts {
		fn, ok := stmt.(*ast.FunDecl)
		if !ok {
			continue
		}
		sig := g.result.Functions[fn.Name]
		if sig == nil {
			continue
		}
		need := sig.HasBump
		if !need {
			for _, pt := range sig.ParamTypes {
				if containsReference(g.lowerType(pt)) {
					need = true
					break
				}
			}
		}
		if !need && containsReference(g.lowerType(sig.ReturnType)) {
			need = true
		}
		g.needsLifetime[fn.Name] = need
	}
}
