package codegen

import (
	"strings"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/ast"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/types"
)

// emitDataClass emits "data class N(val f1: T1, ...)" as a Rust struct.
// A Borrowed data class gets "<'a>" on its struct header and its field
// references; uses of the type name elsewhere (parameters, return types,
// locals) are emitted without a lifetime argument.
func (g *Generator) emitDataClass(dc *ast.DataClass) {
	def := g.result.DataClasses[dc.Name]
	if def == nil {
		return
	}
	lt := ""
	header := dc.Name
	if def.Borrowed {
		lt = funcLifetime
		header = dc.Name + "<'" + lt + ">"
	}
	g.writeLine("struct %s {", header)
	g.indent()
	for i, fname := range def.FieldNames {
		rt := g.lowerType(def.FieldTypes[i])
		if lt != "" {
			rt = withLifetime(rt, lt)
		}
		g.writeLine("%s: %s,", rustName(fname), rt.String())
	}
	g.dedent()
	g.writeLine("}")
	g.out.WriteByte('\n')
}

// emitFunDecl emits one function declaration: lifetime parameter, bump
// parameter insertion, and parameter/return type lowering (spec.md §4.6
// "Bump parameter insertion" and "Lifetime synthesis").
func (g *Generator) emitFunDecl(fn *ast.FunDecl) {
	sig := g.result.Functions[fn.Name]
	if sig == nil {
		return
	}

	// main has a fixed signature (spec.md §6: "main must produce
	// fn main() { ... }"): it never receives a bump parameter or a
	// lifetime of its own, even when it calls bump-allocating functions —
	// it is where the bump arena is created, not where one is threaded in.
	isMain := fn.Name == "main"

	lt := ""
	if !isMain && g.needsLifetime[fn.Name] {
		lt = funcLifetime
	}
	g.currentLifetime = lt
	defer func() { g.currentLifetime = "" }()

	var params []string
	if sig.HasBump && !isMain {
		params = append(params, "bump: "+bumpParamType())
	}
	for i, pname := range sig.ParamNames {
		rt := g.withCurrentLifetime(g.lowerType(sig.ParamTypes[i]))
		params = append(params, rustName(pname)+": "+rt.String())
	}

	retSuffix := ""
	if !isMain && sig.ReturnType.Constructor != types.Unit {
		retRust := g.withCurrentLifetime(g.lowerType(sig.ReturnType))
		retSuffix = " -> " + retRust.String()
	}

	ltSuffix := ""
	if lt != "" {
		ltSuffix = "<'" + lt + ">"
	}

	g.writeLine("fn %s%s(%s)%s {", rustName(fn.Name), ltSuffix, strings.Join(params, ", "), retSuffix)
	g.indent()
	if isMain && sig.HasBump {
		g.writeLine("let bump = &bumpalo::Bump::new();")
	}
	g.emitBlockStmts(fn.Body)
	g.dedent()
	g.writeLine("}")
	g.out.WriteByte('\n')
}

// withCurrentLifetime injects the enclosing function's synthesized
// lifetime (if any) into rt; used for parameters, the return type, and
// explicit local variable type annotations, all of which share the single
// lifetime a function introduces (spec.md §4.6 "use 'a uniformly").
func (g *Generator) withCurrentLifetime(rt types.RustType) types.RustType {
	if g.currentLifetime == "" {
		return rt
	}
	return withLifetime(rt, g.currentLifetime)
}
