package codegen

import (
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/ast"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/checker"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/types"
)

// borrowed implements types.BorrowPredicate against the checker's resolved
// data-class table, mirroring checker.Checker.Borrowed exactly: the
// generator consumes the same Borrowed bit the checker computed rather
// than recomputing it.
func (g *Generator) borrowed(name string) bool {
	d, ok := g.result.DataClasses[name]
	return ok && d.Borrowed
}

// lowerType lowers a checked Veltrano type to Rust, leaving every
// reference's lifetime blank (types.ToRust's contract); withLifetime fills
// it in afterwards once the enclosing function/struct has decided it needs
// one (spec.md §4.6 "Lifetime synthesis").
func (g *Generator) lowerType(vt types.VeltranoType) types.RustType {
	rt, err := types.ToRust(vt, g.borrowed)
	if err != nil {
		// The checker already verified every type this function is handed;
		// a lowering failure here means a checked program reached codegen
		// with a shape the checker should have rejected.
		panic("codegen: " + err.Error())
	}
	return rt
}

// typeRefRust lowers a source-written type annotation (e.g. an explicit
// VarDecl type) the same way the checker would, without requiring a live
// Checker instance (checker.ResolveTypeRef takes the data-class table
// directly for exactly this reuse).
func (g *Generator) typeRefRust(tr *ast.TypeRef) types.RustType {
	vt, err := checker.ResolveTypeRef(tr, g.result.DataClasses)
	if err != nil {
		panic("codegen: " + err.Error())
	}
	return g.lowerType(vt)
}

// containsReference reports whether r contains a reference (RRef/RMutRef)
// anywhere in its structure, including nested inside Vec/Option/Box/etc.
// (spec.md §4.6: a function needs <'a> "if... any parameter/return type is
// naturally borrowed", which includes references buried inside containers).
func containsReference(r types.RustType) bool {
	switch r.Kind {
	case types.RRef, types.RMutRef:
		return true
	case types.RBox, types.RVec, types.ROption, types.RSlice, types.RRc, types.RArc, types.RArray:
		return r.Inner != nil && containsReference(*r.Inner)
	case types.RResult:
		return (r.Ok != nil && containsReference(*r.Ok)) || (r.Err != nil && containsReference(*r.Err))
	case types.RCustom:
		for _, g := range r.Generics {
			if containsReference(g) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// withLifetime returns a copy of r with lt assigned to every RRef/RMutRef
// node reachable from it. types.ToRust always leaves Lifetime == "", so
// this is the only place a lifetime name is ever introduced (spec.md §4.6:
// "use 'a uniformly for all reference types").
func withLifetime(r types.RustType, lt string) types.RustType {
	switch r.Kind {
	case types.RRef, types.RMutRef:
		r.Lifetime = lt
		inner := withLifetime(*r.Inner, lt)
		r.Inner = &inner
		return r
	case types.RBox, types.RVec, types.ROption, types.RSlice, types.RRc, types.RArc, types.RArray:
		if r.Inner != nil {
			inner := withLifetime(*r.Inner, lt)
			r.Inner = &inner
		}
		return r
	case types.RResult:
		if r.Ok != nil {
			ok := withLifetime(*r.Ok, lt)
			r.Ok = &ok
		}
		if r.Err != nil {
			err := withLifetime(*r.Err, lt)
			r.Err = &err
		}
		return r
	case types.RCustom:
		generics := make([]types.RustType, len(r.Generics))
		for i, g := range r.Generics {
			generics[i] = withLifetime(g, lt)
		}
		r.Generics = generics
		return r
	default:
		return r
	}
}

// funcLifetime is the single lifetime name this generator synthesizes
// whenever a function or data class needs one (spec.md §4.6 decides "a
// single lifetime 'a" per function, never more).
const funcLifetime = "a"

// bumpParamType is the Rust type of the inserted bump-allocator parameter
// (spec.md §4.6 "Bump parameter insertion").
func bumpParamType() string {
	return "&'" + funcLifetime + " bumpalo::Bump"
}
