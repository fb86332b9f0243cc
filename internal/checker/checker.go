// Package checker implements Veltrano's type checker (spec.md §4.5): a
// scoped environment over the type algebra (internal/types), method-call
// resolution against the Rust-interop registry (internal/interop), the
// explicit-conversion policy, data class construction, operator methods,
// and an error analyser that suggests `.ref()`/`.ref().ref()`/`.toSlice()`
// chains without ever applying them automatically.
//
// The "never mutate the AST, resolve into side tables" discipline and the
// shadow-by-registration-order semantics for imports are grounded on the
// teacher's runtime/planner (resolver.go) and core/decorator/registry.go
// respectively; see DESIGN.md.
package checker

import (
	"context"
	"log/slog"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/ast"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/debug"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/errors"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/interop"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/span"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/types"
)

// Checker is a single-use, single-threaded type-checker instance: one
// Registry, one set of global tables, one diagnostic collection (spec.md
// §5: "the interop registry's in-memory cache... owned by the type
// checker's single instance").
type Checker struct {
	Registry *interop.Registry
	logger   *slog.Logger

	Env         *Env
	Functions   map[string]*FuncSig
	DataClasses map[string]*DataClassDef
	Imports     map[string]ImportBinding // bound name -> binding; a later import overwrites an earlier one

	diags *errors.Collection
	calls map[int64]ResolvedCall

	currentFunc *FuncSig // function currently being checked, for return-type checks and bump marking
}

// New builds a checker. A nil logger falls back to the package default
// (SPEC_FULL.md §2.1).
func New(registry *interop.Registry, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = debug.Logger()
	}
	return &Checker{
		Registry:    registry,
		logger:      logger,
		Env:         NewEnv(),
		Functions:   make(map[string]*FuncSig),
		DataClasses: make(map[string]*DataClassDef),
		Imports:     make(map[string]ImportBinding),
		diags:       &errors.Collection{},
		calls:       make(map[int64]ResolvedCall),
	}
}

// Borrowed implements types.BorrowPredicate against this checker's
// data-class table.
func (c *Checker) Borrowed(name string) bool {
	d, ok := c.DataClasses[name]
	return ok && d.Borrowed
}

// Check runs the full pass over prog, never short-circuiting on the first
// error (spec.md §4.5 "A pass never short-circuits on the first error").
// It returns a (possibly partial) Result and the diagnostic collection
// accumulated along the way; callers should check HasErrors() before
// handing the Result to the code generator.
func (c *Checker) Check(prog *ast.Program) (*Result, *errors.Collection) {
	c.preScanDataClasses(prog)
	c.preScanFunctions(prog)
	c.preScanImports(prog)

	for _, stmt := range prog.Stmts {
		if fn, ok := stmt.(*ast.FunDecl); ok {
			c.checkFunction(fn)
		}
	}

	bumpFns := make(map[string]bool)
	for name, fn := range c.Functions {
		if fn.HasBump {
			bumpFns[name] = true
		}
	}

	return &Result{
		Calls:         c.calls,
		Functions:     c.Functions,
		DataClasses:   c.DataClasses,
		BumpFunctions: bumpFns,
		Imports:       c.Imports,
	}, c.diags
}

func (c *Checker) preScanDataClasses(prog *ast.Program) {
	for _, stmt := range prog.Stmts {
		dc, ok := stmt.(*ast.DataClass)
		if !ok {
			continue
		}
		def := &DataClassDef{Name: dc.Name}
		for _, f := range dc.Fields {
			def.FieldNames = append(def.FieldNames, f.Name)
			def.FieldTypes = append(def.FieldTypes, types.VeltranoType{}) // resolved below
		}
		c.DataClasses[dc.Name] = def
	}
	// Second sub-pass: field types may reference other data classes, so all
	// names must already be registered before any field type resolves.
	for _, stmt := range prog.Stmts {
		dc, ok := stmt.(*ast.DataClass)
		if !ok {
			continue
		}
		def := c.DataClasses[dc.Name]
		for i, f := range dc.Fields {
			t, err := c.resolveTypeRef(f.TypeAnn)
			if err != nil {
				c.diags.Addf(errors.KindUndefinedType, dc.Span(), "data class %s field %q: %s", dc.Name, f.Name, err)
				continue
			}
			def.FieldTypes[i] = t
		}
	}
	c.computeBorrowedFixpoint()
}

// computeBorrowedFixpoint marks a data class Borrowed when it directly
// contains a reference field (Ref/MutRef), or a field whose own type is
// naturally borrowed (including another Borrowed custom type), propagated
// to a fixpoint — the same worklist shape internal/ast.ComputeBumpFlags
// uses for the analogous call-graph problem, since data class borrowing
// can likewise reference other data classes in any order.
func (c *Checker) computeBorrowedFixpoint() {
	changed := true
	for changed {
		changed = false
		for _, def := range c.DataClasses {
			if def.Borrowed {
				continue
			}
			for _, ft := range def.FieldTypes {
				// IsNaturallyBorrowed covers bare String/Str/Vec/Box/Option/
				// Result fields and Custom fields via c.Borrowed.
				if ft.Constructor == types.Ref || ft.Constructor == types.MutRef || ft.IsNaturallyBorrowed(c.Borrowed) {
					def.Borrowed = true
					changed = true
					break
				}
			}
		}
	}
}

func (c *Checker) preScanFunctions(prog *ast.Program) {
	for _, stmt := range prog.Stmts {
		fn, ok := stmt.(*ast.FunDecl)
		if !ok {
			continue
		}
		sig := &FuncSig{Name: fn.Name, HasBump: fn.HasHiddenBump}
		for _, p := range fn.Params {
			t, err := c.resolveTypeRef(p.TypeAnn)
			if err != nil {
				c.diags.Addf(errors.KindUndefinedType, p.Sp, "function %s parameter %q: %s", fn.Name, p.Name, err)
				continue
			}
			sig.ParamNames = append(sig.ParamNames, p.Name)
			sig.ParamTypes = append(sig.ParamTypes, t)
		}
		ret, err := c.resolveTypeRef(fn.ReturnType)
		if err != nil {
			c.diags.Addf(errors.KindUndefinedType, fn.Span(), "function %s return type: %s", fn.Name, err)
		}
		sig.ReturnType = ret
		c.Functions[fn.Name] = sig
	}
}

func (c *Checker) preScanImports(prog *ast.Program) {
	for _, stmt := range prog.Stmts {
		im, ok := stmt.(*ast.Import)
		if !ok {
			continue
		}
		c.checkImport(im)
	}
}

func (c *Checker) checkImport(im *ast.Import) {
	bound := im.Method
	if im.Alias != "" {
		bound = im.Alias
	}
	receiver, err := c.rustPathForTypeName(im.TypeName)
	if err != nil {
		c.diags.Addf(errors.KindUndefinedType, im.Span(), "import %s.%s: %s", im.TypeName, im.Method, err)
		return
	}
	// Validated at the import's own location (spec.md §4.5 / scenario S6),
	// not at any later use site.
	if _, err := c.Registry.Resolve(context.Background(), "std", receiver, im.Method); err != nil {
		c.diags.Addf(errors.KindInvalidMethodCall, im.Span(), "import %s.%s: %s has no method %q", im.TypeName, im.Method, im.TypeName, im.Method)
		return
	}
	// A later import under the same bound name overwrites an earlier one,
	// with no fallback chain consulted. The Rust-macro builtins (println,
	// print, panic, assert, debug_assert) are matched in checkCall before
	// imports, so an import bound to one of those names is never used.
	c.Imports[bound] = ImportBinding{TypeName: im.TypeName, Method: im.Method, Alias: im.Alias, Crate: "std"}
}

// rustPathForTypeName lowers a bare Veltrano type name (as written after
// `import`) to the RustType used to query the registry.
func (c *Checker) rustPathForTypeName(name string) (types.RustType, error) {
	tr := &ast.TypeRef{Name: name}
	vt, err := c.resolveTypeRef(tr)
	if err != nil {
		return types.RustType{}, err
	}
	return types.ToRust(vt, c.Borrowed)
}

func (c *Checker) checkFunction(fn *ast.FunDecl) {
	sig := c.Functions[fn.Name]
	if sig == nil {
		return // already reported during pre-scan
	}
	c.currentFunc = sig
	c.Env.Push()
	defer c.Env.Pop()
	for i, name := range sig.ParamNames {
		c.Env.Declare(name, sig.ParamTypes[i])
	}
	c.checkBlock(fn.Body)
	c.currentFunc = nil
}

func (c *Checker) errAt(kind errors.Kind, at span.Span, format string, args ...any) {
	c.diags.Addf(kind, at, format, args...)
}

// errAt2 is errAt but returns the diagnostic so a caller can chain
// WithHelp/WithNote onto it.
func (c *Checker) errAt2(kind errors.Kind, at span.Span, format string, args ...any) *errors.Diagnostic {
	return c.diags.Addf(kind, at, format, args...)
}
