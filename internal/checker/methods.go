package checker

import (
	"context"
	"fmt"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/ast"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/errors"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/interop"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/span"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/types"
)

// rustMacroNames are the variadic Rust-macro builtins that skip ordinary
// function-call type checking entirely (builtins/functions.rs's
// `rust_macros` list: println, print, panic, assert, debug_assert — all
// registered as `BuiltinFunctionKind::RustMacro` and excluded from
// `get_function_signatures`, meaning none of them carry a checkable arity
// or parameter signature).
var rustMacroNames = map[string]bool{
	"println":      true,
	"print":        true,
	"panic":        true,
	"assert":       true,
	"debug_assert": true,
}

// checkCall resolves a free-function call: a declared function, a data
// class constructor, an imported free function, or one of the Rust-macro
// builtins (spec.md scenarios S1/S5 call println without any import or
// declaration; print/panic/assert/debug_assert follow the same builtin
// path).
func (c *Checker) checkCall(call *ast.Call) types.VeltranoType {
	callee, ok := call.Callee.(*ast.Identifier)
	if !ok {
		c.errAt(errors.KindInvalidExpression, call.Span(), "call target must be a named function or data class")
		return types.TUnit
	}
	name := callee.Name

	if rustMacroNames[name] {
		for _, a := range call.Args {
			if a.Kind == ast.BareArg {
				c.checkExpr(a.Expr)
			}
		}
		c.calls[call.ID] = ResolvedCall{ResultType: types.TUnit}
		return types.TUnit
	}

	if def, ok := c.DataClasses[name]; ok {
		return c.checkDataClassConstruction(call, def)
	}
	if sig, ok := c.Functions[name]; ok {
		return c.checkFreeCall(call, sig)
	}
	if binding, ok := c.Imports[name]; ok {
		return c.checkImportedCall(call, binding)
	}

	d := c.errAt2(errors.KindUndefinedFunction, call.Span(), "undefined function %q", name)
	if suggestion, ok := fuzzyMatch(name, c.callableNames()); ok {
		d.WithHelp(fmt.Sprintf("did you mean %q?", suggestion))
	}
	return types.TUnit
}

func (c *Checker) callableNames() []string {
	names := make([]string, 0, len(c.Functions)+len(c.Imports)+len(c.DataClasses))
	for n := range c.Functions {
		names = append(names, n)
	}
	for n := range c.Imports {
		names = append(names, n)
	}
	for n := range c.DataClasses {
		names = append(names, n)
	}
	return names
}

func (c *Checker) checkFreeCall(call *ast.Call, sig *FuncSig) types.VeltranoType {
	var bare []ast.Argument
	for _, a := range call.Args {
		switch a.Kind {
		case ast.BareArg:
			bare = append(bare, a)
		case ast.NamedArg, ast.ShorthandArg:
			c.errAt(errors.KindInvalidExpression, a.Span(), "function %s: named/shorthand arguments are only valid in data class construction", sig.Name)
		}
	}
	if len(bare) != len(sig.ParamTypes) {
		c.errAt(errors.KindTypeMismatch, call.Span(), "function %s expects %d argument(s), got %d", sig.Name, len(sig.ParamTypes), len(bare))
	}
	for i, a := range bare {
		at := c.checkExpr(a.Expr)
		if i >= len(sig.ParamTypes) {
			continue
		}
		if !at.Equal(sig.ParamTypes[i]) {
			c.errAt(errors.KindTypeMismatch, a.Span(), "function %s parameter %q: expected %s, got %s (explicit conversion required)",
				sig.Name, sig.ParamNames[i], sig.ParamTypes[i], at)
		}
	}
	c.calls[call.ID] = ResolvedCall{ResultType: sig.ReturnType, RequiresBump: sig.HasBump}
	return sig.ReturnType
}

// checkImportedCall treats `import Type.method` as a free function whose
// first positional argument is the receiver (spec.md §4.5's "imports bind a
// free-function name"). Remaining arguments are checked for their own
// diagnostics but, since ImportBinding stores only a name/method pair and
// not a full parameter signature, their arity against the Rust method is not
// independently re-verified here — Registry.Resolve already validated that
// the method exists on this receiver type when the import was declared.
func (c *Checker) checkImportedCall(call *ast.Call, binding ImportBinding) types.VeltranoType {
	var bare []ast.Argument
	for _, a := range call.Args {
		if a.Kind == ast.BareArg {
			bare = append(bare, a)
		}
	}
	if len(bare) == 0 {
		c.errAt(errors.KindTypeMismatch, call.Span(), "%s needs a receiver argument", binding.Method)
		return types.TUnit
	}
	receiverType := c.checkExpr(bare[0].Expr)
	for _, a := range bare[1:] {
		c.checkExpr(a.Expr)
	}
	rustReceiver, err := types.ToRust(receiverType, c.Borrowed)
	if err != nil {
		c.errAt(errors.KindTypeMismatch, bare[0].Span(), "%s", err)
		return types.TUnit
	}
	sig, err := c.Registry.Resolve(context.Background(), binding.Crate, rustReceiver, binding.Method)
	if err != nil {
		c.errAt(errors.KindInvalidMethodCall, call.Span(), "%s.%s: %s", binding.TypeName, binding.Method, err)
		return types.TUnit
	}
	result := liftRustPath(sig.ReturnType)
	c.calls[call.ID] = ResolvedCall{ResultType: result}
	return result
}

// checkMethodCall dispatches the three operator methods (spec.md §4.5:
// `.ref()`, `.mutRef()`, `.bumpRef()`) and otherwise resolves an ordinary
// method call against the interop registry.
func (c *Checker) checkMethodCall(mc *ast.MethodCall) types.VeltranoType {
	switch mc.Method {
	case "ref":
		return c.checkRefOperator(mc, false)
	case "bumpRef":
		return c.checkRefOperator(mc, true)
	case "mutRef":
		return c.checkMutRefOperator(mc)
	}

	receiverType := c.checkExpr(mc.Receiver)
	for _, a := range mc.Args {
		if a.Kind == ast.BareArg {
			c.checkExpr(a.Expr)
		}
	}
	rustReceiver, err := types.ToRust(receiverType, c.Borrowed)
	if err != nil {
		c.errAt(errors.KindTypeMismatch, mc.Receiver.Span(), "%s", err)
		return types.TUnit
	}
	sig, err := c.Registry.Resolve(context.Background(), "std", rustReceiver, mc.Method)
	if err != nil {
		d := c.errAt2(errors.KindInvalidMethodCall, mc.Span(), "%s has no method %q", receiverType, mc.Method)
		if help, ok := c.suggestConversion(receiverType, mc.Method); ok {
			d.WithHelp(help)
		}
		return types.TUnit
	}
	result := liftRustPath(sig.ReturnType)
	c.calls[mc.ID] = ResolvedCall{ResultType: result}
	return result
}

// checkRefOperator implements `.ref()` / `.bumpRef()`: both produce
// Ref<T> over the receiver's type (Rust reference collapsing, if any, is
// handled later by types.ToRust's cancellation rule, not here); bumpRef
// additionally marks the enclosing function as needing a bump allocator
// parameter (spec.md §4.2 "Bump flag computation").
func (c *Checker) checkRefOperator(mc *ast.MethodCall, isBump bool) types.VeltranoType {
	if len(mc.Args) != 0 {
		c.errAt(errors.KindInvalidExpression, mc.Span(), "%s takes no arguments", mc.Method)
	}
	receiverType := c.checkExpr(mc.Receiver)
	result := types.TRef(receiverType)
	tag := "ref"
	if isBump {
		tag = "bumpRef"
		if c.currentFunc != nil {
			c.currentFunc.HasBump = true
		}
	}
	c.calls[mc.ID] = ResolvedCall{ResultType: result, IsOperator: true, OperatorTag: tag, RequiresBump: isBump}
	return result
}

// checkMutRefOperator implements `.mutRef()`: valid only over a value this
// checker considers owned-and-not-already-borrowed — a Ref/MutRef receiver
// can't be re-borrowed, and a naturally-borrowed builtin/custom type must
// already be wrapped in an explicit Own<T> before it can be.
func (c *Checker) checkMutRefOperator(mc *ast.MethodCall) types.VeltranoType {
	if len(mc.Args) != 0 {
		c.errAt(errors.KindInvalidExpression, mc.Span(), "mutRef takes no arguments")
	}
	receiverType := c.checkExpr(mc.Receiver)
	switch {
	case receiverType.Constructor == types.Ref || receiverType.Constructor == types.MutRef:
		c.errAt(errors.KindTypeMismatch, mc.Span(), "cannot take a mutable reference to %s: it is already a reference", receiverType)
	case receiverType.IsNaturallyBorrowed(c.Borrowed) && receiverType.Constructor != types.Own:
		c.errAt(errors.KindTypeMismatch, mc.Span(), "cannot take a mutable reference to %s: it is borrowed by default, wrap it in Own<%s> first", receiverType, receiverType)
	}
	result := types.TMutRef(receiverType)
	c.calls[mc.ID] = ResolvedCall{ResultType: result, IsOperator: true, OperatorTag: "mutRef"}
	return result
}

// suggestConversion is the error analyser (SPEC_FULL.md §3): it tests
// whether `.ref()`, `.ref().ref()`, or `.toSlice()` (when the receiver is a
// Vec or Array) would make method resolves succeed, purely to phrase a
// Help string. It never applies the conversion; the diagnostic it attaches
// to is still an error.
func (c *Checker) suggestConversion(receiverType types.VeltranoType, method string) (string, bool) {
	candidates := []struct {
		suffix string
		t      types.VeltranoType
	}{
		{"ref()", types.TRef(receiverType)},
		{"ref().ref()", types.TRef(types.TRef(receiverType))},
	}
	if receiverType.Constructor == types.Vec || receiverType.Constructor == types.Array {
		candidates = append(candidates, struct {
			suffix string
			t      types.VeltranoType
		}{"toSlice()", types.TSlice(receiverType.Arg0())})
	}
	for _, cand := range candidates {
		rust, err := types.ToRust(cand.t, c.Borrowed)
		if err != nil {
			continue
		}
		if _, err := c.Registry.Resolve(context.Background(), "std", rust, method); err == nil {
			return fmt.Sprintf("call .%s before .%s(...)", cand.suffix, method), true
		}
	}
	return "", false
}

// liftRustPath is a best-effort reconstruction of a Veltrano type from the
// bare RustTypePath a MethodSignature carries. interop.MethodSignature
// intentionally stores only a nominal path (spec.md §4.4), not a full
// structural RustType, so this cannot be exact for container/reference
// shapes; it covers the ground cases a builtin method actually returns and
// otherwise falls back to treating the path as a custom type's name.
func liftRustPath(path interop.RustTypePath) types.VeltranoType {
	switch path {
	case "i32":
		return types.TI32
	case "i64":
		return types.TI64
	case "isize":
		return types.TISize
	case "u32":
		return types.TU32
	case "u64":
		return types.TU64
	case "usize":
		return types.TUSize
	case "bool":
		return types.TBool
	case "char":
		return types.TChar
	case "()":
		return types.TUnit
	case "String":
		return types.TOwn(types.TString)
	case "str":
		return types.TOwn(types.TStr)
	default:
		return types.TCustom(string(path))
	}
}

// checkDataClassConstruction type-checks `N(arg, ...)`: positional bare
// arguments filling fields in declaration order, named arguments in any
// order, and `.field` shorthand arguments resolving to a same-named
// in-scope variable (spec.md §4.2 Argument kinds / §4.5).
func (c *Checker) checkDataClassConstruction(call *ast.Call, def *DataClassDef) types.VeltranoType {
	filled := make(map[string]bool)
	pos := 0
	for _, a := range call.Args {
		switch a.Kind {
		case ast.BareArg:
			if pos >= len(def.FieldNames) {
				c.errAt(errors.KindTypeMismatch, a.Span(), "%s: too many positional arguments", def.Name)
				continue
			}
			fname := def.FieldNames[pos]
			pos++
			at := c.checkExpr(a.Expr)
			c.checkFieldAssignment(def, fname, at, a.Span())
			filled[fname] = true
		case ast.NamedArg:
			at := c.checkExpr(a.Expr)
			c.checkFieldAssignment(def, a.Name, at, a.Span())
			filled[a.Name] = true
		case ast.ShorthandArg:
			vt, ok := c.Env.Lookup(a.Name)
			if !ok {
				c.errAt(errors.KindUndefinedVariable, a.Span(), "undefined variable %q", a.Name)
				continue
			}
			c.checkFieldAssignment(def, a.Name, vt, a.Span())
			filled[a.Name] = true
		case ast.StandaloneCommentArg:
			// no semantic content
		}
	}
	for _, fname := range def.FieldNames {
		if !filled[fname] {
			c.errAt(errors.KindTypeMismatch, call.Span(), "%s: missing field %q", def.Name, fname)
		}
	}
	result := types.TCustom(def.Name)
	c.calls[call.ID] = ResolvedCall{ResultType: result}
	return result
}

func (c *Checker) checkFieldAssignment(def *DataClassDef, fieldName string, argType types.VeltranoType, at span.Span) {
	ft, ok := def.FieldType(fieldName)
	if !ok {
		d := c.errAt2(errors.KindFieldNotFound, at, "%s has no field %q", def.Name, fieldName)
		if suggestion, ok := fuzzyMatch(fieldName, def.FieldNames); ok {
			d.WithHelp(fmt.Sprintf("did you mean %q?", suggestion))
		}
		return
	}
	if !ft.Equal(argType) {
		c.errAt(errors.KindTypeMismatch, at, "%s field %q: expected %s, got %s", def.Name, fieldName, ft, argType)
	}
}
