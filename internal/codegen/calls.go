package codegen

import (
	"fmt"
	"strings"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/ast"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/checker"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/interop"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/invariant"
)

// rustMacroNames mirrors checker.rustMacroNames (builtins/functions.rs's
// `rust_macros` list): free functions that lower directly to a Rust macro
// invocation rather than an ordinary call or data-class construction.
var rustMacroNames = map[string]bool{
	"println":      true,
	"print":        true,
	"panic":        true,
	"assert":       true,
	"debug_assert": true,
}

// formatRustMacros are the Rust-macro builtins whose bare arguments are all
// Display values threaded through a synthesized "{}"-per-argument format
// string (spec.md scenarios S1/S5's println, extended to print the same
// way builtins/functions.rs registers them side by side).
var formatRustMacros = map[string]bool{
	"println": true,
	"print":   true,
}

// emitCall emits a free-function call: a Rust-macro builtin (println,
// print, panic, assert, debug_assert), a data-class constructor, a
// declared function (with bump-argument propagation), or an imported free
// function (spec.md §4.5's "imports bind a free-function name", and §4.6
// "Bump parameter insertion").
func (g *Generator) emitCall(call *ast.Call) string {
	callee, ok := call.Callee.(*ast.Identifier)
	invariant.Invariant(ok, "call target must be a named function or data class by the time codegen runs")
	name := callee.Name

	if formatRustMacros[name] {
		return g.emitFormatMacro(name, call)
	}
	if rustMacroNames[name] {
		return g.emitPassthroughMacro(name, call)
	}
	if def, ok := g.result.DataClasses[name]; ok {
		return g.emitDataClassConstruction(call, def)
	}
	if sig, ok := g.result.Functions[name]; ok {
		return g.emitFreeCall(call, sig)
	}
	if binding, ok := g.result.Imports[name]; ok {
		return g.emitImportedCall(call, binding)
	}
	panic(fmt.Sprintf("codegen: call to undeclared name %q reached codegen", name))
}

// emitFormatMacro lowers println/print to Rust's println!/print! macro:
// one "{}" placeholder per bare argument.
func (g *Generator) emitFormatMacro(name string, call *ast.Call) string {
	var bare []ast.Argument
	for _, a := range call.Args {
		if a.Kind == ast.BareArg {
			bare = append(bare, a)
		}
	}
	if len(bare) == 0 {
		return name + "!()"
	}
	placeholders := make([]string, len(bare))
	args := make([]string, len(bare))
	for i, a := range bare {
		placeholders[i] = "{}"
		args[i] = g.emitExpr(a.Expr)
	}
	return fmt.Sprintf("%s!(%q, %s)", name, strings.Join(placeholders, " "), strings.Join(args, ", "))
}

// emitPassthroughMacro lowers panic/assert/debug_assert, whose arguments
// (a condition, an optional literal message, optional format args) don't
// share println's uniform "all arguments are Display values" shape, so
// they're passed through exactly as written rather than rewritten into a
// synthesized format string.
func (g *Generator) emitPassthroughMacro(name string, call *ast.Call) string {
	var bare []ast.Argument
	for _, a := range call.Args {
		if a.Kind == ast.BareArg {
			bare = append(bare, a)
		}
	}
	args := make([]string, len(bare))
	for i, a := range bare {
		args[i] = g.emitExpr(a.Expr)
	}
	return fmt.Sprintf("%s!(%s)", name, strings.Join(args, ", "))
}

func (g *Generator) emitFreeCall(call *ast.Call, sig *checker.FuncSig) string {
	resolved := g.result.Calls[call.ID]
	var prefix []string
	if resolved.RequiresBump {
		prefix = []string{"bump"}
	}
	argsText := g.emitArgList(prefix, call.Args, call.IsMultiline)
	return fmt.Sprintf("%s(%s)", rustName(sig.Name), argsText)
}

// emitImportedCall treats the bound name's first bare argument as the
// method receiver (checker.checkImportedCall's exact convention); the Rust
// method actually called is binding.Method snake_cased, the same
// translation internal/interop.Resolve used to find it in the registry.
func (g *Generator) emitImportedCall(call *ast.Call, binding checker.ImportBinding) string {
	var bare []ast.Argument
	for _, a := range call.Args {
		if a.Kind == ast.BareArg {
			bare = append(bare, a)
		}
	}
	invariant.Invariant(len(bare) > 0, "imported call %s.%s reached codegen without a receiver argument", binding.TypeName, binding.Method)
	receiver := g.emitExpr(bare[0].Expr)
	rest := make([]string, 0, len(bare)-1)
	for _, a := range bare[1:] {
		rest = append(rest, g.emitExpr(a.Expr))
	}
	return fmt.Sprintf("%s.%s(%s)", receiver, interop.ToSnakeCase(binding.Method), strings.Join(rest, ", "))
}

// emitDataClassConstruction mirrors checker.checkDataClassConstruction's
// positional/named/shorthand argument handling to build a Rust struct
// literal in the same field order the arguments were written.
func (g *Generator) emitDataClassConstruction(call *ast.Call, def *checker.DataClassDef) string {
	var fields []string
	pos := 0
	for _, a := range call.Args {
		switch a.Kind {
		case ast.BareArg:
			if pos >= len(def.FieldNames) {
				continue
			}
			fname := def.FieldNames[pos]
			pos++
			fields = append(fields, fmt.Sprintf("%s: %s", rustName(fname), g.emitExpr(a.Expr)))
		case ast.NamedArg:
			fields = append(fields, fmt.Sprintf("%s: %s", rustName(a.Name), g.emitExpr(a.Expr)))
		case ast.ShorthandArg:
			fields = append(fields, fmt.Sprintf("%s: %s", rustName(a.Name), rustName(a.Name)))
		}
	}
	return fmt.Sprintf("%s { %s }", def.Name, strings.Join(fields, ", "))
}

// emitMethodCall dispatches the three operator methods (spec.md §4.5/§4.6:
// ".ref()" -> "&", ".mutRef()" -> "&mut", ".bumpRef()" -> "bump.alloc(...)")
// and otherwise emits an ordinary snake_cased method call.
func (g *Generator) emitMethodCall(mc *ast.MethodCall) string {
	resolved, ok := g.result.Calls[mc.ID]
	invariant.Invariant(ok, "method call .%s() has no resolved entry by the time codegen runs", mc.Method)
	receiver := g.emitExpr(mc.Receiver)

	if resolved.IsOperator {
		switch resolved.OperatorTag {
		case "ref":
			return "&" + receiver
		case "bumpRef":
			return fmt.Sprintf("bump.alloc(%s)", receiver)
		case "mutRef":
			return "&mut " + receiver
		}
	}

	argsText := g.emitArgList(nil, mc.Args, mc.IsMultiline)
	return fmt.Sprintf("%s.%s(%s)", receiver, interop.ToSnakeCase(mc.Method), argsText)
}

// emitArgList renders a bare-argument list, honoring is_multiline
// formatting and comment reproduction (spec.md §4.6 "Comment
// reproduction": one argument per line when multiline, inline comments
// ride their argument, standalone comments become their own line). prefix
// holds already-rendered arguments (just "bump", for bump-propagated
// calls) inserted before the parsed argument list and sharing its layout.
func (g *Generator) emitArgList(prefix []string, args []ast.Argument, isMultiline bool) string {
	parts := append([]string{}, prefix...)
	for _, a := range args {
		switch a.Kind {
		case ast.BareArg:
			s := g.emitExpr(a.Expr)
			if g.preserveComments && a.Comments.Before != nil {
				s = a.Comments.Before.Content + " " + s
			}
			if g.preserveComments && a.Comments.After != nil {
				s = s + " " + a.Comments.After.Content
			}
			parts = append(parts, s)
		case ast.StandaloneCommentArg:
			if g.preserveComments && a.Standalone != nil {
				parts = append(parts, a.Standalone.Content)
			}
		}
	}
	if !isMultiline {
		return strings.Join(parts, ", ")
	}
	inner := strings.Repeat("    ", g.level+1)
	var b strings.Builder
	for _, p := range parts {
		b.WriteString("\n")
		b.WriteString(inner)
		b.WriteString(p)
		b.WriteString(",")
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("    ", g.level))
	return b.String()
}
