// Package codegen implements Veltrano's Rust code generator (spec.md §4.6):
// lifetime synthesis, bump-parameter insertion and call-site propagation,
// camelCase->snake_case name translation, and literal comment and
// parenthesization reproduction.
//
// Emission follows the teacher's core/planfmt/writer.go discipline — build
// into a buffer and never reread what was already written — split into a
// layout pass (decide which functions need a lifetime parameter, grounded
// on pkgs/generator/go_template.go's PreprocessCommands-then-fill shape)
// and an emit pass that writes Rust text directly with a strings.Builder.
// The split stops short of text/template itself: precedence-exact
// parenthesization and interleaved comment placement need token-level
// control a template pass can't give (see DESIGN.md).
package codegen

import (
	"strings"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/ast"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/checker"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/invariant"
)

// Generator emits Rust source for one checked program. Single-use, like
// Checker (spec.md §5: no shared mutable state beyond the debug flag and
// the registry cache).
type Generator struct {
	result           *checker.Result
	preserveComments bool

	needsLifetime   map[string]bool // function name -> needs <'a>
	currentLifetime string          // "" or "a", while emitting the current function's body

	out   strings.Builder
	level int
}

// New builds a Generator over a checker.Result. preserveComments mirrors
// the `preserve_comments` config flag (spec.md §6): when false every
// comment slot is dropped regardless of what the parser attached.
func New(result *checker.Result, preserveComments bool) *Generator {
	return &Generator{
		result:           result,
		preserveComments: preserveComments,
		needsLifetime:    make(map[string]bool),
	}
}

// Generate emits deterministic Rust source for prog, which must already
// have passed Checker.Check with no errors (spec.md §7: "Code generation
// assumes a type-checked program and treats remaining shape violations as
// internal errors").
func (g *Generator) Generate(prog *ast.Program) string {
	invariant.NotNil(prog, "prog")
	g.layout(prog)

	for _, stmt := range prog.Stmts {
		switch s := stmt.(type) {
		case *ast.DataClass:
			g.emitDataClass(s)
		case *ast.FunDecl:
			g.emitFunDecl(s)
		case *ast.CommentStmt:
			if g.preserveComments {
				g.writeLine("%s", s.Comment.Content)
			}
		}
	}
	return g.out.String()
}
