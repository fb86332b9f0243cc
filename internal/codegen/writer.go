package codegen

import (
	"fmt"
	"strings"
)

// writeIndent and writeLine are the line-level writers to g.out (a few
// emitters in toplevel.go and stmt.go also append to g.out directly),
// matching the teacher's planfmt.Writer discipline of building into one
// buffer and never reading back what was written.

func (g *Generator) writeIndent() {
	g.out.WriteString(strings.Repeat("    ", g.level))
}

func (g *Generator) writeLine(format string, args ...any) {
	g.writeIndent()
	fmt.Fprintf(&g.out, format, args...)
	g.out.WriteByte('\n')
}

func (g *Generator) indent() { g.level++ }
func (g *Generator) dedent() { g.level-- }
