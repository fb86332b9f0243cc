package codegen

import "github.com/Portfoligno/veltrano-transpiler-sub001/internal/interop"

// rustReserved are Rust 2021 keywords (plus a few reserved-for-future-use
// words) that collide with identifiers a translated Veltrano name could
// otherwise produce. Emitted as raw identifiers rather than renamed, so a
// user's name is never silently altered beyond the camelCase->snake_case
// rule spec.md §4.6 actually specifies.
var rustReserved = map[string]bool{
	"as": true, "break": true, "const": true, "continue": true, "crate": true,
	"else": true, "enum": true, "extern": true, "false": true, "fn": true,
	"for": true, "if": true, "impl": true, "in": true, "let": true,
	"loop": true, "match": true, "mod": true, "move": true, "mut": true,
	"pub": true, "ref": true, "return": true, "self": true, "Self": true,
	"static": true, "struct": true, "super": true, "trait": true, "true": true,
	"type": true, "unsafe": true, "use": true, "where": true, "while": true,
	"async": true, "await": true, "dyn": true,
}

// rustName translates a Veltrano identifier (function, parameter, field,
// or variable name) to Rust snake_case, reusing internal/interop's exact
// translation rule (spec.md §4.6 "Name translation"; internal/interop's
// Resolve already snake-cases method names the same way when querying the
// registry, so the two must never diverge).
func rustName(name string) string {
	translated := interop.ToSnakeCase(name)
	if rustReserved[translated] {
		return "r#" + translated
	}
	return translated
}
