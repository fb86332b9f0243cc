package checker

import "github.com/Portfoligno/veltrano-transpiler-sub001/internal/types"

// FuncSig is a flat global table entry for a declared function (spec.md
// §4.5 "Functions and data classes live in flat global tables").
type FuncSig struct {
	Name       string
	ParamNames []string
	ParamTypes []types.VeltranoType
	ReturnType types.VeltranoType
	HasBump    bool
}

// DataClassDef records `data class N(val f1: T1, ...)` (spec.md §4.5).
type DataClassDef struct {
	Name       string
	FieldNames []string
	FieldTypes []types.VeltranoType
	// Borrowed is true when any field's Rust-lowered type is a reference,
	// making this a "naturally borrowed" custom type (spec.md glossary);
	// computed once, at declaration time, and fed back into
	// types.BorrowPredicate for every subsequent ToRust/FromRust call.
	Borrowed bool
}

func (d *DataClassDef) FieldType(name string) (types.VeltranoType, bool) {
	for i, n := range d.FieldNames {
		if n == name {
			return d.FieldTypes[i], true
		}
	}
	return types.VeltranoType{}, false
}

// ImportBinding is what `import TypeName.method [as alias]` records
// (spec.md §4.5): a free-function name bound to a receiver type + method.
type ImportBinding struct {
	TypeName string
	Method   string
	Alias    string
	Crate    string
}

// ResolvedCall is the side table entry a checked Call/MethodCall's fresh
// ID keys into (spec.md §3 "Lifecycles": the checker never mutates the
// AST, it produces side tables keyed by expression IDs).
type ResolvedCall struct {
	ResultType  types.VeltranoType
	IsOperator  bool   // ref/mutRef/bumpRef: emits an operator, not a call
	OperatorTag string // "ref" | "mutRef" | "bumpRef", when IsOperator
	RequiresBump bool  // bumpRef: enclosing function needs a bump param
}

// Result is everything a completed Check() call hands to the code
// generator: the (possibly partial) program's resolved side tables.
type Result struct {
	Calls         map[int64]ResolvedCall
	Functions     map[string]*FuncSig
	DataClasses   map[string]*DataClassDef
	BumpFunctions map[string]bool          // names of functions with has_hidden_bump
	Imports       map[string]ImportBinding // bound name -> binding, for imported free-function calls
}
