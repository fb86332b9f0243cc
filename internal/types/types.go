// Package types implements Veltrano's higher-kinded type algebra and its
// parallel Rust type algebra, plus the conversion between them (spec.md
// §3/§4.3). This is, per spec.md §9, "the hardest correspondence the
// checker must get right": Rust references collapse into Veltrano's
// Own/Ref vocabulary and back, with an explicit cancellation rule for
// naturally-borrowed types.
//
// The tagged-struct-with-discriminant shape (Constructor/Kind field plus a
// small fixed set of payload fields) follows the teacher's
// core/types/types.go enum-with-String()-lookup-table style, generalized
// from a flat enum to a recursive algebraic type since this spec's types
// nest (Own<Vec<Ref<T>>>, etc).
package types

import (
	"fmt"
	"strings"
)

// ---- Veltrano type algebra ----

// Constructor is the discriminant of a VeltranoType. Ground constructors
// have arity 0; Own/Ref/MutRef/Box/Vec/Option/Slice/Array have arity 1;
// Result has arity 2 (spec.md §4.3 "Kinds").
type Constructor int

const (
	I32 Constructor = iota
	I64
	ISize
	U32
	U64
	USize
	Bool
	Char
	Unit
	Nothing // "!"
	Str
	String
	Custom

	Own
	Ref
	MutRef
	Box
	Vec
	Option
	Slice

	Result

	Array
)

var constructorNames = [...]string{
	I32: "I32", I64: "I64", ISize: "ISize", U32: "U32", U64: "U64", USize: "USize",
	Bool: "Bool", Char: "Char", Unit: "Unit", Nothing: "Nothing", Str: "Str", String: "String",
	Custom: "Custom", Own: "Own", Ref: "Ref", MutRef: "MutRef", Box: "Box", Vec: "Vec",
	Option: "Option", Slice: "Slice", Result: "Result", Array: "Array",
}

func (c Constructor) String() string {
	if int(c) >= 0 && int(c) < len(constructorNames) && constructorNames[c] != "" {
		return constructorNames[c]
	}
	return fmt.Sprintf("Constructor(%d)", int(c))
}

// IsGround reports whether c has arity 0.
func (c Constructor) IsGround() bool {
	switch c {
	case I32, I64, ISize, U32, U64, USize, Bool, Char, Unit, Nothing, Str, String, Custom:
		return true
	default:
		return false
	}
}

// VeltranoType is (Constructor, type_args), spec.md §3. Array stores its
// size on the type itself to keep Args to a single element, per the
// design note in spec.md §9.
type VeltranoType struct {
	Constructor Constructor
	Name        string // Custom's name; empty otherwise
	Args        []VeltranoType
	ArraySize   int64 // only meaningful when Constructor == Array
}

// Ground type constructors, as convenience constants.
var (
	TI32     = VeltranoType{Constructor: I32}
	TI64     = VeltranoType{Constructor: I64}
	TISize   = VeltranoType{Constructor: ISize}
	TU32     = VeltranoType{Constructor: U32}
	TU64     = VeltranoType{Constructor: U64}
	TUSize   = VeltranoType{Constructor: USize}
	TBool    = VeltranoType{Constructor: Bool}
	TChar    = VeltranoType{Constructor: Char}
	TUnit    = VeltranoType{Constructor: Unit}
	TNothing = VeltranoType{Constructor: Nothing}
	TStr     = VeltranoType{Constructor: Str}
	TString  = VeltranoType{Constructor: String}
)

// TCustom builds a Custom(name) ground type.
func TCustom(name string) VeltranoType { return VeltranoType{Constructor: Custom, Name: name} }

// TOwn, TRef, TMutRef, TBox, TVec, TOption, TSlice build unary constructors.
func TOwn(t VeltranoType) VeltranoType    { return VeltranoType{Constructor: Own, Args: []VeltranoType{t}} }
func TRef(t VeltranoType) VeltranoType    { return VeltranoType{Constructor: Ref, Args: []VeltranoType{t}} }
func TMutRef(t VeltranoType) VeltranoType { return VeltranoType{Constructor: MutRef, Args: []VeltranoType{t}} }
func TBox(t VeltranoType) VeltranoType    { return VeltranoType{Constructor: Box, Args: []VeltranoType{t}} }
func TVec(t VeltranoType) VeltranoType    { return VeltranoType{Constructor: Vec, Args: []VeltranoType{t}} }
func TOption(t VeltranoType) VeltranoType { return VeltranoType{Constructor: Option, Args: []VeltranoType{t}} }
func TSlice(t VeltranoType) VeltranoType  { return VeltranoType{Constructor: Slice, Args: []VeltranoType{t}} }

// TResult builds the binary Result constructor.
func TResult(ok, err VeltranoType) VeltranoType {
	return VeltranoType{Constructor: Result, Args: []VeltranoType{ok, err}}
}

// TArray builds Array(n)<T>.
func TArray(elem VeltranoType, size int64) VeltranoType {
	return VeltranoType{Constructor: Array, Args: []VeltranoType{elem}, ArraySize: size}
}

// Arg0/Arg1 fetch type arguments by position, panicking if absent — callers
// are expected to have checked Constructor's arity first (an internal
// contract, not a user-facing error path).
func (t VeltranoType) Arg0() VeltranoType { return t.Args[0] }
func (t VeltranoType) Arg1() VeltranoType { return t.Args[1] }

// Equal reports structural equality.
func (t VeltranoType) Equal(other VeltranoType) bool {
	if t.Constructor != other.Constructor {
		return false
	}
	if t.Constructor == Custom && t.Name != other.Name {
		return false
	}
	if t.Constructor == Array && t.ArraySize != other.ArraySize {
		return false
	}
	if len(t.Args) != len(other.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(other.Args[i]) {
			return false
		}
	}
	return true
}

// String renders a readable form, e.g. "Own<Vec<Ref<I64>>>".
func (t VeltranoType) String() string {
	base := t.Constructor.String()
	if t.Constructor == Custom {
		base = t.Name
	}
	if t.Constructor == Array {
		return fmt.Sprintf("Array<%s, %d>", t.Args[0].String(), t.ArraySize)
	}
	if len(t.Args) == 0 {
		return base
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", base, strings.Join(parts, ", "))
}

// naturallyBorrowedBuiltins is the fixed part of spec.md invariant 5's
// list: Veltrano constructors whose bare (non-Own) form represents a Rust
// reference, because their owned Rust form is what Own<T> forces.
// Array/Slice are deliberately excluded: spec.md §4.3's table lowers bare
// Rust "[T]" directly to Slice<T>, with no Own-forcing semantics, and
// Array has no owned/borrowed distinction at all (it's a value type).
var naturallyBorrowedBuiltins = map[Constructor]bool{
	String: true,
	Str:    true,
	Vec:    true,
	Box:    true,
	Option: true,
	Result: true,
}

// BorrowPredicate answers whether a Custom(name) data class is naturally
// borrowed, i.e. whether the checker determined (from its field types)
// that the class contains a reference and so lives behind '&' by default
// in Rust. Supplied by the caller (internal/checker) because the type
// algebra itself has no notion of data class field layouts.
type BorrowPredicate func(customName string) bool

// NoCustomBorrows is a BorrowPredicate that treats every custom type as
// not naturally borrowed; useful for tests and for built-in-only lowering.
func NoCustomBorrows(string) bool { return false }

// IsNaturallyBorrowed reports whether t's bare (non-Own) form lowers to a
// Rust reference, per spec.md invariant 5/6 and the glossary's "naturally
// borrowed type" definition.
func (t VeltranoType) IsNaturallyBorrowed(customBorrowed BorrowPredicate) bool {
	if t.Constructor == Custom {
		return customBorrowed(t.Name)
	}
	return naturallyBorrowedBuiltins[t.Constructor]
}
