package types

import (
	"fmt"
	"strings"
)

// RustKind is the discriminant of a RustType (spec.md §3 "Rust Type").
type RustKind int

const (
	RPrimitive RustKind = iota // i32, i64, usize, bool, char
	RRef
	RMutRef
	RBox
	RRc
	RArc
	RVec
	ROption
	RResult
	RSlice
	RCustom
	RGeneric
	RStr
	RString
	RUnit
	RNever
	RArray
)

// RustType is the richer, reference-aware parallel algebra spec.md §3
// defines alongside VeltranoType.
type RustType struct {
	Kind      RustKind
	Primitive string // RPrimitive: "i32", "i64", "usize", "u32", "u64", "isize", "bool", "char"
	Lifetime  string // RRef/RMutRef: "" means elided
	Inner     *RustType
	Ok        *RustType // RResult
	Err       *RustType // RResult
	Name      string    // RCustom/RGeneric
	Generics  []RustType
	ArraySize int64 // RArray
}

func rp(name string) RustType { return RustType{Kind: RPrimitive, Primitive: name} }

var (
	RTI32    = rp("i32")
	RTI64    = rp("i64")
	RTISize  = rp("isize")
	RTU32    = rp("u32")
	RTU64    = rp("u64")
	RTUSize  = rp("usize")
	RTBool   = rp("bool")
	RTChar   = rp("char")
	RTUnit   = RustType{Kind: RUnit}
	RTNever  = RustType{Kind: RNever}
	RTStr    = RustType{Kind: RStr}
	RTString = RustType{Kind: RString}
)

// RTRef/RTMutRef/RTBox/RTVec/RTOption/RTSlice build the unary Rust kinds.
func RTRef(lifetime string, inner RustType) RustType {
	return RustType{Kind: RRef, Lifetime: lifetime, Inner: &inner}
}
func RTMutRef(lifetime string, inner RustType) RustType {
	return RustType{Kind: RMutRef, Lifetime: lifetime, Inner: &inner}
}
func RTBox(inner RustType) RustType    { return RustType{Kind: RBox, Inner: &inner} }
func RTVec(inner RustType) RustType    { return RustType{Kind: RVec, Inner: &inner} }
func RTOption(inner RustType) RustType { return RustType{Kind: ROption, Inner: &inner} }
func RTSlice(inner RustType) RustType  { return RustType{Kind: RSlice, Inner: &inner} }
func RTResult(ok, err RustType) RustType {
	return RustType{Kind: RResult, Ok: &ok, Err: &err}
}
func RTCustom(name string, generics ...RustType) RustType {
	return RustType{Kind: RCustom, Name: name, Generics: generics}
}
func RTGeneric(name string) RustType { return RustType{Kind: RGeneric, Name: name} }

// RTArray builds [T; N].
func RTArray(inner RustType, size int64) RustType {
	return RustType{Kind: RArray, Inner: &inner, ArraySize: size}
}

// IsReference reports whether r is a & or &mut type at the top level.
func (r RustType) IsReference() bool { return r.Kind == RRef || r.Kind == RMutRef }

// Equal reports structural equality, ignoring lifetime names (two
// references differing only in lifetime parameter name are the same type
// for our purposes — lifetime elision/synthesis is the generator's job,
// not the algebra's).
func (r RustType) Equal(other RustType) bool {
	if r.Kind != other.Kind {
		return false
	}
	switch r.Kind {
	case RPrimitive:
		return r.Primitive == other.Primitive
	case RRef, RMutRef, RBox, RVec, ROption, RSlice, RRc, RArc:
		return innerEqual(r.Inner, other.Inner)
	case RResult:
		return innerEqual(r.Ok, other.Ok) && innerEqual(r.Err, other.Err)
	case RCustom, RGeneric:
		if r.Name != other.Name || len(r.Generics) != len(other.Generics) {
			return false
		}
		for i := range r.Generics {
			if !r.Generics[i].Equal(other.Generics[i]) {
				return false
			}
		}
		return true
	case RStr, RString, RUnit, RNever:
		return true
	case RArray:
		return r.ArraySize == other.ArraySize && innerEqual(r.Inner, other.Inner)
	default:
		return false
	}
}

func innerEqual(a, b *RustType) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// String renders Rust syntax, e.g. "&'a String", "Option<Box<i32>>".
func (r RustType) String() string {
	switch r.Kind {
	case RPrimitive:
		return r.Primitive
	case RStr:
		return "str"
	case RString:
		return "String"
	case RUnit:
		return "()"
	case RNever:
		return "!"
	case RRef:
		return "&" + lifetimePrefix(r.Lifetime) + r.Inner.String()
	case RMutRef:
		return "&" + lifetimePrefix(r.Lifetime) + "mut " + r.Inner.String()
	case RBox:
		return fmt.Sprintf("Box<%s>", r.Inner.String())
	case RRc:
		return fmt.Sprintf("Rc<%s>", r.Inner.String())
	case RArc:
		return fmt.Sprintf("Arc<%s>", r.Inner.String())
	case RVec:
		return fmt.Sprintf("Vec<%s>", r.Inner.String())
	case ROption:
		return fmt.Sprintf("Option<%s>", r.Inner.String())
	case RSlice:
		return fmt.Sprintf("[%s]", r.Inner.String())
	case RResult:
		return fmt.Sprintf("Result<%s, %s>", r.Ok.String(), r.Err.String())
	case RCustom:
		if len(r.Generics) == 0 {
			return r.Name
		}
		parts := make([]string, len(r.Generics))
		for i, g := range r.Generics {
			parts[i] = g.String()
		}
		return fmt.Sprintf("%s<%s>", r.Name, strings.Join(parts, ", "))
	case RGeneric:
		return r.Name
	case RArray:
		return fmt.Sprintf("[%s; %d]", r.Inner.String(), r.ArraySize)
	default:
		return "?"
	}
}

func lifetimePrefix(lt string) string {
	if lt == "" {
		return ""
	}
	return "'" + lt + " "
}
