package types

import (
	"fmt"
	"strings"
)

// ToRust lowers a VeltranoType to its Rust encoding (spec.md §4.3's table,
// read left to right). borrowed answers whether a given Custom(name) data
// class is naturally borrowed (has reference fields); see BorrowPredicate.
//
// The two rules that make this "the hardest correspondence" (spec.md §9)
// are both here: invariant 5 (Own<T> only valid over a naturally-borrowed
// T) is enforced as an error, and invariant 6 (Ref over an
// already-referenced lowering collapses to one reference) is the
// cancellation branch under case Ref below.
func ToRust(v VeltranoType, borrowed BorrowPredicate) (RustType, error) {
	switch v.Constructor {
	case I32:
		return RTI32, nil
	case I64:
		return RTI64, nil
	case ISize:
		return RTISize, nil
	case U32:
		return RTU32, nil
	case U64:
		return RTU64, nil
	case USize:
		return RTUSize, nil
	case Bool:
		return RTBool, nil
	case Char:
		return RTChar, nil
	case Unit:
		return RTUnit, nil
	case Nothing:
		return RTNever, nil
	case Str:
		return RTRef("", RTStr), nil
	case String:
		return RTRef("", RTString), nil
	case Custom:
		if strings.HasPrefix(v.Name, "$") {
			return RTGeneric(strings.TrimPrefix(v.Name, "$")), nil
		}
		if borrowed(v.Name) {
			return RTRef("", RTCustom(v.Name)), nil
		}
		return RTCustom(v.Name), nil

	case Own:
		inner := v.Arg0()
		if inner.Constructor == Own {
			return RustType{}, fmt.Errorf("redundant Own: already owned")
		}
		if inner.Constructor == MutRef {
			return RustType{}, fmt.Errorf("Own<MutRef<_>> is not a valid type: a mutable reference cannot be additionally owned")
		}
		if !inner.IsNaturallyBorrowed(borrowed) {
			return RustType{}, fmt.Errorf("Own<%s> is invalid: %s is not naturally borrowed", inner, inner)
		}
		return toRustOwnedForm(inner, borrowed)

	case Ref:
		lowered, err := ToRust(v.Arg0(), borrowed)
		if err != nil {
			return RustType{}, err
		}
		if lowered.IsReference() {
			// Cancellation (invariant 6 / §4.3): Ref over an
			// already-referenced lowering does not add a second '&'.
			return lowered, nil
		}
		return RTRef("", lowered), nil

	case MutRef:
		lowered, err := ToRust(v.Arg0(), borrowed)
		if err != nil {
			return RustType{}, err
		}
		return RTMutRef("", lowered), nil

	case Box:
		return wrapBareNaturallyBorrowed(v.Arg0(), borrowed, RTBox)
	case Vec:
		return wrapBareNaturallyBorrowed(v.Arg0(), borrowed, RTVec)
	case Option:
		return wrapBareNaturallyBorrowed(v.Arg0(), borrowed, RTOption)

	case Slice:
		inner, err := ToRust(v.Arg0(), borrowed)
		if err != nil {
			return RustType{}, err
		}
		return RTSlice(inner), nil

	case Result:
		ok, err := ToRust(v.Arg0(), borrowed)
		if err != nil {
			return RustType{}, err
		}
		errT, err := ToRust(v.Arg1(), borrowed)
		if err != nil {
			return RustType{}, err
		}
		return RTRef("", RTResult(ok, errT)), nil

	case Array:
		elem, err := ToRust(v.Arg0(), borrowed)
		if err != nil {
			return RustType{}, err
		}
		return RTArray(elem, v.ArraySize), nil

	default:
		return RustType{}, fmt.Errorf("cannot lower %s to a Rust type", v)
	}
}

// toRustOwnedForm computes the "forced owned Rust shape" an explicit
// Own<x> produces, for x already known to be naturally borrowed.
func toRustOwnedForm(x VeltranoType, borrowed BorrowPredicate) (RustType, error) {
	switch x.Constructor {
	case String:
		return RTString, nil
	case Str:
		return RTStr, nil
	case Vec:
		inner, err := ToRust(x.Arg0(), borrowed)
		if err != nil {
			return RustType{}, err
		}
		return RTVec(inner), nil
	case Box:
		inner, err := ToRust(x.Arg0(), borrowed)
		if err != nil {
			return RustType{}, err
		}
		return RTBox(inner), nil
	case Option:
		inner, err := ToRust(x.Arg0(), borrowed)
		if err != nil {
			return RustType{}, err
		}
		return RTOption(inner), nil
	case Result:
		ok, err := ToRust(x.Arg0(), borrowed)
		if err != nil {
			return RustType{}, err
		}
		errT, err := ToRust(x.Arg1(), borrowed)
		if err != nil {
			return RustType{}, err
		}
		return RTResult(ok, errT), nil
	case Custom:
		return RTCustom(x.Name), nil
	default:
		return RustType{}, fmt.Errorf("cannot force an owned Rust form of %s", x)
	}
}

// wrapBareNaturallyBorrowed lowers Box<T>/Vec<T>/Option<T> written bare
// (without an outer Own): these are naturally-borrowed builtins, so the
// bare Veltrano spelling represents a Rust reference to the owned
// container, e.g. bare Vec<I64> -> &Vec<i64>.
func wrapBareNaturallyBorrowed(elem VeltranoType, borrowed BorrowPredicate, wrap func(RustType) RustType) (RustType, error) {
	inner, err := ToRust(elem, borrowed)
	if err != nil {
		return RustType{}, err
	}
	return RTRef("", wrap(inner)), nil
}

// FromRust reconstructs a VeltranoType from a RustType, the inverse of
// ToRust (spec.md §4.3 "the reverse direction"). References are
// reconstructed into Ref/MutRef/bare-naturally-borrowed forms; Own<X>
// strips a reference that the Rust side would otherwise re-introduce.
func FromRust(r RustType, borrowed BorrowPredicate) (VeltranoType, error) {
	switch r.Kind {
	case RPrimitive:
		switch r.Primitive {
		case "i32":
			return TI32, nil
		case "i64":
			return TI64, nil
		case "isize":
			return TISize, nil
		case "u32":
			return TU32, nil
		case "u64":
			return TU64, nil
		case "usize":
			return TUSize, nil
		case "bool":
			return TBool, nil
		case "char":
			return TChar, nil
		default:
			return VeltranoType{}, fmt.Errorf("unknown rust primitive %q", r.Primitive)
		}
	case RUnit:
		return TUnit, nil
	case RNever:
		return TNothing, nil
	case RString:
		return TOwn(TString), nil
	case RStr:
		return TOwn(TStr), nil
	case RBox:
		inner, err := FromRust(*r.Inner, borrowed)
		if err != nil {
			return VeltranoType{}, err
		}
		return TOwn(TBox(inner)), nil
	case RVec:
		inner, err := FromRust(*r.Inner, borrowed)
		if err != nil {
			return VeltranoType{}, err
		}
		return TOwn(TVec(inner)), nil
	case ROption:
		inner, err := FromRust(*r.Inner, borrowed)
		if err != nil {
			return VeltranoType{}, err
		}
		return TOwn(TOption(inner)), nil
	case RResult:
		ok, err := FromRust(*r.Ok, borrowed)
		if err != nil {
			return VeltranoType{}, err
		}
		errT, err := FromRust(*r.Err, borrowed)
		if err != nil {
			return VeltranoType{}, err
		}
		return TOwn(TResult(ok, errT)), nil
	case RSlice:
		inner, err := FromRust(*r.Inner, borrowed)
		if err != nil {
			return VeltranoType{}, err
		}
		return TSlice(inner), nil
	case RArray:
		inner, err := FromRust(*r.Inner, borrowed)
		if err != nil {
			return VeltranoType{}, err
		}
		return TArray(inner, r.ArraySize), nil
	case RCustom:
		return TCustom(r.Name), nil
	case RGeneric:
		return TCustom("$" + r.Name), nil
	case RMutRef:
		inner, err := FromRust(*r.Inner, borrowed)
		if err != nil {
			return VeltranoType{}, err
		}
		return TMutRef(inner), nil
	case RRef:
		return fromRustRef(*r.Inner, borrowed)
	default:
		return VeltranoType{}, fmt.Errorf("cannot reconstruct a Veltrano type from Rust kind %d", r.Kind)
	}
}

// fromRustRef reconstructs the Veltrano type of "&inner". When inner is
// itself the owned Rust form of a naturally-borrowed builtin (String,
// str, Vec<_>, Box<_>, Option<_>, Result<_,_>) or a naturally-borrowed
// custom type, the outer Own that FromRust(inner) would have produced is
// dropped (cancellation) and the bare constructor is returned directly.
// Otherwise inner is value-in-Rust and "&inner" becomes Ref<Veltrano(inner)>.
func fromRustRef(inner RustType, borrowed BorrowPredicate) (VeltranoType, error) {
	switch inner.Kind {
	case RString:
		return TString, nil
	case RStr:
		return TStr, nil
	case RVec:
		elem, err := FromRust(*inner.Inner, borrowed)
		if err != nil {
			return VeltranoType{}, err
		}
		return TVec(elem), nil
	case RBox:
		elem, err := FromRust(*inner.Inner, borrowed)
		if err != nil {
			return VeltranoType{}, err
		}
		return TBox(elem), nil
	case ROption:
		elem, err := FromRust(*inner.Inner, borrowed)
		if err != nil {
			return VeltranoType{}, err
		}
		return TOption(elem), nil
	case RResult:
		ok, err := FromRust(*inner.Ok, borrowed)
		if err != nil {
			return VeltranoType{}, err
		}
		errT, err := FromRust(*inner.Err, borrowed)
		if err != nil {
			return VeltranoType{}, err
		}
		return TResult(ok, errT), nil
	case RCustom:
		if borrowed(inner.Name) {
			return TCustom(inner.Name), nil
		}
		loweredInner, err := FromRust(inner, borrowed)
		if err != nil {
			return VeltranoType{}, err
		}
		return TRef(loweredInner), nil
	default:
		loweredInner, err := FromRust(inner, borrowed)
		if err != nil {
			return VeltranoType{}, err
		}
		return TRef(loweredInner), nil
	}
}
