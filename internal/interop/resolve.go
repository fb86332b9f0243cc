package interop

import (
	"context"
	"fmt"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/types"
)

// candidatePath renders a RustType to the nominal path used as a registry
// key: bare name for primitives/custom/generic, the constructor name for
// containers (Vec/Option/Box/Result/Slice), ignoring the element types —
// interop resolves against the outer shape, element types are checked
// separately by the caller (internal/checker).
func candidatePath(r types.RustType) RustTypePath {
	switch r.Kind {
	case types.RPrimitive:
		return RustTypePath(r.Primitive)
	case types.RStr:
		return "str"
	case types.RString:
		return "String"
	case types.RUnit:
		return "()"
	case types.RNever:
		return "!"
	case types.RBox:
		return "Box"
	case types.RVec:
		return "Vec"
	case types.ROption:
		return "Option"
	case types.RResult:
		return "Result"
	case types.RSlice:
		return "[T]"
	case types.RArray:
		return "[T; N]"
	case types.RCustom:
		return RustTypePath(r.Name)
	case types.RGeneric:
		return RustTypePath("$" + r.Name)
	default:
		return ""
	}
}

// resolutionSequence builds the auto-deref candidate sequence (spec.md
// §4.4 step 2): for a reference type &T, try &T then T; otherwise just
// the type itself. Each entry pairs the path to look up with whether that
// candidate was reached by looking through a '&'.
type candidate struct {
	path       RustTypePath
	derefedRef bool // true if this candidate is T, reached from &T
}

func resolutionSequence(r types.RustType) []candidate {
	if r.Kind == types.RRef {
		return []candidate{
			{path: candidatePath(r), derefedRef: false},
			{path: candidatePath(*r.Inner), derefedRef: true},
		}
	}
	return []candidate{{path: candidatePath(r)}}
}

// Resolve implements spec.md §4.4's method resolution algorithm: translate
// the method name to snake_case, build the auto-deref sequence, then try
// inherent methods before traits for each candidate in order.
func (r *Registry) Resolve(ctx context.Context, crate string, receiver types.RustType, veltranoMethod string) (MethodSignature, error) {
	info, err := r.CrateInfo(ctx, crate)
	if err != nil {
		return MethodSignature{}, err
	}
	snake := ToSnakeCase(veltranoMethod)

	for _, cand := range resolutionSequence(receiver) {
		ti, ok := info.Types[cand.path]
		if !ok {
			continue
		}
		if sig, ok := ti.Methods[snake]; ok {
			return sig, nil
		}
		for _, traitName := range ti.Traits {
			trait, ok := info.Traits[traitName]
			if !ok {
				continue
			}
			sig, ok := trait.Methods[snake]
			if !ok {
				continue
			}
			resolved := resolveSelf(sig, cand.path)
			if traitName == "Clone" && cand.derefedRef {
				// Special case (spec.md §4.4): Clone on &T returns T, not &T.
				resolved.ReturnType = cand.path
			}
			return resolved, nil
		}
	}
	return MethodSignature{}, fmt.Errorf("%w: %s::%s", ErrMethodNotFound, candidatePath(receiver), veltranoMethod)
}

// resolveSelf substitutes the literal "Self" receiver-type placeholder in
// a trait method's signature with the concrete implementing type path.
func resolveSelf(sig MethodSignature, self RustTypePath) MethodSignature {
	out := sig
	if out.ReturnType == "Self" {
		out.ReturnType = self
	}
	params := make([]RustTypePath, len(sig.Params))
	for i, p := range sig.Params {
		if p == "Self" {
			p = self
		}
		params[i] = p
	}
	out.Params = params
	return out
}
