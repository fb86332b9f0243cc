package checker

import (
	"fmt"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/ast"
	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/types"
)

func (c *Checker) resolveTypeRef(tr *ast.TypeRef) (types.VeltranoType, error) {
	return ResolveTypeRef(tr, c.DataClasses)
}

func (c *Checker) resolveArg0(tr *ast.TypeRef) (types.VeltranoType, error) {
	return resolveArg0(tr, c.DataClasses)
}

// ResolveTypeRef turns a syntactic ast.TypeRef into a types.VeltranoType,
// consulting dataClasses for Custom names (spec.md §3: "ast stays free of
// the type algebra"; the checker is where the two meet). Exported so
// internal/codegen can re-lower a source-written type annotation (e.g. a
// VarDecl's explicit type) without duplicating the constructor table.
func ResolveTypeRef(tr *ast.TypeRef, dataClasses map[string]*DataClassDef) (types.VeltranoType, error) {
	if tr == nil {
		return types.TUnit, nil
	}
	switch tr.Name {
	case "I32":
		return types.TI32, nil
	case "I64":
		return types.TI64, nil
	case "ISize":
		return types.TISize, nil
	case "U32":
		return types.TU32, nil
	case "U64":
		return types.TU64, nil
	case "USize":
		return types.TUSize, nil
	case "Bool":
		return types.TBool, nil
	case "Char":
		return types.TChar, nil
	case "Unit":
		return types.TUnit, nil
	case "Nothing":
		return types.TNothing, nil
	case "Str":
		return types.TStr, nil
	case "String":
		return types.TString, nil
	case "Own":
		inner, err := resolveArg0(tr, dataClasses)
		if err != nil {
			return types.VeltranoType{}, err
		}
		return types.TOwn(inner), nil
	case "Ref":
		inner, err := resolveArg0(tr, dataClasses)
		if err != nil {
			return types.VeltranoType{}, err
		}
		return types.TRef(inner), nil
	case "MutRef":
		inner, err := resolveArg0(tr, dataClasses)
		if err != nil {
			return types.VeltranoType{}, err
		}
		return types.TMutRef(inner), nil
	case "Box":
		inner, err := resolveArg0(tr, dataClasses)
		if err != nil {
			return types.VeltranoType{}, err
		}
		return types.TBox(inner), nil
	case "Vec":
		inner, err := resolveArg0(tr, dataClasses)
		if err != nil {
			return types.VeltranoType{}, err
		}
		return types.TVec(inner), nil
	case "Option":
		inner, err := resolveArg0(tr, dataClasses)
		if err != nil {
			return types.VeltranoType{}, err
		}
		return types.TOption(inner), nil
	case "Slice":
		inner, err := resolveArg0(tr, dataClasses)
		if err != nil {
			return types.VeltranoType{}, err
		}
		return types.TSlice(inner), nil
	case "Result":
		if len(tr.Args) != 2 {
			return types.VeltranoType{}, fmt.Errorf("Result requires two type arguments, got %d", len(tr.Args))
		}
		ok, err := ResolveTypeRef(tr.Args[0], dataClasses)
		if err != nil {
			return types.VeltranoType{}, err
		}
		errT, err := ResolveTypeRef(tr.Args[1], dataClasses)
		if err != nil {
			return types.VeltranoType{}, err
		}
		return types.TResult(ok, errT), nil
	case "Array":
		if tr.ArraySize == nil || len(tr.Args) != 1 {
			return types.VeltranoType{}, fmt.Errorf("Array requires an element type and a size")
		}
		elem, err := ResolveTypeRef(tr.Args[0], dataClasses)
		if err != nil {
			return types.VeltranoType{}, err
		}
		return types.TArray(elem, *tr.ArraySize), nil
	default:
		if _, ok := dataClasses[tr.Name]; !ok {
			return types.VeltranoType{}, fmt.Errorf("undefined type %q", tr.Name)
		}
		return types.TCustom(tr.Name), nil
	}
}

func resolveArg0(tr *ast.TypeRef, dataClasses map[string]*DataClassDef) (types.VeltranoType, error) {
	if len(tr.Args) != 1 {
		return types.VeltranoType{}, fmt.Errorf("%s requires exactly one type argument, got %d", tr.Name, len(tr.Args))
	}
	return ResolveTypeRef(tr.Args[0], dataClasses)
}
