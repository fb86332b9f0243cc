package interop

import "context"

// BuiltinQuerier is the highest-priority querier (spec.md §4.4 item 1):
// hard-coded descriptors for primitives, Str, String, Vec, i64's abs, and
// the traits Clone/ToString/Into, seeded for every primitive and string
// type. Modeled as data, per spec.md §1's "hard-coded standard-library
// type descriptors (treated as data)".
type BuiltinQuerier struct {
	info *CrateInfo
}

// NewBuiltinQuerier builds the std-library provider with its fixed table.
func NewBuiltinQuerier() *BuiltinQuerier {
	return &BuiltinQuerier{info: buildBuiltinCrateInfo()}
}

func (b *BuiltinQuerier) Name() string     { return "builtin" }
func (b *BuiltinQuerier) Priority() int    { return 100 }
func (b *BuiltinQuerier) SupportsCrate(name string) bool {
	return name == "std" || name == "core" || name == ""
}

func (b *BuiltinQuerier) QueryCrate(ctx context.Context, name string) (*CrateInfo, error) {
	return b.info, nil
}

var primitiveNames = []RustTypePath{
	"i32", "i64", "isize", "u32", "u64", "usize", "bool", "char", "str", "String",
}

func buildBuiltinCrateInfo() *CrateInfo {
	types := make(map[RustTypePath]TypeInfo)

	cloneable := func(self RustTypePath) TypeInfo {
		return TypeInfo{
			Path:    self,
			Methods: map[string]MethodSignature{},
			Traits:  []string{"Clone", "ToString", "Into"},
		}
	}
	for _, p := range primitiveNames {
		types[p] = cloneable(p)
	}

	i64Info := types["i64"]
	i64Info.Methods = map[string]MethodSignature{
		"abs": {Name: "abs", Receiver: ReceiverValue, Params: nil, ReturnType: "i64"},
	}
	types["i64"] = i64Info

	vecInfo := TypeInfo{
		Path: "Vec",
		Methods: map[string]MethodSignature{
			"len":     {Name: "len", Receiver: ReceiverRef, ReturnType: "usize"},
			"is_empty": {Name: "is_empty", Receiver: ReceiverRef, ReturnType: "bool"},
			"push":    {Name: "push", Receiver: ReceiverMutRef, Params: []RustTypePath{"$T"}, ReturnType: "()"},
		},
		Traits: []string{"Clone", "Into"},
	}
	types["Vec"] = vecInfo

	traits := map[string]TraitInfo{
		"Clone": {
			Name: "Clone",
			Methods: map[string]MethodSignature{
				"clone": {Name: "clone", Receiver: ReceiverRef, ReturnType: "Self"},
			},
		},
		"ToString": {
			Name: "ToString",
			Methods: map[string]MethodSignature{
				"to_string": {Name: "to_string", Receiver: ReceiverRef, ReturnType: "String"},
			},
		},
		"Into": {
			Name: "Into",
			Methods: map[string]MethodSignature{
				// into()'s return type is generic: "$Into" is a placeholder
				// ReturnType that Resolve returns unchanged. No step infers a
				// concrete target type from the calling context.
				"into": {Name: "into", Receiver: ReceiverValue, ReturnType: "$Into"},
			},
		},
	}

	impls := make(map[RustTypePath][]string, len(types))
	for path, info := range types {
		impls[path] = info.Traits
	}

	return &CrateInfo{
		Crate:                "std",
		Functions:            map[string]MethodSignature{},
		Types:                types,
		Traits:               traits,
		TraitImplementations: impls,
	}
}
