package checker

import "github.com/Portfoligno/veltrano-transpiler-sub001/internal/types"

// scope is one frame of the variable-lookup stack (spec.md invariant 7).
type scope struct {
	vars map[string]types.VeltranoType
}

func newScope() *scope {
	return &scope{vars: make(map[string]types.VeltranoType)}
}

// Env is the checker's scoped environment: a strict stack of local scopes
// plus flat global tables for functions and data classes (spec.md §4.5).
// Functions/data classes never shadow per-scope; only local variables do.
type Env struct {
	scopes []*scope
}

// NewEnv builds an environment with one (global) scope already open.
func NewEnv() *Env {
	return &Env{scopes: []*scope{newScope()}}
}

// Push opens a new innermost scope (entering a function body or block).
func (e *Env) Push() {
	e.scopes = append(e.scopes, newScope())
}

// Pop closes the innermost scope.
func (e *Env) Pop() {
	if len(e.scopes) > 1 {
		e.scopes = e.scopes[:len(e.scopes)-1]
	}
}

// Declare binds name to t in the innermost scope.
func (e *Env) Declare(name string, t types.VeltranoType) {
	e.scopes[len(e.scopes)-1].vars[name] = t
}

// Lookup searches from innermost outward (spec.md invariant 7).
func (e *Env) Lookup(name string) (types.VeltranoType, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if t, ok := e.scopes[i].vars[name]; ok {
			return t, true
		}
	}
	return types.VeltranoType{}, false
}
