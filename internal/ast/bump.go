package ast

// ComputeBumpFlags sets HasHiddenBump on every FunDecl in prog, per
// spec.md §4.2/§4.2's "Bump flag computation" and §9's "cyclic
// dependencies" note: mark direct bump allocation first, then propagate
// through a worklist to a fixpoint, since the call graph may contain
// cycles and a topological sort cannot be assumed to exist.
//
// This is idempotent (testable property 3 in spec.md §8): running it a
// second time over an already-computed program leaves every flag
// unchanged, because "direct" marks are re-derived from the AST itself
// rather than from the flags being computed.
func ComputeBumpFlags(prog *Program) {
	funcs := make(map[string]*FunDecl)
	for _, s := range prog.Stmts {
		if f, ok := s.(*FunDecl); ok {
			funcs[f.Name] = f
		}
	}

	// Pass 1: mark direct bump allocation (a .bumpRef() call anywhere in
	// the body), and record which named functions each function calls.
	callees := make(map[string]map[string]bool, len(funcs))
	for name, f := range funcs {
		f.HasHiddenBump = false
		set := make(map[string]bool)
		callees[name] = set
		walkBlock(f.Body, func(e Expression) {
			switch n := e.(type) {
			case *MethodCall:
				if n.Method == "bumpRef" {
					f.HasHiddenBump = true
				}
			case *Call:
				if id, ok := n.Callee.(*Identifier); ok {
					set[id.Name] = true
				}
			}
		})
	}

	// Pass 2: worklist-to-fixpoint propagation over the (possibly cyclic)
	// call graph: a function gains HasHiddenBump if any function it calls
	// already has it, repeated until no function changes in a full pass.
	changed := true
	for changed {
		changed = false
		for name, f := range funcs {
			if f.HasHiddenBump {
				continue
			}
			for callee := range callees[name] {
				if target, ok := funcs[callee]; ok && target.HasHiddenBump {
					f.HasHiddenBump = true
					changed = true
					break
				}
			}
		}
	}
}

// walkBlock visits every expression reachable from a function body,
// post-order within each statement, calling visit on each.
func walkBlock(b *Block, visit func(Expression)) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		walkStmt(s, visit)
	}
}

func walkStmt(s Statement, visit func(Expression)) {
	switch n := s.(type) {
	case *ExpressionStmt:
		walkExpr(n.Expr, visit)
	case *VarDecl:
		walkExpr(n.Initializer, visit)
	case *If:
		walkExpr(n.Condition, visit)
		walkBlock(n.Then, visit)
		walkBlock(n.Else, visit)
	case *While:
		walkExpr(n.Condition, visit)
		walkBlock(n.Body, visit)
	case *Return:
		if n.Value != nil {
			walkExpr(n.Value, visit)
		}
	case *Block:
		walkBlock(n, visit)
	}
}

func walkExpr(e Expression, visit func(Expression)) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *Unary:
		walkExpr(n.Operand, visit)
	case *Binary:
		walkExpr(n.Left, visit)
		walkExpr(n.Right, visit)
	case *Call:
		walkExpr(n.Callee, visit)
		for _, a := range n.Args {
			walkExpr(a.Expr, visit)
		}
	case *MethodCall:
		walkExpr(n.Receiver, visit)
		for _, a := range n.Args {
			walkExpr(a.Expr, visit)
		}
	case *FieldAccess:
		walkExpr(n.Object, visit)
	}
	visit(e)
}
