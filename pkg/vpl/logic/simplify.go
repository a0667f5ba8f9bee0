package logic

// Simplify rewrites an expression into a smaller equivalent form. It is
// total (always returns a valid expression), denotation-preserving, and
// idempotent: Simplify(Simplify(e)) is structurally equal to Simplify(e).
//
// Rules applied, bottom-up:
//   - constant folding of Not over Value
//   - double-negation elimination
//   - flattening of nested same-kind connectives
//   - identity absorption: True operands vanish from And, False from Or
//   - short-circuit: False in And yields False, True in Or yields True
//   - single-operand connectives collapse to the operand
func Simplify(e Expr) Expr {
	switch x := e.(type) {
	case Value, Atom:
		return e
	case Not:
		return simplifyNot(x)
	case And:
		return simplifyAnd(x)
	case Or:
		return simplifyOr(x)
	}
	return e
}

func simplifyNot(n Not) Expr {
	operand := Simplify(n.Operand)
	switch x := operand.(type) {
	case Value:
		switch x.Truth {
		case True:
			return Value{Truth: False}
		case False:
			return Value{Truth: True}
		default:
			return Value{Truth: Unknown}
		}
	case Not:
		// Double negation: the inner operand is already simplified.
		return x.Operand
	}
	return Not{Operand: operand}
}

func simplifyAnd(a And) Expr {
	operands := make([]Expr, 0, len(a.Operands))
	for _, op := range a.Operands {
		s := Simplify(op)
		switch x := s.(type) {
		case Value:
			if x.Truth == False {
				return Value{Truth: False}
			}
			if x.Truth == True {
				continue // identity of conjunction
			}
			operands = append(operands, x)
		case And:
			operands = append(operands, x.Operands...)
		default:
			operands = append(operands, s)
		}
	}
	switch len(operands) {
	case 0:
		// Every operand was the identity.
		return Value{Truth: True}
	case 1:
		return operands[0]
	}
	return And{Operands: operands}
}

func simplifyOr(o Or) Expr {
	operands := make([]Expr, 0, len(o.Operands))
	for _, op := range o.Operands {
		s := Simplify(op)
		switch x := s.(type) {
		case Value:
			if x.Truth == True {
				return Value{Truth: True}
			}
			if x.Truth == False {
				continue // identity of disjunction
			}
			operands = append(operands, x)
		case Or:
			operands = append(operands, x.Operands...)
		default:
			operands = append(operands, s)
		}
	}
	switch len(operands) {
	case 0:
		return Value{Truth: False}
	case 1:
		return operands[0]
	}
	return Or{Operands: operands}
}
