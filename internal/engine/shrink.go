package engine

import "strings"

// shrinkMode selects how a sentinel cell token is rendered by shrink.
type shrinkMode int

const (
	// shrinkSimple passes the sentinel token through verbatim ("A16385"),
	// used internally so the stored shifted expression round-trips through
	// re-parsing without losing the sentinel marker.
	shrinkSimple shrinkMode = iota
	// shrinkPrintErrors renders the sentinel as "#REF!": the user-visible
	// form returned by Cell.GetText.
	shrinkPrintErrors
)

// shrink re-emits expr with parentheses only where precedence or
// associativity requires them, so the result reparses to an expression with
// the same value, though not always to the same tree ("1+(2+3)" prints as
// "1+2+3"). It is idempotent: shrinking an already-shrunk expression's
// re-parsed AST yields the same string.
func shrink(expr exprNode, mode shrinkMode) string {
	s, _ := shrinkNode(expr, mode)
	return s
}

// shrinkNode returns the rendered text for n together with n's own dynamic
// type info needed by the parent to decide whether to parenthesize it.
func shrinkNode(n exprNode, mode shrinkMode) (string, exprNode) {
	switch v := n.(type) {
	case numberNode:
		return v.text, v
	case cellNode:
		if v.sentinel {
			switch mode {
			case shrinkPrintErrors:
				return ErrRef.String(), v
			default:
				return sentinelToken, v
			}
		}
		return v.pos.String(), v
	case unaryNode:
		xs, xn := shrinkNode(v.x, mode)
		if needsParensUnaryChild(xn) {
			xs = "(" + xs + ")"
		}
		return string(v.op) + xs, v
	case binaryNode:
		ls, ln := shrinkNode(v.x, mode)
		rs, rn := shrinkNode(v.y, mode)
		if needsParensBinaryChild(v.op, ln, false) {
			ls = "(" + ls + ")"
		}
		if needsParensBinaryChild(v.op, rn, true) {
			rs = "(" + rs + ")"
		}
		var b strings.Builder
		b.WriteString(ls)
		b.WriteByte(v.op)
		b.WriteString(rs)
		return b.String(), v
	default:
		return "", n
	}
}

func isAddSub(n exprNode) bool {
	b, ok := n.(binaryNode)
	return ok && (b.op == '+' || b.op == '-')
}

func isMulDiv(n exprNode) bool {
	b, ok := n.(binaryNode)
	return ok && (b.op == '*' || b.op == '/')
}

// needsParensUnaryChild: parens are kept around a binary child of a unary
// '+'/'-' when the child is itself '+' or '-'.
func needsParensUnaryChild(child exprNode) bool {
	return isAddSub(child)
}

// needsParensBinaryChild decides parenthesization of a binary child:
//   - parent '-', child on the right, child is '+'/'-'
//   - parent '*' or '/', child is '+'/'-' (either side)
//   - parent '/', child on the right, child is '*'/'/'
func needsParensBinaryChild(parentOp byte, child exprNode, isRight bool) bool {
	if parentOp == '-' && isRight && isAddSub(child) {
		return true
	}
	if (parentOp == '*' || parentOp == '/') && isAddSub(child) {
		return true
	}
	if parentOp == '/' && isRight && isMulDiv(child) {
		return true
	}
	return false
}
