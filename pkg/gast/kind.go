package gast

import "fmt"

// Kind tags the variant of a Node.
type Kind string

// Node kinds.
const (
	KindFile                 Kind = "File"
	KindClass                Kind = "Class"
	KindFunction             Kind = "Function"
	KindMethod               Kind = "Method"
	KindConstructor          Kind = "Constructor"
	KindParameter            Kind = "Parameter"
	KindAttribute            Kind = "Attribute"
	KindVariable             Kind = "Variable"
	KindConstant             Kind = "Constant"
	KindExpression           Kind = "Expression"
	KindAssignment           Kind = "Assignment"
	KindIfStatement          Kind = "IfStatement"
	KindElseStatement        Kind = "ElseStatement"
	KindConditionalStatement Kind = "ConditionalStatement"
	KindTryCatchBlock        Kind = "TryCatchBlock"
	KindCatchBlock           Kind = "CatchBlock"
	KindThrowStatement       Kind = "ThrowStatement"
	KindReturnStatement      Kind = "ReturnStatement"
	KindFunctionCall         Kind = "FunctionCall"
	KindMethodCall           Kind = "MethodCall"
	KindAttributeAccess      Kind = "AttributeAccess"
	KindNewExpression        Kind = "NewExpression"
	KindGenericStatement     Kind = "GenericStatement"
)

var allKinds = []Kind{
	KindFile, KindClass, KindFunction, KindMethod, KindConstructor,
	KindParameter, KindAttribute, KindVariable, KindConstant,
	KindExpression, KindAssignment, KindIfStatement, KindElseStatement,
	KindConditionalStatement, KindTryCatchBlock, KindCatchBlock,
	KindThrowStatement, KindReturnStatement, KindFunctionCall,
	KindMethodCall, KindAttributeAccess, KindNewExpression, KindGenericStatement,
}

// Kinds returns every node kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// ParseKind converts an exchanged kind name back into a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range allKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown node kind %q", s)
}

// IsLeaf reports whether nodes of this kind are attached already closed.
func (k Kind) IsLeaf() bool {
	switch k {
	case KindParameter, KindVariable, KindConstant:
		return true
	}
	return false
}

// IsCallable reports whether k is a callable declaration.
func (k Kind) IsCallable() bool {
	return k == KindFunction || k == KindMethod || k == KindConstructor
}

// IsCall reports whether k is a call site.
func (k Kind) IsCall() bool {
	return k == KindFunctionCall || k == KindMethodCall
}

// family groups the kinds a single exit operation may close.
type family struct {
	name  string
	match func(n *Node) bool
}

var (
	familyStatementOrExpression = family{"statement or expression", func(n *Node) bool {
		switch n.kind {
		case KindExpression, KindAssignment, KindThrowStatement, KindReturnStatement,
			KindFunctionCall, KindMethodCall, KindAttributeAccess, KindNewExpression,
			KindGenericStatement, KindAttribute:
			return true
		}
		return false
	}}
	familyClass    = family{"class", func(n *Node) bool { return n.kind == KindClass }}
	familyCallable = family{"function or method declaration", func(n *Node) bool { return n.kind.IsCallable() }}
	familyIf       = family{"if statement", func(n *Node) bool { return n.kind == KindIfStatement && !n.elseIf }}
	familyBranch   = family{"else-if or else branch", func(n *Node) bool {
		return (n.kind == KindIfStatement && n.elseIf) || n.kind == KindElseStatement
	}}
	familyLoop     = family{"conditional statement", func(n *Node) bool { return n.kind == KindConditionalStatement }}
	familyTry      = family{"try-catch block", func(n *Node) bool { return n.kind == KindTryCatchBlock }}
	familyCatch    = family{"catch block", func(n *Node) bool { return n.kind == KindCatchBlock }}
	familyCallee   = family{"callee function call", func(n *Node) bool { return n.kind == KindFunctionCall }}
	familyReceiver = family{"method call", func(n *Node) bool { return n.kind == KindMethodCall }}
	familyPrimary  = family{"primary expression", func(n *Node) bool { return n.kind == KindExpression }}
)
