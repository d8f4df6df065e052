package gast

import (
	"fmt"

	"github.com/leapstack-labs/gast/pkg/token"
)

// SourceRef locates the production that triggered a build operation.
type SourceRef interface {
	Span() token.Span
	Text() string
}

// Builder assembles one file's generic AST from a linear stream of add and
// exit operations.
//
// The builder keeps its own stack of open nodes; the node on top is the
// current container. Container operations (Add*, Enter*, BeginDeferredCall)
// push, the Exit* operations pop and check that the popped node belongs to
// the family the exit names. Parameter, Variable and Constant are leaves:
// they are attached closed and never pushed.
//
// The first contract violation is recorded and every later operation becomes
// a no-op, so an adapter may keep forwarding events and check Err once per
// event. A Builder is not safe for concurrent use; build independent files
// with independent builders.
type Builder struct {
	file      string
	root      *Node
	stack     []*Node
	pending   []pendingCall
	primaries []bool
	err       error
	finished  bool
}

// NewBuilder returns a builder whose root File node is tagged with fileID.
func NewBuilder(fileID string) *Builder {
	root := &Node{kind: KindFile, name: fileID}
	return &Builder{
		file:  fileID,
		root:  root,
		stack: []*Node{root},
	}
}

// File returns the identifier the builder was created with.
func (b *Builder) File() string { return b.file }

// Err returns the first contract violation, if any.
func (b *Builder) Err() error { return b.err }

// Depth returns the number of open nodes, the root included.
func (b *Builder) Depth() int { return len(b.stack) }

// Top returns the innermost open node, or nil once the builder finished.
func (b *Builder) Top() *Node {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

// Closed reports whether Finish has been called.
func (b *Builder) Closed() bool { return b.finished }

// PendingCalls returns the number of deferred calls awaiting a receiver.
func (b *Builder) PendingCalls() int { return len(b.pending) }

// SetFileSpan records the span of the whole source unit on the root.
func (b *Builder) SetFileSpan(span token.Span) {
	if b.err != nil || b.finished {
		return
	}
	b.root.span = span
}

// Finish closes the root and returns it. Every container opened must have
// been exited, and no deferred call or primary may still be open.
func (b *Builder) Finish() (*Node, error) {
	if b.finished {
		return nil, ErrFinished
	}
	b.finished = true
	if b.err != nil {
		b.stack = nil
		return nil, b.err
	}
	if len(b.stack) != 1 {
		b.fail("Finish", b.stack[len(b.stack)-1].span.Start, fmt.Sprintf(errUnbalancedFile, len(b.stack)-1, describe(b.Top())))
		b.stack = nil
		return nil, b.err
	}
	if len(b.pending) > 0 {
		p := b.pending[len(b.pending)-1]
		b.fail("Finish", p.ref.Span().Start, fmt.Sprintf(errPendingCalls, len(b.pending), p.name))
		b.stack = nil
		return nil, b.err
	}
	if len(b.primaries) > 0 {
		b.fail("Finish", token.Position{}, fmt.Sprintf(errOpenPrimaries, len(b.primaries)))
		b.stack = nil
		return nil, b.err
	}

	root := b.root
	if len(root.children) > 0 && !root.span.Start.IsValid() {
		root.span.Start = root.children[0].span.Start
	}
	root.finalize()
	b.stack = nil
	return root, nil
}

// --- declarations ---

// AddClass opens a type declaration.
func (b *Builder) AddClass(ref SourceRef, name string) {
	b.open(ref, &Node{kind: KindClass, name: name})
}

// ExitClass closes the innermost Class.
func (b *Builder) ExitClass() {
	b.close("ExitClass", familyClass)
}

// AddFunction opens a free function or lambda.
func (b *Builder) AddFunction(ref SourceRef, name, returnType string) {
	b.open(ref, &Node{kind: KindFunction, name: name, declaredType: returnType})
}

// AddMethod opens a method declaration.
func (b *Builder) AddMethod(ref SourceRef, name, returnType string) {
	b.open(ref, &Node{kind: KindMethod, name: name, declaredType: returnType})
}

// AddConstructor opens a constructor. Its declared type is the constructed
// type's name.
func (b *Builder) AddConstructor(ref SourceRef, name string) {
	b.open(ref, &Node{kind: KindConstructor, name: name, declaredType: name})
}

// ExitFunctionOrMethodDeclaration closes the innermost callable.
func (b *Builder) ExitFunctionOrMethodDeclaration() {
	b.close("ExitFunctionOrMethodDeclaration", familyCallable)
}

// AddParameter attaches a formal parameter.
func (b *Builder) AddParameter(ref SourceRef, name, declaredType string) {
	b.attach(ref, &Node{kind: KindParameter, name: name, declaredType: declaredType})
}

// AddAttribute opens a class-level data member; its initializer, if any,
// becomes its child. Closed by ExitStatementOrExpression.
func (b *Builder) AddAttribute(ref SourceRef, name, declaredType string) {
	b.open(ref, &Node{kind: KindAttribute, name: name, declaredType: declaredType})
}

// AddVariable attaches a local declaration (declaredType set) or a name
// reference (declaredType empty).
func (b *Builder) AddVariable(ref SourceRef, name, declaredType string) {
	b.attach(ref, &Node{kind: KindVariable, name: name, declaredType: declaredType})
}

// AddConstant attaches a literal, kept verbatim.
func (b *Builder) AddConstant(ref SourceRef, text string) {
	b.attach(ref, &Node{kind: KindConstant, value: text})
}

// --- statements and expressions ---

// AddExpression opens a generic expression boundary.
func (b *Builder) AddExpression(ref SourceRef) {
	b.open(ref, &Node{kind: KindExpression})
}

// AddAssignment opens an assignment. Its children keep source order, so the
// target comes first in "x = v" and "T x = v" but last in Python's
// "with v as x".
func (b *Builder) AddAssignment(ref SourceRef) {
	b.open(ref, &Node{kind: KindAssignment})
}

// AddThrowStatement opens a throw/raise statement.
func (b *Builder) AddThrowStatement(ref SourceRef) {
	b.open(ref, &Node{kind: KindThrowStatement})
}

// AddReturnStatement opens a return statement.
func (b *Builder) AddReturnStatement(ref SourceRef) {
	b.open(ref, &Node{kind: KindReturnStatement})
}

// AddGenericStatement opens a statement without a specialized shape. The
// label names its flavour ("switch", "finally", ...) and may be empty.
func (b *Builder) AddGenericStatement(ref SourceRef, label string) {
	b.open(ref, &Node{kind: KindGenericStatement, name: label})
}

// AddAttributeAccess opens a field access; the receiver becomes its child.
func (b *Builder) AddAttributeAccess(ref SourceRef, name string) {
	b.open(ref, &Node{kind: KindAttributeAccess, name: name})
}

// AddNewExpression opens an instantiation of typeName.
func (b *Builder) AddNewExpression(ref SourceRef, typeName string) {
	b.open(ref, &Node{kind: KindNewExpression, name: typeName, declaredType: typeName})
}

// ExitStatementOrExpression closes the innermost statement, expression,
// call, attribute or field access.
func (b *Builder) ExitStatementOrExpression() {
	b.close("ExitStatementOrExpression", familyStatementOrExpression)
}

// --- stack primitives ---

func (b *Builder) open(ref SourceRef, n *Node) *Node {
	if !b.attachable("open " + string(n.kind)) {
		return nil
	}
	n.span = ref.Span()
	b.Top().appendChild(n)
	b.stack = append(b.stack, n)
	return n
}

func (b *Builder) attach(ref SourceRef, n *Node) {
	if !b.attachable("attach " + string(n.kind)) {
		return
	}
	n.span = ref.Span()
	n.closed = true
	b.Top().appendChild(n)
}

func (b *Builder) attachable(op string) bool {
	if b.err != nil {
		return false
	}
	if b.finished || len(b.stack) == 0 {
		b.fail(op, token.Position{}, errRootClosed)
		return false
	}
	return true
}

// close pops the top node after checking it against f. The root is never
// popped here; only Finish closes it.
func (b *Builder) close(op string, f family) *Node {
	if b.err != nil {
		return nil
	}
	if len(b.stack) <= 1 {
		b.violation(op, f.name, "nothing open", token.Position{})
		return nil
	}
	top := b.stack[len(b.stack)-1]
	if !f.match(top) {
		b.violation(op, f.name, describe(top), top.span.Start)
		return nil
	}
	b.stack = b.stack[:len(b.stack)-1]
	top.finalize()
	return top
}

func (b *Builder) violation(op, want, got string, pos token.Position) {
	if b.err != nil {
		return
	}
	b.err = &ContractViolation{File: b.file, Op: op, Want: want, Got: got, Pos: pos}
}

func (b *Builder) fail(op string, pos token.Position, msg string) {
	if b.err != nil {
		return
	}
	b.err = &ContractViolation{File: b.file, Op: op, Pos: pos, Message: msg}
}

func describe(n *Node) string {
	if n == nil {
		return "nothing"
	}
	s := string(n.kind)
	if n.kind == KindIfStatement && n.elseIf {
		s = "else-if " + s
	}
	if n.name != "" {
		s += fmt.Sprintf(" %q", n.name)
	}
	return s
}
