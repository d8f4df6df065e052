package gast

import (
	"fmt"

	"github.com/leapstack-labs/gast/pkg/token"
)

// Calls come in two canonical shapes. A call without receiver is a
// FunctionCall whose children are its arguments. A call with a receiver is a
// MethodCall whose first child is the receiver and whose last child is the
// callee FunctionCall holding the arguments:
//
//	MethodCall "m"
//	  <receiver>
//	  FunctionCall "m"
//	    <arguments>
//
// A simple qualifier (a name, a dotted name, a type) is known when the call
// is entered and goes through AddMethodCall. Any other receiver is itself an
// expression that has not been built yet; BeginDeferredCall opens the
// MethodCall and parks the callee in the pending-call registry until the
// receiver's primary expression closes.

// pendingCall is a callee waiting for its receiver.
type pendingCall struct {
	name  string
	ref   SourceRef
	owner *Node // the MethodCall that receives the callee
	level int   // primary depth when the call was registered
}

// AddFunctionCall opens a call with no receiver. Arguments attach as its
// children. Closed by ExitStatementOrExpression.
func (b *Builder) AddFunctionCall(ref SourceRef, name string) {
	b.open(ref, &Node{kind: KindFunctionCall, name: name})
}

// AddMethodCall opens a call on a simple qualifier. The qualifier text
// becomes a Variable receiver and the callee is opened right after it, ready
// for arguments. Closed by ExitMethodCall.
func (b *Builder) AddMethodCall(ref, qualifier SourceRef, name string) {
	mc := b.open(ref, &Node{kind: KindMethodCall, name: name})
	if mc == nil {
		return
	}
	b.attach(qualifier, &Node{kind: KindVariable, name: qualifier.Text()})
	b.open(calleeRef{ref: ref, start: qualifier.Span().End}, &Node{kind: KindFunctionCall, name: name})
}

// BeginDeferredCall opens a call whose receiver is a complex expression that
// follows as a primary. The callee is opened once that primary closes.
// Closed by ExitMethodCall.
func (b *Builder) BeginDeferredCall(ref SourceRef, name string) {
	mc := b.open(ref, &Node{kind: KindMethodCall, name: name})
	if mc == nil {
		return
	}
	b.pending = append(b.pending, pendingCall{
		name:  name,
		ref:   ref,
		owner: mc,
		level: len(b.primaries),
	})
}

// EnterPrimary marks the start of a primary expression, typically the
// receiver of a deferred call. When wrap is set the primary is enclosed in an
// Expression node, for receivers that do not produce exactly one node.
func (b *Builder) EnterPrimary(ref SourceRef, wrap bool) {
	if b.err != nil {
		return
	}
	b.primaries = append(b.primaries, wrap)
	if wrap {
		b.open(ref, &Node{kind: KindExpression})
	}
}

// ExitPrimary closes the innermost primary. If a deferred call was waiting
// on this primary level, its callee is opened under the MethodCall, after
// the receiver that was just completed.
func (b *Builder) ExitPrimary() {
	if b.err != nil {
		return
	}
	if len(b.primaries) == 0 {
		b.fail("ExitPrimary", token.Position{}, errNoPrimary)
		return
	}
	wrap := b.primaries[len(b.primaries)-1]
	b.primaries = b.primaries[:len(b.primaries)-1]
	if wrap && b.close("ExitPrimary", familyPrimary) == nil {
		return
	}
	b.resolvePending()
}

func (b *Builder) resolvePending() {
	if len(b.pending) == 0 {
		return
	}
	p := b.pending[len(b.pending)-1]
	if p.level != len(b.primaries) {
		return
	}
	if top := b.Top(); top != p.owner {
		b.fail("ExitPrimary", p.ref.Span().Start, fmt.Sprintf(errReceiverOpen, p.name, describe(top)))
		return
	}
	b.pending = b.pending[:len(b.pending)-1]

	start := p.ref.Span().Start
	if n := len(p.owner.children); n > 0 {
		start = p.owner.children[n-1].span.End
	}
	b.open(calleeRef{ref: p.ref, start: start}, &Node{kind: KindFunctionCall, name: p.name})
}

// ExitMethodCall closes the callee and then its MethodCall: one close for
// each node the call opened.
func (b *Builder) ExitMethodCall() {
	if b.err != nil {
		return
	}
	if top := b.Top(); top != nil && top.kind == KindMethodCall {
		if n := len(b.pending); n > 0 && b.pending[n-1].owner == top {
			b.fail("ExitMethodCall", top.span.Start, fmt.Sprintf(errUnresolvedCall, top.name))
			return
		}
	}
	callee := b.close("ExitMethodCall", familyCallee)
	if callee == nil {
		return
	}
	if top := b.Top(); top != callee.parent {
		b.fail("ExitMethodCall", callee.span.Start, fmt.Sprintf(errCalleeDetached, callee.name))
		return
	}
	b.close("ExitMethodCall", familyReceiver)
}

// calleeRef narrows a call's span to the part after its receiver.
type calleeRef struct {
	ref   SourceRef
	start token.Position
}

func (r calleeRef) Span() token.Span {
	s := r.ref.Span()
	if r.start.IsValid() {
		s.Start = r.start
	}
	return s
}

func (r calleeRef) Text() string { return r.ref.Text() }
