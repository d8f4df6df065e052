package gast

// An if chain is one IfStatement head. Its children are, in order, the
// condition, the body, every else-if branch (an IfStatement with ElseIf set)
// and at most one ElseStatement. Branches attach to the head whether the
// grammar nests them (else { if ... }) or lists them flat (elif, elif, else).

// AddIfStatement opens an if. With isElseIf the node is chained as a branch
// of the nearest open chain head instead of becoming a child of the top.
// cond is the condition text, kept verbatim.
func (b *Builder) AddIfStatement(ref SourceRef, cond string, isElseIf bool) {
	n := &Node{kind: KindIfStatement, value: cond, elseIf: isElseIf}
	if !isElseIf {
		b.open(ref, n)
		return
	}
	b.openBranch("AddIfStatement", ref, n)
}

// EnterElseStatement opens the else branch of the nearest open chain head.
func (b *Builder) EnterElseStatement(ref SourceRef) {
	b.openBranch("EnterElseStatement", ref, &Node{kind: KindElseStatement})
}

// ExitIfStatement closes a chain head.
func (b *Builder) ExitIfStatement() {
	b.close("ExitIfStatement", familyIf)
}

// ExitElseIfOrElseStatement closes an else-if or else branch. The head stays
// open until its own ExitIfStatement.
func (b *Builder) ExitElseIfOrElseStatement() {
	b.close("ExitElseIfOrElseStatement", familyBranch)
}

func (b *Builder) openBranch(op string, ref SourceRef, n *Node) {
	if !b.attachable(op) {
		return
	}
	head := b.chainHead()
	if head == nil {
		b.fail(op, ref.Span().Start, errNoChainHead)
		return
	}
	n.span = ref.Span()
	head.appendChild(n)
	b.stack = append(b.stack, n)
}

// chainHead finds the innermost open IfStatement head, looking through open
// else-if branches stacked above it.
func (b *Builder) chainHead() *Node {
	for i := len(b.stack) - 1; i > 0; i-- {
		n := b.stack[i]
		if n.kind != KindIfStatement {
			return nil
		}
		if !n.elseIf {
			return n
		}
	}
	return nil
}

// AddConditionalStatement opens a loop. cond is the loop condition text (or
// the iterated expression for for-each loops).
func (b *Builder) AddConditionalStatement(ref SourceRef, cond string) {
	b.open(ref, &Node{kind: KindConditionalStatement, value: cond})
}

// ExitConditionalStatement closes a loop.
func (b *Builder) ExitConditionalStatement() {
	b.close("ExitConditionalStatement", familyLoop)
}

// AddTryCatch opens a try block. Resource bindings, the body, catch blocks
// and a finally statement attach as children in source order.
func (b *Builder) AddTryCatch(ref SourceRef) {
	b.open(ref, &Node{kind: KindTryCatchBlock})
}

// EnterCatchBlock opens a handler under the current try block.
func (b *Builder) EnterCatchBlock(ref SourceRef) {
	if b.err == nil && len(b.stack) > 0 && b.Top().kind != KindTryCatchBlock {
		top := b.Top()
		b.violation("EnterCatchBlock", "try-catch block", describe(top), top.span.Start)
		return
	}
	b.open(ref, &Node{kind: KindCatchBlock})
}

// ExitTryCatchBlock closes a try block.
func (b *Builder) ExitTryCatchBlock() {
	b.close("ExitTryCatchBlock", familyTry)
}

// ExitCatchBlock closes a catch block.
func (b *Builder) ExitCatchBlock() {
	b.close("ExitCatchBlock", familyCatch)
}
