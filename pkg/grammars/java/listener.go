package java

import (
	"log/slog"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/leapstack-labs/gast/pkg/cst"
	"github.com/leapstack-labs/gast/pkg/gast"
	"github.com/leapstack-labs/gast/pkg/grammar"
)

// listener maps tree-sitter-java productions onto builder operations.
//
// A node may play up to three roles, applied in this order on enter and in
// reverse on exit: the else branch of an if, the receiver of a call (a
// primary), and its own construct.
type listener struct {
	b      *gast.Builder
	logger *slog.Logger
	mute   grammar.Mute
}

func newListener(fileID string, opts grammar.Options) grammar.Adapter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &listener{b: gast.NewBuilder(fileID), logger: logger}
}

func (l *listener) Err() error { return l.b.Err() }

func (l *listener) Finish() (*gast.Node, error) { return l.b.Finish() }

func (l *listener) Enter(ev cst.Event) {
	if l.mute.Inside(ev) {
		return
	}
	if l.skipped(ev) {
		if cst.IsErrorNode(ev.Node()) {
			l.logger.Debug("skipping erroneous subtree",
				slog.String("file", l.b.File()),
				slog.String("pos", ev.Span().Start.String()))
		}
		l.mute.Start(ev)
		return
	}
	if isElseBranch(ev) {
		l.b.EnterElseStatement(ev)
	}
	if isReceiver(ev) {
		l.b.EnterPrimary(ev, !singleNodeReceivers[ev.Type()])
	}
	if opaque := l.enter(ev); opaque {
		l.mute.Start(ev)
	}
}

func (l *listener) Exit(ev cst.Event) {
	if l.mute.Inside(ev) {
		return
	}
	l.mute.Leave(ev)
	if l.skipped(ev) {
		return
	}
	l.exit(ev)
	if isReceiver(ev) {
		l.b.ExitPrimary()
	}
	if isElseBranch(ev) {
		l.b.ExitElseIfOrElseStatement()
	}
}

// skipped reports nodes that produce nothing, children included.
func (l *listener) skipped(ev cst.Event) bool {
	n := ev.Node()
	if cst.IsErrorNode(n) || skippedTypes[ev.Type()] {
		return true
	}
	switch {
	case ev.Field() == "object" && ev.ParentType() == "method_invocation" && isQualifier(n):
		// Folded into the MethodCall by the invocation itself.
		return true
	case ev.Field() == "constructor" && ev.ParentType() == "explicit_constructor_invocation":
		return true
	}
	return false
}

// enter opens the node's own construct. It returns true when the node's
// descendants must be ignored.
func (l *listener) enter(ev cst.Event) (opaque bool) {
	b := l.b
	typ := ev.Type()

	if literalTypes[typ] {
		b.AddConstant(ev, ev.Text())
		return true
	}
	if expressionTypes[typ] {
		b.AddExpression(ev)
		return false
	}
	if classTypes[typ] {
		b.AddClass(ev, ev.ChildText("name"))
		return false
	}
	if label, ok := genericStatements[typ]; ok {
		b.AddGenericStatement(ev, label)
		return typ == "break_statement" || typ == "continue_statement"
	}

	switch typ {
	case "program":
		b.SetFileSpan(ev.Span())

	case "method_declaration":
		b.AddMethod(ev, ev.ChildText("name"), ev.ChildText("type"))
	case "constructor_declaration", "compact_constructor_declaration":
		b.AddConstructor(ev, ev.ChildText("name"))
	case "lambda_expression":
		b.AddFunction(ev, "lambda", "")

	case "formal_parameter":
		b.AddParameter(ev, ev.ChildText("name"), ev.ChildText("type"))
		return true
	case "spread_parameter":
		name, typ := spreadParameter(ev)
		b.AddParameter(ev, name, typ)
		return true
	case "catch_formal_parameter":
		b.AddParameter(ev, ev.ChildText("name"), childTextOfType(ev, "catch_type"))
		return true

	case "variable_declarator":
		l.enterDeclarator(ev)
	case "enum_constant":
		b.AddAttribute(ev, ev.ChildText("name"), enclosingName(ev.Node(), ev.Source()))

	case "identifier":
		l.enterIdentifier(ev)
	case "this", "super":
		b.AddVariable(ev, typ, "")
	case "method_reference":
		b.AddVariable(ev, grammar.Compact(ev.Text()), "")
		return true

	case "assignment_expression":
		b.AddAssignment(ev)
	case "parenthesized_expression":
		if isCondition(ev) {
			b.AddExpression(ev)
		}
	case "array_initializer":
		if ev.ParentType() != "array_creation_expression" {
			b.AddExpression(ev)
		}

	case "if_statement":
		b.AddIfStatement(ev, grammar.StripParens(ev.ChildText("condition")), isElseIf(ev))
	case "while_statement", "do_statement":
		b.AddConditionalStatement(ev, grammar.StripParens(ev.ChildText("condition")))
	case "for_statement":
		b.AddConditionalStatement(ev, ev.ChildText("condition"))
	case "enhanced_for_statement":
		b.AddConditionalStatement(ev, ev.ChildText("value"))
		if name := ev.Child("name"); name != nil {
			b.AddVariable(ev.Of(name, "name"), name.Content(ev.Source()), ev.ChildText("type"))
		}

	case "try_statement", "try_with_resources_statement":
		b.AddTryCatch(ev)
	case "catch_clause":
		b.EnterCatchBlock(ev)
	case "resource":
		l.enterResource(ev)
	case "throw_statement":
		b.AddThrowStatement(ev)
	case "return_statement":
		b.AddReturnStatement(ev)

	case "method_invocation":
		l.enterInvocation(ev)
	case "explicit_constructor_invocation":
		b.AddFunctionCall(ev, ev.ChildText("constructor"))
	case "object_creation_expression":
		b.AddNewExpression(ev, grammar.BaseType(ev.ChildText("type")))
	case "array_creation_expression":
		b.AddNewExpression(ev, grammar.BaseType(ev.ChildText("type"))+"[]")
	case "field_access":
		b.AddAttributeAccess(ev, ev.ChildText("field"))
	}
	return false
}

// exit closes what enter opened for the same event.
func (l *listener) exit(ev cst.Event) {
	b := l.b
	typ := ev.Type()

	if literalTypes[typ] {
		return
	}
	if expressionTypes[typ] {
		b.ExitStatementOrExpression()
		return
	}
	if classTypes[typ] {
		b.ExitClass()
		return
	}
	if _, ok := genericStatements[typ]; ok {
		b.ExitStatementOrExpression()
		return
	}

	switch typ {
	case "method_declaration", "constructor_declaration", "compact_constructor_declaration", "lambda_expression":
		b.ExitFunctionOrMethodDeclaration()

	case "variable_declarator":
		if ev.ParentType() != "local_variable_declaration" || ev.Child("value") != nil {
			b.ExitStatementOrExpression()
		}
	case "enum_constant", "assignment_expression", "throw_statement", "return_statement",
		"explicit_constructor_invocation", "object_creation_expression",
		"array_creation_expression", "field_access":
		b.ExitStatementOrExpression()
	case "parenthesized_expression":
		if isCondition(ev) {
			b.ExitStatementOrExpression()
		}
	case "array_initializer":
		if ev.ParentType() != "array_creation_expression" {
			b.ExitStatementOrExpression()
		}

	case "if_statement":
		if alt := ev.Child("alternative"); alt != nil && !alt.IsNamed() {
			// "else ;" has no named node to walk, so the empty branch is
			// recorded here.
			b.EnterElseStatement(ev.Of(alt, "alternative"))
			b.ExitElseIfOrElseStatement()
		}
		if isElseIf(ev) {
			b.ExitElseIfOrElseStatement()
		} else {
			b.ExitIfStatement()
		}
	case "while_statement", "do_statement", "for_statement", "enhanced_for_statement":
		b.ExitConditionalStatement()
	case "try_statement", "try_with_resources_statement":
		b.ExitTryCatchBlock()
	case "catch_clause":
		b.ExitCatchBlock()
	case "resource":
		b.ExitStatementOrExpression()

	case "method_invocation":
		if ev.Child("object") == nil {
			b.ExitStatementOrExpression()
		} else {
			b.ExitMethodCall()
		}
	}
}

// enterDeclarator handles "T x = v" in fields, constants and locals. A field
// becomes an Attribute; an initialized local becomes an Assignment whose
// target is the declared Variable; a bare local is just the Variable.
func (l *listener) enterDeclarator(ev cst.Event) {
	declType := ""
	if p := ev.Parent(); p != nil {
		if t := p.ChildByFieldName("type"); t != nil {
			declType = t.Content(ev.Source())
		}
	}
	name := ev.ChildText("name")

	if ev.ParentType() != "local_variable_declaration" {
		l.b.AddAttribute(ev, name, declType)
		return
	}
	nameRef := ev
	if n := ev.Child("name"); n != nil {
		nameRef = ev.Of(n, "name")
	}
	if ev.Child("value") != nil {
		l.b.AddAssignment(ev)
	}
	l.b.AddVariable(nameRef, name, declType)
}

// enterResource binds a try-with-resources resource. A declaration becomes
// an Assignment like a local; a reference to an existing variable is kept as
// a generic statement around that reference.
func (l *listener) enterResource(ev cst.Event) {
	name := ev.Child("name")
	if name == nil {
		l.b.AddGenericStatement(ev, "resource")
		return
	}
	l.b.AddAssignment(ev)
	l.b.AddVariable(ev.Of(name, "name"), name.Content(ev.Source()), ev.ChildText("type"))
}

func (l *listener) enterIdentifier(ev cst.Event) {
	switch ev.Field() {
	case "name", "field":
		return
	}
	switch ev.ParentType() {
	case "labeled_statement", "scoped_identifier":
		return
	case "inferred_parameters":
		l.b.AddParameter(ev, ev.Text(), "")
		return
	case "lambda_expression":
		if ev.Field() == "parameters" {
			l.b.AddParameter(ev, ev.Text(), "")
			return
		}
	}
	l.b.AddVariable(ev, ev.Text(), "")
}

// enterInvocation picks the canonical call shape: no receiver, a simple
// qualifier known right now, or a receiver expression still to be built.
func (l *listener) enterInvocation(ev cst.Event) {
	name := ev.ChildText("name")
	obj := ev.Child("object")
	switch {
	case obj == nil:
		l.b.AddFunctionCall(ev, name)
	case isQualifier(obj):
		l.b.AddMethodCall(ev, qualifierRef{ev.Of(obj, "object")}, name)
	default:
		l.b.BeginDeferredCall(ev, name)
	}
}

// qualifierRef presents a dotted qualifier without interior whitespace.
type qualifierRef struct{ cst.Event }

func (q qualifierRef) Text() string { return grammar.Compact(q.Event.Text()) }

// isQualifier reports receivers that are plain names: x, this, super, a.b.c.
func isQualifier(n *sitter.Node) bool {
	switch n.Type() {
	case "identifier", "this", "super":
		return true
	case "field_access":
		obj, field := n.ChildByFieldName("object"), n.ChildByFieldName("field")
		return obj != nil && field != nil && field.Type() == "identifier" && isQualifier(obj)
	}
	return false
}

// isReceiver reports the object of a call that is not a plain qualifier.
func isReceiver(ev cst.Event) bool {
	return ev.Field() == "object" && ev.ParentType() == "method_invocation" && !isQualifier(ev.Node())
}

func isElseIf(ev cst.Event) bool {
	return ev.Field() == "alternative" && ev.ParentType() == "if_statement"
}

// isElseBranch reports an else body that is not itself an if.
func isElseBranch(ev cst.Event) bool {
	return isElseIf(ev) && ev.Type() != "if_statement"
}

func isCondition(ev cst.Event) bool {
	if ev.Field() != "condition" {
		return false
	}
	switch ev.ParentType() {
	case "if_statement", "while_statement", "do_statement", "switch_expression":
		return true
	}
	return false
}

// spreadParameter reads "T... name", which carries no field names.
func spreadParameter(ev cst.Event) (name, typ string) {
	n := ev.Node()
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "modifiers":
		case "variable_declarator":
			if id := c.ChildByFieldName("name"); id != nil {
				name = id.Content(ev.Source())
			}
		default:
			if typ == "" {
				typ = c.Content(ev.Source()) + "..."
			}
		}
	}
	return name, typ
}

func childTextOfType(ev cst.Event, typ string) string {
	n := ev.Node()
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == typ {
			return c.Content(ev.Source())
		}
	}
	return ""
}

// enclosingName returns the name of the declaration owning a body member.
func enclosingName(n *sitter.Node, src []byte) string {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if classTypes[p.Type()] {
			if name := p.ChildByFieldName("name"); name != nil {
				return name.Content(src)
			}
			return ""
		}
	}
	return ""
}
