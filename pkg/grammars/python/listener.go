package python

import (
	"log/slog"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/leapstack-labs/gast/pkg/cst"
	"github.com/leapstack-labs/gast/pkg/gast"
	"github.com/leapstack-labs/gast/pkg/grammar"
)

// listener maps tree-sitter-python productions onto builder operations.
// Roles are layered as in the Java adapter: else branch, condition or
// receiver, then the node's own construct.
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
	if isCondition(ev) {
		l.b.AddExpression(ev)
	}
	if isReceiver(ev) {
		l.b.EnterPrimary(ev, !producesOneNode(ev.Type()))
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
	if isCondition(ev) {
		l.b.ExitStatementOrExpression()
	}
	if isElseBranch(ev) {
		l.b.ExitElseIfOrElseStatement()
	}
}

func (l *listener) skipped(ev cst.Event) bool {
	if cst.IsErrorNode(ev.Node()) || skippedTypes[ev.Type()] || skippedFields[ev.Field()] {
		return true
	}
	parent := ev.ParentType()
	switch {
	case ev.Field() == "type" && parent == "assignment":
		return true
	case ev.Field() == "left" && parent == "assignment" && isClassAttribute(ev.Parent()):
		// Named by the Attribute itself.
		return true
	case ev.Field() == "function" && parent == "call":
		// Only a deferred call keeps its callee attribute in the walk.
		return !isDeferredCallee(ev.Node())
	case exceptClauses[parent]:
		// The caught type and alias become the catch Parameter.
		return ev.Type() != "block"
	}
	return false
}

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
	if isParameter(ev) {
		name, declType := parameter(ev)
		b.AddParameter(ev, name, declType)
		return true
	}
	if isAttributeStatement(ev.Node()) {
		return false
	}
	if label, ok := genericStatements[typ]; ok {
		b.AddGenericStatement(ev, label)
		return opaqueStatements[typ]
	}

	switch typ {
	case "module":
		b.SetFileSpan(ev.Span())

	case "class_definition":
		b.AddClass(ev, ev.ChildText("name"))
	case "function_definition":
		name := ev.ChildText("name")
		class, inClass := enclosingClass(ev.Node(), ev.Source())
		switch {
		case inClass && name == "__init__":
			b.AddConstructor(ev, class)
		case inClass:
			b.AddMethod(ev, name, ev.ChildText("return_type"))
		default:
			b.AddFunction(ev, name, ev.ChildText("return_type"))
		}
	case "lambda":
		b.AddFunction(ev, "lambda", "")

	case "identifier":
		l.enterIdentifier(ev)
	case "as_pattern_target":
		b.AddVariable(ev, grammar.Compact(ev.Text()), "")
		return true

	case "assignment":
		if isClassAttribute(ev.Node()) {
			b.AddAttribute(ev, ev.ChildText("left"), ev.ChildText("type"))
		} else {
			b.AddAssignment(ev)
		}
	case "augmented_assignment", "keyword_argument":
		b.AddAssignment(ev)
	case "with_item":
		if hasAlias(ev) {
			b.AddAssignment(ev)
		} else {
			b.AddGenericStatement(ev, "with")
		}

	case "if_statement":
		b.AddIfStatement(ev, grammar.StripParens(ev.ChildText("condition")), false)
	case "elif_clause":
		b.AddIfStatement(ev, grammar.StripParens(ev.ChildText("condition")), true)
	case "else_clause":
		if !isElseBranch(ev) {
			b.AddGenericStatement(ev, "else")
		}
	case "while_statement":
		b.AddConditionalStatement(ev, grammar.StripParens(ev.ChildText("condition")))
	case "for_statement":
		b.AddConditionalStatement(ev, ev.ChildText("right"))

	case "try_statement", "with_statement":
		b.AddTryCatch(ev)
	case "except_clause", "except_group_clause":
		b.EnterCatchBlock(ev)
		if target, name, declType := exceptTarget(ev); target != nil {
			b.AddParameter(ev.Of(target, ""), name, declType)
		}
	case "raise_statement":
		b.AddThrowStatement(ev)
	case "return_statement":
		b.AddReturnStatement(ev)

	case "call":
		l.enterCall(ev)
	case "attribute":
		if !isDeferredCallee(ev.Node()) {
			b.AddAttributeAccess(ev, ev.ChildText("attribute"))
		}
	}
	return false
}

func (l *listener) exit(ev cst.Event) {
	b := l.b
	typ := ev.Type()

	if literalTypes[typ] || isParameter(ev) {
		return
	}
	if expressionTypes[typ] {
		b.ExitStatementOrExpression()
		return
	}
	if isAttributeStatement(ev.Node()) {
		return
	}
	if _, ok := genericStatements[typ]; ok {
		b.ExitStatementOrExpression()
		return
	}

	switch typ {
	case "class_definition":
		b.ExitClass()
	case "function_definition", "lambda":
		b.ExitFunctionOrMethodDeclaration()
	case "assignment", "augmented_assignment", "keyword_argument", "with_item",
		"raise_statement", "return_statement":
		b.ExitStatementOrExpression()

	case "if_statement":
		b.ExitIfStatement()
	case "elif_clause":
		b.ExitElseIfOrElseStatement()
	case "else_clause":
		if !isElseBranch(ev) {
			b.ExitStatementOrExpression()
		}
	case "while_statement", "for_statement":
		b.ExitConditionalStatement()
	case "try_statement", "with_statement":
		b.ExitTryCatchBlock()
	case "except_clause", "except_group_clause":
		b.ExitCatchBlock()

	case "call":
		if fn := ev.Child("function"); fn != nil && fn.Type() == "attribute" {
			b.ExitMethodCall()
		} else {
			b.ExitStatementOrExpression()
		}
	case "attribute":
		if !isDeferredCallee(ev.Node()) {
			b.ExitStatementOrExpression()
		}
	}
}

func (l *listener) enterIdentifier(ev cst.Event) {
	switch ev.Field() {
	case "attribute":
		return
	case "name":
		if ev.ParentType() != "keyword_argument" {
			return
		}
	}
	declType := ""
	if ev.Field() == "left" && ev.ParentType() == "assignment" {
		if t := ev.Parent().ChildByFieldName("type"); t != nil {
			declType = t.Content(ev.Source())
		}
	}
	l.b.AddVariable(ev, ev.Text(), declType)
}

// isClassAttribute reports "x = v" or "x: T = v" written directly in a class
// body. Like a Java field it becomes an Attribute holding its value.
func isClassAttribute(n *sitter.Node) bool {
	if n == nil || n.Type() != "assignment" {
		return false
	}
	left := n.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return false
	}
	stmt := n.Parent()
	if stmt == nil || stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return false
	}
	body := stmt.Parent()
	if body == nil || body.Type() != "block" {
		return false
	}
	class := body.Parent()
	return class != nil && class.Type() == "class_definition"
}

// isAttributeStatement reports the statement wrapping a class attribute. It
// adds no node of its own.
func isAttributeStatement(n *sitter.Node) bool {
	return n.Type() == "expression_statement" && n.NamedChildCount() == 1 && isClassAttribute(n.NamedChild(0))
}

// enterCall picks the canonical call shape. f(x) is a FunctionCall, a.b.f(x)
// a MethodCall on the qualifier a.b, and g().f(x) a call deferred until its
// receiver g() is built. Any other callee expression is named by its text.
func (l *listener) enterCall(ev cst.Event) {
	fn := ev.Child("function")
	switch {
	case fn == nil:
		l.b.AddFunctionCall(ev, "")
	case fn.Type() == "identifier":
		l.b.AddFunctionCall(ev, fn.Content(ev.Source()))
	case fn.Type() == "attribute":
		name := attrName(fn, ev.Source())
		obj := fn.ChildByFieldName("object")
		if obj != nil && isQualifier(obj) {
			l.b.AddMethodCall(ev, qualifierRef{ev.Of(obj, "object")}, name)
		} else {
			l.b.BeginDeferredCall(ev, name)
		}
	default:
		l.b.AddFunctionCall(ev, grammar.Compact(fn.Content(ev.Source())))
	}
}

type qualifierRef struct{ cst.Event }

func (q qualifierRef) Text() string { return grammar.Compact(q.Event.Text()) }

// isQualifier reports plain dotted names: x, a.b.c.
func isQualifier(n *sitter.Node) bool {
	switch n.Type() {
	case "identifier":
		return true
	case "attribute":
		obj, attr := n.ChildByFieldName("object"), n.ChildByFieldName("attribute")
		return obj != nil && attr != nil && isQualifier(obj)
	}
	return false
}

// isDeferredCallee reports the attribute in g().f(x) that names a call whose
// receiver is not a plain name.
func isDeferredCallee(n *sitter.Node) bool {
	if n.Type() != "attribute" || !isCallee(n) {
		return false
	}
	obj := n.ChildByFieldName("object")
	return obj != nil && !isQualifier(obj)
}

func isCallee(n *sitter.Node) bool {
	p := n.Parent()
	if p == nil || p.Type() != "call" {
		return false
	}
	return sameNode(p.ChildByFieldName("function"), n)
}

// isReceiver reports the object of a deferred callee attribute.
func isReceiver(ev cst.Event) bool {
	if ev.Field() != "object" || ev.ParentType() != "attribute" {
		return false
	}
	return isDeferredCallee(ev.Parent())
}

func isElseBranch(ev cst.Event) bool {
	return ev.Type() == "else_clause" && ev.ParentType() == "if_statement"
}

func isCondition(ev cst.Event) bool {
	if ev.Field() != "condition" {
		return false
	}
	switch ev.ParentType() {
	case "if_statement", "elif_clause", "while_statement":
		return true
	}
	return false
}

func isParameter(ev cst.Event) bool {
	switch ev.ParentType() {
	case "parameters", "lambda_parameters":
		return parameterTypes[ev.Type()]
	}
	return false
}

// parameter reads the name and annotation of one formal parameter.
func parameter(ev cst.Event) (name, declType string) {
	n := ev.Node()
	switch ev.Type() {
	case "identifier", "list_splat_pattern", "dictionary_splat_pattern":
		return ev.Text(), ""
	case "typed_parameter":
		if n.NamedChildCount() > 0 {
			name = n.NamedChild(0).Content(ev.Source())
		}
		return name, ev.ChildText("type")
	}
	return ev.ChildText("name"), ev.ChildText("type")
}

// exceptTarget reads "except T as name". Grammar versions differ on whether
// the alias is wrapped in an as_pattern, so both layouts are accepted.
func exceptTarget(ev cst.Event) (target *sitter.Node, name, declType string) {
	n, src := ev.Node(), ev.Source()
	var parts []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "block" && c.Type() != "comment" {
			parts = append(parts, c)
		}
	}
	if len(parts) == 0 {
		return nil, "", ""
	}
	target = parts[0]
	if target.Type() == "as_pattern" {
		if target.NamedChildCount() > 0 {
			declType = target.NamedChild(0).Content(src)
		}
		if alias := target.ChildByFieldName("alias"); alias != nil {
			name = grammar.Compact(alias.Content(src))
		}
		return target, name, declType
	}
	declType = target.Content(src)
	if len(parts) > 1 {
		name = parts[1].Content(src)
	}
	return target, name, declType
}

func hasAlias(ev cst.Event) bool {
	if ev.Child("alias") != nil {
		return true
	}
	v := ev.Child("value")
	return v != nil && v.Type() == "as_pattern"
}

func attrName(n *sitter.Node, src []byte) string {
	if a := n.ChildByFieldName("attribute"); a != nil {
		return a.Content(src)
	}
	return ""
}

// enclosingClass returns the class a def is written in, looking through a
// decorated definition.
func enclosingClass(n *sitter.Node, src []byte) (string, bool) {
	p := n.Parent()
	if p != nil && p.Type() == "decorated_definition" {
		p = p.Parent()
	}
	if p == nil || p.Type() != "block" {
		return "", false
	}
	if c := p.Parent(); c != nil && c.Type() == "class_definition" {
		if name := c.ChildByFieldName("name"); name != nil {
			return name.Content(src), true
		}
		return "", true
	}
	return "", false
}

// sameNode compares nodes by extent and type. Node values returned by
// separate lookups are not guaranteed to be the same pointer.
func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Type() == b.Type() && a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}
