package python_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/gast/internal/testutil"
	"github.com/leapstack-labs/gast/pkg/cst"
	"github.com/leapstack-labs/gast/pkg/gast"
	"github.com/leapstack-labs/gast/pkg/grammar"
	_ "github.com/leapstack-labs/gast/pkg/grammars/java"
	"github.com/leapstack-labs/gast/pkg/grammars/python"
)

func extract(t *testing.T, name, src string) *gast.Node {
	t.Helper()
	root, err := grammar.Extract(context.Background(), name, []byte(src), grammar.ExtractOptions{
		Strict: true,
		Logger: testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	for n := range root.All() {
		for i := 1; i < n.NumChildren(); i++ {
			assert.False(t, n.Child(i).Span().Start.Before(n.Child(i-1).Span().Start),
				"%s %q: children out of source order", n.Kind(), n.Name())
		}
	}
	return root
}

func def(t *testing.T, root *gast.Node, name string) *gast.Node {
	t.Helper()
	n := gast.Find(root, func(n *gast.Node) bool {
		return n.Kind().IsCallable() && n.Name() == name
	})
	require.NotNil(t, n, "%s not found", name)
	return n
}

func kinds(nodes []*gast.Node) []gast.Kind {
	out := make([]gast.Kind, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Kind())
	}
	return out
}

// shape renders a subtree as its pre-order kinds.
func shape(n *gast.Node) []gast.Kind {
	var out []gast.Kind
	for c := range n.All() {
		out = append(out, c.Kind())
	}
	return out
}

func TestRegistered(t *testing.T) {
	for _, path := range []string{"a/b.py", "stubs/c.pyi"} {
		g, ok := grammar.ForFile(path)
		require.True(t, ok, path)
		assert.Equal(t, python.Name, g.Name)
	}
}

func TestIfChain(t *testing.T) {
	root := extract(t, "m.py", `
def m():
    if a:
        f()
    elif b:
        g()
    else:
        h()
`)

	fn := def(t, root, "m")
	require.Equal(t, []gast.Kind{gast.KindIfStatement}, kinds(fn.Children()))
	head := fn.Child(0)
	assert.Equal(t, "a", head.Value())
	assert.Equal(t, "a", head.Condition().Child(0).Name())
	assert.Equal(t,
		[]gast.Kind{gast.KindExpression, gast.KindGenericStatement, gast.KindIfStatement, gast.KindElseStatement},
		kinds(head.Children()))

	require.Len(t, head.ElseIfs(), 1)
	elif := head.ElseIfs()[0]
	assert.True(t, elif.ElseIf())
	assert.Equal(t, "b", elif.Value())
	assert.Equal(t, "g", elif.Body()[0].Child(0).Name())
	assert.Equal(t, "h", head.Else().Child(0).Child(0).Name())
}

func TestIfChainMatchesJava(t *testing.T) {
	py := extract(t, "m.py", `
def m():
    if a:
        f()
    elif b:
        g()
    else:
        h()
`)
	jv := extract(t, "M.java", `
class M {
  void m() {
    if (a) { f(); } else if (b) { g(); } else { h(); }
  }
}`)

	pyIf := gast.Find(py, gast.OfKind(gast.KindIfStatement))
	jvIf := gast.Find(jv, gast.OfKind(gast.KindIfStatement))
	require.NotNil(t, pyIf)
	require.NotNil(t, jvIf)
	assert.Equal(t, shape(jvIf), shape(pyIf), "both grammars collapse onto one chain shape")
}

func TestCalls(t *testing.T) {
	root := extract(t, "calls.py", `
obj.method(x)
os.path.join(x)
method(x)
a.b().c()
(x + y).bit_length()
"abc".upper()
`)
	stmts := root.Children()
	require.Len(t, stmts, 6)
	call := func(i int) *gast.Node { return stmts[i].Child(0) }

	for i, recv := range []string{"obj", "os.path"} {
		c := call(i)
		assert.Equal(t, gast.KindMethodCall, c.Kind())
		assert.Equal(t, gast.KindVariable, c.Receiver().Kind())
		assert.Equal(t, recv, c.Receiver().Name())
		require.Len(t, c.Arguments(), 1)
		assert.Equal(t, "x", c.Arguments()[0].Name())
	}

	bare := call(2)
	assert.Equal(t, gast.KindFunctionCall, bare.Kind())
	assert.Equal(t, "method", bare.Name())

	chained := call(3)
	assert.Equal(t, "c", chained.Name())
	assert.Equal(t, gast.KindMethodCall, chained.Receiver().Kind())
	assert.Equal(t, "b", chained.Receiver().Name())
	assert.Equal(t, "a", chained.Receiver().Receiver().Name())
	assert.Equal(t, "c", chained.Callee().Name())

	wrapped := call(4)
	assert.Equal(t, gast.KindExpression, wrapped.Receiver().Kind())
	assert.Equal(t, "bit_length", wrapped.Callee().Name())

	lit := call(5)
	assert.Equal(t, gast.KindConstant, lit.Receiver().Kind())
	assert.Equal(t, `"abc"`, lit.Receiver().Value())
}

func TestClassDefinitions(t *testing.T) {
	root := extract(t, "point.py", `
import math
from os import path

class Point(Base):
    """A point."""

    def __init__(self, x: int, y=0, *args, **kw):
        self.x = x

    @property
    def norm(self) -> float:
        return abs(self.x)

def helper():
    pass
`)

	require.Equal(t, []gast.Kind{gast.KindClass, gast.KindFunction}, kinds(root.Children()))
	class := root.Child(0)
	assert.Equal(t, "Point", class.Name())
	assert.Equal(t,
		[]gast.Kind{gast.KindGenericStatement, gast.KindConstructor, gast.KindMethod},
		kinds(class.Children()))

	ctor := class.Child(1)
	assert.Equal(t, "Point", ctor.Name())
	params := ctor.ChildrenOfKind(gast.KindParameter)
	require.Len(t, params, 5)
	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"self", "x", "y", "*args", "**kw"}, names)
	assert.Equal(t, "int", params[1].DeclaredType())

	assign := ctor.FirstChildOfKind(gast.KindGenericStatement).Child(0)
	assert.Equal(t, gast.KindAssignment, assign.Kind())
	assert.Equal(t, gast.KindAttributeAccess, assign.Child(0).Kind())
	assert.Equal(t, "x", assign.Child(0).Name())
	assert.Equal(t, "self", assign.Child(0).Receiver().Name())

	norm := class.Child(2)
	assert.Equal(t, "norm", norm.Name())
	assert.Equal(t, "float", norm.DeclaredType())
	ret := norm.FirstChildOfKind(gast.KindReturnStatement)
	require.NotNil(t, ret)
	assert.Equal(t, "abs", ret.Child(0).Name())

	helper := root.Child(1)
	assert.Equal(t, "helper", helper.Name())
	assert.Equal(t, "pass", helper.Child(0).Name())
}

func TestClassAttributes(t *testing.T) {
	root := extract(t, "counter.py", `
class Counter:
    x: int = 3
    count = 0
    label: str

    def bump(self):
        y: int = self.count + 1
        z = y
`)

	class := gast.Find(root, gast.OfKind(gast.KindClass))
	require.NotNil(t, class)
	assert.Equal(t, "Counter", class.Name())
	require.Equal(t,
		[]gast.Kind{gast.KindAttribute, gast.KindAttribute, gast.KindAttribute, gast.KindMethod},
		kinds(class.Children()))

	tests := []struct {
		name, declType, value string
	}{
		{"x", "int", "3"},
		{"count", "", "0"},
		{"label", "str", ""},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := class.Child(i)
			assert.Equal(t, tt.name, attr.Name())
			assert.Equal(t, tt.declType, attr.DeclaredType())
			if tt.value == "" {
				assert.Zero(t, attr.NumChildren())
				return
			}
			require.Equal(t, 1, attr.NumChildren())
			assert.Equal(t, gast.KindConstant, attr.Child(0).Kind())
			assert.Equal(t, tt.value, attr.Child(0).Value())
		})
	}

	// Locals stay assignments; an annotation types the target.
	bump := class.Child(3)
	stmts := bump.ChildrenOfKind(gast.KindGenericStatement)
	require.Len(t, stmts, 2)
	typed := stmts[0].Child(0)
	assert.Equal(t, gast.KindAssignment, typed.Kind())
	assert.Equal(t, gast.KindVariable, typed.Child(0).Kind())
	assert.Equal(t, "y", typed.Child(0).Name())
	assert.Equal(t, "int", typed.Child(0).DeclaredType())
	plain := stmts[1].Child(0)
	assert.Equal(t, "z", plain.Child(0).Name())
	assert.Empty(t, plain.Child(0).DeclaredType())
}

func TestClassAttributesMatchJava(t *testing.T) {
	py := extract(t, "a.py", "class A:\n    count: int = 0\n")
	jv := extract(t, "A.java", "class A {\n  int count = 0;\n}\n")

	pyClass := gast.Find(py, gast.OfKind(gast.KindClass))
	jvClass := gast.Find(jv, gast.OfKind(gast.KindClass))
	require.NotNil(t, pyClass)
	require.NotNil(t, jvClass)
	assert.Equal(t, shape(jvClass), shape(pyClass))
	assert.Equal(t, jvClass.Child(0).Name(), pyClass.Child(0).Name())
	assert.Equal(t, jvClass.Child(0).DeclaredType(), pyClass.Child(0).DeclaredType())
}

func TestExceptionHandling(t *testing.T) {
	root := extract(t, "io.py", `
def m():
    with open(p) as f, lock:
        use(f)
    try:
        risky()
    except ValueError as e:
        log(e)
    except (KeyError, IndexError):
        pass
    finally:
        done()
    raise Stop()
`)

	fn := def(t, root, "m")
	require.Equal(t,
		[]gast.Kind{gast.KindTryCatchBlock, gast.KindTryCatchBlock, gast.KindThrowStatement},
		kinds(fn.Children()))

	with := fn.Child(0)
	assert.Equal(t,
		[]gast.Kind{gast.KindAssignment, gast.KindGenericStatement, gast.KindGenericStatement},
		kinds(with.Children()))
	// Source order puts the value before its target.
	res := with.Child(0)
	assert.Equal(t, "open", res.Child(0).Name())
	assert.Equal(t, gast.KindVariable, res.Child(1).Kind())
	assert.Equal(t, "f", res.Child(1).Name())
	assert.Equal(t, "with", with.Child(1).Name())

	try := fn.Child(1)
	assert.Equal(t,
		[]gast.Kind{gast.KindGenericStatement, gast.KindCatchBlock, gast.KindCatchBlock, gast.KindGenericStatement},
		kinds(try.Children()))
	catches := try.ChildrenOfKind(gast.KindCatchBlock)
	first := catches[0].Child(0)
	assert.Equal(t, gast.KindParameter, first.Kind())
	assert.Equal(t, "e", first.Name())
	assert.Equal(t, "ValueError", first.DeclaredType())
	assert.Equal(t, "(KeyError, IndexError)", catches[1].Child(0).DeclaredType())
	assert.Equal(t, "pass", catches[1].Child(1).Name())
	assert.Equal(t, "finally", try.Child(3).Name())

	raise := fn.Child(2)
	assert.Equal(t, "Stop", raise.Child(0).Name())
}

func TestLoopsAndLambdas(t *testing.T) {
	root := extract(t, "loops.py", `
def m(xs, n):
    for i in range(3):
        total += i
    else:
        done()
    while n > 0:
        n -= 1
    return sorted(xs, key=lambda v: v.size)
`)

	fn := def(t, root, "m")
	loops := fn.ChildrenOfKind(gast.KindConditionalStatement)
	require.Len(t, loops, 2)

	forLoop := loops[0]
	assert.Equal(t, "range(3)", forLoop.Value())
	assert.Equal(t,
		[]gast.Kind{gast.KindVariable, gast.KindFunctionCall, gast.KindGenericStatement, gast.KindGenericStatement},
		kinds(forLoop.Children()))
	assert.Equal(t, "i", forLoop.Child(0).Name())
	assert.Equal(t, "else", forLoop.Child(3).Name())

	while := loops[1]
	assert.Equal(t, "n > 0", while.Value())
	require.NotNil(t, while.Condition())

	sorted := fn.FirstChildOfKind(gast.KindReturnStatement).Child(0)
	assert.Equal(t, "sorted", sorted.Name())
	args := sorted.Arguments()
	require.Len(t, args, 2)
	kw := args[1]
	assert.Equal(t, gast.KindAssignment, kw.Kind())
	assert.Equal(t, "key", kw.Child(0).Name())
	lambda := kw.Child(1)
	assert.Equal(t, gast.KindFunction, lambda.Kind())
	assert.Equal(t, gast.KindParameter, lambda.Child(0).Kind())
	assert.Equal(t, gast.KindAttributeAccess, lambda.Child(1).Kind())
}

func TestSyntaxError(t *testing.T) {
	_, err := grammar.Extract(context.Background(), "bad.py", []byte("def f(:\n    pass\n"), grammar.ExtractOptions{Strict: true})
	var se *cst.SyntaxError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, "bad.py", se.File)
}
