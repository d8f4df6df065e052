package format

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/gast/pkg/gast"
	"github.com/leapstack-labs/gast/pkg/token"
)

type ref struct {
	span token.Span
	text string
}

func (r ref) Span() token.Span { return r.span }
func (r ref) Text() string     { return r.text }

func pos(line, col int) token.Position {
	return token.Position{Line: line, Column: col, Offset: (line-1)*100 + col - 1}
}

func at(line, col, endLine, endCol int) ref {
	return ref{span: token.Span{Start: pos(line, col), End: pos(endLine, endCol)}}
}

// sample builds:
//
//	class A {
//	  void m() { if (x) {} else { 1; } }
//	}
func sample(t *testing.T) *gast.Node {
	t.Helper()
	b := gast.NewBuilder("A.java")
	b.AddClass(at(1, 1, 3, 2), "A")
	b.AddMethod(at(2, 3, 2, 30), "m", "void")
	b.AddIfStatement(at(2, 14, 2, 28), "x", false)
	b.AddVariable(at(2, 18, 2, 19), "x", "")
	b.EnterElseStatement(at(2, 24, 2, 28))
	b.AddConstant(at(2, 25, 2, 26), "1")
	b.ExitElseIfOrElseStatement()
	b.ExitIfStatement()
	b.ExitFunctionOrMethodDeclaration()
	b.ExitClass()
	root, err := b.Finish()
	require.NoError(t, err)
	return root
}

func TestText(t *testing.T) {
	root := sample(t)

	tests := []struct {
		name     string
		opts     Options
		expected string
	}{
		{
			name: "plain",
			expected: `File A.java
  Class A
    Method m: void
      IfStatement = x
        Variable x
        ElseStatement
          Constant = 1
`,
		},
		{
			name: "depth limited",
			opts: Options{MaxDepth: 3},
			expected: `File A.java
  Class A
    Method m: void [+1]
`,
		},
		{
			name: "styled",
			opts: Options{
				MaxDepth: 2,
				Style: Style{
					Kind:   func(_ gast.Kind, s string) string { return "<" + s + ">" },
					Detail: strings.ToUpper,
				},
			},
			expected: `<File> A.java
  <Class> A [+1]
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Text(root, tt.opts))
		})
	}
}

func TestText_Spans(t *testing.T) {
	out := Text(sample(t), Options{Spans: true})
	assert.Contains(t, out, "Method m: void @2:3-2:30\n")
	assert.Contains(t, out, "Class A @1:1-3:2\n")
}

func TestText_Empty(t *testing.T) {
	assert.Equal(t, "", Text(nil, Options{}))
}

func TestJSON(t *testing.T) {
	root := sample(t)

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, root))
	assert.Contains(t, buf.String(), `"declaredType": "void"`)

	back, err := gast.UnmarshalTree(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, root.Exchange(), back.Exchange())
}

func TestYAML(t *testing.T) {
	root := sample(t)

	var buf bytes.Buffer
	require.NoError(t, YAML(&buf, root))
	assert.Contains(t, buf.String(), "kind: Method")
	assert.Contains(t, buf.String(), "declaredType: void")

	var ex gast.Exchange
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &ex))
	back, err := gast.FromExchange(ex)
	require.NoError(t, err)
	assert.Equal(t, gast.Compute(root), gast.Compute(back))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatText},
		{in: "TEXT", want: FormatText},
		{in: "json", want: FormatJSON},
		{in: "yml", want: FormatYAML},
		{in: "xml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWrite(t *testing.T) {
	root := sample(t)
	for _, f := range []Format{FormatText, FormatJSON, FormatYAML} {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, root, f, Options{}), f)
		assert.NotEmpty(t, buf.String(), f)
	}
	assert.Error(t, Write(&bytes.Buffer{}, root, "xml", Options{}))
}
