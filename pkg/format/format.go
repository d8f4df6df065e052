// Package format renders generic ASTs as an indented outline, JSON or YAML.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/gast/pkg/gast"
)

// Format selects an output encoding.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat resolves a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q (want text, json or yaml)", s)
}

// Style decorates the parts of an outline line. Nil funcs leave the part
// unchanged, so the zero Style renders plain text.
type Style struct {
	Kind   func(k gast.Kind, s string) string
	Name   func(s string) string
	Detail func(s string) string
}

func (s Style) kind(k gast.Kind) string {
	if s.Kind == nil {
		return string(k)
	}
	return s.Kind(k, string(k))
}

func (s Style) name(v string) string {
	if s.Name == nil {
		return v
	}
	return s.Name(v)
}

func (s Style) detail(v string) string {
	if s.Detail == nil {
		return v
	}
	return s.Detail(v)
}

// Options control the outline rendering.
type Options struct {
	Style Style
	// Spans appends each node's source span.
	Spans bool
	// MaxDepth limits the printed depth; the root is depth 1. Zero means
	// unlimited. Cut subtrees are summarized by their child count.
	MaxDepth int
}

// Text renders root as an indented outline, one node per line:
//
//	Kind name: declaredType = value (else-if) @span
func Text(root *gast.Node, opts Options) string {
	p := newPrinter()
	if root != nil {
		p.formatNode(root, 1, opts)
	}
	return p.String()
}

func (p *Printer) formatNode(n *gast.Node, depth int, opts Options) {
	st := opts.Style
	p.write(st.kind(n.Kind()))
	if n.Name() != "" {
		p.space()
		p.write(st.name(n.Name()))
	}
	if n.DeclaredType() != "" {
		p.write(": " + st.detail(n.DeclaredType()))
	}
	if n.Value() != "" {
		p.write(" = " + st.detail(oneLine(n.Value())))
	}
	if n.ElseIf() {
		p.write(" " + st.detail("(else-if)"))
	}
	if opts.Spans {
		p.write(" " + st.detail("@"+n.Span().String()))
	}

	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		if n.NumChildren() > 0 {
			p.write(" " + st.detail("[+"+strconv.Itoa(n.NumChildren())+"]"))
		}
		p.writeln()
		return
	}
	p.writeln()

	p.indent()
	for _, c := range n.Children() {
		p.formatNode(c, depth+1, opts)
	}
	p.dedent()
}

// oneLine collapses multi-line values such as text blocks.
func oneLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.Join(strings.Fields(s), " ")
}

// JSON writes root's exchange shape as indented JSON.
func JSON(w io.Writer, root *gast.Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(root.Exchange())
}

// YAML writes root's exchange shape as YAML.
func YAML(w io.Writer, root *gast.Node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root.Exchange()); err != nil {
		return err
	}
	return enc.Close()
}

// Write renders root to w in the given format.
func Write(w io.Writer, root *gast.Node, f Format, opts Options) error {
	switch f {
	case FormatJSON:
		return JSON(w, root)
	case FormatYAML:
		return YAML(w, root)
	case FormatText, "":
		_, err := io.WriteString(w, Text(root, opts))
		return err
	}
	return fmt.Errorf("unknown format %q", f)
}
