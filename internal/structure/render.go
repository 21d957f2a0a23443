package structure

import (
	"strings"

	"github.com/dgallion1/texstruct/internal/texast"
)

// altTextMacro supplies a plain-text fallback for a stylized title. Only the
// fallback argument is rendered.
const altTextMacro = "texorpdfstring"

// renderNodes flattens a sequence of inline content nodes into a label string.
func renderNodes(nodes []texast.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		renderNode(&b, n)
	}
	return b.String()
}

func renderNode(b *strings.Builder, n texast.Node) {
	switch n := n.(type) {
	case *texast.Text:
		b.WriteString(n.Value)
	case *texast.Whitespace, *texast.ParBreak, *texast.Comment:
		writeSpace(b)
	case *texast.Macro:
		renderMacro(b, n)
	case *texast.Environment:
		b.WriteString(`\environment{` + n.Name + `}`)
	case *texast.MathEnv:
		b.WriteString(`\environment{` + n.Name + `}`)
	case *texast.VerbatimEnv:
		b.WriteString(`\environment{` + n.Name + `}`)
	case *texast.InlineMath:
		b.WriteByte('$')
		b.WriteString(renderNodes(n.Content))
		b.WriteByte('$')
	case *texast.DisplayMath:
		b.WriteString(`\[`)
		b.WriteString(renderNodes(n.Content))
		b.WriteString(`\]`)
	case *texast.Group:
		b.WriteString(renderNodes(n.Content))
	case *texast.Verbatim:
		b.WriteString(n.Value)
	}
}

// writeSpace collapses any run of whitespace, comments and paragraph breaks
// into a single space.
func writeSpace(b *strings.Builder) {
	s := b.String()
	if s == "" || strings.HasSuffix(s, " ") {
		return
	}
	b.WriteByte(' ')
}

func renderMacro(b *strings.Builder, m *texast.Macro) {
	if m.Name == altTextMacro && len(m.Args) >= 2 {
		// The second argument is the plain-text fallback; the stylized
		// first argument is dropped.
		b.WriteString(renderNodes(m.Args[1].Content))
		return
	}
	b.WriteByte('\\')
	b.WriteString(m.Name)
	if m.Starred {
		b.WriteByte('*')
	}
	for _, arg := range m.Args {
		left, right := "{", "}"
		if arg.Optional {
			left, right = "[", "]"
		}
		b.WriteString(left)
		b.WriteString(renderNodes(arg.Content))
		b.WriteString(right)
	}
}
