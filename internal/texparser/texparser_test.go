package texparser

import (
	"testing"

	"github.com/dgallion1/texstruct/internal/texast"
)

func TestParse_SectionMacroWithArgs(t *testing.T) {
	doc := Parse("main.tex", `\section[Short]{Long Title}`)
	if len(doc.Content) != 1 {
		t.Fatalf("expected 1 node, got %d", len(doc.Content))
	}
	m, ok := doc.Content[0].(*texast.Macro)
	if !ok {
		t.Fatalf("expected macro, got %T", doc.Content[0])
	}
	if m.Name != "section" {
		t.Errorf("expected name %q, got %q", "section", m.Name)
	}
	if m.Starred {
		t.Error("expected unstarred macro")
	}
	if len(m.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(m.Args))
	}
	if !m.Args[0].Optional {
		t.Error("expected first arg optional")
	}
	if m.Args[1].Optional {
		t.Error("expected second arg mandatory")
	}
}

func TestParse_StarredMacro(t *testing.T) {
	doc := Parse("main.tex", `\section*{No Number}`)
	m := doc.Content[0].(*texast.Macro)
	if !m.Starred {
		t.Error("expected starred macro")
	}
	if m.Name != "section" {
		t.Errorf("expected name %q, got %q", "section", m.Name)
	}
}

func TestParse_EnvironmentWithNestedContent(t *testing.T) {
	src := "\\begin{figure}\n\\caption{A plot}\n\\end{figure}\n"
	doc := Parse("main.tex", src)

	var env *texast.Environment
	for _, n := range doc.Content {
		if e, ok := n.(*texast.Environment); ok {
			env = e
		}
	}
	if env == nil {
		t.Fatal("expected an environment node")
	}
	if env.Name != "figure" {
		t.Errorf("expected env name %q, got %q", "figure", env.Name)
	}

	var caption *texast.Macro
	for _, n := range env.Content {
		if m, ok := n.(*texast.Macro); ok && m.Name == "caption" {
			caption = m
		}
	}
	if caption == nil {
		t.Fatal("expected nested caption macro")
	}
	if env.Rng.Start.Line != 0 || env.Rng.End.Line != 2 {
		t.Errorf("expected env lines 0..2, got %d..%d", env.Rng.Start.Line, env.Rng.End.Line)
	}
}

func TestParse_NestedSameNameEnvironments(t *testing.T) {
	src := `\begin{itemize}\begin{itemize}inner\end{itemize}outer\end{itemize}tail`
	doc := Parse("main.tex", src)

	outer, ok := doc.Content[0].(*texast.Environment)
	if !ok {
		t.Fatalf("expected environment, got %T", doc.Content[0])
	}
	inner, ok := outer.Content[0].(*texast.Environment)
	if !ok {
		t.Fatalf("expected nested environment, got %T", outer.Content[0])
	}
	if inner.Name != "itemize" {
		t.Errorf("expected inner env %q, got %q", "itemize", inner.Name)
	}
	// "tail" must remain outside the outer environment.
	last, ok := doc.Content[len(doc.Content)-1].(*texast.Text)
	if !ok || last.Value != "tail" {
		t.Errorf("expected trailing text %q, got %#v", "tail", doc.Content[len(doc.Content)-1])
	}
}

func TestParse_VerbatimEnvironmentKeepsRawBody(t *testing.T) {
	src := "\\begin{verbatim}\\section{not a section}\\end{verbatim}"
	doc := Parse("main.tex", src)
	v, ok := doc.Content[0].(*texast.VerbatimEnv)
	if !ok {
		t.Fatalf("expected verbatim env, got %T", doc.Content[0])
	}
	if v.Raw != `\section{not a section}` {
		t.Errorf("unexpected raw body %q", v.Raw)
	}
}

func TestParse_MathEnvironment(t *testing.T) {
	doc := Parse("main.tex", `\begin{equation}x^2\end{equation}`)
	m, ok := doc.Content[0].(*texast.MathEnv)
	if !ok {
		t.Fatalf("expected math env, got %T", doc.Content[0])
	}
	if m.Name != "equation" {
		t.Errorf("expected env name %q, got %q", "equation", m.Name)
	}
	if m.Raw != "x^2" {
		t.Errorf("expected raw %q, got %q", "x^2", m.Raw)
	}
}

func TestParse_InlineAndDisplayMath(t *testing.T) {
	doc := Parse("main.tex", `$a+b$ \[c\]`)
	if _, ok := doc.Content[0].(*texast.InlineMath); !ok {
		t.Errorf("expected inline math first, got %T", doc.Content[0])
	}
	var display *texast.DisplayMath
	for _, n := range doc.Content {
		if d, ok := n.(*texast.DisplayMath); ok {
			display = d
		}
	}
	if display == nil {
		t.Error("expected display math node")
	}
}

func TestParse_CommentRunsToEndOfLine(t *testing.T) {
	doc := Parse("main.tex", "before % comment here\nafter")
	var comment *texast.Comment
	for _, n := range doc.Content {
		if c, ok := n.(*texast.Comment); ok {
			comment = c
		}
	}
	if comment == nil {
		t.Fatal("expected a comment node")
	}
	if comment.Value != "% comment here" {
		t.Errorf("unexpected comment value %q", comment.Value)
	}
}

func TestParse_ParagraphBreak(t *testing.T) {
	doc := Parse("main.tex", "one\n\ntwo")
	var sawBreak bool
	for _, n := range doc.Content {
		if _, ok := n.(*texast.ParBreak); ok {
			sawBreak = true
		}
	}
	if !sawBreak {
		t.Error("expected a paragraph break between the two words")
	}
}

func TestParse_VerbArgument(t *testing.T) {
	doc := Parse("main.tex", `\verb|x_y|`)
	v, ok := doc.Content[0].(*texast.Verbatim)
	if !ok {
		t.Fatalf("expected verbatim, got %T", doc.Content[0])
	}
	if v.Value != "x_y" {
		t.Errorf("expected %q, got %q", "x_y", v.Value)
	}
}

func TestParse_PositionsAreZeroBased(t *testing.T) {
	doc := Parse("main.tex", "line one\n\\section{Two}\n")
	var m *texast.Macro
	for _, n := range doc.Content {
		if mac, ok := n.(*texast.Macro); ok {
			m = mac
		}
	}
	if m == nil {
		t.Fatal("expected a macro node")
	}
	if m.Rng.Start.Line != 1 {
		t.Errorf("expected macro on line 1, got %d", m.Rng.Start.Line)
	}
	if m.Rng.Start.Offset != 9 {
		t.Errorf("expected offset 9, got %d", m.Rng.Start.Offset)
	}
	if m.Rng.Start.Line > m.Rng.End.Line {
		t.Errorf("start line %d after end line %d", m.Rng.Start.Line, m.Rng.End.Line)
	}
}

func TestParse_MalformedInputDoesNotPanic(t *testing.T) {
	inputs := []string{
		`\begin{figure}never closed`,
		`{unbalanced`,
		`$unclosed math`,
		`\`,
		`}}}`,
		`\verb|unclosed`,
	}
	for _, in := range inputs {
		doc := Parse("main.tex", in)
		if doc == nil {
			t.Errorf("expected non-nil document for %q", in)
		}
	}
}
