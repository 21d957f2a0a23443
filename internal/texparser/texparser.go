// Package texparser turns raw TeX source into a texast.Document. The parser is
// lenient: malformed input never produces an error, only a best-effort tree.
package texparser

import (
	"strings"

	"github.com/dgallion1/texstruct/internal/texast"
)

// Environments whose bodies are captured raw instead of parsed.
var verbatimEnvs = map[string]bool{
	"verbatim":   true,
	"verbatim*":  true,
	"lstlisting": true,
	"minted":     true,
	"alltt":      true,
}

var mathEnvs = map[string]bool{
	"math":        true,
	"displaymath": true,
	"equation":    true,
	"equation*":   true,
	"align":       true,
	"align*":      true,
	"gather":      true,
	"gather*":     true,
	"multline":    true,
	"multline*":   true,
	"eqnarray":    true,
	"eqnarray*":   true,
}

// Parse builds the AST for one file's content.
func Parse(filePath, content string) *texast.Document {
	p := &parser{src: content}
	return &texast.Document{
		FilePath: filePath,
		Content:  p.parseNodes(stopEOF, ""),
	}
}

type stopKind int

// Stop conditions for parseNodes: end of input, '}', ']', a single '$',
// a closing \] or $$, and \end{name}.
const (
	stopEOF stopKind = iota
	stopGroup
	stopOptArg
	stopInlineMath
	stopDisplayTeX
	stopDisplayDollar
	stopEnv
)

type parser struct {
	src  string
	pos  int
	line int
	col  int
}

func (p *parser) position() texast.Pos {
	return texast.Pos{Offset: p.pos, Line: p.line, Column: p.col}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) hasPrefix(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

// advance consumes n bytes, updating line/column bookkeeping.
func (p *parser) advance(n int) {
	for i := 0; i < n && p.pos < len(p.src); i++ {
		if p.src[p.pos] == '\n' {
			p.line++
			p.col = 0
		} else {
			p.col++
		}
		p.pos++
	}
}

func (p *parser) atStop(stop stopKind, envName string) bool {
	switch stop {
	case stopGroup:
		return p.peek() == '}'
	case stopOptArg:
		return p.peek() == ']'
	case stopInlineMath:
		return p.peek() == '$' && !p.hasPrefix("$$")
	case stopDisplayDollar:
		return p.hasPrefix("$$")
	case stopDisplayTeX:
		return p.hasPrefix(`\]`)
	case stopEnv:
		return p.atEnvEnd(envName)
	}
	return false
}

// atEnvEnd reports whether the cursor sits on \end{name}.
func (p *parser) atEnvEnd(name string) bool {
	rest := p.src[p.pos:]
	if !strings.HasPrefix(rest, `\end`) {
		return false
	}
	rest = rest[len(`\end`):]
	i := 0
	for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t') {
		i++
	}
	return strings.HasPrefix(rest[i:], "{"+name+"}")
}

func (p *parser) parseNodes(stop stopKind, envName string) []texast.Node {
	var nodes []texast.Node
	for !p.eof() {
		if p.atStop(stop, envName) {
			return nodes
		}
		c := p.peek()
		switch {
		case c == '%':
			nodes = append(nodes, p.parseComment())
		case c == '{':
			nodes = append(nodes, p.parseGroup())
		case c == '}':
			// Stray closer outside its scope; skip it.
			p.advance(1)
		case c == ']':
			// Literal ] outside an optional argument.
			start := p.position()
			p.advance(1)
			nodes = append(nodes, &texast.Text{
				Rng:   texast.Range{Start: start, End: p.position()},
				Value: "]",
			})
		case c == '$':
			nodes = append(nodes, p.parseMath())
		case c == '\\':
			if n := p.parseBackslash(); n != nil {
				nodes = append(nodes, n)
			}
		case isSpace(c):
			nodes = append(nodes, p.parseWhitespace())
		default:
			nodes = append(nodes, p.parseText())
		}
	}
	return nodes
}

func (p *parser) parseComment() texast.Node {
	start := p.position()
	for !p.eof() && p.peek() != '\n' {
		p.advance(1)
	}
	return &texast.Comment{
		Rng:   texast.Range{Start: start, End: p.position()},
		Value: p.src[start.Offset:p.pos],
	}
}

func (p *parser) parseGroup() texast.Node {
	start := p.position()
	p.advance(1) // {
	content := p.parseNodes(stopGroup, "")
	if p.peek() == '}' {
		p.advance(1)
	}
	return &texast.Group{
		Rng:     texast.Range{Start: start, End: p.position()},
		Content: content,
	}
}

func (p *parser) parseMath() texast.Node {
	start := p.position()
	if p.hasPrefix("$$") {
		p.advance(2)
		content := p.parseNodes(stopDisplayDollar, "")
		if p.hasPrefix("$$") {
			p.advance(2)
		}
		return &texast.DisplayMath{
			Rng:     texast.Range{Start: start, End: p.position()},
			Content: content,
		}
	}
	p.advance(1)
	content := p.parseNodes(stopInlineMath, "")
	if p.peek() == '$' {
		p.advance(1)
	}
	return &texast.InlineMath{
		Rng:     texast.Range{Start: start, End: p.position()},
		Content: content,
	}
}

func (p *parser) parseWhitespace() texast.Node {
	start := p.position()
	newlines := 0
	for !p.eof() && isSpace(p.peek()) {
		if p.peek() == '\n' {
			newlines++
		}
		p.advance(1)
	}
	rng := texast.Range{Start: start, End: p.position()}
	if newlines >= 2 {
		return &texast.ParBreak{Rng: rng}
	}
	return &texast.Whitespace{Rng: rng}
}

func (p *parser) parseText() texast.Node {
	start := p.position()
	for !p.eof() {
		c := p.peek()
		if c == '\\' || c == '{' || c == '}' || c == '$' || c == '%' || c == ']' || isSpace(c) {
			break
		}
		p.advance(1)
	}
	return &texast.Text{
		Rng:   texast.Range{Start: start, End: p.position()},
		Value: p.src[start.Offset:p.pos],
	}
}

func (p *parser) parseBackslash() texast.Node {
	start := p.position()
	p.advance(1) // backslash
	if p.eof() {
		return &texast.Text{Rng: texast.Range{Start: start, End: p.position()}, Value: `\`}
	}
	c := p.peek()
	if c == '[' {
		p.advance(1)
		content := p.parseNodes(stopDisplayTeX, "")
		if p.hasPrefix(`\]`) {
			p.advance(2)
		}
		return &texast.DisplayMath{
			Rng:     texast.Range{Start: start, End: p.position()},
			Content: content,
		}
	}
	if !isLetter(c) {
		// Escaped single character like \% or \\.
		p.advance(1)
		return &texast.Macro{
			Rng:  texast.Range{Start: start, End: p.position()},
			Name: string(c),
		}
	}

	nameStart := p.pos
	for !p.eof() && isLetter(p.peek()) {
		p.advance(1)
	}
	name := p.src[nameStart:p.pos]
	starred := false
	if p.peek() == '*' {
		starred = true
		p.advance(1)
	}

	switch name {
	case "begin":
		return p.parseEnvironment(start)
	case "verb":
		return p.parseVerb(start)
	}

	args := p.parseArgs()
	return &texast.Macro{
		Rng:     texast.Range{Start: start, End: p.position()},
		Name:    name,
		Starred: starred,
		Args:    args,
	}
}

// parseArgs consumes a run of [..] and {..} argument groups. Whitespace between
// a macro and its arguments is tolerated but only consumed when an argument
// actually follows.
func (p *parser) parseArgs() []texast.Arg {
	var args []texast.Arg
	for {
		save := *p
		for !p.eof() && (p.peek() == ' ' || p.peek() == '\t') {
			p.advance(1)
		}
		c := p.peek()
		if c != '{' && c != '[' {
			*p = save
			return args
		}
		argStart := p.position()
		optional := c == '['
		p.advance(1)
		var content []texast.Node
		if optional {
			content = p.parseNodes(stopOptArg, "")
			if p.peek() == ']' {
				p.advance(1)
			}
		} else {
			content = p.parseNodes(stopGroup, "")
			if p.peek() == '}' {
				p.advance(1)
			}
		}
		args = append(args, texast.Arg{
			Rng:      texast.Range{Start: argStart, End: p.position()},
			Optional: optional,
			Content:  content,
		})
	}
}

func (p *parser) parseVerb(start texast.Pos) texast.Node {
	if p.eof() {
		return &texast.Macro{Rng: texast.Range{Start: start, End: p.position()}, Name: "verb"}
	}
	delim := p.peek()
	p.advance(1)
	valStart := p.pos
	for !p.eof() && p.peek() != delim && p.peek() != '\n' {
		p.advance(1)
	}
	val := p.src[valStart:p.pos]
	if !p.eof() && p.peek() == delim {
		p.advance(1)
	}
	return &texast.Verbatim{
		Rng:   texast.Range{Start: start, End: p.position()},
		Value: val,
	}
}

func (p *parser) parseEnvironment(start texast.Pos) texast.Node {
	name := p.parseBracedName()
	if name == "" {
		return &texast.Macro{Rng: texast.Range{Start: start, End: p.position()}, Name: "begin"}
	}

	if verbatimEnvs[name] || mathEnvs[name] {
		raw := p.consumeRawUntilEnd(name)
		rng := texast.Range{Start: start, End: p.position()}
		if mathEnvs[name] {
			return &texast.MathEnv{Rng: rng, Name: name, Raw: raw}
		}
		return &texast.VerbatimEnv{Rng: rng, Name: name, Raw: raw}
	}

	args := p.parseArgs()
	content := p.parseNodes(stopEnv, name)
	p.consumeEnvEnd(name)
	return &texast.Environment{
		Rng:     texast.Range{Start: start, End: p.position()},
		Name:    name,
		Args:    args,
		Content: content,
	}
}

// parseBracedName reads {name} after \begin or \end, tolerating leading spaces.
func (p *parser) parseBracedName() string {
	save := *p
	for !p.eof() && (p.peek() == ' ' || p.peek() == '\t') {
		p.advance(1)
	}
	if p.peek() != '{' {
		*p = save
		return ""
	}
	p.advance(1)
	nameStart := p.pos
	for !p.eof() && p.peek() != '}' && p.peek() != '\n' {
		p.advance(1)
	}
	name := p.src[nameStart:p.pos]
	if p.peek() == '}' {
		p.advance(1)
	}
	return name
}

func (p *parser) consumeRawUntilEnd(name string) string {
	rawStart := p.pos
	for !p.eof() && !p.atEnvEnd(name) {
		p.advance(1)
	}
	raw := p.src[rawStart:p.pos]
	p.consumeEnvEnd(name)
	return raw
}

func (p *parser) consumeEnvEnd(name string) {
	if !p.atEnvEnd(name) {
		return
	}
	p.advance(len(`\end`))
	for !p.eof() && (p.peek() == ' ' || p.peek() == '\t') {
		p.advance(1)
	}
	p.advance(len(name) + 2)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
