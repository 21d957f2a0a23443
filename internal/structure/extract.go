package structure

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dgallion1/texstruct/internal/texast"
)

// Inclusion macro families. Input-like macros take one path argument;
// import-like macros take a directory and a file, resolved against the
// importing scope; sub-import macros resolve both under the current file's
// directory.
var (
	inputMacros = map[string]bool{
		"input":             true,
		"include":           true,
		"InputIfFileExists": true,
		"subfile":           true,
		"loadglsentries":    true,
	}
	importMacros = map[string]bool{
		"import":      true,
		"inputfrom":   true,
		"includefrom": true,
	}
	subImportMacros = map[string]bool{
		"subimport":      true,
		"subinputfrom":   true,
		"subincludefrom": true,
	}
)

// docBlockEnvs are documentation-style blocks describing a macro or
// environment; they are surfaced in the outline but never float-numbered.
var docBlockEnvs = map[string]bool{
	"macro":       true,
	"environment": true,
}

// childDirectiveRe matches the comment-embedded child inclusion directive,
// e.g. "% !TEX child = chapters/intro.tex".
var childDirectiveRe = regexp.MustCompile(`(?i)^\s*%\s*!TEX\s+child\s*=\s*(\S.*?)\s*$`)

// childDirective is one legacy inclusion found by the raw-content scan.
type childDirective struct {
	resolved string // absolute path, empty if unresolvable
	raw      string
	line     int // 0-based
}

// scanChildDirectives collects legacy child directives in ascending line order.
func (r *run) scanChildDirectives(content, filePath string) []childDirective {
	var out []childDirective
	for i, line := range strings.Split(content, "\n") {
		m := childDirectiveRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out = append(out, childDirective{
			resolved: r.resolveInputPath(m[1], filePath),
			raw:      m[1],
			line:     i,
		})
	}
	return out
}

// extractFile populates r.cache[filePath] with the file's flat element forest.
// The cache entry is claimed before any recursion so cyclic or diamond
// inclusion graphs extract each file exactly once per run.
func (r *run) extractFile(filePath string) {
	if _, done := r.cache[filePath]; done {
		return
	}
	r.cache[filePath] = nil

	content, doc, ok := r.load(filePath)
	if !ok {
		r.log.Warn("source unavailable, skipping file", "path", filePath)
		r.cache[filePath] = []*Element{}
		return
	}

	queue := r.scanChildDirectives(content, filePath)
	var elems []*Element
	r.walk(doc.Content, filePath, &queue, &elems)
	r.flushChildDirectives(&queue, filePath, &elems)
	r.cache[filePath] = elems
}

// walk visits nodes top-down. A node that classifies into an element becomes
// the parent for elements found in its own content; other nodes are traversed
// transparently so nested structure is never lost.
func (r *run) walk(nodes []texast.Node, filePath string, queue *[]childDirective, out *[]*Element) {
	for _, node := range nodes {
		r.popChildDirectives(queue, node.Range().Start.Line, filePath, out)
		el := r.classify(node, filePath)
		if el != nil {
			*out = append(*out, el)
			r.walk(nodeContent(node), filePath, queue, &el.Children)
			continue
		}
		r.walk(nodeContent(node), filePath, queue, out)
	}
}

// popChildDirectives inserts every pending directive located at or before the
// given line, preserving document order.
func (r *run) popChildDirectives(queue *[]childDirective, line int, filePath string, out *[]*Element) {
	for len(*queue) > 0 && (*queue)[0].line <= line {
		d := (*queue)[0]
		*queue = (*queue)[1:]
		if el := r.childDirectiveElement(d, filePath); el != nil {
			*out = append(*out, el)
		}
	}
}

func (r *run) flushChildDirectives(queue *[]childDirective, filePath string, out *[]*Element) {
	for _, d := range *queue {
		if el := r.childDirectiveElement(d, filePath); el != nil {
			*out = append(*out, el)
		}
	}
	*queue = nil
}

func (r *run) childDirectiveElement(d childDirective, filePath string) *Element {
	label := d.raw
	if r.cfg.MergeSubFiles {
		if d.resolved == "" {
			return nil
		}
		label = d.resolved
		r.extractFile(d.resolved)
	}
	return &Element{
		Kind:      KindSubFile,
		Name:      "child",
		Label:     label,
		LineStart: d.line,
		LineEnd:   d.line,
		FilePath:  filePath,
	}
}

// nodeContent returns the child node sequences traversed during extraction.
func nodeContent(node texast.Node) []texast.Node {
	switch n := node.(type) {
	case *texast.Group:
		return n.Content
	case *texast.Environment:
		nodes := argContent(n.Args)
		return append(nodes, n.Content...)
	case *texast.Macro:
		return argContent(n.Args)
	case *texast.InlineMath:
		return n.Content
	case *texast.DisplayMath:
		return n.Content
	}
	return nil
}

func argContent(args []texast.Arg) []texast.Node {
	var nodes []texast.Node
	for _, a := range args {
		nodes = append(nodes, a.Content...)
	}
	return nodes
}

// classify maps one AST node to at most one structural element. First match
// wins; unmatched nodes yield nil.
func (r *run) classify(node texast.Node, filePath string) *Element {
	switch n := node.(type) {
	case *texast.Macro:
		return r.classifyMacro(n, filePath)
	case *texast.Environment:
		return r.classifyEnvironment(n, filePath)
	case *texast.MathEnv:
		if r.envs[n.Name] {
			return r.newElement(KindEnvironment, n.Name, capitalize(n.Name), n.Rng, filePath)
		}
	}
	return nil
}

func (r *run) classifyMacro(m *texast.Macro, filePath string) *Element {
	if _, ok := r.rank(m.Name); ok {
		return r.sectionElement(m, filePath)
	}
	if r.commands[m.Name] {
		label := "#" + m.Name
		if arg := texast.FirstArg(m.Args, false); arg != nil {
			if rendered := strings.TrimSpace(renderNodes(arg.Content)); rendered != "" {
				label += ": " + rendered
			}
		}
		return r.newElement(KindCommand, m.Name, label, m.Rng, filePath)
	}
	switch {
	case inputMacros[m.Name]:
		return r.subFileElement(m, filePath, r.resolveInputPath(macroArgText(m, 0), filePath), macroArgText(m, 0))
	case importMacros[m.Name]:
		return r.subFileElement(m, filePath, r.resolveImportPath(macroArgText(m, 0), macroArgText(m, 1)), macroArgText(m, 1))
	case subImportMacros[m.Name]:
		return r.subFileElement(m, filePath, r.resolveSubImportPath(macroArgText(m, 0), macroArgText(m, 1), filePath), macroArgText(m, 1))
	}
	return nil
}

func (r *run) sectionElement(m *texast.Macro, filePath string) *Element {
	kind := KindSection
	if m.Starred {
		kind = KindSectionStarred
	}
	var label string
	if opt := texast.FirstArg(m.Args, true); opt != nil {
		label = renderNodes(opt.Content)
	} else if arg := texast.FirstArg(m.Args, false); arg != nil {
		label = renderNodes(arg.Content)
	}
	return r.newElement(kind, strings.TrimSuffix(m.Name, "*"), strings.TrimSpace(label), m.Rng, filePath)
}

func (r *run) classifyEnvironment(env *texast.Environment, filePath string) *Element {
	switch {
	case env.Name == "frame":
		label := capitalize(env.Name)
		if r.cfg.ShowCaptions {
			caption := frameCaption(env)
			if caption != "" {
				label += ": " + caption
			}
		}
		return r.newElement(KindEnvironment, env.Name, label, env.Rng, filePath)

	case isFloatEnv(env.Name, r.floats):
		base := strings.TrimSuffix(env.Name, "*")
		label := capitalize(base)
		if r.cfg.ShowCaptions {
			if caption := findMacroArg(env.Content, "caption"); caption != "" {
				label += ": " + caption
			}
		}
		return r.newElement(KindEnvironment, base, label, env.Rng, filePath)

	case docBlockEnvs[env.Name]:
		label := capitalize(env.Name)
		if arg := texast.FirstArg(env.Args, false); arg != nil {
			if rendered := strings.TrimSpace(renderNodes(arg.Content)); rendered != "" {
				label += ": " + rendered
			}
		}
		return r.newElement(KindEnvironment, env.Name, label, env.Rng, filePath)

	case r.envs[env.Name]:
		return r.newElement(KindEnvironment, env.Name, capitalize(env.Name), env.Rng, filePath)
	}
	return nil
}

func (r *run) subFileElement(m *texast.Macro, filePath, resolved, raw string) *Element {
	if raw == "" {
		return nil
	}
	label := raw
	if r.cfg.MergeSubFiles {
		if resolved == "" {
			// Unresolvable inclusion paths produce no element.
			return nil
		}
		label = resolved
		r.extractFile(resolved)
	}
	return r.newElement(KindSubFile, m.Name, label, m.Rng, filePath)
}

func (r *run) newElement(kind Kind, name, label string, rng texast.Range, filePath string) *Element {
	return &Element{
		Kind:         kind,
		Name:         name,
		Label:        label,
		SourceOffset: rng.Start.Offset,
		LineStart:    rng.Start.Line,
		LineEnd:      rng.End.Line,
		FilePath:     filePath,
	}
}

// frameCaption prefers the frame's explicit title argument, then a nested
// \frametitle macro.
func frameCaption(env *texast.Environment) string {
	if arg := texast.FirstArg(env.Args, false); arg != nil {
		if rendered := strings.TrimSpace(renderNodes(arg.Content)); rendered != "" {
			return rendered
		}
	}
	return findMacroArg(env.Content, "frametitle")
}

// findMacroArg locates the first macro with the given name in a content
// subtree and renders its first mandatory argument.
func findMacroArg(nodes []texast.Node, name string) string {
	for _, node := range nodes {
		if m, ok := node.(*texast.Macro); ok && m.Name == name {
			if arg := texast.FirstArg(m.Args, false); arg != nil {
				return strings.TrimSpace(renderNodes(arg.Content))
			}
		}
		if inner := findMacroArg(nodeContent(node), name); inner != "" {
			return inner
		}
	}
	return ""
}

func macroArgText(m *texast.Macro, i int) string {
	var mandatory []texast.Arg
	for _, a := range m.Args {
		if !a.Optional {
			mandatory = append(mandatory, a)
		}
	}
	if i >= len(mandatory) {
		return ""
	}
	return strings.TrimSpace(renderNodes(mandatory[i].Content))
}

func isFloatEnv(name string, floats map[string]bool) bool {
	return floats[strings.TrimSuffix(name, "*")]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// resolveInputPath resolves an input-like path against the root directory,
// the current file's directory and the configured search directories.
func (r *run) resolveInputPath(raw, currentFile string) string {
	if raw == "" {
		return ""
	}
	var candidates []string
	if filepath.IsAbs(raw) {
		candidates = append(candidates, raw)
	} else {
		candidates = append(candidates, filepath.Join(r.rootDir, raw))
		candidates = append(candidates, filepath.Join(filepath.Dir(currentFile), raw))
		for _, dir := range r.cfg.SearchDirs {
			candidates = append(candidates, filepath.Join(dir, raw))
		}
	}
	return firstExisting(candidates)
}

// resolveImportPath joins the file argument to the directory argument, with a
// fallback relative to the root file's directory.
func (r *run) resolveImportPath(dir, file string) string {
	if file == "" {
		return ""
	}
	var candidates []string
	if dir != "" {
		if filepath.IsAbs(dir) {
			candidates = append(candidates, filepath.Join(dir, file))
		} else {
			candidates = append(candidates, filepath.Join(r.rootDir, dir, file))
		}
	}
	candidates = append(candidates, filepath.Join(r.rootDir, file))
	return firstExisting(candidates)
}

// resolveSubImportPath joins both arguments under the current file's directory.
func (r *run) resolveSubImportPath(dir, file, currentFile string) string {
	if file == "" {
		return ""
	}
	return firstExisting([]string{filepath.Join(filepath.Dir(currentFile), dir, file)})
}

// firstExisting returns the first candidate naming an existing regular file,
// trying a .tex suffix for extensionless paths.
func firstExisting(candidates []string) string {
	for _, c := range candidates {
		for _, path := range []string{c, c + ".tex"} {
			if filepath.Ext(c) != "" && path != c {
				continue
			}
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				abs, err := filepath.Abs(path)
				if err != nil {
					continue
				}
				return abs
			}
		}
	}
	return ""
}
