package structure

import (
	"context"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// constructMarkdown builds an outline for a Markdown root. Headings become
// section elements (rank = level - 1) and the regular section nesting and
// numbering passes apply; Markdown has no inclusion resolution.
func (b *Builder) constructMarkdown(ctx context.Context, rootFile string, cfg Config) ([]*Element, error) {
	abs, err := filepath.Abs(rootFile)
	if err != nil {
		return nil, err
	}

	content, _, ok := b.src.Get(abs)
	if !ok {
		if err := b.src.ForceRefresh(ctx, abs); err != nil {
			b.log.Warn("source refresh failed", "path", abs, "error", err)
		}
		if content, _, ok = b.src.Get(abs); !ok {
			b.log.Warn("source unavailable, skipping file", "path", abs)
			return []*Element{}, nil
		}
	}

	elems := markdownElements(content, abs)
	elems = nestSections(elems, markdownRank)
	if cfg.NumberSections {
		numberSections(elems, "", -1, markdownRank)
	}
	return elems, nil
}

func markdownElements(content, filePath string) []*Element {
	src := []byte(content)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	lines := newLineIndex(content)

	var elems []*Element
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		offset := 0
		if segs := h.Lines(); segs.Len() > 0 {
			offset = segs.At(0).Start
		}
		line := lines.lineFor(offset)
		elems = append(elems, &Element{
			Kind:         KindSection,
			Name:         "h" + strconv.Itoa(h.Level),
			Label:        strings.TrimSpace(string(h.Text(src))),
			SourceOffset: offset,
			LineStart:    line,
			LineEnd:      line,
			FilePath:     filePath,
		})
	}
	return elems
}

// markdownRank maps heading names h1..h6 to ranks 0..5.
func markdownRank(name string) (int, bool) {
	if len(name) != 2 || name[0] != 'h' {
		return 0, false
	}
	level := int(name[1] - '0')
	if level < 1 || level > 6 {
		return 0, false
	}
	return level - 1, true
}

// lineIndex maps byte offsets to zero-based line numbers.
type lineIndex struct {
	starts []int
}

func newLineIndex(content string) lineIndex {
	starts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{starts: starts}
}

func (l lineIndex) lineFor(offset int) int {
	return sort.Search(len(l.starts), func(i int) bool {
		return l.starts[i] > offset
	}) - 1
}
