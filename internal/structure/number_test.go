package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberFloats_GlobalPerKindCounters(t *testing.T) {
	nested := env("figure", "Figure: deep")
	one := sec("section", "One")
	one.Children = []*Element{env("figure", "Figure: a"), env("table", "Table: b")}
	two := sec("section", "Two")
	two.Children = []*Element{env("figure", "Figure: c"), &Element{
		Kind: KindEnvironment, Name: "frame", Label: "Frame",
		Children: []*Element{nested},
	}}

	numberFloats([]*Element{one, two})

	assert.Equal(t, "Figure 1: a", one.Children[0].Label)
	assert.Equal(t, "Table 1: b", one.Children[1].Label)
	assert.Equal(t, "Figure 2: c", two.Children[0].Label)
	assert.Equal(t, "Frame 1", two.Children[1].Label, "no separator appends the number")
	assert.Equal(t, "Figure 3: deep", nested.Label, "counters ignore nesting depth")
}

func TestNumberFloats_DocumentationBlocksExempt(t *testing.T) {
	block := env("macro", `Macro: \foo`)
	numberFloats([]*Element{block})
	assert.Equal(t, `Macro: \foo`, block.Label)
}

func TestNumberSections_SiblingsCountUp(t *testing.T) {
	a, b, c := sec("section", "A"), sec("section", "B"), sec("section", "C")
	numberSections([]*Element{a, b, c}, "", -1, ranksForTest)
	assert.Equal(t, "1 A", a.Label)
	assert.Equal(t, "2 B", b.Label)
	assert.Equal(t, "3 C", c.Label)
}

func TestNumberSections_NestedScopes(t *testing.T) {
	s1 := sec("section", "One")
	s2 := sec("section", "Two")
	c1 := sec("subsection", "First")
	c2 := sec("subsection", "Second")
	s2.Children = []*Element{c1, c2}

	numberSections([]*Element{s1, s2}, "", -1, ranksForTest)

	assert.Equal(t, "2 Two", s2.Label)
	assert.Equal(t, "2.1 First", c1.Label)
	assert.Equal(t, "2.2 Second", c2.Label)
}

func TestNumberSections_RankGapPadsWithZero(t *testing.T) {
	p1 := sec("part", "Alpha")
	p2 := sec("part", "Beta")
	p3 := sec("part", "Gamma")
	deep := sec("subsection", "Deep")
	p3.Children = []*Element{deep}

	numberSections([]*Element{p1, p2, p3}, "", -1, ranksForTest)

	assert.Equal(t, "3 Gamma", p3.Label)
	assert.Equal(t, "3.0.1 Deep", deep.Label,
		"a rank gap of one level pads with a single 0. segment")
}

func TestNumberSections_StarredShowsAsteriskWithoutCounting(t *testing.T) {
	a := sec("section", "A")
	starred := &Element{Kind: KindSectionStarred, Name: "section", Label: "Unnumbered"}
	b := sec("section", "B")

	numberSections([]*Element{a, starred, b}, "", -1, ranksForTest)

	assert.Equal(t, "1 A", a.Label)
	assert.Equal(t, "* Unnumbered", starred.Label)
	assert.Equal(t, "2 B", b.Label, "starred sections do not consume a counter")
}

func TestNumberSections_UnrankedSectionLeftAlone(t *testing.T) {
	m := sec("mystery", "M")
	numberSections([]*Element{m}, "", -1, ranksForTest)
	assert.Equal(t, "M", m.Label)
}

func TestNumberSections_CountersResetPerScope(t *testing.T) {
	s1 := sec("section", "One")
	s1.Children = []*Element{sec("subsection", "X"), sec("subsection", "Y")}
	s2 := sec("section", "Two")
	s2.Children = []*Element{sec("subsection", "Z")}

	numberSections([]*Element{s1, s2}, "", -1, ranksForTest)

	assert.Equal(t, "1.1 X", s1.Children[0].Label)
	assert.Equal(t, "1.2 Y", s1.Children[1].Label)
	assert.Equal(t, "2.1 Z", s2.Children[0].Label)
}

func TestNumberSections_TopScopeStartsAtItsOwnLowestRank(t *testing.T) {
	// A document with no parts starts numbering at the section rank,
	// without padding.
	s := sec("section", "Solo")
	numberSections([]*Element{s}, "", -1, ranksForTest)
	assert.Equal(t, "1 Solo", s.Label)
}

func TestNumberSections_RecursesThroughNonSections(t *testing.T) {
	inner := sec("section", "Inner")
	frame := env("frame", "Frame")
	frame.Children = []*Element{inner}

	numberSections([]*Element{frame}, "", -1, ranksForTest)
	assert.Equal(t, "1 Inner", inner.Label)
}

func TestInsertFloatNumber(t *testing.T) {
	require.Equal(t, "Figure 4: cap", insertFloatNumber("Figure: cap", 4))
	require.Equal(t, "Frame 2", insertFloatNumber("Frame", 2))
}
