package structure

import (
	"context"
	"log/slog"
	"testing"

	"github.com/dgallion1/texstruct/internal/texast"
	"github.com/dgallion1/texstruct/internal/texparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memSource serves in-memory documents, parsing on every Get.
type memSource struct {
	files     map[string]string
	pending   map[string]bool
	refreshes int
}

func (s *memSource) Get(path string) (string, *texast.Document, bool) {
	c, ok := s.files[path]
	if !ok {
		return "", nil, false
	}
	return c, texparser.Parse(path, c), true
}

func (s *memSource) HasPending(path string) bool {
	return s.pending[path]
}

func (s *memSource) ForceRefresh(ctx context.Context, path string) error {
	s.refreshes++
	return nil
}

func testConfig() Config {
	return Config{
		Sections:      []string{"part", "chapter", "section", "subsection"},
		Commands:      []string{"label"},
		Environments:  []string{"theorem"},
		Floats:        []string{"figure", "table"},
		ShowCaptions:  true,
		MergeSubFiles: true,
	}
}

func newTestRun(cfg Config, src Source) *run {
	return &run{
		ctx:      context.Background(),
		src:      src,
		cfg:      cfg,
		log:      slog.Default(),
		rootDir:  "/",
		rank:     cfg.sectionRanks(),
		commands: toSet(cfg.Commands),
		envs:     toSet(cfg.Environments),
		floats:   toSet(cfg.Floats),
		cache:    make(map[string][]*Element),
		spliced:  make(map[string]bool),
	}
}

// extractOne extracts a single in-memory file and returns its flat forest.
func extractOne(t *testing.T, cfg Config, content string) []*Element {
	t.Helper()
	src := &memSource{files: map[string]string{"/main.tex": content}}
	r := newTestRun(cfg, src)
	r.extractFile("/main.tex")
	return r.cache["/main.tex"]
}

func TestExtract_SectionKindsAndLabels(t *testing.T) {
	elems := extractOne(t, testConfig(), "\\section{Intro}\n\\section*{Notation}\n\\subsection[Short]{A Much Longer Title}\n")
	require.Len(t, elems, 3)

	assert.Equal(t, KindSection, elems[0].Kind)
	assert.Equal(t, "section", elems[0].Name)
	assert.Equal(t, "Intro", elems[0].Label)

	assert.Equal(t, KindSectionStarred, elems[1].Kind)
	assert.Equal(t, "section", elems[1].Name)
	assert.Equal(t, "Notation", elems[1].Label)

	assert.Equal(t, KindSection, elems[2].Kind)
	assert.Equal(t, "Short", elems[2].Label, "optional short title wins over the main argument")
}

func TestExtract_PositionsMatchSource(t *testing.T) {
	elems := extractOne(t, testConfig(), "% preamble\n\\section{One}\n")
	require.Len(t, elems, 1)
	assert.Equal(t, 11, elems[0].SourceOffset)
	assert.Equal(t, 1, elems[0].LineStart)
	assert.LessOrEqual(t, elems[0].LineStart, elems[0].LineEnd)
	assert.Equal(t, "/main.tex", elems[0].FilePath)
}

func TestExtract_CommandLabel(t *testing.T) {
	elems := extractOne(t, testConfig(), "\\label{sec:intro}\n\\label{}\n")
	require.Len(t, elems, 2)
	assert.Equal(t, KindCommand, elems[0].Kind)
	assert.Equal(t, "#label: sec:intro", elems[0].Label)
	assert.Equal(t, "#label", elems[1].Label, "empty argument adds no suffix")
}

func TestExtract_FloatWithCaption(t *testing.T) {
	elems := extractOne(t, testConfig(), "\\begin{figure}\n\\caption{A plot}\n\\end{figure}\n")
	require.Len(t, elems, 1)
	assert.Equal(t, KindEnvironment, elems[0].Kind)
	assert.Equal(t, "figure", elems[0].Name)
	assert.Equal(t, "Figure: A plot", elems[0].Label)
}

func TestExtract_StarredFloatStripsSuffix(t *testing.T) {
	elems := extractOne(t, testConfig(), "\\begin{table*}\n\\caption{Wide}\n\\end{table*}\n")
	require.Len(t, elems, 1)
	assert.Equal(t, "table", elems[0].Name)
	assert.Equal(t, "Table: Wide", elems[0].Label)
}

func TestExtract_DisabledFloatKindIgnored(t *testing.T) {
	cfg := testConfig()
	cfg.Floats = []string{"figure"}
	elems := extractOne(t, cfg, "\\begin{table}\n\\caption{Skipped}\n\\end{table}\n")
	assert.Empty(t, elems)
}

func TestExtract_CaptionsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.ShowCaptions = false
	elems := extractOne(t, cfg, "\\begin{figure}\\caption{Hidden}\\end{figure}")
	require.Len(t, elems, 1)
	assert.Equal(t, "Figure", elems[0].Label)
}

func TestExtract_FrameCaptionSources(t *testing.T) {
	elems := extractOne(t, testConfig(),
		"\\begin{frame}{Explicit}\nbody\n\\end{frame}\n"+
			"\\begin{frame}\n\\frametitle{From Macro}\nbody\n\\end{frame}\n"+
			"\\begin{frame}\nbody only\n\\end{frame}\n")
	require.Len(t, elems, 3)
	assert.Equal(t, "Frame: Explicit", elems[0].Label)
	assert.Equal(t, "Frame: From Macro", elems[1].Label)
	assert.Equal(t, "Frame", elems[2].Label)
}

func TestExtract_DocumentationBlocks(t *testing.T) {
	elems := extractOne(t, testConfig(), "\\begin{macro}{\\foo}\nbody\n\\end{macro}\n")
	require.Len(t, elems, 1)
	assert.Equal(t, KindEnvironment, elems[0].Kind)
	assert.Equal(t, `Macro: \foo`, elems[0].Label)
}

func TestExtract_ConfiguredEnvironmentNames(t *testing.T) {
	elems := extractOne(t, testConfig(), "\\begin{theorem}\nclaim\n\\end{theorem}\n")
	require.Len(t, elems, 1)
	assert.Equal(t, "Theorem", elems[0].Label)
	assert.Equal(t, "theorem", elems[0].Name)
}

func TestExtract_StructuralElementInsideFloatBecomesChild(t *testing.T) {
	elems := extractOne(t, testConfig(), "\\begin{figure}\n\\label{fig:x}\n\\caption{C}\n\\end{figure}\n")
	require.Len(t, elems, 1)
	require.Len(t, elems[0].Children, 1)
	assert.Equal(t, KindCommand, elems[0].Children[0].Kind)
}

func TestExtract_NonStructuralNodesDoNotBlockDescent(t *testing.T) {
	// A section inside a plain group must still be discovered.
	elems := extractOne(t, testConfig(), "{\\section{Hidden}}")
	require.Len(t, elems, 1)
	assert.Equal(t, "Hidden", elems[0].Label)
}

func TestExtract_MergeOffKeepsRawSubFileLabel(t *testing.T) {
	cfg := testConfig()
	cfg.MergeSubFiles = false
	elems := extractOne(t, cfg, "\\input{chapters/one}\n\\import{extra/}{two.tex}\n")
	require.Len(t, elems, 2)
	assert.Equal(t, KindSubFile, elems[0].Kind)
	assert.Equal(t, "chapters/one", elems[0].Label)
	assert.Equal(t, "two.tex", elems[1].Label)
}

func TestExtract_UnresolvableIncludeDropped(t *testing.T) {
	elems := extractOne(t, testConfig(), "\\input{does/not/exist}\n\\section{After}\n")
	require.Len(t, elems, 1)
	assert.Equal(t, "After", elems[0].Label)
}

func TestExtract_MissingSourceYieldsEmptyForest(t *testing.T) {
	src := &memSource{files: map[string]string{}}
	r := newTestRun(testConfig(), src)
	r.extractFile("/gone.tex")
	forest, ok := r.cache["/gone.tex"]
	assert.True(t, ok, "failed file must still claim its cache slot")
	assert.Empty(t, forest)
	assert.Equal(t, 1, src.refreshes, "a refresh is forced before giving up")
}

func TestExtract_LegacyChildDirectiveMergeOff(t *testing.T) {
	cfg := testConfig()
	cfg.MergeSubFiles = false
	elems := extractOne(t, cfg, "\\section{One}\n% !TEX child = extra/notes.tex\n\\section{Two}\n")
	require.Len(t, elems, 3)
	assert.Equal(t, "One", elems[0].Label)
	assert.Equal(t, KindSubFile, elems[1].Kind)
	assert.Equal(t, "extra/notes.tex", elems[1].Label)
	assert.Equal(t, 1, elems[1].LineStart)
	assert.Equal(t, "Two", elems[2].Label)
}

func TestExtract_VerbatimBodyProducesNoElements(t *testing.T) {
	elems := extractOne(t, testConfig(), "\\begin{verbatim}\n\\section{Fake}\n\\end{verbatim}\n")
	assert.Empty(t, elems)
}
