// Package structure builds a navigable outline for a TeX project: per-file
// extraction of structural elements, recursive sub-file resolution, nesting
// passes and numbering.
package structure

import "strings"

// Kind classifies a structural element.
type Kind int

const (
	KindSection Kind = iota
	KindSectionStarred
	KindEnvironment
	KindCommand
	KindSubFile
)

func (k Kind) String() string {
	switch k {
	case KindSection:
		return "section"
	case KindSectionStarred:
		return "section*"
	case KindEnvironment:
		return "environment"
	case KindCommand:
		return "command"
	case KindSubFile:
		return "subfile"
	}
	return "unknown"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Element is one node of the outline. Children are owned exclusively by their
// parent and always kept in document order; across merged sub-files the order
// follows the position of the inclusion directive.
type Element struct {
	Kind         Kind       `json:"kind"`
	Name         string     `json:"name"`
	Label        string     `json:"label"`
	SourceOffset int        `json:"source_offset"`
	LineStart    int        `json:"line_start"`
	LineEnd      int        `json:"line_end"`
	FilePath     string     `json:"file_path"`
	Children     []*Element `json:"children,omitempty"`
}

func (e *Element) isSection() bool {
	return e.Kind == KindSection || e.Kind == KindSectionStarred
}

// Config is the immutable per-run configuration snapshot. The pipeline never
// mutates it; a copy is taken per construction run.
type Config struct {
	// Sections lists section macro names by depth rank, outermost first.
	// Names sharing a rank are joined with "|", e.g. "part|chapter".
	Sections []string

	// Commands and Environments are extra macro/environment names surfaced
	// as outline elements.
	Commands     []string
	Environments []string

	// Floats enables captioned float environments by base name (star-suffixed
	// variants follow their base).
	Floats []string

	ShowCaptions   bool
	NumberSections bool
	NumberFloats   bool

	// SearchDirs are consulted, in order, to resolve relative inclusion paths.
	SearchDirs []string

	// MergeSubFiles controls whether inclusion directives are resolved and
	// their element forests spliced into the parent tree.
	MergeSubFiles bool
}

// rankFunc resolves a name to its section depth rank.
type rankFunc func(name string) (int, bool)

// sectionRanks builds the rank lookup from the ordered rank groups. A star
// suffix never affects the rank of a name.
func (c Config) sectionRanks() rankFunc {
	ranks := make(map[string]int)
	for rank, group := range c.Sections {
		for _, name := range strings.Split(group, "|") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, taken := ranks[name]; !taken {
				ranks[name] = rank
			}
		}
	}
	return func(name string) (int, bool) {
		r, ok := ranks[strings.TrimSuffix(name, "*")]
		return r, ok
	}
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
