package texast

// Pos is a location in a source file. Line and Column are zero-based.
type Pos struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range spans from Start (inclusive) to End (exclusive).
type Range struct {
	Start Pos `json:"start"`
	End   Pos `json:"end"`
}

// Node is the closed set of TeX AST variants. Every consumer dispatches with a
// type switch; adding a variant means visiting every switch.
type Node interface {
	Range() Range
	node()
}

// Document is the parsed form of one file.
type Document struct {
	FilePath string
	Content  []Node
}

// Arg is one argument group attached to a macro or environment.
// Optional args were delimited by [], mandatory args by {}.
type Arg struct {
	Rng      Range
	Optional bool
	Content  []Node
}

// Text is a run of ordinary characters with no embedded whitespace.
type Text struct {
	Rng   Range
	Value string
}

// Whitespace is a run of spaces, tabs and at most one newline.
type Whitespace struct {
	Rng Range
}

// ParBreak is a blank-line paragraph separator.
type ParBreak struct {
	Rng Range
}

// Comment is a % comment running to end of line, excluding the newline.
type Comment struct {
	Rng   Range
	Value string
}

// Group is a braced group that is not a macro argument.
type Group struct {
	Rng     Range
	Content []Node
}

// Macro is a control sequence with its argument groups.
type Macro struct {
	Rng     Range
	Name    string
	Starred bool
	Args    []Arg
}

// Environment is a \begin{name}...\end{name} block with parsed content.
type Environment struct {
	Rng     Range
	Name    string
	Args    []Arg
	Content []Node
}

// MathEnv is a math environment whose body is kept raw.
type MathEnv struct {
	Rng  Range
	Name string
	Raw  string
}

// VerbatimEnv is a verbatim-like environment whose body is kept raw.
type VerbatimEnv struct {
	Rng  Range
	Name string
	Raw  string
}

// InlineMath is $...$ with parsed content.
type InlineMath struct {
	Rng     Range
	Content []Node
}

// DisplayMath is \[...\] or $$...$$ with parsed content.
type DisplayMath struct {
	Rng     Range
	Content []Node
}

// Verbatim is the argument of \verb, kept raw.
type Verbatim struct {
	Rng   Range
	Value string
}

func (n *Text) Range() Range        { return n.Rng }
func (n *Whitespace) Range() Range  { return n.Rng }
func (n *ParBreak) Range() Range    { return n.Rng }
func (n *Comment) Range() Range     { return n.Rng }
func (n *Group) Range() Range       { return n.Rng }
func (n *Macro) Range() Range       { return n.Rng }
func (n *Environment) Range() Range { return n.Rng }
func (n *MathEnv) Range() Range     { return n.Rng }
func (n *VerbatimEnv) Range() Range { return n.Rng }
func (n *InlineMath) Range() Range  { return n.Rng }
func (n *DisplayMath) Range() Range { return n.Rng }
func (n *Verbatim) Range() Range    { return n.Rng }

func (*Text) node()        {}
func (*Whitespace) node()  {}
func (*ParBreak) node()    {}
func (*Comment) node()     {}
func (*Group) node()       {}
func (*Macro) node()       {}
func (*Environment) node() {}
func (*MathEnv) node()     {}
func (*VerbatimEnv) node() {}
func (*InlineMath) node()  {}
func (*DisplayMath) node() {}
func (*Verbatim) node()    {}

// FirstArg returns the first argument matching the optional flag, or nil.
func FirstArg(args []Arg, optional bool) *Arg {
	for i := range args {
		if args[i].Optional == optional {
			return &args[i]
		}
	}
	return nil
}
