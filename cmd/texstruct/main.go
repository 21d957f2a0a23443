package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgallion1/texstruct/internal/config"
	"github.com/dgallion1/texstruct/internal/source"
	"github.com/dgallion1/texstruct/internal/structure"
	"github.com/spf13/cobra"
)

var (
	flagNoMerge bool
	flagJSON    bool
	flagWarm    bool
)

var rootCmd = &cobra.Command{
	Use:   "texstruct",
	Short: "Document structure outlines for TeX projects",
	Long: `texstruct builds a navigable outline (sections, floats, commands and
sub-file inclusions) for a multi-file TeX project, or for a Markdown file.`,
}

var outlineCmd = &cobra.Command{
	Use:   "outline <root-file>",
	Short: "Print the outline for a root file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		root, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		store := source.NewStore(log)
		if flagWarm {
			store.WarmUp(cmd.Context(), source.TeXFilesUnder(filepath.Dir(root)), 8)
		}

		scfg := cfg.Structure.StructureConfig()
		scfg.MergeSubFiles = !flagNoMerge

		outline, err := structure.NewBuilder(store, log).Construct(cmd.Context(), root, scfg)
		if err != nil {
			return err
		}

		if flagJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(outline)
		}
		printTree(outline, 0)
		return nil
	},
}

var (
	labelStyle = lipgloss.NewStyle().Bold(true)
	kindStyle  = lipgloss.NewStyle().Faint(true)
)

func printTree(elems []*structure.Element, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, el := range elems {
		fmt.Printf("%s%s %s\n",
			indent,
			labelStyle.Render(el.Label),
			kindStyle.Render(fmt.Sprintf("[%s:%d]", el.Kind, el.LineStart+1)),
		)
		printTree(el.Children, depth+1)
	}
}

func init() {
	outlineCmd.Flags().BoolVar(&flagNoMerge, "no-merge", false, "Keep inclusion directives as unexpanded leaves")
	outlineCmd.Flags().BoolVar(&flagJSON, "json", false, "Emit the outline as JSON")
	outlineCmd.Flags().BoolVar(&flagWarm, "warm", false, "Preload all .tex files under the root's directory")
	rootCmd.AddCommand(outlineCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
