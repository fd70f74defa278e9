package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docreport/internal/doctree"
	"github.com/dgallion1/docreport/internal/outline"
	"github.com/dgallion1/docreport/internal/parser"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runInspect(cmd *cobra.Command, opts *options, args []string) error {
	cfg, log, err := setup(cmd, opts)
	if err != nil {
		return err
	}
	defer log.Sync()

	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		tmpl := outline.Default()
		if cfg.Template != "" {
			if tmpl, err = outline.Load(cfg.Template); err != nil {
				return err
			}
		}
		path = cfg.OutputPath(tmpl.Output)
	}

	paras, err := parser.ParseFile(path)
	if err != nil {
		return err
	}
	log.Debug("parsed document", zap.String("path", path), zap.Int("paragraphs", len(paras)))

	printOutline(cmd.OutOrStdout(), parser.BuildOutline(paras))
	return nil
}

func printOutline(w io.Writer, tree *doctree.Outline) {
	if tree.Title != "" {
		fmt.Fprintln(w, tree.Title)
	}
	for _, s := range tree.Children {
		printSection(w, s, 1)
	}
}

func printSection(w io.Writer, s *doctree.Section, depth int) {
	var counts []string
	if s.Paragraphs > 0 {
		counts = append(counts, plural(s.Paragraphs, "paragraph"))
	}
	if s.Images > 0 {
		counts = append(counts, plural(s.Images, "image"))
	}
	line := strings.Repeat("  ", depth) + s.Title
	if len(counts) > 0 {
		line += " (" + strings.Join(counts, ", ") + ")"
	}
	fmt.Fprintln(w, line)
	for _, c := range s.Children {
		printSection(w, c, depth+1)
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
