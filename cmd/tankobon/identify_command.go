package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"tankobon/internal/chapter"
)

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	var integersOnly bool

	cmd := &cobra.Command{
		Use:   "identify <file names...>",
		Short: "Show the chapter number parsed from each file name",
		Long: `Identify runs the chapter-number parser against each given file name
without touching the files, so a library's naming can be checked before
packing. Files whose names yield no number would be skipped by pack.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extractor := chapter.Extractor{IntegersOnly: integersOnly}
			if !integersOnly {
				if cfg, err := ctx.ensureConfig(); err == nil {
					extractor.IntegersOnly = cfg.Packing.IntegerChapters
				}
			}

			rows := make([][]string, 0, len(args))
			unparseable := 0
			for _, arg := range args {
				name := filepath.Base(arg)
				number, err := extractor.Extract(name)
				if err != nil {
					rows = append(rows, []string{name, "(unparseable)"})
					unparseable++
					continue
				}
				rows = append(rows, []string{name, number.String()})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"File", "Chapter"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			if unparseable > 0 {
				fmt.Fprintf(out, "%d file(s) would be skipped by pack\n", unparseable)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&integersOnly, "integer", false, "Restrict parsing to whole chapter numbers")
	return cmd
}
