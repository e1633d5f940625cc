package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"tankobon/internal/epubnav"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <volume artifacts...>",
		Short: "Report the chapter range inside finished volume artifacts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := absolutePaths(args)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(paths))
			for _, path := range paths {
				r, err := epubnav.ChapterRange(path)
				switch {
				case errors.Is(err, epubnav.ErrRangeUnavailable):
					rows = append(rows, []string{filepath.Base(path), "(no chapter metadata)"})
				case err != nil:
					return fmt.Errorf("inspect %s: %w", filepath.Base(path), err)
				case r.Min == r.Max:
					rows = append(rows, []string{filepath.Base(path), fmt.Sprintf("[%s]", r.Min)})
				default:
					rows = append(rows, []string{filepath.Base(path), fmt.Sprintf("[%s-%s]", r.Min, r.Max)})
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Artifact", "Chapters"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}
