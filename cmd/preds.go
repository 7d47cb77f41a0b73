package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/gnolang/tspec/formatter"
	"github.com/gnolang/tspec/specgen"
)

// predsCmd: tspec preds [paths...]
var predsCmd = &cobra.Command{
	Use:   "preds [paths...]",
	Short: "Print only the predicate declarations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, args, func(w io.Writer, outs []specgen.Output) error {
			if jsonOutput {
				return formatter.WriteJSON(w, formatter.PredicatesByFile(outs))
			}
			for _, out := range outs {
				if _, err := io.WriteString(w, formatter.FormatPredicates(out.Predicates)); err != nil {
					return err
				}
			}
			return nil
		})
	},
}
