package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/gnolang/tspec/formatter"
	"github.com/gnolang/tspec/specgen"
)

// classesCmd: tspec classes [paths...]
var classesCmd = &cobra.Command{
	Use:   "classes [paths...]",
	Short: "Print the closed class hierarchy",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, args, func(w io.Writer, outs []specgen.Output) error {
			if jsonOutput {
				return formatter.WriteJSON(w, formatter.ClassesByFile(outs))
			}
			_, err := io.WriteString(w, formatter.FormatClasses(outs))
			return err
		})
	},
}
