// Команда screenplayfmt форматирует сценарий локально теми же правилами, что и POST /api/screenplay/format.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aryann/difflib"
	"github.com/spf13/cobra"

	"cinema-server/internal/screenplay"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		width    int
		showDiff bool
		inPlace  bool
	)

	cmd := &cobra.Command{
		Use:   "screenplayfmt [file]",
		Short: "Format a screenplay",
		Long:  "Formats a screenplay read from a file or stdin. Without a file the result goes to stdout.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				src []byte
				err error
			)
			if len(args) == 1 {
				src, err = os.ReadFile(args[0])
			} else {
				if inPlace {
					return fmt.Errorf("--write requires a file argument")
				}
				src, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}

			formatted := screenplay.Format(string(src), width)

			switch {
			case showDiff:
				writeDiff(cmd.OutOrStdout(), string(src), formatted)
			case inPlace:
				if err := os.WriteFile(args[0], []byte(formatted), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", args[0], err)
				}
			default:
				fmt.Fprint(cmd.OutOrStdout(), formatted)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&width, "width", "w", screenplay.DefaultLineWidth, "line width in characters")
	cmd.Flags().BoolVarP(&showDiff, "diff", "d", false, "print a line diff instead of the formatted text")
	cmd.Flags().BoolVar(&inPlace, "write", false, "overwrite the input file")
	return cmd
}

// writeDiff печатает только измененные строки в стиле unified diff без заголовков.
func writeDiff(w io.Writer, before, after string) {
	for _, rec := range difflib.Diff(strings.Split(before, "\n"), strings.Split(after, "\n")) {
		switch rec.Delta {
		case difflib.LeftOnly:
			fmt.Fprintf(w, "-%s\n", rec.Payload)
		case difflib.RightOnly:
			fmt.Fprintf(w, "+%s\n", rec.Payload)
		}
	}
}
