package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codetally/pkg/codebase"
	"github.com/Sumatoshi-tech/codetally/pkg/facet"
)

// ErrValidationFailed is returned when a scan does not pass validation.
var ErrValidationFailed = errors.New("scan validation failed")

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	var (
		known             []string
		colorize, noColor bool
	)

	cmd := &cobra.Command{
		Use:   "validate <scan.json|->",
		Short: "Check a scan against the scan schema and facet set",
		Long: `Validate a scan document against the embedded scan schema, build its
resource tree and check every file facet against the known facet set.

Examples:
  codetally validate scan.json
  codetally validate --known core,tests - < scan.json
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true //nolint:reassign // intentional override of library global
			} else if colorize {
				color.NoColor = false //nolint:reassign // intentional override of library global
			}

			return runValidate(cmd.InOrStdin(), cmd.OutOrStdout(), args[0], known)
		},
	}

	cmd.Flags().StringSliceVar(&known, "known", facet.Known, "known facet names")
	cmd.Flags().BoolVar(&colorize, "color", false, "force colored output")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	return cmd
}

func runValidate(stdin io.Reader, out io.Writer, input string, known []string) error {
	in, label, err := openInput(input, stdin)
	if err != nil {
		return err
	}
	defer in.Close()

	scan, err := codebase.Load(in, codebase.LoadOptions{})
	if err == nil {
		err = facet.Validate(scan.Codebase, known)
	}

	if err != nil {
		color.New(color.FgRed).Fprintf(out, "Scan is invalid (%s)\n", label)
		color.New(color.FgRed).Fprintf(out, "  - %v\n", err)

		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	color.New(color.FgGreen).Fprintf(out, "Scan is valid (%s)\n", label)
	color.New(color.FgCyan).Fprintf(out, "  resources: %d, files: %d\n", scan.Codebase.Len(), len(scan.Codebase.Files()))
	color.New(color.FgCyan).Fprintf(out, "  kinds: %v\n", scan.Kinds)

	return nil
}
