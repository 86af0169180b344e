package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rshade/ecotrack/internal/greenops"
)

func newEquivalentsCmd() *cobra.Command {
	var (
		unit   string
		format string
		locale string
	)

	cmd := &cobra.Command{
		Use:   "equivalents AMOUNT",
		Short: "Express a carbon amount as everyday equivalents",
		Long: `Equivalents converts an amount of CO2e into miles driven, smartphones
charged, tree seedlings grown and days of home electricity.`,
		Example: `  # 150 kg CO2e
  ecotrack equivalents 150

  # Two tonnes, formatted for German readers
  ecotrack equivalents 2 --unit t --locale de`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != FormatTable && format != FormatJSON {
				return fmt.Errorf("unsupported format %q: use %s or %s", format, FormatTable, FormatJSON)
			}
			if !greenops.IsRecognizedUnit(unit) {
				return fmt.Errorf("--unit: %w: %q (use g, kg, t or lb)", greenops.ErrInvalidUnit, unit)
			}
			amount, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("amount %q is not a number", args[0])
			}

			f := greenops.NewFormatterForLocale(locale)
			out, err := f.Calculate(greenops.CarbonInput{Value: amount, Unit: unit})
			if err != nil {
				return err
			}

			if format == FormatJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			return renderEquivalents(cmd.OutOrStdout(), out, f)
		},
	}

	cmd.Flags().StringVar(&unit, "unit", "kg", "unit of AMOUNT: g, kg, t or lb")
	cmd.Flags().StringVarP(&format, "format", "o", FormatTable, "output format: table or json")
	cmd.Flags().StringVar(&locale, "locale", "en", "locale for formatted numbers")
	return cmd
}

func renderEquivalents(w io.Writer, out greenops.EquivalencyOutput, f *greenops.Formatter) error {
	if out.IsEmpty {
		_, err := fmt.Fprintf(w, "%s kg CO2e is too small for meaningful equivalents\n", f.FormatFloat(out.InputKg, 3))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw, "EQUIVALENT\tAMOUNT")
	for _, r := range out.Results {
		fmt.Fprintf(tw, "%s\t%s\n", r.Label, r.FormattedValue)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s kg CO2e. %s\n", f.FormatFloat(out.InputKg, 1), out.DisplayText)
	return err
}
