package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/ecotrack/internal/carbon"
	"github.com/rshade/ecotrack/internal/greenops"
	"github.com/rshade/ecotrack/internal/service"
)

// tabPadding is the minimum column padding for tabwriter output.
const tabPadding = 2

type estimateFlags struct {
	input         string
	format        string
	convention    string
	factors       []string
	factorVersion string
	locale        string
}

func newEstimateCmd(root *rootOptions) *cobra.Command {
	var flags estimateFlags

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the footprint of a lifestyle profile",
		Long: `Estimate reads a lifestyle profile (YAML or JSON) and prints the monthly
footprint per category, recommendations, a yearly projection and everyday
equivalencies.`,
		Example: `  # Table output
  ecotrack estimate --input profile.yaml

  # Read JSON from stdin
  cat profile.json | ecotrack estimate --input - --format json

  # Use an additional factor table
  ecotrack estimate --input profile.yaml --factors factors-2.0.0.yaml --factor-version 2.0.0`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEstimate(cmd, root, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "lifestyle profile file, or - for stdin")
	cmd.Flags().StringVarP(&flags.format, "format", "o", FormatTable, "output format: table or json")
	cmd.Flags().StringVar(&flags.convention, "convention", "", "period convention: monthly or reference (default from config)")
	cmd.Flags().StringSliceVar(&flags.factors, "factors", nil, "additional factor table YAML files")
	cmd.Flags().StringVar(&flags.factorVersion, "factor-version", "", "factor table version to use")
	cmd.Flags().StringVar(&flags.locale, "locale", "en", "locale for formatted numbers")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runEstimate(cmd *cobra.Command, root *rootOptions, flags estimateFlags) error {
	if flags.format != FormatTable && flags.format != FormatJSON {
		return fmt.Errorf("unsupported format %q: use %s or %s", flags.format, FormatTable, FormatJSON)
	}

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if flags.convention != "" {
		cfg.Estimator.Convention = flags.convention
	}
	cfg.Estimator.FactorsFiles = append(cfg.Estimator.FactorsFiles, flags.factors...)
	if flags.factorVersion != "" {
		cfg.Estimator.FactorVersion = flags.factorVersion
	}
	if _, ok := carbon.ParsePeriodConvention(cfg.Estimator.Convention); !ok {
		return fmt.Errorf("unknown convention %q", cfg.Estimator.Convention)
	}

	in, err := readProfile(flags.input, cmd.InOrStdin())
	if err != nil {
		return err
	}

	formatter := greenops.NewFormatterForLocale(flags.locale)
	svc, err := newService(cfg, serviceDeps{formatter: formatter, logger: root.logger})
	if err != nil {
		return err
	}

	res, err := svc.Estimate(cmd.Context(), service.Request{Input: in})
	if err != nil {
		return err
	}

	if flags.format == FormatJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return renderEstimate(cmd.OutOrStdout(), res, formatter)
}

// readProfile decodes a lifestyle profile. Files ending in .json are read
// as JSON; everything else, stdin included, as YAML. Unknown fields are
// rejected in both.
func readProfile(path string, stdin io.Reader) (carbon.LifestyleInput, error) {
	var in carbon.LifestyleInput

	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return in, fmt.Errorf("open profile: %w", err)
		}
		defer f.Close()
		r = f
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&in); err != nil {
			return in, fmt.Errorf("decode profile %s: %w", path, err)
		}
		return in, nil
	}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		return in, fmt.Errorf("decode profile %s: %w", path, err)
	}
	return in, nil
}

// renderEstimate writes res as a human-readable report.
func renderEstimate(w io.Writer, res service.Result, f *greenops.Formatter) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)

	fmt.Fprintln(tw, "CATEGORY\tKG CO2E/MONTH\tSHARE")
	for _, c := range carbon.Categories() {
		share := 0.0
		if res.Breakdown.Total > 0 {
			share = res.Breakdown.Category(c) / res.Breakdown.Total * 100
		}
		fmt.Fprintf(tw, "%s\t%s\t%s%%\n", c, f.FormatFloat(res.Display.Category(c), carbon.DisplayPrecision), f.FormatFloat(share, 1))
	}
	fmt.Fprintf(tw, "total\t%s\t\n", f.FormatFloat(res.Display.Total, carbon.DisplayPrecision))
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nFactor table %s, %s convention\n", res.FactorVersion, res.Breakdown.Convention)

	if len(res.Recommendations) > 0 {
		fmt.Fprintln(w, "\nRecommendations:")
		for _, rec := range res.Recommendations {
			fmt.Fprintf(w, "  - %s: %s (up to %s%% reduction)\n",
				rec.Category, rec.SuggestedAction, f.FormatFloat(rec.EstimatedImpactPercent, 0))
		}
	}

	p := res.Projection
	fmt.Fprintf(w, "\nYearly projection: %s kg CO2e (target %s kg)\n",
		f.FormatFloat(p.YearlyKg, carbon.DisplayPrecision), f.FormatFloat(p.TargetYearlyKg, carbon.DisplayPrecision))

	c := res.Comparison
	if c.BelowGlobalAverage {
		fmt.Fprintf(w, "%s%% below the global average of %s kg/month\n",
			f.FormatFloat(c.PercentBelowGlobal, 1), f.FormatFloat(c.GlobalAverageKg, 0))
	} else {
		fmt.Fprintf(w, "%s%% above the global average of %s kg/month\n",
			f.FormatFloat(-c.PercentBelowGlobal, 1), f.FormatFloat(c.GlobalAverageKg, 0))
	}

	if !res.Equivalencies.IsEmpty {
		fmt.Fprintln(w, res.Equivalencies.DisplayText)
	}
	return nil
}
