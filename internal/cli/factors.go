package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newFactorsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "factors",
		Short: "Inspect emission factor tables",
	}
	cmd.AddCommand(newFactorsListCmd(root), newFactorsShowCmd(root))
	return cmd
}

func newFactorsListCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered factor table versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			reg, err := cfg.Estimator.Registry()
			if err != nil {
				return err
			}
			def, err := reg.Get(cfg.Estimator.FactorVersion)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, tabPadding, ' ', 0)
			fmt.Fprintln(tw, "VERSION\tDEFAULT\tDESCRIPTION")
			for _, v := range reg.Versions() {
				t, _ := reg.Get(v)
				marker := ""
				if t == def {
					marker = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", v, marker, t.Description())
			}
			return tw.Flush()
		},
	}
}

func newFactorsShowCmd(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show [version]",
		Short: "Print a factor table",
		Long:  "Show prints the factor table with the given version, or the default table.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			reg, err := cfg.Estimator.Registry()
			if err != nil {
				return err
			}

			version := cfg.Estimator.FactorVersion
			if len(args) == 1 {
				version = args[0]
			}
			table, err := reg.Get(version)
			if err != nil {
				return err
			}

			switch format {
			case FormatYAML:
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(table.Spec()); err != nil {
					return err
				}
				return enc.Close()
			case FormatJSON:
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(table.Spec())
			default:
				return fmt.Errorf("unsupported format %q: use %s or %s", format, FormatYAML, FormatJSON)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", FormatYAML, "output format: yaml or json")
	return cmd
}
