// Package main provides a tool to derive a new emission factor table version
// from an existing one.
//
// The tool reads a base table (the embedded default unless --base is given),
// applies factor overrides, bumps the version and writes the validated result
// as YAML. Register the output with estimator.factors_files so past estimates
// stay reproducible against the older version.
//
// Usage:
//
//	go run ./tools/new-factor-table [--base file.yaml] [--bump minor] \
//	    --set electricity.grid_average=0.38 --set car_fuel.gasoline=2.3 \
//	    --output factors-1.1.0.yaml
//
// Flags:
//
//	--base         Base factor table YAML (default: embedded table)
//	--bump         Version component to increment: major, minor or patch (default: minor)
//	--version      Explicit version, overrides --bump
//	--description  Description of the new table
//	--source       Citation for the changed factors
//	--set          domain.key=value override, repeatable
//	--output       Output path, - for stdout (default: -)
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/rshade/ecotrack/internal/carbon"
)

// overrides collects repeated --set flags.
type overrides []string

func (o *overrides) String() string { return strings.Join(*o, ",") }

func (o *overrides) Set(v string) error {
	*o = append(*o, v)
	return nil
}

type options struct {
	base        string
	bump        string
	version     string
	description string
	source      string
	sets        overrides
	output      string
}

func main() {
	var opts options
	flag.StringVar(&opts.base, "base", "", "base factor table YAML (default: embedded table)")
	flag.StringVar(&opts.bump, "bump", "minor", "version component to increment: major, minor or patch")
	flag.StringVar(&opts.version, "version", "", "explicit version, overrides --bump")
	flag.StringVar(&opts.description, "description", "", "description of the new table")
	flag.StringVar(&opts.source, "source", "", "citation for the changed factors")
	flag.Var(&opts.sets, "set", "domain.key=value override, repeatable")
	flag.StringVar(&opts.output, "output", "-", "output path, - for stdout")
	flag.Parse()

	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, stdout io.Writer) error {
	base := carbon.DefaultFactorTable()
	if opts.base != "" {
		t, err := carbon.LoadFactorTableFile(opts.base)
		if err != nil {
			return err
		}
		base = t
	}

	spec, err := derive(base.Spec(), opts)
	if err != nil {
		return err
	}

	// Validates the derived table before anything is written.
	table, err := carbon.NewFactorTable(spec)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(table.Spec())
	if err != nil {
		return fmt.Errorf("encode factor table: %w", err)
	}

	if opts.output == "-" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote factor table %s to %s\n", table.Version(), opts.output)
	return nil
}

// derive applies the version bump, metadata and overrides of opts to spec.
func derive(spec carbon.FactorTableSpec, opts options) (carbon.FactorTableSpec, error) {
	next, err := nextVersion(spec.Version, opts.version, opts.bump)
	if err != nil {
		return spec, err
	}
	spec.Version = next

	if opts.description != "" {
		spec.Description = opts.description
	}
	if opts.source != "" {
		spec.Source = opts.source
	}

	for _, set := range opts.sets {
		domain, key, value, err := parseOverride(set)
		if err != nil {
			return spec, err
		}
		factors, ok := spec.Factors[domain]
		if !ok {
			return spec, fmt.Errorf("--set %s: unknown domain %q", set, domain)
		}
		if _, ok := factors[key]; !ok {
			return spec, fmt.Errorf("--set %s: unknown factor %s.%s", set, domain, key)
		}
		factors[key] = value
	}
	return spec, nil
}

func nextVersion(current, explicit, bump string) (string, error) {
	if explicit != "" {
		v, err := semver.NewVersion(explicit)
		if err != nil {
			return "", fmt.Errorf("--version %q: %w", explicit, err)
		}
		return v.String(), nil
	}

	v, err := semver.NewVersion(current)
	if err != nil {
		return "", fmt.Errorf("base version %q: %w", current, err)
	}
	var next semver.Version
	switch bump {
	case "major":
		next = v.IncMajor()
	case "minor":
		next = v.IncMinor()
	case "patch":
		next = v.IncPatch()
	default:
		return "", fmt.Errorf("--bump %q: use major, minor or patch", bump)
	}
	return next.String(), nil
}

// parseOverride splits "domain.key=value".
func parseOverride(s string) (carbon.Domain, string, float64, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok {
		return "", "", 0, fmt.Errorf("--set %q: want domain.key=value", s)
	}
	domain, key, ok := strings.Cut(strings.TrimSpace(name), ".")
	if !ok || domain == "" || key == "" {
		return "", "", 0, fmt.Errorf("--set %q: want domain.key=value", s)
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", "", 0, fmt.Errorf("--set %q: %w", s, err)
	}
	return carbon.Domain(domain), key, value, nil
}
