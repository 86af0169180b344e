package carbon

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// Domain groups related emission factors in a FactorTable.
type Domain string

const (
	// DomainCarFuel holds kg CO2e per liter for combustion fuels and per km for "electric".
	DomainCarFuel Domain = "car_fuel"

	// DomainTransport holds per-km factors for public transport (per passenger-km) and motorcycles.
	DomainTransport Domain = "transport"

	// DomainFlight holds per passenger-km factors by haul length.
	DomainFlight Domain = "flight"

	// DomainElectricity holds per-kWh factors for grid and renewable supply.
	DomainElectricity Domain = "electricity"

	// DomainHeating holds per-unit factors by heating source.
	DomainHeating Domain = "heating"

	// DomainFood holds per-kg factors by food category.
	DomainFood Domain = "food"

	// DomainWaste holds per-kg factors by disposal route. Recycling and
	// compost are credits and must not be positive.
	DomainWaste Domain = "waste"
)

// Factor keys outside the enum-derived ones.
const (
	KeyPublicTransport = "public_transport"
	KeyMotorcycle      = "motorcycle"
	KeyGridAverage     = "grid_average"
	KeyRenewable       = "renewable"
	KeyBeef            = "beef"
	KeyDairy           = "dairy"
	KeyVegetables      = "vegetables"
	KeyProcessed       = "processed"
	KeyGeneralWaste    = "general"
	KeyRecycling       = "recycling"
	KeyCompost         = "compost"
)

// DefaultFactorVersion is the version tag of the embedded reference table.
const DefaultFactorVersion = "1.0.0"

//go:embed data/factors/1.0.0.yaml
var defaultFactorsYAML []byte

// FactorTableSpec is the serialized form of a factor table.
type FactorTableSpec struct {
	// Version is a semantic version tag, e.g. "1.0.0".
	Version string `yaml:"version" json:"version"`

	Description string `yaml:"description" json:"description"`

	// Source cites where the factors come from.
	Source string `yaml:"source" json:"source"`

	Factors map[Domain]map[string]float64 `yaml:"factors" json:"factors"`
}

// FactorTable is an immutable, versioned set of emission factors. It is
// safe for concurrent use.
type FactorTable struct {
	version     *semver.Version
	description string
	source      string
	factors     map[Domain]map[string]float64
}

// requiredFactors lists every (domain, key) the estimator reads.
func requiredFactors() map[Domain][]string {
	required := map[Domain][]string{
		DomainTransport:   {KeyPublicTransport, KeyMotorcycle},
		DomainElectricity: {KeyGridAverage, KeyRenewable},
		DomainFood:        {KeyBeef, KeyDairy, KeyVegetables, KeyProcessed},
		DomainWaste:       {KeyGeneralWaste, KeyRecycling, KeyCompost},
	}
	for _, name := range fuelTypeNames {
		required[DomainCarFuel] = append(required[DomainCarFuel], name)
	}
	for _, name := range flightTypeNames {
		required[DomainFlight] = append(required[DomainFlight], name)
	}
	for _, name := range heatingTypeNames {
		required[DomainHeating] = append(required[DomainHeating], name)
	}
	return required
}

// isCredit reports whether the factor represents avoided emissions.
func isCredit(domain Domain, key string) bool {
	return domain == DomainWaste && (key == KeyRecycling || key == KeyCompost)
}

// NewFactorTable validates spec and builds an immutable table from a copy of it.
//
// Every factor the estimator reads must be present and finite. Factors are
// non-negative, except the waste recycling and compost credits which must be
// zero or negative.
func NewFactorTable(spec FactorTableSpec) (*FactorTable, error) {
	version, err := semver.NewVersion(spec.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: version %q: %v", ErrInvalidFactorTable, spec.Version, err)
	}

	factors := make(map[Domain]map[string]float64, len(spec.Factors))
	for domain, entries := range spec.Factors {
		copied := make(map[string]float64, len(entries))
		for key, value := range entries {
			if math.IsNaN(value) || math.IsInf(value, 0) {
				return nil, fmt.Errorf("%w: %s.%s is not finite", ErrInvalidFactorTable, domain, key)
			}
			if isCredit(domain, key) {
				if value > 0 {
					return nil, fmt.Errorf("%w: credit %s.%s must be <= 0, got %g",
						ErrInvalidFactorTable, domain, key, value)
				}
			} else if value < 0 {
				return nil, fmt.Errorf("%w: %s.%s must be >= 0, got %g",
					ErrInvalidFactorTable, domain, key, value)
			}
			copied[key] = value
		}
		factors[domain] = copied
	}

	for domain, keys := range requiredFactors() {
		for _, key := range keys {
			if _, ok := factors[domain][key]; !ok {
				return nil, fmt.Errorf("%w: missing factor %s.%s", ErrInvalidFactorTable, domain, key)
			}
		}
	}

	return &FactorTable{
		version:     version,
		description: spec.Description,
		source:      spec.Source,
		factors:     factors,
	}, nil
}

// ParseFactorTable decodes a YAML factor table document. Unknown top-level
// fields are rejected.
func ParseFactorTable(r io.Reader) (*FactorTable, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var spec FactorTableSpec
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("decode factor table: %w", err)
	}
	return NewFactorTable(spec)
}

// LoadFactorTableFile reads a YAML factor table from path.
func LoadFactorTableFile(path string) (*FactorTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open factor table: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.Warn().Err(cerr).Str("path", path).Msg("failed to close factor table file")
		}
	}()

	table, err := ParseFactorTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug().
		Str("path", path).
		Str("version", table.Version()).
		Msg("loaded emission factor table")
	return table, nil
}

var (
	defaultTable     *FactorTable
	defaultTableOnce sync.Once
)

// DefaultFactorTable returns the embedded reference table (version 1.0.0).
// It panics if the embedded data is invalid, which the package tests rule out.
func DefaultFactorTable() *FactorTable {
	defaultTableOnce.Do(func() {
		table, err := ParseFactorTable(bytes.NewReader(defaultFactorsYAML))
		if err != nil {
			logger.Error().Err(err).Msg("embedded emission factor table is invalid")
			panic(err)
		}
		defaultTable = table
	})
	return defaultTable
}

// Version returns the table's version tag in canonical form.
func (t *FactorTable) Version() string {
	return t.version.String()
}

// Description returns the human-readable table description.
func (t *FactorTable) Description() string {
	return t.description
}

// Lookup returns the factor for (domain, key).
func (t *FactorTable) Lookup(domain Domain, key string) (float64, bool) {
	v, ok := t.factors[domain][key]
	return v, ok
}

// Spec returns a deep copy of the table in its serialized form.
func (t *FactorTable) Spec() FactorTableSpec {
	factors := make(map[Domain]map[string]float64, len(t.factors))
	for domain, entries := range t.factors {
		copied := make(map[string]float64, len(entries))
		for k, v := range entries {
			copied[k] = v
		}
		factors[domain] = copied
	}
	return FactorTableSpec{
		Version:     t.Version(),
		Description: t.description,
		Source:      t.source,
		Factors:     factors,
	}
}

// factor is Lookup for the estimator; a miss is an invariant violation.
func (t *FactorTable) factor(domain Domain, key string) (float64, error) {
	v, ok := t.Lookup(domain, key)
	if !ok {
		return 0, &ComputationError{
			Op:     "factor lookup",
			Detail: fmt.Sprintf("table %s has no factor %s.%s", t.Version(), domain, key),
		}
	}
	return v, nil
}

// Registry holds factor tables by version so past estimates stay
// reproducible after factors change. It is immutable and safe for
// concurrent use.
type Registry struct {
	tables map[string]*FactorTable
	latest *FactorTable
}

// NewRegistry builds a registry from tables. Duplicate versions are an error.
func NewRegistry(tables ...*FactorTable) (*Registry, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: registry needs at least one table", ErrInvalidFactorTable)
	}
	r := &Registry{tables: make(map[string]*FactorTable, len(tables))}
	for _, t := range tables {
		if _, dup := r.tables[t.Version()]; dup {
			return nil, fmt.Errorf("%w: duplicate version %s", ErrInvalidFactorTable, t.Version())
		}
		r.tables[t.Version()] = t
		if r.latest == nil || t.version.GreaterThan(r.latest.version) {
			r.latest = t
		}
	}
	return r, nil
}

// DefaultRegistry returns a registry holding only the embedded table.
func DefaultRegistry() *Registry {
	r, _ := NewRegistry(DefaultFactorTable())
	return r
}

// Get returns the table for version. An empty version selects Latest.
func (r *Registry) Get(version string) (*FactorTable, error) {
	if version == "" {
		return r.latest, nil
	}
	if t, ok := r.tables[version]; ok {
		return t, nil
	}
	// Accept non-canonical spellings such as "v1.0".
	if v, err := semver.NewVersion(version); err == nil {
		if t, ok := r.tables[v.String()]; ok {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFactorVersion, version)
}

// Latest returns the table with the highest version.
func (r *Registry) Latest() *FactorTable {
	return r.latest
}

// Versions returns all version tags in ascending semver order.
func (r *Registry) Versions() []string {
	tables := make([]*FactorTable, 0, len(r.tables))
	for _, t := range r.tables {
		tables = append(tables, t)
	}
	sort.Slice(tables, func(i, j int) bool {
		return tables[i].version.LessThan(tables[j].version)
	})
	versions := make([]string, len(tables))
	for i, t := range tables {
		versions[i] = t.Version()
	}
	return versions
}
