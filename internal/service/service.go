// Package service runs the estimate workflow: validate, estimate, recommend,
// derive projections, persist and publish.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/ecotrack/internal/carbon"
	"github.com/rshade/ecotrack/internal/events"
	"github.com/rshade/ecotrack/internal/greenops"
	"github.com/rshade/ecotrack/internal/logging"
	"github.com/rshade/ecotrack/internal/store"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

const (
	// ErrBatchTooLarge is returned when a batch exceeds the configured limit.
	ErrBatchTooLarge = constError("batch too large")

	// ErrEmptyBatch is returned for a batch without inputs.
	ErrEmptyBatch = constError("batch has no inputs")

	// ErrUserRequired is returned by History without a user ID.
	ErrUserRequired = constError("user id required")

	// ErrHistoryUnavailable is returned by History when no store is configured.
	ErrHistoryUnavailable = constError("estimate history is not configured")
)

// Default limits used when Options leaves them zero.
const (
	DefaultMaxBatchSize     = 100
	DefaultBatchConcurrency = 8
	DefaultHistoryLimit     = 50
)

// BatchError reports which batch input failed.
type BatchError struct {
	Index int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("inputs[%d]: %v", e.Index, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Request is one estimate request.
type Request struct {
	Input carbon.LifestyleInput

	// FactorVersion selects a registered factor table. Empty selects the
	// service default.
	FactorVersion string

	// UserID, when set, makes the result persisted and published.
	UserID string
}

// Result is the complete answer for one request.
type Result struct {
	ID              string                     `json:"id"`
	CreatedAt       time.Time                  `json:"created_at"`
	FactorVersion   string                     `json:"factor_version"`
	Breakdown       carbon.Breakdown           `json:"breakdown"`
	Display         carbon.Breakdown           `json:"display"`
	Recommendations []carbon.Recommendation    `json:"recommendations"`
	Projection      carbon.Projection          `json:"projection"`
	Comparison      carbon.Comparison          `json:"comparison"`
	Equivalencies   greenops.EquivalencyOutput `json:"equivalencies"`
	Stored          bool                       `json:"stored"`
}

// Options configures a Service. Registry is required; the rest default.
type Options struct {
	Registry       *carbon.Registry
	DefaultVersion string
	Periods        carbon.PeriodConvention
	Rules          *carbon.RuleSet
	Store          store.Store
	Publisher      events.Publisher
	Formatter      *greenops.Formatter
	Registerer     prometheus.Registerer
	Logger         zerolog.Logger

	MaxBatchSize     int
	BatchConcurrency int
	HistoryLimit     int

	// Now and NewID are overridable for tests.
	Now   func() time.Time
	NewID func() string
}

// Service is safe for concurrent use.
type Service struct {
	registry       *carbon.Registry
	defaultVersion string
	periods        carbon.PeriodConvention
	rules          carbon.RuleSet
	store          store.Store
	publisher      events.Publisher
	formatter      *greenops.Formatter
	metrics        *Metrics
	logger         zerolog.Logger

	maxBatch     int
	concurrency  int
	historyLimit int

	now   func() time.Time
	newID func() string
}

// New validates opts and returns a Service.
func New(opts Options) (*Service, error) {
	if opts.Registry == nil {
		return nil, errors.New("service: factor registry is required")
	}
	if _, err := opts.Registry.Get(opts.DefaultVersion); err != nil {
		return nil, fmt.Errorf("service: default factor version: %w", err)
	}

	s := &Service{
		registry:       opts.Registry,
		defaultVersion: opts.DefaultVersion,
		periods:        opts.Periods,
		rules:          carbon.DefaultRules(),
		store:          opts.Store,
		publisher:      opts.Publisher,
		formatter:      opts.Formatter,
		logger:         logging.ComponentLogger(opts.Logger, "service"),
		maxBatch:       opts.MaxBatchSize,
		concurrency:    opts.BatchConcurrency,
		historyLimit:   opts.HistoryLimit,
		now:            opts.Now,
		newID:          opts.NewID,
	}
	if opts.Rules != nil {
		s.rules = *opts.Rules
	}
	if s.periods.Name == "" {
		s.periods = carbon.MonthlyPeriods()
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	if s.formatter == nil {
		s.formatter = greenops.NewFormatterForLocale("en")
	}
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	s.metrics = NewMetrics(reg)
	if s.maxBatch <= 0 {
		s.maxBatch = DefaultMaxBatchSize
	}
	if s.concurrency <= 0 {
		s.concurrency = DefaultBatchConcurrency
	}
	if s.historyLimit <= 0 {
		s.historyLimit = DefaultHistoryLimit
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s, nil
}

// Estimate computes req and, when req.UserID is set, persists and publishes
// the result. Persistence and publication are best-effort: their failures are
// logged and counted but do not fail the estimate.
func (s *Service) Estimate(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	defer func() { s.metrics.Duration.Observe(time.Since(start).Seconds()) }()

	res, err := s.compute(req)
	if err != nil {
		s.countFailure(err)
		return Result{}, err
	}
	s.metrics.Estimates.WithLabelValues(OutcomeOK).Inc()
	s.metrics.observeBreakdown(res.Breakdown)
	s.logger.Debug().Ctx(ctx).
		Str("estimate_id", res.ID).
		Str("summary", res.Breakdown.Describe()).
		Msg("estimate computed")

	if req.UserID != "" {
		res.Stored = s.persist(ctx, req, res)
	}
	return res, nil
}

// EstimateBatch estimates every request concurrently and returns results in
// input order. All inputs are validated first; the lowest failing index is
// reported as a *BatchError. Once ctx is done or an item fails, requests that
// have not started are skipped and nothing more is persisted.
func (s *Service) EstimateBatch(ctx context.Context, reqs []Request) ([]Result, error) {
	if err := s.CheckBatchSize(len(reqs)); err != nil {
		return nil, err
	}
	for i, req := range reqs {
		if err := carbon.Validate(req.Input); err != nil {
			s.countFailure(err)
			return nil, &BatchError{Index: i, Err: err}
		}
		if _, err := s.registry.Get(s.version(req)); err != nil {
			s.countFailure(err)
			return nil, &BatchError{Index: i, Err: err}
		}
	}

	results := make([]Result, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.Estimate(gctx, req)
			if err != nil {
				return &BatchError{Index: i, Err: err}
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug().Ctx(ctx).Int("count", len(reqs)).Msg("batch estimated")
	return results, nil
}

// History returns up to limit stored estimates of userID, newest first.
// A limit outside (0, HistoryLimit] is replaced by HistoryLimit.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]store.Record, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if s.store == nil {
		return nil, ErrHistoryUnavailable
	}
	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}
	return s.store.List(ctx, userID, limit)
}

// Equivalencies converts a carbon amount in any recognized unit into
// everyday equivalencies using the service's formatter.
func (s *Service) Equivalencies(in greenops.CarbonInput) (greenops.EquivalencyOutput, error) {
	return s.formatter.Calculate(in)
}

// CheckBatchSize reports ErrEmptyBatch or ErrBatchTooLarge for a batch of n inputs.
func (s *Service) CheckBatchSize(n int) error {
	if n == 0 {
		return ErrEmptyBatch
	}
	if n > s.maxBatch {
		return fmt.Errorf("%w: %d inputs, limit %d", ErrBatchTooLarge, n, s.maxBatch)
	}
	return nil
}

// FactorVersions lists the registered factor table versions in ascending order.
func (s *Service) FactorVersions() []string {
	return s.registry.Versions()
}

// DefaultFactorVersion returns the version used when a request names none.
func (s *Service) DefaultFactorVersion() string {
	t, _ := s.registry.Get(s.defaultVersion)
	return t.Version()
}

// FactorTable returns the table for version; empty selects the default.
func (s *Service) FactorTable(version string) (*carbon.FactorTable, error) {
	if version == "" {
		version = s.defaultVersion
	}
	return s.registry.Get(version)
}

// Rules returns the recommendation policy in effect.
func (s *Service) Rules() carbon.RuleSet {
	return s.rules
}

// Periods returns the period convention in effect.
func (s *Service) Periods() carbon.PeriodConvention {
	return s.periods
}

func (s *Service) version(req Request) string {
	if req.FactorVersion != "" {
		return req.FactorVersion
	}
	return s.defaultVersion
}

func (s *Service) compute(req Request) (Result, error) {
	table, err := s.registry.Get(s.version(req))
	if err != nil {
		return Result{}, err
	}

	b, err := carbon.NewEstimator(table, carbon.WithPeriods(s.periods)).Estimate(req.Input)
	if err != nil {
		return Result{}, err
	}

	equivalencies, err := s.formatter.CalculateKg(b.Total)
	if err != nil {
		return Result{}, &carbon.ComputationError{Op: "equivalencies", Detail: err.Error()}
	}

	return Result{
		ID:              s.newID(),
		CreatedAt:       s.now(),
		FactorVersion:   b.FactorVersion,
		Breakdown:       b,
		Display:         b.Rounded(carbon.DisplayPrecision),
		Recommendations: s.rules.Recommend(b),
		Projection:      carbon.Project(b),
		Comparison:      carbon.Compare(b),
		Equivalencies:   equivalencies,
	}, nil
}

// persist stores and publishes res. It reports whether the record was stored.
func (s *Service) persist(ctx context.Context, req Request, res Result) bool {
	record := store.Record{
		ID:              res.ID,
		UserID:          req.UserID,
		CreatedAt:       res.CreatedAt,
		FactorVersion:   res.FactorVersion,
		Convention:      res.Breakdown.Convention,
		Input:           req.Input,
		Breakdown:       res.Breakdown,
		Recommendations: res.Recommendations,
	}

	stored := false
	if s.store != nil {
		if err := s.store.Save(ctx, record); err != nil {
			s.metrics.SideEffectFailures.WithLabelValues(SideEffectStore).Inc()
			s.logger.Error().Ctx(ctx).Err(err).Str("estimate_id", res.ID).Msg("failed to store estimate")
		} else {
			stored = true
		}
	}

	if err := s.publisher.Publish(ctx, record); err != nil {
		s.metrics.SideEffectFailures.WithLabelValues(SideEffectPublish).Inc()
		s.logger.Warn().Ctx(ctx).Err(err).Str("estimate_id", res.ID).Msg("failed to publish estimate")
	}
	return stored
}

func (s *Service) countFailure(err error) {
	outcome := OutcomeError
	if errors.Is(err, carbon.ErrValidation) || errors.Is(err, carbon.ErrUnknownFactorVersion) {
		outcome = OutcomeInvalid
	}
	s.metrics.Estimates.WithLabelValues(outcome).Inc()
}
