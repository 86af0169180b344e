// Package benchmark provides performance benchmarks for footprint estimation.
//
// Every estimate must complete well within interactive latency.
//
// Run with: go test ./test/benchmark/... -bench=. -benchmem
package benchmark

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/rshade/ecotrack/internal/carbon"
	"github.com/rshade/ecotrack/internal/greenops"
	"github.com/rshade/ecotrack/internal/service"
	"github.com/rshade/ecotrack/internal/store"
)

const (
	// maxLatencyMs is the maximum acceptable latency in milliseconds for a
	// single estimate.
	maxLatencyMs = 100
)

func household() carbon.LifestyleInput {
	return carbon.LifestyleInput{
		Transport: carbon.TransportInput{
			CarDistanceKm:               500,
			CarFuelType:                 carbon.FuelGasoline,
			CarEfficiencyLPer100Km:      8,
			PublicTransportHoursPerWeek: 10,
			FlightHoursPerYear:          5,
			FlightType:                  carbon.FlightDomestic,
			MotorcycleDistanceKm:        100,
		},
		Energy: carbon.EnergyInput{
			HomeSizeM2:                150,
			ElectricityKwhPerMonth:    300,
			HeatingType:               carbon.HeatingNaturalGas,
			HeatingUsage:              50,
			CoolingKwhPerMonth:        100,
			ApplianceEfficiencyRating: 3,
		},
		Food: carbon.FoodInput{
			DietType:             carbon.DietMixed,
			MeatServingsPerWeek:  7,
			DairyServingsPerWeek: 14,
			LocalFoodPercent:     50,
			OrganicFoodPercent:   20,
			FoodWastePercent:     15,
		},
		Waste: carbon.WasteInput{
			WasteKgPerMonth:      20,
			RecyclingRatePercent: 60,
			CompostRatePercent:   30,
		},
	}
}

func newService(tb testing.TB, st store.Store) *service.Service {
	tb.Helper()
	svc, err := service.New(service.Options{
		Registry:   carbon.DefaultRegistry(),
		Store:      st,
		Registerer: prometheus.NewRegistry(),
		Logger:     zerolog.Nop(),
	})
	if err != nil {
		tb.Fatal(err)
	}
	return svc
}

// BenchmarkEstimator measures the core four-category estimate.
func BenchmarkEstimator(b *testing.B) {
	e := carbon.NewEstimator(nil)
	in := household()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Estimate(in)
	}
}

// BenchmarkEstimator_Reference measures the reference period convention.
func BenchmarkEstimator_Reference(b *testing.B) {
	e := carbon.NewEstimator(nil, carbon.WithPeriods(carbon.ReferencePeriods()))
	in := household()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Estimate(in)
	}
}

// BenchmarkRecommend measures threshold evaluation.
func BenchmarkRecommend(b *testing.B) {
	bd, err := carbon.NewEstimator(nil).Estimate(household())
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = carbon.Recommend(bd)
	}
}

// BenchmarkEquivalencies measures locale-aware equivalency formatting.
func BenchmarkEquivalencies(b *testing.B) {
	f := greenops.NewFormatterForLocale("en")
	for i := 0; i < b.N; i++ {
		_, _ = f.CalculateKg(1065.052865)
	}
}

// BenchmarkServiceEstimate measures the full request path without persistence.
func BenchmarkServiceEstimate(b *testing.B) {
	svc := newService(b, nil)
	req := service.Request{Input: household()}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = svc.Estimate(ctx, req)
	}
}

// BenchmarkServiceEstimate_Stored measures the full request path with the
// in-memory history store.
func BenchmarkServiceEstimate_Stored(b *testing.B) {
	svc := newService(b, store.NewMemoryStore())
	req := service.Request{Input: household(), UserID: "bench"}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = svc.Estimate(ctx, req)
	}
}

// BenchmarkServiceEstimateBatch measures a full batch of 100 inputs.
func BenchmarkServiceEstimateBatch(b *testing.B) {
	svc := newService(b, nil)
	reqs := make([]service.Request, service.DefaultMaxBatchSize)
	for i := range reqs {
		reqs[i] = service.Request{Input: household()}
	}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = svc.EstimateBatch(ctx, reqs)
	}
}

// TestLatencyRequirement verifies each stage stays under maxLatencyMs.
func TestLatencyRequirement(t *testing.T) {
	svc := newService(t, store.NewMemoryStore())
	ctx := context.Background()

	tests := []struct {
		name string
		fn   func() error
	}{
		{"Estimator", func() error {
			_, err := carbon.NewEstimator(nil).Estimate(household())
			return err
		}},
		{"Service", func() error {
			_, err := svc.Estimate(ctx, service.Request{Input: household(), UserID: "latency"})
			return err
		}},
		{"Equivalencies", func() error {
			_, err := greenops.NewFormatterForLocale("en").CalculateKg(1065.052865)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			if err := tt.fn(); err != nil {
				t.Fatal(err)
			}
			elapsed := time.Since(start)

			if elapsed.Milliseconds() > maxLatencyMs {
				t.Errorf("%s took %v, exceeds %dms limit", tt.name, elapsed, maxLatencyMs)
			} else {
				t.Logf("%s completed in %v", tt.name, elapsed)
			}
		})
	}
}

// TestConcurrentLatency verifies the service stays fast under concurrent load.
func TestConcurrentLatency(t *testing.T) {
	const goroutines = 150
	svc := newService(t, store.NewMemoryStore())

	var wg sync.WaitGroup
	errors := make(chan error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := time.Now()
			req := service.Request{Input: household(), UserID: fmt.Sprintf("user-%d", i%10)}
			if _, err := svc.Estimate(context.Background(), req); err != nil {
				errors <- err
				return
			}
			if time.Since(start).Milliseconds() > maxLatencyMs {
				errors <- fmt.Errorf("exceeded latency under concurrent load")
			}
		}(i)
	}

	wg.Wait()
	close(errors)

	for err := range errors {
		t.Error(err)
	}
}
