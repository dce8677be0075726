package normalize

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/wonny/riskwatch/internal/contracts"
	"github.com/wonny/riskwatch/internal/indicator"
)

func testCalculator() *Calculator {
	return NewCalculator(indicator.Scoring{WindowDays: 252, MinSamples: 2})
}

func history(code string, values ...float64) []contracts.ObservedValue {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]contracts.ObservedValue, len(values))
	for i, v := range values {
		out[i] = contracts.ObservedValue{
			Code:   code,
			Date:   start.AddDate(0, 0, i),
			Value:  v,
			Source: contracts.SourceSynthetic,
		}
	}
	return out
}

func TestScoreDeterministic(t *testing.T) {
	calc := testCalculator()
	ind := indicator.Indicator{Code: "volatility-index", HigherIsRiskier: true}
	h := history("volatility-index", 15, 16, 14, 15, 17, 16, 25)

	first, err := calc.Score(ind, h)
	if err != nil {
		t.Fatalf("Score() failed: %v", err)
	}

	// Repeated calls with unchanged history return the identical value
	for i := 0; i < 5; i++ {
		again, err := calc.Score(ind, h)
		if err != nil {
			t.Fatalf("Score() failed on repeat: %v", err)
		}
		if again.Z != first.Z {
			t.Errorf("Score() not deterministic: %v != %v", again.Z, first.Z)
		}
	}

	// Spiked value above its own history must score positive
	if first.Z <= 0 {
		t.Errorf("Expected positive z for above-mean value, got %v", first.Z)
	}
}

func TestScoreKnownValue(t *testing.T) {
	calc := testCalculator()
	ind := indicator.Indicator{Code: "volatility-index", HigherIsRiskier: true}

	// values 10, 20: mean=15, sample stdev=sqrt(50)≈7.0711, z=(20-15)/7.0711
	h := history("volatility-index", 10, 20)
	score, err := calc.Score(ind, h)
	if err != nil {
		t.Fatalf("Score() failed: %v", err)
	}

	want := 5.0 / math.Sqrt(50.0)
	if math.Abs(score.Z-want) > 1e-9 {
		t.Errorf("Score() = %v, want %v", score.Z, want)
	}
	if score.Samples != 2 || score.WindowUsed != 2 {
		t.Errorf("Expected 2 samples / window 2, got %d / %d", score.Samples, score.WindowUsed)
	}
}

func TestScorePolarityInversion(t *testing.T) {
	calc := testCalculator()
	// 장단기 금리차: 낮을수록 위험
	ind := indicator.Indicator{Code: "yield-curve-slope", HigherIsRiskier: false}

	// Below-mean current value → positive z (more risk)
	below := history("yield-curve-slope", 0.5, 0.6, 0.5, 0.6, -0.2)
	score, err := calc.Score(ind, below)
	if err != nil {
		t.Fatalf("Score() failed: %v", err)
	}
	if score.Z <= 0 {
		t.Errorf("Below-mean value on inverted indicator should score positive, got %v", score.Z)
	}

	// Above-mean current value → negative z (less risk)
	above := history("yield-curve-slope", 0.5, 0.6, 0.5, 0.6, 1.5)
	score, err = calc.Score(ind, above)
	if err != nil {
		t.Fatalf("Score() failed: %v", err)
	}
	if score.Z >= 0 {
		t.Errorf("Above-mean value on inverted indicator should score negative, got %v", score.Z)
	}
}

func TestScoreInsufficientHistory(t *testing.T) {
	calc := testCalculator()
	ind := indicator.Indicator{Code: "credit-spread", HigherIsRiskier: true}

	tests := []struct {
		name string
		h    []contracts.ObservedValue
	}{
		{"no samples", history("credit-spread")},
		{"one sample", history("credit-spread", 0.006)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.Score(ind, tt.h)
			if !errors.Is(err, ErrInsufficientHistory) {
				t.Errorf("Expected ErrInsufficientHistory, got %v", err)
			}
		})
	}
}

func TestScoreDegenerateWindow(t *testing.T) {
	calc := testCalculator()
	ind := indicator.Indicator{Code: "bond-vol-index", HigherIsRiskier: true}

	// All-identical values: zero variance, z undefined (no division fault)
	h := history("bond-vol-index", 80, 80, 80, 80)
	_, err := calc.Score(ind, h)
	if !errors.Is(err, ErrDegenerateWindow) {
		t.Errorf("Expected ErrDegenerateWindow, got %v", err)
	}
}

func TestScoreWindowCap(t *testing.T) {
	calc := NewCalculator(indicator.Scoring{WindowDays: 5, MinSamples: 2})
	ind := indicator.Indicator{Code: "volatility-index", HigherIsRiskier: true}

	// 10 samples but window 5: only the last 5 participate
	h := history("volatility-index", 100, 100, 100, 100, 100, 15, 16, 14, 15, 30)
	score, err := calc.Score(ind, h)
	if err != nil {
		t.Fatalf("Score() failed: %v", err)
	}

	if score.WindowUsed != 5 {
		t.Errorf("WindowUsed = %d, want 5", score.WindowUsed)
	}

	// With the 100s excluded the mean is 18, so z must be positive but modest;
	// if they leaked in, mean would be ~59 and z strongly negative.
	if score.Z <= 0 {
		t.Errorf("Expected positive z from capped window, got %v", score.Z)
	}
}

func TestSampleStdDev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	mean := Mean(values)
	if mean != 5 {
		t.Fatalf("Mean = %v, want 5", mean)
	}

	// Sample stdev of this set is sqrt(32/7)
	want := math.Sqrt(32.0 / 7.0)
	if got := SampleStdDev(values, mean); math.Abs(got-want) > 1e-9 {
		t.Errorf("SampleStdDev = %v, want %v", got, want)
	}

	if SampleStdDev([]float64{1}, 1) != 0 {
		t.Error("Single sample should return 0")
	}
}
