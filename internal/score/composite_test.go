package score

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/wonny/riskwatch/internal/contracts"
	"github.com/wonny/riskwatch/internal/indicator"
)

var testDate = time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

func ns(code string, z float64) contracts.NormalizedScore {
	return contracts.NormalizedScore{Code: code, Date: testDate, Z: z, WindowUsed: 252, Samples: 252}
}

func TestCompositeFullSet(t *testing.T) {
	scorer := NewScorer(indicator.Default())

	scores := []contracts.NormalizedScore{
		ns("volatility-index", 2.0),
		ns("bond-vol-index", 1.0),
		ns("interbank-spread", 0.5),
		ns("yield-curve-slope", 1.0),
		ns("credit-spread", -0.5),
	}

	composite, err := scorer.Composite(testDate, scores)
	if err != nil {
		t.Fatalf("Composite() failed: %v", err)
	}

	// 0.4*2.0 + 0.25*1.0 + 0.15*0.5 + 0.1*1.0 + 0.1*(-0.5)
	want := 0.4*2.0 + 0.25*1.0 + 0.15*0.5 + 0.1*1.0 + 0.1*(-0.5)
	if math.Abs(composite.Score-want) > 1e-9 {
		t.Errorf("Score = %v, want %v", composite.Score, want)
	}
	if composite.Level != contracts.SeverityOrange {
		t.Errorf("Level = %v, want orange", composite.Level)
	}
	if len(composite.Contributions) != 5 {
		t.Errorf("Expected 5 contributions, got %d", len(composite.Contributions))
	}
}

func TestCompositeWeightRenormalization(t *testing.T) {
	scorer := NewScorer(indicator.Default())

	// bond-vol-index (weight 0.25) excluded: remaining 0.75 rescales to 1
	scores := []contracts.NormalizedScore{
		ns("volatility-index", 1.0),
		ns("interbank-spread", 1.0),
		ns("yield-curve-slope", 1.0),
		ns("credit-spread", 1.0),
	}

	composite, err := scorer.Composite(testDate, scores)
	if err != nil {
		t.Fatalf("Composite() failed: %v", err)
	}

	// All included z=1.0이므로 재정규화가 맞다면 합성 점수도 정확히 1.0
	if math.Abs(composite.Score-1.0) > 1e-9 {
		t.Errorf("Renormalized score = %v, want 1.0", composite.Score)
	}

	// 개별 가중치 확인: 0.4/0.75
	cb, ok := composite.Contribution("volatility-index")
	if !ok {
		t.Fatal("Expected contribution for volatility-index")
	}
	if math.Abs(cb.Weight-0.4/0.75) > 1e-9 {
		t.Errorf("Renormalized weight = %v, want %v", cb.Weight, 0.4/0.75)
	}

	// 재정규화 후 가중치 합은 1
	sum := 0.0
	for _, c := range composite.Contributions {
		sum += c.Weight
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("Weights sum = %v, want 1.0", sum)
	}
}

func TestCompositeAllExcluded(t *testing.T) {
	scorer := NewScorer(indicator.Default())

	_, err := scorer.Composite(testDate, nil)
	if !errors.Is(err, ErrAllIndicatorsUnavailable) {
		t.Errorf("Expected ErrAllIndicatorsUnavailable, got %v", err)
	}
}

func TestCompositeUnknownIndicator(t *testing.T) {
	scorer := NewScorer(indicator.Default())

	_, err := scorer.Composite(testDate, []contracts.NormalizedScore{ns("mystery-index", 1.0)})
	if err == nil {
		t.Error("Expected error for unknown indicator code")
	}
}

func TestCompositeDeterministic(t *testing.T) {
	scorer := NewScorer(indicator.Default())
	scores := []contracts.NormalizedScore{
		ns("volatility-index", 0.7),
		ns("credit-spread", 1.3),
	}

	first, err := scorer.Composite(testDate, scores)
	if err != nil {
		t.Fatal(err)
	}
	second, err := scorer.Composite(testDate, scores)
	if err != nil {
		t.Fatal(err)
	}

	if first.Score != second.Score || first.Level != second.Level {
		t.Error("Composite() must be deterministic for identical inputs")
	}
}
