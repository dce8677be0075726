package contracts

import (
	"testing"
	"time"
)

func TestSeverityFromScore(t *testing.T) {
	tests := []struct {
		score float64
		want  Severity
	}{
		{-2.0, SeverityGreen},
		{0.0, SeverityGreen},
		{0.4999, SeverityGreen},
		{0.5, SeverityYellow},
		{0.9999, SeverityYellow},
		{1.0, SeverityOrange},
		{1.4999, SeverityOrange},
		{1.5, SeverityRed},
		{3.7, SeverityRed},
	}

	for _, tt := range tests {
		if got := SeverityFromScore(tt.score); got != tt.want {
			t.Errorf("SeverityFromScore(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestSeverityRank(t *testing.T) {
	order := []Severity{SeverityGreen, SeverityYellow, SeverityOrange, SeverityRed}
	for i, s := range order {
		if s.Rank() != i {
			t.Errorf("%s.Rank() = %d, want %d", s, s.Rank(), i)
		}
	}

	if Severity("purple").Rank() != -1 {
		t.Error("Unknown severity should rank -1")
	}
	if Severity("purple").Valid() {
		t.Error("Unknown severity should not be valid")
	}
}

func TestDay(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Seoul")
	ts := time.Date(2026, 3, 14, 23, 45, 0, 0, loc)

	day := Day(ts)
	if day.Hour() != 0 || day.Minute() != 0 {
		t.Errorf("Day() should truncate to midnight, got %v", day)
	}
	if day.Location() != time.UTC {
		t.Errorf("Day() should be UTC, got %v", day.Location())
	}
	if day.Day() != 14 {
		t.Errorf("Day() should keep the calendar day, got %d", day.Day())
	}
}

func TestAlertEventEscalation(t *testing.T) {
	up := &AlertEvent{PrevLevel: SeverityGreen, NewLevel: SeverityOrange}
	if !up.Escalation() {
		t.Error("green→orange should be an escalation")
	}

	down := &AlertEvent{PrevLevel: SeverityRed, NewLevel: SeverityOrange}
	if down.Escalation() {
		t.Error("red→orange should not be an escalation")
	}
}

func TestCompositeScoreContribution(t *testing.T) {
	score := &CompositeScore{
		Date:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		Score: 1.2,
		Level: SeverityOrange,
		Contributions: []Contribution{
			{Code: "volatility-index", Z: 2.1, Weight: 0.4, Weighted: 0.84},
			{Code: "credit-spread", Z: 0.9, Weight: 0.1, Weighted: 0.09},
		},
	}

	cb, ok := score.Contribution("volatility-index")
	if !ok {
		t.Fatal("Expected contribution for volatility-index")
	}
	if cb.Z != 2.1 {
		t.Errorf("Got z %v, want 2.1", cb.Z)
	}

	if _, ok := score.Contribution("unknown"); ok {
		t.Error("Did not expect contribution for unknown code")
	}
}
