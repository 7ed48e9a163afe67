// ABOUTME: Tests for metrics aggregation over raw samples.
// ABOUTME: Covers empty input, truncation quirks and conditional fields.
package physio

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/velolab/velo/internal/models"
)

func sample(time int, power, oxygen, hr float64) models.Sample {
	return *models.NewSample(uuid.New(), time, power, oxygen, 85, hr, 22)
}

func fptr(v float64) *float64 { return &v }

func TestComputeEmpty(t *testing.T) {
	m := Compute(nil, fptr(70))
	if !m.IsZero() {
		t.Errorf("Compute over no samples should leave all fields unset, got %+v", m)
	}
}

func TestComputeBasic(t *testing.T) {
	samples := []models.Sample{
		sample(0, 100, 30, 120),
		sample(2, 110, 32, 122),
	}
	m := Compute(samples, fptr(70))

	if m.MaxPower == nil || *m.MaxPower != 110 {
		t.Errorf("MaxPower = %v, want 110", m.MaxPower)
	}
	if m.AvgPower == nil || *m.AvgPower != 105 {
		t.Errorf("AvgPower = %v, want 105", m.AvgPower)
	}
	if m.Duration == nil || *m.Duration != 2 {
		t.Errorf("Duration = %v, want 2", m.Duration)
	}
	if m.VO2Max == nil || *m.VO2Max != 32 {
		t.Errorf("VO2Max = %v, want 32", m.VO2Max)
	}
	if m.MaxHeartRate == nil || *m.MaxHeartRate != 122 {
		t.Errorf("MaxHeartRate = %v, want 122", m.MaxHeartRate)
	}
	if m.AvgHeartRate == nil || *m.AvgHeartRate != 121 {
		t.Errorf("AvgHeartRate = %v, want 121", m.AvgHeartRate)
	}
	if m.PowerWeightRatio == nil || *m.PowerWeightRatio != 105.0/70.0 {
		t.Errorf("PowerWeightRatio = %v, want %v", m.PowerWeightRatio, 105.0/70.0)
	}
	if m.TotalWork == nil || *m.TotalWork != 210 {
		t.Errorf("TotalWork = %v, want 210", m.TotalWork)
	}
}

func TestComputeMaxAtLeastAvg(t *testing.T) {
	samples := []models.Sample{
		sample(0, 90, 28, 110),
		sample(1, 250, 40, 150),
		sample(2, 180, 35, 140),
	}
	m := Compute(samples, nil)

	if *m.MaxPower < *m.AvgPower {
		t.Errorf("max power %v below avg power %v", *m.MaxPower, *m.AvgPower)
	}
	if *m.AvgPower < 0 {
		t.Errorf("avg power %v negative", *m.AvgPower)
	}
}

func TestComputeHeartRateTruncation(t *testing.T) {
	// avg HR = 121.5 must truncate to 121, not round to 122
	samples := []models.Sample{
		sample(0, 100, 30, 121),
		sample(1, 100, 30, 122),
	}
	m := Compute(samples, nil)
	if m.AvgHeartRate == nil || *m.AvgHeartRate != 121 {
		t.Errorf("AvgHeartRate = %v, want truncated 121", m.AvgHeartRate)
	}
}

func TestComputeZeroOxygenLeavesVO2MaxUnset(t *testing.T) {
	samples := []models.Sample{
		sample(0, 100, 0, 120),
		sample(1, 110, 0, 121),
	}
	m := Compute(samples, nil)
	if m.VO2Max != nil {
		t.Errorf("VO2Max = %v, want unset for all-zero oxygen", *m.VO2Max)
	}
}

func TestComputeZeroHeartRateLeftUnset(t *testing.T) {
	samples := []models.Sample{sample(0, 100, 30, 0)}
	m := Compute(samples, nil)
	if m.MaxHeartRate != nil || m.AvgHeartRate != nil {
		t.Errorf("zero heart rate should leave HR fields unset, got max=%v avg=%v",
			m.MaxHeartRate, m.AvgHeartRate)
	}
}

func TestComputePowerWeightRatioConditions(t *testing.T) {
	samples := []models.Sample{sample(0, 100, 30, 120), sample(5, 200, 30, 130)}

	tests := []struct {
		name    string
		weight  *float64
		wantSet bool
	}{
		{"nil weight", nil, false},
		{"zero weight", fptr(0), false},
		{"negative weight", fptr(-70), false},
		{"positive weight", fptr(75), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Compute(samples, tt.weight)
			if (m.PowerWeightRatio != nil) != tt.wantSet {
				t.Errorf("PowerWeightRatio set = %v, want %v", m.PowerWeightRatio != nil, tt.wantSet)
			}
		})
	}
}

func TestComputeZeroAvgPowerSkipsDerived(t *testing.T) {
	samples := []models.Sample{sample(0, 0, 30, 120), sample(3, 0, 30, 121)}
	m := Compute(samples, fptr(70))

	if m.AvgPower == nil || *m.AvgPower != 0 {
		t.Fatalf("AvgPower = %v, want 0", m.AvgPower)
	}
	if m.PowerWeightRatio != nil {
		t.Error("ratio should be unset when avg power is zero")
	}
	if m.TotalWork != nil {
		t.Error("total work should be unset when avg power is zero")
	}
}

func TestComputeTotalWorkNeedsDuration(t *testing.T) {
	// single sample at t=0: duration 0, so no total work
	samples := []models.Sample{sample(0, 300, 45, 160)}
	m := Compute(samples, fptr(70))

	if m.Duration == nil || *m.Duration != 0 {
		t.Fatalf("Duration = %v, want 0", m.Duration)
	}
	if m.TotalWork != nil {
		t.Error("total work should be unset when duration is zero")
	}
}

func TestComputeTotalWorkFormula(t *testing.T) {
	samples := []models.Sample{
		sample(0, 190, 40, 150),
		sample(30, 210, 42, 155),
		sample(60, 230, 44, 160),
	}
	m := Compute(samples, nil)

	want := *m.AvgPower * float64(*m.Duration)
	if math.Abs(*m.TotalWork-want) > 1e-9 {
		t.Errorf("TotalWork = %v, want avg*duration = %v", *m.TotalWork, want)
	}
}

func TestComputeOrderIndependent(t *testing.T) {
	a := []models.Sample{sample(0, 100, 30, 120), sample(1, 110, 31, 121), sample(2, 120, 32, 122)}
	b := []models.Sample{a[2], a[0], a[1]}

	ma := Compute(a, fptr(70))
	mb := Compute(b, fptr(70))

	if *ma.MaxPower != *mb.MaxPower || *ma.AvgPower != *mb.AvgPower || *ma.Duration != *mb.Duration {
		t.Error("aggregation should not depend on sample order")
	}
}

func TestComputeDoesNotMutateInput(t *testing.T) {
	samples := []models.Sample{sample(0, 100, 30, 120)}
	before := samples[0]
	Compute(samples, fptr(70))
	if samples[0] != before {
		t.Error("Compute mutated its input")
	}
}
