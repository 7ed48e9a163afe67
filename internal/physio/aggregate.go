// ABOUTME: Pure aggregation of raw samples into derived session metrics.
// ABOUTME: Deterministic, allocation-light, safe on empty input.
package physio

import (
	"github.com/velolab/velo/internal/models"
)

// Compute derives summary metrics from a session's samples. weight is the
// session's subject-weight snapshot in kg; it may be nil.
//
// Empty input yields a zero Metrics value, never an error. Aggregation is
// order-independent: duration is the largest elapsed time seen, not the
// time of the last slice element.
//
// Semantics carried over from the lab's established pipeline and relied on
// by downstream consumers:
//   - heart-rate aggregates are truncated toward zero, and a truncated
//     value of 0 is treated as absent
//   - vo2max is only set when the oxygen maximum is non-zero
//   - power_weight_ratio requires a non-zero avg power and weight > 0
//   - total_work is avg power times duration in seconds, an approximation,
//     and requires both factors non-zero
func Compute(samples []models.Sample, weight *float64) models.Metrics {
	var m models.Metrics
	if len(samples) == 0 {
		return m
	}

	var (
		sumPower float64
		sumHR    float64
		maxPower = samples[0].Power
		maxHR    = samples[0].HeartRate
		maxOxy   = samples[0].Oxygen
		maxTime  = samples[0].Time
	)
	for _, s := range samples {
		sumPower += s.Power
		sumHR += s.HeartRate
		if s.Power > maxPower {
			maxPower = s.Power
		}
		if s.HeartRate > maxHR {
			maxHR = s.HeartRate
		}
		if s.Oxygen > maxOxy {
			maxOxy = s.Oxygen
		}
		if s.Time > maxTime {
			maxTime = s.Time
		}
	}

	n := float64(len(samples))
	avgPower := sumPower / n
	avgHR := sumHR / n

	m.MaxPower = &maxPower
	m.AvgPower = &avgPower
	m.Duration = &maxTime

	if hr := int(maxHR); hr != 0 {
		m.MaxHeartRate = &hr
	}
	if hr := int(avgHR); hr != 0 {
		m.AvgHeartRate = &hr
	}
	if maxOxy != 0 {
		m.VO2Max = &maxOxy
	}
	if avgPower != 0 && weight != nil && *weight > 0 {
		ratio := avgPower / *weight
		m.PowerWeightRatio = &ratio
	}
	if avgPower != 0 && maxTime != 0 {
		work := avgPower * float64(maxTime)
		m.TotalWork = &work
	}

	return m
}
