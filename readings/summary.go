package readings

import (
	"math"
)

// Summarize computes statistics over readings. An empty slice yields a zero
// Summary.
func Summarize(readings []Reading) Summary {
	var s Summary
	if len(readings) == 0 {
		return s
	}

	s.Count = len(readings)
	s.Min = math.Inf(1)
	s.Max = math.Inf(-1)

	var sum float64
	var below, above int
	for _, r := range readings {
		v := r.ValueMgDl
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)

		switch r.Range() {
		case RangeLow:
			below++
		case RangeHigh:
			above++
		}

		if !r.Time.IsZero() {
			if s.From.IsZero() || r.Time.Before(s.From) {
				s.From = r.Time
			}
			if r.Time.After(s.To) {
				s.To = r.Time
			}
		}
	}

	n := float64(s.Count)
	s.Mean = sum / n

	var sq float64
	for _, r := range readings {
		d := r.ValueMgDl - s.Mean
		sq += d * d
	}
	s.StdDev = math.Sqrt(sq / n)
	if s.Mean > 0 {
		s.CV = s.StdDev / s.Mean * 100
	}

	// Glucose Management Indicator (Bergenstal et al. 2018), mg/dL formula
	s.GMI = 3.31 + 0.02392*s.Mean

	s.BelowPct = float64(below) / n * 100
	s.AbovePct = float64(above) / n * 100
	s.InRangePct = 100 - s.BelowPct - s.AbovePct

	return s
}
