package readings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, Summary{}, Summarize(nil))
	})

	t.Run("mixed ranges", func(t *testing.T) {
		start := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
		values := []float64{60, 100, 120, 140, 200}

		var rs []Reading
		for i, v := range values {
			rs = append(rs, Reading{
				ValueMgDl:  v,
				TargetLow:  70,
				TargetHigh: 180,
				Time:       start.Add(time.Duration(i) * 5 * time.Minute),
			})
		}

		s := Summarize(rs)
		assert.Equal(t, 5, s.Count)
		assert.InDelta(t, 124.0, s.Mean, 0.001)
		assert.Equal(t, 60.0, s.Min)
		assert.Equal(t, 200.0, s.Max)
		assert.InDelta(t, 20.0, s.BelowPct, 0.001)
		assert.InDelta(t, 20.0, s.AbovePct, 0.001)
		assert.InDelta(t, 60.0, s.InRangePct, 0.001)
		assert.InDelta(t, 3.31+0.02392*124, s.GMI, 0.0001)
		// population std dev of the values above
		assert.InDelta(t, 46.303, s.StdDev, 0.01)
		assert.InDelta(t, s.StdDev/s.Mean*100, s.CV, 0.0001)
		assert.True(t, s.From.Equal(start))
		assert.True(t, s.To.Equal(start.Add(20*time.Minute)))
	})

	t.Run("readings without time", func(t *testing.T) {
		s := Summarize([]Reading{{ValueMgDl: 100, TargetLow: 70, TargetHigh: 180}})
		assert.True(t, s.From.IsZero())
		assert.Equal(t, 100.0, s.InRangePct)
	})
}
