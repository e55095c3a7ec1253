package readings

import (
	"time"

	"github.com/s0up4200/linkup/librelinkup"
)

// Default target range in mg/dL, used when a connection reports none
const (
	DefaultTargetLow  = 70.0
	DefaultTargetHigh = 180.0
)

// Range classifies a reading against its target range
type Range string

const (
	// RangeLow is below the target range
	RangeLow Range = "low"
	// RangeInRange is within the target range
	RangeInRange Range = "in-range"
	// RangeHigh is above the target range
	RangeHigh Range = "high"
)

// Reading is a single glucose value tied to the patient it belongs to
type Reading struct {
	ConnectionID string
	PatientID    string
	Patient      string
	Time         time.Time
	ValueMgDl    float64
	Unit         librelinkup.GlucoseUnit
	Trend        librelinkup.TrendArrow
	TargetLow    float64
	TargetHigh   float64
	IsHigh       bool
	IsLow        bool
}

// NewReading builds a Reading from a connection and one of its measurements
func NewReading(conn librelinkup.Connection, item librelinkup.GlucoseItem) Reading {
	r := Reading{
		ConnectionID: conn.ID,
		PatientID:    conn.PatientID,
		Patient:      conn.FullName(),
		Time:         item.Time(),
		ValueMgDl:    item.ValueInMgPerDl,
		Unit:         conn.UOM,
		Trend:        item.TrendArrow,
		TargetLow:    conn.TargetLow,
		TargetHigh:   conn.TargetHigh,
		IsHigh:       item.IsHigh,
		IsLow:        item.IsLow,
	}
	if r.TargetLow <= 0 {
		r.TargetLow = DefaultTargetLow
	}
	if r.TargetHigh <= 0 {
		r.TargetHigh = DefaultTargetHigh
	}
	return r
}

// Mmol returns the value in mmol/L
func (r Reading) Mmol() float64 {
	return librelinkup.MgPerDlToMmol(r.ValueMgDl)
}

// Value returns the value in the patient's preferred unit
func (r Reading) Value() float64 {
	if r.Unit == librelinkup.UnitMgPerDl {
		return r.ValueMgDl
	}
	return r.Mmol()
}

// Range classifies the reading. Sensor LO/HI flags win over the targets.
func (r Reading) Range() Range {
	switch {
	case r.IsLow || r.ValueMgDl < r.TargetLow:
		return RangeLow
	case r.IsHigh || r.ValueMgDl > r.TargetHigh:
		return RangeHigh
	default:
		return RangeInRange
	}
}

// Age returns how long ago the reading was taken
func (r Reading) Age(now time.Time) time.Duration {
	if r.Time.IsZero() {
		return 0
	}
	return now.Sub(r.Time)
}

// Series is the recent history of one connection
type Series struct {
	Connection librelinkup.Connection
	Sensors    []librelinkup.ActiveSensor
	Readings   []Reading
}

// Latest returns the most recent reading of the series
func (s Series) Latest() (Reading, bool) {
	if len(s.Readings) == 0 {
		return Reading{}, false
	}
	return s.Readings[len(s.Readings)-1], true
}

// Summary holds aggregate statistics over a set of readings.
// Values are in mg/dL and percentages are 0-100.
type Summary struct {
	Count      int
	Mean       float64
	Min        float64
	Max        float64
	StdDev     float64
	CV         float64
	GMI        float64
	BelowPct   float64
	InRangePct float64
	AbovePct   float64
	From       time.Time
	To         time.Time
}
