package readings

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/s0up4200/linkup/librelinkup"
)

// Styles per glucose range
var (
	lowStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")) // red
	inRangeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))            // green
	highStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")) // yellow
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))            // gray
)

const timeLayout = "2006-01-02 15:04"

// FormatOptions contains options for formatting output
type FormatOptions struct {
	// Unit overrides the patient's preferred unit when set
	Unit *librelinkup.GlucoseUnit
	// Limit shows only the last N readings of a series; 0 shows all
	Limit int
	// Now is used for relative times; zero means time.Now
	Now time.Time
}

func (o FormatOptions) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

// ConsoleFormatter provides console output formatting for readings
type ConsoleFormatter struct {
	options FormatOptions
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter(options FormatOptions) *ConsoleFormatter {
	return &ConsoleFormatter{options: options}
}

// FormatValue renders a value in the configured unit, coloured by range
func (f *ConsoleFormatter) FormatValue(r Reading) string {
	unit := r.Unit
	if f.options.Unit != nil {
		unit = *f.options.Unit
	}

	var text string
	if unit == librelinkup.UnitMgPerDl {
		text = fmt.Sprintf("%.0f %s", r.ValueMgDl, unit)
	} else {
		text = fmt.Sprintf("%.1f %s", r.Mmol(), unit)
	}

	switch r.Range() {
	case RangeLow:
		return lowStyle.Render(text)
	case RangeHigh:
		return highStyle.Render(text)
	default:
		return inRangeStyle.Render(text)
	}
}

// FormatConnections formats the connection list
func (f *ConsoleFormatter) FormatConnections(conns []librelinkup.Connection) string {
	if len(conns) == 0 {
		return "No connections found"
	}

	var sb strings.Builder
	sb.WriteString("\nConnection")
	if len(conns) != 1 {
		sb.WriteString("s")
	}
	fmt.Fprintf(&sb, " (%d):\n\n", len(conns))

	for i, conn := range conns {
		isLast := i == len(conns)-1
		prefix, indent := treePrefix(isLast)

		fmt.Fprintf(&sb, "%s── %s\n", prefix, conn.FullName())
		fmt.Fprintf(&sb, "%sID: %s\n", indent, conn.ID)
		if conn.PatientID != "" && conn.PatientID != conn.ID {
			fmt.Fprintf(&sb, "%sPatient: %s\n", indent, conn.PatientID)
		}
		if conn.Sensor != nil {
			sensor := fmt.Sprintf("Sensor: %s", conn.Sensor.SerialNumber)
			if activated := conn.Sensor.ActivatedAt(); !activated.IsZero() {
				sensor += fmt.Sprintf(" (active since %s)", activated.Format("2006-01-02"))
			}
			fmt.Fprintf(&sb, "%s%s\n", indent, sensor)
		}
		if conn.GlucoseMeasurement != nil {
			r := NewReading(conn, *conn.GlucoseMeasurement)
			fmt.Fprintf(&sb, "%sCurrent: %s %s %s\n", indent, f.FormatValue(r), r.Trend.Symbol(), f.formatAge(r))
		}

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatLatest formats the current reading of each connection
func (f *ConsoleFormatter) FormatLatest(readings []Reading) string {
	if len(readings) == 0 {
		return "No current readings"
	}

	var sb strings.Builder
	for _, r := range readings {
		fmt.Fprintf(&sb, "%-24s %s %s %s\n", r.Patient, f.FormatValue(r), r.Trend.Symbol(), f.formatAge(r))
	}
	return sb.String()
}

// FormatSeries formats the readings of one connection
func (f *ConsoleFormatter) FormatSeries(series Series) string {
	readings := series.Readings
	if f.options.Limit > 0 && len(readings) > f.options.Limit {
		readings = readings[len(readings)-f.options.Limit:]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s (%d readings):\n\n", series.Connection.FullName(), len(readings))
	if len(readings) == 0 {
		sb.WriteString("No readings\n")
		return sb.String()
	}

	for i, r := range readings {
		prefix, _ := treePrefix(i == len(readings)-1)
		fmt.Fprintf(&sb, "%s── %s  %s %s\n", prefix, r.Time.Format(timeLayout), f.FormatValue(r), r.Trend.Symbol())
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatSummary formats statistics for a set of readings
func (f *ConsoleFormatter) FormatSummary(title string, s Summary) string {
	if s.Count == 0 {
		return "No readings to summarize"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s\n", title)
	sb.WriteString(strings.Repeat("━", 50))
	sb.WriteString("\n")

	if !s.From.IsZero() {
		fmt.Fprintf(&sb, "Period:        %s → %s\n", s.From.Format(timeLayout), s.To.Format(timeLayout))
	}
	fmt.Fprintf(&sb, "Readings:      %d\n", s.Count)
	fmt.Fprintf(&sb, "Average:       %s\n", f.formatPlain(s.Mean))
	fmt.Fprintf(&sb, "Min / Max:     %s / %s\n", f.formatPlain(s.Min), f.formatPlain(s.Max))
	fmt.Fprintf(&sb, "Std deviation: %s (CV %.1f%%)\n", f.formatPlain(s.StdDev), s.CV)
	fmt.Fprintf(&sb, "GMI:           %.1f%%\n", s.GMI)
	fmt.Fprintf(&sb, "Time in range: %s  below: %s  above: %s\n",
		inRangeStyle.Render(fmt.Sprintf("%.1f%%", s.InRangePct)),
		lowStyle.Render(fmt.Sprintf("%.1f%%", s.BelowPct)),
		highStyle.Render(fmt.Sprintf("%.1f%%", s.AbovePct)))

	return sb.String()
}

// FormatHistory formats glucose history periods
func (f *ConsoleFormatter) FormatHistory(history *librelinkup.GlucoseHistory) string {
	if history == nil || len(history.Data.Periods) == 0 {
		return "No glucose history"
	}

	periods := history.Data.Periods
	var sb strings.Builder
	fmt.Fprintf(&sb, "\nGlucose history (%d periods):\n\n", len(periods))

	for i, p := range periods {
		isLast := i == len(periods)-1
		prefix, indent := treePrefix(isLast)

		fmt.Fprintf(&sb, "%s── %s → %s\n", prefix, p.Start().Format("2006-01-02"), p.End().Format("2006-01-02"))
		if p.NoData {
			fmt.Fprintf(&sb, "%s%s\n", indent, dimStyle.Render("no data"))
		} else {
			fmt.Fprintf(&sb, "%sAverage: %s\n", indent, f.formatPlain(p.AvgGlucose))
			fmt.Fprintf(&sb, "%sHypo events: %d\n", indent, p.HypoEvents)
			if p.DaysOfData > 0 {
				fmt.Fprintf(&sb, "%sDays of data: %d\n", indent, p.DaysOfData)
			}
			if p.AvgTestsPerDay > 0 {
				fmt.Fprintf(&sb, "%sScans per day: %.1f\n", indent, p.AvgTestsPerDay)
			}
		}

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatLogBook formats log book entries
func (f *ConsoleFormatter) FormatLogBook(entries []Reading) string {
	if len(entries) == 0 {
		return "Log book is empty"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\nLog book (%d entries):\n\n", len(entries))
	for i, r := range entries {
		prefix, _ := treePrefix(i == len(entries)-1)
		label := ""
		switch r.Range() {
		case RangeLow:
			label = " [LOW]"
		case RangeHigh:
			label = " [HIGH]"
		}
		fmt.Fprintf(&sb, "%s── %s  %s%s\n", prefix, r.Time.Format(timeLayout), f.FormatValue(r), label)
	}
	sb.WriteString("\n")
	return sb.String()
}

// formatPlain renders an uncoloured mg/dL value in the configured unit
func (f *ConsoleFormatter) formatPlain(mgdl float64) string {
	if f.options.Unit != nil && *f.options.Unit == librelinkup.UnitMmolPerL {
		return fmt.Sprintf("%.1f mmol/L", librelinkup.MgPerDlToMmol(mgdl))
	}
	return fmt.Sprintf("%.0f mg/dL", mgdl)
}

// formatAge renders "(5 min ago)" style suffixes
func (f *ConsoleFormatter) formatAge(r Reading) string {
	if r.Time.IsZero() {
		return ""
	}
	age := r.Age(f.options.now())
	var text string
	switch {
	case age < time.Minute:
		text = "(just now)"
	case age < time.Hour:
		text = fmt.Sprintf("(%d min ago)", int(age.Minutes()))
	default:
		text = fmt.Sprintf("(%s)", r.Time.Format(timeLayout))
	}
	return dimStyle.Render(text)
}

func treePrefix(isLast bool) (prefix, indent string) {
	if isLast {
		return "╰", "    "
	}
	return "├", "│   "
}
