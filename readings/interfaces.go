package readings

import (
	"github.com/s0up4200/linkup/librelinkup"
)

// Formatter defines the interface for formatting readings output
type Formatter interface {
	FormatConnections(conns []librelinkup.Connection) string
	FormatLatest(readings []Reading) string
	FormatSeries(series Series) string
	FormatSummary(title string, s Summary) string
	FormatHistory(history *librelinkup.GlucoseHistory) string
	FormatLogBook(entries []Reading) string
}

var _ Formatter = (*ConsoleFormatter)(nil)
