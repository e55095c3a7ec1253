package librelinkup

import (
	"context"
)

// API defines the read operations offered by LibreLinkUp
type API interface {
	// GetConnections lists the patients sharing data with the account
	GetConnections(ctx context.Context) (*ConnectionsResponse, error)

	// GetConnectionGraph returns recent readings for one connection
	GetConnectionGraph(ctx context.Context, connectionID string) (*GraphResponse, error)

	// GetGlucoseHistory returns aggregated history periods
	GetGlucoseHistory(ctx context.Context, numPeriods, period int) (*GlucoseHistory, error)

	// GetLogBook returns alarm and scan events for one connection
	GetLogBook(ctx context.Context, connectionID string) (*LogBook, error)
}

var _ API = (*Client)(nil)
