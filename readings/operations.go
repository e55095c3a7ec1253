package readings

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/s0up4200/linkup/librelinkup"
)

// Operations turns LibreLinkUp replies into readings
type Operations struct {
	api         librelinkup.API
	logger      zerolog.Logger
	concurrency int
}

// NewOperations creates a new Operations instance
func NewOperations(api librelinkup.API, logger zerolog.Logger) *Operations {
	return &Operations{
		api:         api,
		logger:      logger,
		concurrency: DefaultConcurrency,
	}
}

// SetConcurrency sets how many graphs are fetched at once
func (o *Operations) SetConcurrency(n int) {
	if n > 0 {
		o.concurrency = min(n, MaxConcurrency)
	}
}

// Connections returns the connections shared with the account
func (o *Operations) Connections(ctx context.Context) ([]librelinkup.Connection, error) {
	resp, err := o.api.GetConnections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get connections: %w", err)
	}
	return resp.Data, nil
}

// Latest returns the current reading of every connection. Connections without
// a measurement are skipped.
func (o *Operations) Latest(ctx context.Context) ([]Reading, error) {
	conns, err := o.Connections(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]Reading, 0, len(conns))
	for _, conn := range conns {
		if conn.GlucoseMeasurement == nil {
			o.logger.Debug().Str("connection", conn.ID).Msg("Connection has no current measurement")
			continue
		}
		results = append(results, NewReading(conn, *conn.GlucoseMeasurement))
	}

	return results, nil
}

// Series fetches the graph of one connection
func (o *Operations) Series(ctx context.Context, connectionID string) (*Series, error) {
	resp, err := o.api.GetConnectionGraph(ctx, connectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get graph for connection %s: %w", connectionID, err)
	}

	series := seriesFromGraph(resp.Data)
	if series.Connection.ID == "" {
		series.Connection.ID = connectionID
		for i := range series.Readings {
			series.Readings[i].ConnectionID = connectionID
		}
	}
	return series, nil
}

// seriesFromGraph converts graph points into time ordered readings. The
// connection's current measurement is appended when it is newer than the
// last graph point.
func seriesFromGraph(data librelinkup.GraphData) *Series {
	conn := data.Connection
	series := &Series{
		Connection: conn,
		Sensors:    data.ActiveSensors,
		Readings:   make([]Reading, 0, len(data.GraphData)+1),
	}

	for _, item := range data.GraphData {
		series.Readings = append(series.Readings, NewReading(conn, item))
	}
	sort.SliceStable(series.Readings, func(i, j int) bool {
		return series.Readings[i].Time.Before(series.Readings[j].Time)
	})

	if conn.GlucoseMeasurement != nil {
		current := NewReading(conn, *conn.GlucoseMeasurement)
		last, ok := series.Latest()
		if !ok || current.Time.After(last.Time) {
			series.Readings = append(series.Readings, current)
		}
	}

	return series
}

// History returns aggregated glucose history periods
func (o *Operations) History(ctx context.Context, numPeriods, period int) (*librelinkup.GlucoseHistory, error) {
	if numPeriods <= 0 || period <= 0 {
		return nil, fmt.Errorf("numPeriods and period must be positive, got %d and %d", numPeriods, period)
	}

	history, err := o.api.GetGlucoseHistory(ctx, numPeriods, period)
	if err != nil {
		return nil, fmt.Errorf("failed to get glucose history: %w", err)
	}

	o.logger.Debug().
		Int("num_periods", numPeriods).
		Int("period", period).
		Int("returned", len(history.Data.Periods)).
		Msg("Fetched glucose history")
	return history, nil
}

// LogBook returns the log book entries of a connection as readings, newest
// first.
func (o *Operations) LogBook(ctx context.Context, conn librelinkup.Connection) ([]Reading, error) {
	id := ConnectionKey(conn)
	book, err := o.api.GetLogBook(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get log book for connection %s: %w", id, err)
	}

	results := make([]Reading, 0, len(book.Data))
	for _, item := range book.Data {
		results = append(results, NewReading(conn, item))
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Time.After(results[j].Time)
	})

	return results, nil
}

// ConnectionKey returns the id the graph and log book endpoints expect: the
// patient id, or the connection id when the patient id is missing.
func ConnectionKey(conn librelinkup.Connection) string {
	if conn.PatientID != "" {
		return conn.PatientID
	}
	return conn.ID
}

// FindConnection returns the connection with the given id
func (o *Operations) FindConnection(ctx context.Context, connectionID string) (*librelinkup.Connection, error) {
	conns, err := o.Connections(ctx)
	if err != nil {
		return nil, err
	}
	for i := range conns {
		if conns[i].ID == connectionID || conns[i].PatientID == connectionID {
			return &conns[i], nil
		}
	}
	return nil, fmt.Errorf("connection not found: %s", connectionID)
}
