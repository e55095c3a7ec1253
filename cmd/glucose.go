package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/s0up4200/linkup/filter"
	"github.com/s0up4200/linkup/readings"
)

// filterCompiler is shared so each series reuses the compiled expression
var filterCompiler = filter.NewExprCompiler(filter.WithCache(16))

var (
	filterExpr string
	preset     string
	limit      int
	periods    int
	period     int
)

var connectionsCmd = &cobra.Command{
	Use:   "connections",
	Short: "List the patients sharing data with you",
	RunE:  runConnections,
}

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the current reading of every connection",
	RunE:  runLatest,
}

var graphCmd = &cobra.Command{
	Use:   "graph [connection-id]",
	Short: "Show the last 12 hours of readings",
	Long: `Show the recent readings of one connection, or of every connection when no
id is given. Readings can be narrowed with an expression or a named preset:

  linkup graph --filter 'ValueMgDl > 180 and rising()'
  linkup graph --preset low`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGraph,
}

var logbookCmd = &cobra.Command{
	Use:   "logbook <connection-id>",
	Short: "Show the log book of a connection",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogBook,
}

var summaryCmd = &cobra.Command{
	Use:   "summary [connection-id]",
	Short: "Summarize the recent readings of a connection",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSummary,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show glucose history periods for the account",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(connectionsCmd, latestCmd, graphCmd, logbookCmd, summaryCmd, historyCmd)

	for _, c := range []*cobra.Command{graphCmd, summaryCmd} {
		c.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
		c.Flags().StringVarP(&preset, "preset", "p", "", "use a named filter preset")
	}
	graphCmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the last N readings")

	historyCmd.Flags().IntVar(&periods, "periods", 0, "number of periods (default from config)")
	historyCmd.Flags().IntVar(&period, "period", 0, "days per period (default from config)")
}

// validateConnectionID rejects ids that are not UUIDs before any request is made
func validateConnectionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid connection id %q: %w", id, err)
	}
	return nil
}

// filterExpression determines the filter expression to use. Empty means no filtering.
func filterExpression() (string, error) {
	// Priority: command line filter > preset
	if filterExpr != "" {
		return filterExpr, nil
	}
	if preset != "" {
		return filter.ResolvePreset(cfg.Filter, preset)
	}
	return "", nil
}

// applyFilter narrows each series to the readings matching the selected filter
func applyFilter(ctx context.Context, series []readings.Series) ([]readings.Series, error) {
	expression, err := filterExpression()
	if err != nil || expression == "" {
		return series, err
	}

	logger.Debug().Str("filter", expression).Msg("Filtering readings")

	evaluator := filter.NewEvaluator()
	for i := range series {
		compiled, err := filterCompiler.Compile(expression)
		if err != nil {
			return nil, fmt.Errorf("invalid filter expression: %w", err)
		}
		matches, err := evaluator.Evaluate(ctx, compiled, series[i].Readings)
		if err != nil {
			return nil, err
		}
		series[i].Readings = matches
	}
	return series, nil
}

// loadSeries fetches one connection's graph, or all of them when args is empty.
// The argument may be either the connection id or the patient id.
func loadSeries(ctx context.Context, ops *readings.Operations, args []string) ([]readings.Series, error) {
	if len(args) == 1 {
		if err := validateConnectionID(args[0]); err != nil {
			return nil, err
		}
		conn, err := ops.FindConnection(ctx, args[0])
		if err != nil {
			return nil, err
		}
		s, err := ops.Series(ctx, readings.ConnectionKey(*conn))
		if err != nil {
			return nil, err
		}
		return []readings.Series{*s}, nil
	}

	conns, err := ops.Connections(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(conns))
	for _, c := range conns {
		ids = append(ids, readings.ConnectionKey(c))
	}
	return ops.Graphs(ctx, ids)
}

func runConnections(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	ops, err := newOperations(ctx)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(0)
	if err != nil {
		return err
	}

	conns, err := ops.Connections(ctx)
	if err != nil {
		return err
	}
	fmt.Println(formatter.FormatConnections(conns))
	return nil
}

func runLatest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	ops, err := newOperations(ctx)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(0)
	if err != nil {
		return err
	}

	latest, err := ops.Latest(ctx)
	if err != nil {
		return err
	}
	fmt.Print(formatter.FormatLatest(latest))
	return nil
}

func runGraph(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	ops, err := newOperations(ctx)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(limit)
	if err != nil {
		return err
	}

	series, err := loadSeries(ctx, ops, args)
	if err != nil {
		return err
	}
	if series, err = applyFilter(ctx, series); err != nil {
		return err
	}

	if len(series) == 0 {
		fmt.Println("No connections found")
		return nil
	}
	for _, s := range series {
		fmt.Print(formatter.FormatSeries(s))
	}
	return nil
}

func runLogBook(cmd *cobra.Command, args []string) error {
	if err := validateConnectionID(args[0]); err != nil {
		return err
	}

	ctx := context.Background()
	ops, err := newOperations(ctx)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(0)
	if err != nil {
		return err
	}

	conn, err := ops.FindConnection(ctx, args[0])
	if err != nil {
		return err
	}
	entries, err := ops.LogBook(ctx, *conn)
	if err != nil {
		return err
	}
	fmt.Print(formatter.FormatLogBook(entries))
	return nil
}

func runSummary(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	ops, err := newOperations(ctx)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(0)
	if err != nil {
		return err
	}

	series, err := loadSeries(ctx, ops, args)
	if err != nil {
		return err
	}
	if series, err = applyFilter(ctx, series); err != nil {
		return err
	}

	if len(series) == 0 {
		fmt.Println("No connections found")
		return nil
	}
	for _, s := range series {
		fmt.Print(formatter.FormatSummary(s.Connection.FullName(), readings.Summarize(s.Readings)))
		fmt.Println()
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	if periods <= 0 {
		periods = cfg.History.Periods
	}
	if period <= 0 {
		period = cfg.History.Period
	}

	ctx := context.Background()
	ops, err := newOperations(ctx)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(0)
	if err != nil {
		return err
	}

	history, err := ops.History(ctx, periods, period)
	if err != nil {
		return err
	}
	fmt.Print(formatter.FormatHistory(history))
	return nil
}
