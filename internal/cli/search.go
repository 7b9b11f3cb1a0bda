package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"flightbot-service/internal/usecase"
	"flightbot-service/pkg/metrics"
	"flightbot-service/pkg/utils"
)

var (
	searchClass    string
	searchPageSize int
	searchAllPages bool
)

var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Parse a query, run the search and print the result pages",
	Long: `Run the full search path without a conversation.

Examples:
  flightctl search "flight from delhi to london on 2025-12-10"
  flightctl search "flight delhi to london on 2025-12-10" --class business --all`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchClass, "class", "c", "", "cabin class (economy, premium economy, business, first or 1-4)")
	searchCmd.Flags().IntVarP(&searchPageSize, "page-size", "n", 0, "results per page (defaults to RESULTS_PAGE_SIZE)")
	searchCmd.Flags().BoolVar(&searchAllPages, "all", false, "print every page instead of only the first")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	text := strings.Join(args, " ")
	out := cmd.OutOrStdout()

	p, err := newProviders(ctx)
	if err != nil {
		return err
	}

	q, err := utils.NewFlightQueryParser(p.locations, log).Parse(ctx, text)
	if err != nil {
		return fmt.Errorf("parse %q: %w", text, err)
	}
	if q == nil || !q.IsComplete() {
		return fmt.Errorf("%q is not a complete flight query", text)
	}

	if searchClass != "" {
		class, ok := usecase.ParseCabinClass(searchClass)
		if !ok {
			return fmt.Errorf("unknown cabin class %q", searchClass)
		}
		q.CabinClass = class
	}

	printQuery(out, q)
	fmt.Fprintln(out)

	m := metrics.NewMetrics("flightctl", prometheus.NewRegistry())
	result, err := usecase.NewFlightSearchService(p.offers, p.airlines, m, log).Search(ctx, q)
	if err != nil {
		return err
	}
	if len(result.Items) == 0 {
		fmt.Fprintln(out, "No flights found.")
		return nil
	}

	pageSize := searchPageSize
	if pageSize <= 0 {
		pageSize = cfg.ResultsPageSize
	}
	printPages(out, result.Items, pageSize, searchAllPages)
	return nil
}

func printPages(w io.Writer, items []string, pageSize int, all bool) {
	text, page := utils.FirstPage(items, pageSize)
	fmt.Fprintf(w, "--- page 1 (%d of %d) ---\n%s\n", page.Cursor, len(items), text)

	for n := 2; all; n++ {
		text, next, ok := utils.NextPage(page)
		if !ok {
			break
		}
		page = next
		fmt.Fprintf(w, "--- page %d (%d of %d) ---\n%s\n", n, page.Cursor, len(items), text)
	}
}
