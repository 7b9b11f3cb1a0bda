package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"flightbot-service/internal/domain/entity"
	"flightbot-service/internal/usecase"
	"flightbot-service/pkg/utils"
)

var parseCmd = &cobra.Command{
	Use:   "parse <text>",
	Short: "Run the query parser against the live location resolvers",
	Long: `Parse a message the way the bot would and print the resulting query.

Examples:
  flightctl parse "flight from delhi to london on 2025-12-10"
  flightctl parse "flight mumbai to new york 2025-12-10 returning 2025-12-20"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	text := strings.Join(args, " ")

	p, err := newProviders(ctx)
	if err != nil {
		return err
	}

	q, err := utils.NewFlightQueryParser(p.locations, log).Parse(ctx, text)
	if err != nil {
		return fmt.Errorf("parse %q: %w", text, err)
	}
	if q == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Not a flight query.")
		return nil
	}

	printQuery(cmd.OutOrStdout(), q)
	return nil
}

func printQuery(w io.Writer, q *entity.FlightQuery) {
	fmt.Fprintf(w, "Trip type:   %s\n", q.TripType)
	fmt.Fprintf(w, "Origin:      %s\n", describeLocation(q.Origin))
	fmt.Fprintf(w, "Destination: %s\n", describeLocation(q.Destination))
	fmt.Fprintf(w, "Date:        %s\n", orDash(q.Date))
	fmt.Fprintf(w, "Return:      %s\n", orDash(q.ReturnDate))
	fmt.Fprintf(w, "Class:       %s\n", q.CabinClass.Label())
}

func describeLocation(l *entity.Location) string {
	if l == nil {
		return "-"
	}
	out := usecase.LocationLabel(l)
	if l.AirportCode != "" && l.AirportCode != l.SearchCode() {
		out += fmt.Sprintf(" [airport %s]", l.AirportCode)
	}
	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
