package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"flightbot-service/internal/domain/entity"
)

var airlineCmd = &cobra.Command{
	Use:   "airline CODE...",
	Short: "Look up carrier codes in the reference table",
	Long: `Look up IATA carrier codes in the m_airlines reference table.

The bot falls back to these names when a search response has no carrier
dictionary entry. Requires POSTGRES_DSN.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAirline,
}

func runAirline(cmd *cobra.Command, args []string) error {
	if noDatabase {
		return errors.New("airline lookups need the reference database, drop --no-db")
	}

	p, err := newProviders(cmd.Context())
	if err != nil {
		return err
	}
	if p.airlines == nil {
		return errors.New("POSTGRES_DSN is not set")
	}

	for _, arg := range args {
		code := strings.ToUpper(strings.TrimSpace(arg))
		airline, err := p.airlines.GetByCode(cmd.Context(), code)
		if err != nil {
			return fmt.Errorf("look up %s: %w", code, err)
		}
		printAirline(cmd.OutOrStdout(), code, airline)
	}
	return nil
}

func printAirline(w io.Writer, code string, airline *entity.Airline) {
	if airline == nil {
		fmt.Fprintf(w, "%-3s  not found\n", code)
		return
	}
	fmt.Fprintf(w, "%-3s  %s (updated %s)\n", airline.Code, airline.Name, airline.UpdatedAt.Format("2006-01-02"))
}
