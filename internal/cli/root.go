// Package cli provides the flightctl operator commands.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"flightbot-service/internal/domain/repository"
	"flightbot-service/internal/infrastructure/config"
	"flightbot-service/internal/infrastructure/oauth"
	"flightbot-service/internal/infrastructure/persistence"
	interfaceRepo "flightbot-service/internal/interface/repository"
	"flightbot-service/pkg/logger"
)

var (
	// Global flags
	verbose    bool
	noDatabase bool

	cfg *config.Config
	log logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "flightctl",
	Short: "Operator tools for the WhatsApp flight bot",
	Long: `flightctl talks to the same providers as the bot without going through WhatsApp.

It reads the bot's environment (.env is honoured) but only needs the Amadeus
credentials. POSTGRES_DSN, when set, is used for reference data lookups.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.LoadToolConfig()
		if err != nil {
			return err
		}

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		log = logger.NewLogger(level)
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&noDatabase, "no-db", false, "skip PostgreSQL reference data even when POSTGRES_DSN is set")

	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(airlineCmd)
}

// providers wires the same location and offer repositories the server uses
type providers struct {
	locations repository.LocationRepository
	offers    repository.FlightOfferRepository
	airlines  repository.AirlineRepository
}

func newProviders(ctx context.Context) (*providers, error) {
	amadeusOAuth := oauth.NewAmadeusOAuth(cfg.AmadeusBaseURL, cfg.AmadeusAPIKey, cfg.AmadeusAPISecret, log)
	client := amadeusOAuth.HTTPClient(ctx, cfg.HTTPClientTimeout)

	p := &providers{
		offers: interfaceRepo.NewAmadeusFlightOfferRepository(client, cfg.AmadeusBaseURL, cfg.FlightSearchMax, log),
	}

	var reference repository.LocationRepository
	if cfg.PostgresURI != "" && !noDatabase {
		db, err := persistence.NewPostgresDB(cfg.PostgresURI)
		if err != nil {
			return nil, fmt.Errorf("connect to reference database: %w", err)
		}
		reference = interfaceRepo.NewGormLocationRepository(db)
		p.airlines = interfaceRepo.NewGormAirlineRepository(db)
	}

	p.locations = interfaceRepo.NewChainLocationRepository(log,
		reference,
		interfaceRepo.NewAmadeusLocationRepository(client, cfg.AmadeusBaseURL, log),
	)
	return p, nil
}
