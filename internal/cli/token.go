package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"flightbot-service/internal/infrastructure/oauth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Fetch an Amadeus access token to verify the credentials",
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

func runToken(cmd *cobra.Command, args []string) error {
	amadeusOAuth := oauth.NewAmadeusOAuth(cfg.AmadeusBaseURL, cfg.AmadeusAPIKey, cfg.AmadeusAPISecret, log)

	token, err := amadeusOAuth.FetchToken(cmd.Context())
	if err != nil {
		return err
	}

	out, err := amadeusOAuth.TokenToJSON(token)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
