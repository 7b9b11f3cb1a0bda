package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"flightbot-service/internal/domain/repository"
)

// maximum error body kept for logs
const maxErrorBody = 2048

// amadeusClient issues authenticated GET requests against the Amadeus self-service API.
// The http.Client is expected to carry the OAuth2 transport.
type amadeusClient struct {
	client  *http.Client
	baseURL string
}

func newAmadeusClient(client *http.Client, baseURL string) amadeusClient {
	if client == nil {
		client = http.DefaultClient
	}
	return amadeusClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// getJSON decodes the response of GET path?params into out
func (c amadeusClient) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: amadeus returned status %d: %s", repository.ErrProviderUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrMalformedResponse, err)
	}
	return nil
}
