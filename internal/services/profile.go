package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/handoff/internal/shared"
	"golang.org/x/oauth2"
)

// ProfileClient implements [ProfileService] against a JSON endpoint at {baseURL}/me.
type ProfileClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewProfileClient creates a client that authenticates every request with token.
//
// A nil base client defaults to one with the given timeout.
func NewProfileClient(baseURL, token string, timeout time.Duration, base *http.Client) (*ProfileClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: profile url", shared.ErrMissingConfig)
	}
	if token == "" {
		return nil, fmt.Errorf("%w: missing access token", shared.ErrNotAuthenticated)
	}
	if base == nil {
		base = &http.Client{Timeout: timeout}
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})

	client := oauth2.NewClient(ctx, ts)
	client.Timeout = base.Timeout

	return &ProfileClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}, nil
}

func (p *ProfileClient) Name() string {
	return "profile"
}

// Profile retrieves the current authenticated account's profile.
func (p *ProfileClient) Profile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := p.doRequest(ctx, http.MethodGet, "/me", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// doRequest performs an authenticated HTTP request and decodes the JSON body into result.
func (p *ProfileClient) doRequest(ctx context.Context, method, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %w", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", shared.ErrNotAuthenticated, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
