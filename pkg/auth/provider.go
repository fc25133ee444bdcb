package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Provider names an external identity provider.
type Provider string

const (
	ProviderGoogle Provider = "GOOGLE"
	ProviderGitHub Provider = "GITHUB"
)

// ParseProvider accepts a provider name in any case.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToUpper(strings.TrimSpace(s))); p {
	case ProviderGoogle, ProviderGitHub:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, s)
	}
}

// UnmarshalJSON makes provider names in requests case-insensitive. Unknown
// names are kept as-is and rejected by SocialExchanger.Login.
func (p *Provider) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = Provider(strings.ToUpper(strings.TrimSpace(s)))
	return nil
}

// UserInfo is a provider profile normalized for account lookup.
type UserInfo struct {
	Email      string
	Name       string
	ProviderID string
}

// ProviderAdapter hides provider-specific OAuth quirks from SocialExchanger.
// Errors from ExchangeCode and FetchProfile are already mapped to
// ErrTokenExchangeFailed or ErrNoEmailFromProvider.
type ProviderAdapter interface {
	Provider() Provider
	// CheckConfig returns ErrMisconfiguredProvider when client credentials or
	// required endpoints are missing. It makes no network calls.
	CheckConfig() error
	// DefaultRedirectURI is the server-configured redirect URI, may be empty.
	DefaultRedirectURI() string
	AuthCodeURL(state, redirectURI string) string
	ExchangeCode(ctx context.Context, code, redirectURI string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (UserInfo, error)
}

// AdapterOption configures a provider adapter.
type AdapterOption func(*adapterOptions)

type adapterOptions struct {
	httpClient *http.Client
}

// WithHTTPClient replaces the adapter's HTTP client (10s timeout by default).
func WithHTTPClient(c *http.Client) AdapterOption {
	return func(o *adapterOptions) {
		if c != nil {
			o.httpClient = c
		}
	}
}

func applyAdapterOptions(opts []AdapterOption) adapterOptions {
	o := adapterOptions{httpClient: &http.Client{Timeout: 10 * time.Second}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func missingConfig(p Provider, fields ...string) error {
	return fmt.Errorf("%w: %s is missing %s", ErrMisconfiguredProvider, p, strings.Join(fields, ", "))
}

// maxResponseBytes caps provider response bodies.
const maxResponseBytes = 1 << 20

func getJSON(ctx context.Context, client *http.Client, url, accessToken, accept string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", accept)
	return doJSON(client, req, out)
}

func doJSON(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s returned status %d", req.Method, req.URL.Redacted(), resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Redacted(), err)
	}
	return nil
}
