package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

type googleAdapter struct {
	cfg        GoogleConfig
	httpClient *http.Client
}

// NewGoogleAdapter creates the OpenID Connect style adapter for Google.
func NewGoogleAdapter(cfg GoogleConfig, opts ...AdapterOption) ProviderAdapter {
	o := applyAdapterOptions(opts)
	return &googleAdapter{cfg: cfg, httpClient: o.httpClient}
}

func (a *googleAdapter) Provider() Provider { return ProviderGoogle }

func (a *googleAdapter) DefaultRedirectURI() string { return a.cfg.RedirectURI }

func (a *googleAdapter) CheckConfig() error {
	var missing []string
	if a.cfg.ClientID == "" {
		missing = append(missing, "client id")
	}
	if a.cfg.ClientSecret == "" {
		missing = append(missing, "client secret")
	}
	if a.cfg.TokenURL == "" {
		missing = append(missing, "token endpoint")
	}
	if a.cfg.UserInfoURL == "" {
		missing = append(missing, "userinfo endpoint")
	}
	if len(missing) > 0 {
		return missingConfig(ProviderGoogle, missing...)
	}
	return nil
}

func (a *googleAdapter) oauthConfig(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     a.cfg.ClientID,
		ClientSecret: a.cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       a.cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   a.cfg.AuthURL,
			TokenURL:  a.cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func (a *googleAdapter) AuthCodeURL(state, redirectURI string) string {
	return a.oauthConfig(redirectURI).AuthCodeURL(state)
}

// ExchangeCode runs the standard authorization_code grant with client
// credentials in the form body.
func (a *googleAdapter) ExchangeCode(ctx context.Context, code, redirectURI string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	tok, err := a.oauthConfig(redirectURI).Exchange(ctx, code)
	if err != nil {
		return "", errors.Join(ErrTokenExchangeFailed, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: response has no access_token", ErrTokenExchangeFailed)
	}
	return tok.AccessToken, nil
}

type googleUserInfo struct {
	Sub       string `json:"sub"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	GivenName string `json:"given_name"`
}

func (a *googleAdapter) FetchProfile(ctx context.Context, accessToken string) (UserInfo, error) {
	var info googleUserInfo
	if err := getJSON(ctx, a.httpClient, a.cfg.UserInfoURL, accessToken, "application/json", &info); err != nil {
		return UserInfo{}, errors.Join(ErrTokenExchangeFailed, fmt.Errorf("fetch google userinfo: %w", err))
	}
	if info.Email == "" {
		return UserInfo{}, ErrNoEmailFromProvider
	}
	return UserInfo{
		Email:      info.Email,
		Name:       displayName(info.Name, info.GivenName, info.Email),
		ProviderID: info.Sub,
	}, nil
}

var _ ProviderAdapter = (*googleAdapter)(nil)
