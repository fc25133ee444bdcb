package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
)

const githubAccept = "application/vnd.github+json"

type githubAdapter struct {
	cfg        GitHubConfig
	httpClient *http.Client
}

// NewGitHubAdapter creates the GitHub adapter. GitHub's token endpoint takes
// no grant_type and may omit the email from the user profile, in which case
// the emails endpoint is consulted.
func NewGitHubAdapter(cfg GitHubConfig, opts ...AdapterOption) ProviderAdapter {
	o := applyAdapterOptions(opts)
	return &githubAdapter{cfg: cfg, httpClient: o.httpClient}
}

func (a *githubAdapter) Provider() Provider { return ProviderGitHub }

func (a *githubAdapter) DefaultRedirectURI() string { return a.cfg.RedirectURI }

func (a *githubAdapter) CheckConfig() error {
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
		return missingConfig(ProviderGitHub, missing...)
	}
	return nil
}

func (a *githubAdapter) AuthCodeURL(state, redirectURI string) string {
	conf := &oauth2.Config{
		ClientID:    a.cfg.ClientID,
		RedirectURL: redirectURI,
		Scopes:      a.cfg.Scopes,
		Endpoint:    oauth2.Endpoint{AuthURL: a.cfg.AuthURL, TokenURL: a.cfg.TokenURL},
	}
	return conf.AuthCodeURL(state)
}

type githubTokenResponse struct {
	AccessToken      string `json:"access_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ExchangeCode posts the code without grant_type and asks for a JSON answer.
// GitHub reports a bad code with HTTP 200 and an "error" field.
func (a *githubAdapter) ExchangeCode(ctx context.Context, code, redirectURI string) (string, error) {
	form := url.Values{
		"client_id":     {a.cfg.ClientID},
		"client_secret": {a.cfg.ClientSecret},
		"code":          {code},
		"redirect_uri":  {redirectURI},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Join(ErrTokenExchangeFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var tok githubTokenResponse
	if err := doJSON(a.httpClient, req, &tok); err != nil {
		return "", errors.Join(ErrTokenExchangeFailed, err)
	}
	if tok.AccessToken == "" {
		if tok.Error != "" {
			return "", fmt.Errorf("%w: %s: %s", ErrTokenExchangeFailed, tok.Error, tok.ErrorDescription)
		}
		return "", fmt.Errorf("%w: response has no access_token", ErrTokenExchangeFailed)
	}
	return tok.AccessToken, nil
}

type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (a *githubAdapter) FetchProfile(ctx context.Context, accessToken string) (UserInfo, error) {
	var u githubUser
	if err := getJSON(ctx, a.httpClient, a.cfg.UserInfoURL, accessToken, githubAccept, &u); err != nil {
		return UserInfo{}, errors.Join(ErrTokenExchangeFailed, fmt.Errorf("fetch github user: %w", err))
	}

	email := strings.TrimSpace(u.Email)
	if email == "" {
		var err error
		if email, err = a.primaryEmail(ctx, accessToken); err != nil {
			return UserInfo{}, err
		}
	}

	return UserInfo{
		Email:      email,
		Name:       displayName(u.Name, u.Login, email),
		ProviderID: strconv.FormatInt(u.ID, 10),
	}, nil
}

// primaryEmail picks the entry flagged primary, else the first listed one.
func (a *githubAdapter) primaryEmail(ctx context.Context, accessToken string) (string, error) {
	if a.cfg.EmailsURL == "" {
		return "", ErrNoEmailFromProvider
	}
	var emails []githubEmail
	if err := getJSON(ctx, a.httpClient, a.cfg.EmailsURL, accessToken, githubAccept, &emails); err != nil {
		return "", errors.Join(ErrNoEmailFromProvider, fmt.Errorf("fetch github emails: %w", err))
	}

	var first string
	for _, e := range emails {
		addr := strings.TrimSpace(e.Email)
		if addr == "" {
			continue
		}
		if e.Primary {
			return addr, nil
		}
		if first == "" {
			first = addr
		}
	}
	if first == "" {
		return "", ErrNoEmailFromProvider
	}
	return first, nil
}

var _ ProviderAdapter = (*githubAdapter)(nil)
