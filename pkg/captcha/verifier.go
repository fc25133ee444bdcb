package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gestortareas/gestor/pkg/logger"
)

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

type Verifier struct {
	secret     string
	verifyURL  string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Verifier)

func WithLogger(l *slog.Logger) Option {
	return func(v *Verifier) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithHTTPClient overrides the client built from Config.Timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(v *Verifier) {
		if c != nil {
			v.httpClient = c
		}
	}
}

func NewVerifier(cfg Config, opts ...Option) *Verifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	verifyURL := cfg.VerifyURL
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}

	v := &Verifier{
		secret:     strings.TrimSpace(cfg.Secret),
		verifyURL:  verifyURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With(logger.Component("captcha"))
	return v
}

// Enabled reports whether a secret is configured.
func (v *Verifier) Enabled() bool {
	return v.secret != ""
}

// Verify checks token with the verification service. remoteIP is optional.
// A nil error means the request may proceed.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) error {
	if !v.Enabled() {
		v.logger.WarnContext(ctx, "captcha secret not configured, skipping verification")
		return nil
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrMissingToken
	}

	resp, err := v.siteverify(ctx, token, remoteIP)
	if err != nil {
		v.logger.WarnContext(ctx, "captcha verification request failed", logger.Error(err))
		return ErrVerificationFailed
	}
	if !resp.Success {
		v.logger.WarnContext(ctx, "captcha rejected",
			slog.Any("error_codes", resp.ErrorCodes),
			slog.String("hostname", resp.Hostname),
		)
		return ErrVerificationFailed
	}
	return nil
}

func (v *Verifier) siteverify(ctx context.Context, token, remoteIP string) (siteverifyResponse, error) {
	form := url.Values{
		"secret":   {v.secret},
		"response": {token},
	}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return siteverifyResponse{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	res, err := v.httpClient.Do(req)
	if err != nil {
		return siteverifyResponse{}, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	if err != nil {
		return siteverifyResponse{}, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return siteverifyResponse{}, fmt.Errorf("siteverify returned %d", res.StatusCode)
	}

	var out siteverifyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return siteverifyResponse{}, fmt.Errorf("decode siteverify response: %w", err)
	}
	return out, nil
}
