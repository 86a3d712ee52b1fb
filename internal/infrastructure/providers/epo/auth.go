package epo

import (
	"context"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/turtacn/aether-intel/pkg/errors"
)

// refreshMargin is subtracted from the advertised token lifetime so a
// token is never presented within a minute of its expiry.
const refreshMargin = 60 * time.Second

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in,string"`
}

// tokenSource fetches and caches an OAuth2 client-credentials token for
// OPS.  Safe for concurrent use.
type tokenSource struct {
	client         *resty.Client
	authURL        string
	consumerKey    string
	consumerSecret string

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	now func() time.Time
}

func newTokenSource(client *resty.Client, authURL, key, secret string) *tokenSource {
	return &tokenSource{
		client:         client,
		authURL:        authURL,
		consumerKey:    key,
		consumerSecret: secret,
		now:            time.Now,
	}
}

// Token returns a cached access token, fetching a fresh one when the
// cache is empty or within the refresh margin of expiry.
func (ts *tokenSource) Token(ctx context.Context) (string, error) {
	return ts.fetch(ctx, false)
}

// ForceRefresh discards the cached token and fetches a new one.  Called
// after an upstream 401 so a revoked token is replaced exactly once per
// request.
func (ts *tokenSource) ForceRefresh(ctx context.Context) (string, error) {
	return ts.fetch(ctx, true)
}

func (ts *tokenSource) fetch(ctx context.Context, force bool) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	now := ts.now()
	if !force && ts.token != "" && now.Before(ts.expiresAt) {
		return ts.token, nil
	}

	if ts.consumerKey == "" || ts.consumerSecret == "" {
		return "", errors.New(errors.ErrCodeSourceAuthFailed,
			"EPO consumer key/secret not configured")
	}

	var body tokenResponse
	resp, err := ts.client.R().
		SetContext(ctx).
		SetBasicAuth(ts.consumerKey, ts.consumerSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&body).
		Post(ts.authURL)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeSourceUnavailable,
			"EPO token request failed")
	}
	if resp.StatusCode() != 200 {
		return "", errors.New(errors.ErrCodeSourceAuthFailed,
			"EPO token endpoint rejected credentials").
			WithDetail(resp.Status())
	}
	if body.AccessToken == "" {
		return "", errors.New(errors.ErrCodeSourceParseError,
			"EPO token response carried no access token")
	}

	lifetime := time.Duration(body.ExpiresIn) * time.Second
	if lifetime <= refreshMargin {
		lifetime = refreshMargin * 2
	}
	ts.token = body.AccessToken
	ts.expiresAt = now.Add(lifetime - refreshMargin)
	return ts.token, nil
}
