// Package googleauth yields valid Google API bearer tokens, exchanging a
// long lived refresh token for short lived access tokens and caching them
// until shortly before expiry.
package googleauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/courseflow/board/internal"
)

const tokenEndpoint = "https://oauth2.googleapis.com/token"

// Source yields a valid bearer token for Google API requests.
type Source interface {
	Token(ctx context.Context) (string, error)
}

// expirySkew renews tokens early so requests in flight never carry a token
// about to lapse.
const expirySkew = time.Minute

// StaticToken wraps an already issued access token, used when the caller
// manages its own session.
type StaticToken string

// Token returns the wrapped token.
func (s StaticToken) Token(_ context.Context) (string, error) {
	return string(s), nil
}

// Refresher exchanges a refresh token for access tokens on demand.
type Refresher struct {
	client       *http.Client
	clientID     string
	clientSecret string
	refreshToken string

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewRefresher instantiates the token source.
func NewRefresher(client *http.Client, clientID, clientSecret, refreshToken string) *Refresher {
	return &Refresher{
		client:       client,
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Token returns a valid access token, refreshing when the cached one is
// absent or near expiry.
func (r *Refresher) Token(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token != "" && time.Now().Before(r.expires.Add(-expirySkew)) {
		return r.token, nil
	}

	form := url.Values{}
	form.Set("client_id", r.clientID)
	form.Set("client_secret", r.clientSecret)
	form.Set("refresh_token", r.refreshToken)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", internal.WrapErrorf(err, internal.ErrorCodeUnknown, "http.NewRequest")
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", internal.WrapErrorf(err, internal.ErrorCodeUnauthorized, "client.Do")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", internal.NewErrorf(internal.ErrorCodeUnauthorized, "token exchange: status %d", resp.StatusCode)
	}

	var decoded tokenResponse

	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.Decode")
	}

	r.token = decoded.AccessToken
	r.expires = time.Now().Add(time.Duration(decoded.ExpiresIn) * time.Second)

	return r.token, nil
}
