package internal

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/courseflow/board/internal"
	"github.com/courseflow/board/internal/envvar"
	"github.com/courseflow/board/internal/googleauth"
)

// NewHTTPClient instantiates the instrumented HTTP client the Google API
// clients share.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// NewGoogleTokenSource instantiates the bearer token source using
// configuration defined in environment variables. A plain GOOGLE_TOKEN wins
// over the refresh token flow, which is handy for development.
func NewGoogleTokenSource(conf *envvar.Configuration, client *http.Client) (googleauth.Source, error) {
	token, err := conf.Get("GOOGLE_TOKEN")
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "conf.Get GOOGLE_TOKEN")
	}

	if token != "" {
		return googleauth.StaticToken(token), nil
	}

	clientID, err := conf.Get("GOOGLE_CLIENT_ID")
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "conf.Get GOOGLE_CLIENT_ID")
	}

	clientSecret, err := conf.Get("GOOGLE_CLIENT_SECRET")
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "conf.Get GOOGLE_CLIENT_SECRET")
	}

	refreshToken, err := conf.Get("GOOGLE_REFRESH_TOKEN")
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "conf.Get GOOGLE_REFRESH_TOKEN")
	}

	return googleauth.NewRefresher(client, clientID, clientSecret, refreshToken), nil
}
