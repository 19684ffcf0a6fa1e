// Package gdrive implements the remote document store on the Google Drive
// files API, keeping the board document in the application data folder. The
// engine treats it as an opaque blob store: find-or-create, read, replace.
package gdrive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/mercari/go-circuitbreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/courseflow/board/internal"
)

const otelName = "github.com/courseflow/board/internal/gdrive"

const (
	fileName = "courseflow-data.json"
	mimeType = "application/json"

	apiBase    = "https://www.googleapis.com/drive/v3"
	uploadBase = "https://www.googleapis.com/upload/drive/v3"
)

// TokenSource yields a valid bearer token; refresh and backoff live behind
// this capability, opaque to the store.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the Drive files API. Writes go through a circuit breaker:
// when the remote side is down, save attempts fail fast instead of piling
// up behind timeouts, and the board keeps running on local state.
type Client struct {
	client  *http.Client
	tokens  TokenSource
	breaker *circuitbreaker.CircuitBreaker
}

// NewClient instantiates the Drive document store.
func NewClient(client *http.Client, tokens TokenSource) *Client {
	return &Client{
		client:  client,
		tokens:  tokens,
		breaker: circuitbreaker.New(),
	}
}

type fileList struct {
	Files []fileResource `json:"files"`
}

type fileResource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FindOrCreate looks the board document up in the app data folder,
// creating it with the seed payload when absent. Returns the file id and
// whether it was just created.
func (c *Client) FindOrCreate(ctx context.Context, seed []byte) (string, bool, error) {
	ctx, span := newOTELSpan(ctx, "Client.FindOrCreate")
	defer span.End()

	query := url.Values{}
	query.Set("q", fmt.Sprintf("name='%s' and mimeType='%s' and 'appDataFolder' in parents", fileName, mimeType))
	query.Set("spaces", "appDataFolder")
	query.Set("fields", "files(id, name)")

	var list fileList

	if err := c.do(ctx, http.MethodGet, apiBase+"/files?"+query.Encode(), nil, "", &list); err != nil {
		return "", false, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "files.list")
	}

	if len(list.Files) > 0 {
		return list.Files[0].ID, false, nil
	}

	id, err := c.create(ctx, seed)
	if err != nil {
		return "", false, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "files.create")
	}

	return id, true, nil
}

// Read downloads the document content.
func (c *Client) Read(ctx context.Context, handle string) ([]byte, error) {
	ctx, span := newOTELSpan(ctx, "Client.Read")
	defer span.End()

	req, err := c.newRequest(ctx, http.MethodGet, apiBase+"/files/"+url.PathEscape(handle)+"?alt=media", nil, "")
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "files.get")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, internal.NewErrorf(internal.ErrorCodeUnknown, "files.get: status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "io.ReadAll")
	}

	return raw, nil
}

// Write replaces the document content wholesale. Last writer wins; the API
// offers no compare-and-swap at this granularity.
func (c *Client) Write(ctx context.Context, handle string, payload []byte) error {
	ctx, span := newOTELSpan(ctx, "Client.Write")
	defer span.End()

	_, err := c.breaker.Do(ctx, func() (interface{}, error) {
		target := uploadBase + "/files/" + url.PathEscape(handle) + "?uploadType=media"

		err := c.do(ctx, http.MethodPatch, target, bytes.NewReader(payload), mimeType, nil)
		if err != nil {
			return nil, err
		}

		return nil, nil
	})
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "files.update")
	}

	return nil
}

// create performs the multipart upload that both names the file into the
// app data folder and writes its first content in one call.
func (c *Client) create(ctx context.Context, seed []byte) (string, error) {
	var body bytes.Buffer

	mw := multipart.NewWriter(&body)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")

	metaPart, err := mw.CreatePart(metaHeader)
	if err != nil {
		return "", internal.WrapErrorf(err, internal.ErrorCodeUnknown, "multipart.CreatePart")
	}

	meta := map[string]interface{}{
		"name":    fileName,
		"parents": []string{"appDataFolder"},
	}

	if err := json.NewEncoder(metaPart).Encode(meta); err != nil {
		return "", internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.Encode")
	}

	mediaHeader := textproto.MIMEHeader{}
	mediaHeader.Set("Content-Type", mimeType)

	mediaPart, err := mw.CreatePart(mediaHeader)
	if err != nil {
		return "", internal.WrapErrorf(err, internal.ErrorCodeUnknown, "multipart.CreatePart")
	}

	if _, err := mediaPart.Write(seed); err != nil {
		return "", internal.WrapErrorf(err, internal.ErrorCodeUnknown, "mediaPart.Write")
	}

	if err := mw.Close(); err != nil {
		return "", internal.WrapErrorf(err, internal.ErrorCodeUnknown, "multipart.Close")
	}

	target := uploadBase + "/files?uploadType=multipart&fields=id"
	contentType := "multipart/related; boundary=" + mw.Boundary()

	var created fileResource

	if err := c.do(ctx, http.MethodPost, target, &body, contentType, &created); err != nil {
		return "", err
	}

	return created.ID, nil
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader, contentType string) (*http.Request, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnauthorized, "tokens.Token")
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "http.NewRequest")
	}

	req.Header.Set("Authorization", "Bearer "+token)

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return req, nil
}

func (c *Client) do(ctx context.Context, method, target string, body io.Reader, contentType string, out interface{}) error {
	req, err := c.newRequest(ctx, method, target, body, contentType)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "client.Do")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return internal.NewErrorf(internal.ErrorCodeUnknown, "%s %s: status %d", method, req.URL.Path, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.Decode")
	}

	return nil
}

func newOTELSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer(otelName).Start(ctx, name)
}
