// Package netsuite dispatches SuiteTalk REST calls: it shapes the target URL
// and body for each logical operation, signs the request, and normalizes the
// response into JSON or an APIError. Every operation is one stateless HTTP
// round trip; nothing is cached or retried.
package netsuite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/suitebridge/netsuite-mcp/internal/oauth"
	"github.com/suitebridge/netsuite-mcp/internal/redact"
)

const (
	// DefaultAPIHost is the SuiteTalk REST domain suffix; the account id is
	// prepended as a subdomain.
	DefaultAPIHost = "suitetalk.api.netsuite.com"

	// DefaultTimeout bounds a single round trip. No per-call override.
	DefaultTimeout = 60 * time.Second

	recordPath   = "/services/rest/record/v1"
	suiteqlPath  = "/services/rest/query/v1/suiteql"
	metadataPath = "/services/rest/record/v1/metadata-catalog"
)

// APIError is any non-2xx upstream response. The raw body is preserved
// verbatim so upstream diagnostics (SuiteQL syntax errors, permission
// failures) reach the caller intact.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("netsuite HTTP %d: %s", e.Status, e.Body)
}

// AccountDomain maps an account id to its SuiteTalk host: lowercased, with
// underscores replaced by hyphens (e.g. "123456_SB1" -> "123456-sb1.<host>").
func AccountDomain(account, apiHost string) string {
	if apiHost == "" {
		apiHost = DefaultAPIHost
	}
	sub := strings.ToLower(strings.ReplaceAll(account, "_", "-"))
	return sub + "." + apiHost
}

// Client issues signed SuiteTalk REST requests. Safe for concurrent use; all
// fields are read-only after construction.
type Client struct {
	base   *url.URL
	signer *oauth.Signer
	client *http.Client
	log    zerolog.Logger
	red    *redact.Redactor
}

func NewClient(creds oauth.Credentials, apiHost string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base:   &url.URL{Scheme: "https", Host: AccountDomain(creds.Account, apiHost)},
		signer: oauth.NewSigner(creds),
		client: &http.Client{Timeout: timeout},
		log:    log,
		red:    redact.Default(),
	}
}

// SuiteQL runs an arbitrary SuiteQL query. Limit and offset are passed
// through to the upstream unvalidated.
func (c *Client) SuiteQL(ctx context.Context, query string, limit, offset int) (json.RawMessage, error) {
	body, err := json.Marshal(struct {
		Q string `json:"q"`
	}{Q: query})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	u := c.endpoint(suiteqlPath)
	u.RawQuery = q.Encode()
	payload, _, err := c.do(ctx, http.MethodPost, u, body, true)
	return payload, err
}

// GetRecord fetches a single record, optionally expanding sublists and
// subrecords.
func (c *Client) GetRecord(ctx context.Context, recordType, id string, expandSubResources bool) (json.RawMessage, error) {
	u := c.endpoint(recordPath, recordType, id)
	if expandSubResources {
		u.RawQuery = url.Values{"expandSubResources": []string{"true"}}.Encode()
	}
	payload, _, err := c.do(ctx, http.MethodGet, u, nil, false)
	return payload, err
}

// CreateRecord POSTs a new record. SuiteTalk answers 204 with a Location
// header pointing at the created record; the header value is returned
// alongside the (possibly null) body.
func (c *Client) CreateRecord(ctx context.Context, recordType string, body json.RawMessage) (json.RawMessage, string, error) {
	payload, hdr, err := c.do(ctx, http.MethodPost, c.endpoint(recordPath, recordType), body, false)
	if err != nil {
		return nil, "", err
	}
	return payload, hdr.Get("Location"), nil
}

// UpdateRecord PATCHes an existing record.
func (c *Client) UpdateRecord(ctx context.Context, recordType, id string, body json.RawMessage) (json.RawMessage, string, error) {
	payload, hdr, err := c.do(ctx, http.MethodPatch, c.endpoint(recordPath, recordType, id), body, false)
	if err != nil {
		return nil, "", err
	}
	return payload, hdr.Get("Location"), nil
}

// Metadata fetches the record metadata catalog, or a single record type's
// entry when recordType is non-empty.
func (c *Client) Metadata(ctx context.Context, recordType string) (json.RawMessage, error) {
	u := c.endpoint(metadataPath)
	if recordType != "" {
		u = c.endpoint(metadataPath, recordType)
	}
	payload, _, err := c.do(ctx, http.MethodGet, u, nil, false)
	return payload, err
}

// endpoint joins caller-supplied segments onto a fixed service path. Each
// segment is escaped exactly once: JoinPath stores the escaped form in
// RawPath and the decoded form in Path, so URL.String does not encode again.
func (c *Client) endpoint(path string, segments ...string) *url.URL {
	elems := make([]string, 0, len(segments)+1)
	elems = append(elems, path)
	for _, s := range segments {
		elems = append(elems, url.PathEscape(s))
	}
	return c.base.JoinPath(elems...)
}

// do performs the single HTTP round trip shared by every operation. Each call
// signs the request fresh; signatures are never reused.
func (c *Client) do(ctx context.Context, method string, u *url.URL, body []byte, transient bool) (json.RawMessage, http.Header, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", c.signer.Header(method, u))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if transient {
		req.Header.Set("Prefer", "transient")
	}

	if e := c.log.Debug(); e.Enabled() {
		e.Str("method", method).
			Str("url", u.String()).
			RawJSON("body", emptyToNull(c.red.Apply(body))).
			Msg("netsuite request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("netsuite request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}

	c.log.Debug().Str("method", method).Str("path", u.Path).Int("status", resp.StatusCode).Msg("netsuite response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}

	trimmed := bytes.TrimSpace(respBody)
	if len(trimmed) == 0 {
		return json.RawMessage("null"), resp.Header, nil
	}
	if !json.Valid(trimmed) {
		return nil, nil, fmt.Errorf("netsuite HTTP %d: response is not JSON: %s", resp.StatusCode, trimmed)
	}
	return json.RawMessage(trimmed), resp.Header, nil
}

func emptyToNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}
