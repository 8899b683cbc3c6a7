package netsuite

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suitebridge/netsuite-mcp/internal/oauth"
)

func testClientCreds() oauth.Credentials {
	return oauth.Credentials{
		Account:        "123456_SB1",
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		TokenID:        "tk",
		TokenSecret:    "ts",
	}
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(testClientCreds(), "", 0, zerolog.Nop())
	base, err := url.Parse(srv.URL)
	require.NoError(t, err)
	c.base = base
	return c
}

func TestSuiteQLRequestShape(t *testing.T) {
	var seen *http.Request
	var seenBody []byte
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Clone(context.Background())
		seenBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[],"count":0}`))
	}))

	payload, err := c.SuiteQL(context.Background(), "SELECT 1", 100, 0)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"count":0}`, string(payload))

	require.NotNil(t, seen)
	assert.Equal(t, http.MethodPost, seen.Method)
	assert.Equal(t, "/services/rest/query/v1/suiteql", seen.URL.Path)
	assert.Equal(t, "100", seen.URL.Query().Get("limit"))
	assert.Equal(t, "0", seen.URL.Query().Get("offset"))
	assert.Equal(t, "transient", seen.Header.Get("Prefer"))
	assert.Equal(t, "application/json", seen.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", seen.Header.Get("Accept"))
	assert.JSONEq(t, `{"q":"SELECT 1"}`, string(seenBody))
}

func TestGetRecordReturnsPayloadVerbatim(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/services/rest/record/v1/customer/42", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"id":"42"}`))
	}))

	payload, err := c.GetRecord(context.Background(), "customer", "42", false)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, map[string]any{"id": "42"}, got)
}

func TestGetRecordExpandSubResources(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("expandSubResources"))
		_, _ = w.Write([]byte(`{}`))
	}))

	_, err := c.GetRecord(context.Background(), "salesOrder", "7", true)
	require.NoError(t, err)
}

func TestRecordPathSegmentsEscapedOnce(t *testing.T) {
	var path, rawURI string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		rawURI = r.RequestURI
		_, _ = w.Write([]byte(`{}`))
	}))

	_, err := c.GetRecord(context.Background(), "customer", "a b", false)
	require.NoError(t, err)

	assert.Equal(t, "/services/rest/record/v1/customer/a b", path)
	assert.Contains(t, rawURI, "/customer/a%20b")
	assert.NotContains(t, rawURI, "%25", "segments must not be encoded twice")
}

func TestUpstreamErrorKeepsStatusAndBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))

	_, err := c.SuiteQL(context.Background(), "SELECT 1", 10, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "boom")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "boom", apiErr.Body)
}

func TestCreateRecordReturnsLocationOn204(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/services/rest/record/v1/customer", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"companyName":"Acme"}`, string(body))
		w.Header().Set("Location", "https://x/services/rest/record/v1/customer/99")
		w.WriteHeader(http.StatusNoContent)
	}))

	payload, location, err := c.CreateRecord(context.Background(), "customer", json.RawMessage(`{"companyName":"Acme"}`))
	require.NoError(t, err)
	assert.Equal(t, "null", string(payload))
	assert.Equal(t, "https://x/services/rest/record/v1/customer/99", location)
}

func TestUpdateRecordUsesPatch(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/services/rest/record/v1/customer/42", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	_, _, err := c.UpdateRecord(context.Background(), "customer", "42", json.RawMessage(`{"companyName":"Acme"}`))
	require.NoError(t, err)
}

func TestMetadataPaths(t *testing.T) {
	var paths []string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`{}`))
	}))

	_, err := c.Metadata(context.Background(), "")
	require.NoError(t, err)
	_, err = c.Metadata(context.Background(), "invoice")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/services/rest/record/v1/metadata-catalog",
		"/services/rest/record/v1/metadata-catalog/invoice",
	}, paths)
}

func TestEveryCallIsFreshlySigned(t *testing.T) {
	var headers []string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = append(headers, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))

	for range 2 {
		_, err := c.GetRecord(context.Background(), "customer", "1", false)
		require.NoError(t, err)
	}

	require.Len(t, headers, 2)
	for _, h := range headers {
		assert.True(t, strings.HasPrefix(h, "OAuth "), "authorization header missing")
		assert.Contains(t, h, `realm="123456_SB1"`)
		assert.Contains(t, h, `oauth_signature_method="HMAC-SHA256"`)
	}
	assert.NotEqual(t, headers[0], headers[1], "nonce/signature must differ per call")
}

func TestNonJSONSuccessBodyIsAnError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))

	_, err := c.GetRecord(context.Background(), "customer", "1", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not JSON")
}

func TestAccountDomain(t *testing.T) {
	assert.Equal(t, "123456-sb1.suitetalk.api.netsuite.com", AccountDomain("123456_SB1", ""))
	assert.Equal(t, "acme.example.com", AccountDomain("ACME", "example.com"))
}
