// Package oauth produces OAuth 1.0a Authorization headers for SuiteTalk REST
// requests using token-based authentication (HMAC-SHA256).
package oauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Credentials holds the long-lived token-based authentication values. They are
// read once at startup and never mutated. Empty values are allowed; signing
// still produces a header, the upstream just rejects it.
type Credentials struct {
	Account        string
	ConsumerKey    string
	ConsumerSecret string
	TokenID        string
	TokenSecret    string
}

// Signer computes a fresh Authorization header per request. Safe for
// concurrent use: all fields are read-only after construction.
type Signer struct {
	creds Credentials

	// Seams for deterministic tests.
	now   func() time.Time
	nonce func() string
}

func NewSigner(creds Credentials) *Signer {
	return &Signer{
		creds: creds,
		now:   time.Now,
		nonce: newNonce,
	}
}

func newNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Header returns the Authorization header value for a single request. A new
// nonce and timestamp are generated on every call; signatures are never
// reused. The realm parameter carries the account id as configured and does
// not participate in the signature.
func (s *Signer) Header(method string, u *url.URL) string {
	oauthParams := map[string]string{
		"oauth_consumer_key":     s.creds.ConsumerKey,
		"oauth_nonce":            s.nonce(),
		"oauth_signature_method": "HMAC-SHA256",
		"oauth_timestamp":        strconv.FormatInt(s.now().Unix(), 10),
		"oauth_token":            s.creds.TokenID,
		"oauth_version":          "1.0",
	}

	base := baseString(method, u, oauthParams)
	key := percentEncode(s.creds.ConsumerSecret) + "&" + percentEncode(s.creds.TokenSecret)
	oauthParams["oauth_signature"] = sign(base, key)

	keys := make([]string, 0, len(oauthParams))
	for k := range oauthParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("OAuth ")
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=\"%s\", ", k, percentEncode(oauthParams[k]))
	}
	fmt.Fprintf(&b, "realm=\"%s\"", s.creds.Account)
	return b.String()
}

// baseString builds the OAuth 1.0a signature base string. Query-string
// parameters of u join the oauth_* parameters in the normalized parameter
// string; the base URL keeps scheme://host/path only.
func baseString(method string, u *url.URL, oauthParams map[string]string) string {
	pairs := make([]string, 0, len(oauthParams)+4)
	for k, v := range oauthParams {
		pairs = append(pairs, percentEncode(k)+"="+percentEncode(v))
	}
	for k, vs := range u.Query() {
		for _, v := range vs {
			pairs = append(pairs, percentEncode(k)+"="+percentEncode(v))
		}
	}
	sort.Strings(pairs)

	baseURL := strings.ToLower(u.Scheme) + "://" + strings.ToLower(stripDefaultPort(u)) + u.EscapedPath()
	return strings.ToUpper(method) + "&" + percentEncode(baseURL) + "&" + percentEncode(strings.Join(pairs, "&"))
}

func stripDefaultPort(u *url.URL) string {
	host := u.Host
	switch {
	case u.Scheme == "https" && strings.HasSuffix(host, ":443"):
		return strings.TrimSuffix(host, ":443")
	case u.Scheme == "http" && strings.HasSuffix(host, ":80"):
		return strings.TrimSuffix(host, ":80")
	}
	return host
}

func sign(base, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// percentEncode implements RFC 5849 §3.6 encoding: RFC 3986 unreserved
// characters pass through, everything else becomes uppercase %XX.
func percentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') ||
			c == '-' || c == '.' || c == '_' || c == '~' {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}
