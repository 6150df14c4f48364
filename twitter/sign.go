// Copyright (c) 2026 BVK Chaitanya

package twitter

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// percentEncode implements the strict RFC 3986 encoding OAuth 1.0a requires;
// url.QueryEscape is close but encodes spaces as '+'.
func percentEncode(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			sb.WriteByte(c)
		case c == '-' || c == '.' || c == '_' || c == '~':
			sb.WriteByte(c)
		default:
			fmt.Fprintf(&sb, "%%%02X", c)
		}
	}
	return sb.String()
}

// signatureBase builds the OAuth signature base string for a request. Only
// the oauth_* parameters participate: the tweet payload is a JSON body, which
// the OAuth 1.0a signature does not cover.
func signatureBase(method string, u *url.URL, params map[string]string) string {
	pairs := make([]string, 0, len(params))
	for k, v := range params {
		pairs = append(pairs, percentEncode(k)+"="+percentEncode(v))
	}
	sort.Strings(pairs)

	base := &url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path}
	return strings.Join([]string{
		strings.ToUpper(method),
		percentEncode(base.String()),
		percentEncode(strings.Join(pairs, "&")),
	}, "&")
}

func signingKey(consumerSecret, accessSecret string) string {
	return percentEncode(consumerSecret) + "&" + percentEncode(accessSecret)
}

func sign(base, key string) string {
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// authorization renders the OAuth header value for a signed request.
func authorization(method string, u *url.URL, creds *Credentials, nonce, timestamp string) string {
	params := map[string]string{
		"oauth_consumer_key":     creds.ConsumerKey,
		"oauth_nonce":            nonce,
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        timestamp,
		"oauth_token":            creds.AccessToken,
		"oauth_version":          "1.0",
	}
	base := signatureBase(method, u, params)
	params["oauth_signature"] = sign(base, signingKey(creds.ConsumerSecret, creds.AccessSecret))

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf(`%s="%s"`, percentEncode(k), percentEncode(params[k])))
	}
	return "OAuth " + strings.Join(pairs, ", ")
}
