// Copyright (c) 2026 BVK Chaitanya

package twitter

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"strings"
	"testing"
)

func TestPercentEncode(t *testing.T) {
	cases := map[string]string{
		"Hello Ladies + Plus, a signed OAuth request!": "Hello%20Ladies%20%2B%20Plus%2C%20a%20signed%20OAuth%20request%21",
		"abcABC123-._~": "abcABC123-._~",
		"":              "",
		"a/b?c=d&e":     "a%2Fb%3Fc%3Dd%26e",
	}
	for in, want := range cases {
		if got := percentEncode(in); got != want {
			t.Fatalf("wanted %q, got %q", want, got)
		}
	}
}

func TestSignatureBase(t *testing.T) {
	u := &url.URL{Scheme: "https", Host: "api.twitter.com", Path: "/2/tweets"}
	params := map[string]string{
		"oauth_consumer_key":     "ck",
		"oauth_nonce":            "n",
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        "1318622958",
		"oauth_token":            "tok",
		"oauth_version":          "1.0",
	}
	want := "POST&https%3A%2F%2Fapi.twitter.com%2F2%2Ftweets&" +
		"oauth_consumer_key%3Dck" +
		"%26oauth_nonce%3Dn" +
		"%26oauth_signature_method%3DHMAC-SHA1" +
		"%26oauth_timestamp%3D1318622958" +
		"%26oauth_token%3Dtok" +
		"%26oauth_version%3D1.0"
	if got := signatureBase("POST", u, params); got != want {
		t.Fatalf("wanted %q, got %q", want, got)
	}
}

func TestAuthorization(t *testing.T) {
	creds := &Credentials{
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		AccessToken:    "tok",
		AccessSecret:   "ts",
	}
	u := &url.URL{Scheme: "https", Host: "api.twitter.com", Path: "/2/tweets"}
	header := authorization("POST", u, creds, "nonce", "1318622958")

	if !strings.HasPrefix(header, "OAuth ") {
		t.Fatalf("wanted an OAuth header, got %q", header)
	}
	for _, part := range []string{
		`oauth_consumer_key="ck"`,
		`oauth_nonce="nonce"`,
		`oauth_signature_method="HMAC-SHA1"`,
		`oauth_timestamp="1318622958"`,
		`oauth_token="tok"`,
		`oauth_version="1.0"`,
		`oauth_signature="`,
	} {
		if !strings.Contains(header, part) {
			t.Fatalf("wanted %s in header, got %q", part, header)
		}
	}

	// The signature is deterministic for fixed nonce and timestamp.
	if again := authorization("POST", u, creds, "nonce", "1318622958"); again != header {
		t.Fatalf("wanted a deterministic header, got %q and %q", header, again)
	}
}

var testingCreds *Credentials

func checkCredentials() bool {
	if testingCreds != nil {
		return true
	}
	data, err := os.ReadFile("twitter-keys.json")
	if err != nil {
		return false
	}
	s := new(Credentials)
	if err := json.Unmarshal(data, s); err != nil {
		return false
	}
	testingCreds = s
	return true
}

func TestVerifyCredentialsLive(t *testing.T) {
	if !checkCredentials() {
		t.Skip("no keys")
		return
	}

	c, err := New(testingCreds, nil)
	if err != nil {
		t.Fatal(err)
	}
	username, err := c.VerifyCredentials(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("authenticated as @%s", username)
}
