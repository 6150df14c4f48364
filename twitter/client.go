// Copyright (c) 2026 BVK Chaitanya

// Package twitter implements the small slice of the Twitter/X v2 API the bot
// needs: posting tweets and verifying credentials, with OAuth 1.0a
// user-context request signing.
package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type Options struct {
	// Hostname is the api endpoint host.
	Hostname string

	HttpClientTimeout time.Duration
}

func (v *Options) setDefaults() {
	if v.Hostname == "" {
		v.Hostname = "api.twitter.com"
	}
	if v.HttpClientTimeout == 0 {
		v.HttpClientTimeout = 10 * time.Second
	}
}

type Client struct {
	opts Options

	creds Credentials

	client *http.Client
}

func New(creds *Credentials, opts *Options) (*Client, error) {
	if err := creds.Check(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &Options{}
	}
	opts.setDefaults()
	c := &Client{
		opts:  *opts,
		creds: *creds,
		client: &http.Client{
			Timeout: opts.HttpClientTimeout,
		},
	}
	return c, nil
}

// StatusError is returned when the api responds with an unexpected http
// status. Body carries the api's error description.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Body)
}

func (c *Client) do(ctx context.Context, method, subpath string, payload, result any) error {
	u := &url.URL{
		Scheme: "https",
		Host:   c.opts.Hostname,
		Path:   subpath,
	}

	var body io.Reader
	if payload != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			return fmt.Errorf("could not json-encode request: %w", err)
		}
		body = &buf
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("could not create %s request: %w", method, err)
	}

	nonce := uuid.New().String()
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	req.Header.Set("Authorization", authorization(method, u, &c.creds, nonce, timestamp))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("could not perform %s request: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("could not json-decode response: %w", err)
		}
	}
	return nil
}

// CreateTweet posts a tweet and returns its id.
func (c *Client) CreateTweet(ctx context.Context, text string) (string, error) {
	request := struct {
		Text string `json:"text"`
	}{
		Text: text,
	}
	var response struct {
		Data struct {
			ID   string `json:"id"`
			Text string `json:"text"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/2/tweets", &request, &response); err != nil {
		return "", fmt.Errorf("could not create tweet: %w", err)
	}
	return response.Data.ID, nil
}

// VerifyCredentials fetches the authenticated account's username.
func (c *Client) VerifyCredentials(ctx context.Context) (string, error) {
	var response struct {
		Data struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/2/users/me", nil, &response); err != nil {
		return "", fmt.Errorf("could not verify credentials: %w", err)
	}
	return response.Data.Username, nil
}
