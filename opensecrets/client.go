// Copyright (c) 2026 BVK Chaitanya

// Package opensecrets implements a read-only client for the OpenSecrets
// independent-expenditures feed, which republishes the 50 most recently
// reported rows from FEC filings.
package opensecrets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/bvk/pacwatch/ctxutil"
	"github.com/bvk/pacwatch/expend"
	"github.com/bvk/pacwatch/gobs"
	"golang.org/x/time/rate"
)

// The feed refuses requests that do not look like they come from a browser.
const (
	userAgent    = "Mozilla/5.0 (Windows; U; Windows NT 5.1; en-US; rv:1.9.0.7) Gecko/2009021910 Firefox/3.0.7"
	acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

type Options struct {
	// Hostname is the feed endpoint host.
	Hostname string

	HttpClientTimeout time.Duration

	// FetchRetryCount and FetchRetryInterval bound the retries around one
	// logical fetch.
	FetchRetryCount    int
	FetchRetryInterval time.Duration
}

func (v *Options) setDefaults() {
	if v.Hostname == "" {
		v.Hostname = "www.opensecrets.org"
	}
	if v.HttpClientTimeout == 0 {
		v.HttpClientTimeout = 30 * time.Second
	}
	if v.FetchRetryCount == 0 {
		v.FetchRetryCount = 10
	}
	if v.FetchRetryInterval == 0 {
		v.FetchRetryInterval = time.Second
	}
}

type Client struct {
	opts Options

	key string

	client *http.Client

	limiter *rate.Limiter
}

// New creates a client for the independent-expenditures feed. The api key
// comes from an OpenSecrets user account.
func New(key string, opts *Options) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("api key cannot be empty")
	}
	if opts == nil {
		opts = &Options{}
	}
	opts.setDefaults()
	c := &Client{
		opts: *opts,
		key:  key,
		client: &http.Client{
			Timeout: opts.HttpClientTimeout,
		},
		limiter: rate.NewLimiter(1, 1),
	}
	return c, nil
}

type attributes struct {
	Cmteid   string `json:"cmteid"`
	Pacshort string `json:"pacshort"`
	Suppopp  string `json:"suppopp"`
	Candname string `json:"candname"`
	District string `json:"district"`
	Amount   string `json:"amount"`
	Note     string `json:"note"`
	Party    string `json:"party"`
	Payee    string `json:"payee"`
	Date     string `json:"date"`
	Origin   string `json:"origin"`
	Source   string `json:"source"`
}

func (a *attributes) sourceRow() *expend.SourceRow {
	return &expend.SourceRow{
		CommitteeID: a.Cmteid,
		PACName:     a.Pacshort,
		Direction:   a.Suppopp,
		Candidate:   a.Candname,
		District:    a.District,
		Amount:      a.Amount,
		Note:        a.Note,
		Party:       a.Party,
		Payee:       a.Payee,
		Date:        a.Date,
		Origin:      a.Origin,
		Source:      a.Source,
	}
}

type indexpResponse struct {
	Response struct {
		Indexp []struct {
			Attributes attributes `json:"@attributes"`
		} `json:"indexp"`
	} `json:"response"`
}

// StatusError is returned when the feed responds with a non-OK http status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http GET returned %d", e.StatusCode)
}

// Expenditures fetches the most recent feed rows, in feed order. Rows missing
// required fields are dropped with a warning. Transient failures are retried
// up to the configured count before reporting an error; a nil error means the
// feed was fetched and parsed successfully.
func (c *Client) Expenditures(ctx context.Context) ([]*gobs.Expenditure, error) {
	endpoint := &url.URL{
		Scheme: "https",
		Host:   c.opts.Hostname,
		Path:   "/api/",
		RawQuery: url.Values{
			"method": {"independentExpend"},
			"apikey": {c.key},
			"output": {"json"},
		}.Encode(),
	}

	var resp indexpResponse
	fetch := func() error {
		return c.httpGetJSON(ctx, endpoint, &resp)
	}
	if err := ctxutil.RetryCount(ctx, c.opts.FetchRetryInterval, c.opts.FetchRetryCount, fetch); err != nil {
		return nil, fmt.Errorf("could not fetch expenditures feed: %w", err)
	}

	rows := make([]*gobs.Expenditure, 0, len(resp.Response.Indexp))
	for _, item := range resp.Response.Indexp {
		v, err := expend.Normalize(item.Attributes.sourceRow())
		if err != nil {
			slog.WarnContext(ctx, "dropping invalid feed row (ignored)", "error", err)
			continue
		}
		rows = append(rows, v)
	}
	return rows, nil
}

func (c *Client) httpGetJSON(ctx context.Context, url *url.URL, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Add("User-Agent", userAgent)
	req.Header.Add("Accept", acceptHeader)
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		slog.ErrorContext(ctx, "http GET is unsuccessful (will retry)", "status", resp.StatusCode)
		return &StatusError{StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		slog.ErrorContext(ctx, "could not decode response to json", "error", err)
		return fmt.Errorf("could not decode feed response: %w", err)
	}
	return nil
}
