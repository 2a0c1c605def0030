package fetchcache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/aceeric/artcache/impl/helpers"

	"github.com/google/uuid"
)

// StatusError is returned when the upstream answers with a non-success status
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (%s)", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// HTTPFetcher fetches keys over HTTP. Relative keys resolve against the site base URL.
type HTTPFetcher struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPFetcher returns a fetcher for the passed site base URL. An empty base URL means
// every key must be an absolute URL. A nil client means http.DefaultClient.
func NewHTTPFetcher(siteUrl string, client *http.Client) (*HTTPFetcher, error) {
	base, err := helpers.ParseBase(siteUrl)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{base: base, client: client}, nil
}

// Fetch implements the Fetcher interface. Each request carries an X-Request-Id header
// so the upstream access log can be correlated with ours.
func (f *HTTPFetcher) Fetch(ctx context.Context, key string) ([]byte, error) {
	u, err := helpers.ResolveURL(f.base, key)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.New().String())
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{URL: u, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return io.ReadAll(resp.Body)
}
