package helpers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	scrapererrors "sjsage522/productscraper/pkg/errors"

	"golang.org/x/net/html/charset"
)

// maxBodySize caps how much of a product page is read into memory
const maxBodySize = 10 << 20

// HTTPFetcher issues page GETs with a static browser-like header set
type HTTPFetcher struct {
	client  *http.Client
	headers http.Header
}

// NewHTTPFetcher creates a fetcher. A nil client gets a default one with the
// given timeout.
func NewHTTPFetcher(client *http.Client, timeout time.Duration, userAgent, acceptLanguage string) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	headers := http.Header{}
	headers.Set("User-Agent", userAgent)
	headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8")
	headers.Set("Accept-Language", acceptLanguage)
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Pragma", "no-cache")
	headers.Set("Upgrade-Insecure-Requests", "1")

	return &HTTPFetcher{client: client, headers: headers}
}

// Fetch sends an HTTP GET request, converts the response body to UTF-8
// (if needed), and returns it as an io.Reader. Failures are fetch errors
// carrying the HTTP status when there is one.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.Reader, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, scrapererrors.NewFetch("", "failed to create request", 0, err)
	}
	req.Header = f.headers.Clone()

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, scrapererrors.NewFetch("", "failed to fetch URL", 0, err)
	}
	defer resp.Body.Close()

	// Check for rate limiting
	if slices.Contains([]int{http.StatusTooManyRequests, 430}, resp.StatusCode) {
		return nil, scrapererrors.NewRateLimit("", resp.StatusCode, resp.Header.Get("Retry-After"))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, scrapererrors.NewFetch("",
			fmt.Sprintf("Failed to fetch product page: %d", resp.StatusCode), resp.StatusCode, nil)
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, scrapererrors.NewFetch("", "failed to read response body", resp.StatusCode, err)
	}

	// Determine the encoding from Content-Type header and body content
	encoding, name, _ := charset.DetermineEncoding(bodyBytes, resp.Header.Get("Content-Type"))
	if strings.EqualFold(name, "utf-8") {
		return bytes.NewReader(bodyBytes), nil
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, encoding.NewDecoder().Reader(bytes.NewReader(bodyBytes))); err != nil {
		return nil, scrapererrors.NewFetch("", "failed to read converted UTF-8 body", resp.StatusCode, err)
	}

	return &buf, nil
}
