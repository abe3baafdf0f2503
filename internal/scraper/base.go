package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	scrapererrors "sjsage522/productscraper/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// rateLimitKey is the cache key that blocks a platform while set
func rateLimitKey(platform Platform) string {
	return string(platform) + "_rate_limited"
}

// fetchWithCache fetches a page unless the platform is cooling down after a
// rate limited response. A new rate limited response starts the cooldown.
func (s *Scraper) fetchWithCache(ctx context.Context, platform Platform, url string) (io.Reader, error) {
	key := rateLimitKey(platform)

	if s.cacheSvc != nil {
		if _, err := s.cacheSvc.Get(key); err == nil {
			return nil, scrapererrors.NewRateLimit(string(platform), http.StatusTooManyRequests,
				fmt.Sprintf("%d", s.blockTime/time.Second))
		}
	}

	body, err := s.fetcher.Fetch(ctx, url)
	if err == nil {
		return body, nil
	}

	se, ok := scrapererrors.As(err)
	if !ok {
		return nil, scrapererrors.NewFetch(string(platform), "failed to fetch product page", 0, err)
	}
	if se.Platform == "" {
		se.Platform = string(platform)
	}

	if se.RateLimited() && s.cacheSvc != nil && s.blockTime > 0 {
		seconds := fmt.Sprintf("%d", s.blockTime/time.Second)
		if setErr := s.cacheSvc.Set(key, []byte(seconds), s.blockTime); setErr != nil {
			s.log(platform).Warn().Err(setErr).Msg("Failed to set rate limit cooldown")
		} else {
			s.log(platform).Warn().Str("block_time", s.blockTime.String()).Msg("Rate limited, cooling down")
		}
	}
	return nil, se
}

// createDocument creates a goquery document from a reader
func (s *Scraper) createDocument(platform Platform, reader io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, scrapererrors.NewScrape(string(platform), "failed to parse product page", err)
	}
	return doc, nil
}

// DetectPlatform matches url against the host substrings of every rule set,
// in rule set order. It never touches the network.
func (s *Scraper) DetectPlatform(url string) (Platform, bool) {
	extractor, ok := s.extractorFor(url)
	if !ok {
		return "", false
	}
	return extractor.Platform(), true
}

func (s *Scraper) extractorFor(url string) (PlatformExtractor, bool) {
	lower := strings.ToLower(url)
	for _, extractor := range s.extractors {
		for _, host := range extractor.Hosts() {
			if strings.Contains(lower, strings.ToLower(host)) {
				return extractor, true
			}
		}
	}
	return nil, false
}

// Platforms lists the supported platforms in detection order
func (s *Scraper) Platforms() []Platform {
	platforms := make([]Platform, 0, len(s.extractors))
	for _, extractor := range s.extractors {
		platforms = append(platforms, extractor.Platform())
	}
	return platforms
}
