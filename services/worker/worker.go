package worker

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	"sjsage522/productscraper/internal/scraper"
	"sjsage522/productscraper/logger"
	scrapererrors "sjsage522/productscraper/pkg/errors"
	"sjsage522/productscraper/services/publisher"
	"sjsage522/productscraper/services/store"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Scraper is the part of the extraction pipeline the worker drives
type Scraper interface {
	DetectPlatform(url string) (scraper.Platform, bool)
	Scrape(ctx context.Context, url string) (*scraper.ScrapedProduct, error)
}

// Options tunes outbound load
type Options struct {
	// MaxConcurrent bounds in-flight scrapes of one batch
	MaxConcurrent int
	// FetchesPerSecond paces requests to each platform; zero disables pacing
	FetchesPerSecond float64
}

// Result is the outcome of one URL of a batch
type Result struct {
	URL     string
	Product *store.Product
	Err     error
}

// Worker validates submitted URLs, scrapes them, stores the products and
// announces them to the publisher
type Worker struct {
	scraper   Scraper
	store     store.Store
	publisher publisher.Publisher
	opts      Options

	mu       sync.Mutex
	limiters map[scraper.Platform]*rate.Limiter
}

// NewWorker creates a new worker. pub may be nil when no stream is
// configured.
func NewWorker(s Scraper, st store.Store, pub publisher.Publisher, opts Options) *Worker {
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	return &Worker{
		scraper:   s,
		store:     st,
		publisher: pub,
		opts:      opts,
		limiters:  make(map[scraper.Platform]*rate.Limiter),
	}
}

// Ingest scrapes one URL and catalogues the result
func (w *Worker) Ingest(ctx context.Context, rawURL string) (*store.Product, error) {
	rawURL = strings.TrimSpace(rawURL)
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	platform, ok := w.scraper.DetectPlatform(rawURL)
	if !ok {
		return nil, scrapererrors.NewUnsupportedPlatform(rawURL)
	}

	log := logger.ForWorker().WithFields(logger.Fields{"platform": platform, "url": rawURL})

	if err := w.limiter(platform).Wait(ctx); err != nil {
		return nil, scrapererrors.NewFetch(string(platform), "request cancelled", 0, err)
	}

	start := time.Now()
	scraped, err := w.scraper.Scrape(ctx, rawURL)
	if err != nil {
		log.Warn().Err(err).Msg("Scrape failed")
		return nil, err
	}

	product, err := w.store.Create(ctx, *scraped)
	if err != nil {
		log.Error().Err(err).Msg("Failed to store product")
		return nil, err
	}

	w.publish(log, product)

	log.Info().
		Str("id", product.ID).
		Dur("elapsed", time.Since(start)).
		Msg("Product catalogued")

	return product, nil
}

// IngestBatch ingests urls concurrently. Results keep input order and one
// failure never stops the others.
func (w *Worker) IngestBatch(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))

	var g errgroup.Group
	g.SetLimit(w.opts.MaxConcurrent)

	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			product, err := w.Ingest(ctx, u)
			results[i] = Result{URL: u, Product: product, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	w.trimStreams()
	return results
}

// StartStreamTrimmer trims the publisher's streams every interval until ctx
// is done
func (w *Worker) StartStreamTrimmer(ctx context.Context, interval time.Duration) {
	if w.publisher == nil || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.trimStreams()
		}
	}
}

func (w *Worker) publish(log *logger.Logger, product *store.Product) {
	if w.publisher == nil {
		return
	}

	data, err := json.Marshal(product)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode product event")
		return
	}

	if err := w.publisher.Publish(string(product.Platform), data); err != nil {
		log.Error().Err(err).Msg("Failed to publish product event")
	}
}

func (w *Worker) trimStreams() {
	if w.publisher == nil {
		return
	}
	if err := w.publisher.TrimStreams(); err != nil {
		logger.LogError("StreamTrimming", err, "Failed to trim streams")
	}
}

// limiter returns the token bucket of a platform, creating it on first use
func (w *Worker) limiter(platform scraper.Platform) *rate.Limiter {
	w.mu.Lock()
	defer w.mu.Unlock()

	l, ok := w.limiters[platform]
	if !ok {
		limit := rate.Inf
		if w.opts.FetchesPerSecond > 0 {
			limit = rate.Limit(w.opts.FetchesPerSecond)
		}
		l = rate.NewLimiter(limit, 1)
		w.limiters[platform] = l
	}
	return l
}

func validateURL(rawURL string) error {
	if rawURL == "" {
		return scrapererrors.NewValidation("URL is required")
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return scrapererrors.NewValidation("Invalid URL: " + rawURL)
	}
	return nil
}
