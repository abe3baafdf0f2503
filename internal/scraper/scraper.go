package scraper

import (
	"context"
	"fmt"
	"time"

	"sjsage522/productscraper/helpers"
	"sjsage522/productscraper/logger"
	scrapererrors "sjsage522/productscraper/pkg/errors"
	"sjsage522/productscraper/services/cache"

	"github.com/PuerkitoBio/goquery"
)

// Scraper turns a product page URL into a normalized ScrapedProduct. It only
// holds immutable rule data and is safe for concurrent use.
type Scraper struct {
	fetcher    Fetcher
	extractors []PlatformExtractor
	prices     *PriceNormalizer
	classifier *Classifier
	cacheSvc   cache.CacheService
	blockTime  time.Duration
}

// Option configures a Scraper
type Option func(*Scraper)

// WithCache enables the rate limit cooldown: after a 429/430 the platform is
// not fetched again for blockTime.
func WithCache(cacheSvc cache.CacheService, blockTime time.Duration) Option {
	return func(s *Scraper) {
		s.cacheSvc = cacheSvc
		s.blockTime = blockTime
	}
}

// New creates a scraper. extractors are consulted in order for platform
// detection.
func New(fetcher Fetcher, extractors []PlatformExtractor, prices *PriceNormalizer, classifier *Classifier, opts ...Option) *Scraper {
	s := &Scraper{
		fetcher:    fetcher,
		extractors: extractors,
		prices:     prices,
		classifier: classifier,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromRules loads the rule tables and taxonomy from rulesDir (embedded
// defaults when empty or missing) and builds a scraper around them.
func NewFromRules(fetcher Fetcher, rulesDir string, thresholds Thresholds, opts ...Option) (*Scraper, error) {
	sets, err := LoadRuleSets(rulesDir)
	if err != nil {
		return nil, scrapererrors.NewConfiguration("failed to load rule tables", err)
	}
	extractors, err := CreateExtractors(sets, thresholds)
	if err != nil {
		return nil, scrapererrors.NewConfiguration("failed to create extractors", err)
	}
	classifier, err := LoadClassifier(rulesDir)
	if err != nil {
		return nil, scrapererrors.NewConfiguration("failed to load categories", err)
	}

	prices := NewPriceNormalizer(thresholds.MinPrice, thresholds.MaxPrice)
	return New(fetcher, extractors, prices, classifier, opts...), nil
}

// Scrape fetches url and extracts a product record. Unsupported URLs fail
// before any network activity. Missing fields never fail the call; they are
// reported through sentinels or nil pointers.
func (s *Scraper) Scrape(ctx context.Context, url string) (*ScrapedProduct, error) {
	extractor, ok := s.extractorFor(url)
	if !ok {
		return nil, scrapererrors.NewUnsupportedPlatform(url)
	}
	platform := extractor.Platform()

	start := time.Now()
	body, err := s.fetchWithCache(ctx, platform, url)
	if err != nil {
		return nil, err
	}

	doc, err := s.createDocument(platform, body)
	if err != nil {
		return nil, err
	}

	fields, err := s.extract(extractor, doc)
	if err != nil {
		return nil, err
	}

	product := s.assemble(platform, url, fields)

	s.log(platform).WithContext(ctx).Debug().
		Str("url", url).
		Str("title", product.Title).
		Bool("has_sale_price", product.SalePrice != nil).
		Dur("elapsed", time.Since(start)).
		Msg("Product scraped")

	return product, nil
}

// extract runs the platform extractor, turning a panic on unexpected markup
// into a scrape error.
func (s *Scraper) extract(extractor PlatformExtractor, doc *goquery.Document) (fields RawFields, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = scrapererrors.NewScrape(string(extractor.Platform()), "extraction failed",
				fmt.Errorf("panic: %v", r))
		}
	}()
	return extractor.ExtractFields(doc), nil
}

// assemble normalizes raw fields into the final record
func (s *Scraper) assemble(platform Platform, url string, fields RawFields) *ScrapedProduct {
	title := helpers.CollapseSpaces(fields.Title)
	if title == "" {
		title = TitleNotFound
	}
	description := helpers.CollapseSpaces(fields.Description)
	if description == "" {
		description = DescriptionUnavailable
	}

	product := &ScrapedProduct{
		Title:       title,
		Description: description,
		ImageURL:    normalizeImageURL(fields.ImageURL),
		Platform:    platform,
		ProductURL:  url,
	}

	if v, ok := s.prices.Normalize(fields.SalePriceText); ok {
		product.SalePrice = &v
	}
	if v, ok := s.prices.Normalize(fields.OriginalPriceText); ok {
		product.OriginalPrice = &v
	}

	if pct, ok := ParseDiscount(fields.DiscountText); ok {
		product.Discount = &pct
	} else if product.OriginalPrice != nil && product.SalePrice != nil {
		if pct, ok := ComputeDiscount(*product.OriginalPrice, *product.SalePrice); ok {
			product.Discount = &pct
		}
	}

	classifyTitle := title
	if title == TitleNotFound {
		classifyTitle = ""
	}
	category := s.classifier.Classify(classifyTitle, helpers.CollapseSpaces(fields.CategoryText))
	product.Category = &category

	return product
}

func (s *Scraper) log(platform Platform) *logger.Logger {
	return logger.ForScraper(string(platform))
}
