package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	scrapererrors "sjsage522/productscraper/pkg/errors"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScraper(t *testing.T, fetcher Fetcher, opts ...Option) *Scraper {
	t.Helper()
	s, err := NewFromRules(fetcher, "", DefaultThresholds(), opts...)
	require.NoError(t, err)
	return s
}

func TestDetectPlatform(t *testing.T) {
	s := newTestScraper(t, &MockFetcher{})

	tests := []struct {
		url  string
		want Platform
		ok   bool
	}{
		{url: "https://www.amazon.in/dp/B0TEST", want: PlatformAmazon, ok: true},
		{url: "https://www.amazon.com/gp/product/B0TEST", want: PlatformAmazon, ok: true},
		{url: "https://www.flipkart.com/samsung-galaxy/p/itm123", want: PlatformFlipkart, ok: true},
		{url: "https://WWW.AMAZON.IN/dp/B0TEST", want: PlatformAmazon, ok: true},
		{url: "https://www.ebay.com/itm/1", ok: false},
		{url: "not a url", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, ok := s.DetectPlatform(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, []Platform{PlatformAmazon, PlatformFlipkart}, s.Platforms())
}

func TestScrapeUnsupportedPlatformNeverFetches(t *testing.T) {
	fetcher := &MockFetcher{body: amazonProductHTML}
	s := newTestScraper(t, fetcher)

	product, err := s.Scrape(context.Background(), "https://www.ebay.com/itm/1")

	assert.Nil(t, product)
	require.Error(t, err)
	assert.True(t, scrapererrors.IsUnsupportedPlatform(err))
	assert.Equal(t, 0, fetcher.Calls())
}

func TestScrapeAmazonEndToEnd(t *testing.T) {
	url := "https://www.amazon.in/Wireless-Mouse/dp/B0TEST"
	fetcher := &MockFetcher{body: amazonProductHTML}
	s := newTestScraper(t, fetcher)

	product, err := s.Scrape(context.Background(), url)
	require.NoError(t, err)

	assert.Equal(t, "Wireless Mouse", product.Title)
	assert.Equal(t, "Ergonomic design with silent clicks and 18 month battery life", product.Description)
	assert.Equal(t, "https://m.media-amazon.com/images/I/mouse.jpg", product.ImageURL)
	require.NotNil(t, product.OriginalPrice)
	assert.Equal(t, "2000.00", *product.OriginalPrice)
	require.NotNil(t, product.SalePrice)
	assert.Equal(t, "1200.00", *product.SalePrice)
	require.NotNil(t, product.Discount)
	assert.Equal(t, 40, *product.Discount)
	require.NotNil(t, product.Category)
	assert.Equal(t, "Computers & Laptops", *product.Category)
	assert.Equal(t, PlatformAmazon, product.Platform)
	assert.Equal(t, url, product.ProductURL)
	assert.Equal(t, []string{url}, fetcher.urls)
}

func TestScrapeFlipkartExplicitDiscountWins(t *testing.T) {
	s := newTestScraper(t, &MockFetcher{body: flipkartProductHTML})

	product, err := s.Scrape(context.Background(), "https://www.flipkart.com/samsung-galaxy-m14/p/itm123")
	require.NoError(t, err)

	assert.Equal(t, "12999.00", *product.SalePrice)
	assert.Equal(t, "17999.00", *product.OriginalPrice)
	// computed would be 28
	assert.Equal(t, 27, *product.Discount)
	assert.Equal(t, "Mobile & Electronics", *product.Category)
	assert.Equal(t, PlatformFlipkart, product.Platform)
}

func TestScrapeMissingFields(t *testing.T) {
	s := newTestScraper(t, &MockFetcher{body: `<html><body><div>Out of stock</div></body></html>`})

	product, err := s.Scrape(context.Background(), "https://www.amazon.com/dp/B0EMPTY")
	require.NoError(t, err)

	assert.Equal(t, TitleNotFound, product.Title)
	assert.Equal(t, DescriptionUnavailable, product.Description)
	assert.Empty(t, product.ImageURL)
	assert.Nil(t, product.SalePrice)
	assert.Nil(t, product.OriginalPrice)
	assert.Nil(t, product.Discount)
	require.NotNil(t, product.Category)
	assert.Equal(t, GeneralCategory, *product.Category)
}

func TestScrapeSalePriceOnlyHasNoDiscount(t *testing.T) {
	html := `<html><body>
		<span id="productTitle">USB-C Charging Cable 1m</span>
		<span class="a-price"><span class="a-offscreen">₹349</span></span>
	</body></html>`
	s := newTestScraper(t, &MockFetcher{body: html})

	product, err := s.Scrape(context.Background(), "https://www.amazon.in/dp/B0CABLE")
	require.NoError(t, err)

	assert.Equal(t, "349.00", *product.SalePrice)
	assert.Nil(t, product.OriginalPrice)
	assert.Nil(t, product.Discount)
}

func TestScrapeFetchErrors(t *testing.T) {
	t.Run("typed fetch error gets platform", func(t *testing.T) {
		fetchErr := scrapererrors.NewFetch("", "Failed to fetch product page: 503", 503, nil)
		s := newTestScraper(t, &MockFetcher{err: fetchErr})

		_, err := s.Scrape(context.Background(), "https://www.flipkart.com/p/itm1")
		require.Error(t, err)
		se, ok := scrapererrors.As(err)
		require.True(t, ok)
		assert.Equal(t, scrapererrors.ErrorTypeFetch, se.Type)
		assert.Equal(t, "flipkart", se.Platform)
		assert.Equal(t, 503, se.StatusCode)
	})

	t.Run("untyped error is wrapped", func(t *testing.T) {
		cause := errors.New("connection reset")
		s := newTestScraper(t, &MockFetcher{err: cause})

		_, err := s.Scrape(context.Background(), "https://www.amazon.in/dp/B0TEST")
		require.Error(t, err)
		assert.True(t, scrapererrors.IsFetch(err))
		assert.ErrorIs(t, err, cause)
	})
}

func TestScrapeRateLimitCooldown(t *testing.T) {
	cacheSvc := NewMockCacheService()
	fetcher := &MockFetcher{err: scrapererrors.NewRateLimit("", 429, "120")}
	s := newTestScraper(t, fetcher, WithCache(cacheSvc, 5*time.Minute))

	_, err := s.Scrape(context.Background(), "https://www.amazon.in/dp/B0TEST")
	require.Error(t, err)
	assert.True(t, scrapererrors.IsRateLimited(err))
	assert.Equal(t, 1, fetcher.Calls())

	value, err := cacheSvc.Get("amazon_rate_limited")
	require.NoError(t, err)
	assert.Equal(t, "300", string(value))

	// blocked without a network call while the flag is set
	_, err = s.Scrape(context.Background(), "https://www.amazon.in/dp/B0OTHER")
	require.Error(t, err)
	assert.True(t, scrapererrors.IsRateLimited(err))
	assert.Equal(t, 1, fetcher.Calls())

	// other platforms are unaffected
	fetcher.err = nil
	fetcher.body = flipkartProductHTML
	_, err = s.Scrape(context.Background(), "https://www.flipkart.com/p/itm1")
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.Calls())

	require.NoError(t, cacheSvc.Delete("amazon_rate_limited"))
	fetcher.body = amazonProductHTML
	_, err = s.Scrape(context.Background(), "https://www.amazon.in/dp/B0TEST")
	require.NoError(t, err)
}

type panickingExtractor struct {
	*RuleExtractor
}

func (p *panickingExtractor) ExtractFields(doc *goquery.Document) RawFields {
	panic("unexpected markup")
}

func TestScrapeRecoversExtractorPanic(t *testing.T) {
	rs := mustRuleSet(t, "platform: shop\nhosts: [shop.test]\n")
	extractor := &panickingExtractor{RuleExtractor: NewRuleExtractor(rs, DefaultThresholds())}
	classifier, err := NewClassifier(nil, "")
	require.NoError(t, err)

	s := New(&MockFetcher{body: "<html></html>"}, []PlatformExtractor{extractor},
		NewPriceNormalizer(1, 5000000), classifier)

	_, err = s.Scrape(context.Background(), "https://shop.test/item/1")
	require.Error(t, err)
	assert.True(t, scrapererrors.IsScrape(err))
	assert.Contains(t, err.Error(), "unexpected markup")
}

func TestScrapeIsStatelessAcrossCalls(t *testing.T) {
	s := newTestScraper(t, &MockFetcher{body: amazonProductHTML})

	first, err := s.Scrape(context.Background(), "https://www.amazon.in/dp/B0TEST")
	require.NoError(t, err)
	second, err := s.Scrape(context.Background(), "https://www.amazon.in/dp/B0TEST")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

type fixedExtractor struct {
	*RuleExtractor
	fields RawFields
}

func (f *fixedExtractor) ExtractFields(doc *goquery.Document) RawFields {
	return f.fields
}

func TestScrapeCollapsesWhitespaceInEveryField(t *testing.T) {
	rs := mustRuleSet(t, "platform: shop\nhosts: [shop.test]\n")
	extractor := &fixedExtractor{
		RuleExtractor: NewRuleExtractor(rs, DefaultThresholds()),
		fields: RawFields{
			Title:       "  Steel \n Water   Bottle ",
			Description: "Keeps drinks cold\n\n for 24 hours",
			ImageURL:    " https://cdn.shop.test/img/\n  bottle.jpg ",
		},
	}
	classifier, err := NewClassifier(nil, "")
	require.NoError(t, err)

	s := New(&MockFetcher{body: "<html></html>"}, []PlatformExtractor{extractor},
		NewPriceNormalizer(1, 5000000), classifier)

	product, err := s.Scrape(context.Background(), "https://shop.test/item/1")
	require.NoError(t, err)
	assert.Equal(t, "Steel Water Bottle", product.Title)
	assert.Equal(t, "Keeps drinks cold for 24 hours", product.Description)
	assert.Equal(t, "https://cdn.shop.test/img/bottle.jpg", product.ImageURL)
}
