package store

import (
	"context"
	"errors"
	"time"

	"sjsage522/productscraper/internal/scraper"
)

// ErrNotFound is returned when no product has the requested id
var ErrNotFound = errors.New("product not found")

// Product is a catalogued scrape result
type Product struct {
	ID string `json:"id"`
	scraper.ScrapedProduct
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists catalogued products
type Store interface {
	// List returns every product, newest first
	List(ctx context.Context) ([]Product, error)

	// Get returns one product or ErrNotFound
	Get(ctx context.Context, id string) (*Product, error)

	// Create assigns an id and creation time and stores the product
	Create(ctx context.Context, p scraper.ScrapedProduct) (*Product, error)

	// Delete removes a product, reporting whether it existed
	Delete(ctx context.Context, id string) (bool, error)
}
