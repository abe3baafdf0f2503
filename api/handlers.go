package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"sjsage522/productscraper/logger"
	scrapererrors "sjsage522/productscraper/pkg/errors"
	"sjsage522/productscraper/services/store"
	"sjsage522/productscraper/services/worker"

	"github.com/go-chi/chi/v5"
)

// maxBatchSize caps the number of URLs of one batch request
const maxBatchSize = 20

// Ingester scrapes and catalogues submitted URLs
type Ingester interface {
	Ingest(ctx context.Context, url string) (*store.Product, error)
	IngestBatch(ctx context.Context, urls []string) []worker.Result
}

// Handlers serves the product catalog
type Handlers struct {
	store    store.Store
	ingester Ingester
}

// NewHandlers creates the catalog handlers
func NewHandlers(st store.Store, ingester Ingester) *Handlers {
	return &Handlers{store: st, ingester: ingester}
}

// ScrapeRequest is the body of POST /api/products/scrape
type ScrapeRequest struct {
	URL string `json:"url"`
}

// BatchScrapeRequest is the body of POST /api/products/scrape/batch
type BatchScrapeRequest struct {
	URLs []string `json:"urls"`
}

// BatchResult reports one URL of a batch
type BatchResult struct {
	URL     string         `json:"url"`
	Product *store.Product `json:"product,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Health reports liveness
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// ListProducts returns the catalog, newest first
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.List(r.Context())
	if err != nil {
		h.logError(r, err, "failed to list products")
		h.respondMessage(w, r, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	h.respondJSON(w, r, http.StatusOK, products)
}

// GetProduct returns one product
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		h.respondMessage(w, r, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		h.logError(r, err, "failed to get product")
		h.respondMessage(w, r, http.StatusInternalServerError, "Failed to fetch product")
		return
	}
	h.respondJSON(w, r, http.StatusOK, product)
}

// ScrapeProduct scrapes a URL and adds the product to the catalog
func (h *Handlers) ScrapeProduct(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondMessage(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.ingester.Ingest(r.Context(), req.URL)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, product)
}

// ScrapeBatch scrapes several URLs, reporting each outcome separately
func (h *Handlers) ScrapeBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondMessage(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.URLs) == 0 {
		h.respondMessage(w, r, http.StatusBadRequest, "urls is required")
		return
	}
	if len(req.URLs) > maxBatchSize {
		h.respondMessage(w, r, http.StatusBadRequest, "Too many URLs in one batch")
		return
	}

	results := h.ingester.IngestBatch(r.Context(), req.URLs)

	response := make([]BatchResult, len(results))
	for i, res := range results {
		response[i] = BatchResult{URL: res.URL, Product: res.Product}
		if res.Err != nil {
			_, message := errorStatus(res.Err)
			response[i].Error = message
		}
	}
	h.respondJSON(w, r, http.StatusOK, response)
}

// DeleteProduct removes a product from the catalog
func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.store.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logError(r, err, "failed to delete product")
		h.respondMessage(w, r, http.StatusInternalServerError, "Failed to delete product")
		return
	}
	if !deleted {
		h.respondMessage(w, r, http.StatusNotFound, "Product not found")
		return
	}
	h.respondMessage(w, r, http.StatusOK, "Product deleted successfully")
}

// errorStatus maps an ingestion error to a status and a client-facing message
func errorStatus(err error) (int, string) {
	se, ok := scrapererrors.As(err)
	if !ok || !scrapererrors.IsClientError(err) {
		return http.StatusInternalServerError, "Failed to process product URL"
	}

	switch se.Type {
	case scrapererrors.ErrorTypeUnsupportedPlatform:
		return http.StatusBadRequest, "Unsupported platform. Only Amazon and Flipkart URLs are supported."
	case scrapererrors.ErrorTypeValidation:
		return http.StatusBadRequest, se.Message
	default:
		return http.StatusBadRequest, "Failed to scrape product: " + se.Message
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.logError(r, err, "failed to process product URL")
	}
	if se, ok := scrapererrors.As(err); ok && se.RetryAfter != "" {
		w.Header().Set("Retry-After", strings.TrimSpace(se.RetryAfter))
	}
	h.respondMessage(w, r, status, message)
}

func (h *Handlers) respondMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.respondJSON(w, r, status, messageResponse{Message: message})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logError(r, err, "failed to encode response")
	}
}

func (h *Handlers) logError(r *http.Request, err error, msg string) {
	logger.ForAPI().WithContext(r.Context()).Error().Err(err).Msg(msg)
}
