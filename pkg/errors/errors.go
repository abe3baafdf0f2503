package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeUnsupportedPlatform represents URLs that match no supported retailer
	ErrorTypeUnsupportedPlatform ErrorType = "unsupported_platform"
	// ErrorTypeFetch represents network or HTTP status failures while fetching a page
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeScrape represents failures while parsing or extracting a page
	ErrorTypeScrape ErrorType = "scrape"
	// ErrorTypeStore represents product store errors
	ErrorTypeStore ErrorType = "store"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScraperError represents a scraper-specific error
type ScraperError struct {
	Type       ErrorType
	Platform   string
	Message    string
	StatusCode int
	RetryAfter string
	Err        error
	Time       time.Time
}

// Error implements the error interface
func (e *ScraperError) Error() string {
	prefix := fmt.Sprintf("[%s]", e.Type)
	if e.Platform != "" {
		prefix += " " + e.Platform + ":"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s - %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s", prefix, e.Message)
}

// Unwrap returns the underlying error
func (e *ScraperError) Unwrap() error {
	return e.Err
}

// RateLimited reports whether the remote site asked us to slow down
func (e *ScraperError) RateLimited() bool {
	return e.Type == ErrorTypeFetch &&
		(e.StatusCode == http.StatusTooManyRequests || e.StatusCode == 430)
}

// New creates a new ScraperError
func New(errType ErrorType, platform, message string, err error) *ScraperError {
	return &ScraperError{
		Type:     errType,
		Platform: platform,
		Message:  message,
		Err:      err,
		Time:     time.Now(),
	}
}

// NewUnsupportedPlatform creates an error for a URL outside the host allowlist
func NewUnsupportedPlatform(url string) *ScraperError {
	return New(ErrorTypeUnsupportedPlatform, "",
		"Unsupported platform. Only Amazon and Flipkart URLs are supported: "+url, nil)
}

// NewFetch creates a new fetch error. statusCode is 0 for transport failures.
func NewFetch(platform, message string, statusCode int, err error) *ScraperError {
	e := New(ErrorTypeFetch, platform, message, err)
	e.StatusCode = statusCode
	return e
}

// NewRateLimit creates a fetch error for a 429-style response
func NewRateLimit(platform string, statusCode int, retryAfter string) *ScraperError {
	message := "rate limited"
	if retryAfter != "" {
		message += "; retry after " + retryAfter
	}
	e := NewFetch(platform, message, statusCode, nil)
	e.RetryAfter = retryAfter
	return e
}

// NewScrape creates a new scrape error
func NewScrape(platform, message string, err error) *ScraperError {
	return New(ErrorTypeScrape, platform, message, err)
}

// NewStore creates a new store error
func NewStore(message string, err error) *ScraperError {
	return New(ErrorTypeStore, "", message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(platform, message string, err error) *ScraperError {
	return New(ErrorTypePublisher, platform, message, err)
}

// NewValidation creates a new validation error
func NewValidation(message string) *ScraperError {
	return New(ErrorTypeValidation, "", message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScraperError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// As returns the first ScraperError in err's chain
func As(err error) (*ScraperError, bool) {
	var se *ScraperError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

func isType(err error, t ErrorType) bool {
	se, ok := As(err)
	return ok && se.Type == t
}

// IsUnsupportedPlatform reports whether err is an unsupported platform error
func IsUnsupportedPlatform(err error) bool { return isType(err, ErrorTypeUnsupportedPlatform) }

// IsFetch reports whether err is a fetch error
func IsFetch(err error) bool { return isType(err, ErrorTypeFetch) }

// IsScrape reports whether err is a scrape error
func IsScrape(err error) bool { return isType(err, ErrorTypeScrape) }

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool { return isType(err, ErrorTypeValidation) }

// IsRateLimited reports whether err is a rate limited fetch error
func IsRateLimited(err error) bool {
	se, ok := As(err)
	return ok && se.RateLimited()
}

// IsClientError reports whether err should be surfaced as a 400-class failure:
// bad input or an unreachable target page.
func IsClientError(err error) bool {
	se, ok := As(err)
	if !ok {
		return false
	}
	switch se.Type {
	case ErrorTypeUnsupportedPlatform, ErrorTypeValidation, ErrorTypeFetch, ErrorTypeScrape:
		return true
	default:
		return false
	}
}
