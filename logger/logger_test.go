package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf).WithFields(Fields{"component": "scraper", "platform": "amazon"})

	log.Info().Str("url", "https://www.amazon.in/dp/B0TEST").Msg("scraped")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "scraper", entry["component"])
	assert.Equal(t, "amazon", entry["platform"])
	assert.Equal(t, "scraped", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

func TestLoggerWithError(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).WithError(errors.New("test error")).Warn().Msg("fetch failed")

	assert.Contains(t, buf.String(), "test error")
	assert.Contains(t, buf.String(), "fetch failed")
}

func TestLoggerContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf).WithField("request_id", "abc")

	ctx := log.IntoContext(context.Background())
	Nop().WithContext(ctx).Info().Msg("from context")

	assert.Contains(t, buf.String(), `"request_id":"abc"`)
}

func TestWithContextFallsBack(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf)

	log.WithContext(context.Background()).Info().Msg("fallback")

	assert.Contains(t, buf.String(), "fallback")
}
