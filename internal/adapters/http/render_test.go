package http_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	handlers "github.com/tododash/core/internal/adapters/http"
)

func TestShortenTruncates(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	assert.Equal("short", handlers.Shorten("short", 25, false))
	assert.Equal("exactly-ten", handlers.Shorten("exactly-ten", 11, false))
	assert.Equal("a very lon…", handlers.Shorten("a very long task title", 10, false))
	assert.Equal("trimmed", handlers.Shorten("  trimmed  ", 25, false))
}

func TestShortenZeroMaxLengthDisablesTruncation(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	long := strings.Repeat("x", 200)
	assert.Equal(long, handlers.Shorten(long, 0, false))
}

func TestShortenCountsRunesNotBytes(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	got := handlers.Shorten("äöüäöüäöüäöü", 6, false)
	assert.Equal("äöüäöü…", got)
}

func TestShortenWrapsIntoLines(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	got := handlers.Shorten("buy milk and also some bread", 10, true)
	for _, line := range strings.Split(got, "\n") {
		assert.LessOrEqual(len(line), 10, "line %q too long", line)
	}
	assert.Equal("buy milk and also some bread", strings.ReplaceAll(got, "\n", " "))
}

func TestShortenWrapKeepsShortTitleIntact(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	assert.Equal("buy milk", handlers.Shorten("buy milk", 25, true))
}
