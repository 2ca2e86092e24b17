package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolvePrefix(t *testing.T) {
	prefix, err := resolvePrefix("")
	assert.NoError(t, err)
	assert.Equal(t, "uploads", prefix)

	prefix, err = resolvePrefix("units")
	assert.NoError(t, err)
	assert.Equal(t, "units", prefix)

	prefix, err = resolvePrefix("units/photos/")
	assert.NoError(t, err)
	assert.Equal(t, "units/photos", prefix)

	_, err = resolvePrefix("../etc")
	assert.Error(t, err)

	_, err = resolvePrefix("/absolute")
	assert.Error(t, err)

	_, err = resolvePrefix("secrets")
	assert.Error(t, err)
}

func TestParseRangeHeaderOpenEndedIsCapped(t *testing.T) {
	total := int64(100 * 1024 * 1024)

	start, end := parseRangeHeader("bytes=0-", total)
	assert.Equal(t, int64(0), start)
	assert.Equal(t, int64(5*1024*1024-1), end)

	start, end = parseRangeHeader("bytes=1000-", total)
	assert.Equal(t, int64(1000), start)
	assert.Equal(t, int64(1000+5*1024*1024-1), end)
}

func TestParseRangeHeaderExplicitIsHonored(t *testing.T) {
	total := int64(100 * 1024 * 1024)

	start, end := parseRangeHeader("bytes=0-99999999", total)
	assert.Equal(t, int64(0), start)
	assert.Equal(t, int64(99999999), end)

	// End past the file size is clamped
	start, end = parseRangeHeader("bytes=0-999999999999", total)
	assert.Equal(t, int64(0), start)
	assert.Equal(t, total-1, end)
}

func TestParseRangeHeaderSuffix(t *testing.T) {
	start, end := parseRangeHeader("bytes=-500", 10000)
	assert.Equal(t, int64(9500), start)
	assert.Equal(t, int64(9999), end)
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, parseDuration("7d"))
	assert.Equal(t, 24*time.Hour, parseDuration("24h"))
	assert.Equal(t, 30*time.Minute, parseDuration("30m"))
	assert.Equal(t, time.Duration(0), parseDuration(""))
	assert.Equal(t, time.Duration(0), parseDuration("soon"))
}

func TestGenerateKeyKeepsExtension(t *testing.T) {
	key := GenerateKey("units", "floor-plan.pdf")
	assert.Contains(t, key, "units/")
	assert.Contains(t, key, ".pdf")
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "/media/units/a.jpg", PublicURL("units/a.jpg"))
	assert.Equal(t, "/media/units/a.jpg", PublicURL("/units/a.jpg"))
}

func TestGetExtensionFromContentType(t *testing.T) {
	assert.Equal(t, ".jpg", getExtensionFromContentType("image/jpeg"))
	assert.Equal(t, ".webp", getExtensionFromContentType("image/webp"))
	assert.Equal(t, ".pdf", getExtensionFromContentType("application/pdf"))
	assert.Equal(t, "", getExtensionFromContentType("application/x-unknown"))
}
