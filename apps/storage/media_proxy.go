package storage

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/getevo/evo/v2/lib/log"
	"github.com/getevo/evo/v2/lib/settings"
	"github.com/gofiber/fiber/v2"
	"github.com/iesreza/stayhub-backend/lib/imageutil"
)

var (
	cachePath     string
	cacheEnabled  bool
	cacheDuration time.Duration
	uploadPrefix  string
)

// InitMediaProxy initializes the media proxy disk cache
func InitMediaProxy() error {
	cachePath = settings.Get("S3.CACHE_PATH").String()
	if cachePath == "" {
		cachePath = "./cache/media"
	}

	cacheDurationStr := settings.Get("S3.CACHE_DURATION").String()
	cacheDuration = parseDuration(cacheDurationStr)
	if cacheDuration == 0 {
		cacheDuration = 7 * 24 * time.Hour
	}

	uploadPrefix = settings.Get("S3.UPLOAD_PREFIX").String()
	if uploadPrefix == "" {
		uploadPrefix = "uploads"
	}

	if err := os.MkdirAll(cachePath, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	cacheEnabled = true
	log.Notice("Media proxy initialized: cache=%s, duration=%v, prefix=%s", cachePath, cacheDuration, uploadPrefix)
	return nil
}

// parseDuration parses duration strings like "7d", "24h", "30m"
func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}

	s = strings.TrimSpace(s)

	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0
		}
		return time.Duration(days) * 24 * time.Hour
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// GetUploadPrefix returns the configured upload prefix
func GetUploadPrefix() string {
	if uploadPrefix == "" {
		return "uploads"
	}
	return uploadPrefix
}

// GetCacheDuration returns the configured cache duration
func GetCacheDuration() time.Duration {
	if cacheDuration == 0 {
		return 7 * 24 * time.Hour
	}
	return cacheDuration
}

// MediaProxyHandler serves objects stored for file and image fields, with
// on-the-fly image transformation.
// URL format: /media/{key}?fmt=webp&size=256x-&q=85
func MediaProxyHandler(c *fiber.Ctx) error {
	if !IsEnabled() {
		return c.Status(503).JSON(fiber.Map{
			"error": "S3 storage not enabled",
		})
	}

	path := c.Params("*")
	if path == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "Path is required",
		})
	}

	format := c.Query("fmt", "")   // webp, jpg, png
	sizeStr := c.Query("size", "") // 256x-, -x256, 256x256
	quality := c.Query("q", "85")

	qualityInt, err := strconv.Atoi(quality)
	if err != nil || qualityInt < 1 || qualityInt > 100 {
		qualityInt = 85
	}

	rangeHeader := c.Get("Range")
	isVideo := isVideoPath(path)

	if isVideo && rangeHeader != "" {
		return handleVideoRangeRequest(c, path, rangeHeader)
	}

	cacheKey := generateCacheKey(path, format, sizeStr, qualityInt)

	if cacheEnabled {
		cacheFile := filepath.Join(cachePath, cacheKey)
		if data, contentType, err := readFromCache(cacheFile); err == nil {
			if isVideo {
				c.Set("Accept-Ranges", "bytes")
			}
			c.Set("X-Cache", "HIT")
			c.Set("Cache-Control", "public, max-age=31536000")
			c.Set("Content-Type", contentType)
			return c.Send(data)
		}
	}

	ctx := context.Background()
	data, contentType, err := Download(ctx, path)
	if err != nil {
		log.Error("Failed to download from S3: %v", err)
		return c.Status(404).JSON(fiber.Map{
			"error": "File not found",
		})
	}

	needsTransform := format != "" || sizeStr != ""
	isImage := strings.HasPrefix(contentType, "image/")

	if needsTransform && isImage {
		img, err := imageutil.Decode(data, contentType)
		if err != nil {
			log.Error("Failed to decode image: %v", err)
			// Serve the original when the transform fails
			c.Set("Content-Type", contentType)
			c.Set("Cache-Control", "public, max-age=31536000")
			return c.Send(data)
		}

		if sizeStr != "" {
			img = imageutil.Resize(img, sizeStr)
		}

		outputFormat := format
		if outputFormat == "" {
			outputFormat = getFormatFromContentType(contentType)
		}

		outputData, outputContentType, err := imageutil.Encode(img, outputFormat, qualityInt)
		if err != nil {
			log.Error("Failed to encode image: %v", err)
			c.Set("Content-Type", contentType)
			c.Set("Cache-Control", "public, max-age=31536000")
			return c.Send(data)
		}

		if cacheEnabled {
			cacheFile := filepath.Join(cachePath, cacheKey)
			go saveToCache(cacheFile, outputData)
		}

		c.Set("X-Cache", "MISS")
		c.Set("Cache-Control", "public, max-age=31536000")
		c.Set("Content-Type", outputContentType)
		return c.Send(outputData)
	}

	if cacheEnabled {
		cacheFile := filepath.Join(cachePath, cacheKey)
		go saveToCache(cacheFile, data)
	}

	if isVideo {
		c.Set("Accept-Ranges", "bytes")
	}

	c.Set("X-Cache", "MISS")
	c.Set("Cache-Control", "public, max-age=31536000")
	c.Set("Content-Type", contentType)
	return c.Send(data)
}

// isVideoPath checks if the path is a video file
func isVideoPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".mp4" || ext == ".webm" || ext == ".mov" || ext == ".avi" || ext == ".mkv"
}

// handleVideoRangeRequest handles HTTP Range requests for video seeking
func handleVideoRangeRequest(c *fiber.Ctx, path string, rangeHeader string) error {
	ctx := context.Background()

	info, err := GetObjectInfo(ctx, path)
	if err != nil {
		log.Error("Failed to get object info: %v", err)
		return c.Status(404).JSON(fiber.Map{
			"error": "File not found",
		})
	}

	totalSize := info.Size
	contentType := info.ContentType
	if contentType == "" {
		contentType = getContentTypeFromExt(filepath.Ext(path))
	}

	rangeStart, rangeEnd := parseRangeHeader(rangeHeader, totalSize)

	s3Range := fmt.Sprintf("bytes=%d-%d", rangeStart, rangeEnd)

	body, _, _, _, err := DownloadRange(ctx, path, s3Range)
	if err != nil {
		log.Error("Failed to download range from S3: %v", err)
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to fetch video range",
		})
	}
	defer body.Close()

	// Read the chunk fully before responding so a slow bucket cannot stall
	// the reverse proxy in front of us
	data, err := io.ReadAll(body)
	if err != nil {
		log.Error("Failed to read video data: %v", err)
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to read video data",
		})
	}

	c.Set("Accept-Ranges", "bytes")
	c.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", rangeStart, rangeEnd, totalSize))
	c.Set("Content-Length", strconv.FormatInt(int64(len(data)), 10))
	c.Set("Content-Type", contentType)
	c.Set("Cache-Control", "public, max-age=31536000")

	return c.Status(206).Send(data)
}

// parseRangeHeader parses an HTTP Range header and returns start and end
// bytes. Open-ended ranges (bytes=X-) are capped so a single request cannot
// pull an entire large file; explicit ranges are honored exactly because
// players rely on them for seeking.
func parseRangeHeader(rangeHeader string, totalSize int64) (int64, int64) {
	const maxChunkSize int64 = 5 * 1024 * 1024

	rangeHeader = strings.TrimPrefix(rangeHeader, "bytes=")

	parts := strings.Split(rangeHeader, "-")
	if len(parts) != 2 {
		end := maxChunkSize - 1
		if end >= totalSize {
			end = totalSize - 1
		}
		return 0, end
	}

	var start, end int64

	// Suffix range: "-500" means the last 500 bytes
	if parts[0] == "" {
		if suffix, err := strconv.ParseInt(parts[1], 10, 64); err == nil {
			start = totalSize - suffix
			if start < 0 {
				start = 0
			}
			return start, totalSize - 1
		}
		end = maxChunkSize - 1
		if end >= totalSize {
			end = totalSize - 1
		}
		return 0, end
	}

	var err error
	start, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		start = 0
	}
	if start < 0 {
		start = 0
	}
	if start >= totalSize {
		start = totalSize - 1
	}

	if parts[1] == "" {
		end = start + maxChunkSize - 1
		if end >= totalSize {
			end = totalSize - 1
		}
	} else {
		end, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			end = start + maxChunkSize - 1
		}
		if end >= totalSize {
			end = totalSize - 1
		}
	}

	if start > end {
		start = 0
		end = maxChunkSize - 1
		if end >= totalSize {
			end = totalSize - 1
		}
	}

	return start, end
}

// generateCacheKey generates a unique cache key for the request
func generateCacheKey(path, format, size string, quality int) string {
	key := fmt.Sprintf("%s_%s_%s_%d", path, format, size, quality)
	hash := md5.Sum([]byte(key))
	ext := ".bin"
	if format != "" {
		ext = "." + format
	}
	return fmt.Sprintf("%x%s", hash, ext)
}

// readFromCache reads data from the disk cache
func readFromCache(cacheFile string) ([]byte, string, error) {
	info, err := os.Stat(cacheFile)
	if err != nil {
		return nil, "", err
	}

	if time.Since(info.ModTime()) > cacheDuration {
		os.Remove(cacheFile)
		return nil, "", fmt.Errorf("cache expired")
	}

	data, err := os.ReadFile(cacheFile)
	if err != nil {
		return nil, "", err
	}

	contentType := getContentTypeFromExt(filepath.Ext(cacheFile))

	return data, contentType, nil
}

// saveToCache saves data to the disk cache
func saveToCache(cacheFile string, data []byte) {
	if err := os.MkdirAll(filepath.Dir(cacheFile), 0755); err != nil {
		log.Error("Failed to create cache directory: %v", err)
		return
	}

	if err := os.WriteFile(cacheFile, data, 0644); err != nil {
		log.Error("Failed to write cache file: %v", err)
	}
}

// getFormatFromContentType extracts format from content type
func getFormatFromContentType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "jpg"
	}
}

// getContentTypeFromExt returns content type from file extension
func getContentTypeFromExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	default:
		return "application/octet-stream"
	}
}

// ClearCache clears the media cache
func ClearCache() error {
	if cachePath == "" {
		return nil
	}

	entries, err := os.ReadDir(cachePath)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		os.RemoveAll(filepath.Join(cachePath, entry.Name()))
	}

	return nil
}

// CacheStats describes the media cache
type CacheStats struct {
	TotalFiles int64  `json:"total_files"`
	TotalSize  int64  `json:"total_size"`
	OldestFile string `json:"oldest_file"`
	NewestFile string `json:"newest_file"`
}

// GetCacheStats returns cache statistics
func GetCacheStats() (*CacheStats, error) {
	if cachePath == "" {
		return nil, fmt.Errorf("cache not initialized")
	}

	stats := &CacheStats{}
	var oldestTime, newestTime time.Time

	err := filepath.Walk(cachePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			stats.TotalFiles++
			stats.TotalSize += info.Size()

			modTime := info.ModTime()
			if oldestTime.IsZero() || modTime.Before(oldestTime) {
				oldestTime = modTime
				stats.OldestFile = info.Name()
			}
			if newestTime.IsZero() || modTime.After(newestTime) {
				newestTime = modTime
				stats.NewestFile = info.Name()
			}
		}
		return nil
	})

	return stats, err
}

// GetCacheStatsHandler returns cache statistics
// GET /api/admin/storage/cache/stats
func GetCacheStatsHandler(c *fiber.Ctx) error {
	stats, err := GetCacheStats()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(stats)
}

// ClearCacheHandler clears the cache
// DELETE /api/admin/storage/cache
func ClearCacheHandler(c *fiber.Ctx) error {
	if err := ClearCache(); err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Cache cleared",
	})
}
