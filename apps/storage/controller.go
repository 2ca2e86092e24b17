package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/getevo/evo/v2/lib/log"
	"github.com/getevo/evo/v2/lib/settings"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// DefaultMaxUploadMB caps direct uploads; larger files go through the
// multipart flow.
const DefaultMaxUploadMB = 25

// allowedPrefixes are the key namespaces uploads may target. Unit photos and
// documents land under units/, property type assets under properties/.
var allowedPrefixes = map[string]bool{
	"units":      true,
	"properties": true,
	"fields":     true,
}

// resolvePrefix validates a requested key prefix and falls back to the
// configured default.
func resolvePrefix(prefix string) (string, error) {
	if prefix == "" {
		return GetUploadPrefix(), nil
	}
	if strings.Contains(prefix, "..") || strings.HasPrefix(prefix, "/") {
		return "", fmt.Errorf("invalid prefix")
	}
	root := strings.SplitN(prefix, "/", 2)[0]
	if !allowedPrefixes[root] && root != GetUploadPrefix() {
		return "", fmt.Errorf("prefix %q is not allowed", root)
	}
	return strings.TrimSuffix(prefix, "/"), nil
}

// UploadResponse is returned after a successful upload. URL is the media
// proxy path that file and image fields store as their value.
type UploadResponse struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// UploadHandler handles direct multipart form uploads
// POST /api/admin/storage/upload
func UploadHandler(c *fiber.Ctx) error {
	if !IsEnabled() {
		return c.Status(503).JSON(fiber.Map{"error": "S3 storage not enabled"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Multipart field 'file' is required"})
	}

	maxMB := settings.Get("S3.MAX_UPLOAD_MB").Int64()
	if maxMB <= 0 {
		maxMB = DefaultMaxUploadMB
	}
	if fileHeader.Size > maxMB*1024*1024 {
		return c.Status(413).JSON(fiber.Map{
			"error": fmt.Sprintf("File exceeds the %dMB direct upload limit, use the multipart flow", maxMB),
		})
	}

	prefix, err := resolvePrefix(c.FormValue("prefix"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = getContentTypeFromExt(filepath.Ext(fileHeader.Filename))
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error("[Storage:Upload] Failed to open uploaded file: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to read uploaded file"})
	}
	defer file.Close()

	ext := filepath.Ext(fileHeader.Filename)
	if ext == "" {
		ext = getExtensionFromContentType(contentType)
	}
	key := fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), ext)

	if err := UploadReader(c.Context(), key, file, contentType, fileHeader.Size); err != nil {
		log.Error("[Storage:Upload] Failed to upload %s: %v", key, err)
		return c.Status(500).JSON(fiber.Map{"error": "Upload failed"})
	}

	log.Info("[Storage:Upload] Stored %s (%d bytes)", key, fileHeader.Size)

	return c.JSON(UploadResponse{
		Key:         key,
		URL:         PublicURL(key),
		Size:        fileHeader.Size,
		ContentType: contentType,
	})
}

// ListObjectsHandler lists stored objects under a prefix
// GET /api/admin/storage/objects?prefix=units
func ListObjectsHandler(c *fiber.Ctx) error {
	if !IsEnabled() {
		return c.Status(503).JSON(fiber.Map{"error": "S3 storage not enabled"})
	}

	prefix, err := resolvePrefix(c.Query("prefix"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	objects, err := List(c.Context(), prefix+"/")
	if err != nil {
		log.Error("[Storage:ListObjects] Failed to list %s: %v", prefix, err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to list objects"})
	}

	return c.JSON(fiber.Map{
		"prefix":  prefix,
		"objects": objects,
		"count":   len(objects),
	})
}

// DeleteObjectHandler removes a stored object
// DELETE /api/admin/storage/objects?key=units/xxx.jpg
func DeleteObjectHandler(c *fiber.Ctx) error {
	if !IsEnabled() {
		return c.Status(503).JSON(fiber.Map{"error": "S3 storage not enabled"})
	}

	key := c.Query("key")
	if key == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Key query parameter is required"})
	}

	exists, err := Exists(c.Context(), key)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to check object"})
	}
	if !exists {
		return c.Status(404).JSON(fiber.Map{"error": "Object not found"})
	}

	if err := Delete(c.Context(), key); err != nil {
		log.Error("[Storage:DeleteObject] Failed to delete %s: %v", key, err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete object"})
	}

	log.Info("[Storage:DeleteObject] Deleted %s", key)
	return c.JSON(fiber.Map{"success": true})
}

// CreateMultipartRequest represents a request to create a multipart upload
type CreateMultipartRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Prefix      string `json:"prefix"` // e.g. "units", "properties"
}

// CreateMultipartResponse represents the response for multipart upload creation
type CreateMultipartResponse struct {
	UploadID string `json:"uploadId"`
	Key      string `json:"key"`
}

// CreateMultipartUploadHandler handles the creation of a multipart upload
func CreateMultipartUploadHandler(c *fiber.Ctx) error {
	if !IsEnabled() {
		return c.Status(503).JSON(fiber.Map{"error": "S3 storage not enabled"})
	}

	var req CreateMultipartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Filename == "" || req.ContentType == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Filename and contentType are required"})
	}

	prefix, err := resolvePrefix(req.Prefix)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	ext := filepath.Ext(req.Filename)
	key := fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), ext)

	session, err := CreateMultipartUpload(c.Context(), key, req.ContentType)
	if err != nil {
		log.Error("[Storage:CreateMultipart] Failed to create multipart upload: %v", err)
		return c.Status(500).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to create multipart upload: %v", err),
		})
	}

	log.Info("[Storage:CreateMultipart] Created multipart upload: key=%s, uploadId=%s", session.Key, session.UploadID)

	return c.JSON(CreateMultipartResponse{
		UploadID: session.UploadID,
		Key:      session.Key,
	})
}

// SignPartRequest represents a request to sign a part for upload
type SignPartRequest struct {
	Key        string `json:"key"`
	UploadID   string `json:"uploadId"`
	PartNumber int32  `json:"partNumber"`
}

// SignPartResponse represents the response with a presigned URL for part upload
type SignPartResponse struct {
	URL string `json:"url"`
}

// SignPartHandler handles signing a part for multipart upload
func SignPartHandler(c *fiber.Ctx) error {
	if !IsEnabled() {
		return c.Status(503).JSON(fiber.Map{"error": "S3 storage not enabled"})
	}

	var req SignPartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Key == "" || req.UploadID == "" || req.PartNumber < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Key, uploadId, and partNumber (>= 1) are required"})
	}

	url, err := GetPresignedUploadPartURL(c.Context(), req.Key, req.UploadID, req.PartNumber)
	if err != nil {
		log.Error("[Storage:SignPart] Failed to sign part: %v", err)
		return c.Status(500).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to sign part: %v", err),
		})
	}

	return c.JSON(SignPartResponse{URL: url})
}

// CompleteMultipartRequest represents a request to complete a multipart upload
type CompleteMultipartRequest struct {
	Key      string     `json:"key"`
	UploadID string     `json:"uploadId"`
	Parts    []PartInfo `json:"parts"`
}

// CompleteMultipartUploadHandler handles completing a multipart upload
func CompleteMultipartUploadHandler(c *fiber.Ctx) error {
	if !IsEnabled() {
		return c.Status(503).JSON(fiber.Map{"error": "S3 storage not enabled"})
	}

	var req CompleteMultipartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Key == "" || req.UploadID == "" || len(req.Parts) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Key, uploadId, and parts are required"})
	}

	if err := CompleteMultipartUpload(c.Context(), req.Key, req.UploadID, req.Parts); err != nil {
		log.Error("[Storage:CompleteMultipart] Failed to complete: %v", err)
		return c.Status(500).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to complete multipart upload: %v", err),
		})
	}

	log.Info("[Storage:CompleteMultipart] Completed multipart upload: key=%s, parts=%d", req.Key, len(req.Parts))

	return c.JSON(fiber.Map{
		"key":     req.Key,
		"url":     PublicURL(req.Key),
		"success": true,
	})
}

// AbortMultipartRequest represents a request to abort a multipart upload
type AbortMultipartRequest struct {
	Key      string `json:"key"`
	UploadID string `json:"uploadId"`
}

// AbortMultipartUploadHandler handles aborting a multipart upload
func AbortMultipartUploadHandler(c *fiber.Ctx) error {
	if !IsEnabled() {
		return c.Status(503).JSON(fiber.Map{"error": "S3 storage not enabled"})
	}

	var req AbortMultipartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Key == "" || req.UploadID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Key and uploadId are required"})
	}

	if err := AbortMultipartUpload(c.Context(), req.Key, req.UploadID); err != nil {
		log.Error("[Storage:AbortMultipart] Failed to abort: %v", err)
		return c.Status(500).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to abort multipart upload: %v", err),
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// ListPartsHandler handles listing parts of a multipart upload
func ListPartsHandler(c *fiber.Ctx) error {
	if !IsEnabled() {
		return c.Status(503).JSON(fiber.Map{"error": "S3 storage not enabled"})
	}

	key := c.Query("key")
	uploadID := c.Query("uploadId")

	if key == "" || uploadID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Key and uploadId query parameters are required"})
	}

	parts, err := ListParts(c.Context(), key, uploadID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to list parts: %v", err),
		})
	}

	return c.JSON(fiber.Map{"parts": parts})
}

// PresignUploadRequest represents a request for a presigned upload URL
type PresignUploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Prefix      string `json:"prefix"`
}

// PresignUploadResponse represents the response with a presigned upload URL
type PresignUploadResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// PresignUploadHandler generates a presigned URL so the browser can upload
// directly to the bucket without proxying through the API
func PresignUploadHandler(c *fiber.Ctx) error {
	if !IsEnabled() {
		return c.Status(503).JSON(fiber.Map{"error": "S3 storage not enabled"})
	}

	var req PresignUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Filename == "" || req.ContentType == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Filename and contentType are required"})
	}

	prefix, err := resolvePrefix(req.Prefix)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	ext := filepath.Ext(req.Filename)
	if ext == "" {
		ext = getExtensionFromContentType(req.ContentType)
	}
	key := fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), ext)

	presignClient := NewPresignClient()
	if presignClient == nil {
		return c.Status(503).JSON(fiber.Map{"error": "S3 presign client not available"})
	}

	url, err := presignClient.GenerateUploadURL(c.Context(), key, req.ContentType, 1*time.Hour)
	if err != nil {
		log.Error("[Storage:PresignUpload] Failed to generate presigned URL: %v", err)
		return c.Status(500).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to generate presigned URL: %v", err),
		})
	}

	return c.JSON(PresignUploadResponse{
		URL: url,
		Key: key,
	})
}

// PresignDownloadHandler generates a presigned download URL for a stored
// object, for clients that need direct bucket access to large files
// GET /api/admin/storage/presign/download?key=units/xxx.pdf
func PresignDownloadHandler(c *fiber.Ctx) error {
	if !IsEnabled() {
		return c.Status(503).JSON(fiber.Map{"error": "S3 storage not enabled"})
	}

	key := c.Query("key")
	if key == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Key query parameter is required"})
	}

	presignClient := NewPresignClient()
	if presignClient == nil {
		return c.Status(503).JSON(fiber.Map{"error": "S3 presign client not available"})
	}

	url, err := presignClient.GenerateDownloadURL(c.Context(), key, PresignedURLExpiry)
	if err != nil {
		log.Error("[Storage:PresignDownload] Failed to generate presigned URL: %v", err)
		return c.Status(500).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to generate presigned URL: %v", err),
		})
	}

	return c.JSON(fiber.Map{
		"url":        url,
		"key":        key,
		"expires_in": int(PresignedURLExpiry.Seconds()),
	})
}

// getExtensionFromContentType returns a file extension for a content type
func getExtensionFromContentType(contentType string) string {
	contentType = strings.ToLower(contentType)
	switch {
	case strings.Contains(contentType, "jpeg") || strings.Contains(contentType, "jpg"):
		return ".jpg"
	case strings.Contains(contentType, "png"):
		return ".png"
	case strings.Contains(contentType, "gif"):
		return ".gif"
	case strings.Contains(contentType, "webp"):
		return ".webp"
	case strings.Contains(contentType, "svg"):
		return ".svg"
	case strings.Contains(contentType, "pdf"):
		return ".pdf"
	case strings.Contains(contentType, "mp4"):
		return ".mp4"
	case strings.Contains(contentType, "webm"):
		return ".webm"
	default:
		return ""
	}
}
