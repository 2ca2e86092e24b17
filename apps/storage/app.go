package storage

import (
	"time"

	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/application"
	"github.com/getevo/evo/v2/lib/log"
	"github.com/iesreza/stayhub-backend/apps/redis"
	"github.com/iesreza/stayhub-backend/apps/system"
)

// App represents the storage application
type App struct{}

var _ application.Application = (*App)(nil)

// Register initializes the S3 client and the media proxy cache
func (App) Register() error {
	if err := Initialize(); err != nil {
		log.Warning("Failed to initialize S3 storage: %v", err)
	}
	if err := InitMediaProxy(); err != nil {
		log.Warning("Failed to initialize media proxy: %v", err)
	}
	return nil
}

// Router registers storage routes. Handlers stream raw bytes so they talk to
// fiber directly instead of going through the response envelope.
func (App) Router() error {
	evo.Use("/api/admin/storage", system.AdminMiddleware)

	router := evo.GetFiber()

	admin := router.Group("/api/admin/storage")
	admin.Use(redis.RateLimitMiddleware("storage.upload"))
	admin.Post("/upload", UploadHandler)
	admin.Get("/objects", ListObjectsHandler)
	admin.Delete("/objects", DeleteObjectHandler)
	admin.Post("/presign/upload", PresignUploadHandler)
	admin.Get("/presign/download", PresignDownloadHandler)
	admin.Post("/multipart/create", CreateMultipartUploadHandler)
	admin.Post("/multipart/sign-part", SignPartHandler)
	admin.Post("/multipart/complete", CompleteMultipartUploadHandler)
	admin.Post("/multipart/abort", AbortMultipartUploadHandler)
	admin.Get("/multipart/parts", ListPartsHandler)
	admin.Get("/cache/stats", GetCacheStatsHandler)
	admin.Delete("/cache", ClearCacheHandler)

	// Public media endpoint, values stored by file and image fields point here
	router.Get("/media/*", redis.RateLimitByIP(600, time.Minute), MediaProxyHandler)

	return nil
}

// WhenReady is called when the application is ready
func (App) WhenReady() error {
	return nil
}

// Name returns the application name
func (App) Name() string {
	return "storage"
}
