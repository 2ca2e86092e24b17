package system

import (
	"crypto/subtle"
	"time"

	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/settings"
	"github.com/iesreza/stayhub-backend/apps/models"
	"github.com/iesreza/stayhub-backend/apps/redis"
	"github.com/iesreza/stayhub-backend/lib/response"
)

type Controller struct {
}

func (c Controller) HealthHandler(request *evo.Request) any {
	return response.OK("ok")
}

func (c Controller) UptimeHandler(request *evo.Request) any {
	uptimeData := map[string]any{
		"uptime": int64(time.Now().Sub(StartupTime).Seconds()),
	}
	return response.OK(uptimeData)
}

// AdminMiddleware guards the admin API. When ADMIN.API_TOKEN is configured
// every request must carry it in the X-Admin-Token header; with no token
// configured the API is open, for deployments that terminate auth upstream.
func AdminMiddleware(request *evo.Request) error {
	token := settings.Get("ADMIN.API_TOKEN").String()
	if token == "" {
		return request.Next()
	}
	provided := request.Header("X-Admin-Token")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
		return response.ErrForbidden
	}
	return request.Next()
}

// GetSettings returns all settings, optionally filtered by category
func (c Controller) GetSettings(request *evo.Request) any {
	if category := request.Query("category").String(); category != "" {
		filtered, err := models.GetSettingsByCategory(category)
		if err != nil {
			return response.Error(response.ErrDatabaseError)
		}
		return response.OK(filtered)
	}

	all, err := models.GetAllSettings()
	if err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.OK(all)
}

// UpdateSettings applies a batch of setting changes
func (c Controller) UpdateSettings(request *evo.Request) any {
	var updates map[string]string
	if err := request.BodyParser(&updates); err != nil {
		return response.BadRequest(request, "Invalid request body")
	}
	if err := models.BulkUpdateSettings(updates); err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.Message("Settings updated")
}

// GetSetting returns a single setting by key
func (c Controller) GetSetting(request *evo.Request) any {
	setting, err := models.GetSetting(request.Param("key").String())
	if resp := response.HandleDBError(err, request, "Setting not found", "GetSetting"); resp != nil {
		return resp
	}
	return response.OK(setting)
}

// SetSetting creates or updates a single setting
func (c Controller) SetSetting(request *evo.Request) any {
	var body struct {
		Value    string `json:"value"`
		Type     string `json:"type"`
		Category string `json:"category"`
		Label    string `json:"label"`
	}
	if err := request.BodyParser(&body); err != nil {
		return response.BadRequest(request, "Invalid request body")
	}
	if body.Type == "" {
		body.Type = "string"
	}
	if body.Category == "" {
		body.Category = "general"
	}
	err := models.SetSetting(request.Param("key").String(), body.Value, body.Type, body.Category, body.Label)
	if err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.Message("Setting saved")
}

// DeleteSetting removes a setting by key
func (c Controller) DeleteSetting(request *evo.Request) any {
	if err := models.DeleteSetting(request.Param("key").String()); err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.Message("Setting deleted")
}

// GetRateLimitSettings returns per-endpoint rate limit configuration together
// with Redis availability
func (c Controller) GetRateLimitSettings(request *evo.Request) any {
	return response.OK(map[string]any{
		"redis_available": redis.IsAvailable(),
		"endpoints":       redis.GetRateLimitSettings(),
	})
}

// UpdateRateLimitSetting updates one endpoint's rate limit and notifies other
// instances over NATS
func (c Controller) UpdateRateLimitSetting(request *evo.Request) any {
	key := request.Param("key").String()

	var body struct {
		MaxRequests int  `json:"max_requests"`
		WindowSecs  int  `json:"window_seconds"`
		Enabled     bool `json:"enabled"`
	}
	if err := request.BodyParser(&body); err != nil {
		return response.BadRequest(request, "Invalid request body")
	}
	if body.MaxRequests <= 0 || body.WindowSecs <= 0 {
		return response.BadRequest(request, "max_requests and window_seconds must be positive")
	}

	known := false
	for _, endpoint := range redis.DefaultEndpoints {
		if endpoint.Key == key {
			known = true
			break
		}
	}
	if !known {
		return response.NotFound(request, "Unknown rate limit endpoint")
	}

	if err := redis.SaveRateLimitSetting(key, body.MaxRequests, body.WindowSecs, body.Enabled); err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.Message("Rate limit updated")
}
