package models

import (
	"time"

	"github.com/getevo/restify"
	"github.com/iesreza/stayhub-backend/lib/crypto"
	"gorm.io/gorm"
)

// Webhook represents an outbound webhook subscription. Schema changes and
// committed unit values are broadcast so external systems (channel managers,
// search indexers) can react without polling.
type Webhook struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	URL         string `gorm:"size:500;not null" json:"url"`
	Secret      string `gorm:"size:255" json:"-"` // Hidden from JSON responses for security
	Enabled     bool   `gorm:"default:1" json:"enabled"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// Event subscriptions - boolean flags for each event type
	EventAll                    bool `gorm:"default:0" json:"event_all"`
	EventFieldDefinitionCreated bool `gorm:"default:0" json:"event_field_definition_created"`
	EventFieldDefinitionUpdated bool `gorm:"default:0" json:"event_field_definition_updated"`
	EventFieldDefinitionDeleted bool `gorm:"default:0" json:"event_field_definition_deleted"`
	EventFieldGroupCreated      bool `gorm:"default:0" json:"event_field_group_created"`
	EventFieldGroupUpdated      bool `gorm:"default:0" json:"event_field_group_updated"`
	EventFieldGroupDeleted      bool `gorm:"default:0" json:"event_field_group_deleted"`
	EventUnitCreated            bool `gorm:"default:0" json:"event_unit_created"`
	EventUnitValuesCommitted    bool `gorm:"default:0" json:"event_unit_values_committed"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	restify.API
}

// BeforeSave encrypts the shared secret at rest. Without an encryption key
// the secret is stored as-is, matching deployments that predate encryption.
// With a key configured, an encryption failure aborts the save; the secret
// must never land in the database as plaintext.
func (w *Webhook) BeforeSave(tx *gorm.DB) error {
	if w.Secret == "" || crypto.IsEncrypted(w.Secret) {
		return nil
	}
	if !crypto.KeyConfigured() {
		return nil
	}
	encrypted, err := crypto.EncryptAES256GCM(w.Secret)
	if err != nil {
		return err
	}
	w.Secret = encrypted
	return nil
}

// SigningSecret returns the plaintext secret used for the Authorization
// header on deliveries.
func (w *Webhook) SigningSecret() string {
	if w.Secret == "" {
		return ""
	}
	if crypto.IsEncrypted(w.Secret) {
		if plain, err := crypto.DecryptAES256GCM(w.Secret); err == nil {
			return plain
		}
	}
	return w.Secret
}

// IsSubscribedTo checks if the webhook is subscribed to a specific event
func (w *Webhook) IsSubscribedTo(event string) bool {
	// If subscribed to all events, return true
	if w.EventAll {
		return true
	}

	// Test events always pass through
	if event == WebhookEventWebhookTest {
		return true
	}

	switch event {
	case WebhookEventFieldDefinitionCreated:
		return w.EventFieldDefinitionCreated
	case WebhookEventFieldDefinitionUpdated:
		return w.EventFieldDefinitionUpdated
	case WebhookEventFieldDefinitionDeleted:
		return w.EventFieldDefinitionDeleted
	case WebhookEventFieldGroupCreated:
		return w.EventFieldGroupCreated
	case WebhookEventFieldGroupUpdated:
		return w.EventFieldGroupUpdated
	case WebhookEventFieldGroupDeleted:
		return w.EventFieldGroupDeleted
	case WebhookEventUnitCreated:
		return w.EventUnitCreated
	case WebhookEventUnitValuesCommitted:
		return w.EventUnitValuesCommitted
	default:
		return false
	}
}

// WebhookDelivery represents a webhook delivery attempt
type WebhookDelivery struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	WebhookID uint   `gorm:"not null;index;fk:webhooks" json:"webhook_id"`
	Event     string `gorm:"size:100;not null" json:"event"`
	Success   bool   `gorm:"not null" json:"success"`

	// Request details for debugging
	RequestURL     string `gorm:"size:500" json:"request_url,omitempty"`
	RequestBody    string `gorm:"type:text" json:"request_body,omitempty"`
	RequestHeaders string `gorm:"type:text" json:"request_headers,omitempty"`

	// Response details
	StatusCode int    `gorm:"default:0" json:"status_code"`
	Response   string `gorm:"type:text" json:"response,omitempty"`

	// Duration in milliseconds
	DurationMs int64     `gorm:"default:0" json:"duration_ms"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	Webhook Webhook `gorm:"foreignKey:WebhookID;references:ID" json:"webhook,omitempty"`

	restify.API
}

// WebhookEvents defines available webhook event types
const (
	WebhookEventFieldDefinitionCreated = "field_definition.created"
	WebhookEventFieldDefinitionUpdated = "field_definition.updated"
	WebhookEventFieldDefinitionDeleted = "field_definition.deleted"
	WebhookEventFieldGroupCreated      = "field_group.created"
	WebhookEventFieldGroupUpdated      = "field_group.updated"
	WebhookEventFieldGroupDeleted      = "field_group.deleted"
	WebhookEventUnitCreated            = "unit.created"
	WebhookEventUnitValuesCommitted    = "unit.values_committed"
	WebhookEventWebhookTest            = "webhook.test"
	WebhookEventAll                    = "*"
)
