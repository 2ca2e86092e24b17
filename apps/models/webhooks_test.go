package models

import (
	"strings"
	"testing"

	"github.com/getevo/evo/v2/lib/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEncryptionKey(t *testing.T, key string) {
	t.Helper()
	settings.Set("APP.ENCRYPTION_KEY", key)
	t.Cleanup(func() { settings.Set("APP.ENCRYPTION_KEY", "") })
}

func TestWebhookBeforeSaveEncryptsSecret(t *testing.T) {
	setEncryptionKey(t, strings.Repeat("k", 32))

	hook := Webhook{Secret: "hunter2"}
	require.NoError(t, hook.BeforeSave(nil))

	assert.NotEqual(t, "hunter2", hook.Secret)
	assert.Equal(t, "hunter2", hook.SigningSecret())

	// Saving again must not double-encrypt
	once := hook.Secret
	require.NoError(t, hook.BeforeSave(nil))
	assert.Equal(t, once, hook.Secret)
}

func TestWebhookBeforeSaveWithoutKeyKeepsPlaintext(t *testing.T) {
	setEncryptionKey(t, "")

	hook := Webhook{Secret: "hunter2"}
	require.NoError(t, hook.BeforeSave(nil))
	assert.Equal(t, "hunter2", hook.Secret)
	assert.Equal(t, "hunter2", hook.SigningSecret())
}

func TestWebhookBeforeSaveAbortsOnEncryptionFailure(t *testing.T) {
	setEncryptionKey(t, "wrong size")

	hook := Webhook{Secret: "hunter2"}
	err := hook.BeforeSave(nil)
	require.Error(t, err, "a configured but broken key must not persist plaintext")
	assert.Equal(t, "hunter2", hook.Secret)
}

func TestWebhookIsSubscribedTo(t *testing.T) {
	hook := Webhook{EventFieldGroupCreated: true}
	assert.True(t, hook.IsSubscribedTo(WebhookEventFieldGroupCreated))
	assert.False(t, hook.IsSubscribedTo(WebhookEventUnitCreated))
	assert.True(t, hook.IsSubscribedTo(WebhookEventWebhookTest), "test events always pass")

	hook.EventAll = true
	assert.True(t, hook.IsSubscribedTo(WebhookEventUnitCreated))
}
