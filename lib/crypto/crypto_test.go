package crypto

import (
	"strings"
	"testing"

	"github.com/getevo/evo/v2/lib/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setKey(t *testing.T, key string) {
	t.Helper()
	settings.Set("APP.ENCRYPTION_KEY", key)
	t.Cleanup(func() { settings.Set("APP.ENCRYPTION_KEY", "") })
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	setKey(t, strings.Repeat("k", 32))

	sealed, err := EncryptAES256GCM("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", sealed)
	assert.True(t, IsEncrypted(sealed))

	plain, err := DecryptAES256GCM(sealed)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", plain)
}

func TestEncryptRequiresExactKeySize(t *testing.T) {
	setKey(t, "short")

	_, err := EncryptAES256GCM("secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 bytes")
}

func TestEncryptWithoutKey(t *testing.T) {
	setKey(t, "")

	assert.False(t, KeyConfigured())
	_, err := EncryptAES256GCM("secret")
	assert.Error(t, err)
}

func TestDecryptRejectsTamperedData(t *testing.T) {
	setKey(t, strings.Repeat("k", 32))

	sealed, err := EncryptAES256GCM("secret")
	require.NoError(t, err)

	_, err = DecryptAES256GCM("x" + sealed[1:])
	assert.Error(t, err)
}

func TestIsEncrypted(t *testing.T) {
	assert.False(t, IsEncrypted(""))
	assert.False(t, IsEncrypted("plain secret"))
	assert.False(t, IsEncrypted("dG9vc2hvcnQ="), "short base64 is not sealed output")
}
