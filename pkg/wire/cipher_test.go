package wire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuyalan/tuyalan-go/pkg/wire"
)

const testKey = "0123456789abcdef"

// TestCipher_EncryptDecryptRoundTrip verifies arbitrary JSON survives a
// full encrypt/decrypt cycle unchanged.
func TestCipher_EncryptDecryptRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		plaintext string
	}{
		{name: "short, needs padding", plaintext: `{"1":true}`},
		{name: "exactly one block", plaintext: `{"dps":"123456"}`},
		{name: "spans multiple blocks", plaintext: `{"devId":"abc123","dps":{"1":true,"2":100,"3":"white"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := wire.NewCipher(testKey, wire.DefaultProtocolVersion)
			require.NoError(t, err)

			b64 := c.Encrypt([]byte(tt.plaintext))
			decrypted, err := c.Decrypt(b64)
			require.NoError(t, err)

			// Decrypt returns the padded plaintext; compare the prefix.
			assert.Equal(t, tt.plaintext, string(decrypted[:len(tt.plaintext)]))
		})
	}
}

// TestCipher_PaddingRule verifies the non-canonical padding quirk: a
// plaintext whose length is already a multiple of 16 is left untouched,
// never given a full extra padding block.
func TestCipher_PaddingRule(t *testing.T) {
	c, err := wire.NewCipher(testKey, wire.DefaultProtocolVersion)
	require.NoError(t, err)

	aligned := make([]byte, 32)
	for i := range aligned {
		aligned[i] = 'a'
	}

	b64 := c.Encrypt(aligned)
	decrypted, err := c.Decrypt(b64)
	require.NoError(t, err)

	assert.Len(t, decrypted, 32, "aligned plaintext must not grow by a padding block")
	assert.Equal(t, aligned, decrypted)
}

// TestCipher_Tag verifies the tag is a stable 16-character slice derived
// from the base64 ciphertext, version, and key.
func TestCipher_Tag(t *testing.T) {
	c, err := wire.NewCipher(testKey, "3.1")
	require.NoError(t, err)

	b64 := c.Encrypt([]byte(`{"1":true}`))
	tag := c.Tag(b64)

	assert.Len(t, tag, 16)

	// Tag must be deterministic for identical inputs.
	tag2 := c.Tag(b64)
	assert.Equal(t, tag, tag2)

	// And must change if the ciphertext changes.
	other := c.Encrypt([]byte(`{"1":false}`))
	assert.NotEqual(t, tag, c.Tag(other))
}

func TestNewCipher_InvalidKey(t *testing.T) {
	_, err := wire.NewCipher("tooshort", wire.DefaultProtocolVersion)
	assert.Error(t, err)
}

func TestNewCipher_DefaultsVersion(t *testing.T) {
	c, err := wire.NewCipher(testKey, "")
	require.NoError(t, err)
	assert.Equal(t, wire.DefaultProtocolVersion, c.Version())
}
