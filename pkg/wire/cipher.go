package wire

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// DefaultProtocolVersion is the protocol version string stamped on
// encrypted SET frames when a session doesn't override it.
const DefaultProtocolVersion = "3.1"

// Cipher performs the AES-128-ECB encrypt/decrypt and MD5 integrity-tag
// computation a device's local key is used for. There is no stdlib or
// third-party ECB mode helper in the Go ecosystem (crypto/cipher ships
// CBC/CTR/GCM but not ECB, since ECB is unsuitable for general-purpose
// use) so this wraps a plain block-at-a-time loop over a crypto/aes
// block cipher, grounded directly on aiotuya's TuyaCipher.
type Cipher struct {
	key     string
	version string
	block   cipher.Block
}

// NewCipher builds a Cipher from a 16-byte ASCII local key and a protocol
// version string (e.g. "3.1"). The key must be exactly 16 bytes.
func NewCipher(key, version string) (*Cipher, error) {
	if len(key) != 16 {
		return nil, fmt.Errorf("wire: invalid local key: length %d, want 16", len(key))
	}
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("wire: invalid local key: %w", err)
	}
	if version == "" {
		version = DefaultProtocolVersion
	}
	return &Cipher{key: key, version: version, block: block}, nil
}

// Version returns the protocol version string this cipher stamps on
// encrypted frames.
func (c *Cipher) Version() string {
	return c.version
}

// ecbCrypt runs block-at-a-time ECB encryption or decryption over data,
// whose length must already be a multiple of the cipher's block size.
func ecbCrypt(block cipher.Block, data []byte, encrypt bool) []byte {
	bs := block.BlockSize()
	out := make([]byte, len(data))
	for i := 0; i+bs <= len(data); i += bs {
		if encrypt {
			block.Encrypt(out[i:i+bs], data[i:i+bs])
		} else {
			block.Decrypt(out[i:i+bs], data[i:i+bs])
		}
	}
	return out
}

// pad applies the protocol's padding rule: append (16 - len%16) bytes of
// that same value, UNLESS len is already a multiple of 16, in which case
// nothing is appended. This deliberately departs from canonical PKCS#7
// (which always pads, adding a full block when already aligned) because
// that is what real devices expect; see spec Open Questions.
func pad(data []byte) []byte {
	rem := len(data) % 16
	if rem == 0 {
		return data
	}
	n := 16 - rem
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

// Encrypt AES-ECB-encrypts plaintext (after applying the padding rule)
// and base64-encodes the ciphertext.
func (c *Cipher) Encrypt(plaintext []byte) []byte {
	padded := pad(plaintext)
	ciphertext := ecbCrypt(c.block, padded, true)
	b64 := make([]byte, base64.StdEncoding.EncodedLen(len(ciphertext)))
	base64.StdEncoding.Encode(b64, ciphertext)
	return b64
}

// Decrypt base64-decodes and AES-ECB-decrypts data. The caller is
// responsible for stripping the version+tag prefix first.
func (c *Cipher) Decrypt(data []byte) ([]byte, error) {
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(data)))
	n, err := base64.StdEncoding.Decode(raw, data)
	if err != nil {
		return nil, fmt.Errorf("wire: base64 decode: %w", err)
	}
	raw = raw[:n]
	if len(raw) == 0 || len(raw)%c.block.BlockSize() != 0 {
		return nil, fmt.Errorf("wire: ciphertext length %d not a multiple of block size", len(raw))
	}
	return ecbCrypt(c.block, raw, false), nil
}

// Tag computes the MD5 integrity tag for a base64-encoded ciphertext:
// lower_hex(md5("data=" || b64Cipher || "||lpv=" || version || "||" || key))[8:24].
func (c *Cipher) Tag(b64Cipher []byte) []byte {
	var buf []byte
	buf = append(buf, "data="...)
	buf = append(buf, b64Cipher...)
	buf = append(buf, "||lpv="...)
	buf = append(buf, c.version...)
	buf = append(buf, "||"...)
	buf = append(buf, c.key...)

	sum := md5.Sum(buf)
	full := hex.EncodeToString(sum[:])
	return []byte(full[8:24])
}
