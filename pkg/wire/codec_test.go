package wire_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuyalan/tuyalan-go/pkg/wire"
)

// TestEncodeDecode_GetRoundTrip verifies a cleartext GET frame decodes
// back to the payload it was built from.
func TestEncodeDecode_GetRoundTrip(t *testing.T) {
	payload := wire.GetPayload{DevID: "abc123", GwID: "abc123"}

	frame, err := wire.Encode(wire.CommandGet, payload, nil)
	require.NoError(t, err)

	results := wire.Decode(frame, nil)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.EqualValues(t, 0, results[0].ReturnCode)

	var got wire.GetPayload
	require.NoError(t, json.Unmarshal(results[0].Data, &got))
	assert.Equal(t, payload, got)
}

// TestEncodeDecode_SetRoundTrip verifies an encrypted SET frame decodes
// back to the original dps payload given the same key.
func TestEncodeDecode_SetRoundTrip(t *testing.T) {
	cipher, err := wire.NewCipher(testKey, wire.DefaultProtocolVersion)
	require.NoError(t, err)

	payload := wire.SetPayload{
		DevID: "abc123",
		UID:   "",
		T:     "1700000000",
		Dps:   map[string]any{"1": true},
	}

	frame, err := wire.Encode(wire.CommandSet, payload, cipher)
	require.NoError(t, err)

	results := wire.Decode(frame, cipher)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.EqualValues(t, 0, results[0].ReturnCode)

	var got wire.SetPayload
	require.NoError(t, json.Unmarshal(results[0].Data, &got))
	assert.Equal(t, payload, got)
}

// TestDecode_ConcatenatedFrames verifies two frames arriving back to
// back in a single read both decode, in order.
func TestDecode_ConcatenatedFrames(t *testing.T) {
	a := wire.GetPayload{DevID: "a", GwID: "a"}
	b := wire.GetPayload{DevID: "b", GwID: "b"}

	frameA, err := wire.Encode(wire.CommandGet, a, nil)
	require.NoError(t, err)
	frameB, err := wire.Encode(wire.CommandGet, b, nil)
	require.NoError(t, err)

	buf := append(append([]byte{}, frameA...), frameB...)
	results := wire.Decode(buf, nil)
	require.Len(t, results, 2)

	var gotA, gotB wire.GetPayload
	require.NoError(t, json.Unmarshal(results[0].Data, &gotA))
	require.NoError(t, json.Unmarshal(results[1].Data, &gotB))
	assert.Equal(t, a, gotA)
	assert.Equal(t, b, gotB)
}

// TestDecode_CorruptPrefix verifies a mangled prefix yields a single
// (999, ErrCorruptFrame) result and stops parsing the rest of the buffer.
func TestDecode_CorruptPrefix(t *testing.T) {
	frame, err := wire.Encode(wire.CommandGet, wire.GetPayload{DevID: "a"}, nil)
	require.NoError(t, err)
	frame[0] = 0xFF

	results := wire.Decode(frame, nil)
	require.Len(t, results, 1)
	assert.EqualValues(t, 999, results[0].ReturnCode)
	assert.ErrorIs(t, results[0].Err, wire.ErrCorruptFrame)
}

// TestDecode_CorruptPrefixStopsFurtherParsing verifies a corrupt frame
// at the front of a concatenated buffer discards everything after it,
// rather than attempting to resynchronize.
func TestDecode_CorruptPrefixStopsFurtherParsing(t *testing.T) {
	good, err := wire.Encode(wire.CommandGet, wire.GetPayload{DevID: "a"}, nil)
	require.NoError(t, err)
	bad, err := wire.Encode(wire.CommandGet, wire.GetPayload{DevID: "b"}, nil)
	require.NoError(t, err)
	bad[0] = 0xFF

	buf := append(append([]byte{}, bad...), good...)
	results := wire.Decode(buf, nil)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, wire.ErrCorruptFrame)
}

// TestDecode_IncompleteFrameLeftForNextRead verifies a truncated trailing
// frame is silently dropped rather than erroring, since a stream reader
// may simply not have the rest yet.
func TestDecode_IncompleteFrameLeftForNextRead(t *testing.T) {
	frame, err := wire.Encode(wire.CommandGet, wire.GetPayload{DevID: "a"}, nil)
	require.NoError(t, err)

	results := wire.Decode(frame[:len(frame)-5], nil)
	assert.Empty(t, results)
}

// TestDecode_LeadingZeroPadding verifies leading 0x00 padding in the
// payload region is stripped before JSON parsing, as real devices pad.
func TestDecode_LeadingZeroPadding(t *testing.T) {
	frame, err := wire.Encode(wire.CommandGet, wire.GetPayload{DevID: "a", GwID: "a"}, nil)
	require.NoError(t, err)

	// Insert extra zero padding into the payload region and grow the
	// declared length to match, mirroring what some devices transmit.
	const headerSize = 16
	padded := make([]byte, 0, len(frame)+4)
	padded = append(padded, frame[:headerSize+4]...) // header + return code
	padded = append(padded, 0x00, 0x00, 0x00, 0x00)   // extra padding
	padded = append(padded, frame[headerSize+4:]...)

	lengthField := padded[12:16]
	length := uint32(lengthField[0])<<24 | uint32(lengthField[1])<<16 | uint32(lengthField[2])<<8 | uint32(lengthField[3])
	length += 4
	padded[12] = byte(length >> 24)
	padded[13] = byte(length >> 16)
	padded[14] = byte(length >> 8)
	padded[15] = byte(length)

	results := wire.Decode(padded, nil)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	var got wire.GetPayload
	require.NoError(t, json.Unmarshal(results[0].Data, &got))
	assert.Equal(t, "a", got.DevID)
}

func TestEncode_SetWithoutCipherFails(t *testing.T) {
	_, err := wire.Encode(wire.CommandSet, wire.SetPayload{}, nil)
	assert.ErrorIs(t, err, wire.ErrNoCipher)
}
