package wire

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// Command is the single command byte carried in a frame's header.
type Command byte

const (
	// CommandGet queries device state.
	CommandGet Command = 0x0A
	// CommandSet pushes new device state.
	CommandSet Command = 0x07
)

var (
	framePrefix = [4]byte{0x00, 0x00, 0x55, 0xAA}
	frameSuffix = [4]byte{0x00, 0x00, 0xAA, 0x55}
)

// headerSize is prefix(4) + reserved(7) + command(1) + length(4).
const headerSize = 16

// Result is one decoded (return_code, data) pair. A prefix or suffix
// mismatch gives ReturnCode 999 with Err set to ErrCorruptFrame. A frame
// whose payload cannot be decrypted or parsed keeps its own ReturnCode
// and has Err set. Otherwise Err is nil and ReturnCode carries the
// device's own return code, which may be non-zero even though Data
// decoded successfully.
type Result struct {
	ReturnCode int32
	Data       json.RawMessage
	Err        error
}

// Encode builds a single frame carrying data for the given command.
//
// For CommandGet, data is marshaled to JSON directly. For CommandSet,
// cipher must be non-nil: data is marshaled to JSON, AES-ECB encrypted
// and base64-encoded per Cipher.Encrypt, and the frame payload becomes
// version || md5_tag || base64_ciphertext.
func Encode(cmd Command, data any, cipher *Cipher) ([]byte, error) {
	var payload []byte

	switch cmd {
	case CommandGet:
		j, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnencodableValue, err)
		}
		payload = j
	case CommandSet:
		if cipher == nil {
			return nil, ErrNoCipher
		}
		j, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnencodableValue, err)
		}
		b64 := cipher.Encrypt(j)
		tag := cipher.Tag(b64)
		payload = make([]byte, 0, len(cipher.Version())+len(tag)+len(b64))
		payload = append(payload, cipher.Version()...)
		payload = append(payload, tag...)
		payload = append(payload, b64...)
	default:
		return nil, ErrUnknownCommand
	}

	// length = return(4) + payload(N) + crc(4) + suffix(4)
	length := uint32(len(payload) + 12)

	frame := make([]byte, 0, headerSize+int(length))
	frame = append(frame, framePrefix[:]...)
	frame = append(frame, make([]byte, 7)...) // reserved
	frame = append(frame, byte(cmd))
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, length)
	frame = append(frame, lenBuf...)
	frame = append(frame, make([]byte, 4)...) // return code, always zero outbound
	frame = append(frame, payload...)
	frame = append(frame, make([]byte, 4)...) // crc, never validated
	frame = append(frame, frameSuffix[:]...)

	return frame, nil
}

// Decode parses as many complete frames as it can find at the front of
// buf, in order. Frames may be concatenated back-to-back in a single
// buffer; each is decoded independently. A prefix/suffix mismatch yields
// a single ErrCorruptFrame result and stops further parsing of buf. A
// trailing incomplete frame (declared length longer than the remaining
// bytes) is silently left unparsed — callers reading a stream should
// retain those bytes and retry once more data has arrived.
func Decode(buf []byte, cipher *Cipher) []Result {
	var results []Result

	for len(buf) > 0 {
		if len(buf) < headerSize {
			return results
		}
		if !bytes.Equal(buf[0:4], framePrefix[:]) {
			results = append(results, Result{ReturnCode: 999, Err: ErrCorruptFrame})
			return results
		}

		cmdByte := buf[11]
		length := binary.BigEndian.Uint32(buf[12:16])
		frameTotal := headerSize + int(length)
		if frameTotal > len(buf) {
			return results
		}

		if !bytes.Equal(buf[frameTotal-4:frameTotal], frameSuffix[:]) {
			results = append(results, Result{ReturnCode: 999, Err: ErrCorruptFrame})
			return results
		}

		region := buf[headerSize : frameTotal-8] // return(4) + payload(N)
		var returnCode int32
		var payload []byte
		if len(region) >= 4 {
			returnCode = int32(binary.BigEndian.Uint32(region[0:4]))
			payload = region[4:]
		}

		results = append(results, decodeOne(returnCode, payload, Command(cmdByte), cipher))

		buf = buf[frameTotal:]
	}

	return results
}

func decodeOne(returnCode int32, payload []byte, cmd Command, cipher *Cipher) Result {
	stripped := bytes.TrimLeft(payload, "\x00")
	if len(stripped) == 0 {
		return Result{ReturnCode: returnCode}
	}

	var jsonBytes []byte
	if cipher != nil && cmd != CommandGet {
		decrypted, err := decryptPayload(stripped, cipher)
		if err != nil {
			return Result{ReturnCode: returnCode, Err: err}
		}
		jsonBytes = decrypted
	} else {
		jsonBytes = stripped
	}

	end := bytes.LastIndexByte(jsonBytes, '}')
	if end < 0 {
		return Result{ReturnCode: returnCode, Err: fmt.Errorf("%w: no closing brace in payload", ErrCorruptFrame)}
	}
	jsonBytes = jsonBytes[:end+1]

	if !json.Valid(jsonBytes) {
		return Result{ReturnCode: returnCode, Err: fmt.Errorf("%w: invalid json payload", ErrCorruptFrame)}
	}

	return Result{ReturnCode: returnCode, Data: json.RawMessage(jsonBytes)}
}

// decryptPayload strips the 19-byte version+md5-tag prefix, base64
// decodes, and AES-ECB decrypts the remainder.
func decryptPayload(data []byte, cipher *Cipher) ([]byte, error) {
	const versionTagLen = 19
	if len(data) <= versionTagLen {
		return nil, fmt.Errorf("%w: encrypted payload too short", ErrCorruptFrame)
	}
	return cipher.Decrypt(data[versionTagLen:])
}
