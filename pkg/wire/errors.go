package wire

import "errors"

// Sentinel errors returned by Decode and Encode. Callers match them with
// errors.Is; a prefix/suffix mismatch additionally carries the return
// code 999, surfaced as the ReturnCode field of the Result that holds it.
var (
	// ErrCorruptFrame indicates the prefix or suffix magic bytes did not
	// match, in which case parsing of the buffer stops. Wrapped, it also
	// marks a frame whose encrypted payload was too short, or whose
	// payload had no closing brace or was not valid JSON; parsing then
	// continues with the next frame.
	ErrCorruptFrame = errors.New("wire: corrupt frame")

	// ErrUnknownCommand indicates Encode was asked for a command other
	// than GET or SET.
	ErrUnknownCommand = errors.New("wire: unknown command")

	// ErrUnencodableValue indicates the payload could not be marshaled
	// to JSON.
	ErrUnencodableValue = errors.New("wire: unencodable value")

	// ErrNoCipher indicates a SET frame was requested without a Cipher.
	ErrNoCipher = errors.New("wire: no cipher configured for SET frame")
)
