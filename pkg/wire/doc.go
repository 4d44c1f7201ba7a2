// Package wire implements the Tuya-compatible LAN frame codec: the
// bespoke magic-byte framing, the AES-128-ECB payload cipher, and the
// MD5-based integrity tag carried on encrypted SET frames.
//
// # Frame layout
//
// All sizes are big-endian. A frame on the wire looks like:
//
//	prefix   4  00 00 55 AA
//	reserved 7  00 x 7
//	command  1  0x0A GET, 0x07 SET
//	length   4  length of everything from "return" onward
//	return   4  32-bit return code (device -> host only, zero otherwise)
//	payload  N  see below
//	crc      4  written as zero, never validated on decode
//	suffix   4  00 00 AA 55
//
// # Payload shape
//
// Outbound GET frames carry a cleartext JSON object. Outbound SET frames
// carry `version || md5_tag || base64(AES-ECB(key, pad(json)))`, where
// pad is applied only when the plaintext length is not already a multiple
// of 16 (see Cipher.Encrypt). Inbound frames are decrypted the same way
// when a Cipher is configured and the command byte isn't GET.
//
// # Concatenated frames
//
// Multiple frames can arrive back-to-back in a single read. Decode keeps
// consuming frames out of the buffer until it runs out of bytes, returning
// one Result per frame it managed to parse.
package wire
