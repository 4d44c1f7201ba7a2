// Package discovery listens for Tuya LAN announcement broadcasts and
// turns them into AnnouncementRecord events for a Manager to consume.
//
// Devices broadcast a cleartext JSON datagram to the local subnet every
// few seconds on UDP port 6666. Scanner binds that port, decodes each
// datagram with the same frame codec DeviceSession uses (no cipher — the
// announcement is unencrypted), and forwards well-formed records to a
// single registered callback. Malformed datagrams are logged and
// dropped; the scanner holds no per-device state of its own.
package discovery
