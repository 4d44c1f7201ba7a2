// Package manager orchestrates device discovery, classification, and
// session lifecycle. A Manager receives decoded announcements from a
// discovery.Scanner, looks each device_id up in a persistence.KeyStore,
// and keeps exactly one live device.Session per known device: a generic
// raw_dps_mode probe while the device's type is unknown, replaced by a
// typed session once classification succeeds.
package manager
