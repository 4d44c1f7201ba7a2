// Package device implements the per-device TCP control session: one
// connection to one Tuya device, its heartbeat loop, datapoint (DPS)
// read/write, and the typed drivers (Switch, OpenCloseSwitch, Light)
// that translate between DPS indices and semantic attributes.
//
// A Session is usable two ways: with a Driver, for a classified device
// whose attribute names are known, or without one, in raw_dps_mode, as
// a short-lived probe a Manager uses to classify an unknown device from
// its published datapoint shape.
package device
