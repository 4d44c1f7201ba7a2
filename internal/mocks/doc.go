// Package mocks provides hand-written test doubles for device.Observer
// and persistence.KeyStore, in the shape mockery would generate: one
// struct per interface, a Calls slice recording every invocation, and
// optional per-method function fields a test can set to stub behavior.
//
// These are hand-authored rather than `mockery`-generated because
// generation requires running the mockery binary via go generate,
// which this module's build does not do.
package mocks
