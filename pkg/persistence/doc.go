// Package persistence defines the abstract hook through which the device
// key store is loaded and saved. The manager holds an in-memory map of
// device_id -> local_key; this package only specifies the contract a host
// application implements to make that map durable. No concrete backend
// (file, database, cloud sync) lives here — that is an external
// collaborator's responsibility.
package persistence
