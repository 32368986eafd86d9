// Package state defines the device-local persistence contract used by the
// client: a flat string key-value store with get/set/remove semantics.
//
// Responsibilities:
//   - Store only loads, saves and removes single values by key. It never
//     interprets them; callers own parsing and validation.
//   - GetJSON/SetJSON layer typed payloads (e.g. the cached user record) on
//     top of any Store.
//   - MemoryStore backs tests and examples; FileStore keeps values in one
//     JSON document on disk and stands in for the platform key-value store.
//
// Well-known keys:
//
//	KeySchemePreference  "@app:schemePref"  light | dark | system
//	KeyToken             "token"            bearer token
//	KeyUser              "user"             JSON user record
//
// Stores make no ordering promises across concurrent writers beyond "last
// Set wins"; the client treats them as a cache, not a source of truth.
package state
