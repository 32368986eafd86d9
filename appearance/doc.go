// Package appearance owns the single authoritative color Scheme of the
// client and keeps it consistent across three competing sources: the
// preference persisted on the device, the preference stored on the backend,
// and the appearance reported by the operating system.
//
// Bootstrap precedence (strongest first):
//
//	local   concrete "light"/"dark" in the store       -> applied, backend not consulted
//	remote  isDarkModeEnabled from the backend          -> applied and cached locally
//	system  OS appearance at bootstrap                  -> applied, never persisted
//	default light
//
// A stored "system" preference skips the remote layer: the user asked to
// follow the OS and the backend cannot represent that choice.
//
// After bootstrap the Resolver tracks OS changes for as long as no concrete
// preference is in effect, and SetScheme applies explicit choices in memory
// first, then persists and (optionally) syncs them in the background.
// Background write failures are logged and swallowed; the in-memory value is
// never rolled back.
//
// Readers either call Snapshot or Subscribe. Every Snapshot carries a
// Version; subscribers never observe versions going backwards.
package appearance
