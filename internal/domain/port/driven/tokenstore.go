package driven

import "time"

// TokenStore defines the driven port for the field-service access credential.
// The stored value lives only for the process lifetime: the system cannot
// write back to its own configuration source, so implementations must make a
// replacement visible to the operator (log warning, UI banner) for manual
// re-provisioning.
type TokenStore interface {
	// Access returns the current access credential.
	Access() string

	// SetAccess replaces the access credential wholesale for the remaining
	// process lifetime.
	SetAccess(token string)

	// LastRotated reports the most recent in-process replacement, if any.
	// The render layer uses this to surface a "persist the new token" banner.
	LastRotated() (token string, at time.Time, ok bool)
}
