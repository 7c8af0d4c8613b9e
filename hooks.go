package autocache

// Hooks are lightweight callbacks for events that never reach the caller.
// Implementations MUST be cheap and non-blocking; they run on hot paths.
type Hooks interface {
	// Detect finished; name is the winner, None when nothing answered or
	// caching is disabled.
	Detected(name BackendName)

	// A stored entry was ignored on read.
	// reason ∈ {"corrupt", "expired", "version_mismatch", "value_decode"}
	EntryRejected(backend BackendName, storageKey, reason string)

	// The provider failed. op ∈ {"get", "put", "remove", "encode"}
	BackendError(backend BackendName, op, storageKey string, err error)

	// Provider returned ok=false on Set (refused or not stored).
	WriteRejected(backend BackendName, storageKey string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Detected(BackendName)                            {}
func (NopHooks) EntryRejected(BackendName, string, string)       {}
func (NopHooks) BackendError(BackendName, string, string, error) {}
func (NopHooks) WriteRejected(BackendName, string)               {}
