package dto

// Entry scopes for context entry responses.
const (
	// ScopeLocal marks an entry that belongs to the current request.
	ScopeLocal = "local"

	// ScopeGlobal marks an entry from the process-wide store.
	ScopeGlobal = "global"
)

// ContextEntryResponse is a single diagnostic context entry.
type ContextEntryResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`

	// Scope indicates which store the entry came from. A local entry
	// shadows a global one under the same key.
	Scope string `json:"scope"`
}

// SetContextEntryRequest is the body for setting a global context entry.
type SetContextEntryRequest struct {
	Value string `json:"value" validate:"required,notempty"`
}

// SetContextEntryResponse reports the result of setting a global entry.
type SetContextEntryResponse struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Previous string `json:"previous,omitempty"`
	Replaced bool   `json:"replaced"`
}

// RemoveContextEntryResponse reports the result of removing a global entry.
type RemoveContextEntryResponse struct {
	Key      string `json:"key"`
	Previous string `json:"previous"`
}
