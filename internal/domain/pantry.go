// Package domain defines the core types and interfaces shared by the
// pantry engine and the cooking session controller. All other packages
// depend on domain; domain depends on nothing.
package domain

// ZeroDate is the backend's "no expiry set" sentinel.
const ZeroDate = "0000-00-00"

// PantryItem is a single perishable item in the user's pantry.
// Status is a cached hint only — it is recomputed from ExpiresIn on
// every load and display; the stored value is never authoritative.
type PantryItem struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Quantity  string      `json:"quantity"`
	Unit      string      `json:"unit"`
	ExpiresIn string      `json:"expiresIn"` // YYYY-MM-DD, empty = no expiry
	Status    FreshStatus `json:"status"`
}

// FreshStatus classifies how fresh an item is relative to its expiry date.
type FreshStatus string

const (
	StatusFresh   FreshStatus = "fresh"
	StatusWarning FreshStatus = "warning"
	StatusExpired FreshStatus = "expired"
)

// Freshness is the result of deriving a status from an expiry date.
type Freshness struct {
	Status FreshStatus
	// DaysRemaining is days until expiry (negative = overdue).
	// Nil when the item has no date or the date is unparseable.
	DaysRemaining *int
	// Text is a short human-readable remaining/overdue description.
	Text string
}

// ScannedItem is one item extracted by the backend's receipt analyzer.
type ScannedItem struct {
	Name       string `json:"name"`
	ExpiryDate string `json:"expiry_date,omitempty"`
	Quantity   string `json:"quantity,omitempty"`
}

// SaveStatus tracks the pantry's persistence state for the UI.
type SaveStatus int

const (
	// SaveIdle — everything persisted (or nothing to persist).
	SaveIdle SaveStatus = iota
	// SavePending — local mutations not yet flushed.
	SavePending
	// SaveFailed — the last flush was rejected; local state is kept.
	SaveFailed
	// SaveLoggedOut — no auth token; pantry is display-only.
	SaveLoggedOut
	// SaveOffline — the backend is unreachable; the list shows the
	// last local snapshot.
	SaveOffline
)

// String returns a human-readable save status.
func (s SaveStatus) String() string {
	switch s {
	case SaveIdle:
		return "saved"
	case SavePending:
		return "saving"
	case SaveFailed:
		return "error"
	case SaveLoggedOut:
		return "logged out"
	case SaveOffline:
		return "offline"
	default:
		return "unknown"
	}
}
