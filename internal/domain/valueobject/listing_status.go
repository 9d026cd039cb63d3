package valueobject

import "fmt"

// ListingStatus is the lifecycle state of a listing.
type ListingStatus string

const (
	// ListingStatusDraft is reserved; no factory produces it.
	ListingStatusDraft     ListingStatus = "draft"
	ListingStatusActive    ListingStatus = "active"
	ListingStatusCompleted ListingStatus = "completed"
	ListingStatusExpired   ListingStatus = "expired"
	ListingStatusCancelled ListingStatus = "cancelled"
	ListingStatusSuspended ListingStatus = "suspended"
)

// ParseListingStatus parses the wire form of a status.
func ParseListingStatus(s string) (ListingStatus, error) {
	st := ListingStatus(s)
	if !st.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s ListingStatus) IsValid() bool {
	switch s {
	case ListingStatusDraft, ListingStatusActive, ListingStatusCompleted,
		ListingStatusExpired, ListingStatusCancelled, ListingStatusSuspended:
		return true
	}
	return false
}

// IsTerminal reports whether no further lifecycle transition is possible.
func (s ListingStatus) IsTerminal() bool {
	return s == ListingStatusCompleted || s == ListingStatusExpired
}

func (s ListingStatus) String() string {
	return string(s)
}
