package enums

import "fmt"

// ListingState tracks where a listing sits in its editorial lifecycle.
type ListingState string

const (
	ListingStateDraft     ListingState = "DRAFT"
	ListingStateReview    ListingState = "REVIEW"
	ListingStatePublished ListingState = "PUBLISHED"
	ListingStatePaused    ListingState = "PAUSED"
	ListingStateExpired   ListingState = "EXPIRED"
	ListingStateArchived  ListingState = "ARCHIVED"
)

var validListingStates = []ListingState{
	ListingStateDraft,
	ListingStateReview,
	ListingStatePublished,
	ListingStatePaused,
	ListingStateExpired,
	ListingStateArchived,
}

// listingTransitions lists the states reachable from each state.
// Updates that change state must follow one of these edges.
var listingTransitions = map[ListingState][]ListingState{
	ListingStateDraft:     {ListingStateReview, ListingStateArchived},
	ListingStateReview:    {ListingStatePublished, ListingStateDraft, ListingStateArchived},
	ListingStatePublished: {ListingStatePaused, ListingStateExpired, ListingStateArchived},
	ListingStatePaused:    {ListingStatePublished, ListingStateArchived},
	ListingStateExpired:   {ListingStateReview, ListingStateArchived},
	ListingStateArchived:  {},
}

func (s ListingState) String() string {
	return string(s)
}

// IsValid reports whether the value matches the canonical listing state enum.
func (s ListingState) IsValid() bool {
	for _, candidate := range validListingStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether next is a guarded successor of s.
func (s ListingState) CanTransitionTo(next ListingState) bool {
	for _, candidate := range listingTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ListingStates returns the canonical listing states in lifecycle order.
func ListingStates() []ListingState {
	return append([]ListingState(nil), validListingStates...)
}

// ParseListingState converts the raw string to ListingState.
func ParseListingState(value string) (ListingState, error) {
	for _, candidate := range validListingStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing state %q", value)
}
