package enums

import "testing"

func TestParseChannel(t *testing.T) {
	for _, ch := range Channels() {
		got, err := ParseChannel(string(ch))
		if err != nil || got != ch {
			t.Fatalf("expected %s to parse, got %s err=%v", ch, got, err)
		}
	}
	if _, err := ParseChannel("facebook"); err == nil {
		t.Fatal("expected lowercase channel to be rejected")
	}
	if _, err := ParseChannel("TIKTOK"); err == nil {
		t.Fatal("expected unknown channel to be rejected")
	}
}

func TestListingStateTransitions(t *testing.T) {
	tests := []struct {
		from, to ListingState
		ok       bool
	}{
		{ListingStateDraft, ListingStateReview, true},
		{ListingStateReview, ListingStatePublished, true},
		{ListingStatePublished, ListingStatePaused, true},
		{ListingStatePaused, ListingStatePublished, true},
		{ListingStateReview, ListingStateReview, false},
		{ListingStatePublished, ListingStateDraft, false},
		{ListingStateArchived, ListingStateDraft, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.ok {
			t.Fatalf("%s -> %s: expected %v got %v", tt.from, tt.to, tt.ok, got)
		}
	}
}

func TestParseListingState(t *testing.T) {
	if s, err := ParseListingState("REVIEW"); err != nil || s != ListingStateReview {
		t.Fatalf("unexpected parse result %s %v", s, err)
	}
	if _, err := ParseListingState("LIVE"); err == nil {
		t.Fatal("expected invalid state error")
	}
}

func TestParseListingOrderDefaultsToNewest(t *testing.T) {
	order, err := ParseListingOrder("  ")
	if err != nil || order != ListingOrderNewest {
		t.Fatalf("expected newest default, got %s %v", order, err)
	}
	order, err = ParseListingOrder("PRICE_ASC")
	if err != nil || order != ListingOrderPriceAsc {
		t.Fatalf("expected price_asc, got %s %v", order, err)
	}
	if _, err := ParseListingOrder("random"); err == nil {
		t.Fatal("expected invalid order error")
	}
}

func TestPropertyAndModalityEnums(t *testing.T) {
	if !PropertyTypeWarehouse.IsValid() || PropertyType("CASTLE").IsValid() {
		t.Fatal("unexpected property type validity")
	}
	if m, err := ParseRentalModality("SHORT_TERM_RENT"); err != nil || m != ModalityShortTermRent {
		t.Fatalf("unexpected modality parse %s %v", m, err)
	}
	if !PublicationStatusPending.IsValid() || PublicationStatus("DONE").IsValid() {
		t.Fatal("unexpected publication status validity")
	}
}

func TestParseOutboxDLQErrorReason(t *testing.T) {
	reason, err := ParseOutboxDLQErrorReason("unresolvable")
	if err != nil || reason != OutboxDLQReasonUnresolvable {
		t.Fatalf("expected unresolvable, got %q err=%v", reason, err)
	}
	if _, err := ParseOutboxDLQErrorReason("timeout"); err == nil {
		t.Fatalf("expected error for unknown reason")
	}
	if !OutboxDLQReasonMaxAttempts.IsValid() {
		t.Fatalf("max_attempts should be valid")
	}
}
