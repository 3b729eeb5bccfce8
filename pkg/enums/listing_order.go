package enums

import (
	"fmt"
	"strings"
)

// ListingOrder selects the sort applied to listing searches.
type ListingOrder string

const (
	ListingOrderNewest    ListingOrder = "newest"
	ListingOrderOldest    ListingOrder = "oldest"
	ListingOrderPriceDesc ListingOrder = "price_desc"
	ListingOrderPriceAsc  ListingOrder = "price_asc"
	ListingOrderViewsDesc ListingOrder = "views_desc"
)

var validListingOrders = []ListingOrder{
	ListingOrderNewest,
	ListingOrderOldest,
	ListingOrderPriceDesc,
	ListingOrderPriceAsc,
	ListingOrderViewsDesc,
}

func (o ListingOrder) IsValid() bool {
	for _, candidate := range validListingOrders {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseListingOrder accepts case-insensitive input and defaults to newest when empty.
func ParseListingOrder(value string) (ListingOrder, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ListingOrderNewest, nil
	}
	for _, candidate := range validListingOrders {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing order %q", value)
}

func ListingOrders() []ListingOrder {
	return append([]ListingOrder(nil), validListingOrders...)
}
