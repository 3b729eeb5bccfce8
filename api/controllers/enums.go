package controllers

import (
	"net/http"

	"github.com/angelmondragon/anuncios-backend/api/responses"
	"github.com/angelmondragon/anuncios-backend/pkg/enums"
)

type enumsResponse struct {
	ListingStates       []enums.ListingState      `json:"listing_states"`
	PropertyTypes       []enums.PropertyType      `json:"property_types"`
	Modalities          []enums.RentalModality    `json:"modalities"`
	Channels            []enums.Channel           `json:"channels"`
	PublicationStatuses []enums.PublicationStatus `json:"publication_statuses"`
	ListingOrders       []enums.ListingOrder      `json:"listing_orders"`
}

// Enums exposes the fixed enumerations clients render in forms and filters.
func Enums() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, enumsResponse{
			ListingStates:       enums.ListingStates(),
			PropertyTypes:       enums.PropertyTypes(),
			Modalities:          enums.RentalModalities(),
			Channels:            enums.Channels(),
			PublicationStatuses: enums.PublicationStatuses(),
			ListingOrders:       enums.ListingOrders(),
		})
	}
}
