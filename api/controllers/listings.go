package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/anuncios-backend/api/responses"
	"github.com/angelmondragon/anuncios-backend/api/validators"
	"github.com/angelmondragon/anuncios-backend/internal/listings"
	"github.com/angelmondragon/anuncios-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/anuncios-backend/pkg/errors"
	"github.com/angelmondragon/anuncios-backend/pkg/logger"
	"github.com/angelmondragon/anuncios-backend/pkg/pagination"
)

const maxSearchQueryLen = 120

type listingCreateRequest struct {
	Title        string           `json:"title" validate:"required,max=200"`
	Description  *string          `json:"description"`
	PropertyType string           `json:"property_type" validate:"required"`
	Modality     string           `json:"modality" validate:"required"`
	Price        *decimal.Decimal `json:"price" validate:"required"`
	Currency     string           `json:"currency" validate:"omitempty,len=3"`
	Address      *string          `json:"address"`
	Neighborhood *string          `json:"neighborhood"`
	City         *string          `json:"city"`
	Bedrooms     *int             `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms    *int             `json:"bathrooms" validate:"omitempty,gte=0"`
	AreaM2       *float64         `json:"area_m2" validate:"omitempty,gte=0"`
	Media        []string         `json:"media" validate:"omitempty,dive,required"`
	Featured     bool             `json:"featured"`
}

func (r listingCreateRequest) toInput() (listings.CreateListingInput, error) {
	propertyType, err := enums.ParsePropertyType(strings.ToUpper(strings.TrimSpace(r.PropertyType)))
	if err != nil {
		return listings.CreateListingInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid property_type").
			WithDetails(map[string]string{"property_type": "is invalid"})
	}
	modality, err := enums.ParseRentalModality(strings.ToUpper(strings.TrimSpace(r.Modality)))
	if err != nil {
		return listings.CreateListingInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid modality").
			WithDetails(map[string]string{"modality": "is invalid"})
	}

	return listings.CreateListingInput{
		Title:        strings.TrimSpace(r.Title),
		Description:  r.Description,
		PropertyType: propertyType,
		Modality:     modality,
		Price:        *r.Price,
		Currency:     r.Currency,
		Address:      r.Address,
		Neighborhood: r.Neighborhood,
		City:         r.City,
		Bedrooms:     r.Bedrooms,
		Bathrooms:    r.Bathrooms,
		AreaM2:       r.AreaM2,
		Media:        r.Media,
		Featured:     r.Featured,
	}, nil
}

// ListingsList handles GET /api/v1/listings.
func ListingsList(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		featured, err := validators.ParseQueryBool(r, "featured")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		result, err := svc.ListListings(r.Context(), listings.ListListingsInput{
			State:        query.Get("state"),
			PropertyType: query.Get("property_type"),
			Modality:     query.Get("modality"),
			Featured:     featured,
			Query:        validators.SanitizeString(query.Get("q"), maxSearchQueryLen),
			Order:        query.Get("order"),
			Limit:        limit,
			Offset:       offset,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ListingGet(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}
		id, err := listingIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		listing, err := svc.GetListing(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

// ListingCreate stores a new DRAFT listing.
func ListingCreate(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		var payload listingCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateListing(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithListingID(r.Context(), created.ID.String()), "listing.created")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// ListingUpdate applies a partial update. Unknown fields are rejected by the listing schema.
func ListingUpdate(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}
		id, err := listingIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload, err := validators.DecodeJSONObject(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateListing(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func ListingDelete(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}
		id, err := listingIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteListing(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithListingID(r.Context(), id.String()), "listing.deleted")
		}
		responses.WriteNoContent(w)
	}
}

func ListingDuplicate(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}
		id, err := listingIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		copied, err := svc.DuplicateListing(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, copied)
	}
}

// listingIDParam maps malformed ids to not found, the same as unknown ones.
func listingIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "listingId")))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}
	return id, nil
}
