package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/anuncios-backend/api/middleware"
	"github.com/angelmondragon/anuncios-backend/api/responses"
	"github.com/angelmondragon/anuncios-backend/api/validators"
	"github.com/angelmondragon/anuncios-backend/internal/publications"
	pkgerrors "github.com/angelmondragon/anuncios-backend/pkg/errors"
	"github.com/angelmondragon/anuncios-backend/pkg/logger"
)

type publishRequest struct {
	ListingID  string     `json:"listing_id" validate:"required"`
	Channels   []string   `json:"channels"`
	ScheduleAt *time.Time `json:"schedule_at"`
}

// Publish fans a listing out to the requested channels, or hands it to the scheduler.
// Per-channel failures are reported inside a 200 outcome.
func Publish(svc publications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "publications service unavailable"))
			return
		}

		var payload publishRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := svc.Publish(r.Context(), publications.PublishInput{
			ListingID:  payload.ListingID,
			Channels:   payload.Channels,
			ScheduleAt: payload.ScheduleAt,
			RequestID:  middleware.RequestIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, outcome)
	}
}

// ListingPublications returns the ledger view for every channel of one listing.
func ListingPublications(svc publications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "publications service unavailable"))
			return
		}
		id, err := listingIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListPublications(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
