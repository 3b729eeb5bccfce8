package channels

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/anuncios-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/anuncios-backend/pkg/errors"
	"github.com/angelmondragon/anuncios-backend/pkg/outbox"
	"github.com/angelmondragon/anuncios-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) (string, error)
}

// ScheduleRequest is one deferred multi-channel publish.
type ScheduleRequest struct {
	ListingID  uuid.UUID
	Channels   []enums.Channel
	ScheduleAt time.Time
	Content    Content
	RequestID  string
}

// ScheduleReceipt identifies the queued hand-off.
type ScheduleReceipt struct {
	EventID string
}

// Scheduler hands a whole scheduled request off as a single outbox event.
type Scheduler struct {
	tx     txRunner
	outbox outboxEmitter
}

func NewScheduler(tx txRunner, emitter outboxEmitter) (*Scheduler, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &Scheduler{tx: tx, outbox: emitter}, nil
}

// Schedule queues req. No channel is called.
func (s *Scheduler) Schedule(ctx context.Context, req ScheduleRequest) (ScheduleReceipt, error) {
	if req.ScheduleAt.IsZero() {
		return ScheduleReceipt{}, pkgerrors.New(pkgerrors.CodeValidation, "schedule_at required")
	}
	if len(req.Channels) == 0 {
		return ScheduleReceipt{}, pkgerrors.New(pkgerrors.CodeValidation, "channels required")
	}

	names := make([]string, 0, len(req.Channels))
	for _, ch := range req.Channels {
		names = append(names, string(ch))
	}
	event := outbox.DomainEvent{
		EventType:     enums.EventListingPublicationScheduled,
		AggregateType: enums.AggregateListing,
		AggregateID:   req.ListingID,
		Actor:         &outbox.ActorRef{Source: "api", RequestID: req.RequestID},
		Data: payloads.ListingPublicationScheduledEvent{
			ListingID:   req.ListingID,
			Channels:    names,
			ScheduledAt: req.ScheduleAt.UTC(),
			Content: payloads.ScheduledContent{
				Slug:        req.Content.Slug,
				Title:       req.Content.Title,
				Description: req.Content.Description,
				Price:       req.Content.Price.StringFixed(2),
				Currency:    req.Content.Currency,
				Location:    req.Content.Location,
				PublicURL:   req.Content.PublicURL,
				Media:       append([]string{}, req.Content.Media...),
			},
		},
	}

	var eventID string
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		id, err := s.outbox.Emit(ctx, tx, event)
		if err != nil {
			return err
		}
		eventID = id
		return nil
	})
	if err != nil {
		return ScheduleReceipt{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue scheduled publication")
	}
	return ScheduleReceipt{EventID: eventID}, nil
}
