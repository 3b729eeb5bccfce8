package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"github.com/angelmondragon/anuncios-backend/pkg/config"
	"github.com/angelmondragon/anuncios-backend/pkg/db/models"
	"github.com/angelmondragon/anuncios-backend/pkg/enums"
	"github.com/angelmondragon/anuncios-backend/pkg/logger"
	"github.com/angelmondragon/anuncios-backend/pkg/metrics"
	"github.com/angelmondragon/anuncios-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/anuncios-backend/pkg/outbox/registry"
)

const (
	defaultBatchSize      = 50
	defaultPollMs         = 500
	defaultPublishTimeout = 15 * time.Second
	defaultMaxAttempts    = 10
	maxBackoff            = 10 * time.Second
	jitterWindow          = 250 * time.Millisecond
)

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type pubSubClient interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type dlqRepository interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type registryResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type publisherFactory func(topic string) publisher

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type ServiceParams struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               dbClient
	PubSub           pubSubClient
	Repository       outboxRepository
	Registry         registryResolver
	PublisherFactory publisherFactory
	DLQRepository    dlqRepository
	Metrics          *metrics.OutboxMetrics
}

// Service forwards scheduled publication events from the outbox table to Pub/Sub.
type Service struct {
	logg         *logger.Logger
	db           dbClient
	pubsub       pubSubClient
	repo         outboxRepository
	registry     registryResolver
	dlq          dlqRepository
	publishers   publisherFactory
	metrics      *metrics.OutboxMetrics
	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	for _, dep := range []struct {
		name    string
		missing bool
	}{
		{"config", params.Config == nil},
		{"logger", params.Logger == nil},
		{"database client", params.DB == nil},
		{"pubsub client", params.PubSub == nil},
		{"outbox repository", params.Repository == nil},
		{"event registry", params.Registry == nil},
		{"dlq repository", params.DLQRepository == nil},
	} {
		if dep.missing {
			return nil, fmt.Errorf("%s is required", dep.name)
		}
	}

	publishers := params.PublisherFactory
	if publishers == nil {
		publishers = func(topic string) publisher {
			if p := params.PubSub.Publisher(topic); p != nil {
				return gcpPublisher{p}
			}
			return nil
		}
	}

	cfg := params.Config.Outbox
	return &Service{
		logg:         params.Logger,
		db:           params.DB,
		pubsub:       params.PubSub,
		repo:         params.Repository,
		registry:     params.Registry,
		dlq:          params.DLQRepository,
		publishers:   publishers,
		metrics:      params.Metrics,
		batchSize:    positiveOr(cfg.BatchSize, defaultBatchSize),
		maxAttempts:  positiveOr(cfg.MaxAttempts, defaultMaxAttempts),
		pollInterval: time.Duration(positiveOr(cfg.PollIntervalMS, defaultPollMs)) * time.Millisecond,
	}, nil
}

func positiveOr(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

// Run polls until ctx is done. Failed batches back off exponentially up to maxBackoff.
func (s *Service) Run(ctx context.Context) error {
	for _, dep := range []struct {
		name string
		ping func(context.Context) error
	}{{"database", s.db.Ping}, {"pubsub", s.pubsub.Ping}} {
		if err := dep.ping(ctx); err != nil {
			s.logg.Error(ctx, fmt.Sprintf("%s ping failed", dep.name), err)
			return fmt.Errorf("%s ping failed: %w", dep.name, err)
		}
	}

	backoff := s.newBackoff()
	for {
		if err := ctx.Err(); err != nil {
			s.logg.Info(ctx, "outbox publisher context canceled")
			return err
		}

		processed, err := s.processBatch(ctx)
		wait := s.pollInterval
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox publisher batch error", err)
			wait, _ = backoff.Next()
		case processed:
			backoff = s.newBackoff()
			continue
		default:
			backoff = s.newBackoff()
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (s *Service) newBackoff() retry.Backoff {
	return retry.WithCappedDuration(maxBackoff, retry.WithJitter(jitterWindow, retry.NewExponential(s.pollInterval)))
}

// delivery is the result of one publish attempt for an outbox row.
// A zero deadLetter with a non-nil err means the row is retried on a later poll.
type delivery struct {
	event      models.OutboxEvent
	resolved   *registry.ResolvedEvent
	err        error
	deadLetter enums.OutboxDLQErrorReason
}

func (d delivery) topic() string {
	if d.resolved == nil {
		return ""
	}
	return d.resolved.Descriptor.Topic
}

func (s *Service) processBatch(ctx context.Context) (bool, error) {
	processed := false
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts)
		if err != nil {
			return err
		}
		processed = len(events) > 0
		for _, event := range events {
			if err := s.settle(ctx, tx, s.deliver(ctx, event)); err != nil {
				return err
			}
		}
		return nil
	})
	return processed, err
}

func (s *Service) deliver(ctx context.Context, event models.OutboxEvent) delivery {
	d := delivery{event: event}
	resolved, err := s.registry.Resolve(event)
	if err != nil {
		d.err, d.deadLetter = err, enums.OutboxDLQReasonUnresolvable
		return d
	}
	d.resolved = resolved

	err = s.publishResolved(ctx, event, resolved)
	var nonRetry registry.NonRetryableError
	switch {
	case err == nil:
	case errors.As(err, &nonRetry):
		d.err, d.deadLetter = err, enums.OutboxDLQReasonNonRetryable
	case event.AttemptCount+1 >= s.maxAttempts:
		d.err, d.deadLetter = fmt.Errorf("max publish attempts reached: %w", err), enums.OutboxDLQReasonMaxAttempts
	default:
		d.err = err
	}
	return d
}

func (s *Service) settle(ctx context.Context, tx *gorm.DB, d delivery) error {
	id := d.event.ID
	eventType := string(d.event.EventType)
	logCtx := s.logg.WithFields(ctx, s.logFields(d))

	switch {
	case d.err == nil:
		if err := s.repo.MarkPublishedTx(tx, id); err != nil {
			return fmt.Errorf("mark published %s: %w", id, err)
		}
		s.metrics.IncPublished(eventType)
		s.logg.Info(logCtx, "outbox event published")
	case d.deadLetter == "":
		s.logg.Warn(logCtx, "outbox publish failed")
		s.metrics.IncFailed(eventType)
		if err := s.repo.MarkFailedTx(tx, id, d.err); err != nil {
			return fmt.Errorf("mark failure %s: %w", id, err)
		}
	default:
		s.logg.Warn(logCtx, "outbox event will not be retried")
		s.metrics.IncDeadLettered(eventType, string(d.deadLetter))
		msg := d.err.Error()
		if err := s.dlq.InsertTx(tx, models.OutboxDLQ{
			EventID:       id,
			EventType:     d.event.EventType,
			AggregateType: d.event.AggregateType,
			AggregateID:   d.event.AggregateID,
			Payload:       d.event.Payload,
			ErrorReason:   d.deadLetter,
			ErrorMessage:  &msg,
			AttemptCount:  d.event.AttemptCount,
			FailedAt:      time.Now().UTC(),
		}); err != nil {
			return fmt.Errorf("insert dlq %s: %w", id, err)
		}
		if err := s.repo.MarkTerminalTx(tx, id, d.err, s.maxAttempts); err != nil {
			return fmt.Errorf("mark terminal %s: %w", id, err)
		}
	}
	return nil
}

func (s *Service) logFields(d delivery) map[string]any {
	fields := map[string]any{
		"outbox_id":     d.event.ID.String(),
		"event_type":    d.event.EventType,
		"aggregate_id":  d.event.AggregateID.String(),
		"attempt_count": d.event.AttemptCount,
	}
	if topic := d.topic(); topic != "" {
		fields["topic"] = topic
	}
	if d.resolved != nil && d.resolved.Envelope.EventID != "" {
		fields["event_id"] = d.resolved.Envelope.EventID
	}
	if d.err != nil {
		fields["error"] = d.err.Error()
	}
	if d.deadLetter != "" {
		fields["error_reason"] = d.deadLetter
	}
	return fields
}

func (s *Service) publishResolved(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Topic
	pub := s.publishers(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher not configured for topic %s", topic))
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()
	result := pub.Publish(publishCtx, &gcppubsub.Message{
		Data:       event.Payload,
		Attributes: messageAttributes(event, resolved),
	})
	if result == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher returned nil for topic %s", topic))
	}
	if _, err := result.Get(publishCtx); err != nil {
		if permanentPublishError(err) {
			return registry.NewNonRetryableError(err)
		}
		return err
	}
	return nil
}

// permanentPublishError reports broker rejections that retrying cannot fix.
func permanentPublishError(err error) bool {
	switch status.Code(err) {
	case codes.InvalidArgument, codes.NotFound, codes.PermissionDenied, codes.FailedPrecondition:
		return true
	default:
		return false
	}
}

func messageAttributes(event models.OutboxEvent, resolved *registry.ResolvedEvent) map[string]string {
	attrs := map[string]string{
		"event_id":       resolved.Envelope.EventID,
		"event_type":     string(event.EventType),
		"aggregate_type": string(event.AggregateType),
		"aggregate_id":   event.AggregateID.String(),
		"created_at":     event.CreatedAt.Format(time.RFC3339Nano),
	}
	// subscribers filter scheduled publications by due time without decoding the body
	if scheduled, ok := resolved.Payload.(*payloads.ListingPublicationScheduledEvent); ok && scheduled != nil {
		attrs["listing_id"] = scheduled.ListingID.String()
		attrs["scheduled_at"] = scheduled.ScheduledAt.UTC().Format(time.RFC3339)
	}
	return attrs
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return p.Publisher.Publish(ctx, msg)
}
