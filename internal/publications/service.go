package publications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/angelmondragon/anuncios-backend/internal/channels"
	"github.com/angelmondragon/anuncios-backend/pkg/db/models"
	"github.com/angelmondragon/anuncios-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/anuncios-backend/pkg/errors"
	"github.com/angelmondragon/anuncios-backend/pkg/logger"
	"github.com/angelmondragon/anuncios-backend/pkg/metrics"
)

const (
	// ScheduleTarget keys the single result of a scheduled request.
	ScheduleTarget = "schedule"

	defaultChannelTimeout = 15 * time.Second
	attemptCounterTTL     = 48 * time.Hour
	maxErrorDetailLength  = 1000
)

type listingStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	PromoteDraftToReview(ctx context.Context, id uuid.UUID) (bool, error)
}

type ledgerStore interface {
	Find(ctx context.Context, listingID uuid.UUID, channel enums.Channel) (*models.ChannelPublication, error)
	Upsert(ctx context.Context, write LedgerWrite) error
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]models.ChannelPublication, error)
}

type adapterRegistry interface {
	Adapter(channel enums.Channel) (channels.Adapter, bool)
}

type publicationScheduler interface {
	Schedule(ctx context.Context, req channels.ScheduleRequest) (channels.ScheduleReceipt, error)
}

type attemptCounter interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	PublishAttemptsKey(channel string, day time.Time) string
}

// Service drives multi-channel publication of listings.
type Service interface {
	Publish(ctx context.Context, input PublishInput) (*PublishOutcome, error)
	ListPublications(ctx context.Context, listingID uuid.UUID) ([]PublicationDTO, error)
}

// ServiceParams groups the orchestrator collaborators. Counter and Metrics are optional.
type ServiceParams struct {
	Listings       listingStore
	Ledger         ledgerStore
	Adapters       adapterRegistry
	Credentials    channels.CredentialSource
	Scheduler      publicationScheduler
	Counter        attemptCounter
	Metrics        *metrics.PublicationMetrics
	Logger         *logger.Logger
	ChannelTimeout time.Duration
	ListingURL     func(slug string) string
}

type service struct {
	listings    listingStore
	ledger      ledgerStore
	adapters    adapterRegistry
	credentials channels.CredentialSource
	scheduler   publicationScheduler
	counter     attemptCounter
	metrics     *metrics.PublicationMetrics
	logg        *logger.Logger
	timeout     time.Duration
	listingURL  func(slug string) string
	now         func() time.Time
}

// NewService validates params and builds the orchestrator.
func NewService(params ServiceParams) (Service, error) {
	if params.Listings == nil {
		return nil, fmt.Errorf("listing store required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("publication ledger required")
	}
	if params.Adapters == nil {
		return nil, fmt.Errorf("channel adapters required")
	}
	if params.Credentials == nil {
		return nil, fmt.Errorf("credential source required")
	}
	if params.Scheduler == nil {
		return nil, fmt.Errorf("scheduler required")
	}
	timeout := params.ChannelTimeout
	if timeout <= 0 {
		timeout = defaultChannelTimeout
	}
	listingURL := params.ListingURL
	if listingURL == nil {
		listingURL = func(string) string { return "" }
	}
	return &service{
		listings:    params.Listings,
		ledger:      params.Ledger,
		adapters:    params.Adapters,
		credentials: params.Credentials,
		scheduler:   params.Scheduler,
		counter:     params.Counter,
		metrics:     params.Metrics,
		logg:        params.Logger,
		timeout:     timeout,
		listingURL:  listingURL,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Publish(ctx context.Context, input PublishInput) (*PublishOutcome, error) {
	requested, err := ParseChannels(input.Channels)
	if err != nil {
		return nil, err
	}

	listing, err := s.loadListing(ctx, input.ListingID)
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		ctx = s.logg.WithListingID(ctx, listing.ID.String())
	}

	content := channels.BuildContent(listing, s.listingURL(listing.Slug))

	if input.ScheduleAt != nil {
		return s.schedule(ctx, listing, requested, content, *input.ScheduleAt, input.RequestID), nil
	}

	// Ledger rows must settle even when the caller goes away mid-flight.
	workCtx := context.WithoutCancel(ctx)

	results := make([]TargetResult, len(requested))
	var g errgroup.Group
	for i, ch := range requested {
		g.Go(func() error {
			results[i] = s.publishChannel(workCtx, listing.ID, ch, content)
			return nil
		})
	}
	_ = g.Wait()

	outcome := &PublishOutcome{
		ListingID:    listing.ID,
		Results:      results,
		ListingState: listing.State,
		Success:      anySucceeded(results),
	}
	s.promote(workCtx, listing, outcome)
	return outcome, nil
}

func (s *service) ListPublications(ctx context.Context, listingID uuid.UUID) ([]PublicationDTO, error) {
	if _, err := s.loadListing(ctx, listingID.String()); err != nil {
		return nil, err
	}
	rows, err := s.ledger.ListByListing(ctx, listingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list channel publications")
	}

	byChannel := make(map[enums.Channel]models.ChannelPublication, len(rows))
	for _, row := range rows {
		byChannel[row.Channel] = row
	}

	out := make([]PublicationDTO, 0, len(enums.Channels()))
	for _, ch := range enums.Channels() {
		row, ok := byChannel[ch]
		if !ok {
			out = append(out, PublicationDTO{Channel: ch, Status: enums.PublicationStatusNotPublished})
			continue
		}
		out = append(out, NewPublicationDTO(row))
	}
	return out, nil
}

func (s *service) loadListing(ctx context.Context, rawID string) (*models.Listing, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load listing")
	}
	return listing, nil
}

func (s *service) schedule(ctx context.Context, listing *models.Listing, requested []enums.Channel, content channels.Content, at time.Time, requestID string) *PublishOutcome {
	result := TargetResult{Target: ScheduleTarget}
	receipt, err := s.scheduler.Schedule(ctx, channels.ScheduleRequest{
		ListingID:  listing.ID,
		Channels:   requested,
		ScheduleAt: at,
		Content:    content,
		RequestID:  requestID,
	})
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "schedule publication failed", err)
		}
		result.Outcome = enums.OutcomeError
		result.Error = describeError(err)
	} else {
		result.Outcome = enums.OutcomePendingAccepted
		result.EventID = receipt.EventID
	}
	s.metrics.ObserveAttempt(ScheduleTarget, string(result.Outcome))

	return &PublishOutcome{
		ListingID:    listing.ID,
		Scheduled:    true,
		ScheduledAt:  &at,
		ListingState: listing.State,
		Results:      []TargetResult{result},
		Success:      result.Outcome != enums.OutcomeError,
	}
}

func (s *service) publishChannel(ctx context.Context, listingID uuid.UUID, ch enums.Channel, content channels.Content) TargetResult {
	if s.logg != nil {
		ctx = s.logg.WithChannel(ctx, string(ch))
	}
	result := s.attemptChannel(ctx, listingID, ch, content)
	s.metrics.ObserveAttempt(string(ch), string(result.Outcome))
	return result
}

func (s *service) attemptChannel(ctx context.Context, listingID uuid.UUID, ch enums.Channel, content channels.Content) TargetResult {
	existing, err := s.ledger.Find(ctx, listingID, ch)
	if err != nil {
		return s.persistenceFailure(ctx, ch, err, "db: read channel publication")
	}
	if existing != nil && existing.Status == enums.PublicationStatusPublished {
		return TargetResult{
			Target:      string(ch),
			Outcome:     enums.OutcomeAlreadyPublished,
			Status:      enums.PublicationStatusPublished,
			ExternalRef: deref(existing.ExternalRef),
		}
	}

	err = s.ledger.Upsert(ctx, LedgerWrite{
		ListingID:    listingID,
		Channel:      ch,
		Status:       enums.PublicationStatusPending,
		CountAttempt: true,
	})
	if err != nil {
		return s.persistenceFailure(ctx, ch, err, "db: mark channel pending")
	}
	s.countAttempt(ctx, ch)

	receipt, callErr := s.invokeAdapter(ctx, ch, content)
	if callErr != nil {
		described := describeError(callErr)
		detail := truncate(callErr.Error(), maxErrorDetailLength)
		code := described.Code
		if err := s.ledger.Upsert(ctx, LedgerWrite{
			ListingID:   listingID,
			Channel:     ch,
			Status:      enums.PublicationStatusError,
			ErrorCode:   &code,
			ErrorDetail: &detail,
		}); err != nil {
			return s.persistenceFailure(ctx, ch, err, "db: mark channel error")
		}
		if s.logg != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"reason": described.Reason, "error": detail}), "channel publish failed")
		}
		return TargetResult{
			Target:  string(ch),
			Outcome: enums.OutcomeError,
			Status:  enums.PublicationStatusError,
			Error:   described,
		}
	}

	ref := receipt.ExternalRef
	if err := s.ledger.Upsert(ctx, LedgerWrite{
		ListingID:   listingID,
		Channel:     ch,
		Status:      enums.PublicationStatusPublished,
		ExternalRef: &ref,
	}); err != nil {
		failed := s.persistenceFailure(ctx, ch, err, "db: mark channel published")
		failed.ExternalRef = ref
		return failed
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "external_ref", ref), "channel published")
	}
	return TargetResult{
		Target:      string(ch),
		Outcome:     enums.OutcomePublished,
		Status:      enums.PublicationStatusPublished,
		ExternalRef: ref,
		URL:         receipt.URL,
	}
}

type adapterResult struct {
	receipt channels.Receipt
	err     error
}

// invokeAdapter runs one adapter call bounded by the channel timeout.
func (s *service) invokeAdapter(ctx context.Context, ch enums.Channel, content channels.Content) (channels.Receipt, error) {
	adapter, ok := s.adapters.Adapter(ch)
	if !ok {
		return channels.Receipt{}, channels.NoAdapterError(ch)
	}
	creds, err := s.credentials.Credentials(ctx, ch)
	if err != nil {
		return channels.Receipt{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan adapterResult, 1)
	go func() {
		receipt, err := adapter.Publish(callCtx, content, creds)
		done <- adapterResult{receipt: receipt, err: err}
	}()

	var res adapterResult
	select {
	case res = <-done:
	case <-callCtx.Done():
		res = adapterResult{err: channels.ChannelError(ch, channels.ReasonTimeout, callCtx.Err())}
	}
	s.metrics.ObserveAdapterDuration(string(ch), time.Since(start))

	if res.err == nil {
		return res.receipt, nil
	}
	if pkgerrors.As(res.err) == nil {
		reason := channels.ReasonUnknown
		if errors.Is(res.err, context.DeadlineExceeded) {
			reason = channels.ReasonTimeout
		}
		return channels.Receipt{}, channels.ChannelError(ch, reason, res.err)
	}
	return channels.Receipt{}, res.err
}

func (s *service) countAttempt(ctx context.Context, ch enums.Channel) {
	if s.counter == nil {
		return
	}
	key := s.counter.PublishAttemptsKey(string(ch), s.now())
	if _, err := s.counter.IncrWithTTL(ctx, key, attemptCounterTTL); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "publish attempt counter unavailable")
	}
}

// promote applies the single conditional DRAFT -> REVIEW write for this call.
func (s *service) promote(ctx context.Context, listing *models.Listing, outcome *PublishOutcome) {
	promoted, err := s.listings.PromoteDraftToReview(ctx, listing.ID)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "promote listing to review failed", err)
		}
		outcome.PromotionError = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: promote listing").Error()
		return
	}
	if promoted {
		outcome.ListingState = enums.ListingStateReview
		if s.logg != nil {
			s.logg.Info(ctx, "listing promoted to review")
		}
	}
}

func (s *service) persistenceFailure(ctx context.Context, ch enums.Channel, err error, msg string) TargetResult {
	wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
	if s.logg != nil {
		s.logg.Error(ctx, msg, wrapped)
	}
	return TargetResult{
		Target:  string(ch),
		Outcome: enums.OutcomeError,
		Status:  enums.PublicationStatusError,
		Error: &TargetError{
			Code:    string(pkgerrors.CodeDependency),
			Reason:  "persistence",
			Message: wrapped.Error(),
		},
	}
}

func describeError(err error) *TargetError {
	return &TargetError{
		Code:    string(pkgerrors.CodeOf(err)),
		Reason:  channels.Reason(err),
		Message: err.Error(),
	}
}

func anySucceeded(results []TargetResult) bool {
	for _, r := range results {
		if r.Outcome != enums.OutcomeError {
			return true
		}
	}
	return false
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	for max > 0 && !utf8.RuneStart(value[max]) {
		max--
	}
	return value[:max]
}
