package publications

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/anuncios-backend/internal/channels"
	"github.com/angelmondragon/anuncios-backend/internal/listings"
	"github.com/angelmondragon/anuncios-backend/pkg/db/models"
	"github.com/angelmondragon/anuncios-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/anuncios-backend/pkg/errors"
)

type fakeAdapter struct {
	channel enums.Channel
	ref     string
	err     error
	block   bool
	started chan struct{}
	wait    chan struct{}

	mu    sync.Mutex
	calls int
}

func (f *fakeAdapter) Channel() enums.Channel { return f.channel }

func (f *fakeAdapter) Publish(ctx context.Context, _ channels.Content, _ channels.Credentials) (channels.Receipt, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.wait != nil {
		<-f.wait
	}
	if f.block {
		select {}
	}
	if f.err != nil {
		return channels.Receipt{}, f.err
	}
	return channels.Receipt{ExternalRef: f.ref}, nil
}

func (f *fakeAdapter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type stubCredentials struct{}

func (stubCredentials) Credentials(context.Context, enums.Channel) (channels.Credentials, error) {
	return channels.Credentials{AccountID: "acct", AccessToken: "tok"}, nil
}

type emptyCredentials struct{}

func (emptyCredentials) Credentials(context.Context, enums.Channel) (channels.Credentials, error) {
	return channels.Credentials{}, nil
}

type stubScheduler struct {
	requests []channels.ScheduleRequest
	err      error
}

func (s *stubScheduler) Schedule(_ context.Context, req channels.ScheduleRequest) (channels.ScheduleReceipt, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return channels.ScheduleReceipt{}, s.err
	}
	return channels.ScheduleReceipt{EventID: "evt-1"}, nil
}

type stubCounter struct {
	mu   sync.Mutex
	keys []string
}

func (c *stubCounter) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, key)
	return int64(len(c.keys)), nil
}

func (c *stubCounter) PublishAttemptsKey(channel string, _ time.Time) string {
	return "counter:" + channel
}

// failingLedger fails every write for one channel and delegates the rest.
type failingLedger struct {
	*LedgerRepository
	channel enums.Channel
}

func (f failingLedger) Upsert(ctx context.Context, write LedgerWrite) error {
	if write.Channel == f.channel {
		return errors.New("connection reset")
	}
	return f.LedgerRepository.Upsert(ctx, write)
}

type harness struct {
	conn      *gorm.DB
	svc       Service
	scheduler *stubScheduler
	counter   *stubCounter
}

func newHarness(t *testing.T, adapters []channels.Adapter, mutate func(*ServiceParams)) *harness {
	t.Helper()
	conn := setupPublicationsTestDB(t)
	registry, err := channels.NewRegistry(adapters...)
	require.NoError(t, err)

	h := &harness{conn: conn, scheduler: &stubScheduler{}, counter: &stubCounter{}}
	params := ServiceParams{
		Listings:       listings.NewRepository(conn),
		Ledger:         NewLedgerRepository(conn),
		Adapters:       registry,
		Credentials:    stubCredentials{},
		Scheduler:      h.scheduler,
		Counter:        h.counter,
		ChannelTimeout: time.Second,
		ListingURL:     func(slug string) string { return "https://site.test/anuncios/" + slug },
	}
	if mutate != nil {
		mutate(&params)
	}
	h.svc, err = NewService(params)
	require.NoError(t, err)
	return h
}

func (h *harness) listingState(t *testing.T, id uuid.UUID) enums.ListingState {
	t.Helper()
	var listing models.Listing
	require.NoError(t, h.conn.First(&listing, "id = ?", id).Error)
	return listing.State
}

func resultFor(t *testing.T, outcome *PublishOutcome, target string) TargetResult {
	t.Helper()
	for _, r := range outcome.Results {
		if r.Target == target {
			return r
		}
	}
	t.Fatalf("no result for %s in %+v", target, outcome.Results)
	return TargetResult{}
}

func TestPublishMixedOutcomeThenAlreadyPublished(t *testing.T) {
	facebook := &fakeAdapter{channel: enums.ChannelFacebook, ref: "123_456"}
	instagram := &fakeAdapter{
		channel: enums.ChannelInstagram,
		err:     channels.ConfigurationError(enums.ChannelInstagram, "instagram user id and access token required"),
	}
	h := newHarness(t, []channels.Adapter{facebook, instagram}, nil)
	listing := mustCreateListing(t, h.conn, enums.ListingStateDraft)
	ctx := context.Background()

	outcome, err := h.svc.Publish(ctx, PublishInput{
		ListingID: listing.ID.String(),
		Channels:  []string{"FACEBOOK", "INSTAGRAM"},
	})
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, enums.ListingStateReview, outcome.ListingState)
	require.Len(t, outcome.Results, 2)
	assert.Equal(t, "FACEBOOK", outcome.Results[0].Target)

	fb := resultFor(t, outcome, "FACEBOOK")
	assert.Equal(t, enums.OutcomePublished, fb.Outcome)
	assert.Equal(t, "123_456", fb.ExternalRef)

	ig := resultFor(t, outcome, "INSTAGRAM")
	assert.Equal(t, enums.OutcomeError, ig.Outcome)
	require.NotNil(t, ig.Error)
	assert.Equal(t, string(pkgerrors.CodeConfiguration), ig.Error.Code)
	assert.Equal(t, channels.ReasonMissingCredentials, ig.Error.Reason)

	assert.Equal(t, enums.ListingStateReview, h.listingState(t, listing.ID))

	fbRow := loadRecord(t, h.conn, listing.ID, enums.ChannelFacebook)
	require.NotNil(t, fbRow)
	assert.Equal(t, enums.PublicationStatusPublished, fbRow.Status)
	igRow := loadRecord(t, h.conn, listing.ID, enums.ChannelInstagram)
	require.NotNil(t, igRow)
	assert.Equal(t, enums.PublicationStatusError, igRow.Status)
	require.NotNil(t, igRow.ErrorCode)
	assert.Equal(t, string(pkgerrors.CodeConfiguration), *igRow.ErrorCode)

	again, err := h.svc.Publish(ctx, PublishInput{ListingID: listing.ID.String(), Channels: []string{"FACEBOOK"}})
	require.NoError(t, err)
	require.Len(t, again.Results, 1)
	assert.Equal(t, enums.OutcomeAlreadyPublished, again.Results[0].Outcome)
	assert.Equal(t, "123_456", again.Results[0].ExternalRef)
	assert.Equal(t, 1, facebook.Calls(), "already published channel must not be called again")

	fbRow = loadRecord(t, h.conn, listing.ID, enums.ChannelFacebook)
	require.NotNil(t, fbRow.ExternalRef)
	assert.Equal(t, "123_456", *fbRow.ExternalRef)
	assert.Equal(t, 1, fbRow.AttemptCount)
}

func TestPublishRealAdapterMissingCredentials(t *testing.T) {
	h := newHarness(t, []channels.Adapter{channels.NewInstagramAdapter()}, func(p *ServiceParams) {
		p.Credentials = emptyCredentials{}
	})
	listing := mustCreateListing(t, h.conn, enums.ListingStateDraft)

	outcome, err := h.svc.Publish(context.Background(), PublishInput{ListingID: listing.ID.String(), Channels: []string{"INSTAGRAM"}})
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, string(pkgerrors.CodeConfiguration), outcome.Results[0].Error.Code)
	assert.Equal(t, enums.ListingStateReview, h.listingState(t, listing.ID), "an attempt promotes even when every channel fails")
}

type rejectingTransport struct {
	status int
	body   string
}

func (rt rejectingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: rt.status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(rt.body)),
	}, nil
}

func TestPublishKeepsRemoteRejectionInLedger(t *testing.T) {
	client := &http.Client{Transport: rejectingTransport{
		status: http.StatusBadRequest,
		body:   `{"error":{"message":"Invalid OAuth access token.","code":190}}`,
	}}
	h := newHarness(t, []channels.Adapter{channels.NewFacebookAdapter(channels.WithHTTPClient(client))}, nil)
	listing := mustCreateListing(t, h.conn, enums.ListingStateDraft)

	outcome, err := h.svc.Publish(context.Background(), PublishInput{ListingID: listing.ID.String(), Channels: []string{"FACEBOOK"}})
	require.NoError(t, err)
	require.Len(t, outcome.Results, 1)
	assert.Equal(t, channels.ReasonRejected, outcome.Results[0].Error.Reason)
	assert.Contains(t, outcome.Results[0].Error.Message, "Invalid OAuth access token.")

	row := loadRecord(t, h.conn, listing.ID, enums.ChannelFacebook)
	assert.Equal(t, enums.PublicationStatusError, row.Status)
	require.NotNil(t, row.ErrorDetail)
	assert.Contains(t, *row.ErrorDetail, "Invalid OAuth access token.")
	assert.Contains(t, *row.ErrorDetail, "status 400")
}

func TestPublishUnknownListing(t *testing.T) {
	web := &fakeAdapter{channel: enums.ChannelWeb, ref: "w"}
	h := newHarness(t, []channels.Adapter{web}, nil)

	for _, id := range []string{"unknown-id", uuid.NewString()} {
		_, err := h.svc.Publish(context.Background(), PublishInput{ListingID: id, Channels: []string{"WEB"}})
		require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
	}
	assert.Zero(t, web.Calls())
	assert.Zero(t, countRecords(t, h.conn))
}

func TestPublishValidatesChannels(t *testing.T) {
	h := newHarness(t, nil, nil)
	listing := mustCreateListing(t, h.conn, enums.ListingStateDraft)

	_, err := h.svc.Publish(context.Background(), PublishInput{ListingID: listing.ID.String()})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = h.svc.Publish(context.Background(), PublishInput{ListingID: listing.ID.String(), Channels: []string{"WEB", "MYSPACE"}})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	assert.Equal(t, enums.ListingStateDraft, h.listingState(t, listing.ID), "validation failures do not promote")
	assert.Zero(t, countRecords(t, h.conn))
}

func TestPublishIsolatesChannelFailures(t *testing.T) {
	web := &fakeAdapter{channel: enums.ChannelWeb, err: channels.ChannelError(enums.ChannelWeb, channels.ReasonRejected, errors.New("status 500"))}
	google := &fakeAdapter{channel: enums.ChannelGoogleBusiness, ref: "accounts/a/locations/l/localPosts/1"}
	h := newHarness(t, []channels.Adapter{web, google}, nil)
	listing := mustCreateListing(t, h.conn, enums.ListingStateDraft)

	outcome, err := h.svc.Publish(context.Background(), PublishInput{
		ListingID: listing.ID.String(),
		Channels:  []string{"web", "GOOGLE_BUSINESS", "WEB"},
	})
	require.NoError(t, err)
	require.Len(t, outcome.Results, 2, "duplicate channels collapse")
	assert.True(t, outcome.Success)

	assert.Equal(t, enums.OutcomeError, resultFor(t, outcome, "WEB").Outcome)
	assert.Equal(t, channels.ReasonRejected, resultFor(t, outcome, "WEB").Error.Reason)
	assert.Equal(t, enums.OutcomePublished, resultFor(t, outcome, "GOOGLE_BUSINESS").Outcome)

	assert.Equal(t, enums.PublicationStatusError, loadRecord(t, h.conn, listing.ID, enums.ChannelWeb).Status)
	assert.Equal(t, enums.PublicationStatusPublished, loadRecord(t, h.conn, listing.ID, enums.ChannelGoogleBusiness).Status)
}

func TestPublishRetriesErroredChannel(t *testing.T) {
	web := &fakeAdapter{channel: enums.ChannelWeb, err: channels.ChannelError(enums.ChannelWeb, channels.ReasonNetwork, nil)}
	h := newHarness(t, []channels.Adapter{web}, nil)
	listing := mustCreateListing(t, h.conn, enums.ListingStateDraft)
	ctx := context.Background()

	_, err := h.svc.Publish(ctx, PublishInput{ListingID: listing.ID.String(), Channels: []string{"WEB"}})
	require.NoError(t, err)

	web.err = nil
	web.ref = "site-1"
	outcome, err := h.svc.Publish(ctx, PublishInput{ListingID: listing.ID.String(), Channels: []string{"WEB"}})
	require.NoError(t, err)
	assert.Equal(t, enums.OutcomePublished, outcome.Results[0].Outcome)

	row := loadRecord(t, h.conn, listing.ID, enums.ChannelWeb)
	assert.Equal(t, enums.PublicationStatusPublished, row.Status)
	assert.Equal(t, 2, row.AttemptCount)
	assert.Nil(t, row.ErrorDetail)
	assert.Equal(t, 2, web.Calls())
	assert.Len(t, h.counter.keys, 2)
}

func TestPublishDoesNotTouchLaterStates(t *testing.T) {
	web := &fakeAdapter{channel: enums.ChannelWeb, ref: "site-1"}
	h := newHarness(t, []channels.Adapter{web}, nil)

	for _, state := range []enums.ListingState{enums.ListingStateReview, enums.ListingStatePublished, enums.ListingStatePaused} {
		listing := mustCreateListing(t, h.conn, state)
		outcome, err := h.svc.Publish(context.Background(), PublishInput{ListingID: listing.ID.String(), Channels: []string{"WEB"}})
		require.NoError(t, err)
		assert.Equal(t, state, outcome.ListingState)
		assert.Equal(t, state, h.listingState(t, listing.ID))
	}
}

func TestPublishTimesOutSlowAdapter(t *testing.T) {
	slow := &fakeAdapter{channel: enums.ChannelFacebook, block: true}
	fast := &fakeAdapter{channel: enums.ChannelWeb, ref: "site-1"}
	h := newHarness(t, []channels.Adapter{slow, fast}, func(p *ServiceParams) {
		p.ChannelTimeout = 30 * time.Millisecond
	})
	listing := mustCreateListing(t, h.conn, enums.ListingStateDraft)

	outcome, err := h.svc.Publish(context.Background(), PublishInput{ListingID: listing.ID.String(), Channels: []string{"FACEBOOK", "WEB"}})
	require.NoError(t, err)

	fb := resultFor(t, outcome, "FACEBOOK")
	assert.Equal(t, enums.OutcomeError, fb.Outcome)
	assert.Equal(t, string(pkgerrors.CodeChannel), fb.Error.Code)
	assert.Equal(t, channels.ReasonTimeout, fb.Error.Reason)
	assert.Equal(t, enums.OutcomePublished, resultFor(t, outcome, "WEB").Outcome)
}

func TestPublishRunsChannelsConcurrently(t *testing.T) {
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	web := &fakeAdapter{channel: enums.ChannelWeb, ref: "w", started: started, wait: release}
	fb := &fakeAdapter{channel: enums.ChannelFacebook, ref: "f", started: started, wait: release}
	h := newHarness(t, []channels.Adapter{web, fb}, nil)
	listing := mustCreateListing(t, h.conn, enums.ListingStateDraft)

	done := make(chan *PublishOutcome, 1)
	go func() {
		outcome, _ := h.svc.Publish(context.Background(), PublishInput{ListingID: listing.ID.String(), Channels: []string{"WEB", "FACEBOOK"}})
		done <- outcome
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("channels were not dispatched concurrently")
		}
	}
	close(release)

	select {
	case outcome := <-done:
		require.NotNil(t, outcome)
		assert.True(t, outcome.Success)
	case <-time.After(2 * time.Second):
		t.Fatal("publish did not complete")
	}
}

func TestPublishLedgerFailureIsReportedPerChannel(t *testing.T) {
	web := &fakeAdapter{channel: enums.ChannelWeb, ref: "w"}
	fb := &fakeAdapter{channel: enums.ChannelFacebook, ref: "f"}
	h := newHarness(t, []channels.Adapter{web, fb}, nil)
	h2, err := NewService(ServiceParams{
		Listings:    listings.NewRepository(h.conn),
		Ledger:      failingLedger{LedgerRepository: NewLedgerRepository(h.conn), channel: enums.ChannelFacebook},
		Adapters:    mustRegistry(t, web, fb),
		Credentials: stubCredentials{},
		Scheduler:   &stubScheduler{},
	})
	require.NoError(t, err)
	listing := mustCreateListing(t, h.conn, enums.ListingStateDraft)

	outcome, err := h2.Publish(context.Background(), PublishInput{ListingID: listing.ID.String(), Channels: []string{"WEB", "FACEBOOK"}})
	require.NoError(t, err)

	failed := resultFor(t, outcome, "FACEBOOK")
	assert.Equal(t, enums.OutcomeError, failed.Outcome)
	assert.Equal(t, string(pkgerrors.CodeDependency), failed.Error.Code)
	assert.Zero(t, fb.Calls(), "a failed pending write skips the adapter")
	assert.Equal(t, enums.OutcomePublished, resultFor(t, outcome, "WEB").Outcome)
}

func mustRegistry(t *testing.T, adapters ...channels.Adapter) *channels.Registry {
	t.Helper()
	registry, err := channels.NewRegistry(adapters...)
	require.NoError(t, err)
	return registry
}

func TestPublishUnregisteredChannel(t *testing.T) {
	h := newHarness(t, []channels.Adapter{&fakeAdapter{channel: enums.ChannelWeb, ref: "w"}}, nil)
	listing := mustCreateListing(t, h.conn, enums.ListingStateDraft)

	outcome, err := h.svc.Publish(context.Background(), PublishInput{ListingID: listing.ID.String(), Channels: []string{"GOOGLE_BUSINESS"}})
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, channels.ReasonNoAdapter, outcome.Results[0].Error.Reason)
}

func TestPublishScheduledHandsOffOnce(t *testing.T) {
	web := &fakeAdapter{channel: enums.ChannelWeb, ref: "w"}
	h := newHarness(t, []channels.Adapter{web}, nil)
	listing := mustCreateListing(t, h.conn, enums.ListingStateDraft)
	at := time.Now().Add(24 * time.Hour).UTC()

	outcome, err := h.svc.Publish(context.Background(), PublishInput{
		ListingID:  listing.ID.String(),
		Channels:   []string{"WEB", "FACEBOOK"},
		ScheduleAt: &at,
		RequestID:  "req-9",
	})
	require.NoError(t, err)
	assert.True(t, outcome.Scheduled)
	assert.True(t, outcome.Success)
	require.Len(t, outcome.Results, 1)
	assert.Equal(t, ScheduleTarget, outcome.Results[0].Target)
	assert.Equal(t, enums.OutcomePendingAccepted, outcome.Results[0].Outcome)
	assert.Equal(t, "evt-1", outcome.Results[0].EventID)

	require.Len(t, h.scheduler.requests, 1)
	req := h.scheduler.requests[0]
	assert.Equal(t, []enums.Channel{enums.ChannelWeb, enums.ChannelFacebook}, req.Channels)
	assert.Equal(t, "https://site.test/anuncios/"+listing.Slug, req.Content.PublicURL)
	assert.Equal(t, "req-9", req.RequestID)

	assert.Zero(t, web.Calls())
	assert.Zero(t, countRecords(t, h.conn))
	assert.Equal(t, enums.ListingStateDraft, h.listingState(t, listing.ID))
}

func TestPublishScheduledFailure(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.scheduler.err = pkgerrors.New(pkgerrors.CodeDependency, "queue down")
	listing := mustCreateListing(t, h.conn, enums.ListingStateDraft)
	at := time.Now().Add(time.Hour)

	outcome, err := h.svc.Publish(context.Background(), PublishInput{ListingID: listing.ID.String(), Channels: []string{"WEB"}, ScheduleAt: &at})
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, enums.OutcomeError, outcome.Results[0].Outcome)
	assert.Equal(t, string(pkgerrors.CodeDependency), outcome.Results[0].Error.Code)
}

func TestListPublicationsFillsMissingChannels(t *testing.T) {
	fb := &fakeAdapter{channel: enums.ChannelFacebook, ref: "f"}
	h := newHarness(t, []channels.Adapter{fb}, nil)
	listing := mustCreateListing(t, h.conn, enums.ListingStateDraft)

	_, err := h.svc.Publish(context.Background(), PublishInput{ListingID: listing.ID.String(), Channels: []string{"FACEBOOK"}})
	require.NoError(t, err)

	views, err := h.svc.ListPublications(context.Background(), listing.ID)
	require.NoError(t, err)
	require.Len(t, views, len(enums.Channels()))
	for _, view := range views {
		if view.Channel == enums.ChannelFacebook {
			assert.Equal(t, enums.PublicationStatusPublished, view.Status)
			assert.Equal(t, 1, view.AttemptCount)
			continue
		}
		assert.Equal(t, enums.PublicationStatusNotPublished, view.Status)
	}

	_, err = h.svc.ListPublications(context.Background(), uuid.New())
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}
