package channels

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/angelmondragon/anuncios-backend/pkg/db/models"
	"github.com/angelmondragon/anuncios-backend/pkg/enums"
)

// Content is the listing material handed to a channel adapter.
type Content struct {
	ListingID    uuid.UUID
	Slug         string
	Title        string
	Description  string
	PropertyType enums.PropertyType
	Modality     enums.RentalModality
	Price        decimal.Decimal
	Currency     string
	Location     string
	Media        []string
	PublicURL    string
}

// Credentials are the per-channel secrets and identifiers used for one publish call.
type Credentials struct {
	AccountID          string
	LocationID         string
	AccessToken        string
	Secret             string
	Endpoint           string
	ServiceAccountJSON string
}

// Receipt is returned by a successful publish.
type Receipt struct {
	ExternalRef string
	URL         string
}

// Adapter performs exactly one outbound publish for its channel. It never retries.
type Adapter interface {
	Channel() enums.Channel
	Publish(ctx context.Context, content Content, creds Credentials) (Receipt, error)
}

// CredentialSource resolves channel credentials at publish time.
type CredentialSource interface {
	Credentials(ctx context.Context, channel enums.Channel) (Credentials, error)
}

// Registry dispatches over the closed set of channels.
type Registry struct {
	adapters map[enums.Channel]Adapter
}

// NewRegistry indexes adapters by channel. Unknown or duplicate channels are rejected.
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	index := make(map[enums.Channel]Adapter, len(adapters))
	for _, adapter := range adapters {
		if adapter == nil {
			continue
		}
		ch := adapter.Channel()
		if !ch.IsValid() {
			return nil, fmt.Errorf("adapter for unsupported channel %q", ch)
		}
		if _, exists := index[ch]; exists {
			return nil, fmt.Errorf("duplicate adapter for channel %s", ch)
		}
		index[ch] = adapter
	}
	return &Registry{adapters: index}, nil
}

// Adapter returns the adapter registered for channel.
func (r *Registry) Adapter(channel enums.Channel) (Adapter, bool) {
	if r == nil {
		return nil, false
	}
	adapter, ok := r.adapters[channel]
	return adapter, ok
}

// Channels lists the registered channels in a stable order.
func (r *Registry) Channels() []enums.Channel {
	if r == nil {
		return nil
	}
	out := make([]enums.Channel, 0, len(r.adapters))
	for ch := range r.adapters {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// BuildContent maps a stored listing into adapter content.
func BuildContent(listing *models.Listing, publicURL string) Content {
	content := Content{
		ListingID:    listing.ID,
		Slug:         listing.Slug,
		Title:        listing.Title,
		PropertyType: listing.PropertyType,
		Modality:     listing.Modality,
		Price:        listing.Price,
		Currency:     listing.Currency,
		Media:        append([]string{}, listing.Media...),
		PublicURL:    publicURL,
	}
	if listing.Description != nil {
		content.Description = strings.TrimSpace(*listing.Description)
	}

	parts := make([]string, 0, 3)
	for _, part := range []*string{listing.Address, listing.Neighborhood, listing.City} {
		if part != nil && strings.TrimSpace(*part) != "" {
			parts = append(parts, strings.TrimSpace(*part))
		}
	}
	content.Location = strings.Join(parts, ", ")
	return content
}

// enumLabel builds a fresh Caser per call; Casers keep state and are not goroutine safe.
func enumLabel(value string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(strings.ToLower(value), "_", " "))
}

// Summary renders a one-line headline such as "Apartment · Long Term Rent · 950.00 EUR".
func (c Content) Summary() string {
	parts := make([]string, 0, 3)
	if c.PropertyType != "" {
		parts = append(parts, enumLabel(string(c.PropertyType)))
	}
	if c.Modality != "" {
		parts = append(parts, enumLabel(string(c.Modality)))
	}
	price := c.Price.StringFixed(2)
	if c.Currency != "" {
		price += " " + c.Currency
	}
	parts = append(parts, price)
	return strings.Join(parts, " · ")
}

// Caption is the free text posted on social channels.
func (c Content) Caption() string {
	lines := []string{c.Title, c.Summary()}
	if c.Location != "" {
		lines = append(lines, c.Location)
	}
	if c.Description != "" {
		lines = append(lines, "", c.Description)
	}
	if c.PublicURL != "" {
		lines = append(lines, "", c.PublicURL)
	}
	return strings.Join(lines, "\n")
}

// Link is the URL a post should point at: the public page when known, else the first media item.
func (c Content) Link() string {
	if c.PublicURL != "" {
		return c.PublicURL
	}
	if len(c.Media) > 0 {
		return c.Media[0]
	}
	return ""
}
