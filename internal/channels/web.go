package channels

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/angelmondragon/anuncios-backend/pkg/enums"
)

// SignatureHeader carries the HMAC of the webhook body.
const SignatureHeader = "X-Anuncios-Signature"

// WebAdapter pushes listings to the public site through a signed webhook.
type WebAdapter struct {
	httpBase
}

// NewWebAdapter builds the WEB adapter. The webhook URL comes from credentials.
func NewWebAdapter(opts ...Option) *WebAdapter {
	return &WebAdapter{httpBase: newHTTPBase(enums.ChannelWeb, "", opts)}
}

func (a *WebAdapter) Channel() enums.Channel { return enums.ChannelWeb }

type webPayload struct {
	Event        string   `json:"event"`
	ListingID    string   `json:"listing_id"`
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	PropertyType string   `json:"property_type"`
	Modality     string   `json:"modality"`
	Price        string   `json:"price"`
	Currency     string   `json:"currency"`
	Location     string   `json:"location,omitempty"`
	Media        []string `json:"media"`
	PublicURL    string   `json:"public_url,omitempty"`
}

func (a *WebAdapter) Publish(ctx context.Context, content Content, creds Credentials) (Receipt, error) {
	endpoint := strings.TrimSpace(creds.Endpoint)
	if endpoint == "" {
		return Receipt{}, ConfigurationError(a.channel, "webhook url not configured")
	}

	body, err := json.Marshal(webPayload{
		Event:        "listing.published",
		ListingID:    content.ListingID.String(),
		Slug:         content.Slug,
		Title:        content.Title,
		Description:  content.Description,
		PropertyType: string(content.PropertyType),
		Modality:     string(content.Modality),
		Price:        content.Price.StringFixed(2),
		Currency:     content.Currency,
		Location:     content.Location,
		Media:        append([]string{}, content.Media...),
		PublicURL:    content.PublicURL,
	})
	if err != nil {
		return Receipt{}, ChannelError(a.channel, ReasonInvalidResponse, fmt.Errorf("marshal webhook payload: %w", err))
	}

	headers := http.Header{}
	if creds.Secret != "" {
		headers.Set(SignatureHeader, Sign(creds.Secret, body))
	}

	var resp struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := a.postRaw(ctx, nil, endpoint, body, headers, &resp); err != nil {
		return Receipt{}, err
	}

	ref := resp.ID
	if ref == "" {
		ref = resp.URL
	}
	if ref == "" {
		ref = content.Slug
	}
	url := resp.URL
	if url == "" {
		url = content.PublicURL
	}
	return Receipt{ExternalRef: ref, URL: url}, nil
}

// Sign returns the "sha256=<hex>" signature of body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a signature produced by Sign.
func VerifySignature(secret string, body []byte, signature string) bool {
	expected := Sign(secret, body)
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature)))
}
